// Package assets reads the static files that ship next to the service.
package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// DefaultDescriptionPath is where the dataset description page lives.
const DefaultDescriptionPath = "assets/dataset_description.html"

// ErrAssetMissing is returned when an optional asset is not on disk. Callers
// show a notice instead of failing.
var ErrAssetMissing = errors.New("asset missing")

// LoadDescription returns the HTML description document verbatim.
func LoadDescription(path string) (string, error) {
	if path == "" {
		path = DefaultDescriptionPath
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrAssetMissing, path)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}
