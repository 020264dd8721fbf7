package dataset

import (
	"errors"
	"fmt"
	"strings"
)

// --------------------------------------------------------------------------
// Column names: single source of truth for the FIFA players table
// --------------------------------------------------------------------------

const (
	ColOverall         = "overall"
	ColAge             = "age"
	ColValueEUR        = "value_eur"
	ColPotential       = "potential"
	ColHeightCM        = "height_cm"
	ColWageEUR         = "wage_eur"
	ColNationality     = "nationality"
	ColClubName        = "club_name"
	ColPlayerPositions = "player_positions"
	ColPreferredFoot   = "preferred_foot"
	ColDOB             = "dob"

	ColPlayerURL     = "player_url"
	ColSofifaID      = "sofifa_id"
	ColNationLogoURL = "nation_logo_url"
	ColClubLogoURL   = "club_logo_url"
	ColClubFlagURL   = "club_flag_url"
	ColPlayerFaceURL = "player_face_url"
)

// UnknownText replaces missing text cells.
const UnknownText = "Unknown"

// DroppedColumns are identifier and URL columns removed by Clean.
var DroppedColumns = []string{
	ColPlayerURL, ColSofifaID, ColNationLogoURL,
	ColClubLogoURL, ColClubFlagURL, ColPlayerFaceURL,
}

// CategoricalColumns are tagged as categorical by Clean when present.
var CategoricalColumns = []string{
	ColNationality, ColClubName, ColPreferredFoot, ColPlayerPositions,
}

// RangeColumns are the numeric columns the dashboard offers range filters on.
var RangeColumns = []string{ColAge, ColOverall, ColPotential, ColValueEUR}

// knownKinds is the expected kind of every column the service refers to by
// name. It only decides the kind of a column that carries no observed value.
var knownKinds = map[string]Kind{
	ColOverall:         KindNumeric,
	ColAge:             KindNumeric,
	ColValueEUR:        KindNumeric,
	ColPotential:       KindNumeric,
	ColHeightCM:        KindNumeric,
	ColWageEUR:         KindNumeric,
	ColSofifaID:        KindNumeric,
	ColNationality:     KindText,
	ColClubName:        KindText,
	ColPlayerPositions: KindText,
	ColPreferredFoot:   KindText,
	ColDOB:             KindDate,
	ColPlayerURL:       KindText,
	ColNationLogoURL:   KindText,
	ColClubLogoURL:     KindText,
	ColClubFlagURL:     KindText,
	ColPlayerFaceURL:   KindText,
}

// KnownKind returns the expected kind of a named column.
func KnownKind(name string) (Kind, bool) {
	k, ok := knownKinds[name]
	return k, ok
}

// NormalizeName lowercases a column name and replaces spaces and hyphens
// with underscores.
func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, " ", "_")
	return strings.ReplaceAll(name, "-", "_")
}

func isDropped(name string) bool {
	for _, c := range DroppedColumns {
		if c == name {
			return true
		}
	}
	return false
}

func isCategorical(name string) bool {
	for _, c := range CategoricalColumns {
		if c == name {
			return true
		}
	}
	return false
}

// --------------------------------------------------------------------------
// Errors
// --------------------------------------------------------------------------

var (
	// ErrDuplicateColumn is returned when two columns share a name, either in
	// the raw header or after name normalization.
	ErrDuplicateColumn = errors.New("duplicate column")
	// ErrRaggedRow is returned when a raw row does not match the header width.
	ErrRaggedRow = errors.New("row width does not match header")
	// ErrColumnKind is returned when an operation needs a different column kind.
	ErrColumnKind = errors.New("column has the wrong kind")
)

// ColumnMissingError names a required column that the dataset does not have.
type ColumnMissingError struct {
	Column string
}

func (e *ColumnMissingError) Error() string {
	return fmt.Sprintf("column %q is missing from the dataset", e.Column)
}
