package predict

import (
	"fmt"

	"github.com/albapepper/fifa-analytics/internal/dataset"
)

// FeatureColumns is the canonical feature order of the potential model.
var FeatureColumns = []string{
	dataset.ColAge,
	dataset.ColHeightCM,
	dataset.ColOverall,
	dataset.ColPotential,
	dataset.ColValueEUR,
	dataset.ColWageEUR,
}

var featureIndex = func() map[string]int {
	m := make(map[string]int, len(FeatureColumns))
	for i, c := range FeatureColumns {
		m[c] = i
	}
	return m
}()

// FeatureRow is one model input. Bounds mirror the input form the model was
// built for.
type FeatureRow struct {
	Age       float64 `json:"age" validate:"gte=16,lte=45"`
	HeightCM  float64 `json:"height_cm" validate:"gte=150,lte=210"`
	Overall   float64 `json:"overall" validate:"gte=40,lte=99"`
	Potential float64 `json:"potential" validate:"gte=40,lte=99"`
	ValueEUR  float64 `json:"value_eur" validate:"gte=0,lte=150000000"`
	WageEUR   float64 `json:"wage_eur" validate:"gte=0,lte=500000"`
}

// values returns the row in FeatureColumns order.
func (r FeatureRow) values() []float64 {
	return []float64{r.Age, r.HeightCM, r.Overall, r.Potential, r.ValueEUR, r.WageEUR}
}

// Vector returns the row ordered by features.
func (r FeatureRow) Vector(features []string) ([]float64, error) {
	all := r.values()
	out := make([]float64, len(features))
	for i, f := range features {
		idx, ok := featureIndex[f]
		if !ok {
			return nil, fmt.Errorf("unknown feature %q", f)
		}
		out[i] = all[idx]
	}
	return out, nil
}

// FeatureRowFromDataset builds the feature row of dataset row i. Every
// feature column must be present and numeric.
func FeatureRowFromDataset(ds *dataset.Dataset, i int) (FeatureRow, error) {
	if i < 0 || i >= ds.Len() {
		return FeatureRow{}, fmt.Errorf("row %d out of range [0, %d)", i, ds.Len())
	}
	vals := make([]float64, len(FeatureColumns))
	for j, name := range FeatureColumns {
		c, err := ds.RequireNumeric(name)
		if err != nil {
			return FeatureRow{}, err
		}
		vals[j] = c.Number(i)
	}
	return FeatureRow{
		Age:       vals[0],
		HeightCM:  vals[1],
		Overall:   vals[2],
		Potential: vals[3],
		ValueEUR:  vals[4],
		WageEUR:   vals[5],
	}, nil
}
