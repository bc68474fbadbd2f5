package domain

import (
	"context"
	"fmt"
)

// Feature column names the classifier was fit on.
const (
	ColDayOfWeek     = "DayOfWeek"
	ColHourOfDay     = "HourOfDay"
	ColMonth         = "Month"
	ColIsWeekend     = "IsWeekend"
	AreaColumnPrefix = "AREA_NAME_"
)

// PredictionInput holds the five human-readable predictor inputs.
type PredictionInput struct {
	AreaName  string `json:"area_name"`
	DayOfWeek int    `json:"day_of_week"` // 0=Monday .. 6=Sunday
	HourOfDay int    `json:"hour_of_day"`
	Month     int    `json:"month"`
	IsWeekend int    `json:"is_weekend"`
}

// Validate checks every input against its domain.
func (in PredictionInput) Validate() error {
	switch {
	case in.AreaName == "":
		return fmt.Errorf("%w: area_name is required", ErrInvalidInput)
	case in.DayOfWeek < 0 || in.DayOfWeek > 6:
		return fmt.Errorf("%w: day_of_week %d not in 0..6", ErrInvalidInput, in.DayOfWeek)
	case in.HourOfDay < 0 || in.HourOfDay > 23:
		return fmt.Errorf("%w: hour_of_day %d not in 0..23", ErrInvalidInput, in.HourOfDay)
	case in.Month < 1 || in.Month > 12:
		return fmt.Errorf("%w: month %d not in 1..12", ErrInvalidInput, in.Month)
	case in.IsWeekend != 0 && in.IsWeekend != 1:
		return fmt.Errorf("%w: is_weekend %d not 0 or 1", ErrInvalidInput, in.IsWeekend)
	}
	return nil
}

// FeatureVector is one encoded row aligned to the classifier's column schema.
type FeatureVector struct {
	Columns    []string  `json:"columns"`
	Values     []float64 `json:"values"`
	UnseenArea bool      `json:"unseen_area"`
}

// Value returns the value of a named column and whether the column exists.
func (v FeatureVector) Value(column string) (float64, bool) {
	for i, c := range v.Columns {
		if c == column {
			return v.Values[i], true
		}
	}
	return 0, false
}

// Classifier maps an encoded feature vector to a crime category label.
type Classifier interface {
	Predict(ctx context.Context, v FeatureVector) (string, error)
}

// Encode one-hot expands the area and reindexes the row against known:
// the output has exactly the known columns in order, known columns the
// request did not produce are 0, and produced columns outside known are
// dropped. UnseenArea reports that the area had no indicator column.
//
// Encode knows nothing about the model itself; a schema that does not match
// the model surfaces as the classifier's own error.
func Encode(in PredictionInput, known []string) FeatureVector {
	areaCol := AreaColumnPrefix + in.AreaName
	generated := map[string]float64{
		ColDayOfWeek: float64(in.DayOfWeek),
		ColHourOfDay: float64(in.HourOfDay),
		ColMonth:     float64(in.Month),
		ColIsWeekend: float64(in.IsWeekend),
		areaCol:      1,
	}

	v := FeatureVector{
		Columns:    make([]string, len(known)),
		Values:     make([]float64, len(known)),
		UnseenArea: true,
	}
	copy(v.Columns, known)
	for i, col := range known {
		v.Values[i] = generated[col]
		if col == areaCol {
			v.UnseenArea = false
		}
	}
	return v
}
