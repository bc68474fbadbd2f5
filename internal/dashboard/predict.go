package dashboard

import (
	"context"
	"fmt"

	"github.com/couchcryptid/crime-insights-service/internal/domain"
)

// Prediction is the predicted crime category for one set of inputs.
type Prediction struct {
	Category     string      `json:"category"`
	AreaName     string      `json:"area_name"`
	AreaLocation *domain.Geo `json:"area_location,omitempty"`
	Warning      string      `json:"warning,omitempty"`
	UnseenArea   bool        `json:"unseen_area"`
}

// Predict validates and encodes the inputs and asks the classifier for a
// category. An area without display coordinates yields a warning rather
// than an error.
func (s *Service) Predict(ctx context.Context, in domain.PredictionInput) (Prediction, error) {
	if s.classifier == nil {
		s.metrics.Predictions.WithLabelValues("disabled").Inc()
		return Prediction{}, domain.ErrPredictorDisabled
	}
	if err := in.Validate(); err != nil {
		s.metrics.Predictions.WithLabelValues("invalid").Inc()
		return Prediction{}, err
	}

	v := domain.Encode(in, s.cfg.FeatureColumns)
	if v.UnseenArea {
		s.logger.Warn("area not in classifier schema, indicator zero-filled", "area_name", in.AreaName)
	}

	label, err := s.classifier.Predict(ctx, v)
	if err != nil {
		s.metrics.Predictions.WithLabelValues("error").Inc()
		return Prediction{}, fmt.Errorf("predict: %w", err)
	}
	s.metrics.Predictions.WithLabelValues("success").Inc()

	p := Prediction{Category: label, AreaName: in.AreaName, UnseenArea: v.UnseenArea}
	if g, ok := domain.AreaLocation(in.AreaName); ok {
		p.AreaLocation = &g
	} else {
		p.Warning = domain.AreaLocationWarning(in.AreaName)
	}
	return p, nil
}
