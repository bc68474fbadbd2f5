package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/crime-insights-service/internal/dashboard"
	"github.com/couchcryptid/crime-insights-service/internal/domain"
)

const maxPredictBody = 64 << 10

// rowsResponse is the envelope of every tabular view.
type rowsResponse[T any] struct {
	Rows  []T  `json:"rows"`
	Empty bool `json:"empty"`
}

type monthlyResponse struct {
	rowsResponse[domain.MonthCount]
	Excluded     []string            `json:"excluded_periods"`
	Category     string              `json:"category,omitempty"`
	CategoryRows []domain.MonthCount `json:"category_rows,omitempty"`
}

func writeRows[T any](w http.ResponseWriter, rows []T) {
	if rows == nil {
		rows = []T{}
	}
	writeJSON(w, http.StatusOK, rowsResponse[T]{Rows: rows, Empty: len(rows) == 0})
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := s.dashboard.Options(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, opts)
}

func (s *Server) handleAreas(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rows, err := s.dashboard.Areas(r.Context(), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeRows(w, rows)
}

func (s *Server) handleHourly(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	dense, err := parseBool(r, "dense")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rows, err := s.dashboard.Hourly(r.Context(), f, dense)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeRows(w, rows)
}

func (s *Server) handleWeekly(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rows, err := s.dashboard.Weekly(r.Context(), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeRows(w, rows)
}

func (s *Server) handleSeasons(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rows, err := s.dashboard.Seasons(r.Context(), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeRows(w, rows)
}

func (s *Server) handleMonthly(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	// category selects the second series; it does not narrow the overall trend.
	category := f.Category
	f.Category = ""

	trend, err := s.dashboard.Monthly(r.Context(), f, category)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rows := trend.Overall
	if rows == nil {
		rows = []domain.MonthCount{}
	}
	writeJSON(w, http.StatusOK, monthlyResponse{
		rowsResponse: rowsResponse[domain.MonthCount]{Rows: rows, Empty: len(rows) == 0},
		Excluded:     trend.Excluded,
		Category:     trend.Category,
		CategoryRows: trend.Series,
	})
}

func (s *Server) handleGeo(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	// Repeated category parameters form the allow-list.
	categories := r.URL.Query()["category"]
	f.Category = ""

	rows, err := s.dashboard.Geo(r.Context(), f, categories)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeRows(w, rows)
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var in domain.PredictionInput
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPredictBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: decode body: %w", domain.ErrInvalidInput, err))
		return
	}

	p, err := s.dashboard.Predict(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	res, err := s.dashboard.Reload(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// parseFilter reads year, from, to and category from the query string.
func parseFilter(r *http.Request) (domain.Filter, error) {
	q := r.URL.Query()
	var f domain.Filter

	if v := q.Get("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil || year <= 0 {
			return f, fmt.Errorf("%w: year %q", domain.ErrInvalidInput, v)
		}
		f.Year = year
	}
	for name, dst := range map[string]*time.Time{"from": &f.From, "to": &f.To} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		d, err := time.Parse(time.DateOnly, v)
		if err != nil {
			return f, fmt.Errorf("%w: %s %q is not YYYY-MM-DD", domain.ErrInvalidInput, name, v)
		}
		*dst = d
	}
	f.Category = strings.TrimSpace(q.Get("category"))
	return f, f.Validate()
}

func parseBool(r *http.Request, name string) (bool, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: %s %q", domain.ErrInvalidInput, name, v)
	}
	return b, nil
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrDataUnavailable), errors.Is(err, domain.ErrPredictorDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrClassifier):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			"path", r.URL.Path,
			"status", status,
			"request_id", w.Header().Get(requestIDHeader),
			"error", err,
		)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

var _ Dashboard = (*dashboard.Service)(nil)
