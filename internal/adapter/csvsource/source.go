package csvsource

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/text/encoding"

	"github.com/couchcryptid/crime-insights-service/internal/domain"
)

// FileSource reads the export from a local CSV file.
type FileSource struct {
	path     string
	encoding encoding.Encoding
	maxRows  int
}

// NewFileSource creates a source for a local CSV in the given encoding.
func NewFileSource(path string, enc encoding.Encoding, maxRows int) *FileSource {
	return &FileSource{path: path, encoding: enc, maxRows: maxRows}
}

// Identity names the source for cache keys.
func (s *FileSource) Identity() string {
	return "file:" + s.path
}

// Fetch reads and decodes the whole file.
func (s *FileSource) Fetch(_ context.Context) ([]domain.RawRecord, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", domain.ErrDataUnavailable, s.path, err)
	}
	defer f.Close()

	return Decode(f, s.encoding, s.maxRows)
}

// HTTPSource downloads the export over HTTP(S).
type HTTPSource struct {
	url        string
	encoding   encoding.Encoding
	maxRows    int
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHTTPSource creates a download source with a per-request timeout.
func NewHTTPSource(url string, enc encoding.Encoding, maxRows int, timeout time.Duration, logger *slog.Logger) *HTTPSource {
	return &HTTPSource{
		url:      url,
		encoding: enc,
		maxRows:  maxRows,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Identity names the source for cache keys.
func (s *HTTPSource) Identity() string {
	return "http:" + s.url
}

// Fetch downloads and decodes the export. A transport error or any status
// other than 200 is ErrDataUnavailable; no partial data is returned.
func (s *HTTPSource) Fetch(ctx context.Context) ([]domain.RawRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", domain.ErrDataUnavailable, err)
	}

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: download: %w", domain.ErrDataUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: download: status %d: %s", domain.ErrDataUnavailable, resp.StatusCode, body)
	}

	records, err := Decode(resp.Body, s.encoding, s.maxRows)
	if err != nil {
		return nil, err
	}
	s.logger.Info("incident export downloaded",
		"url", s.url,
		"rows", len(records),
		"duration", time.Since(start),
	)
	return records, nil
}
