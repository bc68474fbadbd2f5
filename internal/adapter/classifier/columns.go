package classifier

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFeatureColumns reads the ordered column names the model was trained
// on. The file holds a YAML (or JSON) list of strings.
func LoadFeatureColumns(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read feature columns: %w", err)
	}
	return parseFeatureColumns(data)
}

func parseFeatureColumns(data []byte) ([]string, error) {
	var columns []string
	if err := yaml.Unmarshal(data, &columns); err != nil {
		return nil, fmt.Errorf("parse feature columns: %w", err)
	}

	seen := make(map[string]struct{}, len(columns))
	for _, col := range columns {
		if strings.TrimSpace(col) == "" {
			return nil, errors.New("feature columns: blank column name")
		}
		if _, dup := seen[col]; dup {
			return nil, fmt.Errorf("feature columns: duplicate column %q", col)
		}
		seen[col] = struct{}{}
	}
	if len(columns) == 0 {
		return nil, errors.New("feature columns: empty list")
	}
	return columns, nil
}
