package tax

import (
	"encoding/json"
	"fmt"
	"os"
)

// Load returns the compiled-in tables, overlaid with the JSON file at path
// when path is non-empty. The result is validated before use.
func Load(path string) (*Tables, error) {
	tables := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read tax tables: %w", err)
		}
		if err := json.Unmarshal(raw, tables); err != nil {
			return nil, fmt.Errorf("parse tax tables: %w", err)
		}
	}
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tax tables: %w", err)
	}
	return tables, nil
}
