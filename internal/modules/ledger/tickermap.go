package ledger

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadTickerMap reads the instrument-name to ticker mapping used by the
// importer. The file is a flat JSON object, e.g.
//
//	{"Acme Industries": "ACME.L", "Apple": "AAPL"}
//
// A missing file yields an empty map: imports then skip every row until a
// mapping is provided.
func LoadTickerMap(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read ticker map: %w", err)
	}

	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse ticker map %s: %w", path, err)
	}

	return m, nil
}
