package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var errUnsupportedShape = errors.New("source must be a JSON array or an object keyed by slug")

// rawRecord is one undecoded entry of a source, in file order.
type rawRecord struct {
	key  string // object key for slug-keyed sources, empty for arrays
	data json.RawMessage
}

// decodeSource splits a source into its entries. Both a top-level array and a slug-keyed
// object are accepted; object entries keep their file order.
func decodeSource(data []byte) ([]rawRecord, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errUnsupportedShape
	}

	switch trimmed[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("failed to parse array source: %w", err)
		}
		records := make([]rawRecord, len(items))
		for i, item := range items {
			records[i] = rawRecord{data: item}
		}
		return records, nil

	case '{':
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		if _, err := dec.Token(); err != nil {
			return nil, fmt.Errorf("failed to parse object source: %w", err)
		}
		var records []rawRecord
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return nil, fmt.Errorf("failed to parse object source: %w", err)
			}
			key, _ := tok.(string)
			var item json.RawMessage
			if err := dec.Decode(&item); err != nil {
				return nil, fmt.Errorf("failed to parse object source entry %q: %w", key, err)
			}
			records = append(records, rawRecord{key: key, data: item})
		}
		if _, err := dec.Token(); err != nil {
			return nil, fmt.Errorf("failed to parse object source: %w", err)
		}
		return records, nil
	}
	return nil, errUnsupportedShape
}

// fields decodes the entry into an untyped object. Slug-keyed entries without a slug inherit the key.
func (r rawRecord) fields() (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal(r.data, &m); err != nil || m == nil {
		return nil, errors.New("record must be a JSON object")
	}
	if r.key != "" {
		if _, ok := m["slug"]; !ok {
			m["slug"] = r.key
		}
	}
	return m, nil
}
