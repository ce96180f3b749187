package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type TypeWeight struct {
	Type    string  `json:"type"`
	Percent float64 `json:"percent"`
}

// Distribution is a percentage table over activity types that keeps the
// declaration order of the source document. The first entry is the fallback
// when a roll finds no bucket.
type Distribution []TypeWeight

func (d Distribution) Sum() float64 {
	total := 0.0
	for _, w := range d {
		total += w.Percent
	}
	return total
}

func (d Distribution) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, w := range d {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(w.Type)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(w.Percent)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON accepts either an object {"type": percent, ...} or an array
// of {"type","percent"} rows.
func (d *Distribution) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*d = nil
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var rows []TypeWeight
		if err := json.Unmarshal(trimmed, &rows); err != nil {
			return err
		}
		*d = rows
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("distribution: expected object, got %v", tok)
	}
	out := Distribution{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("distribution: expected key, got %v", keyTok)
		}
		var percent float64
		if err := dec.Decode(&percent); err != nil {
			return fmt.Errorf("distribution %q: %w", key, err)
		}
		out = append(out, TypeWeight{Type: key, Percent: percent})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*d = out
	return nil
}
