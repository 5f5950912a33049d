package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ValuationsFile is the default valuations dataset. Values are cents per
// point keyed by normalized program key.
type ValuationsFile struct {
	Version    string                    `json:"version"`
	Unit       string                    `json:"unit"`
	Valuations map[string]ValuationEntry `json:"valuations"`
}

// ValuationEntry accepts both the object format ({"value": 1.5, ...}) and the
// bare-number format the dataset used historically.
type ValuationEntry struct {
	Value       float64 `json:"value"`
	DisplayName string  `json:"display_name,omitempty"`
	Category    string  `json:"category,omitempty"`
}

func (v *ValuationEntry) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		*v = ValuationEntry{}
		return nil
	}
	if s[0] != '{' {
		num, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*v = ValuationEntry{}
			return nil
		}
		*v = ValuationEntry{Value: num}
		return nil
	}
	type alias ValuationEntry
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*v = ValuationEntry(a)
	return nil
}

// ValuationListing is the response shape for valuation queries.
type ValuationListing struct {
	LastUpdatedUTC string             `json:"last_updated_utc"`
	Unit           string             `json:"unit"`
	Valuations     map[string]float64 `json:"valuations"`
}

// NormalizeProgramKey converts a program name or key into the canonical
// lookup form: lower case with spaces and hyphens collapsed to underscores.
func NormalizeProgramKey(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return s
}
