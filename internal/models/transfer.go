package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// TransferPartner is one directed edge in the transfer-partner graph: points
// move from a source program to the named loyalty program at Ratio points out
// per point in. The JSON keys match the upstream dataset export.
type TransferPartner struct {
	LoyaltyProgram  string     `json:"Loyalty Program"`
	Ratio           float64    `json:"Ratio"`
	Best            bool       `json:"Best"`
	Notes           string     `json:"Notes"`
	Bonus           BonusValue `json:"Bonus"`
	BonusExpiration string     `json:"bonus_expiration,omitempty"`
}

// TransferProgram is a source program and its ordered outgoing edges.
type TransferProgram struct {
	Name     string
	Partners []TransferPartner
}

// TransferPartnerTable holds the full transfer graph, preserving the key
// order of the source JSON object. Lookups that pick "the first matching
// program" depend on that order being stable.
type TransferPartnerTable struct {
	Programs []TransferProgram
}

func (t *TransferPartnerTable) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("transfer partners: expected JSON object, got %v", tok)
	}

	t.Programs = nil
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("transfer partners: expected string key, got %v", keyTok)
		}

		var partners []TransferPartner
		if err := dec.Decode(&partners); err != nil {
			return fmt.Errorf("transfer partners: program %q: %w", name, err)
		}

		// A zero ratio means the field was absent; the dataset default is 1:1.
		for i := range partners {
			if partners[i].Ratio == 0 {
				partners[i].Ratio = 1.0
			}
		}

		t.Programs = append(t.Programs, TransferProgram{Name: name, Partners: partners})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

func (t TransferPartnerTable) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, prog := range t.Programs {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(prog.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(prog.Partners)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// BonusValue models the Bonus field of a transfer edge, which the dataset
// stores as a number (a multiplier), a sentinel string like "None" or
// "Varies", or omits entirely.
type BonusValue struct {
	Number   float64
	Text     string
	IsNumber bool
}

// Present reports whether the edge carries any bonus annotation at all.
// Sentinel strings and non-positive numbers still count as present; they are
// filtered separately where a real multiplier is required.
func (b BonusValue) Present() bool {
	if b.IsNumber {
		return b.Number != 0
	}
	return b.Text != ""
}

// Multiplier returns the numeric bonus multiplier, or false if the bonus is
// absent, a sentinel, or not a number.
func (b BonusValue) Multiplier() (float64, bool) {
	if !b.IsNumber {
		return 0, false
	}
	return b.Number, true
}

func (b *BonusValue) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		*b = BonusValue{}
		return nil
	}
	if s[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*b = BonusValue{Text: text}
		return nil
	}
	num, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// Unexpected shapes are treated as no bonus rather than failing the
		// whole document.
		*b = BonusValue{}
		return nil
	}
	*b = BonusValue{Number: num, IsNumber: true}
	return nil
}

func (b BonusValue) MarshalJSON() ([]byte, error) {
	if b.IsNumber {
		return json.Marshal(b.Number)
	}
	if b.Text != "" {
		return json.Marshal(b.Text)
	}
	return []byte("null"), nil
}

// TransferEdge is one partner entry in a transfer lookup response, with the
// relevant valuation attached. Valuation is a pointer so from-program edges
// serialize an explicit 0.0 while to-program edges omit the field entirely.
type TransferEdge struct {
	LoyaltyProgram  string      `json:"loyalty_program"`
	Best            bool        `json:"best"`
	Ratio           float64     `json:"ratio"`
	Notes           string      `json:"notes"`
	Valuation       *float64    `json:"valuation,omitempty"`
	Summary         string      `json:"summary"`
	Bonus           *BonusValue `json:"bonus,omitempty"`
	BonusExpiration string      `json:"bonus_expiration,omitempty"`
}

type TransferFromResult struct {
	Type           string         `json:"type"` // "from_program"
	SourceProgram  string         `json:"source_program"`
	LastUpdatedUTC string         `json:"last_updated_utc"`
	DestPrograms   []TransferEdge `json:"dest_programs"`
}

type TransferToResult struct {
	Type           string         `json:"type"` // "to_program"
	DestProgram    string         `json:"dest_program"`
	Valuation      float64        `json:"valuation"`
	LastUpdatedUTC string         `json:"last_updated_utc"`
	SourcePrograms []TransferEdge `json:"source_programs"`
}

// TransferNoneResult is the explicit no-match marker for partner lookups,
// distinct from an empty partner list.
type TransferNoneResult struct {
	Type           string         `json:"type"` // "none"
	LastUpdatedUTC string         `json:"last_updated_utc"`
	Results        []TransferEdge `json:"results"`
	Message        string         `json:"message"`
}

// TransferBonus is one active transfer bonus in the bonus listing.
type TransferBonus struct {
	FromProgram     string  `json:"from_program"`
	ToProgram       string  `json:"to_program"`
	BonusMultiplier float64 `json:"bonus_multiplier"`
	BonusPercentage string  `json:"bonus_percentage"`
	NormalRatio     string  `json:"normal_ratio"`
	EffectiveRatio  string  `json:"effective_ratio"`
	Notes           string  `json:"notes"`
	BonusExpiration string  `json:"bonus_expiration,omitempty"`
}

type TransferBonusResult struct {
	Bonuses        []TransferBonus `json:"bonuses"`
	Count          int             `json:"count"`
	LastUpdatedUTC string          `json:"last_updated_utc"`
}
