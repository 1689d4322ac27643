// Package models contains domain models and utility types.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// FlexText is a nullable string that can be unmarshaled from a JSON string,
// number or boolean. Spreadsheet-derived JSON often carries numbers where text
// is expected (e.g. "indent": 0), and hand-written catalogs sometimes give
// HS codes as numbers.
type FlexText struct {
	String string
	Valid  bool
}

// Text returns a valid FlexText.
func Text(s string) FlexText {
	return FlexText{String: s, Valid: true}
}

// TextOrNull returns a valid FlexText for non-blank input and null otherwise.
func TextOrNull(s string) FlexText {
	if strings.TrimSpace(s) == "" {
		return FlexText{}
	}
	return Text(s)
}

// UnmarshalJSON implements json.Unmarshaler for FlexText.
func (f *FlexText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = FlexText{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = Text(s)
		return nil
	}

	// Numbers and booleans keep their literal spelling.
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = Text(n.String())
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		if b {
			*f = Text("true")
		} else {
			*f = Text("false")
		}
		return nil
	}

	return fmt.Errorf("cannot use %s as text", data)
}

// MarshalJSON implements json.Marshaler for FlexText.
// Null values marshal as JSON null.
func (f FlexText) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.String)
}

// Ptr returns a pointer to the string, or nil when null.
func (f FlexText) Ptr() *string {
	if !f.Valid {
		return nil
	}
	s := f.String
	return &s
}
