package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// ProductMapEntry is one HS code of the global product map.
// HSCodes maps ISO country code to the code as it appears in that schedule.
type ProductMapEntry struct {
	Name     string            `json:"name"`
	Type     string            `json:"type"`
	Keywords []string          `json:"keywords"`
	HSCodes  map[string]string `json:"hs_codes"`
}

// ProductMap is the global product map, keyed by HS code.
type ProductMap map[string]*ProductMapEntry

// Codes returns the map keys in sorted order.
func (m ProductMap) Codes() []string {
	codes := make([]string, 0, len(m))
	for code := range m {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// HasKeyword reports whether the entry lists the keyword exactly.
func (e *ProductMapEntry) HasKeyword(keyword string) bool {
	for _, k := range e.Keywords {
		if k == keyword {
			return true
		}
	}
	return false
}

// ISOCodes returns the countries the entry is listed for, sorted.
func (e *ProductMapEntry) ISOCodes() []string {
	isos := make([]string, 0, len(e.HSCodes))
	for iso := range e.HSCodes {
		isos = append(isos, iso)
	}
	sort.Strings(isos)
	return isos
}

// BrandProduct is one product of a brand in the hand-authored catalog.
// HSCodes is keyed by free-form country label ("uae", "germany", ...).
type BrandProduct struct {
	Name    string              `json:"name"`
	Type    string              `json:"type"`
	HSCodes map[string]FlexText `json:"hs_codes"`
}

// Brand groups the products of one brand.
type Brand struct {
	Products []BrandProduct `json:"products"`

	// Position is the 1-based place of the brand in the catalog file; 0 when
	// the catalog was built in code.
	Position int `json:"-"`
}

// BrandCatalog is the hand-authored brand catalog, keyed by lowercase brand name.
type BrandCatalog map[string]Brand

// UnmarshalJSON decodes the catalog and records each brand's file position.
func (c *BrandCatalog) UnmarshalJSON(data []byte) error {
	var brands map[string]Brand
	if err := json.Unmarshal(data, &brands); err != nil {
		return err
	}
	keys, err := objectKeys(data)
	if err != nil {
		return err
	}
	pos := 0
	for _, name := range keys {
		b, ok := brands[name]
		if !ok || b.Position != 0 {
			continue
		}
		pos++
		b.Position = pos
		brands[name] = b
	}
	*c = brands
	return nil
}

// objectKeys returns the top-level keys of a JSON object in document order.
func objectKeys(data []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected object key %v", tok)
		}
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// Brands returns the brand names in catalog file order. Brands without a
// file position come first, sorted by name.
func (c BrandCatalog) Brands() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		pi, pj := c[names[i]].Position, c[names[j]].Position
		if pi != pj {
			return pi < pj
		}
		return names[i] < names[j]
	})
	return names
}
