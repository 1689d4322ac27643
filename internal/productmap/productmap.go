// Package productmap derives the global product map from the HS code store and
// keeps the store in step with the hand-authored brand catalog.
//
// The product map is a JSON object keyed by HS code:
//
//	{"88021100": {"name": "...", "type": "helicopters", "keywords": [...], "hs_codes": {"AE": "88021100"}}}
//
// The brand catalog is keyed by brand name:
//
//	{"acme": {"products": [{"name": "X1", "type": "drone", "hs_codes": {"uae": "88021100"}}]}}
package productmap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode"

	"github.com/mmourani/hscode-scraper/internal/models"
)

// DefaultType is the product type used when a description has no tokens.
const DefaultType = "product"

// nonWord splits descriptions into word tokens (letters, marks, digits, underscore).
var nonWord = regexp.MustCompile(`[^\p{L}\p{M}\p{N}_]+`)

// Tokenize lowercases s and splits it on runs of non-word characters.
// Empty tokens are dropped.
func Tokenize(s string) []string {
	parts := nonWord.Split(strings.ToLower(s), -1)
	tokens := parts[:0]
	for _, p := range parts {
		if p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}

// TypeOf returns the rough product type of a description: its first token.
func TypeOf(description string) string {
	if tokens := Tokenize(description); len(tokens) > 0 {
		return tokens[0]
	}
	return DefaultType
}

// Keywords returns the tokens of a description longer than two characters, in
// order. Repeated words are kept.
func Keywords(description string) []string {
	keywords := []string{}
	for _, tok := range Tokenize(description) {
		if len([]rune(tok)) > 2 {
			keywords = append(keywords, tok)
		}
	}
	return keywords
}

// Load reads a product map file.
func Load(path string) (models.ProductMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse product map %s: %w", path, err)
	}
	return m, nil
}

// Decode parses product map JSON. null decodes to an empty map.
func Decode(data []byte) (models.ProductMap, error) {
	var m models.ProductMap
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if m == nil {
		m = models.ProductMap{}
	}
	return m, nil
}

// Encode renders a product map as indented JSON with sorted keys.
func Encode(m models.ProductMap) ([]byte, error) {
	if m == nil {
		m = models.ProductMap{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return nil, fmt.Errorf("failed to encode product map: %w", err)
	}
	return buf.Bytes(), nil
}

// Write encodes a product map to path, replacing any existing file.
func Write(path string, m models.ProductMap) ([]byte, error) {
	data, err := Encode(m)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write product map %s: %w", path, err)
	}
	return data, nil
}

// LoadCatalog reads the brand catalog and returns it with the raw file contents.
func LoadCatalog(path string) (models.BrandCatalog, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	var c models.BrandCatalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, nil, fmt.Errorf("failed to parse brand catalog %s: %w", path, err)
	}
	return c, data, nil
}

// Title upper-cases the first letter of every word and lower-cases the rest.
// A word starts at any letter that follows a non-letter, so "o'neil" becomes
// "O'Neil" and "3dr" becomes "3Dr".
func Title(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToTitle(r))
			}
			prevLetter = true
			continue
		}
		b.WriteRune(r)
		prevLetter = false
	}
	return b.String()
}
