package scraper

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Record is one scraped schedule record: either a rich detail record keyed by
// page labels, or a fallback {hs_code, description, duty} record.
type Record map[string]any

// Fallback builds the simple record written when a detail page has no HTS Code.
func Fallback(item ListItem) Record {
	return Record{
		"hs_code":     item.Code,
		"description": item.Description,
		"duty":        nil,
	}
}

// Code returns the record's code from "HTS Code" or "hs_code".
func (r Record) Code() string {
	for _, key := range []string{FieldHTSCode, "hs_code"} {
		if v, ok := r[key].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// Dedupe keeps one record per code: the last one seen, at the position of the
// first. Records without a code are dropped.
func Dedupe(records []Record) []Record {
	index := make(map[string]int, len(records))
	out := make([]Record, 0, len(records))
	for _, r := range records {
		code := r.Code()
		if code == "" {
			continue
		}
		if i, ok := index[code]; ok {
			out[i] = r
			continue
		}
		index[code] = len(out)
		out = append(out, r)
	}
	return out
}

// Checkpoint records the chapter pages ("NN-P") already scraped.
type Checkpoint map[string]bool

// PageKey names a chapter page in the checkpoint.
func PageKey(chapter string, page int) string {
	return fmt.Sprintf("%s-%d", chapter, page)
}

// LoadCheckpoint reads a checkpoint file. A missing file is an empty checkpoint.
func LoadCheckpoint(path string) (Checkpoint, error) {
	cp := Checkpoint{}
	if err := readJSON(path, &cp); err != nil {
		return nil, fmt.Errorf("failed to read checkpoint %s: %w", path, err)
	}
	return cp, nil
}

// Save writes the checkpoint.
func (c Checkpoint) Save(path string) error {
	return writeJSON(path, c)
}

// LoadRecords reads previously scraped records. A missing or unreadable file
// yields no records so that a damaged output does not block a resume.
func LoadRecords(path string) []Record {
	var records []Record
	if err := readJSON(path, &records); err != nil {
		return nil
	}
	return records
}

// SaveRecords writes records deduplicated by code.
func SaveRecords(path string, records []Record) error {
	out := Dedupe(records)
	return writeJSON(path, out)
}

func readJSON(path string, v any) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// writeJSON replaces path atomically with the indented encoding of v.
func writeJSON(path string, v any) error {
	if path == "" {
		return nil
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
