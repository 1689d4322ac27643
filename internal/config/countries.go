package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// CountryLabels maps the free-form country labels used in the brand catalog
// (e.g. "uae", "germany") to ISO codes. Keys are stored lowercased.
type CountryLabels map[string]string

// CountryNames maps ISO codes to the display name used when a country row is created.
type CountryNames map[string]string

// DefaultCountryLabels returns the built-in label table. Several labels may map
// to the same ISO code; germany is folded into the EU schedule.
func DefaultCountryLabels() CountryLabels {
	return CountryLabels{
		"germany": "EU",
		"eu":      "EU",
		"uae":     "AE",
		"us":      "US",
		"cn":      "CN",
		"china":   "CN",
	}
}

// DefaultCountryNames returns the built-in ISO to country name table.
func DefaultCountryNames() CountryNames {
	return CountryNames{
		"AE": "United Arab Emirates",
		"US": "United States",
		"CN": "China",
		"EU": "European Union",
	}
}

// Resolve returns the ISO code for a label, matching case-insensitively.
func (l CountryLabels) Resolve(label string) (string, bool) {
	iso, ok := l[strings.ToLower(strings.TrimSpace(label))]
	return iso, ok
}

// Labels returns the known labels in sorted order.
func (l CountryLabels) Labels() []string {
	out := make([]string, 0, len(l))
	for k := range l {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Name returns the display name for an ISO code, falling back to the code itself.
func (n CountryNames) Name(iso string) string {
	if name, ok := n[strings.ToUpper(iso)]; ok {
		return name
	}
	return strings.ToUpper(iso)
}

// countryFile is the on-disk shape of COUNTRY_LABELS_FILE:
//
//	labels:
//	  uk: GB
//	names:
//	  GB: United Kingdom
type countryFile struct {
	Labels map[string]string `yaml:"labels"`
	Names  map[string]string `yaml:"names"`
}

// LoadCountryFile merges a YAML override file into the given tables.
// Entries in the file replace built-in entries with the same key.
func LoadCountryFile(path string, labels CountryLabels, names CountryNames) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read country file %s: %w", path, err)
	}

	var f countryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("failed to parse country file %s: %w", path, err)
	}

	for label, iso := range f.Labels {
		label = strings.ToLower(strings.TrimSpace(label))
		iso = strings.ToUpper(strings.TrimSpace(iso))
		if label == "" || iso == "" {
			return fmt.Errorf("country file %s: empty label or iso code", path)
		}
		labels[label] = iso
	}
	for iso, name := range f.Names {
		iso = strings.ToUpper(strings.TrimSpace(iso))
		if iso == "" {
			return fmt.Errorf("country file %s: empty iso code in names", path)
		}
		names[iso] = strings.TrimSpace(name)
	}
	return nil
}
