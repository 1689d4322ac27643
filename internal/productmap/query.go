package productmap

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/mmourani/hscode-scraper/internal/models"
	"github.com/mmourani/hscode-scraper/internal/repository"
)

// Match is a product map entry together with its code.
type Match struct {
	Code  string
	Entry *models.ProductMapEntry
}

// Filter returns the entries accepted by keep, ordered by code.
func Filter(m models.ProductMap, keep func(*models.ProductMapEntry) bool) []Match {
	var out []Match
	for _, code := range m.Codes() {
		if e := m[code]; e != nil && keep(e) {
			out = append(out, Match{Code: code, Entry: e})
		}
	}
	return out
}

// ByKeyword returns entries whose keywords contain keyword exactly.
func ByKeyword(m models.ProductMap, keyword string) []Match {
	return Filter(m, func(e *models.ProductMapEntry) bool { return e.HasKeyword(keyword) })
}

// ByType returns entries whose type equals typ.
func ByType(m models.ProductMap, typ string) []Match {
	return Filter(m, func(e *models.ProductMapEntry) bool { return e.Type == typ })
}

// ByCode returns the entry for an exact code.
func ByCode(m models.ProductMap, code string) (Match, bool) {
	e, ok := m[code]
	if !ok || e == nil {
		return Match{}, false
	}
	return Match{Code: code, Entry: e}, true
}

// CountryDetail is the store row for one country listed in a product map entry.
// Row is nil when the store has no such row.
type CountryDetail struct {
	ISOCode string
	Code    string
	Row     *models.HSCode
}

// Querier joins product map entries with the store.
type Querier struct {
	repos *repository.Repositories
}

// NewQuerier creates a product map querier.
func NewQuerier(repos *repository.Repositories) *Querier {
	return &Querier{repos: repos}
}

// Details looks up description, duty and extra_info for every country the
// entry lists, in ISO order.
func (q *Querier) Details(ctx context.Context, entry *models.ProductMapEntry) ([]CountryDetail, error) {
	details := make([]CountryDetail, 0, len(entry.HSCodes))
	for _, iso := range entry.ISOCodes() {
		code := entry.HSCodes[iso]
		row, err := q.repos.HSCode.GetByCodeAndISO(ctx, code, iso)
		if err != nil {
			return nil, fmt.Errorf("failed to look up %s for %s: %w", code, iso, err)
		}
		details = append(details, CountryDetail{ISOCode: iso, Code: code, Row: row})
	}
	return details, nil
}

// WriteMatches prints up to limit matches. A limit of zero or less prints all.
func WriteMatches(w io.Writer, matches []Match, limit int, withType bool) {
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	for _, m := range matches {
		fmt.Fprintf(w, "Name: %s\n", m.Entry.Name)
		if withType {
			fmt.Fprintf(w, "Type: %s\n", m.Entry.Type)
		}
		fmt.Fprintf(w, "HS Codes: %s\n\n", formatCodes(m.Entry))
	}
}

// WriteDetails prints an entry and the store rows of each of its countries.
func WriteDetails(w io.Writer, m Match, details []CountryDetail) {
	fmt.Fprintf(w, "Name: %s\nType: %s\nHS Codes: %s\n", m.Entry.Name, m.Entry.Type, formatCodes(m.Entry))
	for _, d := range details {
		if d.Row == nil {
			fmt.Fprintf(w, "%s: not in database\n", d.ISOCode)
			continue
		}
		fmt.Fprintf(w, "%s: description=%q duty=%s extra_info=%s\n",
			d.ISOCode, d.Row.Description, dutyString(d.Row.Duty), models.ExtraInfoString(d.Row.ExtraInfo))
	}
}

func formatCodes(e *models.ProductMapEntry) string {
	parts := make([]string, 0, len(e.HSCodes))
	for _, iso := range e.ISOCodes() {
		parts = append(parts, iso+"="+e.HSCodes[iso])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func dutyString(duty *string) string {
	if duty == nil {
		return "null"
	}
	return *duty
}
