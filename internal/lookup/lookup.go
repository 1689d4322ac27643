// Package lookup implements scored description search over the HS code store.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/mmourani/hscode-scraper/internal/models"
	"github.com/mmourani/hscode-scraper/internal/repository"
)

// Match scores.
const (
	ScoreExact    = 3 // description equals the query
	ScoreContains = 2 // description contains the whole query
	ScoreToken    = 1 // description contains at least one query word
)

// Result limits.
const (
	DefaultLimit = 10
	CompareLimit = 5
)

// ErrEmptyQuery is returned for a blank query.
var ErrEmptyQuery = errors.New("empty search query")

// Hit is a scored HS code row.
type Hit struct {
	ISOCode string
	Row     *models.HSCode
	Score   int
}

// CountryHits groups the hits of one country for comparisons.
type CountryHits struct {
	ISOCode string
	Hits    []Hit
}

// Score rates a description against a query, case-insensitively.
func Score(query, description string) int {
	q := strings.ToLower(strings.TrimSpace(query))
	d := strings.ToLower(description)
	switch {
	case q == "":
		return 0
	case d == q:
		return ScoreExact
	case strings.Contains(d, q):
		return ScoreContains
	case len(MatchedTokens(q, d)) > 0:
		return ScoreToken
	}
	return 0
}

// MatchedTokens returns the query words found in the description.
func MatchedTokens(query, description string) []string {
	d := strings.ToLower(description)
	var matched []string
	for _, tok := range strings.Fields(strings.ToLower(query)) {
		if strings.Contains(d, tok) {
			matched = append(matched, tok)
		}
	}
	return matched
}

// Rank scores hits in place, drops non-matches and returns the best limit hits.
// Equal scores keep their input order. A limit of zero or less keeps all.
func Rank(query string, hits []Hit, limit int) []Hit {
	out := hits[:0]
	for _, h := range hits {
		if h.Row == nil {
			continue
		}
		if s := Score(query, h.Row.Description); s > 0 {
			h.Score = s
			out = append(out, h)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Searcher searches the store.
type Searcher struct {
	repos  *repository.Repositories
	logger *slog.Logger
}

// NewSearcher creates a searcher.
func NewSearcher(repos *repository.Repositories, logger *slog.Logger) *Searcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Searcher{repos: repos, logger: logger}
}

// Search returns the best matches in one country's schedule. An empty ISO
// code searches every country that has one.
func (s *Searcher) Search(ctx context.Context, isoCode, query string, limit int) ([]Hit, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	isos := []string{strings.ToUpper(isoCode)}
	if isoCode == "" {
		countries, err := s.repos.Country.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list countries: %w", err)
		}
		isos = isos[:0]
		for _, c := range countries {
			if c.ISOCode != "" {
				isos = append(isos, c.ISOCode)
			}
		}
	}

	var hits []Hit
	for _, iso := range isos {
		rows, err := s.repos.HSCode.ListByCountryISO(ctx, iso)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s codes: %w", iso, err)
		}
		for _, row := range rows {
			hits = append(hits, Hit{ISOCode: iso, Row: row})
		}
	}

	ranked := Rank(query, hits, limit)
	if s.logger.Enabled(ctx, slog.LevelDebug) {
		for i, h := range ranked {
			s.logger.Debug("search match",
				"rank", i+1,
				"score", h.Score,
				"country", h.ISOCode,
				"code", h.Row.Code,
				"matched_tokens", MatchedTokens(query, h.Row.Description),
			)
		}
	}
	return ranked, nil
}

// Compare runs the same search in several countries.
func (s *Searcher) Compare(ctx context.Context, isoCodes []string, query string, limit int) ([]CountryHits, error) {
	out := make([]CountryHits, 0, len(isoCodes))
	for _, iso := range isoCodes {
		iso = strings.ToUpper(strings.TrimSpace(iso))
		if iso == "" {
			continue
		}
		hits, err := s.Search(ctx, iso, query, limit)
		if err != nil {
			return nil, err
		}
		out = append(out, CountryHits{ISOCode: iso, Hits: hits})
	}
	return out, nil
}

// WriteHits prints search results for one country.
func WriteHits(w io.Writer, query string, hits []Hit) {
	if len(hits) == 0 {
		fmt.Fprintf(w, "No results found for: %s\n", query)
		return
	}
	fmt.Fprintf(w, "Results for: %q\n", query)
	for _, h := range hits {
		fmt.Fprintf(w, "HS Code: %s | Duty: %s\nDescription: %s\n---\n", h.Row.Code, duty(h.Row), h.Row.Description)
	}
}

// WriteComparison prints the results of several countries one after another
// in fixed-width columns.
func WriteComparison(w io.Writer, query string, groups []CountryHits) {
	rule := strings.Repeat("=", 60)
	fmt.Fprintf(w, "\nResults for: %q\n%s\n", query, rule)
	for i, g := range groups {
		if i > 0 {
			fmt.Fprintln(w, strings.Repeat("-", 60))
		}
		fmt.Fprintf(w, "%-15s%-12s%s\n", g.ISOCode+" HS Code", g.ISOCode+" Duty", g.ISOCode+" Description")
		for _, h := range g.Hits {
			fmt.Fprintf(w, "%-15s%-12s%s\n", h.Row.Code, duty(h.Row), truncate(h.Row.Description, 60))
		}
	}
	fmt.Fprintln(w, rule)
}

func duty(h *models.HSCode) string {
	if h.Duty == nil {
		return ""
	}
	return *h.Duty
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
