// Package main searches HS code descriptions in the store.
//
// Usage:
//
//	lookup-hscode [-country AE] [-limit 10] <search terms>
//	lookup-hscode -compare AE,US <search terms>
//
// Set LOG_LEVEL=debug to see the matched tokens of every result.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mmourani/hscode-scraper/internal/cli"
	"github.com/mmourani/hscode-scraper/internal/lookup"
)

func main() {
	app := cli.Start("lookup-hscode")
	defer app.Close()

	country := flag.String("country", "AE", "ISO code of the schedule to search")
	compare := flag.String("compare", "", "comma-separated ISO codes to compare side by side, e.g. AE,US")
	limit := flag.Int("limit", 0, "maximum results per country (default 10, or 5 when comparing)")
	flag.Parse()

	query := strings.Join(flag.Args(), " ")
	if strings.TrimSpace(query) == "" {
		fmt.Fprintln(os.Stderr, "Usage: lookup-hscode [-country AE] [-compare AE,US] <search terms>")
		app.Close()
		os.Exit(1)
	}

	repos, _ := app.Store()
	searcher := lookup.NewSearcher(repos, app.Logger)

	if *compare != "" {
		n := *limit
		if n <= 0 {
			n = lookup.CompareLimit
		}
		groups, err := searcher.Compare(app.Ctx, strings.Split(*compare, ","), query, n)
		if err != nil {
			app.Fatal("comparison failed", err)
		}
		lookup.WriteComparison(os.Stdout, query, groups)
		return
	}

	n := *limit
	if n <= 0 {
		n = lookup.DefaultLimit
	}
	hits, err := searcher.Search(app.Ctx, *country, query, n)
	if errors.Is(err, lookup.ErrEmptyQuery) {
		app.Fatal("nothing to search for", err)
	}
	if err != nil {
		app.Fatal("search failed", err)
	}
	lookup.WriteHits(os.Stdout, query, hits)
}
