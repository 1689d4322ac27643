// Package main lists the most recent importer runs recorded in the store.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/mmourani/hscode-scraper/internal/cli"
)

func main() {
	app := cli.Start("import-runs")
	defer app.Close()

	limit := flag.Int("limit", 20, "number of runs to show")
	asJSON := flag.Bool("json", false, "print runs as JSON")
	flag.Parse()

	repos, _ := app.Store()
	runs, err := repos.ImportRun.ListRecent(app.Ctx, *limit)
	if err != nil {
		app.Fatal("failed to list import runs", err)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(runs); err != nil {
			app.Fatal("failed to encode import runs", err)
		}
		return
	}

	if len(runs) == 0 {
		fmt.Println("No import runs recorded.")
		return
	}
	for _, r := range runs {
		hash := r.InputHash
		if len(hash) > 12 {
			hash = hash[:12]
		}
		fmt.Printf("%s  %-16s  %6d imported  %5d skipped  %s  %s  %s\n",
			r.CompletedAt.Format("2006-01-02 15:04:05"), r.Source, r.Records, r.Skipped,
			r.CompletedAt.Sub(r.StartedAt).Round(time.Millisecond), hash, r.InputPath)
	}
}
