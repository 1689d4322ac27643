// Package main crawls the Chinese customs schedule into hs_codes_cn.json.
//
// Progress is checkpointed after every listing page, so an interrupted run
// resumes where it stopped.
package main

import (
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/mmourani/hscode-scraper/internal/cli"
	"github.com/mmourani/hscode-scraper/internal/scraper"
)

func main() {
	app := cli.Start("scrape-cn-schedule")
	defer app.Close()

	opts := scraper.OptionsFromConfig(app.Config)
	chapters := flag.String("chapters", "", "comma-separated chapters to crawl (default all, 01-99)")
	flag.StringVar(&opts.OutputPath, "output", opts.OutputPath, "records output file")
	flag.StringVar(&opts.CheckpointPath, "checkpoint", opts.CheckpointPath, "checkpoint file")
	flag.IntVar(&opts.MaxPages, "max-pages", opts.MaxPages, "listing pages per chapter (0 for unlimited)")
	flag.DurationVar(&opts.Delay, "delay", opts.Delay, "pause between requests")
	flag.Parse()

	if *chapters != "" {
		for _, ch := range strings.Split(*chapters, ",") {
			ch = strings.TrimSpace(ch)
			if len(ch) == 1 {
				ch = "0" + ch
			}
			if ch != "" {
				opts.Chapters = append(opts.Chapters, ch)
			}
		}
	}

	s, err := scraper.New(opts, app.Logger)
	if err != nil {
		app.Fatal("failed to create scraper", err)
	}
	if err := s.Preflight(app.Ctx); err != nil {
		app.Fatal("source site unreachable", err)
	}

	stats, err := s.Run(app.Ctx)
	if err != nil && !errors.Is(err, app.Ctx.Err()) {
		app.Fatal("scrape failed", err)
	}
	if err != nil {
		app.Logger.Warn("scrape interrupted; rerun to resume", "error", err)
	}

	fmt.Printf("Scraped %d pages (%d skipped): %d detail records, %d fallbacks, %d failures. %d records in %s.\n",
		stats.Pages, stats.PagesSkipped, stats.Details, stats.Fallbacks, stats.Failures, stats.Records, opts.OutputPath)
}
