// Package scraper crawls the China HS code schedule published on htshub.com and
// writes it as a rich schedule JSON file for the schedule importer.
//
// Chapters 01 to 99 are listed at {base}/chapter/NN and continue on
// {base}/chapter/NN-2, NN-3 and so on. Each listed code links to a detail page
// holding the tariff fields and the customs and CIQ requirement tables.
// Progress is checkpointed per listing page so an interrupted crawl resumes
// where it stopped.
package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"github.com/mmourani/hscode-scraper/internal/config"
	"github.com/mmourani/hscode-scraper/internal/version"
)

// Options configures a crawl.
type Options struct {
	BaseURL        string
	OutputPath     string
	CheckpointPath string
	Chapters       []string // defaults to AllChapters()
	Delay          time.Duration
	Timeout        time.Duration
	MaxPages       int // per chapter; 0 means until a page lists no codes
	IgnoreRobots   bool
	UserAgent      string
}

// OptionsFromConfig builds crawl options from the application config.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		BaseURL:        cfg.ScraperBaseURL,
		OutputPath:     cfg.ScraperOutputPath,
		CheckpointPath: cfg.ScraperCheckpointPath,
		Delay:          cfg.ScraperDelay,
		Timeout:        cfg.ScraperTimeout,
		MaxPages:       cfg.ScraperMaxPages,
		IgnoreRobots:   cfg.ScraperIgnoreRobots,
	}
}

// AllChapters returns the chapter numbers "01" to "99".
func AllChapters() []string {
	chapters := make([]string, 0, 99)
	for i := 1; i <= 99; i++ {
		chapters = append(chapters, fmt.Sprintf("%02d", i))
	}
	return chapters
}

// Stats summarises a crawl.
type Stats struct {
	Pages        int // listing pages scraped
	PagesSkipped int // listing pages skipped from the checkpoint
	Details      int // rich detail records
	Fallbacks    int // simple records written for detail pages without an HTS Code
	Failures     int // detail pages that could not be fetched
	Records      int // records in the output file
}

// Scraper crawls the schedule.
type Scraper struct {
	opts      Options
	collector *colly.Collector
	logger    *slog.Logger
}

// New creates a scraper.
func New(opts Options, logger *slog.Logger) (*Scraper, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(opts.BaseURL) == "" {
		return nil, errors.New("scraper base URL required")
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if len(opts.Chapters) == 0 {
		opts.Chapters = AllChapters()
	}
	if opts.UserAgent == "" {
		opts.UserAgent = version.Get().UserAgent()
	}

	c := colly.NewCollector(
		colly.UserAgent(opts.UserAgent),
		colly.AllowURLRevisit(),
	)
	c.IgnoreRobotsTxt = opts.IgnoreRobots
	if opts.Timeout > 0 {
		c.SetRequestTimeout(opts.Timeout)
	}
	if opts.Delay > 0 {
		if err := c.Limit(&colly.LimitRule{DomainGlob: "*", Delay: opts.Delay}); err != nil {
			return nil, fmt.Errorf("invalid crawl limit: %w", err)
		}
	}

	return &Scraper{opts: opts, collector: c, logger: logger}, nil
}

// Preflight resolves the target host and fetches the base URL, failing early
// when the site is unreachable.
func (s *Scraper) Preflight(ctx context.Context) error {
	u, err := url.Parse(s.opts.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL %q: %w", s.opts.BaseURL, err)
	}

	addrs, err := net.DefaultResolver.LookupHost(ctx, u.Hostname())
	if err != nil {
		return fmt.Errorf("DNS resolution failed for %s: %w", u.Hostname(), err)
	}
	s.logger.Info("DNS resolved", "host", u.Hostname(), "addresses", addrs)

	if _, status, err := s.fetch(ctx, s.opts.BaseURL); err != nil {
		if status >= 400 && status < 500 {
			return fmt.Errorf("cannot reach %s: HTTP %d (page missing or access blocked): %w", s.opts.BaseURL, status, err)
		}
		if status >= 500 {
			return fmt.Errorf("cannot reach %s: HTTP %d (server error): %w", s.opts.BaseURL, status, err)
		}
		return fmt.Errorf("cannot reach %s: %w", s.opts.BaseURL, err)
	}
	s.logger.Info("connection successful", "url", s.opts.BaseURL)
	return nil
}

// PageURL returns the listing URL of a chapter page.
func (s *Scraper) PageURL(chapter string, page int) string {
	if page == 1 {
		return fmt.Sprintf("%s/chapter/%s", s.opts.BaseURL, chapter)
	}
	return fmt.Sprintf("%s/chapter/%s-%d", s.opts.BaseURL, chapter, page)
}

// Run crawls every configured chapter. Output and checkpoint are rewritten
// after each listing page.
func (s *Scraper) Run(ctx context.Context) (*Stats, error) {
	checkpoint, err := LoadCheckpoint(s.opts.CheckpointPath)
	if err != nil {
		return nil, err
	}
	records := LoadRecords(s.opts.OutputPath)
	if len(records) > 0 {
		s.logger.Info("resuming crawl", "records", len(records), "pages_done", len(checkpoint))
	}

	stats := &Stats{}
	for _, chapter := range s.opts.Chapters {
		for page := 1; s.opts.MaxPages <= 0 || page <= s.opts.MaxPages; page++ {
			if err := ctx.Err(); err != nil {
				return stats, err
			}

			key := PageKey(chapter, page)
			if checkpoint[key] {
				s.logger.Debug("skipping scraped page", "page", key)
				stats.PagesSkipped++
				continue
			}

			pageURL := s.PageURL(chapter, page)
			items, err := s.listPage(ctx, pageURL)
			if err != nil {
				if ctx.Err() != nil {
					return stats, ctx.Err()
				}
				s.logger.Warn("listing page unavailable, ending chapter", "url", pageURL, "error", err)
				break
			}
			if len(items) == 0 {
				s.logger.Debug("no codes listed, ending chapter", "url", pageURL)
				break
			}

			for _, item := range items {
				if err := ctx.Err(); err != nil {
					return stats, err
				}
				rec, err := s.detail(ctx, item)
				if err != nil {
					stats.Failures++
					s.logger.Error("failed to scrape detail", "code", item.Code, "url", item.DetailURL, "error", err)
					continue
				}
				if code, _ := rec[FieldHTSCode].(string); code != "" {
					stats.Details++
				} else {
					rec = Fallback(item)
					stats.Fallbacks++
					s.logger.Debug("detail page has no HTS Code, using listing", "code", item.Code)
				}
				records = append(records, rec)
			}

			stats.Pages++
			checkpoint[key] = true
			if err := checkpoint.Save(s.opts.CheckpointPath); err != nil {
				return stats, fmt.Errorf("failed to save checkpoint: %w", err)
			}
			records = Dedupe(records)
			if err := SaveRecords(s.opts.OutputPath, records); err != nil {
				return stats, fmt.Errorf("failed to save records: %w", err)
			}
			s.logger.Info("page scraped", "page", key, "codes", len(items), "records", len(records))
		}
	}

	records = Dedupe(records)
	stats.Records = len(records)
	if err := SaveRecords(s.opts.OutputPath, records); err != nil {
		return stats, fmt.Errorf("failed to save records: %w", err)
	}
	return stats, nil
}

func (s *Scraper) listPage(ctx context.Context, pageURL string) ([]ListItem, error) {
	doc, _, err := s.fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	return ParseList(doc, pageURL), nil
}

func (s *Scraper) detail(ctx context.Context, item ListItem) (Record, error) {
	doc, _, err := s.fetch(ctx, item.DetailURL)
	if err != nil {
		return nil, err
	}
	return ParseDetail(doc), nil
}

// fetch visits one URL synchronously and parses the response body. The HTTP
// status is returned when a response was received.
func (s *Scraper) fetch(ctx context.Context, target string) (*goquery.Document, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	c := s.collector.Clone()

	var (
		doc      *goquery.Document
		status   int
		fetchErr error
	)
	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
		}
	})
	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		doc, fetchErr = goquery.NewDocumentFromReader(bytes.NewReader(r.Body))
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
		fetchErr = err
	})

	if err := c.Visit(target); err != nil && fetchErr == nil {
		fetchErr = err
	}
	if fetchErr == nil && doc == nil {
		fetchErr = ctx.Err()
		if fetchErr == nil {
			fetchErr = fmt.Errorf("no response from %s", target)
		}
	}
	if fetchErr != nil {
		return nil, status, fetchErr
	}
	return doc, status, nil
}
