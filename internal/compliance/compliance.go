// Package compliance writes export-control and import-permit notes onto HS code rows.
package compliance

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/mmourani/hscode-scraper/internal/models"
	"github.com/mmourani/hscode-scraper/internal/repository"
)

// Patch sets the compliance notes of one code in several countries.
type Patch struct {
	Code  string
	Notes map[string]models.ComplianceNotes // keyed by ISO code
}

// Radio85269200 is the compliance guidance for radio remote control apparatus
// (HS 85269200) in the US and UAE schedules.
func Radio85269200() Patch {
	return Patch{
		Code: "85269200",
		Notes: map[string]models.ComplianceNotes{
			"US": {
				ECCN:                  "5A991 (most commercial radios); 5A002 (if encryption)",
				ITAR:                  "Not ITAR unless military/defense",
				ExportLicenseRequired: "NLR for most destinations; license may be required for 5A002 or embargoed countries",
				ComplianceNotes:       "Check CCL and ITAR for final classification; consult Silvus or compliance officer",
			},
			"AE": {
				TDRAApprovalRequired: "Yes, for most radio equipment",
				ImportPermitRequired: "Yes, for wireless/telecom equipment",
				ComplianceNotes:      "Check with UAE TDRA for type approval and import permit requirements",
			},
		},
	}
}

// Builtin returns the known patches keyed by code.
func Builtin() map[string]Patch {
	p := Radio85269200()
	return map[string]Patch{p.Code: p}
}

// Result reports the rows changed per country. Countries whose row is
// missing are listed with zero.
type Result struct {
	Code    string
	Updated map[string]int64
}

// Total returns the number of rows changed.
func (r *Result) Total() int64 {
	var n int64
	for _, v := range r.Updated {
		n += v
	}
	return n
}

// Apply overwrites extra_info of the patched rows in one transaction.
// Rows that do not exist are not created.
func Apply(ctx context.Context, repos *repository.Repositories, patch Patch, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(patch.Code) == "" {
		return nil, fmt.Errorf("compliance patch has no code")
	}

	isos := make([]string, 0, len(patch.Notes))
	for iso := range patch.Notes {
		isos = append(isos, iso)
	}
	sort.Strings(isos)

	res := &Result{Code: patch.Code, Updated: make(map[string]int64, len(isos))}
	err := repos.WithTx(ctx, func(tx *repository.Repositories) error {
		for _, iso := range isos {
			n, err := tx.HSCode.UpdateExtraInfo(ctx, patch.Code, iso, patch.Notes[iso])
			if err != nil {
				return fmt.Errorf("failed to patch %s for %s: %w", patch.Code, iso, err)
			}
			res.Updated[iso] = n
			if n == 0 {
				logger.Warn("no row to patch", "code", patch.Code, "country", iso)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("compliance notes applied", "code", patch.Code, "rows", res.Total())
	return res, nil
}
