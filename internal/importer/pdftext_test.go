package importer

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/mmourani/hscode-scraper/internal/models"
)

// ========================================
// ParsePDFText Tests
// ========================================

func TestParsePDFText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []PDFLine
	}{
		{
			name: "contiguous code",
			text: "85269200 Radio remote control apparatus 5%",
			want: []PDFLine{{Code: "85269200", Description: "Radio remote control apparatus", Duty: "5%"}},
		},
		{
			name: "spaced code with dash",
			text: "8802 11 00 - Helicopters of an unladen weight not exceeding 2,000 kg 0%",
			want: []PDFLine{{Code: "88021100", Description: "Helicopters of an unladen weight not exceeding 2,000 kg", Duty: "0%"}},
		},
		{
			name: "multiple lines with noise",
			text: "Chapter 1\n0101 2100 Pure-bred horses 5%\nSection notes\n0102 2900 Other bovine animals 10%\n",
			want: []PDFLine{
				{Code: "01012100", Description: "Pure-bred horses", Duty: "5%"},
				{Code: "01022900", Description: "Other bovine animals", Duty: "10%"},
			},
		},
		{
			name: "no duty",
			text: "01012100 Pure-bred horses free",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParsePDFText(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("ParsePDFText() returned %d lines, want %d: %+v", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("line %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

// ========================================
// ImportPDFText Tests
// ========================================

func TestImportPDFText_Idempotent(t *testing.T) {
	im, repos, db := setupImporter(t)
	ctx := context.Background()
	uae := Country{ISOCode: "AE"}
	text := "0101 2100 Pure-bred horses 5%\n8526 92 00 Radio remote control apparatus 5%\n"

	for i := 0; i < 2; i++ {
		res, err := im.ImportPDFText(ctx, uae, text, "uae.pdf", "h")
		if err != nil {
			t.Fatalf("run %d: ImportPDFText() error = %v", i, err)
		}
		if res.Imported != 2 {
			t.Errorf("run %d: Imported = %d, want 2", i, res.Imported)
		}
	}

	if n := countRows(t, db, "SELECT COUNT(*) FROM hscodes"); n != 2 {
		t.Errorf("hscodes rows = %d, want 2 after re-import", n)
	}
	if n := countRows(t, db, "SELECT COUNT(*) FROM countries"); n != 1 {
		t.Errorf("countries rows = %d, want 1", n)
	}

	got, _ := repos.HSCode.GetByCodeAndISO(ctx, "85269200", "AE")
	if got == nil {
		t.Fatal("expected 85269200 for AE")
	}
	if _, ok := got.ExtraInfo.(models.EmptyExtras); !ok {
		t.Errorf("ExtraInfo = %T, want EmptyExtras", got.ExtraInfo)
	}
	if got.Duty == nil || *got.Duty != "5%" {
		t.Errorf("Duty = %v, want 5%%", got.Duty)
	}

	c, _ := repos.Country.GetByISO(ctx, "AE")
	if c.Name != "United Arab Emirates" {
		t.Errorf("country name = %q, want name from the default table", c.Name)
	}
}

func TestImportPDF_MissingFile(t *testing.T) {
	im, _, _ := setupImporter(t)

	_, err := im.ImportPDF(context.Background(), Country{ISOCode: "AE"}, filepath.Join(t.TempDir(), "none.pdf"), "")
	if !errors.Is(err, ErrSourceMissing) {
		t.Errorf("error = %v, want ErrSourceMissing", err)
	}
}

func TestExtractPDFText_RequiresPath(t *testing.T) {
	if _, err := ExtractPDFText(context.Background(), "", " "); err == nil {
		t.Error("ExtractPDFText() should reject an empty path")
	}
}
