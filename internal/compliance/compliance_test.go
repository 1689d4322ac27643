package compliance

import (
	"context"
	"database/sql"
	"testing"

	"github.com/mmourani/hscode-scraper/internal/database/migrations"
	"github.com/mmourani/hscode-scraper/internal/logging"
	"github.com/mmourani/hscode-scraper/internal/models"
	"github.com/mmourani/hscode-scraper/internal/repository"
	_ "github.com/tursodatabase/go-libsql"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("libsql", ":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	db.SetMaxOpenConns(1)
	if err := migrations.Run(db, logging.Discard()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestApply_Radio85269200(t *testing.T) {
	db := setupTestDB(t)
	repos := repository.NewRepositories(db)
	ctx := context.Background()

	for _, c := range []struct{ name, iso, code string }{
		{"United States", "US", "85269200"},
		{"United Arab Emirates", "AE", "85269200"},
		{"China", "CN", "85269200"},
	} {
		country, err := repos.Country.GetOrCreate(ctx, c.name, c.iso)
		if err != nil {
			t.Fatal(err)
		}
		if err := repos.HSCode.Upsert(ctx, &models.HSCode{Code: c.code, Description: "Radio remote control apparatus", CountryID: country.ID}); err != nil {
			t.Fatal(err)
		}
	}

	res, err := Apply(ctx, repos, Radio85269200(), logging.Discard())
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if res.Total() != 2 || res.Updated["US"] != 1 || res.Updated["AE"] != 1 {
		t.Errorf("Updated = %v, want one row each for US and AE", res.Updated)
	}

	var us string
	if err := db.QueryRow(`
		SELECT h.extra_info FROM hscodes h JOIN countries c ON c.id = h.country_id
		WHERE h.code = '85269200' AND c.iso_code = 'US'`).Scan(&us); err != nil {
		t.Fatal(err)
	}
	want := `{"eccn":"5A991 (most commercial radios); 5A002 (if encryption)","itar":"Not ITAR unless military/defense","export_license_required":"NLR for most destinations; license may be required for 5A002 or embargoed countries","compliance_notes":"Check CCL and ITAR for final classification; consult Silvus or compliance officer"}`
	if us != want {
		t.Errorf("US extra_info = %s\nwant %s", us, want)
	}

	ae, _ := repos.HSCode.GetByCodeAndISO(ctx, "85269200", "AE")
	notes, ok := ae.ExtraInfo.(models.ComplianceNotes)
	if !ok {
		t.Fatalf("AE ExtraInfo = %T, want ComplianceNotes", ae.ExtraInfo)
	}
	if notes.TDRAApprovalRequired != "Yes, for most radio equipment" || notes.ECCN != "" {
		t.Errorf("AE notes = %+v", notes)
	}

	cn, _ := repos.HSCode.GetByCodeAndISO(ctx, "85269200", "CN")
	if cn.ExtraInfo != nil {
		t.Errorf("CN row should be untouched, got %v", cn.ExtraInfo)
	}
}

func TestApply_MissingRows(t *testing.T) {
	db := setupTestDB(t)
	repos := repository.NewRepositories(db)

	res, err := Apply(context.Background(), repos, Radio85269200(), logging.Discard())
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if res.Total() != 0 {
		t.Errorf("Total() = %d, want 0", res.Total())
	}

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM hscodes").Scan(&n); err != nil || n != 0 {
		t.Errorf("hscodes rows = %d, %v", n, err)
	}
}

func TestApply_RequiresCode(t *testing.T) {
	repos := repository.NewRepositories(setupTestDB(t))
	if _, err := Apply(context.Background(), repos, Patch{}, logging.Discard()); err == nil {
		t.Error("Apply() should reject a patch without a code")
	}
}

func TestBuiltin(t *testing.T) {
	if _, ok := Builtin()["85269200"]; !ok {
		t.Error("Builtin() should include 85269200")
	}
}
