package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/mmourani/hscode-scraper/internal/models"
)

// ========================================
// Upsert Tests
// ========================================

func TestHSCodeRepository_Upsert(t *testing.T) {
	db := setupTestDB(t)
	repos := NewRepositories(db)
	ctx := context.Background()
	ae := mustCountry(t, repos, "United Arab Emirates", "AE")

	h := &models.HSCode{
		Code:        "01012100",
		Description: "Pure-bred breeding animals",
		CountryID:   ae.ID,
		Duty:        models.StringPtr("5%"),
		ExtraInfo:   models.EmptyExtras{},
	}
	if err := repos.HSCode.Upsert(ctx, h); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if h.ID == 0 {
		t.Fatal("Upsert() did not set ID")
	}
	firstID := h.ID

	again := &models.HSCode{
		Code:        "01012100",
		Description: "Pure-bred breeding horses",
		CountryID:   ae.ID,
		Duty:        models.StringPtr("0%"),
	}
	if err := repos.HSCode.Upsert(ctx, again); err != nil {
		t.Fatalf("second Upsert() error = %v", err)
	}
	if again.ID != firstID {
		t.Errorf("second Upsert() id = %d, want %d", again.ID, firstID)
	}

	if n := countRows(t, db, "hscodes"); n != 1 {
		t.Errorf("hscodes rows = %d, want 1", n)
	}

	got, err := repos.HSCode.Get(ctx, "01012100", ae.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Description != "Pure-bred breeding horses" {
		t.Errorf("Description = %q, want overwritten value", got.Description)
	}
	if got.Duty == nil || *got.Duty != "0%" {
		t.Errorf("Duty = %v, want 0%%", got.Duty)
	}
	if got.ExtraInfo != nil {
		t.Errorf("ExtraInfo = %v, want nil after overwrite", got.ExtraInfo)
	}
}

// ========================================
// InsertIfAbsent Tests
// ========================================

func TestHSCodeRepository_InsertIfAbsent(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()
	us := mustCountry(t, repos, "United States", "US")

	original := &models.HSCode{Code: "88021100", Description: "Helicopters", CountryID: us.ID, Duty: models.StringPtr("Free")}
	if err := repos.HSCode.Upsert(ctx, original); err != nil {
		t.Fatal(err)
	}

	inserted, err := repos.HSCode.InsertIfAbsent(ctx, &models.HSCode{
		Code:        "88021100",
		Description: "Acme X1 (drone)",
		CountryID:   us.ID,
		ExtraInfo:   models.SyncProvenance{Source: models.ProductMapSyncSource},
	})
	if err != nil {
		t.Fatal(err)
	}
	if inserted {
		t.Error("InsertIfAbsent() = true for an existing key")
	}

	got, _ := repos.HSCode.Get(ctx, "88021100", us.ID)
	if got.Description != "Helicopters" || got.Duty == nil || *got.Duty != "Free" {
		t.Errorf("existing row modified: %+v", got)
	}

	fresh := &models.HSCode{Code: "85269200", Description: "Radio", CountryID: us.ID}
	inserted, err = repos.HSCode.InsertIfAbsent(ctx, fresh)
	if err != nil {
		t.Fatal(err)
	}
	if !inserted || fresh.ID == 0 {
		t.Errorf("InsertIfAbsent() = %v, id %d; want true with id", inserted, fresh.ID)
	}
}

// ========================================
// Read Tests
// ========================================

func TestHSCodeRepository_ListDescribed(t *testing.T) {
	db := setupTestDB(t)
	repos := NewRepositories(db)
	ctx := context.Background()

	us := mustCountry(t, repos, "United States", "US")
	ae := mustCountry(t, repos, "United Arab Emirates", "AE")
	noISO := mustCountry(t, repos, "Nowhere", "")

	rows := []*models.HSCode{
		{Code: "0101", Description: "Horses", CountryID: us.ID},
		{Code: "0102", Description: "", CountryID: us.ID},
		{Code: "0101", Description: "Live horses", CountryID: ae.ID},
		{Code: "0103", Description: "Swine", CountryID: noISO.ID},
	}
	for _, h := range rows {
		if err := repos.HSCode.Upsert(ctx, h); err != nil {
			t.Fatal(err)
		}
	}

	got, err := repos.HSCode.ListDescribed(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("ListDescribed() len = %d, want 2 (%+v)", len(got), got)
	}
	if got[0].ISOCode != "US" || got[1].ISOCode != "AE" {
		t.Errorf("ListDescribed() order = %+v, want row id order", got)
	}
}

func TestHSCodeRepository_GetByCodeAndISO(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()
	ae := mustCountry(t, repos, "United Arab Emirates", "AE")

	if err := repos.HSCode.Upsert(ctx, &models.HSCode{Code: "85269200", Description: "Radio remote control", CountryID: ae.ID}); err != nil {
		t.Fatal(err)
	}

	got, err := repos.HSCode.GetByCodeAndISO(ctx, "85269200", "ae")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.Description != "Radio remote control" {
		t.Errorf("GetByCodeAndISO() = %+v", got)
	}

	missing, err := repos.HSCode.GetByCodeAndISO(ctx, "85269200", "US")
	if err != nil || missing != nil {
		t.Errorf("GetByCodeAndISO(US) = %+v, %v; want nil, nil", missing, err)
	}
}

func TestHSCodeRepository_ListByCodeAndCountry(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()
	us := mustCountry(t, repos, "United States", "US")
	cn := mustCountry(t, repos, "China", "CN")

	for _, h := range []*models.HSCode{
		{Code: "88021100", Description: "Helicopters", CountryID: us.ID},
		{Code: "88021100", Description: "Helicopters", CountryID: cn.ID},
		{Code: "03027100", Description: "Tilapias", CountryID: cn.ID},
	} {
		if err := repos.HSCode.Upsert(ctx, h); err != nil {
			t.Fatal(err)
		}
	}

	byCode, err := repos.HSCode.ListByCode(ctx, "88021100")
	if err != nil {
		t.Fatal(err)
	}
	if len(byCode) != 2 {
		t.Errorf("ListByCode() len = %d, want 2", len(byCode))
	}

	cnRows, err := repos.HSCode.ListByCountryISO(ctx, "CN")
	if err != nil {
		t.Fatal(err)
	}
	if len(cnRows) != 2 {
		t.Errorf("ListByCountryISO(CN) len = %d, want 2", len(cnRows))
	}

	count, err := repos.HSCode.CountByCountry(ctx, cn.ID)
	if err != nil || count != 2 {
		t.Errorf("CountByCountry() = %d, %v; want 2", count, err)
	}
}

func TestHSCodeRepository_UpdateExtraInfo(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()
	us := mustCountry(t, repos, "United States", "US")

	if err := repos.HSCode.Upsert(ctx, &models.HSCode{Code: "85269200", Description: "Radio", CountryID: us.ID}); err != nil {
		t.Fatal(err)
	}

	notes := models.ComplianceNotes{ECCN: "5A991", ComplianceNotes: "Check CCL"}
	n, err := repos.HSCode.UpdateExtraInfo(ctx, "85269200", "US", notes)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("UpdateExtraInfo() rows = %d, want 1", n)
	}

	got, _ := repos.HSCode.GetByCodeAndISO(ctx, "85269200", "US")
	stored, ok := got.ExtraInfo.(models.ComplianceNotes)
	if !ok {
		t.Fatalf("ExtraInfo = %T, want ComplianceNotes", got.ExtraInfo)
	}
	if stored.ECCN != "5A991" {
		t.Errorf("ECCN = %q, want 5A991", stored.ECCN)
	}

	n, err = repos.HSCode.UpdateExtraInfo(ctx, "99999999", "US", notes)
	if err != nil || n != 0 {
		t.Errorf("UpdateExtraInfo(missing) = %d, %v; want 0, nil", n, err)
	}
}

// ========================================
// Transaction Tests
// ========================================

func TestRepositories_WithTx_Rollback(t *testing.T) {
	db := setupTestDB(t)
	repos := NewRepositories(db)
	ctx := context.Background()

	boom := errors.New("boom")
	err := repos.WithTx(ctx, func(tx *Repositories) error {
		c, err := tx.Country.GetOrCreate(ctx, "China", "CN")
		if err != nil {
			return err
		}
		if err := tx.HSCode.Upsert(ctx, &models.HSCode{Code: "0101", CountryID: c.ID}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTx() error = %v, want boom", err)
	}

	if n := countRows(t, db, "countries"); n != 0 {
		t.Errorf("countries rows = %d after rollback, want 0", n)
	}
	if n := countRows(t, db, "hscodes"); n != 0 {
		t.Errorf("hscodes rows = %d after rollback, want 0", n)
	}
}

func TestRepositories_WithTx_Commit(t *testing.T) {
	db := setupTestDB(t)
	repos := NewRepositories(db)
	ctx := context.Background()

	err := repos.WithTx(ctx, func(tx *Repositories) error {
		// Nested WithTx joins the outer transaction.
		return tx.WithTx(ctx, func(inner *Repositories) error {
			_, err := inner.Country.GetOrCreate(ctx, "China", "CN")
			return err
		})
	})
	if err != nil {
		t.Fatal(err)
	}
	if n := countRows(t, db, "countries"); n != 1 {
		t.Errorf("countries rows = %d, want 1", n)
	}
}
