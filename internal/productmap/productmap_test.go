package productmap

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/mmourani/hscode-scraper/internal/database/migrations"
	"github.com/mmourani/hscode-scraper/internal/logging"
	"github.com/mmourani/hscode-scraper/internal/models"
	"github.com/mmourani/hscode-scraper/internal/repository"
	_ "github.com/tursodatabase/go-libsql"
)

func setupTestRepos(t *testing.T) (*repository.Repositories, *sql.DB) {
	t.Helper()

	db, err := sql.Open("libsql", ":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("failed to enable foreign keys: %v", err)
	}
	if err := migrations.Run(db, logging.Discard()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return repository.NewRepositories(db), db
}

func mustCountry(t *testing.T, repos *repository.Repositories, name, iso string) *models.Country {
	t.Helper()
	c, err := repos.Country.GetOrCreate(context.Background(), name, iso)
	if err != nil {
		t.Fatalf("failed to create country %s: %v", name, err)
	}
	return c
}

func mustCode(t *testing.T, repos *repository.Repositories, c *models.Country, code, desc string) {
	t.Helper()
	h := &models.HSCode{Code: code, Description: desc, CountryID: c.ID}
	if err := repos.HSCode.Upsert(context.Background(), h); err != nil {
		t.Fatalf("failed to upsert %s: %v", code, err)
	}
}

// ========================================
// Tokenizer Tests
// ========================================

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Tilapias (Oreochromis spp.), fresh or chilled", []string{"tilapias", "oreochromis", "spp", "fresh", "or", "chilled"}},
		{"- Horses: live", []string{"horses", "live"}},
		{"Radio-remote control_apparatus", []string{"radio", "remote", "control_apparatus"}},
		{"Käse, frisch", []string{"käse", "frisch"}},
		{"", nil},
	}

	for _, tt := range tests {
		got := Tokenize(tt.in)
		if len(got) == 0 && len(tt.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Tokenize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTypeOf(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Drones for aerial photography", "drones"},
		{"  -- Radio remote control apparatus", "radio"},
		{"- Tilapias (Oreochromis spp.), fresh or chilled", "tilapias"},
		{"", DefaultType},
		{"...", DefaultType},
	}
	for _, tt := range tests {
		if got := TypeOf(tt.in); got != tt.want {
			t.Errorf("TypeOf(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestKeywords(t *testing.T) {
	got := Keywords("Parts of drone, drone parts: for UAV")
	want := []string{"parts", "drone", "drone", "parts", "for", "uav"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Keywords() = %q, want %q", got, want)
	}

	if got := Keywords("a b"); got == nil || len(got) != 0 {
		t.Errorf("Keywords(short) = %#v, want empty non-nil slice", got)
	}
}

func TestTitle(t *testing.T) {
	tests := map[string]string{
		"acme":            "Acme",
		"quantum systems": "Quantum Systems",
		"DJI":             "Dji",
		"o'neil":          "O'Neil",
		"3dr robotics":    "3Dr Robotics",
		"":                "",
	}
	for in, want := range tests {
		if got := Title(in); got != want {
			t.Errorf("Title(%q) = %q, want %q", in, got, want)
		}
	}
}

// ========================================
// Generator Tests
// ========================================

func TestBuild_FirstRowWins(t *testing.T) {
	rows := []models.DescribedCode{
		{ISOCode: "AE", Code: "88021100", Description: "Helicopters of an unladen weight not exceeding 2,000 kg"},
		{ISOCode: "US", Code: "88021100", Description: "Rotorcraft, light"},
		{ISOCode: "US", Code: "85269200", Description: "Radio remote control apparatus"},
	}

	m := Build(rows)
	if len(m) != 2 {
		t.Fatalf("len(map) = %d, want 2", len(m))
	}

	heli := m["88021100"]
	if heli.Name != rows[0].Description {
		t.Errorf("Name = %q, want first row's description", heli.Name)
	}
	if heli.Type != "helicopters" {
		t.Errorf("Type = %q, want helicopters", heli.Type)
	}
	if heli.HasKeyword("rotorcraft") {
		t.Error("keywords of later rows must not be merged")
	}
	if !reflect.DeepEqual(heli.HSCodes, map[string]string{"AE": "88021100", "US": "88021100"}) {
		t.Errorf("HSCodes = %v, want both countries", heli.HSCodes)
	}
}

func TestGenerator_Generate(t *testing.T) {
	repos, _ := setupTestRepos(t)
	ctx := context.Background()

	ae := mustCountry(t, repos, "United Arab Emirates", "AE")
	us := mustCountry(t, repos, "United States", "US")
	legacy := mustCountry(t, repos, "Legacy", "")

	mustCode(t, repos, ae, "88021100", "Helicopters")
	mustCode(t, repos, us, "88021100", "Rotorcraft")
	mustCode(t, repos, us, "01012100", "")
	mustCode(t, repos, legacy, "99999999", "No ISO code")

	path := filepath.Join(t.TempDir(), "global_product_map.json")
	m, data, err := NewGenerator(repos, logging.Discard()).Generate(ctx, path)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(m) != 1 {
		t.Errorf("unique codes = %d, want 1 (empty descriptions and ISO-less countries excluded)", len(m))
	}

	onDisk, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(onDisk) != string(data) {
		t.Error("returned bytes should match the written file")
	}

	var decoded map[string]struct {
		Name     string            `json:"name"`
		Type     string            `json:"type"`
		Keywords []string          `json:"keywords"`
		HSCodes  map[string]string `json:"hs_codes"`
	}
	if err := json.Unmarshal(onDisk, &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	entry := decoded["88021100"]
	if entry.Name != "Helicopters" || entry.Type != "helicopters" || len(entry.HSCodes) != 2 {
		t.Errorf("entry = %+v", entry)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(loaded, m) {
		t.Error("Load() should read back the generated map")
	}
}

// ========================================
// Sync Tests
// ========================================

func TestSync_InsertsAcmeProduct(t *testing.T) {
	repos, db := setupTestRepos(t)
	ctx := context.Background()
	mustCountry(t, repos, "United Arab Emirates", "AE")

	var catalog models.BrandCatalog
	if err := json.Unmarshal([]byte(`{"acme":{"products":[{"name":"X1","type":"drone","hs_codes":{"uae":"88021100"}}]}}`), &catalog); err != nil {
		t.Fatal(err)
	}

	res, err := NewSyncer(repos, nil, logging.Discard()).Sync(ctx, catalog, "brand_products.json", "h")
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if res.Inserted != 1 {
		t.Errorf("Inserted = %d, want 1", res.Inserted)
	}

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM hscodes").Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("hscodes rows = %d, want 1", n)
	}

	got, _ := repos.HSCode.GetByCodeAndISO(ctx, "88021100", "AE")
	if got.Description != "Acme X1 (drone)" {
		t.Errorf("Description = %q, want %q", got.Description, "Acme X1 (drone)")
	}
	if got.Duty != nil {
		t.Errorf("Duty = %q, want NULL", *got.Duty)
	}
	if p, ok := got.ExtraInfo.(models.SyncProvenance); !ok || p.Source != "product map sync" {
		t.Errorf("ExtraInfo = %#v, want sync provenance", got.ExtraInfo)
	}

	var raw string
	if err := db.QueryRow("SELECT extra_info FROM hscodes WHERE code = '88021100'").Scan(&raw); err != nil {
		t.Fatal(err)
	}
	if raw != `{"source":"product map sync"}` {
		t.Errorf("stored extra_info = %s", raw)
	}
}

func TestSync_FirstCatalogBrandWins(t *testing.T) {
	repos, _ := setupTestRepos(t)
	ctx := context.Background()
	mustCountry(t, repos, "United Arab Emirates", "AE")

	var catalog models.BrandCatalog
	data := `{
		"zeta": {"products": [{"name": "Z9", "type": "radio", "hs_codes": {"uae": "85269200"}}]},
		"acme": {"products": [{"name": "A1", "type": "radio", "hs_codes": {"uae": "85269200"}}]}
	}`
	if err := json.Unmarshal([]byte(data), &catalog); err != nil {
		t.Fatal(err)
	}

	res, err := NewSyncer(repos, nil, logging.Discard()).Sync(ctx, catalog, "brand_products.json", "h")
	if err != nil {
		t.Fatal(err)
	}
	if res.Inserted != 1 || res.Existing != 1 {
		t.Errorf("Inserted, Existing = %d, %d; want 1, 1", res.Inserted, res.Existing)
	}

	got, _ := repos.HSCode.GetByCodeAndISO(ctx, "85269200", "AE")
	if got == nil || got.Description != "Zeta Z9 (radio)" {
		t.Errorf("row = %+v, want description %q", got, "Zeta Z9 (radio)")
	}
}

func TestSync_NeverOverwrites(t *testing.T) {
	repos, _ := setupTestRepos(t)
	ctx := context.Background()
	ae := mustCountry(t, repos, "United Arab Emirates", "AE")
	duty := "5%"
	existing := &models.HSCode{Code: "85269200", Description: "Radio remote control apparatus", CountryID: ae.ID, Duty: &duty}
	if err := repos.HSCode.Upsert(ctx, existing); err != nil {
		t.Fatal(err)
	}

	catalog := models.BrandCatalog{
		"silvus": {Products: []models.BrandProduct{
			{Name: "StreamCaster", Type: "radio", HSCodes: map[string]models.FlexText{"UAE": models.Text("85269200")}},
		}},
	}

	syncer := NewSyncer(repos, nil, logging.Discard())
	for i := 0; i < 2; i++ {
		res, err := syncer.Sync(ctx, catalog, "brand_products.json", "h")
		if err != nil {
			t.Fatal(err)
		}
		if res.Inserted != 0 || res.Existing != 1 {
			t.Errorf("run %d: Inserted, Existing = %d, %d; want 0, 1", i, res.Inserted, res.Existing)
		}
	}

	got, _ := repos.HSCode.GetByCodeAndISO(ctx, "85269200", "AE")
	if got.Description != "Radio remote control apparatus" || got.Duty == nil || *got.Duty != "5%" {
		t.Errorf("existing row modified: %+v", got)
	}
	if got.ExtraInfo != nil {
		t.Errorf("ExtraInfo = %v, want untouched NULL", got.ExtraInfo)
	}
}

func TestSync_SkipsUnresolvable(t *testing.T) {
	repos, db := setupTestRepos(t)
	ctx := context.Background()
	mustCountry(t, repos, "United States", "US")

	catalog := models.BrandCatalog{
		"acme": {Products: []models.BrandProduct{{
			Name: "X1",
			Type: "drone",
			HSCodes: map[string]models.FlexText{
				"mars":    models.Text("88021100"), // unknown label
				"us":      {},                      // null code
				"germany": models.Text("88021100"), // EU has no country row
				"US":      models.Text("88062200"),
			},
		}}},
	}

	res, err := NewSyncer(repos, nil, logging.Discard()).Sync(ctx, catalog, "brand_products.json", "h")
	if err != nil {
		t.Fatal(err)
	}
	if res.Inserted != 1 || res.UnknownLabel != 2 || res.NoCountry != 1 {
		t.Errorf("result = %+v", res)
	}

	var n int
	_ = db.QueryRow("SELECT COUNT(*) FROM countries").Scan(&n)
	if n != 1 {
		t.Errorf("countries = %d, sync must not create countries", n)
	}

	runs, err := repos.ImportRun.ListRecent(ctx, 1)
	if err != nil || len(runs) != 1 {
		t.Fatalf("ListRecent() = %v, %v", runs, err)
	}
	if runs[0].Source != models.ImportSourceProductSync || runs[0].Records != 1 || runs[0].Skipped != 3 {
		t.Errorf("import run = %+v", runs[0])
	}
}

// ========================================
// Query Tests
// ========================================

func sampleMap() models.ProductMap {
	return Build([]models.DescribedCode{
		{ISOCode: "AE", Code: "88062200", Description: "Drone aircraft, unmanned"},
		{ISOCode: "US", Code: "88062200", Description: "Unmanned aircraft"},
		{ISOCode: "US", Code: "85269200", Description: "Radio remote control apparatus"},
		{ISOCode: "AE", Code: "85258900", Description: "Drone cameras"},
	})
}

func TestQueries(t *testing.T) {
	m := sampleMap()

	drones := ByKeyword(m, "drone")
	if len(drones) != 2 || drones[0].Code != "85258900" || drones[1].Code != "88062200" {
		t.Errorf("ByKeyword(drone) = %+v", drones)
	}

	if got := ByKeyword(m, "dron"); len(got) != 0 {
		t.Errorf("ByKeyword must match whole keywords, got %d", len(got))
	}

	radios := ByType(m, "radio")
	if len(radios) != 1 || radios[0].Code != "85269200" {
		t.Errorf("ByType(radio) = %+v", radios)
	}

	if _, ok := ByCode(m, "00000000"); ok {
		t.Error("ByCode() should miss unknown codes")
	}
}

func TestQuerier_Details(t *testing.T) {
	repos, _ := setupTestRepos(t)
	ctx := context.Background()
	ae := mustCountry(t, repos, "United Arab Emirates", "AE")
	mustCode(t, repos, ae, "88062200", "Drone aircraft, unmanned")

	match, ok := ByCode(sampleMap(), "88062200")
	if !ok {
		t.Fatal("88062200 missing from sample map")
	}

	details, err := NewQuerier(repos).Details(ctx, match.Entry)
	if err != nil {
		t.Fatal(err)
	}
	if len(details) != 2 {
		t.Fatalf("details = %d, want 2", len(details))
	}
	if details[0].ISOCode != "AE" || details[0].Row == nil {
		t.Errorf("AE detail = %+v", details[0])
	}
	if details[1].ISOCode != "US" || details[1].Row != nil {
		t.Errorf("US detail should have no row: %+v", details[1])
	}
}
