package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nao1215/domaindive/internal/model"
)

func openTestDB(t *testing.T) *HistoryDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testReport(address string, at time.Time, failed bool, errs map[model.DependencyKey]error) *model.AnalysisReport {
	items := []model.AnalysisResult{
		model.NewAnalysisResult("dns", map[string]string{"A": "192.0.2.1"}),
	}
	if failed {
		items = append(items, model.NewFailedResult("whois", errors.New("whois boom")))
	} else {
		items = append(items, model.NewAnalysisResult("whois", "registrar: Example"))
	}
	return model.NewAnalysisReport(address, at, items, errs)
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database file", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "nested")
		db, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer db.Close()

		if db.Path() != filepath.Join(dir, DBFileName) {
			t.Errorf("Path() = %q", db.Path())
		}
		if _, err := os.Stat(db.Path()); err != nil {
			t.Errorf("database file not created: %v", err)
		}
	})

	t.Run("missing database without create", func(t *testing.T) {
		t.Parallel()

		_, err := Open(t.TempDir(), Options{CreateIfNotExists: false})
		if err == nil {
			t.Error("Open() should fail when the database does not exist")
		}
	})

	t.Run("reopen existing database", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		db, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		if _, err := db.SaveReport(context.Background(), testReport("example.com", time.Now(), false, nil)); err != nil {
			t.Fatalf("SaveReport() error = %v", err)
		}
		_ = db.Close()

		db, err = Open(dir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err != nil {
			t.Fatalf("reopen error = %v", err)
		}
		defer db.Close()

		history, err := db.History(context.Background(), "example.com")
		if err != nil {
			t.Fatalf("History() error = %v", err)
		}
		if len(history) != 1 {
			t.Errorf("len(History()) = %d, want 1", len(history))
		}
	})
}

func TestHistoryDB_SaveAndLoad(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	errs := map[model.DependencyKey]error{"dns_records": errors.New("nxdomain")}
	id, err := db.SaveReport(ctx, testReport("example.com", at, true, errs))
	if err != nil {
		t.Fatalf("SaveReport() error = %v", err)
	}
	if id <= 0 {
		t.Errorf("SaveReport() id = %d, want positive", id)
	}

	got, err := db.ReportByID(ctx, id)
	if err != nil {
		t.Fatalf("ReportByID() error = %v", err)
	}
	if got.Address() != "example.com" {
		t.Errorf("Address() = %q", got.Address())
	}
	if !got.DateAnalyzed().Equal(at) {
		t.Errorf("DateAnalyzed() = %v, want %v", got.DateAnalyzed(), at)
	}
	items := got.Items()
	if len(items) != 2 || items[0].Analyzer != "dns" || items[1].Analyzer != "whois" {
		t.Fatalf("Items() = %+v", items)
	}
	if !items[1].Failed || items[1].Data != "whois boom" {
		t.Errorf("failed item = %+v", items[1])
	}
	depErr, ok := got.DependencyError("dns_records")
	if !ok || depErr.Error() != "nxdomain" {
		t.Errorf("DependencyError() = %v, %v", depErr, ok)
	}
}

func TestHistoryDB_LatestReport(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for i := range 3 {
		if _, err := db.SaveReport(ctx, testReport("example.com", base.Add(time.Duration(i)*time.Hour), false, nil)); err != nil {
			t.Fatalf("SaveReport() error = %v", err)
		}
	}
	if _, err := db.SaveReport(ctx, testReport("other.org", base.Add(10*time.Hour), false, nil)); err != nil {
		t.Fatalf("SaveReport() error = %v", err)
	}

	got, err := db.LatestReport(ctx, "example.com")
	if err != nil {
		t.Fatalf("LatestReport() error = %v", err)
	}
	if want := base.Add(2 * time.Hour); !got.DateAnalyzed().Equal(want) {
		t.Errorf("DateAnalyzed() = %v, want %v", got.DateAnalyzed(), want)
	}

	if _, err := db.LatestReport(ctx, "missing.net"); !errors.Is(err, ErrReportNotFound) {
		t.Errorf("LatestReport(missing) error = %v, want ErrReportNotFound", err)
	}
	if _, err := db.ReportByID(ctx, 999); !errors.Is(err, ErrReportNotFound) {
		t.Errorf("ReportByID(999) error = %v, want ErrReportNotFound", err)
	}
}

func TestHistoryDB_History(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	first, err := db.SaveReport(ctx, testReport("example.com", at, false, nil))
	if err != nil {
		t.Fatalf("SaveReport() error = %v", err)
	}
	errs := map[model.DependencyKey]error{
		"dns_records": errors.New("a"),
		"whois":       errors.New("b"),
	}
	second, err := db.SaveReport(ctx, testReport("example.com", at.Add(time.Hour), true, errs))
	if err != nil {
		t.Fatalf("SaveReport() error = %v", err)
	}

	history, err := db.History(ctx, "example.com")
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("len(History()) = %d, want 2", len(history))
	}
	if history[0].ID != second || history[1].ID != first {
		t.Errorf("History() order = %d, %d; want newest first", history[0].ID, history[1].ID)
	}
	latest := history[0]
	if latest.ItemCount != 2 || latest.FailedItems != 1 || latest.ErrorCount != 2 {
		t.Errorf("metadata = %+v", latest)
	}
	if !latest.Timestamp.Equal(at.Add(time.Hour)) {
		t.Errorf("Timestamp = %v", latest.Timestamp)
	}

	empty, err := db.History(ctx, "missing.net")
	if err != nil {
		t.Fatalf("History(missing) error = %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("History(missing) = %v, want empty", empty)
	}
}

func TestHistoryDB_ListAddressesAndRecent(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()
	now := time.Now()

	for _, address := range []string{"zeta.io", "example.com", "zeta.io", "alpha.dev"} {
		if _, err := db.SaveReport(ctx, testReport(address, now, false, nil)); err != nil {
			t.Fatalf("SaveReport() error = %v", err)
		}
	}

	addresses, err := db.ListAddresses(ctx)
	if err != nil {
		t.Fatalf("ListAddresses() error = %v", err)
	}
	want := []string{"alpha.dev", "example.com", "zeta.io"}
	if len(addresses) != len(want) {
		t.Fatalf("ListAddresses() = %v, want %v", addresses, want)
	}
	for i := range want {
		if addresses[i] != want[i] {
			t.Errorf("ListAddresses()[%d] = %q, want %q", i, addresses[i], want[i])
		}
	}

	recent, err := db.RecentReports(ctx, 2)
	if err != nil {
		t.Fatalf("RecentReports() error = %v", err)
	}
	if len(recent) != 2 || recent[0].Address != "alpha.dev" || recent[1].Address != "zeta.io" {
		t.Errorf("RecentReports(2) = %+v", recent)
	}

	none, err := db.RecentReports(ctx, 0)
	if err != nil || len(none) != 0 {
		t.Errorf("RecentReports(0) = %v, %v", none, err)
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		zero  bool
	}{
		{name: "RFC3339Nano", input: "2026-03-01T12:00:00.123456789Z"},
		{name: "RFC3339", input: "2026-03-01T12:00:00Z"},
		{name: "SQLite datetime", input: "2026-03-01 12:00:00"},
		{name: "SQLite datetime with millis", input: "2026-03-01 12:00:00.123"},
		{name: "invalid", input: "yesterday", zero: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := parseTimestamp(tt.input)
			if got.IsZero() != tt.zero {
				t.Errorf("parseTimestamp(%q) = %v, zero want %v", tt.input, got, tt.zero)
			}
		})
	}
}
