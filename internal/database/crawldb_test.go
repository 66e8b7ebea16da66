package database

import (
	"context"
	"testing"
	"time"

	"github.com/nao1215/onionharvest/internal/model"
)

// openTestDB opens a CrawlDB in a per-test temporary directory.
func openTestDB(t *testing.T) *CrawlDB {
	t.Helper()

	cdb, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		if err := cdb.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return cdb
}

func testSession(query string) *model.Session {
	started := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	return &model.Session{
		Query: query,
		Seeds: []string{"http://first.onion/", "http://second.onion/"},
		Records: []model.Record{
			{Text: "the first extracted record of the run", Link: "http://first.onion/a", Tag: "p", Source: "http://first.onion/"},
			{Text: "the second extracted record of the run", Tag: "div", Source: "http://second.onion/"},
		},
		PagesVisited: 3,
		StartedAt:    started,
		FinishedAt:   started.Add(time.Minute),
	}
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates the database file on first open", func(t *testing.T) {
		t.Parallel()

		openTestDB(t)
	})

	t.Run("refuses a missing database without create option", func(t *testing.T) {
		t.Parallel()

		opts := Options{CreateIfNotExists: false}
		if _, err := Open(t.TempDir(), opts); err == nil {
			t.Fatal("Open() error = nil, want missing-database error")
		}
	})
}

func TestCrawlDBSaveSession(t *testing.T) {
	t.Parallel()

	t.Run("round-trips a session", func(t *testing.T) {
		t.Parallel()

		cdb := openTestDB(t)
		ctx := context.Background()

		runID, err := cdb.SaveSession(ctx, testSession("hidden wiki"))
		if err != nil {
			t.Fatalf("SaveSession() error = %v", err)
		}

		got, err := cdb.GetSession(ctx, runID)
		if err != nil {
			t.Fatalf("GetSession() error = %v", err)
		}
		if got == nil {
			t.Fatal("GetSession() = nil for a stored run")
		}
		if got.Query != "hidden wiki" {
			t.Errorf("query = %q, want %q", got.Query, "hidden wiki")
		}
		if len(got.Seeds) != 2 {
			t.Errorf("seeds = %v, want 2 entries", got.Seeds)
		}
		if len(got.Records) != 2 {
			t.Fatalf("records = %d, want 2", len(got.Records))
		}
		if got.Records[0].Link != "http://first.onion/a" {
			t.Errorf("first record link = %q", got.Records[0].Link)
		}
		if got.Records[1].Link != "" {
			t.Errorf("linkless record link = %q, want empty", got.Records[1].Link)
		}
		if got.PagesVisited != 3 {
			t.Errorf("pages visited = %d, want 3", got.PagesVisited)
		}
		if !got.StartedAt.Equal(time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)) {
			t.Errorf("started at = %v", got.StartedAt)
		}
	})

	t.Run("missing run returns nil without error", func(t *testing.T) {
		t.Parallel()

		cdb := openTestDB(t)

		got, err := cdb.GetSession(context.Background(), 12345)
		if err != nil {
			t.Fatalf("GetSession() error = %v", err)
		}
		if got != nil {
			t.Errorf("GetSession() = %+v, want nil", got)
		}
	})
}

func TestCrawlDBListRuns(t *testing.T) {
	t.Parallel()

	t.Run("lists runs newest first", func(t *testing.T) {
		t.Parallel()

		cdb := openTestDB(t)
		ctx := context.Background()

		first := testSession("older run")
		second := testSession("newer run")
		second.StartedAt = first.StartedAt.Add(time.Hour)
		second.FinishedAt = second.StartedAt.Add(time.Minute)

		if _, err := cdb.SaveSession(ctx, first); err != nil {
			t.Fatalf("SaveSession() error = %v", err)
		}
		if _, err := cdb.SaveSession(ctx, second); err != nil {
			t.Fatalf("SaveSession() error = %v", err)
		}

		runs, err := cdb.ListRuns(ctx, 0)
		if err != nil {
			t.Fatalf("ListRuns() error = %v", err)
		}
		if len(runs) != 2 {
			t.Fatalf("ListRuns() returned %d runs, want 2", len(runs))
		}
		if runs[0].Query != "newer run" || runs[1].Query != "older run" {
			t.Errorf("run order = [%q, %q], want newest first", runs[0].Query, runs[1].Query)
		}
		if runs[0].RecordCount != 2 {
			t.Errorf("record count = %d, want 2", runs[0].RecordCount)
		}
	})

	t.Run("limit caps the listing", func(t *testing.T) {
		t.Parallel()

		cdb := openTestDB(t)
		ctx := context.Background()

		for i := 0; i < 3; i++ {
			s := testSession("run")
			s.StartedAt = s.StartedAt.Add(time.Duration(i) * time.Hour)
			if _, err := cdb.SaveSession(ctx, s); err != nil {
				t.Fatalf("SaveSession() error = %v", err)
			}
		}

		runs, err := cdb.ListRuns(ctx, 2)
		if err != nil {
			t.Fatalf("ListRuns() error = %v", err)
		}
		if len(runs) != 2 {
			t.Errorf("ListRuns() returned %d runs, want 2", len(runs))
		}
	})

	t.Run("empty database lists nothing", func(t *testing.T) {
		t.Parallel()

		cdb := openTestDB(t)

		runs, err := cdb.ListRuns(context.Background(), 0)
		if err != nil {
			t.Fatalf("ListRuns() error = %v", err)
		}
		if len(runs) != 0 {
			t.Errorf("ListRuns() returned %d runs, want 0", len(runs))
		}
	})
}

func TestCrawlDBGetRecords(t *testing.T) {
	t.Parallel()

	t.Run("returns records in insertion order", func(t *testing.T) {
		t.Parallel()

		cdb := openTestDB(t)
		ctx := context.Background()

		runID, err := cdb.SaveSession(ctx, testSession("ordered"))
		if err != nil {
			t.Fatalf("SaveSession() error = %v", err)
		}

		records, err := cdb.GetRecords(ctx, runID)
		if err != nil {
			t.Fatalf("GetRecords() error = %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("GetRecords() returned %d records, want 2", len(records))
		}
		if records[0].Tag != "p" || records[1].Tag != "div" {
			t.Errorf("record order = [%q, %q], want insertion order", records[0].Tag, records[1].Tag)
		}
	})
}
