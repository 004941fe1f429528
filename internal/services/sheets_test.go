package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/desertthunder/taskdoc/internal/services"
	"github.com/desertthunder/taskdoc/internal/shared"
	tu "github.com/desertthunder/taskdoc/internal/testing"
	"github.com/google/go-cmp/cmp"
	"google.golang.org/api/option"
)

func TestSheetsService(t *testing.T) {
	srv := tu.NewSheetsServer(t, map[string][][]any{
		"Schedule": {
			{"Date", "Task Name", "Points"},
			{"2025-08-01", "Warm up", "3"},
			{"2025-08-02", "Lesson"},
			{},
			{"2025-08-03", "Review", "5", "overflow"},
		},
		"Bob's Tab": {
			{"Date"},
			{"2025-08-01"},
		},
		"Empty": {},
		"Dupes": {
			{"Date", "Date"},
			{"2025-08-01", "2025-08-02"},
		},
	})
	creds := services.NewCredentials(srv.Client())
	source := services.NewSheetsService(option.WithEndpoint(srv.Endpoint()))
	ctx := context.Background()

	t.Run("Rows", func(t *testing.T) {
		records, err := source.Rows(ctx, creds, "sheet-1", "Schedule")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(records) != 3 {
			t.Fatalf("expected 3 records (blank row skipped), got %d", len(records))
		}

		for i, rec := range records {
			if diff := cmp.Diff([]string{"Date", "Task Name", "Points"}, rec.Keys()); diff != "" {
				t.Errorf("record %d keys mismatch (-want +got):\n%s", i, diff)
			}
		}

		date, _ := records[0].Get("Date")
		if date.String() != "2025-08-01" {
			t.Errorf("expected first row date, got %q", date.String())
		}
		points, _ := records[0].Get("Points")
		if n, ok := points.Number(); !ok || n != 3 {
			t.Errorf("expected numeric points, got %v", points)
		}
		padded, ok := records[1].Get("Points")
		if !ok || !padded.IsEmpty() {
			t.Errorf("expected short row to be padded with empty, got %v", padded)
		}
		if records[2].Len() != 3 {
			t.Errorf("expected cells past the header to be dropped, got %d columns", records[2].Len())
		}
	})

	t.Run("quotes tab names", func(t *testing.T) {
		records, err := source.Rows(ctx, creds, "sheet-1", "Bob's Tab")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(records) != 1 {
			t.Errorf("expected 1 record, got %d", len(records))
		}
		last := srv.Requests[len(srv.Requests)-1]
		if last != "'Bob''s Tab'" {
			t.Errorf("expected quoted range, got %q", last)
		}
	})

	t.Run("empty tab", func(t *testing.T) {
		records, err := source.Rows(ctx, creds, "sheet-1", "Empty")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(records) != 0 {
			t.Errorf("expected no records, got %d", len(records))
		}
	})

	t.Run("missing tab", func(t *testing.T) {
		_, err := source.Rows(ctx, creds, "sheet-1", "Nope")
		if !errors.Is(err, shared.ErrSourceUnavailable) {
			t.Errorf("expected ErrSourceUnavailable, got %v", err)
		}
	})

	t.Run("duplicate headers", func(t *testing.T) {
		_, err := source.Rows(ctx, creds, "sheet-1", "Dupes")
		if !errors.Is(err, shared.ErrSourceUnavailable) {
			t.Errorf("expected ErrSourceUnavailable, got %v", err)
		}
	})

	t.Run("network failure", func(t *testing.T) {
		down := services.NewSheetsService(option.WithEndpoint("http://127.0.0.1:1/"))
		_, err := down.Rows(ctx, creds, "sheet-1", "Schedule")
		if !errors.Is(err, shared.ErrSourceUnavailable) {
			t.Errorf("expected ErrSourceUnavailable, got %v", err)
		}
	})
}

func TestRecordsFromValues(t *testing.T) {
	t.Run("blank header columns are dropped", func(t *testing.T) {
		records, err := services.RecordsFromValues([][]any{
			{"Date", "", "Task"},
			{"2025-08-01", "ignored", "Lesson"},
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if diff := cmp.Diff([]string{"Date", "Task"}, records[0].Keys()); diff != "" {
			t.Errorf("keys mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("header only", func(t *testing.T) {
		records, err := services.RecordsFromValues([][]any{{"Date"}})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(records) != 0 {
			t.Errorf("expected no records, got %d", len(records))
		}
	})
}
