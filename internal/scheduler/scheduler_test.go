package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/taskdoc/internal/models"
	"github.com/desertthunder/taskdoc/internal/shared"
)

func record(kv ...string) models.Record {
	r := models.NewRecord()
	for i := 0; i+1 < len(kv); i += 2 {
		r.Set(kv[i], models.ParseValue(kv[i+1]))
	}
	return r
}

func fixed(date string) func() time.Time {
	return func() time.Time {
		t, err := time.Parse("2006-01-02", date)
		if err != nil {
			panic(err)
		}
		return t.Add(12 * time.Hour)
	}
}

var sampleRows = []models.Record{
	record("Date", "2025-08-01", "Pattern Focus", "Sliding Window", "Problem Title", "Longest Substring Without Repeating Characters"),
	record("Date", "2025-08-02", "Pattern Focus", "Sliding Window", "Problem Title", "Find All Anagrams in a String"),
}

func TestFindToday(t *testing.T) {
	tc := []struct {
		name      string
		today     string
		rows      []models.Record
		column    string
		wantFound bool
		wantTitle string
	}{
		{name: "first row matches", today: "2025-08-01", rows: sampleRows, column: "Date", wantFound: true, wantTitle: "Longest Substring Without Repeating Characters"},
		{name: "second row matches", today: "2025-08-02", rows: sampleRows, column: "Date", wantFound: true, wantTitle: "Find All Anagrams in a String"},
		{name: "no match", today: "2025-08-10", rows: sampleRows, column: "Date"},
		{name: "empty rows", today: "2025-08-01", rows: nil, column: "Date"},
		{name: "different format does not match", today: "2025-08-01", rows: []models.Record{record("Date", "2025/08/01")}, column: "Date"},
		{
			name:  "first duplicate wins",
			today: "2025-08-01",
			rows: []models.Record{
				record("Date", "2025-08-01", "Problem Title", "first"),
				record("Date", "2025-08-01", "Problem Title", "second"),
			},
			column:    "Date",
			wantFound: true,
			wantTitle: "first",
		},
		{
			name:      "custom column",
			today:     "2025-08-01",
			rows:      []models.Record{record("Scheduled Date", "2025-08-01", "Problem Title", "Custom Col")},
			column:    "Scheduled Date",
			wantFound: true,
			wantTitle: "Custom Col",
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			m := &Matcher{Now: fixed(tt.today), Location: time.UTC}

			got, found, err := m.FindToday(tt.rows, tt.column)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if found != tt.wantFound {
				t.Fatalf("found = %v, want %v", found, tt.wantFound)
			}
			if !found {
				return
			}
			title, _ := got.Get("Problem Title")
			if title.String() != tt.wantTitle {
				t.Errorf("expected %q, got %q", tt.wantTitle, title.String())
			}
		})
	}
}

func TestFindTodayMissingColumn(t *testing.T) {
	t.Run("fails fast before later rows", func(t *testing.T) {
		m := &Matcher{Now: fixed("2025-08-01"), Location: time.UTC}
		rows := []models.Record{
			record("Date", "2025-07-31"),
			record("OtherColumn", "2025-08-01"),
			record("Date", "2025-08-01"),
		}

		_, found, err := m.FindToday(rows, "Date")
		if !errors.Is(err, shared.ErrMissingColumn) {
			t.Fatalf("expected ErrMissingColumn, got %v", err)
		}
		if found {
			t.Error("expected no record when the column is missing")
		}
	})

	t.Run("column names are case sensitive", func(t *testing.T) {
		m := &Matcher{Now: fixed("2025-08-01"), Location: time.UTC}

		_, _, err := m.FindToday([]models.Record{record("date", "2025-08-01")}, "Date")
		if !errors.Is(err, shared.ErrMissingColumn) {
			t.Errorf("expected ErrMissingColumn, got %v", err)
		}
	})
}

func TestToday(t *testing.T) {
	t.Run("default layout", func(t *testing.T) {
		m := &Matcher{Now: fixed("2025-08-09"), Location: time.UTC}
		if got := m.Today(); got != "2025-08-09" {
			t.Errorf("expected 2025-08-09, got %s", got)
		}
	})

	t.Run("custom layout", func(t *testing.T) {
		m := &Matcher{Layout: "01/02/2006", Now: fixed("2025-08-09"), Location: time.UTC}
		if got := m.Today(); got != "08/09/2025" {
			t.Errorf("expected 08/09/2025, got %s", got)
		}
	})

	t.Run("evaluated in the configured zone", func(t *testing.T) {
		loc := time.FixedZone("UTC+10", 10*60*60)
		m := &Matcher{Location: loc, Now: func() time.Time {
			return time.Date(2025, 8, 9, 20, 0, 0, 0, time.UTC)
		}}
		if got := m.Today(); got != "2025-08-10" {
			t.Errorf("expected next day in UTC+10, got %s", got)
		}
	})

	t.Run("not cached between calls", func(t *testing.T) {
		day := "2025-08-09"
		m := &Matcher{Location: time.UTC, Now: func() time.Time { return fixed(day)() }}

		if got := m.Today(); got != "2025-08-09" {
			t.Fatalf("expected 2025-08-09, got %s", got)
		}
		day = "2025-08-10"
		if got := m.Today(); got != "2025-08-10" {
			t.Errorf("expected clock to be re-read, got %s", got)
		}
	})
}
