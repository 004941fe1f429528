package formatter

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/desertthunder/taskdoc/internal/models"
	"github.com/desertthunder/taskdoc/internal/shared"
	"github.com/google/go-cmp/cmp"
)

func testPreview() *models.Preview {
	return &models.Preview{
		RunID: "run-123",
		Date:  "2025-08-01",
		Blocks: []models.BlockOutcome{
			{Name: "Daily Problem", DocID: "doc-1", Status: models.BlockRendered, Title: "2025-08-01: Two Sum"},
			{Name: "Reading", DocID: "doc-2", Status: models.BlockNoTask},
			{Name: "Archived", DocID: "doc-3", Status: models.BlockDisabled},
		},
		Destinations: []models.Destination{
			{DocID: "doc-1", Content: "Problem: Two Sum\nLevel: Easy"},
		},
	}
}

func TestFormatters(t *testing.T) {
	t.Run("PreviewToText", func(t *testing.T) {
		data, err := PreviewToText(testPreview())
		if err != nil {
			t.Fatalf("PreviewToText failed: %v", err)
		}
		output := string(data)

		for _, want := range []string{
			"Preview for 2025-08-01",
			"run-123",
			"Daily Problem → doc-1: 2025-08-01: Two Sum",
			"Reading → doc-2",
			"(no task today)",
			"Archived",
			"(disabled)",
			"doc-1",
			"Problem: Two Sum\nLevel: Easy",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("text output missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("PreviewToText with nothing to write", func(t *testing.T) {
		p := testPreview()
		p.Destinations = nil
		data, err := PreviewToText(p)
		if err != nil {
			t.Fatalf("PreviewToText failed: %v", err)
		}
		if !strings.Contains(string(data), "nothing to write today") {
			t.Errorf("expected empty notice, got:\n%s", data)
		}
	})

	t.Run("PreviewToMarkdown", func(t *testing.T) {
		data, err := PreviewToMarkdown(testPreview())
		if err != nil {
			t.Fatalf("PreviewToMarkdown failed: %v", err)
		}
		output := string(data)

		for _, want := range []string{
			"# Preview for 2025-08-01",
			"**Run**: `run-123`",
			"| Daily Problem | doc-1 | rendered | 2025-08-01: Two Sum |",
			"| Reading | doc-2 | no_task |  |",
			"### doc-1",
			"```\nProblem: Two Sum\nLevel: Easy\n```",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("markdown output missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("PreviewToJSON", func(t *testing.T) {
		data, err := PreviewToJSON(testPreview())
		if err != nil {
			t.Fatalf("PreviewToJSON failed: %v", err)
		}

		var got models.Preview
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if diff := cmp.Diff(*testPreview(), got); diff != "" {
			t.Errorf("preview mismatch (-want +got):\n%s", diff)
		}
		if !strings.Contains(string(data), `"doc_id": "doc-1"`) {
			t.Errorf("expected snake_case keys, got:\n%s", data)
		}
	})

	t.Run("ResultToText", func(t *testing.T) {
		r := &models.RunResult{
			Updated: 1,
			Failed:  1,
			Writes: []models.WriteOutcome{
				{DocID: "doc-1", Bytes: 27},
				{DocID: "doc-2", Err: errors.New("permission denied")},
			},
		}
		data, err := ResultToText(r)
		if err != nil {
			t.Fatalf("ResultToText failed: %v", err)
		}
		output := string(data)

		for _, want := range []string{"doc-1", "(27 bytes)", "doc-2: permission denied", "Updated 1 document(s), 1 failed"} {
			if !strings.Contains(output, want) {
				t.Errorf("result output missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("ResultToText with no writes", func(t *testing.T) {
		data, err := ResultToText(&models.RunResult{})
		if err != nil {
			t.Fatalf("ResultToText failed: %v", err)
		}
		if !strings.Contains(string(data), "No documents to update") {
			t.Errorf("expected empty notice, got:\n%s", data)
		}
	})
}

func TestParseFormat(t *testing.T) {
	tc := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "", want: FormatText},
		{in: "text", want: FormatText},
		{in: "Markdown", want: FormatMarkdown},
		{in: "md", want: FormatMarkdown},
		{in: "json", want: FormatJSON},
		{in: "yaml", wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				if !errors.Is(err, shared.ErrInvalidFlag) {
					t.Errorf("expected ErrInvalidFlag, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}

	t.Run("dispatch", func(t *testing.T) {
		data, err := Preview(testPreview(), FormatJSON)
		if err != nil {
			t.Fatalf("Preview failed: %v", err)
		}
		if !json.Valid(data) {
			t.Errorf("expected JSON output, got:\n%s", data)
		}
	})
}
