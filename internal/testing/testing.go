// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/desertthunder/taskdoc/internal/models"
	"github.com/desertthunder/taskdoc/internal/services"
)

// Record builds a record from alternating column/value pairs, parsing values like sheet cells.
func Record(kv ...string) models.Record {
	r := models.NewRecord()
	for i := 0; i+1 < len(kv); i += 2 {
		r.Set(kv[i], models.ParseValue(kv[i+1]))
	}
	return r
}

// MockRowSource is a test double for the aggregator's row source, keyed by tab name.
type MockRowSource struct {
	Tabs  map[string][]models.Record
	Errs  map[string]error
	Calls []string
}

func (m *MockRowSource) Rows(ctx context.Context, creds *services.Credentials, spreadsheetID, tab string) ([]models.Record, error) {
	m.Calls = append(m.Calls, tab)
	if err, ok := m.Errs[tab]; ok {
		return nil, err
	}
	return m.Tabs[tab], nil
}

// MockMatcher wraps a matcher and counts calls.
type MockMatcher struct {
	Inner interface {
		Today() string
		FindToday(records []models.Record, column string) (models.Record, bool, error)
	}
	Calls int
}

func (m *MockMatcher) Today() string { return m.Inner.Today() }

func (m *MockMatcher) FindToday(records []models.Record, column string) (models.Record, bool, error) {
	m.Calls++
	return m.Inner.FindToday(records, column)
}

// MockRenderer returns canned output per template path (or inline source) and records every context it saw.
type MockRenderer struct {
	Outputs  map[string]string
	Err      error
	Contexts []map[string]any
}

func (m *MockRenderer) Render(ref models.TemplateRef, ctx map[string]any) (string, error) {
	m.Contexts = append(m.Contexts, ctx)
	if m.Err != nil {
		return "", m.Err
	}
	key := ref.Path
	if key == "" {
		key = ref.Source
	}
	return m.Outputs[key], nil
}

// RenderString echoes src, so block titles pass through unchanged.
func (m *MockRenderer) RenderString(src string, ctx map[string]any) (string, error) {
	return src, nil
}

// MockWriter is a test double for the document writer.
type MockWriter struct {
	Docs  map[string]string
	Fail  map[string]error
	Calls []string
}

func (m *MockWriter) Overwrite(ctx context.Context, creds *services.Credentials, docID, content string) error {
	m.Calls = append(m.Calls, docID)
	if err, ok := m.Fail[docID]; ok {
		return err
	}
	if m.Docs == nil {
		m.Docs = map[string]string{}
	}
	m.Docs[docID] = content
	return nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
	Requests int
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	m.Requests++
	return m.response, m.err
}

func MustWriteFile(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
	return path
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}
