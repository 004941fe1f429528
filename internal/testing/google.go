package testing

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"unicode/utf16"

	"google.golang.org/api/docs/v1"
)

func writeGoogleError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	fmt.Fprintf(w, `{"error":{"code":%d,"message":%q}}`, code, msg)
}

// SheetsServer fakes the values.get endpoint of the Sheets API.
type SheetsServer struct {
	*httptest.Server

	mu       sync.Mutex
	Tabs     map[string][][]any // tab name → values grid
	Requests []string           // requested A1 ranges
}

// NewSheetsServer starts a fake Sheets API serving tabs. It is closed with the test.
func NewSheetsServer(t *testing.T, tabs map[string][][]any) *SheetsServer {
	t.Helper()
	s := &SheetsServer{Tabs: tabs}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// Endpoint is the base URL to hand to option.WithEndpoint.
func (s *SheetsServer) Endpoint() string { return s.URL + "/" }

func (s *SheetsServer) handle(w http.ResponseWriter, r *http.Request) {
	_, rng, ok := strings.Cut(r.URL.Path, "/values/")
	if r.Method != http.MethodGet || !ok {
		writeGoogleError(w, http.StatusNotFound, "unknown endpoint")
		return
	}

	s.mu.Lock()
	s.Requests = append(s.Requests, rng)
	s.mu.Unlock()

	tab := strings.ReplaceAll(strings.TrimSuffix(strings.TrimPrefix(rng, "'"), "'"), "''", "'")
	values, found := s.Tabs[tab]
	if !found {
		writeGoogleError(w, http.StatusBadRequest, "Unable to parse range: "+rng)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"range":          rng,
		"majorDimension": "ROWS",
		"values":         values,
	})
}

// DocsServer fakes documents.get and documents.batchUpdate over in-memory plain-text documents.
//
// Indexes follow the Docs model: body text starts at 1 and is followed by a newline
// that cannot be deleted. Zero-length or out-of-range deletes are rejected like the real API.
type DocsServer struct {
	*httptest.Server

	mu      sync.Mutex
	docs    map[string][]uint16
	Fail    map[string]int // doc id → status code to fail with
	Batches map[string][][]*docs.Request
}

// NewDocsServer starts a fake Docs API holding the given documents. It is closed with the test.
func NewDocsServer(t *testing.T, initial map[string]string) *DocsServer {
	t.Helper()
	s := &DocsServer{
		docs:    map[string][]uint16{},
		Fail:    map[string]int{},
		Batches: map[string][][]*docs.Request{},
	}
	for id, text := range initial {
		s.docs[id] = utf16.Encode([]rune(text))
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// Endpoint is the base URL to hand to option.WithEndpoint.
func (s *DocsServer) Endpoint() string { return s.URL + "/" }

// Text returns the visible text of a document.
func (s *DocsServer) Text(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return string(utf16.Decode(s.docs[id]))
}

func (s *DocsServer) handle(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/documents/")
	id, isBatch := strings.CutSuffix(path, ":batchUpdate")

	s.mu.Lock()
	defer s.mu.Unlock()

	if code, ok := s.Fail[id]; ok {
		writeGoogleError(w, code, "injected failure")
		return
	}
	text, ok := s.docs[id]
	if !ok {
		writeGoogleError(w, http.StatusNotFound, "Requested entity was not found.")
		return
	}

	if !isBatch {
		end := int64(len(text)) + 2
		doc := docs.Document{
			DocumentId: id,
			Body: &docs.Body{Content: []*docs.StructuralElement{
				{EndIndex: 1, SectionBreak: &docs.SectionBreak{}},
				{StartIndex: 1, EndIndex: end, Paragraph: &docs.Paragraph{}},
			}},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(doc)
		return
	}

	var req docs.BatchUpdateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeGoogleError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.Batches[id] = append(s.Batches[id], req.Requests)

	for _, op := range req.Requests {
		switch {
		case op.DeleteContentRange != nil:
			rng := op.DeleteContentRange.Range
			start, end := rng.StartIndex, rng.EndIndex
			if start < 1 || end <= start || end > int64(len(text))+1 {
				writeGoogleError(w, http.StatusBadRequest, "Invalid requests[0].deleteContentRange: The range should not be empty.")
				return
			}
			text = append(append([]uint16{}, text[:start-1]...), text[end-1:]...)
		case op.InsertText != nil:
			at := op.InsertText.Location.Index
			if at < 1 || at > int64(len(text))+1 {
				writeGoogleError(w, http.StatusBadRequest, "Invalid insertion index")
				return
			}
			ins := utf16.Encode([]rune(op.InsertText.Text))
			merged := append(append(append([]uint16{}, text[:at-1]...), ins...), text[at-1:]...)
			text = merged
		}
	}
	s.docs[id] = text

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(docs.BatchUpdateDocumentResponse{DocumentId: id})
}
