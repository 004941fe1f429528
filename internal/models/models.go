// package models defines the data model for the daily task pipeline
package models

import (
	"time"
)

// Record is one sheet row: an ordered mapping of column name to [Value].
//
// Columns come from the sheet's header row, so the schema is only known at runtime.
type Record struct {
	keys   []string
	values map[string]Value
}

// NewRecord returns an empty record.
func NewRecord() Record {
	return Record{values: map[string]Value{}}
}

// Set stores v under key, keeping the first-insertion position of key.
func (r *Record) Set(key string, v Value) {
	if r.values == nil {
		r.values = map[string]Value{}
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = v
}

// Get returns the value stored under key.
func (r Record) Get(key string) (Value, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Keys returns the column names in header order.
func (r Record) Keys() []string {
	return append([]string(nil), r.keys...)
}

// Len returns the number of columns.
func (r Record) Len() int { return len(r.keys) }

// Context builds a template context, rewriting each key with keyFn (identity when nil).
// Values are converted with [Value.Native] and never rewritten.
func (r Record) Context(keyFn func(string) string) map[string]any {
	ctx := make(map[string]any, len(r.keys))
	for _, k := range r.keys {
		name := k
		if keyFn != nil {
			name = keyFn(k)
		}
		ctx[name] = r.values[k].Native()
	}
	return ctx
}

// TemplateRef points at a template either on disk (Path) or inline (Source).
type TemplateRef struct {
	Path   string
	Source string
}

// String describes the reference for logs.
func (t TemplateRef) String() string {
	if t.Path != "" {
		return t.Path
	}
	return "inline"
}

// Block pairs a source tab, a template and a destination document. Immutable for a run.
type Block struct {
	Name          string
	SheetName     string
	Template      TemplateRef
	TitleTemplate string
	DocID         string
	Enabled       bool
}

// Destination is the accumulated content for one document.
type Destination struct {
	DocID   string `json:"doc_id"`
	Content string `json:"content"`
}

// Destinations maps document ids to accumulated rendered text, iterating in first-insertion order.
type Destinations struct {
	order   []string
	content map[string]string
}

// NewDestinations returns an empty map.
func NewDestinations() *Destinations {
	return &Destinations{content: map[string]string{}}
}

// Append adds text to docID, joining it to earlier contributions with a single newline.
func (d *Destinations) Append(docID, text string) {
	existing, ok := d.content[docID]
	if !ok {
		d.order = append(d.order, docID)
		d.content[docID] = text
		return
	}
	d.content[docID] = existing + "\n" + text
}

// Get returns the accumulated content of docID.
func (d *Destinations) Get(docID string) (string, bool) {
	c, ok := d.content[docID]
	return c, ok
}

// Len returns the number of destinations.
func (d *Destinations) Len() int { return len(d.order) }

// Entries returns the destinations in first-insertion order.
func (d *Destinations) Entries() []Destination {
	out := make([]Destination, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, Destination{DocID: id, Content: d.content[id]})
	}
	return out
}

// BlockStatus records what happened to a block during aggregation.
type BlockStatus string

const (
	BlockDisabled BlockStatus = "disabled"
	BlockNoTask   BlockStatus = "no_task"
	BlockRendered BlockStatus = "rendered"
)

// BlockOutcome describes one block after aggregation.
type BlockOutcome struct {
	Name   string      `json:"name"`
	DocID  string      `json:"doc_id"`
	Status BlockStatus `json:"status"`
	Title  string      `json:"title,omitempty"`
}

// WriteOutcome describes one destination write. Error carries Err's message for JSON output.
type WriteOutcome struct {
	DocID string `json:"doc_id"`
	Bytes int    `json:"bytes"`
	Err   error  `json:"-"`
	Error string `json:"error,omitempty"`
}

// RunResult summarises a run. Failed writes do not fail the run; callers decide what to do with them.
type RunResult struct {
	RunID      string         `json:"run_id"`
	Updated    int            `json:"updated"`
	Failed     int            `json:"failed"`
	Blocks     []BlockOutcome `json:"blocks"`
	Writes     []WriteOutcome `json:"writes"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
}

// OK reports whether every destination was written.
func (r *RunResult) OK() bool { return r.Failed == 0 }

// Partial reports whether some, but not all, destinations were written.
func (r *RunResult) Partial() bool { return r.Updated > 0 && r.Failed > 0 }

// Preview is the aggregated content of a run that was not written.
type Preview struct {
	RunID        string         `json:"run_id"`
	Date         string         `json:"date"`
	Blocks       []BlockOutcome `json:"blocks"`
	Destinations []Destination  `json:"destinations"`
}
