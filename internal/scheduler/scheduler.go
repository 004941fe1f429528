// package scheduler selects the sheet row scheduled for today
package scheduler

import (
	"fmt"
	"time"

	"github.com/desertthunder/taskdoc/internal/models"
	"github.com/desertthunder/taskdoc/internal/shared"
)

// Matcher finds today's record. The zero value uses YYYY-MM-DD, local time and [time.Now].
type Matcher struct {
	Layout   string           // Go reference layout for the today string
	Location *time.Location   // zone "today" is evaluated in
	Now      func() time.Time // clock, overridable in tests
}

// NewMatcher returns a Matcher for the given layout and zone.
func NewMatcher(layout string, loc *time.Location) *Matcher {
	return &Matcher{Layout: layout, Location: loc}
}

// Today returns the current date string. It is evaluated on every call, so a run that
// spans midnight may observe two different dates.
func (m *Matcher) Today() string {
	now := time.Now
	if m.Now != nil {
		now = m.Now
	}
	layout := m.Layout
	if layout == "" {
		layout = shared.DefaultDateFormat
	}

	t := now()
	if m.Location != nil {
		t = t.In(m.Location)
	}
	return t.Format(layout)
}

// FindToday scans records in order and returns the first whose column value equals [Matcher.Today].
//
// A record without the column fails immediately with [shared.ErrMissingColumn]; later records are not examined.
// No match is reported as ok == false with a nil error.
func (m *Matcher) FindToday(records []models.Record, column string) (models.Record, bool, error) {
	today := m.Today()

	for i, rec := range records {
		v, ok := rec.Get(column)
		if !ok {
			return models.Record{}, false, fmt.Errorf("%w: %q not found in row %d (columns: %v)", shared.ErrMissingColumn, column, i, firstKeys(rec, 10))
		}
		if v.String() == today {
			return rec, true, nil
		}
	}
	return models.Record{}, false, nil
}

func firstKeys(rec models.Record, n int) []string {
	keys := rec.Keys()
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}
