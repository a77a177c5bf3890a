package reconcile

import "time"

const (
	layoutUTC      = "2006-01-02T15:04:05Z"
	layoutFloating = "2006-01-02T15:04:05"
	layoutDate     = "2006-01-02"

	// sinkTimeLayout is the due string written for dates with a time of day.
	sinkTimeLayout = "2006-01-02 15:04"
)

// dueLayouts are tried in order; the first match wins.
var dueLayouts = []string{layoutUTC, layoutFloating, layoutDate}

// EffectiveDue returns the end of the range when present, else its start.
// It returns nil for a record without due date.
func EffectiveDue(d *DateRange) *time.Time {
	if d == nil {
		return nil
	}
	if d.End != nil {
		t := *d.End
		return &t
	}
	t := d.Start
	return &t
}

// FormatDue renders the effective due date of d as a sink due string.
func FormatDue(d *DateRange) *string {
	t := EffectiveDue(d)
	if t == nil {
		return nil
	}
	layout := layoutDate
	if d.HasTime {
		layout = sinkTimeLayout
	}
	s := t.Format(layout)
	return &s
}

// ParseDue converts a sink due value into a source date. Timestamps with a
// trailing Z are UTC; floating timestamps and dates are read in the sink
// time zone when one is given. The time zone is carried over unchanged.
func ParseDue(d SinkDue) (*DateRange, error) {
	loc := time.UTC
	if d.TimeZone != "" {
		if l, err := time.LoadLocation(d.TimeZone); err == nil {
			loc = l
		}
	}

	for _, layout := range dueLayouts {
		var (
			t   time.Time
			err error
		)
		if layout == layoutUTC {
			t, err = time.Parse(layout, d.Date)
			t = t.In(loc)
		} else {
			t, err = time.ParseInLocation(layout, d.Date, loc)
		}
		if err != nil {
			continue
		}
		return &DateRange{
			Start:    t,
			HasTime:  layout != layoutDate,
			TimeZone: d.TimeZone,
		}, nil
	}
	return nil, &DateParseError{Value: d.Date}
}

// dueEqual reports whether the sink due already matches the wanted due string.
// An unparseable sink due never matches so that it gets overwritten.
func dueEqual(want *string, have *SinkDue) bool {
	if want == nil || have == nil {
		return want == nil && have == nil
	}
	parsed, err := ParseDue(*have)
	if err != nil {
		return false
	}
	return *FormatDue(parsed) == *want
}
