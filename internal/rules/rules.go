// Package rules models a contest rule set: contest bounds, bands, time periods,
// categories and accepted QSO modes.
package rules

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Date and hour layouts used by rule files and EDI headers.
const (
	DateLayout = "20060102"
	HourLayout = "1504"
)

// Clock is a time of day in minutes since midnight.
type Clock int

// ParseClock parses an HHMM value.
func ParseClock(s string) (Clock, error) {
	t, err := time.Parse(HourLayout, strings.TrimSpace(s))
	if err != nil {
		return 0, eris.Wrapf(err, "rules: parse hour %q", s)
	}
	return Clock(t.Hour()*60 + t.Minute()), nil
}

// String formats the clock as HHMM.
func (c Clock) String() string {
	return fmt.Sprintf("%02d%02d", int(c)/60, int(c)%60)
}

// Duration returns the offset from midnight.
func (c Clock) Duration() time.Duration {
	return time.Duration(c) * time.Minute
}

// ParseDate parses a YYYYMMDD calendar date in UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, eris.Wrapf(err, "rules: parse date %q", s)
	}
	return t, nil
}

// Band is a scored frequency range.
type Band struct {
	ID         string // section name, e.g. "band1"
	Name       string // e.g. "144"
	Pattern    *regexp.Regexp
	Multiplier int
}

// Matches reports whether a raw PBand header value belongs to this band.
func (b Band) Matches(raw string) bool {
	return b.Pattern != nil && b.Pattern.MatchString(strings.TrimSpace(raw))
}

// Period is a contiguous time window with the bands active in it.
type Period struct {
	Number    int
	BeginDate time.Time
	EndDate   time.Time
	BeginHour Clock
	EndHour   Clock
	Bands     []string
}

// HasBand reports whether the band ID is active in this period.
func (p Period) HasBand(bandID string) bool {
	return slices.Contains(p.Bands, bandID)
}

// Contains reports whether the (date, hour) pair falls inside the period.
// A same-day period requires BeginHour <= hour <= EndHour. A multi-day period
// accepts the start day from BeginHour, the end day up to EndHour and every
// day strictly between.
func (p Period) Contains(date time.Time, hour Clock) bool {
	if p.BeginDate.Equal(p.EndDate) {
		return date.Equal(p.BeginDate) && hour >= p.BeginHour && hour <= p.EndHour
	}
	if date.Equal(p.BeginDate) && hour >= p.BeginHour {
		return true
	}
	if date.Equal(p.EndDate) && hour <= p.EndHour {
		return true
	}
	return date.After(p.BeginDate) && date.Before(p.EndDate)
}

// Category is a participation class (single operator, multi operator...).
type Category struct {
	ID      string
	Name    string
	Pattern *regexp.Regexp
	Bands   []string
}

// Matches reports whether a raw PSect header value belongs to this category.
func (c Category) Matches(raw string) bool {
	return c.Pattern != nil && c.Pattern.MatchString(strings.TrimSpace(raw))
}

// Extra names an optional header field a contest may require.
type Extra string

// Extra header fields.
const (
	ExtraEmail   Extra = "email"
	ExtraAddress Extra = "address"
	ExtraName    Extra = "name"
)

// RuleSet is the read-only view of contest rules used by validation and
// reconciliation.
type RuleSet interface {
	ContestBeginDate() time.Time
	ContestEndDate() time.Time
	ContestBeginHour() Clock
	ContestEndHour() Clock
	Bands() []Band
	Periods() []Period
	Categories() []Category
	Modes() []int
	AcceptsMode(mode int) bool
	// CallsignPattern returns nil when callsigns are not restricted.
	CallsignPattern() *regexp.Regexp
	RequiresExtra(e Extra) bool
}

// MatchBand returns the first band whose pattern matches the raw value.
func MatchBand(rs RuleSet, raw string) (*Band, bool) {
	bands := rs.Bands()
	for i := range bands {
		if bands[i].Matches(raw) {
			return &bands[i], true
		}
	}
	return nil, false
}

// MatchCategory returns the first category whose pattern matches the raw
// section and which is open to the given band.
func MatchCategory(rs RuleSet, raw, bandID string) (*Category, bool) {
	cats := rs.Categories()
	for i := range cats {
		if !cats[i].Matches(raw) {
			continue
		}
		if len(cats[i].Bands) > 0 && !slices.Contains(cats[i].Bands, bandID) {
			continue
		}
		return &cats[i], true
	}
	return nil, false
}

// PeriodOf returns the number of the first period that is active for the band
// and contains the (date, hour) pair.
func PeriodOf(rs RuleSet, bandID string, date time.Time, hour Clock) (int, bool) {
	for _, p := range rs.Periods() {
		if p.HasBand(bandID) && p.Contains(date, hour) {
			return p.Number, true
		}
	}
	return 0, false
}

// Rules is a RuleSet loaded from an INI rules file.
type Rules struct {
	name       string
	path       string
	beginDate  time.Time
	endDate    time.Time
	beginHour  Clock
	endHour    Clock
	bands      []Band
	periods    []Period
	categories []Category
	modes      []int
	callsign   *regexp.Regexp
	extras     map[Extra]bool
}

var _ RuleSet = (*Rules)(nil)

// Name returns the contest name.
func (r *Rules) Name() string { return r.name }

// Path returns the file the rules were loaded from (empty when parsed from bytes).
func (r *Rules) Path() string { return r.path }

func (r *Rules) ContestBeginDate() time.Time { return r.beginDate }
func (r *Rules) ContestEndDate() time.Time   { return r.endDate }
func (r *Rules) ContestBeginHour() Clock     { return r.beginHour }
func (r *Rules) ContestEndHour() Clock       { return r.endHour }
func (r *Rules) Bands() []Band               { return r.bands }
func (r *Rules) Periods() []Period           { return r.periods }
func (r *Rules) Categories() []Category      { return r.categories }
func (r *Rules) Modes() []int                { return r.modes }

func (r *Rules) AcceptsMode(mode int) bool {
	return slices.Contains(r.modes, mode)
}

func (r *Rules) CallsignPattern() *regexp.Regexp { return r.callsign }

func (r *Rules) RequiresExtra(e Extra) bool { return r.extras[e] }

// compilePattern compiles a rule regexp with case-insensitive matching anchored
// at the start of the value.
func compilePattern(p string) (*regexp.Regexp, error) {
	return regexp.Compile(`(?i)^(?:` + strings.TrimSpace(p) + `)`)
}
