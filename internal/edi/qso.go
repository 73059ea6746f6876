package edi

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sells-group/logxcheck/internal/geo"
	"github.com/sells-group/logxcheck/internal/rules"
)

// QSO line shape.
const (
	qsoMinLength  = 40
	qsoFieldCount = 15
)

// Layouts of the date and hour columns of a QSO line.
const (
	qsoDateLayout = "060102"
	qsoHourLayout = "1504"
)

// Confirmation is the cross-check state of a QSO.
type Confirmation int

const (
	// Unchecked QSOs were never considered by the cross-check.
	Unchecked Confirmation = iota
	Confirmed
	Unconfirmed
)

func (c Confirmation) String() string {
	switch c {
	case Confirmed:
		return "confirmed"
	case Unconfirmed:
		return "unconfirmed"
	default:
		return "unchecked"
	}
}

// QsoFields holds the raw, trimmed columns of a QSO line.
type QsoFields struct {
	Date         string `json:"date"`
	Hour         string `json:"hour"`
	Call         string `json:"call"`
	Mode         string `json:"mode"`
	RSTSent      string `json:"rst_sent"`
	SerialSent   string `json:"serial_sent"`
	RSTRecv      string `json:"rst_recv"`
	SerialRecv   string `json:"serial_recv"`
	ExchangeRecv string `json:"exchange_recv"`
	Locator      string `json:"wwl"`
	Points       string `json:"points"`
	NewExchange  string `json:"new_exchange"`
	NewLocator   string `json:"new_wwl"`
	NewDXCC      string `json:"new_dxcc"`
	Duplicate    string `json:"duplicate_qso"`
}

// Qso is one contact line of a log. The typed fields are only meaningful when
// the generic checks passed.
type Qso struct {
	Raw    string
	LineNr int
	Fields QsoFields

	Date       time.Time
	Hour       rules.Clock
	Call       string
	Mode       int
	RSTSent    string
	SerialSent int
	RSTRecv    string
	SerialRecv int
	Exchange   string
	Locator    string

	Valid  bool
	Errors []string

	// Written by the cross-check.
	Status       Confirmation
	ConfirmError string
	Points       int
}

// Time returns the absolute UTC timestamp of the contact.
func (q *Qso) Time() time.Time {
	return q.Date.Add(q.Hour.Duration())
}

// Confirm marks the QSO as corroborated and scores it.
func (q *Qso) Confirm(points int) {
	if !q.Valid {
		return
	}
	q.Status = Confirmed
	q.ConfirmError = ""
	q.Points = points
}

// Reject marks the QSO as not corroborated.
func (q *Qso) Reject(reason string) {
	q.Status = Unconfirmed
	q.ConfirmError = reason
	q.Points = 0
}

func (q *Qso) addError(format string, args ...any) {
	q.Valid = false
	q.Errors = append(q.Errors, fmt.Sprintf(format, args...))
}

var (
	callsignRe = regexp.MustCompile(`(?i)^([a-z0-9]{1,4}/)?[a-z0-9]{1,3}[0-9][a-z0-9]{0,4}[a-z](/[a-z0-9]{1,4})?$`)
	modeRe     = regexp.MustCompile(`^[0-9]$`)
	rstRe      = regexp.MustCompile(`^[1-5][1-9][1-9]?[aA]?$`)
	serialRe   = regexp.MustCompile(`^[0-9]{1,4}$`)
	exchangeRe = regexp.MustCompile(`^\w{0,6}$`)
)

// fieldShape is the stage 1b per-column pattern.
type fieldShape struct {
	name    string
	pattern *regexp.Regexp
	value   func(f *QsoFields) string
}

var fieldShapes = []fieldShape{
	{"date", regexp.MustCompile(`^[0-9]{6}$`), func(f *QsoFields) string { return f.Date }},
	{"hour", regexp.MustCompile(`^[0-9]{4}$`), func(f *QsoFields) string { return f.Hour }},
	{"mode", regexp.MustCompile(`^[0-9]$`), func(f *QsoFields) string { return f.Mode }},
	{"rst_sent", regexp.MustCompile(`^[0-9]{2,3}[a-zA-Z]?$`), func(f *QsoFields) string { return f.RSTSent }},
	{"serial_sent", regexp.MustCompile(`^[0-9]{1,4}$`), func(f *QsoFields) string { return f.SerialSent }},
	{"rst_recv", regexp.MustCompile(`^[0-9]{2,3}[a-zA-Z]?$`), func(f *QsoFields) string { return f.RSTRecv }},
	{"serial_recv", regexp.MustCompile(`^[0-9]{1,4}$`), func(f *QsoFields) string { return f.SerialRecv }},
	{"wwl", regexp.MustCompile(`(?i)^[A-R]{2}[0-9]{2}[A-X]{2}$`), func(f *QsoFields) string { return f.Locator }},
}

// RecordValidator parses and validates QSO lines. Without a rule set only the
// structural and generic stages run.
type RecordValidator struct {
	rules rules.RuleSet
	band  *rules.Band
}

// NewRecordValidator returns a validator for QSOs of a log on the given band.
func NewRecordValidator(rs rules.RuleSet, band *rules.Band) *RecordValidator {
	return &RecordValidator{rules: rs, band: band}
}

// Parse validates one QSO line. Every failing check is recorded on the
// returned record; later stages only run when the earlier ones passed.
func (v *RecordValidator) Parse(line string, lineNr int) *Qso {
	q := &Qso{Raw: line, LineNr: lineNr, Valid: true}

	if !v.structural(q) {
		return q
	}
	if !v.generic(q) {
		return q
	}
	if v.rules != nil {
		v.contest(q)
	}
	return q
}

func (v *RecordValidator) structural(q *Qso) bool {
	if len(q.Raw) < qsoMinLength {
		q.addError("QSO line is too short")
		return false
	}
	cols := strings.Split(q.Raw, ";")
	if len(cols) != qsoFieldCount {
		q.addError("QSO line has an incorrect number of fields (%d)", len(cols))
		return false
	}
	for i := range cols {
		cols[i] = strings.TrimSpace(cols[i])
	}
	q.Fields = QsoFields{
		Date:         cols[0],
		Hour:         cols[1],
		Call:         cols[2],
		Mode:         cols[3],
		RSTSent:      cols[4],
		SerialSent:   cols[5],
		RSTRecv:      cols[6],
		SerialRecv:   cols[7],
		ExchangeRecv: cols[8],
		Locator:      cols[9],
		Points:       cols[10],
		NewExchange:  cols[11],
		NewLocator:   cols[12],
		NewDXCC:      cols[13],
		Duplicate:    cols[14],
	}

	for _, s := range fieldShapes {
		if val := s.value(&q.Fields); !s.pattern.MatchString(val) {
			q.addError("QSO field %s has an invalid value (%s)", s.name, val)
			return false
		}
	}
	return true
}

// generic runs every format check so all problems of a line are reported together.
func (v *RecordValidator) generic(q *Qso) bool {
	f := &q.Fields

	if d, err := time.Parse(qsoDateLayout, f.Date); err != nil {
		q.addError("Qso date is invalid: %s", f.Date)
	} else {
		q.Date = d
	}

	if h, err := time.Parse(qsoHourLayout, f.Hour); err != nil {
		q.addError("Qso hour is invalid: %s", f.Hour)
	} else {
		q.Hour = rules.Clock(h.Hour()*60 + h.Minute())
	}

	if !callsignRe.MatchString(f.Call) {
		q.addError("Qso callsign is invalid: %s", f.Call)
	} else {
		q.Call = NormalizeCallsign(f.Call)
	}

	if !modeRe.MatchString(f.Mode) {
		q.addError("Qso mode is invalid: %s", f.Mode)
	} else {
		q.Mode, _ = strconv.Atoi(f.Mode)
	}

	if !rstRe.MatchString(f.RSTSent) {
		q.addError("Qso RST sent is invalid: %s", f.RSTSent)
	} else {
		q.RSTSent = strings.ToUpper(f.RSTSent)
	}
	if !rstRe.MatchString(f.RSTRecv) {
		q.addError("Qso RST received is invalid: %s", f.RSTRecv)
	} else {
		q.RSTRecv = strings.ToUpper(f.RSTRecv)
	}

	if !serialRe.MatchString(f.SerialSent) {
		q.addError("Qso serial number sent is invalid: %s", f.SerialSent)
	} else {
		q.SerialSent, _ = strconv.Atoi(f.SerialSent)
	}
	if !serialRe.MatchString(f.SerialRecv) {
		q.addError("Qso serial number received is invalid: %s", f.SerialRecv)
	} else {
		q.SerialRecv, _ = strconv.Atoi(f.SerialRecv)
	}

	if !exchangeRe.MatchString(f.ExchangeRecv) {
		q.addError("Qso exchange is invalid: %s", f.ExchangeRecv)
	} else {
		q.Exchange = f.ExchangeRecv
	}

	if !geo.Valid(f.Locator) {
		q.addError("Qso WWL is invalid: %s", f.Locator)
	} else {
		q.Locator = geo.Normalize(f.Locator)
	}

	if strings.EqualFold(f.Duplicate, "D") {
		q.addError("Qso is marked as duplicate")
	}

	return q.Valid
}

func (v *RecordValidator) contest(q *Qso) {
	rs := v.rules

	if re := rs.CallsignPattern(); re != nil && !re.MatchString(q.Call) {
		q.addError("Qso callsign is not allowed by contest rules: %s", q.Call)
	}

	begin, end := rs.ContestBeginDate(), rs.ContestEndDate()
	inBounds := true
	switch {
	case q.Date.Before(begin):
		q.addError("Qso date is invalid: before contest starts (<%s)", begin.Format(qsoDateLayout))
		inBounds = false
	case q.Date.After(end):
		q.addError("Qso date is invalid: after contest ends (>%s)", end.Format(qsoDateLayout))
		inBounds = false
	}
	if inBounds && q.Date.Equal(begin) && q.Hour < rs.ContestBeginHour() {
		q.addError("Qso hour is invalid: before contest start hour (<%s)", rs.ContestBeginHour())
		inBounds = false
	}
	if inBounds && q.Date.Equal(end) && q.Hour > rs.ContestEndHour() {
		q.addError("Qso hour is invalid: after contest end hour (>%s)", rs.ContestEndHour())
		inBounds = false
	}

	if inBounds {
		inPeriod := false
		if v.band != nil {
			_, inPeriod = rules.PeriodOf(rs, v.band.ID, q.Date, q.Hour)
		}
		if !inPeriod {
			q.addError("Qso date/hour is not inside contest periods")
		}
	}

	if !rs.AcceptsMode(q.Mode) {
		q.addError("Qso mode is invalid: not accepted by contest rules (%d)", q.Mode)
	}
}
