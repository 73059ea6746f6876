package edi

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sells-group/logxcheck/internal/geo"
	"github.com/sells-group/logxcheck/internal/rules"
)

// Header keys of an EDI (REG1TEST) log.
const (
	FieldCallsign = "PCall"
	FieldLocator  = "PWWLo"
	FieldBand     = "PBand"
	FieldSection  = "PSect"
	FieldDate     = "TDate"
	FieldEmail    = "RHBBS"
	FieldAddress  = "PAdr1"
	FieldName     = "RName"
)

// DatePolicy controls how TDate is compared with the contest bounds.
type DatePolicy string

const (
	// DateExact requires TDate to equal the contest begin and end dates.
	DateExact DatePolicy = "exact"
	// DateInclusive requires TDate to lie within the contest bounds.
	DateInclusive DatePolicy = "inclusive"
)

// Generic category names used when no rule set is supplied.
const (
	CategorySingle   = "Single Operator"
	CategoryMulti    = "Multi Operator"
	CategoryChecklog = "Checklog"
)

type namedPattern struct {
	name    string
	pattern *regexp.Regexp
}

// genericBands is the band whitelist used without a rule set.
var genericBands = []namedPattern{
	{"50", regexp.MustCompile(`(?i)^(50|6m)\s*(mhz)?$`)},
	{"70", regexp.MustCompile(`(?i)^(70|4m)\s*(mhz)?$`)},
	{"144", regexp.MustCompile(`(?i)^(144|145|2m)\s*(mhz)?$`)},
	{"432", regexp.MustCompile(`(?i)^(430|432|435|70cm)\s*(mhz)?$`)},
	{"1296", regexp.MustCompile(`(?i)^(1\.2|1296|23cm)\s*(mhz|ghz)?$`)},
	{"2320", regexp.MustCompile(`(?i)^(2\.3|2320|13cm)\s*(mhz|ghz)?$`)},
	{"3400", regexp.MustCompile(`(?i)^(3\.4|3400|9cm)\s*(mhz|ghz)?$`)},
	{"5760", regexp.MustCompile(`(?i)^(5\.7|5760|6cm)\s*(mhz|ghz)?$`)},
	{"10368", regexp.MustCompile(`(?i)^(10|10368|3cm)\s*(mhz|ghz)?$`)},
	{"24048", regexp.MustCompile(`(?i)^(24|24048|1\.2cm)\s*(mhz|ghz)?$`)},
}

// checklogRe is honored both with and without a rule set.
var checklogRe = regexp.MustCompile(`(?i)^(check|cl$)`)

var genericCategories = []namedPattern{
	{CategorySingle, regexp.MustCompile(`(?i)^(so|single)`)},
	{CategoryMulti, regexp.MustCompile(`(?i)^(mo|multi)`)},
}

var (
	emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	nameRe  = regexp.MustCompile(`^\pL[\pL\s.'-]+$`)
)

// headerValue is one occurrence of a header key.
type headerValue struct {
	line  int
	value string
}

// readHeader collects KEY=value pairs (keys upper-cased) from the lines that
// precede the QSO records marker. Line numbers are 1-based.
func readHeader(lines []string) map[string][]headerValue {
	out := make(map[string][]headerValue)
	for i, line := range lines {
		if isQsoStart(line) {
			break
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.ToUpper(strings.TrimSpace(key))
		if key == "" || strings.HasPrefix(key, "[") {
			continue
		}
		out[key] = append(out[key], headerValue{line: i + 1, value: strings.TrimSpace(value)})
	}
	return out
}

// HeaderValidator checks the header of a log against a rule set, or against
// generic rules when the rule set is nil.
type HeaderValidator struct {
	rules  rules.RuleSet
	policy DatePolicy
}

// NewHeaderValidator returns a HeaderValidator. An empty policy means DateExact.
func NewHeaderValidator(rs rules.RuleSet, policy DatePolicy) *HeaderValidator {
	if policy == "" {
		policy = DateExact
	}
	return &HeaderValidator{rules: rs, policy: policy}
}

// Validate fills the header attributes of l from lines and reports whether the
// header is usable. Every applicable check runs so all problems surface at once.
func (v *HeaderValidator) Validate(l *Log, lines []string) (bool, []LogError) {
	hv := &headerRun{fields: readHeader(lines)}

	okCall := hv.single(FieldCallsign, func(val string) error {
		if !callsignRe.MatchString(val) {
			return errNotValid
		}
		if v.rules != nil {
			if re := v.rules.CallsignPattern(); re != nil && !re.MatchString(val) {
				return fmt.Errorf("%s field value is not allowed by contest rules (%s)", FieldCallsign, val)
			}
		}
		l.Callsign = NormalizeCallsign(val)
		return nil
	})

	okLoc := hv.single(FieldLocator, func(val string) error {
		if !geo.Valid(val) {
			return errNotValid
		}
		l.Locator = geo.Normalize(val)
		return nil
	})

	okBand := hv.single(FieldBand, func(val string) error {
		if v.rules == nil {
			for _, b := range genericBands {
				if b.pattern.MatchString(val) {
					l.Band = val
					return nil
				}
			}
			return errNotValid
		}
		b, found := rules.MatchBand(v.rules, val)
		if !found {
			return fmt.Errorf("%s field value is not a contest band (%s)", FieldBand, val)
		}
		l.Band = val
		l.RuleBand = b
		return nil
	})

	okSect := hv.single(FieldSection, func(val string) error {
		if checklogRe.MatchString(val) {
			l.Category = CategoryChecklog
			l.Checklog = true
			return nil
		}
		if v.rules == nil {
			for _, c := range genericCategories {
				if c.pattern.MatchString(val) {
					l.Category = c.name
					return nil
				}
			}
			return errNotValid
		}
		bandID := ""
		if l.RuleBand != nil {
			bandID = l.RuleBand.ID
		}
		c, found := rules.MatchCategory(v.rules, val, bandID)
		if !found {
			return fmt.Errorf("%s field value is not a contest category for this band (%s)", FieldSection, val)
		}
		l.Category = c.Name
		return nil
	})

	okDate := hv.single(FieldDate, func(val string) error {
		begin, end, err := parseDateRange(val)
		if err != nil {
			return errNotValid
		}
		if v.rules != nil && !v.datesMatch(begin, end) {
			return fmt.Errorf("%s field value has an invalid value (%s) - not as defined in contest rules", FieldDate, val)
		}
		l.BeginDate, l.EndDate = begin, end
		return nil
	})

	valid := okCall && okLoc && okBand && okSect && okDate

	if v.rules != nil {
		if v.rules.RequiresExtra(rules.ExtraEmail) && !hv.single(FieldEmail, func(val string) error {
			if !emailRe.MatchString(val) {
				return errNotValid
			}
			l.Email = val
			return nil
		}) {
			valid = false
		}
		if v.rules.RequiresExtra(rules.ExtraAddress) && !hv.single(FieldAddress, func(val string) error {
			if len([]rune(val)) < 2 {
				return errNotValid
			}
			l.Address = val
			return nil
		}) {
			valid = false
		}
		if v.rules.RequiresExtra(rules.ExtraName) && !hv.single(FieldName, func(val string) error {
			if !nameRe.MatchString(val) {
				return errNotValid
			}
			l.Name = val
			return nil
		}) {
			valid = false
		}
	}

	return valid, hv.errs
}

func (v *HeaderValidator) datesMatch(begin, end time.Time) bool {
	rb, re := v.rules.ContestBeginDate(), v.rules.ContestEndDate()
	if v.policy == DateInclusive {
		return !begin.Before(rb) && !end.After(re) && !end.Before(begin)
	}
	return begin.Equal(rb) && end.Equal(re)
}

// parseDateRange parses "YYYYMMDD;YYYYMMDD".
func parseDateRange(val string) (time.Time, time.Time, error) {
	parts := strings.Split(val, ";")
	if len(parts) != 2 {
		return time.Time{}, time.Time{}, fmt.Errorf("expected two dates, got %d", len(parts))
	}
	begin, err := rules.ParseDate(parts[0])
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := rules.ParseDate(parts[1])
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if end.Before(begin) {
		return time.Time{}, time.Time{}, fmt.Errorf("end date before begin date")
	}
	return begin, end, nil
}

// errNotValid makes single report the generic "value is not valid" message.
var errNotValid = errors.New("value is not valid")

type headerRun struct {
	fields map[string][]headerValue
	errs   []LogError
}

// single enforces that key appears exactly once and runs check on its value.
func (h *headerRun) single(key string, check func(val string) error) bool {
	vals := h.fields[strings.ToUpper(key)]
	switch {
	case len(vals) == 0:
		h.errs = append(h.errs, LogError{Message: key + " field is not present"})
		return false
	case len(vals) > 1:
		h.errs = append(h.errs, LogError{Line: vals[len(vals)-1].line, Message: key + " field is present multiple times"})
		return false
	}

	val := vals[0]
	err := check(val.value)
	switch {
	case err == nil:
		return true
	case errors.Is(err, errNotValid):
		h.errs = append(h.errs, LogError{Line: val.line, Message: fmt.Sprintf("%s field value is not valid (%s)", key, val.value)})
	default:
		h.errs = append(h.errs, LogError{Line: val.line, Message: err.Error()})
	}
	return false
}
