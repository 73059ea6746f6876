// Package edi reads and validates contest logs in the EDI (REG1TEST) format.
package edi

import (
	"bufio"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/sells-group/logxcheck/internal/rules"
)

// Section markers delimiting the QSO records.
const (
	qsoStartMarker = "[QSORECORDS"
	qsoEndMarker   = "[END"
)

func isQsoStart(line string) bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(line)), qsoStartMarker)
}

func isQsoEnd(line string) bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(line)), qsoEndMarker)
}

// LogError is one problem found in a log. Line is 1-based; 0 means the problem
// is not tied to a line (e.g. a missing header field).
type LogError struct {
	Line    int    `json:"line,omitempty" yaml:"line,omitempty" xml:"line,attr,omitempty"`
	Message string `json:"message" yaml:"message" xml:",chardata"`
}

// Errors groups log problems by processing phase.
type Errors struct {
	IO     []LogError `json:"io"`
	Header []LogError `json:"header"`
	Qso    []LogError `json:"qso"`
}

// Options configures how a log is read and validated.
type Options struct {
	// Rules enables contest specific validation; nil applies generic rules only.
	Rules      rules.RuleSet
	Checklog   bool
	Charset    string
	DatePolicy DatePolicy
}

// Log is one submitted log: header attributes plus its QSO records.
type Log struct {
	Path    string
	ModTime time.Time

	Callsign string
	Locator  string
	Band     string
	RuleBand *rules.Band
	Category string

	BeginDate time.Time
	EndDate   time.Time

	Email   string
	Address string
	Name    string

	ValidHeader bool
	// ValidQsos stays nil until the header is valid and QSOs were parsed.
	ValidQsos *bool
	Checklog  bool
	// Ignored logs do not take part in the cross-check.
	Ignored bool

	Errors Errors
	Qsos   []*Qso
}

// Load reads the log at path and validates it. Read failures are recorded as
// IO errors on the returned log rather than returned.
func Load(path string, opts Options) *Log {
	l := &Log{Path: path, Checklog: opts.Checklog}

	info, err := os.Stat(path)
	if err != nil {
		l.ioError(eris.Wrap(err, "edi: stat log"))
		return l
	}
	l.ModTime = info.ModTime()

	f, err := os.Open(path)
	if err != nil {
		l.ioError(eris.Wrap(err, "edi: open log"))
		return l
	}
	defer f.Close()

	l.read(f, opts)
	return l
}

// Read validates a log from r. path is only used for reporting.
func Read(path string, r io.Reader, opts Options) *Log {
	l := &Log{Path: path, Checklog: opts.Checklog}
	l.read(r, opts)
	return l
}

func (l *Log) read(r io.Reader, opts Options) {
	lines, err := readLines(r, opts.Charset)
	if err != nil {
		l.ioError(err)
		return
	}

	valid, herrs := NewHeaderValidator(opts.Rules, opts.DatePolicy).Validate(l, lines)
	l.ValidHeader = valid
	l.Errors.Header = append(l.Errors.Header, herrs...)
	if !valid {
		l.Ignored = true
		zap.L().Debug("edi: invalid header",
			zap.String("path", l.Path),
			zap.Int("errors", len(herrs)),
		)
		return
	}

	l.parseQsos(lines, opts.Rules)
}

func (l *Log) ioError(err error) {
	l.Errors.IO = append(l.Errors.IO, LogError{Message: err.Error()})
	l.Ignored = true
	zap.L().Warn("edi: cannot read log", zap.String("path", l.Path), zap.Error(err))
}

// parseQsos validates every non-blank line between the QSO start and end markers.
func (l *Log) parseQsos(lines []string, rs rules.RuleSet) {
	v := NewRecordValidator(rs, l.RuleBand)
	inRecords := false
	allValid := true

	for i, line := range lines {
		switch {
		case isQsoStart(line):
			inRecords = true
			continue
		case isQsoEnd(line):
			inRecords = false
			continue
		case !inRecords:
			continue
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		q := v.Parse(line, i+1)
		if !q.Valid {
			allValid = false
			for _, msg := range q.Errors {
				l.Errors.Qso = append(l.Errors.Qso, LogError{Line: q.LineNr, Message: msg})
			}
		}
		l.Qsos = append(l.Qsos, q)
	}

	l.ValidQsos = &allValid
}

// readLines splits r into lines, decoding from charset first when one is set.
func readLines(r io.Reader, charset string) ([]string, error) {
	if charset != "" {
		enc, err := htmlindex.Get(charset)
		if err != nil {
			return nil, eris.Wrapf(err, "edi: unsupported charset %q", charset)
		}
		r = enc.NewDecoder().Reader(r)
	}

	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, strings.TrimRight(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return nil, eris.Wrap(err, "edi: read log")
	}
	return lines, nil
}

// Summary aggregates the cross-check outcome of a log.
type Summary struct {
	Points    int `json:"points_total"`
	Confirmed int `json:"confirmed_count"`
}

// Summarize totals the QSOs with a positive point value.
func (l *Log) Summarize() Summary {
	var s Summary
	for _, q := range l.Qsos {
		if q.Points > 0 {
			s.Points += q.Points
			s.Confirmed++
		}
	}
	return s
}

// NormalizeCallsign upper-cases and trims a callsign.
func NormalizeCallsign(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
