// Package report renders validation and cross-check results.
package report

import (
	"encoding/xml"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/sells-group/logxcheck/internal/edi"
)

// Format selects an output renderer.
type Format string

// Supported formats.
const (
	FormatHuman Format = "human"
	FormatJSON  Format = "json"
	FormatXML   Format = "xml"
	FormatYAML  Format = "yaml"
	FormatXLSX  Format = "xlsx"
)

// Formats lists every supported format.
var Formats = []Format{FormatHuman, FormatJSON, FormatXML, FormatYAML, FormatXLSX}

// ParseFormat resolves a case-insensitive format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", eris.Errorf("report: unsupported format %q", s)
}

// Binary reports whether the format should not be written to a terminal.
func (f Format) Binary() bool { return f == FormatXLSX }

// Errors mirrors edi.Errors with encoding tags for every format.
type Errors struct {
	IO     []edi.LogError `json:"io" yaml:"io" xml:"io>error"`
	Header []edi.LogError `json:"header" yaml:"header" xml:"header>error"`
	Qso    []edi.LogError `json:"qso" yaml:"qso" xml:"qso>error"`
}

// QsoReport is the cross-check outcome of one QSO.
type QsoReport struct {
	Line         int    `json:"line" yaml:"line" xml:"line,attr"`
	Date         string `json:"date" yaml:"date" xml:"date,attr"`
	Hour         string `json:"hour" yaml:"hour" xml:"hour,attr"`
	Call         string `json:"call" yaml:"call" xml:"call,attr"`
	Valid        bool   `json:"valid" yaml:"valid" xml:"valid,attr"`
	Status       string `json:"status" yaml:"status" xml:"status,attr"`
	ConfirmError string `json:"confirm_error,omitempty" yaml:"confirm_error,omitempty" xml:"confirm_error,attr,omitempty"`
	Points       int    `json:"points" yaml:"points" xml:"points,attr"`
}

// LogReport describes one log.
type LogReport struct {
	Path        string `json:"log" yaml:"log" xml:"path,attr"`
	Callsign    string `json:"callsign,omitempty" yaml:"callsign,omitempty" xml:"callsign,omitempty"`
	Locator     string `json:"locator,omitempty" yaml:"locator,omitempty" xml:"locator,omitempty"`
	Band        string `json:"band,omitempty" yaml:"band,omitempty" xml:"band,omitempty"`
	Category    string `json:"category,omitempty" yaml:"category,omitempty" xml:"category,omitempty"`
	ValidHeader bool   `json:"valid_header" yaml:"valid_header" xml:"valid_header"`
	ValidQsos   *bool  `json:"valid_qsos" yaml:"valid_qsos" xml:"valid_qsos,omitempty"`
	Checklog    bool   `json:"checklog" yaml:"checklog" xml:"checklog"`
	Ignored     bool   `json:"ignored" yaml:"ignored" xml:"ignored"`
	Errors      Errors `json:"errors" yaml:"errors" xml:"errors"`

	// Set only after a cross-check.
	Qsos           []QsoReport `json:"qsos,omitempty" yaml:"qsos,omitempty" xml:"qsos>qso,omitempty"`
	PointsTotal    *int        `json:"points_total,omitempty" yaml:"points_total,omitempty" xml:"points_total,omitempty"`
	ConfirmedCount *int        `json:"confirmed_count,omitempty" yaml:"confirmed_count,omitempty" xml:"confirmed_count,omitempty"`
}

// Result is the output of one run.
type Result struct {
	XMLName    xml.Name    `json:"-" yaml:"-" xml:"logxcheck"`
	RunID      string      `json:"run_id" yaml:"run_id" xml:"run_id,attr"`
	Contest    string      `json:"contest,omitempty" yaml:"contest,omitempty" xml:"contest,attr,omitempty"`
	Folder     string      `json:"folder,omitempty" yaml:"folder,omitempty" xml:"folder,attr,omitempty"`
	Crosscheck bool        `json:"crosscheck" yaml:"crosscheck" xml:"crosscheck,attr"`
	Logs       []LogReport `json:"logs" yaml:"logs" xml:"log"`
}

// New returns an empty result with a fresh run id.
func New(contest, folder string, crosscheck bool) *Result {
	return &Result{
		RunID:      uuid.New().String(),
		Contest:    contest,
		Folder:     folder,
		Crosscheck: crosscheck,
	}
}

// Add appends a log to the result. QSO outcomes and totals are included when
// the result belongs to a cross-check run.
func (r *Result) Add(l *edi.Log) {
	r.Logs = append(r.Logs, FromLog(l, r.Crosscheck))
}

// FromLog converts a log into its report form.
func FromLog(l *edi.Log, crosscheck bool) LogReport {
	lr := LogReport{
		Path:        l.Path,
		Callsign:    l.Callsign,
		Locator:     l.Locator,
		Band:        l.Band,
		Category:    l.Category,
		ValidHeader: l.ValidHeader,
		ValidQsos:   l.ValidQsos,
		Checklog:    l.Checklog,
		Ignored:     l.Ignored,
		Errors: Errors{
			IO:     l.Errors.IO,
			Header: l.Errors.Header,
			Qso:    l.Errors.Qso,
		},
	}
	if !crosscheck {
		return lr
	}

	for _, q := range l.Qsos {
		lr.Qsos = append(lr.Qsos, QsoReport{
			Line:         q.LineNr,
			Date:         q.Fields.Date,
			Hour:         q.Fields.Hour,
			Call:         q.Fields.Call,
			Valid:        q.Valid,
			Status:       q.Status.String(),
			ConfirmError: q.ConfirmError,
			Points:       q.Points,
		})
	}
	s := l.Summarize()
	lr.PointsTotal = &s.Points
	lr.ConfirmedCount = &s.Confirmed
	return lr
}

// Write renders r to w in format f.
func Write(w io.Writer, r *Result, f Format) error {
	switch f {
	case FormatHuman, "":
		return writeHuman(w, r)
	case FormatJSON:
		return writeJSON(w, r)
	case FormatXML:
		return writeXML(w, r)
	case FormatYAML:
		return writeYAML(w, r)
	case FormatXLSX:
		return writeXLSX(w, r)
	default:
		return eris.Errorf("report: unsupported format %q", f)
	}
}
