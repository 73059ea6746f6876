package edi

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/logxcheck/internal/rules"
)

var sampleQsos = []string{
	"160805;1300;YO5BTZ;6;59;001;59;001;;KN16SS;1;;;;",
	"160805;1431;YO7LBX/P;1;59;002;59;016;;KN14QW;76;;;;",
	"",
	"160806;0804;HA6W;1;59;003;59;005;;KN08FB;149;;N;N;",
}

func writeLog(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRead_Valid(t *testing.T) {
	l := Read("yo5pjb.edi", strings.NewReader(buildLog(defaultHeader(), sampleQsos...)), Options{})

	require.True(t, l.ValidHeader, l.Errors.Header)
	assert.False(t, l.Ignored)
	require.NotNil(t, l.ValidQsos)
	assert.True(t, *l.ValidQsos)
	assert.Empty(t, l.Errors.Qso)

	require.Len(t, l.Qsos, 3, "blank lines are skipped")
	// 10 header lines, then the records marker on line 11.
	assert.Equal(t, 12, l.Qsos[0].LineNr)
	assert.Equal(t, 13, l.Qsos[1].LineNr)
	assert.Equal(t, 15, l.Qsos[2].LineNr)
	assert.Equal(t, "HA6W", l.Qsos[2].Call)
}

func TestRead_InvalidQsos(t *testing.T) {
	qsos := []string{
		"160805;1300;YO5BTZ;6;59;001;59;001;;KN16SS;1;;;;",
		"160805;1301;YO5BTZ;6",
		"160805;1302;YO5BTZ;6;69;001;50;001;;KN16SS;1;;;;",
	}
	l := Read("yo5pjb.edi", strings.NewReader(buildLog(defaultHeader(), qsos...)), Options{})

	require.True(t, l.ValidHeader)
	require.NotNil(t, l.ValidQsos)
	assert.False(t, *l.ValidQsos)
	assert.False(t, l.Ignored, "invalid QSOs do not exclude the log")
	require.Len(t, l.Qsos, 3)
	assert.True(t, l.Qsos[0].Valid)
	assert.Equal(t, []LogError{
		{Line: 13, Message: "QSO line is too short"},
		{Line: 14, Message: "Qso RST sent is invalid: 69"},
		{Line: 14, Message: "Qso RST received is invalid: 50"},
	}, l.Errors.Qso)
}

func TestRead_InvalidHeaderSkipsQsos(t *testing.T) {
	header := withLine(defaultHeader(), "PCall", "")
	l := Read("anon.edi", strings.NewReader(buildLog(header, sampleQsos...)), Options{})

	assert.False(t, l.ValidHeader)
	assert.True(t, l.Ignored)
	assert.Nil(t, l.ValidQsos)
	assert.Empty(t, l.Qsos)
	assert.Contains(t, l.Errors.Header, LogError{Line: 0, Message: "PCall field is not present"})
}

func TestRead_WithRules(t *testing.T) {
	r := parseRules(t, testRules)
	qsos := append([]string{"160804;1300;YO5BTZ;6;59;001;59;001;;KN16SS;1;;;;"}, sampleQsos...)
	l := Read("yo5pjb.edi", strings.NewReader(buildLog(defaultHeader(), qsos...)), Options{Rules: r})

	require.True(t, l.ValidHeader, l.Errors.Header)
	require.NotNil(t, l.RuleBand)
	assert.Equal(t, []LogError{{Line: 12, Message: "Qso date is invalid: before contest starts (<160805)"}}, l.Errors.Qso)
}

func TestRead_ChecklogOption(t *testing.T) {
	l := Read("cl.edi", strings.NewReader(buildLog(defaultHeader())), Options{Checklog: true})
	assert.True(t, l.Checklog)
	assert.Empty(t, l.Qsos)
	require.NotNil(t, l.ValidQsos)
	assert.True(t, *l.ValidQsos)
}

func TestRead_CRLF(t *testing.T) {
	content := strings.ReplaceAll(buildLog(defaultHeader(), sampleQsos[0]), "\n", "\r\n")
	l := Read("dos.edi", strings.NewReader(content), Options{})

	require.True(t, l.ValidHeader, l.Errors.Header)
	require.Len(t, l.Qsos, 1)
	assert.True(t, l.Qsos[0].Valid, l.Qsos[0].Errors)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeLog(t, dir, "yo5pjb.edi", buildLog(defaultHeader(), sampleQsos...))

	l := Load(path, Options{})
	assert.Equal(t, path, l.Path)
	assert.False(t, l.ModTime.IsZero())
	assert.True(t, l.ValidHeader)
	assert.Len(t, l.Qsos, 3)
}

func TestLoad_MissingFile(t *testing.T) {
	l := Load(filepath.Join(t.TempDir(), "nope.edi"), Options{})

	assert.True(t, l.Ignored)
	assert.False(t, l.ValidHeader)
	require.Len(t, l.Errors.IO, 1)
	assert.Contains(t, l.Errors.IO[0].Message, "edi: stat log")
}

func TestReadLines_Charset(t *testing.T) {
	// 0xE3 is "ă" in windows-1250.
	raw := []byte("RName=B\xe3lan\r\nPCall=YO5PJB\n")

	lines, err := readLines(bytes.NewReader(raw), "windows-1250")
	require.NoError(t, err)
	assert.Equal(t, []string{"RName=Bălan", "PCall=YO5PJB"}, lines)

	_, err = readLines(bytes.NewReader(raw), "klingon-8")
	assert.Error(t, err)
}

func TestRead_UnsupportedCharset(t *testing.T) {
	l := Read("x.edi", strings.NewReader(buildLog(defaultHeader())), Options{Charset: "klingon-8"})
	assert.True(t, l.Ignored)
	require.Len(t, l.Errors.IO, 1)
	assert.Contains(t, l.Errors.IO[0].Message, "unsupported charset")
}

func TestSummarize(t *testing.T) {
	l := &Log{Qsos: []*Qso{
		{Valid: true, Points: 12},
		{Valid: true},
		{Valid: true, Points: 30},
	}}
	assert.Equal(t, Summary{Points: 42, Confirmed: 2}, l.Summarize())
}

func TestOperator_LogsForBand(t *testing.T) {
	r := parseRules(t, testRules)
	b144 := r.Bands()[0]
	b432 := r.Bands()[1]

	op := NewOperator(" yo5pjb ")
	assert.Equal(t, "YO5PJB", op.Callsign)

	ignored := &Log{Band: "144 MHz", Ignored: true, ValidHeader: true}
	active := &Log{Band: "2m", ValidHeader: true}
	uhf := &Log{Band: "432", ValidHeader: true}
	op.AddLog(ignored)
	op.AddLog(active)
	op.AddLog(uhf)

	assert.Equal(t, []*Log{ignored, active}, op.LogsForBand(b144))
	assert.Same(t, active, op.ActiveLogForBand(b144))
	assert.Same(t, uhf, op.ActiveLogForBand(b432))

	op.Logs = op.Logs[:1]
	assert.Nil(t, op.ActiveLogForBand(b144))
}

func TestOperator_LogsForBandUsesMatchedRuleBand(t *testing.T) {
	r := parseRules(t, testRules)
	b144 := r.Bands()[0]
	wide := rules.Band{ID: "band9", Name: "wide", Pattern: regexp.MustCompile(`(?i)^(?:144|432)`)}

	l := Read("yo5pjb.edi", strings.NewReader(buildLog(defaultHeader())), Options{Rules: r})
	require.True(t, l.ValidHeader, l.Errors.Header)
	require.NotNil(t, l.RuleBand)
	require.True(t, wide.Matches(l.Band))

	op := NewOperator(l.Callsign)
	op.AddLog(l)

	assert.Equal(t, []*Log{l}, op.LogsForBand(b144))
	assert.Empty(t, op.LogsForBand(wide), "a log belongs only to the band it was validated for")
	assert.Nil(t, op.ActiveLogForBand(wide))
}

func TestConfirmationString(t *testing.T) {
	assert.Equal(t, "unchecked", Unchecked.String())
	assert.Equal(t, "confirmed", Confirmed.String())
	assert.Equal(t, "unconfirmed", Unconfirmed.String())
}
