package crosscheck

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/logxcheck/internal/edi"
	"github.com/sells-group/logxcheck/internal/rules"
)

func mirroredPair() (*edi.Qso, *edi.Qso) {
	day := time.Date(2016, 8, 5, 0, 0, 0, 0, time.UTC)
	q1 := &edi.Qso{
		Valid: true, Date: day, Hour: rules.Clock(13 * 60), Call: "YO5BBB", Mode: 1,
		RSTSent: "59", SerialSent: 1, RSTRecv: "57", SerialRecv: 2, Locator: "KN16BB",
	}
	q2 := &edi.Qso{
		Valid: true, Date: day, Hour: rules.Clock(13 * 60), Call: "YO5AAA", Mode: 1,
		RSTSent: "57", SerialSent: 2, RSTRecv: "59", SerialRecv: 1, Locator: "KN16AA",
	}
	return q1, q2
}

func TestCompare_Precedence(t *testing.T) {
	l1 := &edi.Log{Callsign: "YO5AAA", Locator: "KN16AA"}
	l2 := &edi.Log{Callsign: "YO5BBB", Locator: "KN16BB"}

	tests := []struct {
		name   string
		mutate func(q1, q2 *edi.Qso)
		want   string
	}{
		{"agree", func(q1, q2 *edi.Qso) {}, ""},
		{"locator case ignored", func(q1, q2 *edi.Qso) { q1.Locator = "kn16bb" }, ""},
		{"own qso invalid", func(q1, q2 *edi.Qso) { q1.Valid = false; q2.Valid = false }, ReasonInvalid},
		{"other qso invalid", func(q1, q2 *edi.Qso) { q2.Valid = false; q2.Mode = 2 }, ReasonInvalidOther},
		{"time before everything else", func(q1, q2 *edi.Qso) {
			q2.Hour += 10
			q2.Mode = 2
			q2.RSTRecv = "11"
			q2.SerialRecv = 99
			q2.Locator = "JN00AA"
		}, ReasonTime},
		{"time on another day", func(q1, q2 *edi.Qso) { q2.Date = q2.Date.AddDate(0, 0, 1) }, ReasonTime},
		{"mode before rst", func(q1, q2 *edi.Qso) { q2.Mode = 2; q2.RSTSent = "11" }, ReasonMode},
		{"rst received by other side", func(q1, q2 *edi.Qso) { q2.RSTRecv = "55"; q2.RSTSent = "55" }, ReasonRSTOther},
		{"rst received by own side", func(q1, q2 *edi.Qso) { q2.RSTSent = "55"; q2.SerialRecv = 7 }, ReasonRST},
		{"serial received by other side", func(q1, q2 *edi.Qso) { q2.SerialRecv = 7; q2.SerialSent = 7 }, ReasonSerialOther},
		{"serial received by own side", func(q1, q2 *edi.Qso) { q2.SerialSent = 7; q1.Locator = "JN00AA" }, ReasonSerial},
		{"locator of other station", func(q1, q2 *edi.Qso) { q1.Locator = "JN00AA"; q2.Locator = "JN00AA" }, ReasonLocator},
		{"locator of own station", func(q1, q2 *edi.Qso) { q2.Locator = "JN00AA" }, ReasonLocatorOther},
	}

	e := NewEngine(nil, DefaultTimeTolerance)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q1, q2 := mirroredPair()
			tt.mutate(q1, q2)
			assert.Equal(t, tt.want, e.compare(q1, q2, l1, l2))
		})
	}
}

func TestCompare_Tolerance(t *testing.T) {
	l1 := &edi.Log{Callsign: "YO5AAA", Locator: "KN16AA"}
	l2 := &edi.Log{Callsign: "YO5BBB", Locator: "KN16BB"}

	tests := []struct {
		tolerance time.Duration
		gap       rules.Clock
		want      string
	}{
		{DefaultTimeTolerance, 5, ""},
		{DefaultTimeTolerance, 6, ReasonTime},
		{0, 0, ""},
		{0, 1, ReasonTime},
		{15 * time.Minute, 15, ""},
	}
	for _, tt := range tests {
		q1, q2 := mirroredPair()
		q2.Hour += tt.gap
		assert.Equal(t, tt.want, NewEngine(nil, tt.tolerance).compare(q1, q2, l1, l2))
	}
}

func TestNewEngine_DefaultTolerance(t *testing.T) {
	assert.Equal(t, DefaultTimeTolerance, NewEngine(nil, -1).tolerance)
	assert.Equal(t, time.Duration(0), NewEngine(nil, 0).tolerance)
}
