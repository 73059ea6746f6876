package edi

import "github.com/sells-group/logxcheck/internal/rules"

// Operator is one callsign and every log it submitted.
type Operator struct {
	Callsign string
	Logs     []*Log
}

// NewOperator returns an operator with no logs.
func NewOperator(callsign string) *Operator {
	return &Operator{Callsign: NormalizeCallsign(callsign)}
}

// AddLog attaches a log to the operator.
func (o *Operator) AddLog(l *Log) {
	o.Logs = append(o.Logs, l)
}

// LogsForBand returns the operator's logs for the band, in submission order.
// A log validated against rules belongs only to the band it was matched to.
func (o *Operator) LogsForBand(b rules.Band) []*Log {
	var out []*Log
	for _, l := range o.Logs {
		if l.RuleBand != nil {
			if l.RuleBand.ID == b.ID {
				out = append(out, l)
			}
			continue
		}
		if l.Band != "" && b.Matches(l.Band) {
			out = append(out, l)
		}
	}
	return out
}

// ActiveLogForBand returns the first log for the band that is not ignored and
// has a valid header.
func (o *Operator) ActiveLogForBand(b rules.Band) *Log {
	for _, l := range o.LogsForBand(b) {
		if !l.Ignored && l.ValidHeader {
			return l
		}
	}
	return nil
}
