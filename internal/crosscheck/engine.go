package crosscheck

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/logxcheck/internal/edi"
	"github.com/sells-group/logxcheck/internal/geo"
	"github.com/sells-group/logxcheck/internal/rules"
)

// DefaultTimeTolerance is the largest accepted gap between the two claims of
// a contact.
const DefaultTimeTolerance = 5 * time.Minute

// Reasons recorded on QSOs that could not be confirmed.
const (
	ReasonOutsidePeriods   = "qso is not inside contest periods"
	ReasonAlreadyConfirmed = "qso already confirmed"
	ReasonPeriodMismatch   = "qso period mismatch"
	ReasonInvalid          = "qso is invalid"
	ReasonInvalidOther     = "qso is invalid (other ham)"
	ReasonTime             = "different date/time between qso's"
	ReasonMode             = "mode mismatch"
	ReasonRST              = "rst mismatch"
	ReasonRSTOther         = "rst mismatch (other ham)"
	ReasonSerial           = "serial number mismatch"
	ReasonSerialOther      = "serial number mismatch (other ham)"
	ReasonLocator          = "qth locator mismatch"
	ReasonLocatorOther     = "qth locator mismatch (other ham)"
)

func reasonNoLog(call string) string { return fmt.Sprintf("no log from %s", call) }
func reasonNoBandLog(call string) string { return fmt.Sprintf("no log for this band from %s", call) }
func reasonNoValidLog(call string) string { return fmt.Sprintf("no valid log from %s", call) }
func reasonNoQsoFound(call string) string { return fmt.Sprintf("no qso found on %s log", call) }

// Engine confirms QSOs by finding the mirrored claim in the counterpart's log.
type Engine struct {
	rules     rules.RuleSet
	tolerance time.Duration
}

// NewEngine returns an Engine for rs. A negative tolerance selects
// DefaultTimeTolerance.
func NewEngine(rs rules.RuleSet, tolerance time.Duration) *Engine {
	if tolerance < 0 {
		tolerance = DefaultTimeTolerance
	}
	return &Engine{rules: rs, tolerance: tolerance}
}

// matchKey identifies a counterpart within a period. Each key is credited at
// most once per operator and band.
type matchKey struct {
	call   string
	period int
}

// Reconcile resolves duplicate submissions and then confirms or rejects
// every valid QSO of every scoring log, band by band. Results are written to
// the QSOs in place.
func (e *Engine) Reconcile(ops map[string]*edi.Operator) {
	bands := e.rules.Bands()
	ResolveDuplicates(ops, bands)

	calls := sortedCalls(ops)
	for _, b := range bands {
		confirmed := 0
		for _, call := range calls {
			confirmed += e.reconcileBand(ops, ops[call], b)
		}
		zap.L().Info("crosscheck: band reconciled",
			zap.String("band", b.Name),
			zap.Int("operators", len(calls)),
			zap.Int("confirmed", confirmed),
		)
	}
}

// reconcileBand handles the QSOs of operator a on band b and returns how many
// were confirmed.
func (e *Engine) reconcileBand(ops map[string]*edi.Operator, a *edi.Operator, b rules.Band) int {
	l1 := a.ActiveLogForBand(b)
	if l1 == nil || l1.Checklog {
		return 0
	}

	matched := make(map[matchKey]bool)
	confirmed := 0

	for _, q1 := range l1.Qsos {
		if !q1.Valid || q1.Status == edi.Confirmed {
			continue
		}

		period, ok := rules.PeriodOf(e.rules, b.ID, q1.Date, q1.Hour)
		if !ok {
			q1.Reject(ReasonOutsidePeriods)
			continue
		}

		key := matchKey{call: q1.Call, period: period}
		if matched[key] {
			q1.Reject(ReasonAlreadyConfirmed)
			continue
		}

		other, ok := ops[q1.Call]
		if !ok {
			q1.Reject(reasonNoLog(q1.Call))
			continue
		}
		l2 := other.ActiveLogForBand(b)
		if l2 == nil {
			if len(other.LogsForBand(b)) == 0 {
				q1.Reject(reasonNoBandLog(q1.Call))
			} else {
				q1.Reject(reasonNoValidLog(q1.Call))
			}
			continue
		}

		if reason, found := e.findCounterpart(q1, l1, l2, b.ID, period); !found {
			q1.Reject(reason)
			continue
		}

		km, err := geo.Distance(l1.Locator, l2.Locator)
		if err != nil {
			q1.Reject(err.Error())
			continue
		}
		matched[key] = true
		q1.Confirm(km * b.Multiplier)
		confirmed++
	}

	return confirmed
}

// findCounterpart scans l2 in file order for the first QSO that mirrors q1.
// Candidates from another period are skipped. When nothing matches, the
// reason of the last rejected candidate is returned.
func (e *Engine) findCounterpart(q1 *edi.Qso, l1, l2 *edi.Log, bandID string, period int) (string, bool) {
	reason := ""
	otherPeriod := false
	for _, q2 := range l2.Qsos {
		if edi.NormalizeCallsign(q2.Fields.Call) != l1.Callsign {
			continue
		}
		if q2.Valid {
			if p, ok := rules.PeriodOf(e.rules, bandID, q2.Date, q2.Hour); !ok || p != period {
				otherPeriod = true
				continue
			}
		}
		if r := e.compare(q1, q2, l1, l2); r != "" {
			reason = r
			continue
		}
		return "", true
	}

	switch {
	case reason != "":
		return reason, false
	case otherPeriod:
		return ReasonPeriodMismatch, false
	default:
		return reasonNoQsoFound(l2.Callsign), false
	}
}

func sortedCalls(ops map[string]*edi.Operator) []string {
	calls := make([]string, 0, len(ops))
	for call := range ops {
		calls = append(calls, call)
	}
	sort.Strings(calls)
	return calls
}
