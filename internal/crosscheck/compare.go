package crosscheck

import (
	"strings"

	"github.com/sells-group/logxcheck/internal/edi"
)

// compare checks that q2, logged by the owner of l2, mirrors q1, logged by the
// owner of l1. It returns the first mismatch in a fixed order (validity, time,
// mode, RST, serial, locator) or "" when the claims agree.
func (e *Engine) compare(q1, q2 *edi.Qso, l1, l2 *edi.Log) string {
	switch {
	case !q1.Valid:
		return ReasonInvalid
	case !q2.Valid:
		return ReasonInvalidOther
	}

	gap := q1.Time().Sub(q2.Time())
	if gap < 0 {
		gap = -gap
	}
	if gap > e.tolerance {
		return ReasonTime
	}

	if q1.Mode != q2.Mode {
		return ReasonMode
	}

	// What one side sent is what the other side received.
	if q1.RSTSent != q2.RSTRecv {
		return ReasonRSTOther
	}
	if q1.RSTRecv != q2.RSTSent {
		return ReasonRST
	}

	if q1.SerialSent != q2.SerialRecv {
		return ReasonSerialOther
	}
	if q1.SerialRecv != q2.SerialSent {
		return ReasonSerial
	}

	if !strings.EqualFold(q1.Locator, l2.Locator) {
		return ReasonLocator
	}
	if !strings.EqualFold(q2.Locator, l1.Locator) {
		return ReasonLocatorOther
	}

	return ""
}
