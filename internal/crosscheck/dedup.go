package crosscheck

import (
	"go.uber.org/zap"

	"github.com/sells-group/logxcheck/internal/edi"
	"github.com/sells-group/logxcheck/internal/rules"
)

// ResolveDuplicates keeps one log per operator and band: the most recently
// modified one, or the lexicographically greatest path when modification
// times are equal. Every other log for that band is marked ignored. Logs with
// an invalid header compete too, so a broken resubmission leaves the operator
// without a valid log for the band.
func ResolveDuplicates(ops map[string]*edi.Operator, bands []rules.Band) {
	for _, call := range sortedCalls(ops) {
		op := ops[call]
		for _, b := range bands {
			logs := op.LogsForBand(b)
			if len(logs) < 2 {
				continue
			}

			keep := logs[0]
			for _, l := range logs[1:] {
				if newer(l, keep) {
					keep = l
				}
			}

			for _, l := range logs {
				if l == keep || l.Ignored {
					continue
				}
				l.Ignored = true
				zap.L().Info("crosscheck: ignoring older log",
					zap.String("callsign", call),
					zap.String("band", b.Name),
					zap.String("path", l.Path),
					zap.String("kept", keep.Path),
				)
			}
		}
	}
}

func newer(a, b *edi.Log) bool {
	if !a.ModTime.Equal(b.ModTime) {
		return a.ModTime.After(b.ModTime)
	}
	return a.Path > b.Path
}
