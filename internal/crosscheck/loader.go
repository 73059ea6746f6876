// Package crosscheck pairs QSOs across the logs of a contest and scores the
// confirmed ones.
package crosscheck

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/logxcheck/internal/edi"
)

// Loader reads and validates logs concurrently.
type Loader struct {
	opts    edi.Options
	workers int
}

// NewLoader returns a Loader that validates with opts using up to workers
// goroutines.
func NewLoader(opts edi.Options, workers int) *Loader {
	if workers < 1 {
		workers = 1
	}
	return &Loader{opts: opts, workers: workers}
}

// ListFolder returns the regular files of dir sorted by name.
func ListFolder(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "crosscheck: cannot open logs folder %s", dir)
	}
	var paths []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// LoadFolder loads every file in dir. checklog marks the logs as checklogs.
func (ld *Loader) LoadFolder(ctx context.Context, dir string, checklog bool) ([]*edi.Log, error) {
	paths, err := ListFolder(dir)
	if err != nil {
		return nil, err
	}
	return ld.LoadFiles(ctx, paths, checklog)
}

// LoadFiles loads paths concurrently. The result keeps the order of paths.
func (ld *Loader) LoadFiles(ctx context.Context, paths []string, checklog bool) ([]*edi.Log, error) {
	log := zap.L().With(zap.Int("files", len(paths)), zap.Bool("checklog", checklog))
	log.Debug("crosscheck: loading logs")

	opts := ld.opts
	opts.Checklog = checklog

	logs := make([]*edi.Log, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ld.workers)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			logs[i] = edi.Load(path, opts)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "crosscheck: load logs")
	}

	log.Debug("crosscheck: logs loaded")
	return logs, nil
}

// Group builds the operator index from logs. Every log with a parsed callsign
// is attached, including logs with an invalid header: those stay ignored but
// still tell the engine that the operator submitted something.
func Group(logs []*edi.Log) map[string]*edi.Operator {
	ops := make(map[string]*edi.Operator)
	for _, l := range logs {
		if l.Callsign == "" {
			continue
		}
		op, ok := ops[l.Callsign]
		if !ok {
			op = edi.NewOperator(l.Callsign)
			ops[op.Callsign] = op
		}
		op.AddLog(l)
	}
	return ops
}
