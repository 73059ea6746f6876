package main

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/logxcheck/internal/crosscheck"
	"github.com/sells-group/logxcheck/internal/edi"
	"github.com/sells-group/logxcheck/internal/report"
	"github.com/sells-group/logxcheck/internal/rules"
)

// contestRules is the rule set of a run together with its display name.
type contestRules struct {
	set  rules.RuleSet
	name string
}

// loadRules reads the configured rules file. Without one only generic
// validation applies and set stays nil.
func loadRules() (contestRules, error) {
	if cfg.Rules.Path == "" {
		return contestRules{}, nil
	}
	r, err := rules.Load(cfg.Rules.Path)
	if err != nil {
		return contestRules{}, err
	}
	zap.L().Info("rules loaded",
		zap.String("contest", r.Name()),
		zap.String("path", r.Path()),
		zap.Int("bands", len(r.Bands())),
		zap.Int("periods", len(r.Periods())),
	)
	return contestRules{set: r, name: r.Name()}, nil
}

func logOptions(rs rules.RuleSet) edi.Options {
	return edi.Options{
		Rules:      rs,
		Charset:    cfg.Input.Charset,
		DatePolicy: edi.DatePolicy(cfg.Validation.DatePolicy),
	}
}

func timeTolerance() time.Duration {
	return time.Duration(cfg.Crosscheck.TimeToleranceMinutes) * time.Minute
}

// loadChecklogs loads the checklogs folder when one was given.
func loadChecklogs(ctx context.Context, ld *crosscheck.Loader, dir string) ([]*edi.Log, error) {
	if dir == "" {
		return nil, nil
	}
	logs, err := ld.LoadFolder(ctx, dir, true)
	if err != nil {
		return nil, eris.Wrap(err, "load checklogs")
	}
	return logs, nil
}

// writeReport renders res to the configured output file, or to the command's
// stdout when none is set.
func writeReport(cmd *cobra.Command, res *report.Result) error {
	format, err := report.ParseFormat(cfg.Report.Format)
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if cfg.Report.Output != "" {
		f, err := os.Create(cfg.Report.Output)
		if err != nil {
			return eris.Wrap(err, "create report file")
		}
		defer f.Close() //nolint:errcheck
		w = f
	} else if format.Binary() {
		return eris.Errorf("%s reports need --output", format)
	}

	if err := report.Write(w, res, format); err != nil {
		return err
	}
	if cfg.Report.Output != "" {
		zap.L().Info("report written",
			zap.String("run_id", res.RunID),
			zap.String("format", string(format)),
			zap.String("path", cfg.Report.Output),
		)
	}
	return nil
}
