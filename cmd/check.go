package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/logxcheck/internal/crosscheck"
	"github.com/sells-group/logxcheck/internal/edi"
	"github.com/sells-group/logxcheck/internal/report"
)

var checkChecklogs string

var checkCmd = &cobra.Command{
	Use:   "check <log-or-folder>...",
	Short: "Validate logs without cross-checking them",
	Long:  "Validates the header and QSO records of each log file, or of every file in each folder, against the contest rules or generic EDI rules.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cr, err := loadRules()
		if err != nil {
			return err
		}
		ld := crosscheck.NewLoader(logOptions(cr.set), cfg.Input.Workers)

		folder := ""
		var logs []*edi.Log
		for _, arg := range args {
			// Unreadable files are reported as IO errors on their log. Only a
			// folder that cannot be listed stops the run.
			info, statErr := os.Stat(arg)
			isDir := (statErr == nil && info.IsDir()) || strings.HasSuffix(arg, string(filepath.Separator))

			var loaded []*edi.Log
			if isDir {
				if len(args) == 1 {
					folder = arg
				}
				loaded, err = ld.LoadFolder(ctx, arg, false)
			} else {
				loaded, err = ld.LoadFiles(ctx, []string{arg}, false)
			}
			if err != nil {
				return err
			}
			logs = append(logs, loaded...)
		}

		checklogs, err := loadChecklogs(ctx, ld, checkChecklogs)
		if err != nil {
			return err
		}
		logs = append(logs, checklogs...)

		res := report.New(cr.name, folder, false)
		invalid := 0
		for _, l := range logs {
			res.Add(l)
			if !l.ValidHeader || (l.ValidQsos != nil && !*l.ValidQsos) {
				invalid++
			}
		}

		zap.L().Info("check complete",
			zap.String("run_id", res.RunID),
			zap.Int("logs", len(logs)),
			zap.Int("with_errors", invalid),
		)

		return writeReport(cmd, res)
	},
}

func init() {
	checkCmd.Flags().StringVar(&checkChecklogs, "checklogs", "", "folder of checklogs to validate as well")
	rootCmd.AddCommand(checkCmd)
}
