package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/logxcheck/internal/crosscheck"
	"github.com/sells-group/logxcheck/internal/report"
)

var crosscheckChecklogs string

var crosscheckCmd = &cobra.Command{
	Use:   "crosscheck <folder>",
	Short: "Cross-check every log in a folder and score confirmed QSOs",
	Long:  "Loads every log in the folder (plus optional checklogs), keeps the newest log per operator and band, confirms each QSO against the counterpart's log and totals the distance based points.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		folder := args[0]

		cr, err := loadRules()
		if err != nil {
			return err
		}
		if cr.set == nil {
			return eris.New("crosscheck needs a rules file (--rules or rules.path)")
		}

		ld := crosscheck.NewLoader(logOptions(cr.set), cfg.Input.Workers)
		logs, err := ld.LoadFolder(ctx, folder, false)
		if err != nil {
			return err
		}
		checklogs, err := loadChecklogs(ctx, ld, crosscheckChecklogs)
		if err != nil {
			return err
		}
		logs = append(logs, checklogs...)

		ops := crosscheck.Group(logs)
		zap.L().Info("logs grouped",
			zap.Int("logs", len(logs)),
			zap.Int("operators", len(ops)),
		)

		crosscheck.NewEngine(cr.set, timeTolerance()).Reconcile(ops)

		res := report.New(cr.name, folder, true)
		for _, l := range logs {
			res.Add(l)
		}
		return writeReport(cmd, res)
	},
}

func init() {
	crosscheckCmd.Flags().StringVar(&crosscheckChecklogs, "checklogs", "", "folder of checklogs used to confirm QSOs")
	rootCmd.AddCommand(crosscheckCmd)
}
