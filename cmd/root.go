package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/logxcheck/internal/config"
)

var cfg *config.Config

var (
	rulesPath    string
	reportFormat string
	reportOutput string
)

var rootCmd = &cobra.Command{
	Use:   "logxcheck",
	Short: "Validate and cross-check amateur radio contest logs",
	Long:  "Validates EDI contest logs against a contest rule set, pairs QSOs across the submitted logs and scores the confirmed contacts by distance.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		applyFlags(cmd, c)
		if err := c.Validate(); err != nil {
			return fmt.Errorf("validate config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	SilenceUsage: true,
}

// applyFlags lets explicitly set persistent flags override the loaded config.
func applyFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("rules") {
		c.Rules.Path = rulesPath
	}
	if flags.Changed("format") {
		c.Report.Format = reportFormat
	}
	if flags.Changed("output") {
		c.Report.Output = reportOutput
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&rulesPath, "rules", "r", "", "contest rules file (INI)")
	rootCmd.PersistentFlags().StringVarP(&reportFormat, "format", "f", "human", "output format: human, json, xml, yaml or xlsx")
	rootCmd.PersistentFlags().StringVarP(&reportOutput, "output", "o", "", "write the report to this file instead of stdout")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
