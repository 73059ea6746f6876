package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/logxcheck/internal/rules"
)

var rulesCmd = &cobra.Command{
	Use:   "rules <file>",
	Short: "Load a contest rules file and print what it defines",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := rules.Load(args[0])
		if err != nil {
			return err
		}
		return formatRules(cmd.OutOrStdout(), r)
	},
}

func formatRules(out io.Writer, r *rules.Rules) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintf(w, "Contest:\t%s\n", r.Name())
	_, _ = fmt.Fprintf(w, "Begins:\t%s %s\n", r.ContestBeginDate().Format(rules.DateLayout), r.ContestBeginHour())
	_, _ = fmt.Fprintf(w, "Ends:\t%s %s\n", r.ContestEndDate().Format(rules.DateLayout), r.ContestEndHour())
	_, _ = fmt.Fprintf(w, "Modes:\t%s\n", joinInts(r.Modes()))
	if re := r.CallsignPattern(); re != nil {
		_, _ = fmt.Fprintf(w, "Callsigns:\t%s\n", re.String())
	}
	var extras []string
	for _, e := range []rules.Extra{rules.ExtraEmail, rules.ExtraAddress, rules.ExtraName} {
		if r.RequiresExtra(e) {
			extras = append(extras, string(e))
		}
	}
	if len(extras) > 0 {
		_, _ = fmt.Fprintf(w, "Required extras:\t%s\n", strings.Join(extras, ", "))
	}

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "BAND\tNAME\tMULTIPLIER\tPATTERN")
	for _, b := range r.Bands() {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", b.ID, b.Name, b.Multiplier, b.Pattern)
	}

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "PERIOD\tBEGIN\tEND\tBANDS")
	for _, p := range r.Periods() {
		_, _ = fmt.Fprintf(w, "%d\t%s %s\t%s %s\t%s\n", p.Number,
			p.BeginDate.Format(rules.DateLayout), p.BeginHour,
			p.EndDate.Format(rules.DateLayout), p.EndHour,
			strings.Join(p.Bands, ","))
	}

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "CATEGORY\tNAME\tBANDS\tPATTERN")
	for _, c := range r.Categories() {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.ID, c.Name, strings.Join(c.Bands, ","), c.Pattern)
	}

	return w.Flush()
}

func joinInts(vals []int) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ",")
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}
