package report

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/logxcheck/internal/edi"
)

const separator = "-------------"

func writeHuman(w io.Writer, r *Result) error {
	if r.Folder != "" {
		if _, err := fmt.Fprintf(w, "Checking logs from folder : %s\n", r.Folder); err != nil {
			return eris.Wrap(err, "report: write human")
		}
	}

	for i, l := range r.Logs {
		if i > 0 {
			_, _ = fmt.Fprintln(w, separator)
		}
		_, _ = fmt.Fprintf(w, "Checking log : %s\n", l.Path)
		if len(l.Errors.IO) > 0 {
			_, _ = fmt.Fprintln(w, "Input/Output errors :")
			writeHumanErrors(w, l.Errors.IO)
		}
		if len(l.Errors.Header) > 0 {
			_, _ = fmt.Fprintln(w, "Header errors :")
			writeHumanErrors(w, l.Errors.Header)
		}
		if len(l.Errors.Qso) > 0 {
			_, _ = fmt.Fprintln(w, "QSO errors :")
			writeHumanErrors(w, l.Errors.Qso)
		}
	}

	if !r.Crosscheck || len(r.Logs) == 0 {
		return nil
	}

	_, _ = fmt.Fprintln(w, separator)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "CALLSIGN\tBAND\tCATEGORY\tCONFIRMED\tPOINTS\tLOG")
	for _, l := range r.Logs {
		if !l.ValidHeader || l.Ignored || l.Checklog {
			continue
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
			l.Callsign, l.Band, l.Category, deref(l.ConfirmedCount), deref(l.PointsTotal), l.Path)
	}
	if err := tw.Flush(); err != nil {
		return eris.Wrap(err, "report: write human")
	}
	return nil
}

func writeHumanErrors(w io.Writer, errs []edi.LogError) {
	for _, e := range errs {
		if e.Line == 0 {
			_, _ = fmt.Fprintf(w, "Line - : %s\n", e.Message)
			continue
		}
		_, _ = fmt.Fprintf(w, "Line %d : %s\n", e.Line, e.Message)
	}
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func writeJSON(w io.Writer, r *Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return eris.Wrap(err, "report: encode json")
	}
	return nil
}

func writeXML(w io.Writer, r *Result) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return eris.Wrap(err, "report: write xml")
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(r); err != nil {
		return eris.Wrap(err, "report: encode xml")
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return eris.Wrap(err, "report: write xml")
	}
	return nil
}

func writeYAML(w io.Writer, r *Result) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return eris.Wrap(err, "report: encode yaml")
	}
	if err := enc.Close(); err != nil {
		return eris.Wrap(err, "report: encode yaml")
	}
	return nil
}
