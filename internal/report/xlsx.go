package report

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/logxcheck/internal/edi"
)

// Sheet names of the spreadsheet report.
const (
	SheetLogs   = "Logs"
	SheetErrors = "Errors"
	SheetQsos   = "QSOs"
)

var (
	logsHeader   = []string{"Log", "Callsign", "Locator", "Band", "Category", "Valid header", "Valid QSOs", "Checklog", "Ignored", "Confirmed", "Points"}
	errorsHeader = []string{"Log", "Phase", "Line", "Message"}
	qsosHeader   = []string{"Log", "Line", "Date", "Hour", "Call", "Valid", "Status", "Error", "Points"}
)

func writeXLSX(w io.Writer, r *Result) error {
	f := xlsx.NewFile()

	logs, err := addSheet(f, SheetLogs, logsHeader)
	if err != nil {
		return err
	}
	errs, err := addSheet(f, SheetErrors, errorsHeader)
	if err != nil {
		return err
	}
	var qsos *xlsx.Sheet
	if r.Crosscheck {
		if qsos, err = addSheet(f, SheetQsos, qsosHeader); err != nil {
			return err
		}
	}

	for _, l := range r.Logs {
		row := logs.AddRow()
		addStrings(row, l.Path, l.Callsign, l.Locator, l.Band, l.Category)
		row.AddCell().SetBool(l.ValidHeader)
		if l.ValidQsos != nil {
			row.AddCell().SetBool(*l.ValidQsos)
		} else {
			row.AddCell().SetString("")
		}
		row.AddCell().SetBool(l.Checklog)
		row.AddCell().SetBool(l.Ignored)
		if r.Crosscheck {
			row.AddCell().SetInt(deref(l.ConfirmedCount))
			row.AddCell().SetInt(deref(l.PointsTotal))
		}

		addErrorRows(errs, l.Path, "io", l.Errors.IO)
		addErrorRows(errs, l.Path, "header", l.Errors.Header)
		addErrorRows(errs, l.Path, "qso", l.Errors.Qso)

		if qsos == nil {
			continue
		}
		for _, q := range l.Qsos {
			row := qsos.AddRow()
			row.AddCell().SetString(l.Path)
			row.AddCell().SetInt(q.Line)
			addStrings(row, q.Date, q.Hour, q.Call)
			row.AddCell().SetBool(q.Valid)
			addStrings(row, q.Status, q.ConfirmError)
			row.AddCell().SetInt(q.Points)
		}
	}

	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "report: write xlsx")
	}
	return nil
}

func addSheet(f *xlsx.File, name string, header []string) (*xlsx.Sheet, error) {
	sheet, err := f.AddSheet(name)
	if err != nil {
		return nil, eris.Wrapf(err, "report: add sheet %s", name)
	}
	addStrings(sheet.AddRow(), header...)
	return sheet, nil
}

func addStrings(row *xlsx.Row, values ...string) {
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}

func addErrorRows(sheet *xlsx.Sheet, path, phase string, errs []edi.LogError) {
	for _, e := range errs {
		row := sheet.AddRow()
		addStrings(row, path, phase)
		if e.Line > 0 {
			row.AddCell().SetInt(e.Line)
		} else {
			row.AddCell().SetString("")
		}
		row.AddCell().SetString(e.Message)
	}
}
