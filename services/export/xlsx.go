// Package exportsvc writes a student's logbooks to an Excel workbook.
package exportsvc

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/placement/core/logbook"
	"github.com/trezcool/placement/core/placement"
	"github.com/trezcool/placement/core/session"
)

const (
	summarySheet = "Summary"
	dateLayout   = "2006-01-02"
)

var (
	summaryHeader = []interface{}{"Month", "Period", "Status", "Weeks filled", "Mentor comments", "Rejection reason", "Updated"}
	monthHeader   = []interface{}{"Week", "Activities", "Technical skills", "Soft skills", "Trainings received"}
)

// MonthSheet names the sheet holding the weeks of placement month m.
func MonthSheet(m int) string {
	return fmt.Sprintf("Month %d", m)
}

// WriteLogbooks renders a summary sheet followed by one sheet per month, ordered as lbs.
func WriteLogbooks(w io.Writer, student session.User, p *placement.Placement, lbs []logbook.Logbook) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cErr := f.Close(); cErr != nil && err == nil {
			err = errors.Wrap(cErr, "closing workbook")
		}
	}()

	if err = f.SetSheetName(f.GetSheetName(0), summarySheet); err != nil {
		return errors.Wrap(err, "naming summary sheet")
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.Wrap(err, "creating header style")
	}

	row := 1
	setRow := func(sheet string, values []interface{}) error {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		row++
		return f.SetSheetRow(sheet, cell, &values)
	}

	// header block
	if err = setRow(summarySheet, []interface{}{"Student", student.Name, student.Email}); err != nil {
		return errors.Wrap(err, "writing student")
	}
	if p != nil {
		if err = setRow(summarySheet, []interface{}{"Company", p.CompanyName, p.StartDate.Format(dateLayout) + " to " + p.EndDate.Format(dateLayout)}); err != nil {
			return errors.Wrap(err, "writing placement")
		}
		if err = setRow(summarySheet, []interface{}{"Industry mentor", p.MentorName, p.MentorEmail}); err != nil {
			return errors.Wrap(err, "writing placement")
		}
	}
	row++

	headerRow := row
	if err = setRow(summarySheet, summaryHeader); err != nil {
		return errors.Wrap(err, "writing summary header")
	}
	if err = styleRow(f, summarySheet, headerRow, len(summaryHeader), bold); err != nil {
		return err
	}
	for _, lb := range lbs {
		period := fmt.Sprint(lb.Year)
		if p != nil {
			m, y := p.MonthOf(lb.Month)
			period = fmt.Sprintf("%s %d", m, y)
		}
		values := []interface{}{
			lb.Month, period, string(lb.Status), lb.FilledWeeks(),
			lb.MentorComments, lb.RejectionReason, lb.UpdatedAt.Format(dateLayout),
		}
		if err = setRow(summarySheet, values); err != nil {
			return errors.Wrapf(err, "writing month %d summary", lb.Month)
		}
	}
	if err = f.SetColWidth(summarySheet, "A", "G", 18); err != nil {
		return errors.Wrap(err, "sizing summary columns")
	}

	for _, lb := range lbs {
		sheet := MonthSheet(lb.Month)
		if _, err = f.NewSheet(sheet); err != nil {
			return errors.Wrapf(err, "creating sheet %q", sheet)
		}
		row = 1
		if err = setRow(sheet, monthHeader); err != nil {
			return errors.Wrapf(err, "writing %s header", sheet)
		}
		if err = styleRow(f, sheet, 1, len(monthHeader), bold); err != nil {
			return err
		}
		for _, wk := range lb.Weeks {
			values := []interface{}{wk.WeekNumber, wk.Activities, wk.TechnicalSkills, wk.SoftSkills, wk.TrainingsReceived}
			if err = setRow(sheet, values); err != nil {
				return errors.Wrapf(err, "writing %s week %d", sheet, wk.WeekNumber)
			}
		}
		if err = f.SetColWidth(sheet, "B", "E", 40); err != nil {
			return errors.Wrapf(err, "sizing %s columns", sheet)
		}
	}

	f.SetActiveSheet(0)
	if err = f.Write(w); err != nil {
		return errors.Wrap(err, "writing workbook")
	}
	return nil
}

func styleRow(f *excelize.File, sheet string, row, cols, style int) error {
	first, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(cols, row)
	if err != nil {
		return err
	}
	return errors.Wrapf(f.SetCellStyle(sheet, first, last, style), "styling %s header", sheet)
}
