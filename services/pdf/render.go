package pdfsvc

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/pkg/errors"

	"github.com/trezcool/placement/core/logbook"
	"github.com/trezcool/placement/core/placement"
	"github.com/trezcool/placement/core/session"
)

const dateLayout = "02 Jan 2006"

type renderer struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

func newRenderer(title string) *renderer {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	return &renderer{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
}

func (r *renderer) heading(title, subtitle string) {
	r.pdf.SetFont("Arial", "B", 16)
	r.pdf.Cell(0, 10, r.tr(title))
	r.pdf.Ln(8)
	if subtitle != "" {
		r.pdf.SetFont("Arial", "", 10)
		r.pdf.Cell(0, 5, r.tr(subtitle))
		r.pdf.Ln(4)
	}
	r.rule(40, 145, 108, 0.5)
	r.pdf.Ln(6)
}

func (r *renderer) rule(red, green, blue int, width float64) {
	r.pdf.SetDrawColor(red, green, blue)
	r.pdf.SetLineWidth(width)
	r.pdf.Line(20, r.pdf.GetY(), 190, r.pdf.GetY())
}

func (r *renderer) field(label, value string) {
	r.pdf.SetFont("Arial", "", 10)
	r.pdf.Cell(45, 6, r.tr(label))
	r.pdf.SetFont("Arial", "B", 10)
	r.pdf.Cell(0, 6, r.tr(value))
	r.pdf.Ln(5)
}

func (r *renderer) paragraph(label, text string) {
	if text == "" {
		return
	}
	r.pdf.SetFont("Arial", "B", 9)
	r.pdf.Cell(0, 5, r.tr(label))
	r.pdf.Ln(5)
	r.pdf.SetFont("Arial", "", 9)
	r.pdf.MultiCell(0, 5, r.tr(text), "", "L", false)
	r.pdf.Ln(1)
}

func (r *renderer) month(lb logbook.Logbook) {
	r.pdf.SetFont("Arial", "B", 12)
	r.pdf.SetFillColor(40, 145, 108)
	r.pdf.SetTextColor(255, 255, 255)
	r.pdf.CellFormat(0, 8, fmt.Sprintf("Month %d (%d) - %s", lb.Month, lb.Year, lb.Status), "1", 1, "L", true, 0, "")
	r.pdf.SetTextColor(0, 0, 0)
	r.pdf.Ln(2)

	for n := 1; n <= logbook.WeeksPerMonth; n++ {
		week, ok := lb.Week(n)
		r.pdf.SetFont("Arial", "B", 10)
		r.pdf.Cell(0, 6, fmt.Sprintf("Week %d", n))
		r.pdf.Ln(6)
		if !ok || !week.Filled() {
			r.pdf.SetFont("Arial", "I", 9)
			r.pdf.Cell(0, 5, "No entry")
			r.pdf.Ln(6)
			continue
		}
		r.paragraph("Activities", week.Activities)
		r.paragraph("Technical skills", week.TechnicalSkills)
		r.paragraph("Soft skills", week.SoftSkills)
		r.paragraph("Trainings received", week.TrainingsReceived)
	}
	r.paragraph("Mentor comments", lb.MentorComments)
	r.pdf.Ln(2)
	r.rule(200, 200, 200, 0.3)
	r.pdf.Ln(4)
}

func (r *renderer) bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := r.pdf.Output(&buf); err != nil {
		return nil, errors.Wrap(err, "rendering pdf")
	}
	return buf.Bytes(), nil
}

// Consolidated renders every given month of a student's logbook into one document.
func Consolidated(student session.User, p *placement.Placement, lbs []logbook.Logbook) ([]byte, error) {
	r := newRenderer("Consolidated logbook - " + student.Name)
	r.pdf.AddPage()
	r.heading("INTERNSHIP LOGBOOK", "Consolidated record of approved months")

	r.field("Student:", student.Name)
	r.field("Email:", student.Email)
	if p != nil {
		r.field("Company:", p.CompanyName)
		r.field("Period:", p.StartDate.Format(dateLayout)+" - "+p.EndDate.Format(dateLayout))
		r.field("Industry mentor:", p.MentorName+" <"+p.MentorEmail+">")
	}
	r.pdf.Ln(6)

	for _, lb := range lbs {
		r.month(lb)
	}
	return r.bytes()
}

// Signed renders a single month with a signature block, as a mentor would upload it.
func Signed(lb logbook.Logbook, signer string, signedAt time.Time) ([]byte, error) {
	r := newRenderer(fmt.Sprintf("Logbook month %d", lb.Month))
	r.pdf.AddPage()
	r.heading("INTERNSHIP LOGBOOK", fmt.Sprintf("Month %d of %d", lb.Month, lb.Year))
	r.month(lb)

	r.pdf.Ln(10)
	r.field("Signed by:", signer)
	r.field("Date:", signedAt.Format(dateLayout))
	return r.bytes()
}
