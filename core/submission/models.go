package submission

import (
	"time"

	"github.com/trezcool/placement/core/document"
)

// MaxAttempts caps how many times one artifact may be uploaded.
const MaxAttempts = 3

// Kind identifies a final-stage artifact.
type Kind string

const (
	KindAcademicMarksheet Kind = "academic_marksheet"
	KindIndustryMarksheet Kind = "industry_marksheet"
	KindPresentation      Kind = "presentation"
)

var Kinds = []Kind{KindAcademicMarksheet, KindIndustryMarksheet, KindPresentation}

func (k Kind) Valid() bool {
	for _, kind := range Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

func (k Kind) Marksheet() bool {
	return k == KindAcademicMarksheet || k == KindIndustryMarksheet
}

// Submission is the latest upload of one artifact.
type Submission struct {
	Kind        Kind      `json:"kind"`
	Attempts    int       `json:"attempts"`
	FileURL     string    `json:"fileUrl,omitempty"`
	SubmittedAt time.Time `json:"submittedAt,omitempty"`
}

func (s *Submission) Submitted() bool {
	return s != nil && s.Attempts > 0
}

func (s *Submission) AttemptsLeft() int {
	if s == nil {
		return MaxAttempts
	}
	if left := MaxAttempts - s.Attempts; left > 0 {
		return left
	}
	return 0
}

// Status mirrors GET /submissions/:studentId. Missing artifacts are nil.
type Status struct {
	AcademicMarksheet *Submission `json:"academicMarksheet"`
	IndustryMarksheet *Submission `json:"industryMarksheet"`
	Presentation      *Submission `json:"presentation"`
}

func (st Status) Get(k Kind) *Submission {
	switch k {
	case KindAcademicMarksheet:
		return st.AcademicMarksheet
	case KindIndustryMarksheet:
		return st.IndustryMarksheet
	case KindPresentation:
		return st.Presentation
	default:
		return nil
	}
}

// Complete reports whether every artifact has been uploaded at least once.
func (st Status) Complete() bool {
	for _, k := range Kinds {
		if !st.Get(k).Submitted() {
			return false
		}
	}
	return true
}

// Upload is one artifact to send.
type Upload struct {
	Kind Kind
	File document.Blob
}
