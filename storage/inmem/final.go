package inmemdb

import (
	"github.com/trezcool/placement/core/document"
	"github.com/trezcool/placement/core/marks"
	"github.com/trezcool/placement/core/placement"
	"github.com/trezcool/placement/core/submission"
)

func (db *DB) GetPlacement(studentID string) (placement.Placement, error) {
	db.placements.mutex.RLock()
	defer db.placements.mutex.RUnlock()

	if p, ok := db.placements.t[studentID]; ok {
		return *p, nil
	}
	return placement.Placement{}, ErrNotFound
}

func (db *DB) CreatePlacement(p placement.Placement) (placement.Placement, error) {
	db.placements.mutex.Lock()
	defer db.placements.mutex.Unlock()

	if _, ok := db.placements.t[p.StudentID]; ok {
		return placement.Placement{}, ErrExists
	}
	if p.ID == "" {
		p.ID = newID()
	}
	p.CreatedAt = now()
	db.placements.t[p.StudentID] = &p
	return p, nil
}

func (db *DB) GetSubmissions(studentID string) submission.Status {
	db.submissions.mutex.RLock()
	defer db.submissions.mutex.RUnlock()

	st, ok := db.submissions.t[studentID]
	if !ok {
		return submission.Status{}
	}
	cp := submission.Status{}
	for _, k := range submission.Kinds {
		if sub := st.Get(k); sub != nil {
			s := *sub
			setSubmission(&cp, &s)
		}
	}
	return cp
}

// RecordSubmission stores the file and bumps the attempt counter of kind.
func (db *DB) RecordSubmission(studentID string, kind submission.Kind, file document.Blob) submission.Submission {
	db.submissions.mutex.Lock()
	defer db.submissions.mutex.Unlock()

	st, ok := db.submissions.t[studentID]
	if !ok {
		st = &submission.Status{}
		db.submissions.t[studentID] = st
	}
	sub := st.Get(kind)
	if sub == nil {
		sub = &submission.Submission{Kind: kind}
		setSubmission(st, sub)
	}
	sub.Attempts++
	sub.FileURL = "submissions/" + studentID + "/" + string(kind) + ".pdf"
	sub.SubmittedAt = now()
	db.submissions.files[studentID+"/"+string(kind)] = file
	return *sub
}

func setSubmission(st *submission.Status, sub *submission.Submission) {
	switch sub.Kind {
	case submission.KindAcademicMarksheet:
		st.AcademicMarksheet = sub
	case submission.KindIndustryMarksheet:
		st.IndustryMarksheet = sub
	case submission.KindPresentation:
		st.Presentation = sub
	}
}

func (db *DB) GetMarks(studentID string) marks.FinalMarks {
	db.marks.mutex.RLock()
	defer db.marks.mutex.RUnlock()

	if fm, ok := db.marks.t[studentID]; ok {
		return *fm
	}
	return marks.FinalMarks{StudentID: studentID, Status: marks.StatusPending}
}

// SetMarks applies set to the student's record and recomputes its status.
func (db *DB) SetMarks(studentID string, set func(fm *marks.FinalMarks)) marks.FinalMarks {
	db.marks.mutex.Lock()
	defer db.marks.mutex.Unlock()

	fm, ok := db.marks.t[studentID]
	if !ok {
		fm = &marks.FinalMarks{StudentID: studentID}
		db.marks.t[studentID] = fm
	}
	set(fm)
	fm.Status = marks.StatusPending
	if _, complete := fm.Total(); complete {
		fm.Status = marks.StatusComplete
	}
	return *fm
}
