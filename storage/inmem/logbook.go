package inmemdb

import (
	"sort"

	"github.com/trezcool/placement/core/document"
	"github.com/trezcool/placement/core/logbook"
)

// clone copies lb so callers never share a stored row's weeks.
func clone(lb logbook.Logbook) logbook.Logbook {
	lb.Weeks = append([]logbook.WeekEntry(nil), lb.Weeks...)
	return lb
}

func (db *DB) find(studentID string, month, year int) *logbook.Logbook {
	for _, lb := range db.logbooks.t {
		if lb.StudentID == studentID && lb.Month == month && lb.Year == year {
			return lb
		}
	}
	return nil
}

func (db *DB) FindLogbook(studentID string, month, year int) (logbook.Logbook, error) {
	db.logbooks.mutex.RLock()
	defer db.logbooks.mutex.RUnlock()

	if lb := db.find(studentID, month, year); lb != nil {
		return clone(*lb), nil
	}
	return logbook.Logbook{}, ErrNotFound
}

func (db *DB) GetLogbook(id string) (logbook.Logbook, error) {
	db.logbooks.mutex.RLock()
	defer db.logbooks.mutex.RUnlock()

	if lb, ok := db.logbooks.t[id]; ok {
		return clone(*lb), nil
	}
	return logbook.Logbook{}, ErrNotFound
}

// SaveLogbook inserts or replaces a logbook and stamps UpdatedAt.
func (db *DB) SaveLogbook(lb logbook.Logbook) logbook.Logbook {
	db.logbooks.mutex.Lock()
	defer db.logbooks.mutex.Unlock()

	if lb.ID == "" {
		lb.ID = newID()
	}
	lb.UpdatedAt = now()
	stored := clone(lb)
	db.logbooks.t[lb.ID] = &stored
	return clone(stored)
}

// UpsertEntry saves one week into the student's month, creating a Draft when needed.
func (db *DB) UpsertEntry(studentID string, month, year int, entry logbook.WeekEntry) logbook.Logbook {
	db.logbooks.mutex.Lock()
	defer db.logbooks.mutex.Unlock()

	lb := db.find(studentID, month, year)
	if lb == nil {
		lb = &logbook.Logbook{ID: newID(), StudentID: studentID, Month: month, Year: year, Status: logbook.StatusDraft}
		db.logbooks.t[lb.ID] = lb
	}
	lb.PutWeek(entry)
	lb.UpdatedAt = now()
	return clone(*lb)
}

// QueryLogbooks returns the logbooks matching keep, ordered by year then month.
func (db *DB) QueryLogbooks(keep func(lb logbook.Logbook) bool) []logbook.Logbook {
	db.logbooks.mutex.RLock()
	defer db.logbooks.mutex.RUnlock()

	lbs := make([]logbook.Logbook, 0)
	for _, lb := range db.logbooks.t {
		if keep == nil || keep(*lb) {
			lbs = append(lbs, clone(*lb))
		}
	}
	sort.Slice(lbs, func(i, j int) bool {
		if lbs[i].Year != lbs[j].Year {
			return lbs[i].Year < lbs[j].Year
		}
		return lbs[i].Month < lbs[j].Month
	})
	return lbs
}

func (db *DB) History(studentID string) []logbook.Summary {
	lbs := db.QueryLogbooks(func(lb logbook.Logbook) bool { return lb.StudentID == studentID })
	history := make([]logbook.Summary, 0, len(lbs))
	for _, lb := range lbs {
		history = append(history, lb.Summary())
	}
	return history
}

func (db *DB) PutSignedPDF(id string, file document.Blob) error {
	db.logbooks.mutex.Lock()
	defer db.logbooks.mutex.Unlock()

	lb, ok := db.logbooks.t[id]
	if !ok {
		return ErrNotFound
	}
	db.logbooks.signed[id] = file
	lb.SignedPDFPath = "signed/" + id + ".pdf"
	lb.UpdatedAt = now()
	return nil
}

func (db *DB) SignedPDF(id string) (document.Blob, error) {
	db.logbooks.mutex.RLock()
	defer db.logbooks.mutex.RUnlock()

	if file, ok := db.logbooks.signed[id]; ok {
		return file, nil
	}
	return document.Blob{}, ErrNotFound
}
