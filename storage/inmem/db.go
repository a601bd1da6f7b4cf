package inmemdb

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/placement/core/document"
	"github.com/trezcool/placement/core/logbook"
	"github.com/trezcool/placement/core/marks"
	"github.com/trezcool/placement/core/placement"
	"github.com/trezcool/placement/core/submission"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrExists   = errors.New("record already exists")

	nowFunc = time.Now // mockable
)

type (
	// DB holds the sandbox tables. Each table guards itself; last write wins.
	DB struct {
		accounts    *accountTable
		logbooks    *logbookTable
		placements  *placementTable
		submissions *submissionTable
		marks       *marksTable
	}

	accountTable struct {
		t     map[string]*Account
		mutex sync.RWMutex
	}

	logbookTable struct {
		t      map[string]*logbook.Logbook
		signed map[string]document.Blob
		mutex  sync.RWMutex
	}

	placementTable struct {
		t     map[string]*placement.Placement // by student
		mutex sync.RWMutex
	}

	submissionTable struct {
		t     map[string]*submission.Status // by student
		files map[string]document.Blob      // by student/kind
		mutex sync.RWMutex
	}

	marksTable struct {
		t     map[string]*marks.FinalMarks // by student
		mutex sync.RWMutex
	}
)

func Open() *DB {
	return &DB{
		accounts:    &accountTable{t: make(map[string]*Account)},
		logbooks:    &logbookTable{t: make(map[string]*logbook.Logbook), signed: make(map[string]document.Blob)},
		placements:  &placementTable{t: make(map[string]*placement.Placement)},
		submissions: &submissionTable{t: make(map[string]*submission.Status), files: make(map[string]document.Blob)},
		marks:       &marksTable{t: make(map[string]*marks.FinalMarks)},
	}
}

func newID() string {
	return uuid.NewString()
}

func now() time.Time {
	return nowFunc().UTC()
}
