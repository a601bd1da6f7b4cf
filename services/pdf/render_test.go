package pdfsvc

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/placement/core/document"
	"github.com/trezcool/placement/core/logbook"
	"github.com/trezcool/placement/core/placement"
	"github.com/trezcool/placement/core/session"
)

func TestRender(t *testing.T) {
	lb := logbook.Logbook{
		Month: 1, Year: 2025, Status: logbook.StatusApproved, MentorComments: "Très bien",
		Weeks: []logbook.WeekEntry{{WeekNumber: 1, Activities: "Set up CI", SoftSkills: "Stand-ups"}},
	}
	p := &placement.Placement{
		CompanyName: "Acme", MentorName: "Jo", MentorEmail: "jo@acme.test",
		StartDate: time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), EndDate: time.Date(2025, 3, 28, 0, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name   string
		render func() ([]byte, error)
	}{
		{name: "consolidated", render: func() ([]byte, error) {
			return Consolidated(session.User{Name: "Sam Student", Email: "sam@uni.test"}, p, []logbook.Logbook{lb, lb})
		}},
		{name: "consolidated without placement", render: func() ([]byte, error) {
			return Consolidated(session.User{Name: "Sam Student"}, nil, nil)
		}},
		{name: "signed", render: func() ([]byte, error) { return Signed(lb, "Jo Mentor", time.Now()) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tt.render()
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
			assert.True(t, document.Blob{Data: data, ContentType: document.ContentTypePDF}.IsPDF())
		})
	}
}
