package marks

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/placement/core"
)

type fakeGateway struct {
	marks map[string]*FinalMarks
	posts int
}

func (gw *fakeGateway) get(studentID string) *FinalMarks {
	fm, ok := gw.marks[studentID]
	if !ok {
		fm = &FinalMarks{StudentID: studentID}
		gw.marks[studentID] = fm
	}
	return fm
}

func (gw *fakeGateway) GetMarks(_ context.Context, studentID string) (FinalMarks, error) {
	return *gw.get(studentID), nil
}

func (gw *fakeGateway) SubmitAcademicMarks(_ context.Context, am AcademicMarks) (FinalMarks, error) {
	gw.posts++
	fm := gw.get(am.StudentID)
	fm.AcademicMentorMarks = &am.Marks
	return *fm, nil
}

func (gw *fakeGateway) SubmitIndustryMarks(_ context.Context, im IndustryMarks) (FinalMarks, error) {
	gw.posts++
	fm := gw.get(im.StudentID)
	fm.IndustryMentorMarks = &im.Marks
	return *fm, nil
}

func intPtr(i int) *int { return &i }

func TestFinalMarks_Total(t *testing.T) {
	tests := []struct {
		name      string
		fm        FinalMarks
		wantTotal int
		wantOK    bool
	}{
		{name: "none", fm: FinalMarks{}},
		{name: "academic only", fm: FinalMarks{AcademicMentorMarks: intPtr(50)}},
		{name: "industry only", fm: FinalMarks{IndustryMentorMarks: intPtr(30)}},
		{name: "both", fm: FinalMarks{AcademicMentorMarks: intPtr(55), IndustryMentorMarks: intPtr(37)}, wantTotal: 92, wantOK: true},
		{name: "both zero", fm: FinalMarks{AcademicMentorMarks: intPtr(0), IndustryMentorMarks: intPtr(0)}, wantTotal: 0, wantOK: true},
		{name: "maximum", fm: FinalMarks{AcademicMentorMarks: intPtr(60), IndustryMentorMarks: intPtr(40)}, wantTotal: MaxTotal, wantOK: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total, ok := tt.fm.Total()
			if total != tt.wantTotal || ok != tt.wantOK {
				t.Errorf("Total() = (%v, %v), want (%v, %v)", total, ok, tt.wantTotal, tt.wantOK)
			}
		})
	}
}

// Scenario D: 45 industry marks are rejected before any POST.
func TestService_SubmitIndustry_OutOfRange(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{marks: make(map[string]*FinalMarks)}
	svc := NewService(gw, core.NewValidator(validator.New(), core.NewTranslator()))

	for _, marks := range []int{45, -1} {
		_, err := svc.SubmitIndustry(ctx, IndustryMarks{StudentID: "s1", Marks: marks})
		var vErr *core.ValidationError
		require.True(t, errors.As(err, &vErr), "SubmitIndustry(%d) error = %v", marks, err)
		assert.Equal(t, "industryMentorMarks must be between 0 and 40", vErr.FieldMap()["industryMentorMarks"])
	}
	_, err := svc.SubmitAcademic(ctx, AcademicMarks{StudentID: "s1", Marks: 61})
	assert.EqualError(t, err, "academicMentorMarks: academicMentorMarks must be between 0 and 60")
	assert.Equal(t, 0, gw.posts)
}

func TestService_Submit(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{marks: make(map[string]*FinalMarks)}
	svc := NewService(gw, core.NewValidator(validator.New(), core.NewTranslator()))

	fm, err := svc.SubmitIndustry(ctx, IndustryMarks{StudentID: " s1 ", Marks: 40})
	require.NoError(t, err)
	_, ok := fm.Total()
	assert.False(t, ok)

	fm, err = svc.SubmitAcademic(ctx, AcademicMarks{StudentID: "s1", Marks: 0})
	require.NoError(t, err)
	total, ok := fm.Total()
	assert.True(t, ok)
	assert.Equal(t, 40, total)

	_, err = svc.SubmitAcademic(ctx, AcademicMarks{Marks: 10})
	assert.Error(t, err)
	assert.Equal(t, 2, gw.posts)
}
