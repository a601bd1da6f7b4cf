package echoapi

import (
	"github.com/pkg/errors"

	"github.com/trezcool/placement/core/session"
	inmemdb "github.com/trezcool/placement/storage/inmem"
)

// Fixtures are the accounts Seed creates, all sharing one password.
// Outsider is a student nobody mentors.
type Fixtures struct {
	Student        inmemdb.Account
	Outsider       inmemdb.Account
	AcademicMentor inmemdb.Account
	IndustryMentor inmemdb.Account
	Coordinator    inmemdb.Account
	Password       string
}

const (
	StudentID        = "stu-001"
	OutsiderID       = "stu-002"
	AcademicMentorID = "acm-001"
	IndustryMentorID = "ind-001"
	CoordinatorID    = "coo-001"
)

// Seed fills db with one account per role.
func Seed(db *inmemdb.DB, password string) (Fixtures, error) {
	fx := Fixtures{Password: password}
	seeds := []struct {
		dst *inmemdb.Account
		acc inmemdb.Account
	}{
		{&fx.AcademicMentor, inmemdb.Account{User: session.User{ID: AcademicMentorID, Name: "Grace Academic", Email: "academic@placement.test", Role: session.RoleAcademicMentor}}},
		{&fx.IndustryMentor, inmemdb.Account{User: session.User{ID: IndustryMentorID, Name: "Linus Industry", Email: "industry@placement.test", Role: session.RoleIndustryMentor}}},
		{&fx.Coordinator, inmemdb.Account{User: session.User{ID: CoordinatorID, Name: "Ada Coordinator", Email: "coordinator@placement.test", Role: session.RoleCoordinator}}},
		{&fx.Student, inmemdb.Account{
			User:             session.User{ID: StudentID, Name: "Sam Student", Email: "student@placement.test", Role: session.RoleStudent},
			AcademicMentorID: AcademicMentorID,
			IndustryMentorID: IndustryMentorID,
		}},
		{&fx.Outsider, inmemdb.Account{User: session.User{ID: OutsiderID, Name: "Olu Outsider", Email: "outsider@placement.test", Role: session.RoleStudent}}},
	}

	for _, s := range seeds {
		if err := s.acc.SetPassword(password); err != nil {
			return Fixtures{}, errors.Wrap(err, "hashing password")
		}
		acc, err := db.CreateAccount(s.acc)
		if err != nil {
			return Fixtures{}, errors.Wrapf(err, "creating %s", s.acc.Email)
		}
		*s.dst = acc
	}
	return fx, nil
}
