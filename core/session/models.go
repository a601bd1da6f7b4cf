package session

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Roles
type Role string

const (
	RoleStudent        Role = "student"
	RoleAcademicMentor Role = "academic_mentor"
	RoleIndustryMentor Role = "industry_mentor"
	RoleCoordinator    Role = "coordinator"
)

var (
	Roles       = []Role{RoleStudent, RoleAcademicMentor, RoleIndustryMentor, RoleCoordinator}
	MentorRoles = []Role{RoleAcademicMentor, RoleIndustryMentor}
)

func (r Role) Valid() bool {
	for _, role := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

func (u User) HasRole(roles ...Role) bool {
	for _, role := range roles {
		if u.Role == role {
			return true
		}
	}
	return false
}

func (u User) IsStudent() bool     { return u.Role == RoleStudent }
func (u User) IsMentor() bool      { return u.HasRole(MentorRoles...) }
func (u User) IsCoordinator() bool { return u.Role == RoleCoordinator }

// Session is what a successful login returns and what the client keeps between runs.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// ExpiresAt reads the `exp` claim of the bearer token without verifying it;
// the server stays the authority on validity.
func (s Session) ExpiresAt() (time.Time, bool) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.Token, &claims); err != nil || claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// Expired reports whether the session can no longer be used at t.
// A token that does not parse is treated as expired.
func (s Session) Expired(t time.Time) bool {
	if s.Token == "" {
		return true
	}
	if _, _, err := jwt.NewParser().ParseUnverified(s.Token, &jwt.RegisteredClaims{}); err != nil {
		return true
	}
	exp, ok := s.ExpiresAt()
	return ok && !t.Before(exp)
}

// Credentials is the login form.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
