package session

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/placement/core"
)

var refTime = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{Subject: "u1"}
	if !exp.IsZero() {
		claims.ExpiresAt = jwt.NewNumericDate(exp)
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestSession_Expired(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{name: "future exp", token: signedToken(t, refTime.Add(time.Hour)), want: false},
		{name: "past exp", token: signedToken(t, refTime.Add(-time.Second)), want: true},
		{name: "no exp", token: signedToken(t, time.Time{}), want: false},
		{name: "garbage", token: "not.a.jwt", want: true},
		{name: "empty", token: "", want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (Session{Token: tt.token}).Expired(refTime); got != tt.want {
				t.Errorf("Expired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGuard_Require(t *testing.T) {
	nowFunc = func() time.Time { return refTime }
	defer func() { nowFunc = time.Now }()

	store := NewMemoryStore()
	guard := NewGuard(store)

	_, err := guard.Require()
	assert.Equal(t, ErrNotAuthenticated, err)
	assert.Empty(t, guard.Token())

	mentor := Session{Token: signedToken(t, refTime.Add(time.Hour)), User: User{ID: "m1", Role: RoleIndustryMentor}}
	require.NoError(t, store.Save(mentor))

	tests := []struct {
		name    string
		roles   []Role
		wantErr error
	}{
		{name: "any role", roles: nil},
		{name: "mentor roles", roles: MentorRoles},
		{name: "student only", roles: []Role{RoleStudent}, wantErr: ErrForbidden},
		{name: "coordinator only", roles: []Role{RoleCoordinator}, wantErr: ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := guard.Require(tt.roles...)
			if err != tt.wantErr {
				t.Errorf("Require() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				assert.Equal(t, "m1", s.User.ID)
			}
		})
	}
	assert.Equal(t, mentor.Token, guard.Token())

	// expired sessions are rejected and cleared
	nowFunc = func() time.Time { return refTime.Add(2 * time.Hour) }
	_, err = guard.Require(RoleIndustryMentor)
	assert.Equal(t, ErrNotAuthenticated, errors.Cause(err))
	_, err = store.Load()
	assert.Equal(t, ErrNoSession, err)
}

type fakeGateway struct {
	calls int
}

func (gw *fakeGateway) Login(_ context.Context, creds Credentials) (Session, error) {
	gw.calls++
	if creds.Password != "secret" {
		return Session{}, core.NewAPIError(401, "invalid credentials")
	}
	return Session{Token: "tok", User: User{ID: "s1", Email: creds.Email, Role: RoleStudent}}, nil
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{}
	store := NewMemoryStore()
	svc := NewService(gw, store, core.NewValidator(validator.New(), core.NewTranslator()))

	_, err := svc.Login(ctx, "not-an-email", "secret")
	var vErr *core.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, 0, gw.calls)

	_, err = svc.Login(ctx, "s1@uni.test", "wrong")
	assert.Equal(t, "invalid credentials", core.UserMessage(err, ""))
	_, err = store.Load()
	assert.Equal(t, ErrNoSession, err)

	s, err := svc.Login(ctx, " S1@Uni.test ", "secret")
	require.NoError(t, err)
	assert.Equal(t, "s1@uni.test", s.User.Email)
	stored, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, s, stored)

	require.NoError(t, svc.Logout())
	_, err = store.Load()
	assert.Equal(t, ErrNoSession, err)
}
