package echoapi_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/placement/apps/sandbox/echo"
	"github.com/trezcool/placement/core/session"
)

func TestServer_home(t *testing.T) {
	sb := setup(t)
	req, rec := newRequest(http.MethodGet, "/")
	sb.App.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Placement sandbox API", rec.Body.String())
}

func Test_sandboxAPI_login(t *testing.T) {
	sb := setup(t)
	fx := sb.Fixtures
	path := "/api/auth/login"
	creds := func(email, pwd string) []byte {
		return marshalObj(t, session.Credentials{Email: email, Password: pwd})
	}

	tests := []httpTest{
		{
			name: "invalid email", method: http.MethodPost, path: path, body: creds("nope", fx.Password),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, httpErr{Message: "email: email must be a valid email address", Fields: map[string]string{"email": "email must be a valid email address"}}),
		},
		{
			name: "unknown email", method: http.MethodPost, path: path, body: creds("ghost@placement.test", fx.Password),
			wantCode: http.StatusUnauthorized, wantData: marshalObj(t, httpErr{Message: "invalid credentials"}),
		},
		{
			name: "wrong password", method: http.MethodPost, path: path, body: creds(fx.Student.Email, "wrong"),
			wantCode: http.StatusUnauthorized, wantData: marshalObj(t, httpErr{Message: "invalid credentials"}),
		},
		{
			name: "malformed body", method: http.MethodPost, path: path, body: []byte("{"),
			wantCode: http.StatusBadRequest,
		},
	}
	runHTTPTests(t, sb, tests)

	t.Run("success", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, path, creds("  STUDENT@placement.test ", fx.Password))
		sb.App.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var s session.Session
		unmarshalObj(t, rec, &s)
		assert.Equal(t, fx.Student.User, s.User)
		assert.NotEmpty(t, s.Token)
		assert.False(t, s.Expired(time.Now()))

		exp, ok := s.ExpiresAt()
		require.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(sb.Conf.Sandbox.JWTExpirationDelta), exp, time.Minute)
	})
}

func Test_jwtMiddleware(t *testing.T) {
	sb := setup(t)
	fx := sb.Fixtures

	expired := GetUserClaims(fx.Student.User, sb.Conf)
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
	expiredToken, err := GenerateToken(expired, sb.Conf.Sandbox.SecretKey)
	require.NoError(t, err)

	forged, err := GenerateToken(GetUserClaims(fx.Coordinator.User, sb.Conf), "not-the-secret")
	require.NoError(t, err)

	invalid := marshalObj(t, httpErr{Message: "invalid or expired jwt"})
	tests := []httpTest{
		{name: "missing token", path: "/api/logbooks/pending", wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errMissingToken)},
		{name: "expired token", path: "/api/logbooks/pending", token: expiredToken, wantCode: http.StatusUnauthorized, wantData: invalid},
		{name: "forged token", path: "/api/logbooks/pending", token: forged, wantCode: http.StatusUnauthorized, wantData: invalid},
		{name: "garbage token", path: "/api/logbooks/pending", token: "a.b.c", wantCode: http.StatusUnauthorized, wantData: invalid},
		{
			name: "role required", path: "/api/logbooks/pending", token: sb.Token(t, fx.Student),
			wantCode: http.StatusForbidden, wantData: marshalObj(t, httpErr{Message: "permission denied"}),
		},
		{name: "role granted", path: "/api/logbooks/pending", token: sb.Token(t, fx.Coordinator), wantCode: http.StatusOK, wantData: []byte("[]")},
	}
	runHTTPTests(t, sb, tests)
}
