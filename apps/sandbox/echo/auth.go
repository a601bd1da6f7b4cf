package echoapi

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/placement/core"
	"github.com/trezcool/placement/core/session"
	inmemdb "github.com/trezcool/placement/storage/inmem"
)

const contextClaimsKey = "claims"

var nowFunc = time.Now // mockable

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.RegisteredClaims
	Name  string       `json:"name,omitempty"`
	Email string       `json:"email,omitempty"`
	Role  session.Role `json:"role,omitempty"`
}

func (c Claims) User() session.User {
	return session.User{ID: c.Subject, Name: c.Name, Email: c.Email, Role: c.Role}
}

func GetUserClaims(usr session.User, conf *core.Config) *Claims {
	now := nowFunc()
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    conf.AppName,
			Subject:   usr.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(conf.Sandbox.JWTExpirationDelta)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Name:  usr.Name,
		Email: usr.Email,
		Role:  usr.Role,
	}
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(claims *Claims, secretKey string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString([]byte(secretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func authenticate(email, pwd string, db *inmemdb.DB) (inmemdb.Account, error) {
	acc, err := db.GetAccountByEmail(email)
	if err != nil {
		if errors.Cause(err) == inmemdb.ErrNotFound {
			return inmemdb.Account{}, errInvalidCredentials
		}
		return inmemdb.Account{}, errors.Wrap(err, "finding account by email")
	}
	if err = acc.CheckPassword(pwd); err != nil {
		return inmemdb.Account{}, errInvalidCredentials
	}
	return acc, nil
}

// jwtMiddleware verifies the bearer token and stores its Claims in the context.
func jwtMiddleware(secretKey []byte) echo.MiddlewareFunc {
	keyFunc := func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secretKey, nil
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			auth := ctx.Request().Header.Get(echo.HeaderAuthorization)
			raw := strings.TrimPrefix(auth, "Bearer ")
			if auth == "" || raw == auth || raw == "" {
				return errMissingToken
			}

			claims := new(Claims)
			token, err := jwt.ParseWithClaims(raw, claims, keyFunc)
			if err != nil || !token.Valid {
				return errInvalidToken
			}
			ctx.Set(contextClaimsKey, claims)
			return next(ctx)
		}
	}
}

// roleMiddleware only lets users holding one of roles through.
func roleMiddleware(roles ...session.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.User().HasRole(roles...) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if claims, ok := ctx.Get(contextClaimsKey).(*Claims); ok {
		return *claims, nil
	}
	return Claims{}, errUnauthorized
}
