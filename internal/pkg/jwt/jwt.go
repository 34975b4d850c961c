package jwt

import (
	"context"
	"errors"
	"time"

	"github.com/cmlabs-hris/hris-report-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

var ErrInvalidToken = errors.New("invalid or expired token")

const (
	TokenTypeAccess = "access"
	TokenTypeSSE    = "sse"

	sseTokenTTL = 5 * time.Minute
)

type Service interface {
	JWTAuth() *jwtauth.JWTAuth
	GenerateAccessToken(p user.Principal, ttl time.Duration) (token string, expiresAt int64, err error)
	GenerateSSEToken(viewID string, p user.Principal) (token string, expiresIn int, err error)
	ValidateSSEToken(tokenString string, viewID string) (user.Principal, error)
}

type JWTService struct {
	tokenAuth *jwtauth.JWTAuth
}

func NewJWTService(secretKey string) Service {
	return &JWTService{
		tokenAuth: jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

// GenerateAccessToken issues a token carrying the claims this service reads.
// Tokens are normally issued by the identity provider; this is for tooling and tests.
func (j *JWTService) GenerateAccessToken(p user.Principal, ttl time.Duration) (token string, expiresAt int64, err error) {
	expiresAt = time.Now().Add(ttl).Unix()
	claims := principalClaims(p)
	claims["type"] = TokenTypeAccess
	claims["exp"] = expiresAt

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

// GenerateSSEToken generates a short-lived token bound to one view, for EventSource
// clients that cannot send an Authorization header
func (j *JWTService) GenerateSSEToken(viewID string, p user.Principal) (token string, expiresIn int, err error) {
	expiresIn = int(sseTokenTTL / time.Second)
	claims := principalClaims(p)
	claims["type"] = TokenTypeSSE
	claims["view_id"] = viewID
	claims["exp"] = time.Now().Add(sseTokenTTL).Unix()

	_, tokenString, err := j.tokenAuth.Encode(claims)
	if err != nil {
		return "", 0, err
	}
	return tokenString, expiresIn, nil
}

// ValidateSSEToken validates an SSE token for viewID and returns its principal
func (j *JWTService) ValidateSSEToken(tokenString string, viewID string) (user.Principal, error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return user.Principal{}, ErrInvalidToken
	}

	claims, err := token.AsMap(context.Background())
	if err != nil {
		return user.Principal{}, ErrInvalidToken
	}
	if tokenType, _ := claims["type"].(string); tokenType != TokenTypeSSE {
		return user.Principal{}, ErrInvalidToken
	}
	if boundView, _ := claims["view_id"].(string); boundView != viewID {
		return user.Principal{}, ErrInvalidToken
	}

	return PrincipalFromClaims(claims, "")
}

// PrincipalFromClaims reads role, employee_id and project_name from verified claims.
func PrincipalFromClaims(claims map[string]interface{}, bearer string) (user.Principal, error) {
	roleStr, _ := claims["role"].(string)
	role, ok := user.ParseRole(roleStr)
	if !ok {
		return user.Principal{}, user.ErrInvalidRole
	}

	p := user.Principal{Role: role, BearerToken: bearer}
	p.EmployeeID, _ = claims["employee_id"].(string)
	p.ProjectName, _ = claims["project_name"].(string)
	return p, nil
}

func principalClaims(p user.Principal) map[string]interface{} {
	claims := map[string]interface{}{
		"role": string(p.Role),
	}
	if p.EmployeeID != "" {
		claims["employee_id"] = p.EmployeeID
	}
	if p.ProjectName != "" {
		claims["project_name"] = p.ProjectName
	}
	return claims
}
