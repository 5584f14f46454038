package jwt

import (
	"sync"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/yuadm/first-step-greet/internal/domain/user"
)

const sseTokenTTL = 5 * time.Minute

type Service interface {
	GenerateAccessToken(u user.User) (token string, expiresAt int64, err error)
	GenerateSSEToken(userID string) (token string, expiresIn int, err error)
	ValidateSSEToken(tokenString string) (userID string, err error)
	JWTAuth() *jwtauth.JWTAuth
	RevokeToken(token string, expiresAt int64)
	IsTokenRevoked(token string) bool
}

type JWTService struct {
	accessTokenTTL time.Duration
	tokenAuth      *jwtauth.JWTAuth
	revokedTokens  map[string]int64
	mu             sync.RWMutex
	now            func() time.Time
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenTTL time.Duration) *JWTService {
	return &JWTService{
		accessTokenTTL: accessTokenTTL,
		tokenAuth:      jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		revokedTokens:  make(map[string]int64),
		now:            time.Now,
	}
}

func (j *JWTService) GenerateAccessToken(u user.User) (token string, expiresAt int64, err error) {
	expiresAt = j.now().Add(j.accessTokenTTL).Unix()

	claims := map[string]interface{}{
		"user_id":   u.ID,
		"email":     u.Email,
		"branch_id": returnValueOrNil(u.BranchID),
		"role":      string(u.Role),
		"type":      "access",
		"exp":       expiresAt,
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

// RevokeToken blocks token until expiresAt. Expired entries are pruned on
// each call.
func (j *JWTService) RevokeToken(token string, expiresAt int64) {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.now().Unix()
	for t, exp := range j.revokedTokens {
		if exp < now {
			delete(j.revokedTokens, t)
		}
	}
	j.revokedTokens[token] = expiresAt
}

func (j *JWTService) IsTokenRevoked(token string) bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	_, revoked := j.revokedTokens[token]
	return revoked
}

func returnValueOrNil(value *string) interface{} {
	if value == nil {
		return nil
	}
	return *value
}

// GenerateSSEToken generates a short-lived token for EventSource connections,
// which cannot send an Authorization header
func (j *JWTService) GenerateSSEToken(userID string) (token string, expiresIn int, err error) {
	expiresAt := j.now().Add(sseTokenTTL).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"user_id": userID,
		"type":    "sse",
		"exp":     expiresAt,
	})
	if err != nil {
		return "", 0, err
	}

	return tokenString, int(sseTokenTTL.Seconds()), nil
}

// ValidateSSEToken validates an SSE token and returns the user ID
func (j *JWTService) ValidateSSEToken(tokenString string) (userID string, err error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return "", err
	}

	tokenType, ok := token.Get("type")
	if !ok || tokenType != "sse" {
		return "", jwt.ErrInvalidJWT()
	}

	userIDVal, ok := token.Get("user_id")
	if !ok {
		return "", jwt.ErrInvalidJWT()
	}

	userID, ok = userIDVal.(string)
	if !ok || userID == "" {
		return "", jwt.ErrInvalidJWT()
	}

	return userID, nil
}

var _ Service = (*JWTService)(nil)
