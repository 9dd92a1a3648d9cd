package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/frahmantamala/study-tracker/internal"
	coreuser "github.com/frahmantamala/study-tracker/internal/core/user"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the session payload. RegisteredClaims.ID carries the jti used for revocation.
type Claims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// SessionIssuer signs and verifies session tokens.
type SessionIssuer interface {
	Issue(u *coreuser.User) (string, *Claims, error)
	Validate(tokenString string) (*Claims, error)
}

type JWTSessionIssuer struct {
	Secret []byte
	MaxAge time.Duration
	now    func() time.Time
}

func NewJWTSessionIssuer(secret string, maxAge time.Duration) *JWTSessionIssuer {
	return &JWTSessionIssuer{
		Secret: []byte(secret),
		MaxAge: maxAge,
		now:    time.Now,
	}
}

func (j *JWTSessionIssuer) Issue(u *coreuser.User) (string, *Claims, error) {
	issuedAt := j.now()
	claims := &Claims{
		UserID: u.ID,
		Email:  u.Email,
		Name:   u.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   strconv.FormatInt(u.ID, 10),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(j.MaxAge)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.Secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, claims, nil
}

func (j *JWTSessionIssuer) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired
		}
		return nil, internal.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == 0 {
		return nil, internal.ErrInvalidToken
	}
	return claims, nil
}
