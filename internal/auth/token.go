package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/khanghh/clubhub/model"
)

type Claims struct {
	UserID uint       `json:"userId,string"`
	Email  string     `json:"email"`
	Role   model.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 session tokens. Verification is
// stateless: a token stays valid until it expires.
type TokenIssuer struct {
	secret []byte
	issuer string
	expiry time.Duration
	now    func() time.Time
}

func (t *TokenIssuer) Issue(user *model.User) (string, error) {
	now := t.now()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    t.issuer,
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

func (t *TokenIssuer) Verify(tokenStr string) (*Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now), jwt.WithIssuer(t.issuer), jwt.WithExpirationRequired())
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, ErrTokenExpired
	}
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if !claims.Role.Valid() {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

func NewTokenIssuer(secret string, issuer string, expiry time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(secret),
		issuer: issuer,
		expiry: expiry,
		now:    time.Now,
	}
}
