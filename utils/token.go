package utils

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"
)

// ErrInvalidToken is returned when a token fails signature, expiry or key checks
var ErrInvalidToken = errors.New("invalid token")

// ValueClaims carries a stored value bound to the key it was written under
type ValueClaims struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	jwt.StandardClaims
}

// Signer issues and verifies HS256 tokens wrapping stored values
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner returns a Signer for the given secret; tokens expire after ttl
func NewSigner(secret []byte, ttl time.Duration) *Signer {
	return &Signer{secret: secret, ttl: ttl, now: time.Now}
}

// Sign generates a token holding value for key
func (s *Signer) Sign(key, value string) (string, error) {
	now := s.now()
	claims := &ValueClaims{
		Key:   key,
		Value: value,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.ttl).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return tokenString, nil
}

// Parse verifies tokenString and returns the value it carries for key
func (s *Signer) Parse(key, tokenString string) (string, error) {
	claims := &ValueClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	if claims.Key != key {
		return "", ErrInvalidToken
	}
	return claims.Value, nil
}
