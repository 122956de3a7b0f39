package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Flash categories understood by the templates.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

// Flash is a one-shot notification shown on the next rendered page.
type Flash struct {
	Category string `json:"c"`
	Message  string `json:"m"`
}

// Session is the state carried in the signed cookie.
type Session struct {
	UserID  uint
	Flashes []Flash
}

// Empty reports whether the session carries nothing worth a cookie.
func (s Session) Empty() bool {
	return s.UserID == 0 && len(s.Flashes) == 0
}

type sessionClaims struct {
	Flashes []Flash `json:"fl,omitempty"`
	jwt.RegisteredClaims
}

// SessionCodec signs and verifies session cookies as HS256 JWTs.
type SessionCodec struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewSessionCodec(secret string, ttl time.Duration) *SessionCodec {
	return &SessionCodec{key: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL is the lifetime of an encoded session.
func (c *SessionCodec) TTL() time.Duration {
	return c.ttl
}

func (c *SessionCodec) Encode(s Session) (string, error) {
	now := c.now()
	claims := sessionClaims{
		Flashes: s.Flashes,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}
	if s.UserID != 0 {
		claims.Subject = strconv.FormatUint(uint64(s.UserID), 10)
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return signed, nil
}

// Decode verifies the signature and expiry of raw and returns its session.
func (c *SessionCodec) Decode(raw string) (Session, error) {
	var claims sessionClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (interface{}, error) {
		return c.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(c.now))
	if err != nil {
		return Session{}, fmt.Errorf("invalid session: %w", err)
	}
	if !token.Valid {
		return Session{}, errors.New("invalid session")
	}
	s := Session{Flashes: claims.Flashes}
	if claims.Subject != "" {
		id, err := strconv.ParseUint(claims.Subject, 10, 64)
		if err != nil {
			return Session{}, fmt.Errorf("invalid session subject: %w", err)
		}
		s.UserID = uint(id)
	}
	return s, nil
}
