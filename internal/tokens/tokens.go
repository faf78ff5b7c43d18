package tokens

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	AccessTTL  = 30 * time.Minute
	RefreshTTL = 24 * time.Hour
)

var (
	ErrWrongAlgorithm = errors.New("unexpected signing method")
	ErrExpired        = errors.New("token expired")
	ErrBadSignature   = errors.New("invalid token signature")
	ErrInvalidToken   = errors.New("invalid token")
)

// Service signs and verifies the access/refresh token pair. Both tokens use
// the same secret and HS256 only; the algorithm is pinned again at verify
// time so a token signed under any other method is rejected outright.
type Service struct {
	Secret []byte

	// overridable in tests
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func New(secret []byte) *Service {
	return &Service{Secret: secret, AccessTTL: AccessTTL, RefreshTTL: RefreshTTL}
}

// IssuePair returns a fresh access/refresh pair for userID. The payload
// carries only the subject.
func (s *Service) IssuePair(userID uint) (access, refresh string, err error) {
	access, err = s.IssueAccess(userID)
	if err != nil {
		return "", "", err
	}
	refresh, err = s.IssueRefresh(userID)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (s *Service) IssueAccess(userID uint) (string, error) {
	return s.sign(userID, s.AccessTTL)
}

func (s *Service) IssueRefresh(userID uint) (string, error) {
	return s.sign(userID, s.RefreshTTL)
}

func (s *Service) sign(userID uint, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.Secret)
}

// Verify checks signature, algorithm and expiry, and returns the subject.
func (s *Service) Verify(raw string) (uint, error) {
	var claims jwt.RegisteredClaims
	tkn, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("%w: %v", ErrWrongAlgorithm, t.Header["alg"])
		}
		return s.Secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrWrongAlgorithm):
			return 0, ErrWrongAlgorithm
		case errors.Is(err, jwt.ErrTokenExpired):
			return 0, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return 0, ErrBadSignature
		default:
			return 0, ErrInvalidToken
		}
	}
	if !tkn.Valid {
		return 0, ErrInvalidToken
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return uint(id), nil
}
