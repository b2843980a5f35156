package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/keyflow/internal/errors"
)

// SessionLifetime is how long an issued session token stays valid
const SessionLifetime = 12 * time.Hour

var (
	// ErrTokenExpired means the token was signed by a configured key but has expired
	ErrTokenExpired = errors.New("session token expired")
	// ErrTokenMalformed means the token could not be decoded or lacks required claims
	ErrTokenMalformed = errors.New("session token malformed")
	// ErrUnknownSigner means no configured key produced the token's signature
	ErrUnknownSigner = errors.New("session token not signed by a known key")
)

// SessionClaims identify the user a session token was issued to
type SessionClaims struct {
	Subject   uuid.UUID
	ExpiresAt time.Time
}

// SessionSigner issues and verifies stateless session tokens.
//
// The first signer signs; every signer verifies, in order. Rotating a key means
// prepending the new secret and keeping the old ones until the tokens they
// signed have expired.
type SessionSigner struct {
	signers  []Signer
	lifetime time.Duration
	now      func() time.Time
}

func NewSessionSigner(secrets []string) (*SessionSigner, error) {
	if len(secrets) == 0 {
		return nil, apperrors.Config("no session signing keys configured")
	}
	signers := make([]Signer, 0, len(secrets))
	for _, secret := range secrets {
		signers = append(signers, NewHMACSigner(secret))
	}
	return &SessionSigner{
		signers:  signers,
		lifetime: SessionLifetime,
		now:      time.Now,
	}, nil
}

// WithClock replaces the time source; used by tests
func (s *SessionSigner) WithClock(now func() time.Time) *SessionSigner {
	s.now = now
	return s
}

// Issue signs a token for userID expiring SessionLifetime from now
func (s *SessionSigner) Issue(userID uuid.UUID) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		ExpiresAt: jwt.NewNumericDate(s.now().Add(s.lifetime)),
	}
	signed, err := s.signers[0].Sign(claims)
	if err != nil {
		return "", apperrors.Internal(err)
	}
	return signed, nil
}

type verifyOutcome int

const (
	outcomeValid verifyOutcome = iota
	// outcomeBadSignature moves on to the next key
	outcomeBadSignature
	// outcomeRejected stops verification
	outcomeRejected
)

// Verify validates token against each key in order. A signature mismatch moves
// on to the next key; expiry or malformation stop immediately. When no key
// matches, the error wraps ErrUnknownSigner.
func (s *SessionSigner) Verify(token string) (*SessionClaims, error) {
	var lastErr error
	for _, signer := range s.signers {
		claims, outcome, err := s.verifyWith(signer, token)
		switch outcome {
		case outcomeValid:
			return claims, nil
		case outcomeBadSignature:
			lastErr = err
		default:
			return nil, err
		}
	}
	if lastErr == nil {
		return nil, ErrUnknownSigner
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownSigner, lastErr)
}

func (s *SessionSigner) verifyWith(signer Signer, token string) (*SessionClaims, verifyOutcome, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, signer.GetVerificationKey,
		jwt.WithValidMethods([]string{signer.GetSigningMethod().Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return nil, outcomeBadSignature, err
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, outcomeRejected, fmt.Errorf("%w: %v", ErrTokenExpired, err)
	default:
		return nil, outcomeRejected, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}

	subject, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, outcomeRejected, fmt.Errorf("%w: subject: %v", ErrTokenMalformed, err)
	}
	return &SessionClaims{Subject: subject, ExpiresAt: claims.ExpiresAt.Time}, outcomeValid, nil
}
