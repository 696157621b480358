package content

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// GateResult is the secret gate's verdict for a submitted content password.
type GateResult int

const (
	// NotPasswordProtected means a secret was submitted for content that has
	// no stored hash. Distinct from Rejected so callers can tell misuse from
	// a wrong password.
	NotPasswordProtected GateResult = iota
	Rejected
	Unlocked
)

// unlockTokenTTL bounds how long one interactive session keeps the body
// unlocked. The token is never persisted server-side; a fresh session
// re-prompts.
const unlockTokenTTL = 30 * time.Minute

// VerifySecret checks submitted against the stored hash for contentID.
// bcrypt's comparison is constant-time over the hash. No rate limiting here;
// callers wanting brute-force protection must add it in front.
func (s *Service) VerifySecret(ctx context.Context, contentID, submitted string) (GateResult, error) {
	var secretHash string
	err := s.db.QueryRow(ctx, `
		SELECT COALESCE(password,'') FROM contents WHERE id=$1
	`, contentID).Scan(&secretHash)
	if err != nil {
		return Rejected, err
	}

	if secretHash == "" {
		return NotPasswordProtected, nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(secretHash), []byte(submitted)); err != nil {
		return Rejected, nil
	}
	return Unlocked, nil
}

type unlockClaims struct {
	ContentID string `json:"content_id"`
	jwt.RegisteredClaims
}

// IssueUnlockToken signs a short-lived token scoped to one content id. The
// client echoes it on the protected render path; it is not a durable
// credential and nothing about it is stored.
func (s *Service) IssueUnlockToken(contentID string) (string, error) {
	claims := unlockClaims{
		ContentID: contentID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(unlockTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.unlockSecret)
}

// CheckUnlockToken reports whether token is a valid unlock for contentID.
func (s *Service) CheckUnlockToken(token, contentID string) bool {
	parsed, err := jwt.ParseWithClaims(token, &unlockClaims{}, func(_ *jwt.Token) (interface{}, error) {
		return s.unlockSecret, nil
	})
	if err != nil {
		return false
	}
	claims, ok := parsed.Claims.(*unlockClaims)
	if !ok || !parsed.Valid {
		return false
	}
	return claims.ContentID == contentID
}
