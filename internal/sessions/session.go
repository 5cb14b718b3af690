package sessions

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Session is a reviewer's refresh session. Only the hash of the refresh
// token is stored.
type Session struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	RefreshHash string    `bson:"refreshHash" json:"refreshHash"`
	Sub         string    `bson:"sub" json:"sub"`
	ExpiresAt   time.Time `bson:"expiresAt" json:"expiresAt"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
