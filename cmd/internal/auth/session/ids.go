package session

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// newRecordID mints a ULID string for a refresh-token record.
// The timestamp component comes from the caller's clock, the entropy from crypto/rand.
func newRecordID(now time.Time) (string, error) {
	id, err := ulid.New(ulid.Timestamp(now), rand.Reader)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
