package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New generates a new ULID string. Used for S3 object key naming so media
// keys sort by upload time and never collide.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
