package archive

import (
	"crypto/md5"
	"encoding/hex"
)

// Digest returns the lowercase hex MD5 of b.
//
// The fingerprint is a display and verification field, not a security
// primitive; MD5 is used because the knowledge-base catalog stores it under
// an "md5" field.
func Digest(b []byte) string {
	sum := md5.Sum(b)
	return hex.EncodeToString(sum[:])
}
