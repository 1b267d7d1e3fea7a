package upload

import (
	"github.com/dmitrijs2005/kbloader/internal/archive"
	"github.com/google/uuid"
)

// KeyPrefix is the namespace every published blob lives under.
const KeyPrefix = "knowledge_base"

// NewRemoteKey returns a fresh key for the entry at path. Two calls never
// return the same key, so a retried entry is stored under a new name.
//
// Keys are not checked for existence in the blob store.
func NewRemoteKey(path string) string {
	return KeyPrefix + "/" + uuid.NewString() + "/" + archive.Base(path)
}
