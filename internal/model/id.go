package model

import (
	"github.com/google/uuid"
)

// importNamespace scopes the deterministic ids of bulk-imported certificates.
var importNamespace = uuid.MustParse("6f1c2a8e-5d3b-4e7f-9a10-2b4c6d8e0f12")

// NewID generates a UUIDv7 string for application-owned entities.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// ImportID derives a stable certificate id from a manifest row, so importing
// the same manifest again replaces rows instead of duplicating them.
func ImportID(participantName, originalFilename string) string {
	key := NormalizeName(participantName) + "\x00" + NormalizeName(originalFilename)
	return uuid.NewSHA1(importNamespace, []byte(key)).String()
}
