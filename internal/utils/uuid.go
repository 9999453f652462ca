package utils

import (
	"github.com/google/uuid"

	"github.com/MKhiriev/go-offline-sync/models"
)

// UUIDGenerator issues time-ordered ids for server records and temporary
// ids for records created while offline.
type UUIDGenerator struct {
}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

// Generate returns a UUIDv7, falling back to a random UUIDv4.
func (g *UUIDGenerator) Generate() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}

// TemporaryID returns an id the server will never issue.
func (g *UUIDGenerator) TemporaryID() string {
	return models.TempIDPrefix + g.Generate()
}
