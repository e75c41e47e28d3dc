package crud

import (
	"strconv"

	"github.com/google/uuid"

	"github.com/openhelpdesk/helpdesk/internal/domain"
)

// KeyParser converts a path parameter into a resource's key type. Parse
// failures are validation errors (400), never not-found.
type KeyParser[ID comparable] func(string) (ID, error)

// UUIDKey parses UUID path parameters. It accepts the canonical textual form
// only; anything else is an "invalid id" validation error.
func UUIDKey(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, domain.NewAppError(domain.CodeValidation, "invalid id", err)
	}
	return id, nil
}

// IntKey parses integer path parameters for resources keyed by int.
func IntKey(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, domain.NewAppError(domain.CodeValidation, "invalid id", err)
	}
	return id, nil
}
