package works

import "github.com/google/uuid"

// IDProvider issues identifiers for newly inserted works.
type IDProvider interface {
	NewID() (ID, error)
}

type uuidProvider struct{}

// NewUUIDProvider constructs an IDProvider that issues UUIDv7 identifiers.
func NewUUIDProvider() IDProvider {
	return &uuidProvider{}
}

func (p *uuidProvider) NewID() (ID, error) {
	value, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return ID(value.String()), nil
}
