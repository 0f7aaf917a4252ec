package domain

import "github.com/google/uuid"

// Entity is implemented by every persistable domain object. The identifier is
// assigned by the caller before the entity is staged and never changes.
type Entity interface {
	EntityID() uuid.UUID
}
