package model

import "time"

// DefaultContainerName is the name of the container created on first start.
const DefaultContainerName = "Personal"

// Container is an isolated ledger namespace, one "book" of accounts and
// transactions. Exactly one container is the default and it cannot be deleted.
type Container struct {
	CreatedAt time.Time
	Name      string
	ID        int64
	IsDefault bool
}
