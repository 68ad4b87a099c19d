package domain

import "context"

// Repositories groups the repositories bound to one unit of work
type Repositories struct {
	Products   ProductRepository
	Reviews    ReviewRepository
	Categories CategoryRepository
	Users      UserRepository
}

// Store hands out repositories, either bound to the connection pool or to a
// single transaction
type Store interface {
	// Repos returns repositories that run each statement on its own
	Repos() Repositories

	// WithTx runs fn with repositories bound to one transaction, committing
	// when fn returns nil and rolling back otherwise
	WithTx(ctx context.Context, fn func(repos Repositories) error) error
}
