package member

import "context"

type Repository interface {
	// Create inserts m and returns it with its generated id. Uniqueness
	// violations surface as ErrDuplicateEmail or ErrDuplicateUserName.
	Create(ctx context.Context, m Member) (Member, error)
	GetByID(ctx context.Context, id int64) (Member, bool, error)
	GetByEmail(ctx context.Context, email string) (Member, bool, error)
	// List returns one page ordered by id together with the total match count.
	List(ctx context.Context, filter Filter) ([]Member, int, error)
	ListByIDs(ctx context.Context, ids []int64) ([]Member, error)
	// Update persists every mutable column of m. The bool reports whether the row existed.
	Update(ctx context.Context, m Member) (Member, bool, error)
	// Delete removes the member's matches, then challenges, then the member in
	// one transaction. The bool reports whether the member existed.
	Delete(ctx context.Context, id int64) (bool, error)
}
