package borrowerrepo

import (
	"context"
	"database/sql"

	"liblending/model"
)

type Repo interface {
	Create(ctx context.Context, b *model.Borrower) error
	Exists(ctx context.Context, id int64) (bool, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

// Create inserts the borrower and fills in id/created_at. A duplicate
// email surfaces as a pg unique violation for the caller to map.
func (r *repo) Create(ctx context.Context, b *model.Borrower) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO borrowers(name, email)
		VALUES ($1,$2)
		RETURNING id, created_at`,
		b.Name, b.Email,
	).Scan(&b.ID, &b.CreatedAt)
}

func (r *repo) Exists(ctx context.Context, id int64) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM borrowers WHERE id=$1)`
	var ok bool
	err := r.db.QueryRowContext(ctx, q, id).Scan(&ok)
	return ok, err
}
