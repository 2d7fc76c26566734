package bookrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"liblending/model"
)

// PageSize is the fixed page size of the book listing.
const PageSize = 10

// MismatchError reports a create whose title/author disagree with the
// catalog entry already registered under the same isbn.
type MismatchError struct {
	Fields []string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("isbn already registered with different %s", strings.Join(e.Fields, ", "))
}

// CheckConsistency decides whether a candidate title/author pair is
// admissible next to an existing entry with the same isbn. A nil existing
// entry (first registration of the isbn) is trivially admissible.
// Comparison is exact and case-sensitive.
func CheckConsistency(existing *model.Book, title, author string) error {
	if existing == nil {
		return nil
	}
	var fields []string
	if existing.Title != title {
		fields = append(fields, "title")
	}
	if existing.Author != author {
		fields = append(fields, "author")
	}
	if len(fields) > 0 {
		return &MismatchError{Fields: fields}
	}
	return nil
}

type Repo interface {
	// Create inserts a new catalog entry. The isbn consistency check and
	// the insert run in one transaction under an advisory lock keyed by
	// isbn, so two concurrent creates of the same isbn serialize and the
	// loser sees the winner's row.
	Create(ctx context.Context, isbn int64, title, author string) (*model.Book, error)
	FindByIsbn(ctx context.Context, isbn int64) (*model.Book, error)
	Exists(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context, page int) ([]model.Book, int64, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) Create(ctx context.Context, isbn int64, title, author string) (b *model.Book, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// Serialize creates per isbn. A plain unique index cannot express
	// "same isbn implies same title/author", so the lock is the constraint.
	if _, err = tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, isbn); err != nil {
		return nil, err
	}

	existing, err := findByIsbn(ctx, tx, isbn)
	if err != nil {
		return nil, err
	}
	if err = CheckConsistency(existing, title, author); err != nil {
		return nil, err
	}

	const q = `
INSERT INTO books (isbn, title, author)
VALUES ($1,$2,$3)
RETURNING id, created_at`
	b = &model.Book{Isbn: isbn, Title: title, Author: author}
	if err = tx.QueryRowContext(ctx, q, isbn, title, author).Scan(&b.ID, &b.CreatedAt); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return b, nil
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func findByIsbn(ctx context.Context, q querier, isbn int64) (*model.Book, error) {
	const query = `
SELECT id, isbn, title, author, created_at
FROM books
WHERE isbn=$1
ORDER BY id
LIMIT 1`
	var b model.Book
	err := q.QueryRowContext(ctx, query, isbn).Scan(&b.ID, &b.Isbn, &b.Title, &b.Author, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repo) FindByIsbn(ctx context.Context, isbn int64) (*model.Book, error) {
	return findByIsbn(ctx, r.db, isbn)
}

func (r *repo) Exists(ctx context.Context, id int64) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM books WHERE id=$1)`
	var ok bool
	err := r.db.QueryRowContext(ctx, q, id).Scan(&ok)
	return ok, err
}

func (r *repo) List(ctx context.Context, page int) ([]model.Book, int64, error) {
	if page < 1 {
		page = 1
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books`).Scan(&total); err != nil {
		return nil, 0, err
	}

	const q = `
SELECT id, isbn, title, author, created_at
FROM books
ORDER BY id
LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, q, PageSize, (page-1)*PageSize)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []model.Book
	for rows.Next() {
		var b model.Book
		if err := rows.Scan(&b.ID, &b.Isbn, &b.Title, &b.Author, &b.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	return out, total, rows.Err()
}
