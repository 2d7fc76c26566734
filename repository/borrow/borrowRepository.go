// repository/borrow/repo.go
package borrowrepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"liblending/model"
)

// Domain outcomes of the ledger. Callers match with errors.Is.
var (
	ErrBookNotFound     = errors.New("book not found")
	ErrBorrowerNotFound = errors.New("borrower not found")
	ErrRecordNotFound   = errors.New("borrow record not found")
	ErrBookBorrowed     = errors.New("book currently borrowed")
	ErrAlreadyReturned  = errors.New("borrow record already returned")
)

// HistoryRow is one loan in a borrower's history.
type HistoryRow struct {
	RecordID   int64              `json:"record_id"`
	BookID     int64              `json:"book_id"`
	BookTitle  string             `json:"book_title"`
	Status     model.BorrowStatus `json:"status"`
	BorrowedAt time.Time          `json:"borrowed_at"`
	ReturnedAt *time.Time         `json:"returned_at,omitempty"`
}

type Repo interface {
	// Borrow atomically checks the book's current state and opens a new
	// record if it is available. Exactly one of N concurrent callers for
	// the same book succeeds; the rest get ErrBookBorrowed.
	Borrow(ctx context.Context, bookID, borrowerID int64) (*model.BorrowRecord, error)

	// Return atomically transitions the record borrowed -> returned.
	// A second return of the same record gets ErrAlreadyReturned.
	Return(ctx context.Context, recordID int64) (*model.BorrowRecord, error)

	// CurrentStatus derives availability from the latest record for the
	// book; there is no stored availability field.
	CurrentStatus(ctx context.Context, bookID int64) (model.BookStatus, error)

	ListByBorrower(ctx context.Context, borrowerID int64) ([]HistoryRow, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Borrow(ctx context.Context, bookID, borrowerID int64) (rec *model.BorrowRecord, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// Lock the book row so the read-decide-write below is indivisible per
	// book. Unrelated books never serialize against each other.
	if err = lockBook(ctx, tx, bookID); err != nil {
		return nil, err
	}

	var borrowerOK bool
	if err = tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM borrowers WHERE id=$1)`, borrowerID,
	).Scan(&borrowerOK); err != nil {
		return nil, err
	}
	if !borrowerOK {
		return nil, ErrBorrowerNotFound
	}

	status, found, err := latestStatus(ctx, tx, bookID)
	if err != nil {
		return nil, err
	}
	if found && status == model.BorrowActive {
		return nil, ErrBookBorrowed
	}

	const ins = `
		INSERT INTO borrow_records (book_id, borrower_id, status, borrowed_at)
		VALUES ($1, $2, 'borrowed', now())
		RETURNING id, borrowed_at`
	rec = &model.BorrowRecord{BookID: bookID, BorrowerID: borrowerID, Status: model.BorrowActive}
	if err = tx.QueryRowContext(ctx, ins, bookID, borrowerID).Scan(&rec.ID, &rec.BorrowedAt); err != nil {
		// The partial unique index (one open record per book) backstops
		// the row lock.
		if isUniqueViolation(err) {
			err = ErrBookBorrowed
		}
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *repo) Return(ctx context.Context, recordID int64) (rec *model.BorrowRecord, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const sel = `
		SELECT id, book_id, borrower_id, status, borrowed_at, returned_at
		FROM borrow_records
		WHERE id = $1
		FOR UPDATE`
	rec = &model.BorrowRecord{}
	err = tx.QueryRowContext(ctx, sel, recordID).Scan(
		&rec.ID, &rec.BookID, &rec.BorrowerID, &rec.Status, &rec.BorrowedAt, &rec.ReturnedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	if rec.Status == model.BorrowReturned {
		return nil, ErrAlreadyReturned
	}

	const upd = `
		UPDATE borrow_records
		SET status = 'returned',
			returned_at = now()
		WHERE id = $1
		RETURNING returned_at`
	var returnedAt time.Time
	if err = tx.QueryRowContext(ctx, upd, recordID).Scan(&returnedAt); err != nil {
		return nil, err
	}
	rec.Status = model.BorrowReturned
	rec.ReturnedAt = &returnedAt
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *repo) CurrentStatus(ctx context.Context, bookID int64) (model.BookStatus, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM books WHERE id=$1)`, bookID,
	).Scan(&exists); err != nil {
		return "", err
	}
	if !exists {
		return "", ErrBookNotFound
	}

	const q = `
		SELECT status
		FROM borrow_records
		WHERE book_id = $1
		ORDER BY borrowed_at DESC, id DESC
		LIMIT 1`
	var status model.BorrowStatus
	err := r.db.QueryRowContext(ctx, q, bookID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return model.BookAvailable, nil
	}
	if err != nil {
		return "", err
	}
	if status == model.BorrowActive {
		return model.BookOnLoan, nil
	}
	return model.BookAvailable, nil
}

func (r *repo) ListByBorrower(ctx context.Context, borrowerID int64) ([]HistoryRow, error) {
	const q = `
		SELECT
			r.id          AS record_id,
			r.book_id     AS book_id,
			b.title       AS book_title,
			r.status      AS status,
			r.borrowed_at AS borrowed_at,
			r.returned_at AS returned_at
		FROM borrow_records r
		JOIN books b ON b.id = r.book_id
		WHERE r.borrower_id = $1
		ORDER BY r.borrowed_at DESC, r.id DESC`
	rows, err := r.db.QueryContext(ctx, q, borrowerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HistoryRow
	for rows.Next() {
		var h HistoryRow
		if err := rows.Scan(
			&h.RecordID, &h.BookID, &h.BookTitle,
			&h.Status, &h.BorrowedAt, &h.ReturnedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func lockBook(ctx context.Context, tx *sql.Tx, bookID int64) error {
	const q = `
		SELECT id
		FROM books
		WHERE id = $1
		FOR UPDATE`
	var id int64
	err := tx.QueryRowContext(ctx, q, bookID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrBookNotFound
	}
	return err
}

func latestStatus(ctx context.Context, tx *sql.Tx, bookID int64) (model.BorrowStatus, bool, error) {
	const q = `
		SELECT status
		FROM borrow_records
		WHERE book_id = $1
		ORDER BY borrowed_at DESC, id DESC
		LIMIT 1`
	var status model.BorrowStatus
	err := tx.QueryRowContext(ctx, q, bookID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return status, true, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
