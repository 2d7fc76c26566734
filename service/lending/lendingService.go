package lending

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"liblending/model"
	brepo "liblending/repository/borrow"
)

// errors used by controllers

type ErrCode string

const (
	ErrBookNotFound     ErrCode = "BOOK_NOT_FOUND"
	ErrBorrowerNotFound ErrCode = "BORROWER_NOT_FOUND"
	ErrRecordNotFound   ErrCode = "RECORD_NOT_FOUND"
	ErrAlreadyBorrowed  ErrCode = "ALREADY_BORROWED"
	ErrAlreadyReturned  ErrCode = "ALREADY_RETURNED"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// HistoryRow = repository shape
type HistoryRow = brepo.HistoryRow

type Repo interface {
	Borrow(ctx context.Context, bookID, borrowerID int64) (*model.BorrowRecord, error)
	Return(ctx context.Context, recordID int64) (*model.BorrowRecord, error)
	CurrentStatus(ctx context.Context, bookID int64) (model.BookStatus, error)
	ListByBorrower(ctx context.Context, borrowerID int64) ([]HistoryRow, error)
}

type Service interface {
	// Borrow opens a loan for the book. At most one loan per book may be
	// open; a concurrent or earlier borrower wins and everyone else gets
	// ErrAlreadyBorrowed.
	Borrow(ctx context.Context, bookID, borrowerID int64) (*model.BorrowRecord, error)

	// Return closes the loan identified by record id.
	Return(ctx context.Context, recordID int64) (*model.BorrowRecord, error)

	// Status reports whether the book is AVAILABLE or ON_LOAN.
	Status(ctx context.Context, bookID int64) (model.BookStatus, error)

	// History lists a borrower's loans, newest first.
	History(ctx context.Context, borrowerID int64) ([]HistoryRow, error)
}

type service struct{ r Repo }

func New(r Repo) Service { return &service{r: r} }

func (s *service) Borrow(ctx context.Context, bookID, borrowerID int64) (*model.BorrowRecord, error) {
	rec, err := s.r.Borrow(ctx, bookID, borrowerID)
	if retryable(err) {
		rec, err = s.r.Borrow(ctx, bookID, borrowerID)
	}
	if err != nil {
		return nil, mapLedgerErr(err)
	}
	return rec, nil
}

func (s *service) Return(ctx context.Context, recordID int64) (*model.BorrowRecord, error) {
	rec, err := s.r.Return(ctx, recordID)
	if retryable(err) {
		rec, err = s.r.Return(ctx, recordID)
	}
	if err != nil {
		return nil, mapLedgerErr(err)
	}
	return rec, nil
}

func (s *service) Status(ctx context.Context, bookID int64) (model.BookStatus, error) {
	st, err := s.r.CurrentStatus(ctx, bookID)
	if err != nil {
		return "", mapLedgerErr(err)
	}
	return st, nil
}

func (s *service) History(ctx context.Context, borrowerID int64) ([]HistoryRow, error) {
	return s.r.ListByBorrower(ctx, borrowerID)
}

func mapLedgerErr(err error) error {
	switch {
	case errors.Is(err, brepo.ErrBookNotFound):
		return makeErr(ErrBookNotFound)
	case errors.Is(err, brepo.ErrBorrowerNotFound):
		return makeErr(ErrBorrowerNotFound)
	case errors.Is(err, brepo.ErrRecordNotFound):
		return makeErr(ErrRecordNotFound)
	case errors.Is(err, brepo.ErrBookBorrowed):
		return makeErr(ErrAlreadyBorrowed)
	case errors.Is(err, brepo.ErrAlreadyReturned):
		return makeErr(ErrAlreadyReturned)
	}
	return err
}

// retryable reports transient storage failures worth one more attempt.
// Domain outcomes are never retried.
func retryable(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case pgerrcode.SerializationFailure,
		pgerrcode.DeadlockDetected,
		pgerrcode.LockNotAvailable:
		return true
	}
	return false
}
