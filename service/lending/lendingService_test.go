// service/lending/lending_service_test.go
package lending

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"liblending/model"
	brepo "liblending/repository/borrow"
)

type mockRepo struct {
	borrowFn func(ctx context.Context, bookID, borrowerID int64) (*model.BorrowRecord, error)
	returnFn func(ctx context.Context, recordID int64) (*model.BorrowRecord, error)
	statusFn func(ctx context.Context, bookID int64) (model.BookStatus, error)
	listFn   func(ctx context.Context, borrowerID int64) ([]HistoryRow, error)

	borrowCalls int
	returnCalls int
}

func (m *mockRepo) Borrow(ctx context.Context, bookID, borrowerID int64) (*model.BorrowRecord, error) {
	m.borrowCalls++
	return m.borrowFn(ctx, bookID, borrowerID)
}
func (m *mockRepo) Return(ctx context.Context, recordID int64) (*model.BorrowRecord, error) {
	m.returnCalls++
	return m.returnFn(ctx, recordID)
}
func (m *mockRepo) CurrentStatus(ctx context.Context, bookID int64) (model.BookStatus, error) {
	return m.statusFn(ctx, bookID)
}
func (m *mockRepo) ListByBorrower(ctx context.Context, borrowerID int64) ([]HistoryRow, error) {
	return m.listFn(ctx, borrowerID)
}

func TestBorrow_Success(t *testing.T) {
	ctx := context.Background()
	m := &mockRepo{
		borrowFn: func(ctx context.Context, bookID, borrowerID int64) (*model.BorrowRecord, error) {
			return &model.BorrowRecord{ID: 1, BookID: bookID, BorrowerID: borrowerID, Status: model.BorrowActive}, nil
		},
	}
	svc := New(m)

	rec, err := svc.Borrow(ctx, 1, 2)
	require.NoError(t, err)
	require.Equal(t, model.BorrowActive, rec.Status)
	require.Equal(t, 1, m.borrowCalls)
}

func TestBorrow_ErrorMapping(t *testing.T) {
	cases := []struct {
		repoErr error
		code    ErrCode
	}{
		{brepo.ErrBookNotFound, ErrBookNotFound},
		{brepo.ErrBorrowerNotFound, ErrBorrowerNotFound},
		{brepo.ErrBookBorrowed, ErrAlreadyBorrowed},
	}
	for _, tc := range cases {
		m := &mockRepo{
			borrowFn: func(ctx context.Context, bookID, borrowerID int64) (*model.BorrowRecord, error) {
				return nil, tc.repoErr
			},
		}
		svc := New(m)
		_, err := svc.Borrow(context.Background(), 1, 2)
		require.Equal(t, tc.code, Code(err))
		require.Equal(t, 1, m.borrowCalls, "domain outcomes must not be retried")
	}
}

func TestBorrow_RetriesOnceOnTransientFailure(t *testing.T) {
	ctx := context.Background()
	m := &mockRepo{}
	m.borrowFn = func(ctx context.Context, bookID, borrowerID int64) (*model.BorrowRecord, error) {
		if m.borrowCalls == 1 {
			return nil, &pgconn.PgError{Code: pgerrcode.SerializationFailure}
		}
		return &model.BorrowRecord{ID: 1, Status: model.BorrowActive}, nil
	}
	svc := New(m)

	rec, err := svc.Borrow(ctx, 1, 2)
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.Equal(t, 2, m.borrowCalls)
}

func TestBorrow_TransientFailureTwiceSurfaces(t *testing.T) {
	ctx := context.Background()
	m := &mockRepo{
		borrowFn: func(ctx context.Context, bookID, borrowerID int64) (*model.BorrowRecord, error) {
			return nil, &pgconn.PgError{Code: pgerrcode.DeadlockDetected}
		},
	}
	svc := New(m)

	_, err := svc.Borrow(ctx, 1, 2)
	require.Error(t, err)
	require.Equal(t, 2, m.borrowCalls, "exactly one retry")
	var pgErr *pgconn.PgError
	require.ErrorAs(t, err, &pgErr)
}

func TestBorrow_NoRetryOnPlainStorageError(t *testing.T) {
	ctx := context.Background()
	m := &mockRepo{
		borrowFn: func(ctx context.Context, bookID, borrowerID int64) (*model.BorrowRecord, error) {
			return nil, errors.New("connection reset")
		},
	}
	svc := New(m)

	_, err := svc.Borrow(ctx, 1, 2)
	require.Error(t, err)
	require.Equal(t, ErrCode(""), Code(err))
	require.Equal(t, 1, m.borrowCalls)
}

func TestReturn_Success(t *testing.T) {
	ctx := context.Background()
	m := &mockRepo{
		returnFn: func(ctx context.Context, recordID int64) (*model.BorrowRecord, error) {
			return &model.BorrowRecord{ID: recordID, Status: model.BorrowReturned}, nil
		},
	}
	svc := New(m)

	rec, err := svc.Return(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, model.BorrowReturned, rec.Status)
}

func TestReturn_ErrorMapping(t *testing.T) {
	cases := []struct {
		repoErr error
		code    ErrCode
	}{
		{brepo.ErrRecordNotFound, ErrRecordNotFound},
		{brepo.ErrAlreadyReturned, ErrAlreadyReturned},
	}
	for _, tc := range cases {
		m := &mockRepo{
			returnFn: func(ctx context.Context, recordID int64) (*model.BorrowRecord, error) {
				return nil, tc.repoErr
			},
		}
		svc := New(m)
		_, err := svc.Return(context.Background(), 7)
		require.Equal(t, tc.code, Code(err))
		require.Equal(t, 1, m.returnCalls)
	}
}

func TestStatus_Mapping(t *testing.T) {
	ctx := context.Background()
	m := &mockRepo{
		statusFn: func(ctx context.Context, bookID int64) (model.BookStatus, error) {
			return model.BookOnLoan, nil
		},
	}
	svc := New(m)

	st, err := svc.Status(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, model.BookOnLoan, st)

	m.statusFn = func(ctx context.Context, bookID int64) (model.BookStatus, error) {
		return "", brepo.ErrBookNotFound
	}
	_, err = svc.Status(ctx, 99)
	require.Equal(t, ErrBookNotFound, Code(err))
}

func TestCodeExtractor(t *testing.T) {
	require.Equal(t, ErrAlreadyBorrowed, Code(makeErr(ErrAlreadyBorrowed)))
	require.Equal(t, ErrCode(""), Code(errors.New("plain")))
	require.Equal(t, ErrCode(""), Code(nil))
}
