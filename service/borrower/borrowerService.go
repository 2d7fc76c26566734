package borrowersvc

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"liblending/model"
	borrowerrepo "liblending/repository/borrower"
)

var (
	ErrEmailTaken = errors.New("email already registered")
	ErrBadInput   = errors.New("bad input")
)

type Service interface {
	Create(ctx context.Context, name, email string) (*model.Borrower, error)
}

type service struct{ br borrowerrepo.Repo }

func New(br borrowerrepo.Repo) Service { return &service{br} }

func (s *service) Create(ctx context.Context, name, email string) (*model.Borrower, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" {
		return nil, ErrBadInput
	}

	b := &model.Borrower{Name: name, Email: email}
	if err := s.br.Create(ctx, b); err != nil {
		if derr := mapDuplicateErr(err); derr != nil {
			return nil, derr
		}
		return nil, err
	}
	return b, nil
}

func mapDuplicateErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		cn := strings.ToLower(pgErr.ConstraintName)
		msg := strings.ToLower(pgErr.Message)
		if strings.Contains(cn, "borrowers_email") || strings.Contains(msg, "email") {
			return ErrEmailTaken
		}
		return ErrBadInput
	}
	return nil
}
