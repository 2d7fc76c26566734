package booksvc

import (
	"context"
	"errors"
	"strings"

	repo "liblending/repository/book"

	"liblending/model"
)

type ErrCode string

const (
	ErrBadInput     ErrCode = "BAD_INPUT"
	ErrIsbnMismatch ErrCode = "ISBN_MISMATCH"
)

type codedError struct {
	code ErrCode
	msg  string
}

func (e codedError) Error() string { return e.msg }
func (e codedError) Code() ErrCode { return e.code }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type Book = model.Book

// Page is one page of the catalog listing.
type Page struct {
	Data    []Book `json:"data"`
	Page    int    `json:"page"`
	PerPage int    `json:"per_page"`
	Total   int64  `json:"total"`
}

type Repo interface {
	Create(ctx context.Context, isbn int64, title, author string) (*Book, error)
	List(ctx context.Context, page int) ([]Book, int64, error)
}

type Service interface {
	Create(ctx context.Context, isbn int64, title, author string) (*Book, error)
	List(ctx context.Context, page int) (*Page, error)
}

type service struct{ r Repo }

func New(r Repo) Service { return &service{r: r} }

func (s *service) Create(ctx context.Context, isbn int64, title, author string) (*Book, error) {
	title = strings.TrimSpace(title)
	author = strings.TrimSpace(author)
	switch {
	case isbn <= 0:
		return nil, codedError{ErrBadInput, "isbn must be a positive integer"}
	case digits(isbn) > model.MaxIsbnDigits:
		return nil, codedError{ErrBadInput, "isbn must have at most 13 digits"}
	case title == "":
		return nil, codedError{ErrBadInput, "title must not be empty"}
	case author == "":
		return nil, codedError{ErrBadInput, "author must not be empty"}
	}

	b, err := s.r.Create(ctx, isbn, title, author)
	if err != nil {
		var mm *repo.MismatchError
		if errors.As(err, &mm) {
			return nil, codedError{ErrIsbnMismatch, mm.Error()}
		}
		return nil, err
	}
	return b, nil
}

func (s *service) List(ctx context.Context, page int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	rows, total, err := s.r.List(ctx, page)
	if err != nil {
		return nil, err
	}
	return &Page{Data: rows, Page: page, PerPage: repo.PageSize, Total: total}, nil
}

func digits(n int64) int {
	d := 0
	for ; n > 0; n /= 10 {
		d++
	}
	return d
}
