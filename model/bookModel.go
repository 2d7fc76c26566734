// model/book.go
package model

import "time"

// MaxIsbnDigits bounds externally supplied catalog numbers.
const MaxIsbnDigits = 13

type Book struct {
	ID        int64     `json:"id"`
	Isbn      int64     `json:"isbn"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}

type BookStatus string

const (
	BookAvailable BookStatus = "AVAILABLE"
	BookOnLoan    BookStatus = "ON_LOAN"
)
