// model/borrow.go
package model

import "time"

type BorrowStatus string

const (
	BorrowActive   BorrowStatus = "borrowed"
	BorrowReturned BorrowStatus = "returned"
)

type BorrowRecord struct {
	ID         int64        `json:"id"`
	BookID     int64        `json:"book_id"`
	BorrowerID int64        `json:"borrower_id"`
	Status     BorrowStatus `json:"status"`
	BorrowedAt time.Time    `json:"borrowed_at"`
	ReturnedAt *time.Time   `json:"returned_at,omitempty"`
}
