package lending

type BorrowReq struct {
	BookID     int64 `json:"book_id" validate:"required,gt=0"`
	BorrowerID int64 `json:"borrower_id" validate:"required,gt=0"`
}
