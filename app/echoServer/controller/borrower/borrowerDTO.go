package borrower

type CreateBorrowerReq struct {
	Name  string `json:"name" validate:"required,max=255"`
	Email string `json:"email" validate:"required,email"`
}
