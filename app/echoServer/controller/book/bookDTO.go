package book

type CreateBookReq struct {
	Isbn   int64  `json:"isbn" validate:"required,gt=0"`
	Title  string `json:"title" validate:"required,max=255"`
	Author string `json:"author" validate:"required,max=255"`
}
