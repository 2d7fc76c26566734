package echoServer

import (
	"liblending/app/echoServer/controller/book"
	"liblending/app/echoServer/controller/borrower"
	"liblending/app/echoServer/controller/lending"

	"github.com/labstack/echo/v4"
)

type C struct {
	Book     *book.Controller
	Borrower *borrower.Controller
	Lending  *lending.Controller

	BearerToken      string
	BorrowRatePerMin int
}

func Register(e *echo.Echo, c C) {
	api := e.Group("/api", BearerAuth(c.BearerToken))

	// Borrowers
	api.POST("/borrowers", c.Borrower.Create)

	// Books
	api.POST("/books", c.Book.Create)
	api.GET("/books", c.Book.List)
	api.GET("/books/:id/status", c.Lending.Status)

	// Lending
	api.POST("/books/borrow", c.Lending.Borrow, BorrowRateLimiter(c.BorrowRatePerMin))
	api.PUT("/books/borrow/:id/return", c.Lending.Return)
	api.GET("/borrowers/:id/borrows", c.Lending.History)
}
