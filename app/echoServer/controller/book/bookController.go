package book

import (
	"log/slog"
	"net/http"
	"strconv"

	booksvc "liblending/service/book"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc booksvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /api/books
//
// @Summary  Add a new book to the catalog
// @Tags     books
// @Accept   json
// @Produce  json
// @Param    body body CreateBookReq true "book payload"
// @Success  201 {object} model.Book
// @Failure  400 {object} echo.Map
// @Failure  409 {object} echo.Map "isbn conflicts with an existing entry"
// @Router   /api/books [post]
func (h *Controller) Create(c echo.Context) error {
	var req CreateBookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}

	b, err := h.Svc.Create(c.Request().Context(), req.Isbn, req.Title, req.Author)
	if err != nil {
		switch booksvc.Code(err) {
		case booksvc.ErrBadInput:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
		case booksvc.ErrIsbnMismatch:
			return c.JSON(http.StatusConflict, echo.Map{"message": err.Error()})
		default:
			h.Log.Error("book create error", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, b)
}

// GET /api/books?page=N
//
// @Summary  List catalog entries, 10 per page
// @Tags     books
// @Produce  json
// @Param    page query int false "1-based page number"
// @Success  200 {object} booksvc.Page
// @Router   /api/books [get]
func (h *Controller) List(c echo.Context) error {
	page := 1
	if raw := c.QueryParam("page"); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil || p < 1 {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid page"})
		}
		page = p
	}

	out, err := h.Svc.List(c.Request().Context(), page)
	if err != nil {
		h.Log.Error("book list error", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, out)
}
