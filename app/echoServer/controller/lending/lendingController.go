package lending

import (
	"log/slog"
	"net/http"
	"strconv"

	ls "liblending/service/lending"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc ls.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /api/books/borrow
//
// @Summary  Borrow a book
// @Tags     lending
// @Accept   json
// @Produce  json
// @Param    body body BorrowReq true "borrow payload"
// @Success  201 {object} echo.Map
// @Failure  400 {object} echo.Map
// @Failure  404 {object} echo.Map "unknown book or borrower"
// @Failure  409 {object} echo.Map "book currently borrowed"
// @Router   /api/books/borrow [post]
func (h *Controller) Borrow(c echo.Context) error {
	var req BorrowReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}

	rec, err := h.Svc.Borrow(c.Request().Context(), req.BookID, req.BorrowerID)
	if err != nil {
		switch ls.Code(err) {
		case ls.ErrBookNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		case ls.ErrBorrowerNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "borrower not found"})
		case ls.ErrAlreadyBorrowed:
			return c.JSON(http.StatusConflict, echo.Map{"message": "book currently borrowed"})
		default:
			h.Log.Error("borrow error", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "book borrowed successfully",
		"data":    rec,
	})
}

// PUT /api/books/borrow/:id/return
//
// @Summary  Return a borrowed book
// @Tags     lending
// @Produce  json
// @Param    id path int true "borrow record id"
// @Success  200 {object} echo.Map
// @Failure  404 {object} echo.Map "unknown record"
// @Failure  409 {object} echo.Map "record already returned"
// @Router   /api/books/borrow/{id}/return [put]
func (h *Controller) Return(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}

	rec, err := h.Svc.Return(c.Request().Context(), id)
	if err != nil {
		switch ls.Code(err) {
		case ls.ErrRecordNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "borrow record not found"})
		case ls.ErrAlreadyReturned:
			return c.JSON(http.StatusConflict, echo.Map{"message": "book already returned"})
		default:
			h.Log.Error("return error", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "book returned successfully",
		"data":    rec,
	})
}

// GET /api/books/:id/status
func (h *Controller) Status(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}

	st, err := h.Svc.Status(c.Request().Context(), id)
	if err != nil {
		if ls.Code(err) == ls.ErrBookNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		}
		h.Log.Error("status error", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"book_id": id, "status": st})
}

// GET /api/borrowers/:id/borrows
func (h *Controller) History(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}

	rows, err := h.Svc.History(c.Request().Context(), id)
	if err != nil {
		h.Log.Error("history error", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}
