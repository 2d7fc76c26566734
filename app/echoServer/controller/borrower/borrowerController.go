package borrower

import (
	"errors"
	"log/slog"
	"net/http"

	borrowersvc "liblending/service/borrower"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc borrowersvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /api/borrowers
//
// @Summary  Register a borrower
// @Tags     borrowers
// @Accept   json
// @Produce  json
// @Param    body body CreateBorrowerReq true "borrower payload"
// @Success  201 {object} model.Borrower
// @Failure  400 {object} echo.Map
// @Failure  409 {object} echo.Map "email already registered"
// @Router   /api/borrowers [post]
func (h *Controller) Create(c echo.Context) error {
	var req CreateBorrowerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}

	b, err := h.Svc.Create(c.Request().Context(), req.Name, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, borrowersvc.ErrEmailTaken):
			return c.JSON(http.StatusConflict, echo.Map{"message": "email already registered"})
		case errors.Is(err, borrowersvc.ErrBadInput):
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "bad input"})
		default:
			h.Log.Error("borrower create error", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, b)
}
