// Package main library lending API.
//
// @title           Library Lending API
// @version         1.0
// @description     Library catalog, borrowers and the borrow/return workflow.
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <token>
package main

import (
	"context"
	"log/slog"
	"os"

	"liblending/app/echoServer"
	bookctrl "liblending/app/echoServer/controller/book"
	borrowerctrl "liblending/app/echoServer/controller/borrower"
	lendingctrl "liblending/app/echoServer/controller/lending"
	"liblending/app/echoServer/validation"
	"liblending/config"
	bookrepo "liblending/repository/book"
	borrowrepo "liblending/repository/borrow"
	borrowerrepo "liblending/repository/borrower"
	booksvc "liblending/service/book"
	borrowersvc "liblending/service/borrower"
	lendingsvc "liblending/service/lending"
	"liblending/util/database"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// DB: *sql.DB
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// repos
	bkr := bookrepo.New(db)
	bwr := borrowerrepo.New(db)
	ldr := borrowrepo.New(db)

	// services
	bs := booksvc.New(bkr)
	ws := borrowersvc.New(bwr)
	lsv := lendingsvc.New(ldr)

	// controllers
	v := validator.New()
	bookC := &bookctrl.Controller{Svc: bs, V: v, Log: log}
	borrowerC := &borrowerctrl.Controller{Svc: ws, V: v, Log: log}
	lendingC := &lendingctrl.Controller{Svc: lsv, V: v, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		if err := db.PingContext(c.Request().Context()); err != nil {
			return c.JSON(503, map[string]any{"status": "down", "message": "database unreachable"})
		}
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Book:     bookC,
		Borrower: borrowerC,
		Lending:  lendingC,

		BearerToken:      cfg.BearerToken,
		BorrowRatePerMin: cfg.BorrowRatePerMin,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	slog.Info("starting server", "port", port, "env", cfg.Env)

	e.Logger.Fatal(e.Start(":" + port))
}
