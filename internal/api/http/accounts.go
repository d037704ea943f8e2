package httpapi

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/account-weather/internal/accounts"
	"github.com/i474232898/account-weather/internal/accountweather"
)

// accountRequest is the body of POST /accounts.
type accountRequest struct {
	ID             string   `json:"id" validate:"omitempty,max=64"`
	Name           string   `json:"name" validate:"required,max=255"`
	BillingCity    string   `json:"billingCity" validate:"max=128"`
	BillingCountry string   `json:"billingCountry" validate:"max=64"`
	Latitude       *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude      *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
}

// errorEnvelope mirrors the shape widget clients read transport errors from.
type errorEnvelope struct {
	Body struct {
		Message string `json:"message"`
	} `json:"body"`
}

func newErrorEnvelope(msg string) errorEnvelope {
	var e errorEnvelope
	e.Body.Message = msg
	return e
}

func registerAccountRoutes(v1 fiber.Router, repo accounts.Repository, svc *accountweather.Service) {
	v1.Post("/accounts", func(c *fiber.Ctx) error {
		var req accountRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		acct, err := repo.Upsert(c.UserContext(), accounts.Account{
			ID:             strings.TrimSpace(req.ID),
			Name:           strings.TrimSpace(req.Name),
			BillingCity:    strings.TrimSpace(req.BillingCity),
			BillingCountry: strings.TrimSpace(req.BillingCountry),
			Latitude:       req.Latitude,
			Longitude:      req.Longitude,
		})
		if err != nil {
			log.Printf("ERROR: upsert account: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "failed to save account")
		}
		return c.Status(fiber.StatusCreated).JSON(acct)
	})

	v1.Get("/accounts", func(c *fiber.Ctx) error {
		list, err := repo.List(c.UserContext())
		if err != nil {
			log.Printf("ERROR: list accounts: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "failed to list accounts")
		}
		if list == nil {
			list = []accounts.Account{}
		}
		return c.JSON(list)
	})

	v1.Get("/accounts/:id", func(c *fiber.Ctx) error {
		acct, err := repo.Get(c.UserContext(), c.Params("id"))
		if errors.Is(err, accounts.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "account not found")
		}
		if err != nil {
			log.Printf("ERROR: get account: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "failed to load account")
		}
		return c.JSON(acct)
	})

	// The account weather procedure. Business failures are 200 with
	// success=false; transport failures use the error envelope.
	v1.Get("/accounts/:id/weather", func(c *fiber.Ctx) error {
		opts := accountweather.Options{BypassCache: c.QueryBool("refresh", false)}
		rep, err := svc.GetWeatherForAccount(c.UserContext(), c.Params("id"), opts)
		if err != nil {
			log.Printf("ERROR: weather for account %s: %v", c.Params("id"), err)
			return c.Status(fiber.StatusBadGateway).JSON(newErrorEnvelope(err.Error()))
		}
		return c.JSON(rep)
	})
}
