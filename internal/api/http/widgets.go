package httpapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/account-weather/internal/notify"
	"github.com/i474232898/account-weather/internal/widget"
)

// unitRequest is the body of PUT /widgets/:id/unit.
type unitRequest struct {
	Fahrenheit *bool `json:"fahrenheit" validate:"required"`
}

type refreshResponse struct {
	Widget     widget.View `json:"widget"`
	Refreshed  bool        `json:"refreshed"`
	Superseded bool        `json:"superseded,omitempty"`
}

func registerWidgetRoutes(v1 fiber.Router, reg *widget.Registry, rec *notify.Recorder) {
	mounted := func(c *fiber.Ctx) (*widget.Widget, error) {
		w, ok := reg.Get(c.Params("id"))
		if !ok {
			return nil, fiber.NewError(fiber.StatusNotFound, "widget is not mounted")
		}
		return w, nil
	}

	// Mounting loads the record's weather once; later reads render local state.
	v1.Get("/widgets/:id", func(c *fiber.Ctx) error {
		w := reg.Mount(c.UserContext(), c.Params("id"))
		return c.JSON(w.View())
	})

	v1.Post("/widgets/:id/refresh", func(c *fiber.Ctx) error {
		w, err := mounted(c)
		if err != nil {
			return err
		}
		err = w.Refresh(c.UserContext())
		return c.JSON(refreshResponse{
			Widget:     w.View(),
			Refreshed:  err == nil,
			Superseded: errors.Is(err, widget.ErrSuperseded),
		})
	})

	v1.Put("/widgets/:id/unit", func(c *fiber.Ctx) error {
		w, err := mounted(c)
		if err != nil {
			return err
		}
		var req unitRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		w.SetFahrenheit(*req.Fahrenheit)
		return c.JSON(w.View())
	})

	v1.Delete("/widgets/:id", func(c *fiber.Ctx) error {
		id := c.Params("id")
		if !reg.Unmount(id) {
			return fiber.NewError(fiber.StatusNotFound, "widget is not mounted")
		}
		rec.Forget(id)
		return c.SendStatus(fiber.StatusNoContent)
	})

	v1.Get("/widgets/:id/notifications", func(c *fiber.Ctx) error {
		if _, err := mounted(c); err != nil {
			return err
		}
		return c.JSON(rec.Recent(c.Params("id")))
	})
}
