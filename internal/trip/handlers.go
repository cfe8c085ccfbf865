package trip

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

type startRequest struct {
	OriginLat float64 `json:"origin_lat"`
	OriginLon float64 `json:"origin_lon"`
	DestLat   float64 `json:"dest_lat"`
	DestLon   float64 `json:"dest_lon"`
}

type speedLimitRequest struct {
	SpeedLimitKph int `json:"speed_limit_kph"`
}

type plannedRouteRequest struct {
	Points [][2]float64 `json:"points"`
}

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/start", authMiddleware, func(c *fiber.Ctx) error {
		var req startRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		trip, err := svc.Start(c.Context(), req.OriginLat, req.OriginLon, req.DestLat, req.DestLon)
		if err != nil {
			if errors.Is(err, ErrNoDestination) {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(trip)
	})

	r.Post("/fixes", authMiddleware, func(c *fiber.Ctx) error {
		var fix PositionFix
		if err := c.BodyParser(&fix); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		events := svc.Ingest(fix)
		if events == nil {
			events = []AlertEvent{}
		}
		return c.JSON(fiber.Map{"alerts": events})
	})

	r.Post("/stop", authMiddleware, func(c *fiber.Ctx) error {
		completed, stopped := svc.Stop()
		if !stopped {
			return fiber.NewError(fiber.StatusConflict, "no active trip")
		}
		return c.JSON(fiber.Map{"completed": completed})
	})

	r.Get("/current", func(c *fiber.Ctx) error {
		return c.JSON(svc.Current())
	})

	r.Put("/speed-limit", authMiddleware, func(c *fiber.Ctx) error {
		var req speedLimitRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if req.SpeedLimitKph < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "speed limit must not be negative")
		}
		svc.SetSpeedLimit(req.SpeedLimitKph)
		return c.JSON(svc.Current())
	})

	r.Put("/route", authMiddleware, func(c *fiber.Ctx) error {
		var req plannedRouteRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		svc.SetPlannedRoute(req.Points)
		return c.SendStatus(fiber.StatusNoContent)
	})
}
