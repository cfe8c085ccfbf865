package predict

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

type predictRequest struct {
	OriginLat float64 `json:"origin_lat"`
	OriginLon float64 `json:"origin_lon"`
	DestLat   float64 `json:"dest_lat"`
	DestLon   float64 `json:"dest_lon"`
	Hour      *int    `json:"hour"`
	DayOfWeek *int    `json:"day_of_week"`
}

func RegisterRoutes(r fiber.Router, predictor *Predictor, authMiddleware fiber.Handler) {
	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		var req predictRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		now := time.Now()
		hour := now.Hour()
		if req.Hour != nil {
			hour = *req.Hour
		}
		dayOfWeek := int(now.Weekday()) + 1
		if req.DayOfWeek != nil {
			dayOfWeek = *req.DayOfWeek
		}
		if hour < 0 || hour > 23 {
			return fiber.NewError(fiber.StatusBadRequest, "hour out of range")
		}
		if dayOfWeek < 1 || dayOfWeek > 7 {
			return fiber.NewError(fiber.StatusBadRequest, "day_of_week out of range")
		}

		result := predictor.Predict(c.Context(), req.OriginLat, req.OriginLon, req.DestLat, req.DestLon, hour, dayOfWeek)
		return c.JSON(result)
	})
}
