package history

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, store *Store, authMiddleware fiber.Handler) {
	r.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(store.Export())
	})

	r.Get("/export", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"count": store.Len(),
			"trips": store.Export(),
		})
	})

	r.Post("/import", authMiddleware, func(c *fiber.Ctx) error {
		var batch []CompletedTrip
		if err := c.BodyParser(&batch); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		retained := store.ImportDeduplicated(batch)
		return c.JSON(fiber.Map{"imported": len(batch), "retained": retained})
	})

	r.Get("/query", func(c *fiber.Ctx) error {
		originLat, _ := strconv.ParseFloat(c.Query("origin_lat"), 64)
		originLon, _ := strconv.ParseFloat(c.Query("origin_lon"), 64)
		destLat, _ := strconv.ParseFloat(c.Query("dest_lat"), 64)
		destLon, _ := strconv.ParseFloat(c.Query("dest_lon"), 64)

		var window *TimeWindow
		if c.Query("hour") != "" {
			hour, _ := strconv.Atoi(c.Query("hour"))
			day, _ := strconv.Atoi(c.Query("day_of_week"))
			window = &TimeWindow{Hour: hour, DayOfWeek: day}
		}

		trips := store.Query(originLat, originLon, destLat, destLon, window)
		if trips == nil {
			trips = []CompletedTrip{}
		}
		return c.JSON(trips)
	})
}
