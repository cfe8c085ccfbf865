package server

import (
	"context"
	"log"
	"time"

	"github.com/ghadirb/PersianAINavigation/internal/auth"
	"github.com/ghadirb/PersianAINavigation/internal/config"
	"github.com/ghadirb/PersianAINavigation/internal/hazard"
	"github.com/ghadirb/PersianAINavigation/internal/history"
	"github.com/ghadirb/PersianAINavigation/internal/predict"
	"github.com/ghadirb/PersianAINavigation/internal/route"
	"github.com/ghadirb/PersianAINavigation/internal/stream"
	"github.com/ghadirb/PersianAINavigation/internal/trip"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App     *fiber.App
	Cfg     config.Config
	DB      *pgxpool.Pool
	Redis   *redis.Client
	Stream  *stream.Hub
	History *history.Store
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:     app,
		Cfg:     cfg,
		DB:      db,
		Redis:   redisClient,
		Stream:  stream.NewHub(redisClient),
		History: history.NewStore(cfg.MaxHistory),
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)

	var archiver *history.Archiver
	var hazardStore *hazard.Store
	if s.DB != nil {
		archiver = history.NewArchiver(s.DB)
		hazardStore = hazard.NewStore(s.DB)
		rehydrateHistory(s.History, archiver, s.Cfg.MaxHistory)
	}

	tripCfg := trip.DefaultConfig()
	if s.Cfg.SpeedMarginKph > 0 {
		tripCfg.SpeedMarginKph = s.Cfg.SpeedMarginKph
	}
	if s.Cfg.SpeedCooldownSec > 0 {
		tripCfg.SpeedCooldown = time.Duration(s.Cfg.SpeedCooldownSec) * time.Second
	}

	tripSvc := trip.NewService(tripCfg, hazardLoader(s.Cfg, hazardStore), s.History, archiver, s.Stream, routeProvider(s.Cfg))
	predictor := predict.NewPredictor(s.History, scorer(s.Cfg))

	auth.RegisterRoutes(s.App.Group("/auth"), auth.NewService(s.Cfg.JWTSecret, s.DB))
	trip.RegisterRoutes(s.App.Group("/trips"), tripSvc, jwtMiddleware)
	predict.RegisterRoutes(s.App.Group("/predict"), predictor, jwtMiddleware)
	history.RegisterRoutes(s.App.Group("/history"), s.History, jwtMiddleware)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)

	if hazardStore != nil {
		hazard.RegisterRoutes(s.App.Group("/hazards"), hazardStore, jwtMiddleware)
	}
}

// hazardLoader picks the hazard source: local file, remote feed, database,
// or the embedded catalogue.
func hazardLoader(cfg config.Config, store *hazard.Store) hazard.Loader {
	switch {
	case cfg.HazardFile != "":
		return hazard.FromFile(cfg.HazardFile)
	case cfg.HazardFeedURL != "":
		return hazard.FromURL(cfg.HazardFeedURL)
	case store != nil:
		return hazard.FromStore(store)
	default:
		return hazard.Static(hazard.DefaultTehranRecords())
	}
}

func routeProvider(cfg config.Config) route.Provider {
	if cfg.RouterURL == "" {
		return nil
	}
	return route.NewOSRMProvider(cfg.RouterURL)
}

func scorer(cfg config.Config) predict.Scorer {
	if cfg.ScorerURL == "" {
		return predict.StubScorer{}
	}
	return predict.NewHTTPScorer(cfg.ScorerURL)
}

// rehydrateHistory reloads archived trips so predictions survive restarts.
func rehydrateHistory(store *history.Store, archiver *history.Archiver, limit int) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	trips, err := archiver.Recent(ctx, limit)
	if err != nil {
		log.Printf("history rehydrate failed: %v", err)
		return
	}
	for _, trip := range trips {
		store.Add(trip)
	}
}
