package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/ardiansyahnr/event-ticketing/internal/config"
	"github.com/ardiansyahnr/event-ticketing/internal/database"
	"github.com/ardiansyahnr/event-ticketing/internal/handler"
	"github.com/ardiansyahnr/event-ticketing/internal/middleware"
	"github.com/ardiansyahnr/event-ticketing/internal/queue"
	"github.com/ardiansyahnr/event-ticketing/internal/repository"
	"github.com/ardiansyahnr/event-ticketing/internal/router"
	"github.com/ardiansyahnr/event-ticketing/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: without it the API runs uncached and unlimited.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, cache and rate limiting disabled")
	}

	// Repositories.
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	events := repository.NewEventRepo(db)
	coupons := repository.NewCouponRepo(db)
	txs := repository.NewTransactionRepo(db)
	reviews := repository.NewReviewRepo(db)
	dash := repository.NewDashboardRepo(db)

	// Services.
	couponSvc := service.NewCouponService(coupons, cfg.CouponExhaustion)
	referralSvc := service.NewReferralService(users, couponSvc)
	txSvc := service.NewTransactionService(txs, events, users, couponSvc, service.QueueNotifier{})

	// Handlers.
	authH := handler.NewAuthHandler(cfg, users, tokens, referralSvc)
	eventH := handler.NewEventHandler(events)
	couponH := handler.NewCouponHandler(couponSvc, coupons)
	txH := handler.NewTransactionHandler(txSvc)
	reviewH := handler.NewReviewHandler(reviews, txs)
	dashH := handler.NewDashboardHandler(dash)

	go func() {
		if err := queue.StartNotificationConsumer(); err != nil {
			log.Printf("notification consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	cacheMW := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, eventH, reviewH, cacheMW)
	router.RegisterCustomer(e, txH, couponH, reviewH, cfg.JWTSecret)
	router.RegisterOrganizer(e, eventH, couponH, txH, dashH, cfg.JWTSecret)
	router.RegisterAdmin(e, txH, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
