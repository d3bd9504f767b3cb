package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/ttcenter/reservation-api/internal/config"
	"github.com/ttcenter/reservation-api/internal/database"
	"github.com/ttcenter/reservation-api/internal/handler"
	"github.com/ttcenter/reservation-api/internal/queue"
	"github.com/ttcenter/reservation-api/internal/repository"
	"github.com/ttcenter/reservation-api/internal/router"
	"github.com/ttcenter/reservation-api/internal/service"
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

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, running without rate limiting and caching")
	}

	users := repository.NewUserRepo(db)
	relations := repository.NewRelationRepo(db)
	tables := repository.NewTableRepo(db)
	bookings := repository.NewBookingRepo(db)
	requests := repository.NewCoachChangeRepo(db)

	events := queue.NewPublisher(cfg.AMQPURL)

	relationSvc := service.NewRelationService(relations, users, events)
	bookingSvc := service.NewBookingService(bookings, relations, tables, users, events)
	coachChangeSvc := service.NewCoachChangeService(requests, relations, users, events)

	h := router.Handlers{
		Auth:        handler.NewAuthHandler(users, cfg.JWTSecret, cfg.AccessTTLMin),
		Relations:   handler.NewRelationHandler(relationSvc, users),
		Bookings:    handler.NewBookingHandler(bookingSvc, users),
		Tables:      handler.NewTableHandler(bookingSvc),
		CoachChange: handler.NewCoachChangeHandler(coachChangeSvc, users),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go queue.StartNotificationConsumer(cfg.AMQPURL)
	go service.StartCompletionSweeper(ctx, bookingSvc, cfg.SweepInterval)

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e, h, cfg.JWTSecret, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
