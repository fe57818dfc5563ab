package main

import (
	"fmt"
	"os"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"livemarket-sync/internal/config"
	"livemarket-sync/internal/models"
	"livemarket-sync/internal/simulator"
	"livemarket-sync/internal/subscription"
	"livemarket-sync/utils"
)

func main() {
	cfg := config.Load()

	bus, err := buildBus(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect push transport: %v\n", err)
		os.Exit(1)
	}

	store := simulator.NewMemoryStore()
	prepopulateLots(store)

	svc := simulator.NewAuctionService(store, bus, cfg.SessionID)
	handler := simulator.NewHandler()
	handler.Register(cfg.SessionID, svc)

	router := simulator.SetupRouter(handler)

	addr := ":" + cfg.Port
	utils.Info("starting live-market server", map[string]any{
		"addr":      addr,
		"transport": cfg.PushTransport,
	})
	if err := router.Run(addr); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start server: %v\n", err)
		os.Exit(1)
	}
}

// buildBus connects the push transport named in the configuration.
func buildBus(cfg config.Config) (subscription.Bus, error) {
	switch cfg.PushTransport {
	case config.TransportRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		return subscription.NewRedisBus(client), nil
	case config.TransportAMQP:
		conn, err := amqp.Dial(cfg.AMQPURL)
		if err != nil {
			return nil, fmt.Errorf("dial amqp at %s: %w", cfg.AMQPURL, err)
		}
		return subscription.NewAMQPBus(conn), nil
	case config.TransportMemory:
		return subscription.NewMemoryBus(), nil
	default:
		return nil, fmt.Errorf("unknown push transport %q", cfg.PushTransport)
	}
}

// prepopulateLots adds sample lots so a fresh server has a session to show
func prepopulateLots(store *simulator.MemoryStore) {
	lots := []models.Lot{
		{
			LotID:           1,
			CarID:           101,
			Car:             &models.Car{CarID: 101, Make: "Toyota", Model: "Camry", Year: 2021, UserID: 31},
			OpeningPrice:    18000,
			Status:          models.StatusLive,
			ApprovedForLive: true,
		},
		{
			LotID:        2,
			CarID:        102,
			Car:          &models.Car{CarID: 102, Make: "Honda", Model: "Civic", Year: 2020, UserID: 32},
			OpeningPrice: 15500,
			Status:       models.StatusLive,
		},
		{
			LotID:        3,
			CarID:        103,
			Car:          &models.Car{CarID: 103, Make: "Kia", Model: "Sportage", Year: 2019, UserID: 33, Dealer: &models.Dealer{UserID: 40}},
			OpeningPrice: 21000,
			CurrentBid:   22500,
			Status:       models.StatusCompleted,
		},
	}

	for _, lot := range lots {
		store.AddLot(lot)
	}
}
