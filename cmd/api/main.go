// cmd/api/main.go
package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"container-yard-api-server/config"
	"container-yard-api-server/internal/api/routes"
	"container-yard-api-server/internal/auth"
	"container-yard-api-server/internal/database"
	"container-yard-api-server/internal/logger"
	"container-yard-api-server/internal/s3"
	"container-yard-api-server/internal/socket"
	"container-yard-api-server/internal/store"
	"container-yard-api-server/internal/store/memory"
	"container-yard-api-server/internal/store/mongostore"
	"container-yard-api-server/internal/yard"
)

func main() {
	// 1. Load configuration
	cfg, err := config.LoadConfig("./config")
	if err != nil {
		logrus.Fatalf("Could not load config: %v", err)
	}
	logger.Init("container-yard-api", cfg.Log)
	gin.SetMode(cfg.Server.Mode)

	ctx := context.Background()

	// 2. Open the store
	stores, closeStore := openStore(ctx, cfg)
	defer closeStore()

	// 3. Development data
	if cfg.Store.Seed {
		err := database.Seed(ctx, stores, database.SeedOptions{
			MockContainers: cfg.Store.MockContainers,
			RandSeed:       cfg.Store.MockSeed,
			Now:            time.Now(),
		})
		if err != nil {
			logger.Log.Fatalf("Failed to seed data: %v", err)
		}
	}

	// 4. Services
	ttl, _ := cfg.TokenTTL()
	statsTTL, _ := cfg.StatsCacheTTL()
	loc, _ := cfg.Location()
	tokens := auth.NewTokenManager(cfg.JWT.Secret, ttl)

	wsHub := socket.NewHub()
	dashboard := yard.NewDashboardService(stores.Containers, stores.References.ShippingLines, loc, statsTTL)
	notifier := yard.Notifiers{wsHub, dashboard}

	containers := &yard.ContainerService{
		Containers: stores.Containers,
		Refs:       stores.References,
		Notifier:   notifier,
		Now:        time.Now,
		Location:   loc,
	}
	if cfg.S3.Bucket != "" {
		uploader, err := s3.NewUploader(ctx, cfg.S3)
		if err != nil {
			logger.Log.Fatalf("Failed to create S3 uploader: %v", err)
		}
		containers.Photos = uploader
	} else {
		logger.Log.Warn("s3.bucket not set, photo uploads are disabled")
	}

	router := routes.SetupRouter(routes.Deps{
		Config:     cfg,
		Tokens:     tokens,
		Users:      &auth.Service{Users: stores.Users, Tokens: tokens, Now: time.Now},
		Containers: containers,
		References: &yard.ReferenceService{
			Refs:         stores.References,
			Containers:   stores.Containers,
			DeletePolicy: yard.DeletePolicy(cfg.Yard.DeletePolicy),
			Notifier:     notifier,
			Now:          time.Now,
		},
		Dashboard: dashboard,
		Hub:       wsHub,
	})

	// 5. Start server
	logger.Log.WithFields(logrus.Fields{
		"port":   cfg.Server.Port,
		"driver": cfg.Store.Driver,
		"tz":     loc.String(),
	}).Info("Starting API server")
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		logger.Log.Fatalf("Failed to run server: %v", err)
	}
}

// openStore returns the configured persistence and its cleanup.
func openStore(ctx context.Context, cfg config.Config) (store.Stores, func()) {
	if cfg.Store.Driver != "mongo" {
		logger.Log.Info("using in-memory store; data is lost on restart")
		return memory.New().Stores(), func() {}
	}

	client, db, err := database.Connect(ctx, cfg.Mongo)
	if err != nil {
		logger.Log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	if err := mongostore.EnsureIndexes(ctx, db); err != nil {
		logger.Log.Fatalf("Failed to create indexes: %v", err)
	}
	logger.Log.WithField("db", cfg.Mongo.DBName).Info("connected to MongoDB")

	return mongostore.New(db), func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(shutdownCtx); err != nil {
			logger.Log.WithError(err).Warn("mongo disconnect failed")
		}
	}
}
