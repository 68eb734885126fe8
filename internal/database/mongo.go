package database

import (
	"context"
	"fmt"
	"time"

	"movi/internal/config"
	"movi/internal/logger"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const serverSelectionTimeout = 10 * time.Second

var (
	client *mongo.Client
	dbName string
)

func Init(ctx context.Context) error {
	uri, name := config.MongoConfig()

	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(serverSelectionTimeout)

	c, err := mongo.Connect(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err = c.Ping(ctx, readpref.Primary()); err != nil {
		_ = c.Disconnect(ctx)
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	client = c
	dbName = name
	logger.Get().Info("Connection to MongoDB successful!")
	return nil
}

func MustInit(ctx context.Context) {
	if err := Init(ctx); err != nil {
		logger.Get().WithError(err).Fatal("Failed to initialize database connection")
	}
}

func Get() *mongo.Database {
	return client.Database(dbName)
}

func Close(ctx context.Context) {
	if client != nil {
		if err := client.Disconnect(ctx); err != nil {
			logger.Get().WithError(err).Warn("Failed to disconnect from MongoDB")
			return
		}
		logger.Get().Info("MongoDB connection closed")
	}
}
