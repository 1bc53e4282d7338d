package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// NewMongoClient connects to uri. A failed ping is logged, not fatal: the
// driver keeps retrying in the background and uploads fail until it
// succeeds.
func NewMongoClient(uri string, logger *zap.Logger) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		logger.Warn("mongo ping failed", zap.Error(err))
		return client, nil
	}

	logger.Info("connected to MongoDB")
	return client, nil
}
