// Package mongo holds the MongoDB connector and the repositories backed by
// it. Clients are only ever created through the lifecycle registry returned
// by NewRegistry, so concurrent first use opens exactly one connection.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/opskernel/admin-api/internal/infrastructure/lifecycle"
)

const defaultTimeout = 5 * time.Second

// Config captures the minimal settings required to establish a MongoDB
// connection.
type Config struct {
	URI      string
	Database string
}

// Handle bundles the connected client with the selected database.
type Handle struct {
	Client *mongo.Client
	DB     *mongo.Database
}

// Connect establishes a MongoDB client and verifies connectivity with a
// ping. The caller's context bounds the attempt.
func Connect(ctx context.Context, cfg Config) (*Handle, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	return &Handle{Client: client, DB: client.Database(cfg.Database)}, nil
}

// NewRegistry returns the lifecycle registry for MongoDB handles. A
// non-positive timeout falls back to the package default.
func NewRegistry(timeout time.Duration) *lifecycle.Registry[Config, *Handle] {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return lifecycle.NewRegistry("mongo", timeout, Connect,
		func(ctx context.Context, h *Handle) error {
			return h.Client.Disconnect(ctx)
		})
}
