package cmd

import (
	"context"
	"fmt"

	"github.com/procanvas/procanvas/pkg/auth"
)

// NewSessionStore creates the session backend. An empty Redis URL yields
// the in-memory store, which only suits a single-process deployment.
func NewSessionStore(ctx context.Context, redisURL string) auth.SessionStore {
	if redisURL == "" {
		return auth.NewStaticSessionStore()
	}

	store, err := auth.NewRedisSessionStore(ctx, redisURL)
	if err != nil {
		panic(fmt.Errorf("failed to connect to Redis: %w", err))
	}

	return store
}
