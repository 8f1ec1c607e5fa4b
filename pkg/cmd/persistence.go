package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/procanvas/procanvas/pkg/persistence"
	"github.com/procanvas/procanvas/pkg/persistence/file"
	"github.com/procanvas/procanvas/pkg/persistence/postgresql"
)

// NewPersistence selects a storage backend from the database URL scheme.
// Anything that is not a PostgreSQL URL falls back to file storage, with
// the URL treated as a root directory.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) persistence.Persistence {
	switch parsePersistenceProvider(databaseURL) {
	case "postgres", "postgresql":
		p, err := postgresql.NewPersistence(ctx, logger, databaseURL)
		if err != nil {
			panic(fmt.Errorf("failed to connect to PostgreSQL: %w", err))
		}

		return p
	default:
		return file.NewPersistence(strings.TrimPrefix(databaseURL, "file://"))
	}
}

func parsePersistenceProvider(databaseURL string) string {
	provider, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return "file"
	}

	return provider
}
