package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/procanvas/procanvas/pkg/cmd"
	"github.com/procanvas/procanvas/pkg/config"
	"github.com/procanvas/procanvas/pkg/log"
	"github.com/procanvas/procanvas/pkg/otelhelper"
)

const defaultPort = 9094

func main() {
	logger := log.WithModule("api")

	command := &cli.Command{
		Name:                  "procanvas-api",
		Usage:                 "Model, review and publish business process workflows",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (kafka, or empty for in-memory)",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Redis connection URL for sessions (empty for in-memory)",
				Sources: cli.EnvVars("REDIS_URL"),
			},
			&cli.StringFlag{
				Name:    "bootstrap",
				Usage:   "Path to a YAML file seeding tenants, profiles and sessions",
				Sources: cli.EnvVars("BOOTSTRAP_FILE"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger.InfoContext(ctx, "Initializing ProCanvas API")

			tracer, err := otelhelper.NewTracer(ctx, "procanvas-api")
			if err != nil {
				return err
			}

			persistence := cmd.NewPersistence(ctx, logger, command.String("database-url"))

			defer func() {
				err := persistence.Close(ctx)
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus := cmd.NewEventBus(command.String("event-bus"), logger)
			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			sessions := cmd.NewSessionStore(ctx, command.String("redis-url"))

			if bootstrapPath := command.String("bootstrap"); bootstrapPath != "" {
				bootstrap, err := config.LoadBootstrap(bootstrapPath)
				if err != nil {
					return err
				}

				if err := bootstrap.Apply(ctx, persistence, sessions); err != nil {
					return err
				}

				logger.InfoContext(ctx, "Applied bootstrap configuration", "path", bootstrapPath)
			}

			api := NewAPI(
				logger,
				persistence,
				sessions,
				eventBus,
				tracer,
			)

			err = api.Start(command.Int("port"))
			if err != nil {
				logger.ErrorContext(ctx, "Failed to start API server", "error", err)
			}

			return nil
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
