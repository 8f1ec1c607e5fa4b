package cmd

import (
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/procanvas/procanvas/pkg/channels/gochannel"
	"github.com/procanvas/procanvas/pkg/channels/kafka"
	"github.com/procanvas/procanvas/pkg/eventbus"
)

// NewEventBus creates an event bus instance based on the provider. The
// in-memory gochannel bus is the single-process default; Kafka is for
// deployments where comment and lifecycle events fan out across
// instances.
func NewEventBus(provider string, logger *slog.Logger) eventbus.EventBus {
	switch provider {
	case "kafka":
		pub, sub, err := kafka.CreateChannel(watermill.NewSlogLogger(logger), "procanvas")
		if err != nil {
			panic(fmt.Errorf("failed to create Kafka pub/sub: %w", err))
		}

		return eventbus.NewWatermillEventBus(pub, sub)
	default:
		pub, sub, err := gochannel.CreateChannel(watermill.NewSlogLogger(logger))
		if err != nil {
			panic(fmt.Errorf("failed to create in-memory pub/sub: %w", err))
		}

		return eventbus.NewWatermillEventBus(pub, sub)
	}
}
