package service

import (
	"context"
	"roadbook/infras/kafka"
	"roadbook/internal/domains/booking/model"
	"roadbook/shared"
	"slices"

	"github.com/rs/zerolog/log"
)

// afterCommit drops the cached availability of every touched road and publishes the event.
// It runs detached from the request, the booking is already durable.
func (s *serviceImpl) afterCommit(ctx context.Context, roadIDs []string, event model.Event) {
	roadIDs = slices.Compact(slices.Sorted(slices.Values(roadIDs)))

	go func() {
		c := context.WithoutCancel(ctx)

		for _, roadID := range roadIDs {
			shared.InvalidateAvailability(c, s.cache, roadID)
		}

		s.publish(c, event)
	}()
}

func (s *serviceImpl) publish(ctx context.Context, event model.Event) {
	if !s.cfg.Kafka.Enable {
		return
	}

	err := s.kafka.SendMessages(ctx, s.cfg.Kafka.Topic.Booking, kafka.Message{Key: event.BookingID, Value: event})
	if err != nil {
		log.Error().Err(err).Str("booking_id", event.BookingID).Str("type", event.Type).Msg("failed to publish booking event")
	}
}
