package searchstats

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/ariefcatur/go-product-search/internal/catalog"
	kafkax "github.com/ariefcatur/go-product-search/internal/kafka"
)

// Deduper claims an event id; false means it was already processed.
type Deduper interface {
	Claim(ctx context.Context, eventID string) (bool, error)
}

type Counter interface {
	Incr(ctx context.Context, term string) error
}

type Service struct {
	Dedup Deduper
	Terms Counter
	Log   zerolog.Logger
}

// HandleSearchPerformed is installed as the consumer handler.
func (s *Service) HandleSearchPerformed(ctx context.Context, m kafkago.Message) error {
	env, err := kafkax.Decode[catalog.Envelope](m.Value)
	if err != nil {
		// a poison message would otherwise be retried forever
		s.Log.Warn().Err(err).Int64("offset", m.Offset).Msg("skip undecodable event")
		return nil
	}
	if env.EventType != catalog.EventSearchPerformed {
		return nil
	}

	p, err := kafkax.Decode[catalog.SearchPerformedPayload](env.Payload)
	if err != nil {
		s.Log.Warn().Err(err).Str("event_id", env.EventID).Msg("skip bad payload")
		return nil
	}

	fresh, err := s.Dedup.Claim(ctx, env.EventID)
	if err != nil {
		return err
	}
	if !fresh {
		return nil
	}
	if err := s.Terms.Incr(ctx, p.Query); err != nil {
		return fmt.Errorf("event %s: %w", env.EventID, err)
	}
	s.Log.Debug().
		Str("event_id", env.EventID).
		Str("query", p.Query).
		Dur("lag", time.Since(env.OccurredAt)).
		Msg("search counted")
	return nil
}
