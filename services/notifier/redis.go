package notifier

import (
	"context"
	"encoding/base64"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/IamRajen/PriceTracker/logger"
)

// RedisSink publishes rendered price-drop messages to a capped Redis
// stream. The external mailer consumes the stream and handles delivery.
type RedisSink struct {
	client    *redis.Client
	ctx       context.Context
	stream    string
	maxLength int
	log       *logger.Logger
}

// NewRedisSink creates a Redis-backed notification sink
func NewRedisSink(ctx context.Context, addr string, db int, stream string, maxLength int) *RedisSink {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	return &RedisSink{
		client:    client,
		ctx:       ctx,
		stream:    stream,
		maxLength: maxLength,
		log:       logger.ForNotifier(),
	}
}

// Notify renders the batch and publishes it to the stream.
// The message is base64 encoded before publishing.
func (s *RedisSink) Notify(email string, drops []ProductDrop) error {
	message := Render(email, drops)

	payload, err := json.Marshal(message)
	if err != nil {
		return err
	}
	encoded := base64.StdEncoding.EncodeToString(payload)

	err = s.client.XAdd(s.ctx, &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: int64(s.maxLength),
		Approx: true,
		Values: map[string]interface{}{
			"recipient": email,
			"message":   encoded,
		},
	}).Err()
	if err != nil {
		return err
	}

	s.log.Info().Str("recipient", email).Int("products", len(drops)).Msg("Queued price drop notification")
	return nil
}

// Close closes the Redis connection
func (s *RedisSink) Close() error {
	return s.client.Close()
}
