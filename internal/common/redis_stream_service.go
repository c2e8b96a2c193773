package common

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// StreamPublisher appends JSON events to Redis streams. The bot consumes the
// notification stream; the audit stream is read by operators.
type StreamPublisher struct {
	client *redis.Client
	maxLen int64
}

// NewStreamPublisher creates a publisher. Streams are trimmed approximately to
// maxLen entries; zero disables trimming.
func NewStreamPublisher(client *redis.Client, maxLen int64) *StreamPublisher {
	return &StreamPublisher{
		client: client,
		maxLen: maxLen,
	}
}

// Publish adds one entry with fields "type" and "data".
func (s *StreamPublisher) Publish(ctx context.Context, stream, eventType string, payload any) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s event: %w", eventType, err)
	}

	args := &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			"type": eventType,
			"data": string(data),
		},
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}

	id, err := s.client.XAdd(ctx, args).Result()
	if err != nil {
		return "", fmt.Errorf("failed to add to stream %s: %w", stream, err)
	}
	return id, nil
}

// Len returns the number of entries in stream.
func (s *StreamPublisher) Len(ctx context.Context, stream string) (int64, error) {
	length, err := s.client.XLen(ctx, stream).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get stream length: %w", err)
	}
	return length, nil
}
