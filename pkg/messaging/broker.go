// Package messaging carries domain events between services. Payloads are
// JSON on every transport.
package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrClosed = errors.New("broker closed")

// Broker publishes to and subscribes on named channels. Delivery is at most
// once; a subscriber that falls behind may miss messages.
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	// Subscribe returns a channel that is closed once ctx is done.
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// Pinger is implemented by brokers that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Encode renders message the way every broker puts it on the wire.
func Encode(message interface{}) ([]byte, error) {
	payload, err := json.Marshal(message)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}
	return payload, nil
}
