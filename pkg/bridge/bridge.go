// Package bridge adapts NATS subjects to flow boundary nodes: a subscription
// becomes a generator's emission routine and a publication becomes a sink's
// consumption routine. Everything between the boundaries stays on in-process
// queues.
package bridge

import (
	"context"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	internalnats "github.com/codenodeio/flow/internal/nats"
	flowerrors "github.com/codenodeio/flow/pkg/errors"
	"github.com/codenodeio/flow/pkg/runtime"
)

// subscribeBuffer sizes the channel between the NATS subscription and the
// generator loop.
const subscribeBuffer = 64

// Source returns a generator emission routine that forwards every message
// published on subject into the flow. The subscription lives for the task's
// lifetime and is torn down when the generator stops.
func Source(conn *nats.Conn, subject string, logger *zap.Logger) (runtime.EmitFunc[[]byte], error) {
	if !internalnats.IsConnected(conn) {
		return nil, flowerrors.ErrNotConnected
	}
	if subject == "" {
		return nil, flowerrors.NewError("BRIDGE_CONFIG", "subject cannot be empty", nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(ctx context.Context, send func([]byte) bool) {
		msgCh := make(chan *nats.Msg, subscribeBuffer)
		sub, err := conn.ChanSubscribe(subject, msgCh)
		if err != nil {
			logger.Error("bridge source subscribe failed",
				zap.String("subject", subject),
				zap.Error(err))
			return
		}
		defer func() {
			if err := sub.Unsubscribe(); err != nil {
				logger.Warn("bridge source unsubscribe failed",
					zap.String("subject", subject),
					zap.Error(err))
			}
		}()

		logger.Info("bridge source started", zap.String("subject", subject))
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgCh:
				if !ok {
					return
				}
				if !send(msg.Data) {
					return
				}
			}
		}
	}, nil
}

// SinkTo returns a sink consumption routine that publishes every received
// value to subject. Publish failures are logged and the value dropped; the
// flow keeps running through transient broker outages.
func SinkTo(conn *nats.Conn, subject string, logger *zap.Logger) (runtime.ConsumeFunc[[]byte], error) {
	if !internalnats.IsConnected(conn) {
		return nil, flowerrors.ErrNotConnected
	}
	if subject == "" {
		return nil, flowerrors.NewError("BRIDGE_CONFIG", "subject cannot be empty", nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(ctx context.Context, data []byte) {
		if err := conn.Publish(subject, data); err != nil {
			logger.Warn("bridge sink publish failed",
				zap.String("subject", subject),
				zap.Error(err))
		}
	}, nil
}
