package nats

import (
	"errors"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/acceptance-verifier/internal/infrastructure/resilience"
)

// natsRules retry publishes that failed because the connection was down.
var natsRules = resilience.Rules{
	Transient: func(err error) bool {
		return errors.Is(err, nats.ErrNoServers) ||
			errors.Is(err, nats.ErrTimeout) ||
			errors.Is(err, nats.ErrConnectionClosed) ||
			errors.Is(err, nats.ErrDisconnected) ||
			errors.Is(err, nats.ErrConnectionReconnecting)
	},
}
