// Package publisher wraps the eclipse paho MQTT client behind a small
// broker-capability surface: open, publish, close.
package publisher

import (
	"context"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	engerrors "github.com/jihwankim/mqtt-sim/pkg/errors"
	"github.com/jihwankim/mqtt-sim/pkg/plan"
)

// disconnectQuiesceMillis bounds how long Close waits for in-flight work to
// drain before forcing the connection down.
const disconnectQuiesceMillis = 250

// Publisher is a connected handle to one broker.
type Publisher struct {
	broker string
	client mqtt.Client
}

// Open connects to the broker described by spec and blocks until the
// connection completes, fails, or ctx is cancelled.
func Open(ctx context.Context, spec plan.BrokerSpec) (*Publisher, error) {
	brokerURL := fmt.Sprintf("tcp://%s:%d", spec.Host, spec.Port)

	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(spec.ClientID)
	if spec.Keepalive > 0 {
		opts.SetKeepAlive(time.Duration(spec.Keepalive) * time.Second)
	}
	if spec.Username != "" {
		opts.SetUsername(spec.Username)
		opts.SetPassword(spec.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(false)
	opts.OnConnectionLost = func(c mqtt.Client, err error) {
		log.Warn().Str("broker", spec.Name).Err(err).Msg("mqtt connection lost")
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if err := wait(ctx, token); err != nil {
		return nil, engerrors.NewTransportError(spec.Name, fmt.Errorf("connect to %s: %w", brokerURL, err))
	}
	if err := token.Error(); err != nil {
		return nil, engerrors.NewTransportError(spec.Name, fmt.Errorf("connect to %s: %w", brokerURL, err))
	}
	return &Publisher{broker: spec.Name, client: client}, nil
}

// Publish sends data to topic with the given QoS and retain flag, blocking
// until the broker acknowledges (for QoS > 0) or ctx is cancelled.
func (p *Publisher) Publish(ctx context.Context, topic string, qos byte, retain bool, data []byte) error {
	token := p.client.Publish(topic, qos, retain, data)
	if err := wait(ctx, token); err != nil {
		return engerrors.NewTransportError(p.broker, fmt.Errorf("publish %s: %w", topic, err))
	}
	if err := token.Error(); err != nil {
		return engerrors.NewTransportError(p.broker, fmt.Errorf("publish %s: %w", topic, err))
	}
	return nil
}

// Close disconnects from the broker, allowing in-flight work to drain.
func (p *Publisher) Close() {
	p.client.Disconnect(disconnectQuiesceMillis)
}

// wait blocks on token until it completes or ctx is cancelled, whichever
// comes first.
func wait(ctx context.Context, token mqtt.Token) error {
	select {
	case <-token.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
