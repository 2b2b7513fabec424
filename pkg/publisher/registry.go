package publisher

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	engerrors "github.com/jihwankim/mqtt-sim/pkg/errors"
	"github.com/jihwankim/mqtt-sim/pkg/plan"
)

// Registry keeps one Publisher per broker name, shared across every worker
// publishing to that broker.
type Registry struct {
	mu         sync.RWMutex
	publishers map[string]*Publisher
	connectErr map[string]error
}

// NewRegistry connects to every broker in brokers and returns a Registry
// holding the ones that connected. A broker whose connection fails does not
// abort the others: it is recorded and surfaced later from Get, so only the
// streams bound to that broker fail; streams on other brokers continue
// unaffected.
func NewRegistry(ctx context.Context, brokers []plan.BrokerSpec) (*Registry, error) {
	r := &Registry{
		publishers: make(map[string]*Publisher, len(brokers)),
		connectErr: make(map[string]error),
	}
	for _, spec := range brokers {
		p, err := Open(ctx, spec)
		if err != nil {
			log.Error().Str("broker", spec.Name).Err(err).Msg("broker connect failed; streams bound to it will error")
			r.connectErr[spec.Name] = err
			continue
		}
		r.publishers[spec.Name] = p
	}
	return r, nil
}

// Get returns the Publisher for the named broker, or the connect error
// recorded for it at NewRegistry time.
func (r *Registry) Get(name string) (*Publisher, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.publishers[name]; ok {
		return p, nil
	}
	if err, ok := r.connectErr[name]; ok {
		return nil, err
	}
	return nil, engerrors.NewTransportError(name, fmt.Errorf("no publisher registered for broker %q", name))
}

// CloseAll disconnects every publisher in the registry.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.publishers {
		p.Close()
	}
}
