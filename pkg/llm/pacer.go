// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package llm

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// PacerConfig configures request pacing for provider clients.
type PacerConfig struct {
	// Enabled turns pacing on. Disabled pacers pass calls straight through.
	Enabled bool

	// MinDelay is the minimum gap between consecutive requests.
	// Default: 300ms.
	MinDelay time.Duration

	// MaxRetries is the retry budget for throttling responses (429/503).
	// Default: 3.
	MaxRetries int

	// RetryBackoff is the initial backoff for throttling retries; it
	// doubles on each attempt. Default: 1s.
	RetryBackoff time.Duration

	// Logger for pacing events.
	Logger *zap.Logger
}

// DefaultPacerConfig returns conservative defaults suitable for free-tier
// API keys. The prompt chain issues five calls per run (1 + 1 + 3), so
// modest pacing keeps a run well under typical per-minute quotas.
func DefaultPacerConfig() PacerConfig {
	return PacerConfig{
		Enabled:      true,
		MinDelay:     300 * time.Millisecond,
		MaxRetries:   3,
		RetryBackoff: 1 * time.Second,
		Logger:       zap.NewNop(),
	}
}

// Pacer spaces out requests to a provider and retries throttled calls with
// exponential backoff. It is shared by all calls within one chain run.
type Pacer struct {
	config   PacerConfig
	mu       sync.Mutex
	lastCall time.Time
}

// NewPacer creates a pacer. A nil-config equivalent (zero values) behaves
// like DefaultPacerConfig with pacing disabled.
func NewPacer(config PacerConfig) *Pacer {
	if config.MinDelay == 0 {
		config.MinDelay = 300 * time.Millisecond
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = 3
	}
	if config.RetryBackoff == 0 {
		config.RetryBackoff = 1 * time.Second
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	return &Pacer{config: config}
}

// Do runs call, enforcing the minimum inter-request delay and retrying on
// throttling status codes. The call's response is returned as-is; only
// NetworkErrors carrying 429 or 503 are retried.
func (p *Pacer) Do(ctx context.Context, call func(context.Context) (*Response, error)) (*Response, error) {
	if !p.config.Enabled {
		return call(ctx)
	}

	backoff := p.config.RetryBackoff
	for attempt := 0; ; attempt++ {
		if err := p.waitTurn(ctx); err != nil {
			return nil, err
		}

		resp, err := call(ctx)
		if err == nil {
			return resp, nil
		}
		if !isThrottled(err) || attempt >= p.config.MaxRetries {
			return nil, err
		}

		p.config.Logger.Warn("provider throttled, backing off",
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", backoff),
			zap.Error(err))

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		backoff *= 2
	}
}

// waitTurn blocks until MinDelay has elapsed since the previous request.
func (p *Pacer) waitTurn(ctx context.Context) error {
	p.mu.Lock()
	wait := p.config.MinDelay - time.Since(p.lastCall)
	if wait < 0 {
		wait = 0
	}
	p.lastCall = time.Now().Add(wait)
	p.mu.Unlock()

	if wait == 0 {
		return nil
	}
	select {
	case <-time.After(wait):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func isThrottled(err error) bool {
	var ne *NetworkError
	if !errors.As(err, &ne) {
		return false
	}
	return ne.StatusCode == http.StatusTooManyRequests ||
		ne.StatusCode == http.StatusServiceUnavailable
}
