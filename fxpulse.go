// Package fxpulse serves the tracked exchange rate cheaply, quickly, and
// correctly even when the remote source, the persistence tiers, or both are
// down. A lookup reads the tiered cache, classifies the entry's freshness,
// decides whether a refresh is needed, and shapes the resulting remote call
// through coalescing, a circuit breaker, retries, and a deadline. On total
// failure it degrades to the best stale entry, then to an explicitly flagged
// synthetic placeholder.
package fxpulse

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/fxpulse/fxpulse/breaker"
	"github.com/fxpulse/fxpulse/coalesce"
	"github.com/fxpulse/fxpulse/errclass"
	"github.com/fxpulse/fxpulse/freshness"
	"github.com/fxpulse/fxpulse/policy"
	"github.com/fxpulse/fxpulse/probe"
	"github.com/fxpulse/fxpulse/quote"
	"github.com/fxpulse/fxpulse/retry"
	"github.com/fxpulse/fxpulse/source"
	"github.com/fxpulse/fxpulse/store"
	"github.com/fxpulse/fxpulse/timeout"
	"github.com/fxpulse/fxpulse/volatility"
)

// Result is the caller-visible outcome of a lookup.
type Result struct {
	Value quote.Value `json:"value"`

	// Freshness classifies the value's age at read time.
	Freshness freshness.Tier `json:"-"`

	// Origin names the tier that served the value; empty when the value came
	// straight from a refresh.
	Origin store.TierID `json:"origin,omitempty"`

	// FromMemory marks values served by the in-process tier.
	FromMemory bool `json:"from_memory,omitempty"`

	// Refreshed marks values obtained from the remote source during this
	// lookup.
	Refreshed bool `json:"refreshed,omitempty"`

	// EmergencyFallback marks the synthetic placeholder served when every
	// real data source failed. Warning carries the human-readable notice.
	EmergencyFallback bool   `json:"emergency_fallback,omitempty"`
	Warning           string `json:"warning,omitempty"`
}

// Service is the lookup front end over the tiered store and the remote
// source. Construct it with New; the zero value is not usable.
type Service struct {
	key    string
	tiers  *store.Tiered
	src    source.Source
	fresh  *freshness.Engine
	vol    *volatility.Estimator
	brk    *breaker.Breaker
	group  *coalesce.Group[quote.Value]
	probe  probe.Probe
	gate   *rate.Limiter
	retry  retry.Options
	budget time.Duration
	log    zerolog.Logger
	tracer trace.Tracer

	fallback     *quote.Value
	fallbackNote string
}

// New creates a Service tracking one currency pair. pair doubles as the cache
// key, tiers is the tiered store (its freshness engine should be fresh), and
// src is the remote source.
func New(pair string, tiers *store.Tiered, src source.Source, fresh *freshness.Engine, opts ...Option) *Service {
	cfg := settings{
		logger:         zerolog.Nop(),
		retryOpts:      retry.DefaultOptions(),
		fetchTimeout:   10 * time.Second,
		coalesceWindow: 2 * time.Second,
		breakerCfg:     breaker.DefaultConfig(),
		volCfg:         volatility.DefaultConfig(),
	}
	for _, o := range opts {
		o(&cfg)
	}

	tp := cfg.tracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	retryOpts := cfg.retryOpts
	retryOpts.Logger = cfg.logger

	return &Service{
		key:          "rate:" + pair,
		tiers:        tiers,
		src:          src,
		fresh:        fresh,
		vol:          volatility.NewEstimator(cfg.volCfg),
		brk:          breaker.New(cfg.breakerCfg, cfg.logger),
		group:        coalesce.NewGroup[quote.Value](cfg.coalesceWindow),
		probe:        cfg.probe,
		gate:         cfg.fetchLimiter,
		retry:        retryOpts,
		budget:       cfg.fetchTimeout,
		log:          cfg.logger,
		tracer:       tp.Tracer("github.com/fxpulse/fxpulse"),
		fallback:     cfg.fallback,
		fallbackNote: cfg.fallbackNote,
	}
}

// Lookup returns the current rate. It prefers the freshest cached value,
// refreshes from the remote source when the policy demands it, and falls back
// to stale data or (when configured) the flagged placeholder once everything
// else has failed. The returned error is non-nil only when no value at all
// can be served.
func (s *Service) Lookup(ctx context.Context) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "fxpulse.Lookup")
	defer span.End()

	entry := s.tiers.Read(ctx, s.key)
	offline := s.offline()
	dec := policy.Decide(entry, offline)

	span.SetAttributes(
		attribute.String("refresh.reason", string(dec.Reason)),
		attribute.Bool("offline", offline),
	)

	if !dec.Refresh {
		return entryResult(entry), nil
	}

	if offline {
		// The decision reports the refresh need truthfully; being offline
		// only suppresses the network attempt. Serve the cache regardless of
		// tier or freshness.
		if entry != nil {
			staleServes.WithLabelValues(entry.Freshness.String()).Inc()
			return entryResult(entry), nil
		}
		return s.emergency(span, errclass.New("offline with empty cache", errclass.Network, nil))
	}

	refreshes.WithLabelValues(string(dec.Reason)).Inc()

	if !dec.Immediate {
		// Stale but usable: answer now, refresh in the background within the
		// fetch-rate budget.
		if s.gate == nil || s.gate.Allow() {
			prev := entry.Value
			go func() {
				bctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.budget+time.Minute)
				defer cancel()
				if _, err := s.refresh(bctx, &prev); err != nil {
					s.log.Warn().Err(err).Msg("background refresh failed")
				}
			}()
		}
		staleServes.WithLabelValues(entry.Freshness.String()).Inc()
		return entryResult(entry), nil
	}

	var prev *quote.Value
	if entry != nil {
		v := entry.Value
		prev = &v
	}

	value, err := s.refresh(ctx, prev)
	if err != nil {
		refreshFailures.WithLabelValues(string(errclass.Wrap(err).Kind)).Inc()
		s.log.Warn().Err(err).Str("reason", string(dec.Reason)).Msg("refresh failed")
		if entry != nil {
			// Exhausted the remote source; the stale entry beats nothing.
			staleServes.WithLabelValues(entry.Freshness.String()).Inc()
			return entryResult(entry), nil
		}
		return s.emergency(span, err)
	}

	return &Result{Value: value, Freshness: freshness.Fresh, Refreshed: true}, nil
}

// Refresh forces a coalesced remote fetch and write-through, bypassing the
// policy. Callers debounce or throttle their triggers with the flow package.
func (s *Service) Refresh(ctx context.Context) (quote.Value, error) {
	var prev *quote.Value
	if entry := s.tiers.Read(ctx, s.key); entry != nil {
		v := entry.Value
		prev = &v
	}
	return s.refresh(ctx, prev)
}

// ClearCache removes the tracked value from every tier.
func (s *Service) ClearCache(ctx context.Context) {
	s.tiers.ClearAll(ctx, s.key)
}

// refresh performs one coalesced fetch: concurrent callers for the pair share
// a single remote call and its settlement. On success the new value is
// scored for volatility, given an adaptive TTL, and written through to every
// reachable tier before refresh returns.
func (s *Service) refresh(ctx context.Context, prev *quote.Value) (quote.Value, error) {
	return s.group.Do(ctx, s.key, func(ctx context.Context) (quote.Value, error) {
		ctx, span := s.tracer.Start(ctx, "fxpulse.refresh")
		defer span.End()

		var zero quote.Value

		if !s.brk.Allow() {
			return zero, errclass.New("upstream circuit open", errclass.Network, nil)
		}

		value, err := retry.Do(ctx, s.retry, func(ctx context.Context) (quote.Value, error) {
			return timeout.Do(ctx, s.budget, "rate fetch timed out", s.src.Fetch)
		})
		if err != nil {
			kind := errclass.Wrap(err).Kind
			s.brk.OnFailure(kind)
			span.SetAttributes(attribute.String("error.kind", string(kind)))
			return zero, err
		}
		s.brk.OnSuccess()

		score := s.vol.Score(&value, prev)
		ttl := s.fresh.TTL(score)
		volatilityScore.Set(score)
		span.SetAttributes(
			attribute.Float64("volatility", score),
			attribute.Int64("ttl_ms", ttl.Milliseconds()),
		)

		s.tiers.Write(ctx, s.key, value, ttl)
		s.log.Debug().
			Float64("rate", value.Primary).
			Float64("volatility", score).
			Dur("ttl", ttl).
			Msg("rate refreshed")

		return value, nil
	})
}

// offline reports whether the device is explicitly known to be offline. No
// probe means assume online.
func (s *Service) offline() bool {
	if s.probe == nil {
		return false
	}
	return !s.probe.Online()
}

// emergency serves the configured placeholder, always flagged, or propagates
// err when no placeholder is configured. A fabricated value must never look
// authentic.
func (s *Service) emergency(span trace.Span, err error) (*Result, error) {
	if s.fallback == nil {
		return nil, err
	}
	emergencyFallbacks.Inc()
	span.SetAttributes(attribute.Bool("emergency_fallback", true))

	note := s.fallbackNote
	if note == "" {
		note = "no live or cached rate available; showing a placeholder"
	}
	return &Result{
		Value:             *s.fallback,
		Freshness:         freshness.Expired,
		EmergencyFallback: true,
		Warning:           note,
	}, nil
}

func entryResult(entry *store.Entry) *Result {
	return &Result{
		Value:      entry.Value,
		Freshness:  entry.Freshness,
		Origin:     entry.Origin,
		FromMemory: entry.FromMemory,
	}
}
