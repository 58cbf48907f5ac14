package fxpulse

import (
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/fxpulse/fxpulse/breaker"
	"github.com/fxpulse/fxpulse/probe"
	"github.com/fxpulse/fxpulse/quote"
	"github.com/fxpulse/fxpulse/retry"
	"github.com/fxpulse/fxpulse/volatility"
)

// settings holds the internal configuration assembled via functional options.
type settings struct {
	logger         zerolog.Logger
	tracerProvider trace.TracerProvider
	probe          probe.Probe
	retryOpts      retry.Options
	fetchTimeout   time.Duration
	coalesceWindow time.Duration
	breakerCfg     breaker.Config
	volCfg         volatility.Config
	fetchLimiter   *rate.Limiter
	fallback       *quote.Value
	fallbackNote   string
}

// Option configures a Service.
type Option func(*settings)

// WithLogger sets the structured logger. The default logger is silent.
func WithLogger(log zerolog.Logger) Option {
	return func(s *settings) { s.logger = log }
}

// WithTracerProvider sets the OpenTelemetry tracer provider. The global
// provider is used when unset.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *settings) { s.tracerProvider = tp }
}

// WithProbe sets the connectivity probe. Without one the service assumes it
// is online.
func WithProbe(p probe.Probe) Option {
	return func(s *settings) { s.probe = p }
}

// WithRetryOptions overrides the retry behaviour of remote fetches.
func WithRetryOptions(opts retry.Options) Option {
	return func(s *settings) { s.retryOpts = opts }
}

// WithFetchTimeout bounds a single remote fetch attempt.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *settings) { s.fetchTimeout = d }
}

// WithCoalesceWindow sets how long a settled refresh keeps being shared with
// late callers.
func WithCoalesceWindow(d time.Duration) Option {
	return func(s *settings) { s.coalesceWindow = d }
}

// WithBreaker overrides the circuit breaker parameters guarding the remote
// source.
func WithBreaker(cfg breaker.Config) Option {
	return func(s *settings) { s.breakerCfg = cfg }
}

// WithVolatility overrides the volatility estimator calibration.
func WithVolatility(cfg volatility.Config) Option {
	return func(s *settings) { s.volCfg = cfg }
}

// WithFetchLimit caps background refreshes at rps fetches per second with the
// given burst.
func WithFetchLimit(rps float64, burst int) Option {
	return func(s *settings) { s.fetchLimiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

// WithEmergencyFallback supplies the synthetic placeholder served, explicitly
// flagged, when every tier and the remote source have failed. note is the
// human-readable warning attached to it.
func WithEmergencyFallback(value quote.Value, note string) Option {
	return func(s *settings) {
		v := value
		s.fallback = &v
		s.fallbackNote = note
	}
}
