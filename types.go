package aientity

import (
	"log/slog"
	"time"
)

// Runner lets a Factory schedule per-source work with any concurrency model.
type Runner interface {
	Go(fn func() error) // schedule
	Wait() error        // join / propagate first err
}

// Options represents functional options for a Factory
type Options struct {
	Config        *Config       // nil → LoadConfig() from the environment
	Model         string        // overrides Config.Model
	Endpoint      string        // overrides Config.Endpoint
	APIKey        string        // overrides Config.APIKey
	Temperature   *float64      // overrides Config.Temperature
	Timeout       time.Duration // overrides Config.Timeout
	HTTPClient    HTTPDoer      // nil → &http.Client{Timeout: Timeout}
	Invoker       Invoker       // nil → HTTPInvoker
	PromptBuilder PromptBuilder // nil → DefaultPromptBuilder
	Observer      Observer      // nil → SlogObserver
	MaxAttempts   uint          // 0 or 1 → single attempt
	RetryDelay    time.Duration // initial backoff between attempts
	WrapperKeys   []string      // nil → descriptor defaults
	JSONRepair    bool          // repair malformed replies before failing
	Concurrency   int           // CreateManyFromSources parallelism, 0 → NumCPU
	Logger        *slog.Logger  // nil → slog.Default()
}

// Functional option constructors
func WithConfig(cfg Config) func(*Options) {
	return func(o *Options) { o.Config = &cfg }
}

func WithModel(name string) func(*Options) {
	return func(o *Options) { o.Model = name }
}

func WithEndpoint(url string) func(*Options) {
	return func(o *Options) { o.Endpoint = url }
}

func WithAPIKey(key string) func(*Options) {
	return func(o *Options) { o.APIKey = key }
}

func WithTemperature(t float64) func(*Options) {
	return func(o *Options) { o.Temperature = &t }
}

func WithTimeout(d time.Duration) func(*Options) {
	return func(o *Options) { o.Timeout = d }
}

func WithHTTPClient(c HTTPDoer) func(*Options) {
	return func(o *Options) { o.HTTPClient = c }
}

func WithInvoker(inv Invoker) func(*Options) {
	return func(o *Options) { o.Invoker = inv }
}

func WithPromptBuilder(pb PromptBuilder) func(*Options) {
	return func(o *Options) { o.PromptBuilder = pb }
}

func WithObserver(obs Observer) func(*Options) {
	return func(o *Options) { o.Observer = obs }
}

// WithRetry allows up to attempts calls per extraction, with exponential
// backoff starting at delay. Only transport failures, 429 and 5xx responses
// are retried.
func WithRetry(attempts uint, delay time.Duration) func(*Options) {
	return func(o *Options) {
		o.MaxAttempts = attempts
		o.RetryDelay = delay
	}
}

func WithWrapperKeys(keys ...string) func(*Options) {
	return func(o *Options) { o.WrapperKeys = keys }
}

func WithJSONRepair() func(*Options) {
	return func(o *Options) { o.JSONRepair = true }
}

func WithConcurrency(n int) func(*Options) {
	return func(o *Options) { o.Concurrency = n }
}

func WithLogger(l *slog.Logger) func(*Options) {
	return func(o *Options) { o.Logger = l }
}
