package aientity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

// Factory creates records of type T from free text. The descriptor is fixed
// per factory; a Factory is safe for concurrent use.
type Factory[T any] struct {
	desc        *SchemaDescriptor
	prompts     PromptBuilder
	invoker     Invoker
	normalizer  Normalizer
	decode      func(Record) (T, error)
	temperature float64
	concurrency int
	log         *slog.Logger
}

// New returns a Factory for struct type T. Field names come from json tags,
// descriptions from ai tags, and model settings from LoadConfig unless
// WithConfig is given.
func New[T any](optFns ...func(*Options)) (*Factory[T], error) {
	opts := collectOptions(optFns)
	s, err := schemaOf[T]()
	if err != nil {
		return nil, err
	}
	cfg, err := resolveConfig(opts, true)
	if err != nil {
		return nil, err
	}
	d, err := NewSchemaDescriptor(s.typeName, s.fields, cfg)
	if err != nil {
		return nil, err
	}
	decode := func(rec Record) (T, error) { return bindStruct[T](rec, s) }
	return newFactory(d, cfg, opts, decode), nil
}

// NewDynamic returns a Factory producing plain Records for d. Model, endpoint
// and credential come from d; other settings from the options.
func NewDynamic(d *SchemaDescriptor, optFns ...func(*Options)) (*Factory[Record], error) {
	if d == nil {
		return nil, fmt.Errorf("%w: descriptor is nil", ErrInvalidSchema)
	}
	opts := collectOptions(optFns)
	cfg, err := resolveConfig(opts, false)
	if err != nil {
		return nil, err
	}
	decode := func(rec Record) (Record, error) { return rec, nil }
	return newFactory(d, cfg, opts, decode), nil
}

func collectOptions(optFns []func(*Options)) Options {
	var opts Options
	for _, fn := range optFns {
		fn(&opts)
	}
	return opts
}

// resolveConfig starts from WithConfig, the environment (fromEnv) or the
// defaults, then applies per-field overrides.
func resolveConfig(opts Options, fromEnv bool) (Config, error) {
	var cfg Config
	switch {
	case opts.Config != nil:
		cfg = *opts.Config
	case fromEnv:
		loaded, err := LoadConfig()
		if err != nil {
			return Config{}, err
		}
		cfg = loaded
	default:
		cfg = DefaultConfig()
	}
	if opts.Model != "" {
		cfg.Model = opts.Model
	}
	if opts.Endpoint != "" {
		cfg.Endpoint = opts.Endpoint
	}
	if opts.APIKey != "" {
		cfg.APIKey = opts.APIKey
	}
	if opts.Temperature != nil {
		cfg.Temperature = *opts.Temperature
	}
	if opts.Timeout > 0 {
		cfg.Timeout = opts.Timeout
	}
	return cfg, cfg.validate()
}

func newFactory[T any](d *SchemaDescriptor, cfg Config, opts Options, decode func(Record) (T, error)) *Factory[T] {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	if len(opts.WrapperKeys) > 0 {
		d = d.WithWrapperKeys(opts.WrapperKeys...)
	}
	prompts := opts.PromptBuilder
	if prompts == nil {
		prompts = DefaultPromptBuilder{}
	}

	inv := opts.Invoker
	if inv == nil {
		client := opts.HTTPClient
		if client == nil {
			client = &http.Client{Timeout: cfg.Timeout}
		}
		observer := opts.Observer
		if observer == nil {
			observer = SlogObserver{Log: log}
		}
		inv = NewHTTPInvoker(client, cfg.Temperature, observer)
	}
	if opts.MaxAttempts > 1 {
		inv = &retryInvoker{next: inv, attempts: opts.MaxAttempts, delay: opts.RetryDelay, log: log}
	}

	n := NewNormalizer(d)
	n.Repair = opts.JSONRepair

	log.Debug("Factory created",
		"type", d.TypeName(),
		"fields", len(d.fields),
		"model", d.Model(),
		"endpoint", d.Endpoint(),
		"wrapper_keys", d.wrapperKeys)

	return &Factory[T]{
		desc:        d,
		prompts:     prompts,
		invoker:     inv,
		normalizer:  n,
		decode:      decode,
		temperature: cfg.Temperature,
		concurrency: opts.Concurrency,
		log:         log,
	}
}

// Descriptor returns the factory's schema descriptor.
func (f *Factory[T]) Descriptor() *SchemaDescriptor { return f.desc }

// CreateOne extracts a single record from text.
func (f *Factory[T]) CreateOne(ctx context.Context, text string) (*T, error) {
	raw, err := f.call(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", f.desc.TypeName(), err)
	}
	obj, err := f.normalizer.ToObject(raw)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", f.desc.TypeName(), err)
	}
	rec, err := ToRecord(obj, f.desc)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", f.desc.TypeName(), err)
	}
	out, err := f.decode(rec)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", f.desc.TypeName(), err)
	}
	f.log.Debug("Record created", "type", f.desc.TypeName())
	return &out, nil
}

// CreateMany extracts a list of records from text. Either every record
// materializes or an error is returned.
func (f *Factory[T]) CreateMany(ctx context.Context, text string) ([]T, error) {
	raw, err := f.call(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("create %s list: %w", f.desc.TypeName(), err)
	}
	arr, err := f.normalizer.ToArray(raw)
	if err != nil {
		return nil, fmt.Errorf("create %s list: %w", f.desc.TypeName(), err)
	}
	recs, err := ToRecords(arr, f.desc)
	if err != nil {
		return nil, fmt.Errorf("create %s list: %w", f.desc.TypeName(), err)
	}
	out := make([]T, 0, len(recs))
	for i, rec := range recs {
		v, err := f.decode(rec)
		if err != nil {
			return nil, fmt.Errorf("create %s list: record %d: %w", f.desc.TypeName(), i, err)
		}
		out = append(out, v)
	}
	f.log.Debug("Records created", "type", f.desc.TypeName(), "count", len(out))
	return out, nil
}

// CreateManyFromSource reads src and extracts a list of records from its content.
func (f *Factory[T]) CreateManyFromSource(ctx context.Context, src Source) ([]T, error) {
	content, err := src.Content(ctx)
	if err != nil {
		var sue *SourceUnavailableError
		if !errors.As(err, &sue) {
			err = &SourceUnavailableError{Source: src.Name(), Err: err}
		}
		return nil, err
	}
	f.log.Debug("Read source", "source", src.Name(), "length", len(content))
	return f.CreateMany(ctx, content)
}

// CreateManyFromSources extracts from every source concurrently and returns
// the records in source order. The first failure cancels the rest.
func (f *Factory[T]) CreateManyFromSources(ctx context.Context, srcs ...Source) ([]T, error) {
	var r Runner
	if f.concurrency > 0 {
		r = NewLimitedRunner(ctx, f.concurrency)
	} else {
		r = DefaultRunner(ctx)
	}
	egCtx := runnerContext(r, ctx)

	results := make([][]T, len(srcs))
	for i, src := range srcs {
		r.Go(func() error {
			recs, err := f.CreateManyFromSource(egCtx, src)
			if err != nil {
				return fmt.Errorf("%s: %w", src.Name(), err)
			}
			results[i] = recs
			return nil
		})
	}
	if err := r.Wait(); err != nil {
		return nil, err
	}

	var out []T
	for _, recs := range results {
		out = append(out, recs...)
	}
	return out, nil
}

// call validates text and performs the model call.
func (f *Factory[T]) call(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyInput
	}
	req, err := NewRequest(f.desc, f.prompts, text)
	if err != nil {
		return "", err
	}
	f.log.Debug("Invoking model", "model", req.Model, "text_length", len(text))
	return f.invoker.Invoke(ctx, req)
}
