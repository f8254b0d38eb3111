package ai

import (
	"context"
	"fmt"
	"time"

	"character-image-generator/backend/internal/models"
	"character-image-generator/backend/pkg/logger"
	"character-image-generator/backend/pkg/resilience"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const instrumentationName = "character-image-generator/backend/ai"

// DefaultCallTimeout bounds a single provider call.
const DefaultCallTimeout = 60 * time.Second

// Options configures an Orchestrator. Every field is optional.
type Options struct {
	CallTimeout time.Duration
	// Limiter paces outbound calls across all requests.
	Limiter *rate.Limiter
	Breaker *resilience.CircuitBreaker
	Mirror  ImageMirror
	Logger  *logger.Logger

	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
}

// Orchestrator fans a prompt out to the image provider and always returns
// one URL per requested slot.
type Orchestrator struct {
	generator   ImageGenerator
	callTimeout time.Duration
	limiter     *rate.Limiter
	breaker     *resilience.CircuitBreaker
	mirror      ImageMirror
	log         *logger.Logger

	tracer    trace.Tracer
	generated metric.Int64Counter
	latency   metric.Float64Histogram
}

// NewOrchestrator builds an orchestrator. A nil generator means no provider
// credential is configured: every slot gets a placeholder and nothing is called.
func NewOrchestrator(generator ImageGenerator, opts Options) (*Orchestrator, error) {
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = DefaultCallTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logger.GetGlobal()
	}
	if opts.TracerProvider == nil {
		opts.TracerProvider = otel.GetTracerProvider()
	}
	if opts.MeterProvider == nil {
		opts.MeterProvider = otel.GetMeterProvider()
	}

	meter := opts.MeterProvider.Meter(instrumentationName)
	generated, err := meter.Int64Counter("images_generated_total",
		metric.WithDescription("Images returned by the orchestrator, by source"))
	if err != nil {
		return nil, fmt.Errorf("create images counter: %w", err)
	}
	latency, err := meter.Float64Histogram("image_generation_seconds",
		metric.WithDescription("Latency of single image provider calls"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("create latency histogram: %w", err)
	}

	return &Orchestrator{
		generator:   generator,
		callTimeout: opts.CallTimeout,
		limiter:     opts.Limiter,
		breaker:     opts.Breaker,
		mirror:      opts.Mirror,
		log:         opts.Logger.WithComponent("image-orchestrator"),
		tracer:      opts.TracerProvider.Tracer(instrumentationName),
		generated:   generated,
		latency:     latency,
	}, nil
}

// Enabled reports whether a provider is configured.
func (o *Orchestrator) Enabled() bool {
	return o.generator != nil
}

// Generate returns exactly count results. Provider failures are replaced by
// the placeholder for that slot and never returned.
func (o *Orchestrator) Generate(ctx context.Context, prompt string, count int) []GeneratedURL {
	if count <= 0 {
		return []GeneratedURL{}
	}

	ctx, span := o.tracer.Start(ctx, "ai.Generate", trace.WithAttributes(
		attribute.Int("image.count", count),
		attribute.Bool("image.provider_enabled", o.generator != nil),
	))
	defer span.End()

	results := make([]GeneratedURL, count)

	if o.generator == nil {
		for i := range results {
			results[i] = placeholderResult(i)
		}
		o.generated.Add(ctx, int64(count), metric.WithAttributes(sourceAttr(models.ImageSourcePlaceholder)))
		o.log.Debug("No image provider configured, returning placeholders", "count", count)
		return results
	}

	// A plain group: one failed slot must not cancel its siblings.
	var eg errgroup.Group
	for i := range results {
		eg.Go(func() error {
			results[i] = o.generateSlot(ctx, prompt, i)
			return nil
		})
	}
	_ = eg.Wait()

	return results
}

func (o *Orchestrator) generateSlot(ctx context.Context, prompt string, slot int) GeneratedURL {
	ctx, span := o.tracer.Start(ctx, "ai.GenerateImage", trace.WithAttributes(attribute.Int("image.slot", slot)))
	defer span.End()

	start := time.Now()
	url, err := o.callProvider(ctx, prompt)
	o.latency.Record(ctx, time.Since(start).Seconds())

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "image generation failed")
		o.log.Warn("Image generation failed, using placeholder",
			"slot", slot,
			"error", err.Error(),
			"duration", time.Since(start).Round(time.Millisecond).String(),
		)
		o.generated.Add(ctx, 1, metric.WithAttributes(sourceAttr(models.ImageSourcePlaceholder)))
		return placeholderResult(slot)
	}

	if o.mirror != nil {
		mirrored, err := o.mirror.Mirror(ctx, url)
		if err != nil {
			o.log.LogError(err, "Failed to mirror generated image, keeping provider url", "slot", slot)
		} else {
			url = mirrored
		}
	}

	o.generated.Add(ctx, 1, metric.WithAttributes(sourceAttr(models.ImageSourceModel)))
	return GeneratedURL{URL: url, Source: models.ImageSourceModel}
}

func (o *Orchestrator) callProvider(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.callTimeout)
	defer cancel()

	if o.limiter != nil {
		if err := o.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("wait for provider rate limit: %w", err)
		}
	}

	var url string
	call := func() error {
		var err error
		url, err = o.generator.GenerateImage(ctx, prompt)
		return err
	}

	var err error
	if o.breaker != nil {
		err = o.breaker.Execute(call)
	} else {
		err = call()
	}
	return url, err
}

func placeholderResult(slot int) GeneratedURL {
	return GeneratedURL{URL: PlaceholderAt(slot), Source: models.ImageSourcePlaceholder}
}

func sourceAttr(source models.ImageSource) attribute.KeyValue {
	return attribute.String("source", string(source))
}
