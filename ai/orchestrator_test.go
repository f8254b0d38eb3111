package ai

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"character-image-generator/backend/internal/models"
	"character-image-generator/backend/pkg/logger"
	"character-image-generator/backend/pkg/resilience"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// fakeGenerator delegates to fn with the 1-based call number.
type fakeGenerator struct {
	calls atomic.Int32
	fn    func(ctx context.Context, n int) (string, error)
}

func (f *fakeGenerator) GenerateImage(ctx context.Context, _ string) (string, error) {
	n := int(f.calls.Add(1))
	return f.fn(ctx, n)
}

type fakeMirror struct {
	err error
}

func (m fakeMirror) Mirror(_ context.Context, src string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return "https://bucket.example/" + src[len("https://img.example/"):], nil
}

func newTestOrchestrator(t *testing.T, gen ImageGenerator, opts Options) *Orchestrator {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}
	o, err := NewOrchestrator(gen, opts)
	require.NoError(t, err)
	return o
}

func urls(results []GeneratedURL) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.URL
	}
	return out
}

func TestGenerate_NoProviderReturnsPlaceholdersInOrder(t *testing.T) {
	o := newTestOrchestrator(t, nil, Options{})

	results := o.Generate(context.Background(), "a knight", 3)

	assert.Equal(t, []string{
		"https://placehold.co/512x512?text=Character+1",
		"https://placehold.co/512x512?text=Character+2",
		"https://placehold.co/512x512?text=Character+3",
	}, urls(results))
	for _, r := range results {
		assert.Equal(t, models.ImageSourcePlaceholder, r.Source)
	}
	assert.False(t, o.Enabled())
}

func TestGenerate_NoProviderWrapsPlaceholders(t *testing.T) {
	o := newTestOrchestrator(t, nil, Options{})

	results := o.Generate(context.Background(), "p", 5)

	require.Len(t, results, 5)
	assert.Equal(t, Placeholders[0], results[3].URL)
	assert.Equal(t, Placeholders[1], results[4].URL)
}

func TestGenerate_ZeroCount(t *testing.T) {
	o := newTestOrchestrator(t, nil, Options{})
	assert.Empty(t, o.Generate(context.Background(), "p", 0))
}

func TestGenerate_AllSucceed(t *testing.T) {
	gen := &fakeGenerator{fn: func(_ context.Context, n int) (string, error) {
		return fmt.Sprintf("https://img.example/%d.png", n), nil
	}}
	o := newTestOrchestrator(t, gen, Options{})

	results := o.Generate(context.Background(), "p", 4)

	require.Len(t, results, 4)
	seen := map[string]bool{}
	for _, r := range results {
		assert.Equal(t, models.ImageSourceModel, r.Source)
		seen[r.URL] = true
	}
	assert.Len(t, seen, 4)
	assert.EqualValues(t, 4, gen.calls.Load())
}

func TestGenerate_AllFailStillReturnsCount(t *testing.T) {
	gen := &fakeGenerator{fn: func(context.Context, int) (string, error) {
		return "", &ExternalError{StatusCode: 500, Message: "boom"}
	}}
	o := newTestOrchestrator(t, gen, Options{})

	results := o.Generate(context.Background(), "p", 4)

	assert.Equal(t, []string{Placeholders[0], Placeholders[1], Placeholders[2], Placeholders[0]}, urls(results))
}

func TestGenerate_FailedSlotDoesNotAffectOthers(t *testing.T) {
	var mu sync.Mutex
	failed := false
	gen := &fakeGenerator{fn: func(context.Context, int) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		if !failed {
			failed = true
			return "", errors.New("first call fails")
		}
		return "https://img.example/ok.png", nil
	}}
	o := newTestOrchestrator(t, gen, Options{})

	results := o.Generate(context.Background(), "p", 3)

	placeholders, fromModel := 0, 0
	for i, r := range results {
		if r.Source == models.ImageSourcePlaceholder {
			placeholders++
			assert.Equal(t, PlaceholderAt(i), r.URL)
		} else {
			fromModel++
			assert.Equal(t, "https://img.example/ok.png", r.URL)
		}
	}
	assert.Equal(t, 1, placeholders)
	assert.Equal(t, 2, fromModel)
}

func TestGenerate_CallTimeoutYieldsPlaceholder(t *testing.T) {
	gen := &fakeGenerator{fn: func(ctx context.Context, _ int) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}
	o := newTestOrchestrator(t, gen, Options{CallTimeout: 20 * time.Millisecond})

	start := time.Now()
	results := o.Generate(context.Background(), "p", 2)

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, []string{Placeholders[0], Placeholders[1]}, urls(results))
}

func TestGenerate_MirrorRewritesURL(t *testing.T) {
	gen := &fakeGenerator{fn: func(context.Context, int) (string, error) {
		return "https://img.example/a.png", nil
	}}

	mirrored := newTestOrchestrator(t, gen, Options{Mirror: fakeMirror{}})
	assert.Equal(t, "https://bucket.example/a.png", mirrored.Generate(context.Background(), "p", 1)[0].URL)

	failing := newTestOrchestrator(t, gen, Options{Mirror: fakeMirror{err: errors.New("s3 down")}})
	result := failing.Generate(context.Background(), "p", 1)[0]
	assert.Equal(t, "https://img.example/a.png", result.URL)
	assert.Equal(t, models.ImageSourceModel, result.Source)
}

func TestGenerate_OpenBreakerSkipsProvider(t *testing.T) {
	gen := &fakeGenerator{fn: func(context.Context, int) (string, error) {
		return "", errors.New("down")
	}}
	breaker := resilience.NewCircuitBreaker(resilience.Config{Name: "images", FailureThreshold: 1, Cooldown: time.Hour}, logger.Discard())
	o := newTestOrchestrator(t, gen, Options{Breaker: breaker})

	o.Generate(context.Background(), "p", 1)
	require.Equal(t, resilience.StateOpen, breaker.State())

	results := o.Generate(context.Background(), "p", 2)
	assert.Equal(t, []string{Placeholders[0], Placeholders[1]}, urls(results))
	assert.EqualValues(t, 1, gen.calls.Load())
}

func TestGenerate_RecordsMetricsAndSpans(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	var n atomic.Int32
	gen := &fakeGenerator{fn: func(context.Context, int) (string, error) {
		if n.Add(1) == 1 {
			return "", errors.New("fail once")
		}
		return "https://img.example/x.png", nil
	}}
	o := newTestOrchestrator(t, gen, Options{MeterProvider: mp, TracerProvider: tp})

	o.Generate(context.Background(), "p", 3)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	bySource := map[string]int64{}
	var histogramCount uint64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					source, _ := dp.Attributes.Value("source")
					bySource[source.AsString()] += dp.Value
				}
			case metricdata.Histogram[float64]:
				for _, dp := range data.DataPoints {
					histogramCount += dp.Count
				}
			}
		}
	}
	assert.Equal(t, map[string]int64{"model": 2, "placeholder": 1}, bySource)
	assert.EqualValues(t, 3, histogramCount)

	names := map[string]int{}
	for _, s := range recorder.Ended() {
		names[s.Name()]++
	}
	assert.Equal(t, 1, names["ai.Generate"])
	assert.Equal(t, 3, names["ai.GenerateImage"])
}
