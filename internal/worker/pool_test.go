package worker_test

import (
	"context"
	"math/rand/v2"
	"sitemapcheck/internal/worker"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newPool(t *testing.T, opts worker.Options) *worker.Pool {
	t.Helper()
	p, err := worker.New(opts)
	require.NoError(t, err)

	return p
}

func TestMap_preservesOrder(t *testing.T) {
	for _, concurrency := range []int{1, 2, 7, 50} {
		p := newPool(t, worker.Options{Concurrency: concurrency})

		items := make([]int, 40)
		for i := range items {
			items[i] = i
		}

		var calls int
		res, err := worker.Map(context.Background(), p, items, func(_ context.Context, i int) int {
			time.Sleep(time.Duration(rand.IntN(3)) * time.Millisecond)

			return i * 10
		}, func(int) { calls++ })
		require.NoError(t, err)
		require.Len(t, res, len(items))
		for i, r := range res {
			require.Equal(t, i*10, r)
		}
		require.Equal(t, len(items), calls)
	}
}

func TestMap_respectsConcurrencyCap(t *testing.T) {
	p := newPool(t, worker.Options{Concurrency: 3})

	var current, peak atomic.Int32
	_, err := worker.Map(context.Background(), p, make([]struct{}, 30), func(context.Context, struct{}) bool {
		n := current.Add(1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		current.Add(-1)

		return true
	}, nil)
	require.NoError(t, err)
	require.LessOrEqual(t, peak.Load(), int32(3))
	require.Positive(t, peak.Load())
}

func TestMap_empty(t *testing.T) {
	p := newPool(t, worker.Options{Concurrency: 2})

	res, err := worker.Map(context.Background(), p, nil, func(context.Context, string) int {
		t.Fatal("fn must not be called")

		return 0
	}, nil)
	require.NoError(t, err)
	require.Empty(t, res)
}

func TestMap_delaySpacesDispatches(t *testing.T) {
	p := newPool(t, worker.Options{Concurrency: 10, Delay: 20 * time.Millisecond})

	var (
		mu     sync.Mutex
		starts []time.Time
	)
	_, err := worker.Map(context.Background(), p, make([]int, 4), func(context.Context, int) int {
		mu.Lock()
		starts = append(starts, time.Now())
		mu.Unlock()

		return 0
	}, nil)
	require.NoError(t, err)
	require.Len(t, starts, 4)
	// three gaps of at least ~20ms each.
	require.GreaterOrEqual(t, starts[len(starts)-1].Sub(starts[0]), 50*time.Millisecond)
}

func TestMap_cancelStopsDispatch(t *testing.T) {
	p := newPool(t, worker.Options{Concurrency: 1})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var ran atomic.Int32
	res, err := worker.Map(ctx, p, []int{1, 2, 3, 4, 5}, func(context.Context, int) int {
		if ran.Add(1) == 2 {
			cancel()
		}

		return 1
	}, nil)
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, res, 5)
	require.Less(t, ran.Load(), int32(5))
}

func TestMap_exportsInstruments(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	p := newPool(t, worker.Options{Concurrency: 2, MeterProvider: provider})

	_, err := worker.Map(context.Background(), p, []int{1, 2, 3}, func(_ context.Context, i int) int { return i }, nil)
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	values := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				values[m.Name] += dp.Value
			}
		}
	}
	require.Equal(t, int64(3), values["worker.dispatched"])
	require.Equal(t, int64(0), values["worker.inflight"])
}
