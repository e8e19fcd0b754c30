package logger

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

var (
	fetchSuccesses int64
	fetchErrors    int64
	warnCounts     sync.Map // map[string]*int64, keyed by component
	errorCounts    sync.Map // map[string]*int64, keyed by component
)

func recordWarn(component string) {
	v, _ := warnCounts.LoadOrStore(component, new(int64))
	atomic.AddInt64(v.(*int64), 1)
}

func recordError(component string) {
	v, _ := errorCounts.LoadOrStore(component, new(int64))
	atomic.AddInt64(v.(*int64), 1)
}

// IncrementFetchSuccess records one successful feed fetch for the periodic report.
func IncrementFetchSuccess() {
	atomic.AddInt64(&fetchSuccesses, 1)
}

// IncrementFetchError records one failed feed fetch for the periodic report.
func IncrementFetchError() {
	atomic.AddInt64(&fetchErrors, 1)
}

func startReport(ctx context.Context, log *Log, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		for {
			select {
			case <-ctx.Done():
				ticker.Stop()
				return
			case <-ticker.C:
				logReport(ctx, log)
			}
		}
	}()
}

// StartReport begins periodic logging of runtime and feed statistics.
// It exposes the internal startReport function for use by other packages.
func StartReport(ctx context.Context, log *Log, interval time.Duration) {
	startReport(ctx, log, interval)
}

func logReport(ctx context.Context, log *Log) {
	warnData := map[string]int64{}
	warnCounts.Range(func(k, v any) bool {
		warnData[k.(string)] = atomic.LoadInt64(v.(*int64))
		return true
	})
	errorData := map[string]int64{}
	errorCounts.Range(func(k, v any) bool {
		errorData[k.(string)] = atomic.LoadInt64(v.(*int64))
		return true
	})

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	fields := Fields{
		"fetch_successes": atomic.LoadInt64(&fetchSuccesses),
		"fetch_errors":    atomic.LoadInt64(&fetchErrors),
		"warns":           warnData,
		"errors":          errorData,
		"goroutines":      runtime.NumGoroutine(),
		"heap_alloc_mb":   int64(memStats.HeapAlloc) / 1024 / 1024,
	}

	log.WithComponent("report").WithFields(fields).Info("runtime report")

	data := []cwtypes.MetricDatum{
		{MetricName: aws.String("FetchSuccess"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["fetch_successes"].(int64)))},
		{MetricName: aws.String("FetchErrors"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["fetch_errors"].(int64)))},
		{MetricName: aws.String("Goroutines"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(runtime.NumGoroutine()))},
		{MetricName: aws.String("HeapAllocMB"), Unit: cwtypes.StandardUnitMegabytes, Value: aws.Float64(float64(memStats.HeapAlloc) / 1024 / 1024)},
	}

	publishMetrics(ctx, data)
}
