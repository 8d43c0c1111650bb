/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package stream

import (
	"context"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const (
	otelScope       = "estatesync/stream"
	metricOpened    = "estatesync.stream.subscriptions.opened"
	metricEmitted   = "estatesync.stream.emissions"
	metricFailures  = "estatesync.stream.failures"
	metricDiscarded = "estatesync.stream.emissions.discarded"
	metricCancelled = "estatesync.stream.subscriptions.cancelled"
)

// instruments are always non-nil; they are no-ops when telemetry is disabled.
type instruments struct {
	opened    metric.Int64Counter
	emitted   metric.Int64Counter
	failures  metric.Int64Counter
	discarded metric.Int64Counter
	cancelled metric.Int64Counter
}

var (
	instOnce sync.Once
	inst     instruments
)

func getInstruments() *instruments {
	instOnce.Do(func() {
		meter := otel.Meter(otelScope)
		mustCounter := func(name, desc string) metric.Int64Counter {
			c, err := meter.Int64Counter(name, metric.WithDescription(desc))
			if err != nil {
				slog.Default().Error("creating OTel counter", "name", name, "error", err)
				return noop.Int64Counter{}
			}
			return c
		}
		inst = instruments{
			opened:    mustCounter(metricOpened, "Number of stream subscriptions opened"),
			emitted:   mustCounter(metricEmitted, "Number of envelopes queued for consumers"),
			failures:  mustCounter(metricFailures, "Number of Failure envelopes queued for consumers"),
			discarded: mustCounter(metricDiscarded, "Number of envelopes dropped after cancellation or completion"),
			cancelled: mustCounter(metricCancelled, "Number of subscriptions cancelled by consumers"),
		}
	})
	return &inst
}

func (i *instruments) add(c metric.Int64Counter, name string) {
	c.Add(context.Background(), 1, metric.WithAttributes(attribute.String("stream.name", name)))
}
