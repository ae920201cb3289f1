package battle

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const instrumentationName = "github.com/qnkhuat/battlechess/pkg/battle"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

type metrics struct {
	moves   metric.Int64Counter
	battles metric.Int64Counter
	pending metric.Int64UpDownCounter
}

func newMetrics() *metrics {
	m := meter()
	fallback := noop.NewMeterProvider().Meter(instrumentationName)

	moves, err := m.Int64Counter("battlechess.moves",
		metric.WithDescription("Moves submitted to the sequencer, by result"))
	if err != nil {
		moves, _ = fallback.Int64Counter("battlechess.moves")
	}
	battles, err := m.Int64Counter("battlechess.battles",
		metric.WithDescription("Captures turned into battle presentations"))
	if err != nil {
		battles, _ = fallback.Int64Counter("battlechess.battles")
	}
	pending, err := m.Int64UpDownCounter("battlechess.battles.pending",
		metric.WithDescription("Battles waiting behind the active one"))
	if err != nil {
		pending, _ = fallback.Int64UpDownCounter("battlechess.battles.pending")
	}
	return &metrics{moves: moves, battles: battles, pending: pending}
}

func (m *metrics) move(result string) {
	m.moves.Add(context.Background(), 1, metric.WithAttributes(attribute.String("result", result)))
}

func (m *metrics) battle() {
	m.battles.Add(context.Background(), 1)
}

func (m *metrics) queueDelta(n int) {
	if n != 0 {
		m.pending.Add(context.Background(), int64(n))
	}
}
