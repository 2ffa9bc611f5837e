package telemetry

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"

	"github.com/fairyhunter13/storefront/internal/model"
)

// InitMeterProvider installs a Prometheus-backed MeterProvider.
// It returns the /metrics handler and a shutdown function.
func InitMeterProvider(serviceName, serviceVersion string) (http.Handler, func(context.Context) error, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, nil, err
	}

	mp := metric.NewMeterProvider(
		metric.WithReader(exporter),
		metric.WithResource(newResource(serviceName, serviceVersion)),
	)
	otel.SetMeterProvider(mp)

	return promhttp.Handler(), mp.Shutdown, nil
}

// CheckoutMetrics counts checkout attempts by outcome and records settled totals.
type CheckoutMetrics struct {
	attempts otelmetric.Int64Counter
	totals   otelmetric.Int64Histogram
	discount otelmetric.Int64Counter
}

// NewCheckoutMetrics registers the checkout instruments on mp.
func NewCheckoutMetrics(mp otelmetric.MeterProvider) (*CheckoutMetrics, error) {
	meter := mp.Meter("service/checkout")

	attempts, err := meter.Int64Counter("storefront.checkout.attempts",
		otelmetric.WithDescription("Checkout attempts by outcome"))
	if err != nil {
		return nil, err
	}
	totals, err := meter.Int64Histogram("storefront.checkout.total",
		otelmetric.WithDescription("Settled order totals"),
		otelmetric.WithUnit("{currency}"),
		otelmetric.WithExplicitBucketBoundaries(1_000, 10_000, 50_000, 100_000, 500_000, 1_000_000, 5_000_000))
	if err != nil {
		return nil, err
	}
	discount, err := meter.Int64Counter("storefront.checkout.discount",
		otelmetric.WithDescription("Coupon discount granted on committed orders"),
		otelmetric.WithUnit("{currency}"))
	if err != nil {
		return nil, err
	}

	return &CheckoutMetrics{attempts: attempts, totals: totals, discount: discount}, nil
}

// RecordCheckout counts one attempt. Amounts are recorded only when a breakdown is present.
func (m *CheckoutMetrics) RecordCheckout(ctx context.Context, outcome string, breakdown *model.Breakdown) {
	m.attempts.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("outcome", outcome)))
	if breakdown == nil {
		return
	}

	coupon := "none"
	if breakdown.Applied != nil {
		coupon = string(breakdown.Applied.Kind)
	}
	attrs := otelmetric.WithAttributes(attribute.String("coupon_kind", coupon))
	m.totals.Record(ctx, breakdown.Total, attrs)
	if breakdown.Discount > 0 {
		m.discount.Add(ctx, breakdown.Discount, attrs)
	}
}
