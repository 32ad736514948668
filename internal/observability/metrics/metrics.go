package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	receiptsSynced     metric.Int64Counter
	syncErrors         metric.Int64Counter
	forecastsGenerated metric.Int64Counter
	productCacheHits   metric.Int64Counter
	productCacheMisses metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "pantrysense"
	}
	meter := provider.Meter(name)

	receiptsSynced, err := meter.Int64Counter("pantrysense_receipts_synced_total")
	if err != nil {
		return nil, err
	}
	syncErrors, err := meter.Int64Counter("pantrysense_sync_errors_total")
	if err != nil {
		return nil, err
	}
	forecastsGenerated, err := meter.Int64Counter("pantrysense_forecasts_generated_total")
	if err != nil {
		return nil, err
	}
	productCacheHits, err := meter.Int64Counter("pantrysense_product_cache_hits_total")
	if err != nil {
		return nil, err
	}
	productCacheMisses, err := meter.Int64Counter("pantrysense_product_cache_misses_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		receiptsSynced:     receiptsSynced,
		syncErrors:         syncErrors,
		forecastsGenerated: forecastsGenerated,
		productCacheHits:   productCacheHits,
		productCacheMisses: productCacheMisses,
	}, nil
}

// RecordReceiptSynced increments synced receipt counts.
func (m *Metrics) RecordReceiptSynced(ctx context.Context, mode string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("mode", strings.TrimSpace(mode)))
	m.receiptsSynced.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordSyncError increments sync error counts.
func (m *Metrics) RecordSyncError(ctx context.Context, stage string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("stage", strings.TrimSpace(stage)))
	m.syncErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordForecastGenerated increments forecast generation counts.
func (m *Metrics) RecordForecastGenerated(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("kind", strings.TrimSpace(kind)))
	m.forecastsGenerated.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordProductCacheHit increments product cache hit counts.
func (m *Metrics) RecordProductCacheHit(ctx context.Context, lookup string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("lookup", strings.TrimSpace(lookup)))
	m.productCacheHits.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordProductCacheMiss increments product cache miss counts.
func (m *Metrics) RecordProductCacheMiss(ctx context.Context, lookup string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("lookup", strings.TrimSpace(lookup)))
	m.productCacheMisses.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"mode":        {},
	"stage":       {},
	"kind":        {},
	"lookup":      {},
	"endpoint":    {},
	"status_code": {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
