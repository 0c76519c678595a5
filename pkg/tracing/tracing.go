// Package tracing 初始化 OpenTelemetry，支持 otlp-http、otlp-grpc 与 zipkin 导出.
//
// 未启用时 otel 使用空实现，StartSpan 仍然可以安全调用.
//
//	if err := tracing.InitTracer(ctx, cfg.Tracing); err != nil {
//		return err
//	}
//	defer tracing.ShutdownTracer(ctx)
//
//	ctx, span := tracing.StartSpan(ctx, "upload.finalize")
//	defer span.End()
package tracing

import (
	"context"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/yeisme/uploadvault/pkg/configs"
)

type exporterFactory func(ctx context.Context, endpoint string) (sdktrace.SpanExporter, error)

var exporters = map[string]exporterFactory{
	"otlp-http": func(ctx context.Context, endpoint string) (sdktrace.SpanExporter, error) {
		return otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(endpoint))
	},
	"otlp-grpc": func(ctx context.Context, endpoint string) (sdktrace.SpanExporter, error) {
		return otlptracegrpc.New(ctx, otlptracegrpc.WithEndpoint(endpoint))
	},
	"zipkin": func(_ context.Context, endpoint string) (sdktrace.SpanExporter, error) {
		return zipkin.New(endpoint)
	},
}

var provider *sdktrace.TracerProvider

// InitTracer 按配置安装全局 TracerProvider 与 W3C 传播器.
func InitTracer(ctx context.Context, cfg configs.TracingConfig) error {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if !cfg.Enabled {
		return nil
	}

	newExporter, ok := exporters[cfg.ExporterType]
	if !ok {
		return fmt.Errorf("tracing: unsupported exporter %q", cfg.ExporterType)
	}

	exporter, err := newExporter(ctx, cfg.Endpoint)
	if err != nil {
		return fmt.Errorf("tracing: create %s exporter: %w", cfg.ExporterType, err)
	}

	attrs := make([]attribute.KeyValue, 0, len(cfg.ResourceLabels)+2)
	attrs = append(attrs,
		semconv.ServiceNameKey.String(cfg.ServiceName),
		semconv.ServiceVersionKey.String(cfg.ServiceVersion),
	)

	for k, v := range cfg.ResourceLabels {
		attrs = append(attrs, attribute.String(k, v))
	}

	res, err := resource.New(ctx, resource.WithAttributes(attrs...))
	if err != nil {
		return fmt.Errorf("tracing: resource: %w", err)
	}

	// 上游已采样的请求跟随上游决定，其余按比例采样.
	provider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter,
			sdktrace.WithBatchTimeout(cfg.BatchTimeout),
			sdktrace.WithMaxExportBatchSize(cfg.MaxBatchSize),
			sdktrace.WithMaxQueueSize(cfg.MaxQueueSize),
		),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRate))),
	)

	otel.SetTracerProvider(provider)

	return nil
}

// ShutdownTracer 刷新并关闭导出器，未启用时为空操作.
func ShutdownTracer(ctx context.Context) error {
	if provider == nil {
		return nil
	}

	return provider.Shutdown(ctx)
}

// StartSpan 在应用 tracer 下开始一个 span，调用方负责 span.End().
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.Tracer(configs.AppName).Start(ctx, name, opts...)
}

// Extract 从请求头中恢复上游的 trace 上下文.
func Extract(ctx context.Context, h http.Header) context.Context {
	return otel.GetTextMapPropagator().Extract(ctx, propagation.HeaderCarrier(h))
}
