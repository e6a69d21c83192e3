// Copyright (c) 2025 dbpunk-labs
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package tracer

import (
	"context"
	"strconv"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	_service = "db3node"
	_tracer  = "github.com/dbpunk-labs/db3"
)

type (
	// Config is the config of the tracer provider
	Config struct {
		// ServiceName is the name of the service
		ServiceName string `yaml:"serviceName"`
		// EndPoint is the jaeger collector endpoint, tracing is off when empty
		EndPoint string `yaml:"endpoint"`
		// InstanceID identifies this node among the service instances
		InstanceID string `yaml:"instanceID"`
		// SamplingRatio is the ratio of traces sampled, in [0, 1], empty samples everything
		SamplingRatio string `yaml:"samplingRatio"`
	}

	optionParams struct {
		serviceName   string
		endpoint      string
		instanceID    string
		samplingRatio string
	}

	// Option is the option of the tracer provider
	Option func(ops *optionParams) error
)

// WithServiceName defines the name of the service
func WithServiceName(name string) Option {
	return func(ops *optionParams) error {
		ops.serviceName = name
		return nil
	}
}

// WithEndpoint defines the jaeger collector endpoint
func WithEndpoint(endpoint string) Option {
	return func(ops *optionParams) error {
		ops.endpoint = endpoint
		return nil
	}
}

// WithInstanceID defines the instance id of the node
func WithInstanceID(id string) Option {
	return func(ops *optionParams) error {
		ops.instanceID = id
		return nil
	}
}

// WithSamplingRatio defines the sampling ratio
func WithSamplingRatio(ratio string) Option {
	return func(ops *optionParams) error {
		ops.samplingRatio = ratio
		return nil
	}
}

// NewProvider returns a tracer provider exporting to jaeger, nil when no endpoint is set.
// The provider is also installed as the global one.
func NewProvider(opts ...Option) (*tracesdk.TracerProvider, error) {
	ops := optionParams{serviceName: _service}
	for _, opt := range opts {
		if err := opt(&ops); err != nil {
			return nil, err
		}
	}
	if ops.endpoint == "" {
		return nil, nil
	}
	sampler := tracesdk.AlwaysSample()
	if ops.samplingRatio != "" {
		ratio, err := strconv.ParseFloat(ops.samplingRatio, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid sampling ratio %s", ops.samplingRatio)
		}
		sampler = tracesdk.ParentBased(tracesdk.TraceIDRatioBased(ratio))
	}
	exp, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(ops.endpoint)))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create jaeger exporter")
	}
	attrs := []attribute.KeyValue{semconv.ServiceName(ops.serviceName)}
	if ops.instanceID != "" {
		attrs = append(attrs, attribute.String("service.instance.id", ops.instanceID))
	}
	tp := tracesdk.NewTracerProvider(
		tracesdk.WithBatcher(exp),
		tracesdk.WithSampler(sampler),
		tracesdk.WithResource(resource.NewWithAttributes(semconv.SchemaURL, attrs...)),
	)
	otel.SetTracerProvider(tp)
	return tp, nil
}

// NewProviderFromConfig returns the tracer provider of cfg
func NewProviderFromConfig(cfg Config) (*tracesdk.TracerProvider, error) {
	opts := []Option{
		WithEndpoint(cfg.EndPoint),
		WithInstanceID(cfg.InstanceID),
		WithSamplingRatio(cfg.SamplingRatio),
	}
	if cfg.ServiceName != "" {
		opts = append(opts, WithServiceName(cfg.ServiceName))
	}
	return NewProvider(opts...)
}

// NewSpan starts a span from the global tracer provider
func NewSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.Tracer(_tracer).Start(ctx, name, opts...)
}
