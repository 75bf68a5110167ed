package logger

import (
	"context"
	"os"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type zapLogger struct {
	log *zap.Logger
}

type options struct {
	level  *zapcore.Level
	output zapcore.WriteSyncer
}

type Option func(*options)

// WithLevel overrides the environment default. Unknown names are ignored.
func WithLevel(name string) Option {
	return func(o *options) {
		if name == "" {
			return
		}
		if lvl, err := zapcore.ParseLevel(name); err == nil {
			o.level = &lvl
		}
	}
}

// WithOutput redirects log lines, stdout by default.
func WithOutput(w zapcore.WriteSyncer) Option {
	return func(o *options) { o.output = w }
}

// NewLogger builds a JSON zap logger tagged with the service name.
// Production loggers sample repeated entries and default to info.
func NewLogger(serviceName string, isProd bool, opts ...Option) Logger {
	o := options{output: zapcore.AddSync(os.Stdout)}
	for _, opt := range opts {
		opt(&o)
	}

	config := zap.NewDevelopmentEncoderConfig()
	level := zapcore.DebugLevel
	if isProd {
		config = zap.NewProductionEncoderConfig()
		level = zapcore.InfoLevel
	}
	if o.level != nil {
		level = *o.level
	}
	config.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(config), o.output, level)
	if isProd {
		core = zapcore.NewSamplerWithOptions(core, time.Second, 100, 100)
	}
	l := zap.New(core).With(zap.String("service", serviceName))
	return &zapLogger{log: l}
}

// NewNop discards everything. Used by tests and optional collaborators.
func NewNop() Logger {
	return &zapLogger{log: zap.NewNop()}
}

// Logging methods with Level Check for Performance

func (z *zapLogger) Info(ctx context.Context, msg string, fields ...Field) {
	if z.log.Core().Enabled(zap.InfoLevel) {
		z.log.Info(msg, z.enrich(ctx, fields)...)
	}
}

func (z *zapLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	if z.log.Core().Enabled(zap.DebugLevel) {
		z.log.Debug(msg, z.enrich(ctx, fields)...)
	}
}

func (z *zapLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	if z.log.Core().Enabled(zap.WarnLevel) {
		z.log.Warn(msg, z.enrich(ctx, fields)...)
	}
}

func (z *zapLogger) Error(ctx context.Context, msg string, fields ...Field) {
	if z.log.Core().Enabled(zap.ErrorLevel) {
		z.log.Error(msg, z.enrich(ctx, fields)...)
	}
}

func (z *zapLogger) With(fields ...Field) Logger {
	return &zapLogger{log: z.log.With(z.convertFields(fields)...)}
}

// enrich appends the trace and span ids of the active span, if any.
func (z *zapLogger) enrich(ctx context.Context, fields []Field) []zap.Field {
	zapFields := make([]zap.Field, 0, len(fields)+2)
	zapFields = append(zapFields, z.convertFields(fields)...)

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		zapFields = append(zapFields,
			zap.String("trace_id", span.SpanContext().TraceID().String()),
			zap.String("span_id", span.SpanContext().SpanID().String()),
		)
	}
	return zapFields
}

func (z *zapLogger) convertFields(fields []Field) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, len(fields))
	for i, f := range fields {
		val := f.Value
		if fn, ok := f.Value.(func() any); ok {
			val = fn()
		}
		switch f.Kind {
		case KindString:
			if v, ok := val.(string); ok {
				out[i] = zap.String(f.Key, v)
				continue
			}
		case KindInt:
			if v, ok := val.(int); ok {
				out[i] = zap.Int(f.Key, v)
				continue
			}
		case KindFloat64:
			if v, ok := val.(float64); ok {
				out[i] = zap.Float64(f.Key, v)
				continue
			}
		case KindBool:
			if v, ok := val.(bool); ok {
				out[i] = zap.Bool(f.Key, v)
				continue
			}
		case KindDuration:
			if v, ok := val.(time.Duration); ok {
				out[i] = zap.Duration(f.Key, v)
				continue
			}
		case KindError:
			if v, ok := val.(error); ok {
				out[i] = zap.Error(v)
				continue
			}
		case KindAny:
			out[i] = zap.Any(f.Key, val)
			continue

		default:
			out[i] = zap.Any(f.Key, val)
			continue
		}
		// kind and value disagree
		out[i] = zap.Any(f.Key, val)
	}
	return out
}
