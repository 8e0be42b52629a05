package log

import "go.uber.org/zap"

// NewZapSink wraps a *zap.Logger as a Sink, so NewLoggerSink can drive
// the same leveled Logger interface on top of structured zap output.
func NewZapSink(z *zap.Logger) Sink {
	return &zapSink{z: z.WithOptions(zap.AddCallerSkip(1))}
}

type zapSink struct {
	z *zap.Logger
}

func (s *zapSink) Output(callDepth int, l Level, msg string) {
	switch l {
	case DebugLevel:
		s.z.Debug(msg)
	case InfoLevel:
		s.z.Info(msg)
	case WarnLevel:
		s.z.Warn(msg)
	case ErrorLevel:
		s.z.Error(msg)
	case FatalLevel:
		// os.Exit is performed by logger.Fatal itself; avoid zap's
		// own Fatal so we don't exit twice.
		s.z.Error(msg)
	}
}

// NewProductionLogger returns a Logger backed by a production zap
// configuration, for use by cmd/bench.
func NewProductionLogger(l Level) (Logger, error) {
	z, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return NewLoggerSink(l, NewZapSink(z)), nil
}
