package composables

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/jjwprotozoa/dmoc-sub000/pkg/constants"
)

func WithLogger(ctx context.Context, logger *logrus.Entry) context.Context {
	return context.WithValue(ctx, constants.LoggerKey, logger)
}

// UseLogger returns the logger stored in ctx, or a silent one.
func UseLogger(ctx context.Context) *logrus.Entry {
	switch typed := ctx.Value(constants.LoggerKey).(type) {
	case *logrus.Entry:
		return typed
	case *logrus.Logger:
		return logrus.NewEntry(typed)
	default:
		return nopLogger()
	}
}

func nopLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(l)
}
