package services

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// PushMetrics sends the import counters to a Prometheus pushgateway. An
// empty url is a no-op.
func PushMetrics(ctx context.Context, url, job string, g prometheus.Gatherer) error {
	if strings.TrimSpace(url) == "" {
		return nil
	}
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	if err := push.New(url, job).Gatherer(g).PushContext(ctx); err != nil {
		return errors.Wrapf(err, "push metrics to %s", url)
	}
	return nil
}
