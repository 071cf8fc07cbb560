package observability

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus/push"
)

// pushJob is the Pushgateway job label of import runs.
const pushJob = "highway_survey_import"

// Push sends the current metric values to a Pushgateway, replacing the
// previous push of the same job and instance.
func (m *Metrics) Push(ctx context.Context, url, instance string) error {
	pusher := push.New(url, pushJob).Grouping("instance", instance)
	for _, c := range m.Collectors() {
		pusher = pusher.Collector(c)
	}
	if err := pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}
