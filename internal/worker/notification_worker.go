package worker

import (
	"context"
	"sync"

	"github.com/spec-kit/sla-dashboard/internal/service"
)

// Start subscribes the notification handlers before launching the monitor, so the
// first evaluation round already reaches them. The returned function blocks until
// the monitor has exited after ctx is cancelled.
func Start(ctx context.Context, monitor *SLAMonitor, notifications *service.NotificationService) (wait func()) {
	if notifications != nil {
		notifications.RegisterHandlers()
	}

	var wg sync.WaitGroup
	if monitor != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			monitor.Start(ctx)
		}()
	}
	return wg.Wait
}
