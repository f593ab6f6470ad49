//go:build !linux

package hotplug

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Watch is a no-op off Linux: there's no udev to watch, so it just blocks
// until ctx is cancelled.
func Watch(ctx context.Context, logger *logrus.Logger, events chan<- Event) error {
	<-ctx.Done()
	return nil
}
