//go:build linux

package hotplug

import (
	"context"

	udev "github.com/jochenvg/go-udev"
	"github.com/sirupsen/logrus"
)

// Realtek RTL2832U vendor/product IDs, as enumerated over USB.
const (
	rtlsdrVendorID  = "0bda"
	rtlsdrProductID = "2838"
)

// Watch watches udev for RTL-SDR USB attach/detach and sends an Event for
// each, until ctx is cancelled or the underlying netlink channel closes.
func Watch(ctx context.Context, logger *logrus.Logger, events chan<- Event) error {
	u := udev.Udev{}
	mon := u.NewMonitorFromNetlink("udev")
	if err := mon.FilterAddMatchSubsystem("usb"); err != nil {
		return err
	}

	devCh, errCh, err := mon.DeviceChan(ctx)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errCh:
			if err != nil {
				logger.WithError(err).Warn("udev monitor error")
			}
		case d, ok := <-devCh:
			if !ok {
				return nil
			}
			if !isRTLSDR(d) {
				continue
			}
			switch d.Action() {
			case "add":
				events <- Event{Attached: true}
			case "remove":
				events <- Event{Attached: false}
			}
		}
	}
}

func isRTLSDR(d *udev.Device) bool {
	return d.PropertyValue("ID_VENDOR_ID") == rtlsdrVendorID && d.PropertyValue("ID_MODEL_ID") == rtlsdrProductID
}
