// Package hotplug implements SPEC_FULL.md §6.1's supplement: watching for
// RTL-SDR USB attach/detach events. The Application logs each event; it
// does not re-open the Sample Source after a replug. The watch itself is
// Linux-only (udev); Event and Watch are declared here so callers never
// need a build tag of their own.
package hotplug

// Event reports one USB attach/detach transition for a recognized RTL-SDR
// dongle (Realtek vendor 0bda, product 2838).
type Event struct {
	Attached bool
}
