// Package discovery implements SPEC_FULL.md §6.6's optional mDNS
// advertisement of the HTTP sink, via github.com/brutella/dnssd, so a
// console/TUI Observer on the same LAN can find the receiver without a
// configured hostname. Off by default; no teacher/pack file advertises
// anything over mDNS, so this is built from dnssd's documented responder
// shape directly.
package discovery

import (
	"context"
	"fmt"

	"github.com/brutella/dnssd"
	"github.com/sirupsen/logrus"
)

// ServiceType is spec's "_mode1090._tcp" service, per SPEC_FULL.md §6.6.
const ServiceType = "_mode1090._tcp"

// Advertise registers mode1090's HTTP sink as an mDNS service at host:port
// and responds to queries until ctx is cancelled. It blocks; callers run
// it in its own goroutine.
func Advertise(ctx context.Context, logger *logrus.Logger, name, host string, port int) error {
	cfg := dnssd.Config{
		Name: name,
		Type: ServiceType,
		Host: host,
		Port: port,
	}
	service, err := dnssd.NewService(cfg)
	if err != nil {
		return fmt.Errorf("discovery: build service: %w", err)
	}

	responder, err := dnssd.NewResponder()
	if err != nil {
		return fmt.Errorf("discovery: new responder: %w", err)
	}
	if _, err := responder.Add(service); err != nil {
		return fmt.Errorf("discovery: add service: %w", err)
	}

	logger.WithFields(logrus.Fields{"service": ServiceType, "port": port}).Info("advertising mDNS service")
	return responder.Respond(ctx)
}
