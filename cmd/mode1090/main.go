package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mode1090/internal/app"
	"mode1090/internal/service"
)

func main() {
	var config app.Config

	rootCmd := &cobra.Command{
		Use:   "mode1090",
		Short: "1090MHz Mode S/ADS-B receiver and decoder",
		Long: `mode1090 decodes Mode S and ADS-B messages from a 1090MHz RTL-SDR capture.

Captures I/Q samples at 2MHz, finds preambles by pulse shape, slices bits
with a one-shot phase-correction retry, applies single/two-bit CRC repair,
maintains a live aircraft roster, and fans accepted messages out to a
BaseStation (SBS) log, optional raw message I/O, and an optional HTTP/JSON
and WebSocket interface.

Example usage:
  mode1090 --frequency 1090000000 --sample-rate 2000000 --gain 40 --device 0
  mode1090 --replay capture.bin --replay-passes 3
  mode1090 service install`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if config.ShowVersion {
				app.ShowVersion()
				return nil
			}
			config.HaveStation = cmd.Flags().Changed("lat") || cmd.Flags().Changed("lon")
			return app.NewApplication(config).Start()
		},
	}
	bindRunFlags(rootCmd, &config)
	rootCmd.AddCommand(serviceCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// bindRunFlags attaches every Config-backed flag to the root command.
func bindRunFlags(cmd *cobra.Command, config *app.Config) {
	flags := cmd.Flags()

	flags.Uint32VarP(&config.Frequency, "frequency", "f", app.DefaultFrequency, "Frequency to tune to (Hz)")
	flags.Uint32VarP(&config.SampleRate, "sample-rate", "s", app.DefaultSampleRate, "Sample rate (Hz)")
	flags.IntVarP(&config.Gain, "gain", "g", app.DefaultGain, "Gain setting (0 for auto)")
	flags.IntVarP(&config.DeviceIndex, "device", "d", 0, "RTL-SDR device index")

	flags.StringVar(&config.ReplayPath, "replay", "", "Replay raw samples from a capture file instead of a live device")
	flags.IntVar(&config.ReplayPasses, "replay-passes", 1, "Number of times to replay the capture file (values below 1 play it once)")

	flags.BoolVar(&config.Aggressive, "aggressive", false, "Enable two-bit CRC error correction")

	flags.StringVarP(&config.LogDir, "log-dir", "l", "./logs", "SBS log directory")
	flags.BoolVarP(&config.LogRotateUTC, "utc", "u", true, "Use UTC for log rotation")

	flags.StringVar(&config.RawOutPath, "raw-out", "", "Append accepted messages as raw hex lines to this file")
	flags.StringVar(&config.RawInPath, "raw-in", "", "Read raw hex messages from this file and inject them into the decoder")

	flags.StringVar(&config.HTTPAddr, "http-addr", "", "Address to serve the HTTP/JSON and /metrics interface on (e.g. :8080); empty disables it")
	flags.StringVar(&config.WebRoot, "web-root", "", "Directory of static files to serve at /")
	flags.StringVar(&config.DefaultPage, "default-page", "index.html", "Default file served for /")

	flags.StringVar(&config.RegistryPath, "registry", "", "Path to an aircraft registry CSV; empty uses the bundled fallback")

	flags.BoolVar(&config.Console, "console", false, "Render a live terminal table of tracked aircraft")
	flags.Float64Var(&config.StationLat, "lat", 0, "Receiver station latitude, for the console range column")
	flags.Float64Var(&config.StationLon, "lon", 0, "Receiver station longitude, for the console range column")

	flags.StringVar(&config.MDNSName, "mdns-name", "", "Advertise the HTTP interface over mDNS under this instance name; empty disables it")
	flags.StringVar(&config.MDNSHost, "mdns-host", "", "Hostname to advertise over mDNS (defaults to the local hostname)")

	flags.StringVar(&config.ActivityGPIOChip, "activity-gpio-chip", "", "GPIO chip device for the decode activity indicator (e.g. /dev/gpiochip0); empty disables it")
	flags.IntVar(&config.ActivityGPIOOffset, "activity-gpio-offset", 0, "GPIO line offset for the activity indicator")

	flags.BoolVar(&config.HotplugWatch, "hotplug", false, "Watch for RTL-SDR attach/detach events (Linux only)")

	flags.BoolVarP(&config.Verbose, "verbose", "v", false, "Verbose logging")
	flags.BoolVar(&config.ShowVersion, "version", false, "Show version information")
}

// serviceCmd wraps internal/service.Manager as install/start/stop/remove/
// status subcommands, per SPEC_FULL.md §6.11. The installed service unit
// invokes this same binary with no arguments; operators pin flags via the
// service manager's own environment/argument facilities (systemd unit
// overrides, launchd plist, Windows SCM binary path args).
func serviceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "service",
		Short: "Install or control mode1090 as a system service",
	}

	run := func(action func(*service.Manager) (string, error)) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			m, err := service.New()
			if err != nil {
				return err
			}
			msg, err := action(m)
			fmt.Println(msg)
			return err
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "install",
			Short: "Install mode1090 as a system service",
			RunE: run(func(m *service.Manager) (string, error) {
				return m.Install()
			}),
		},
		&cobra.Command{
			Use:   "start",
			Short: "Start the installed service",
			RunE:  run((*service.Manager).Start),
		},
		&cobra.Command{
			Use:   "stop",
			Short: "Stop the running service",
			RunE:  run((*service.Manager).Stop),
		},
		&cobra.Command{
			Use:   "remove",
			Short: "Uninstall the service",
			RunE:  run((*service.Manager).Remove),
		},
		&cobra.Command{
			Use:   "status",
			Short: "Report the service's status",
			RunE:  run((*service.Manager).Status),
		},
	)
	return cmd
}
