package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"

	"mode1090/internal/app"
)

// TestBindRunFlagsDefaults verifies every flag lands on its documented
// Config field with the documented default, and that parsing overrides it.
func TestBindRunFlagsDefaults(t *testing.T) {
	var config app.Config
	cmd := &cobra.Command{Use: "mode1090"}
	bindRunFlags(cmd, &config)

	assert.NoError(t, cmd.Flags().Parse(nil))
	assert.Equal(t, uint32(app.DefaultFrequency), config.Frequency)
	assert.Equal(t, uint32(app.DefaultSampleRate), config.SampleRate)
	assert.Equal(t, app.DefaultGain, config.Gain)
	assert.Equal(t, "./logs", config.LogDir)
	assert.True(t, config.LogRotateUTC)
	assert.Equal(t, "index.html", config.DefaultPage)
	assert.Equal(t, 1, config.ReplayPasses)
	assert.False(t, config.Aggressive)
	assert.False(t, config.Console)
}

func TestBindRunFlagsOverrides(t *testing.T) {
	var config app.Config
	cmd := &cobra.Command{Use: "mode1090"}
	bindRunFlags(cmd, &config)

	err := cmd.Flags().Parse([]string{
		"--replay", "capture.bin",
		"--replay-passes", "0",
		"--aggressive",
		"--http-addr", ":8080",
		"--console",
		"--lat", "51.5",
		"--lon", "-0.1",
	})
	assert.NoError(t, err)
	assert.Equal(t, "capture.bin", config.ReplayPath)
	assert.Equal(t, 0, config.ReplayPasses)
	assert.True(t, config.Aggressive)
	assert.Equal(t, ":8080", config.HTTPAddr)
	assert.True(t, config.Console)
	assert.Equal(t, 51.5, config.StationLat)
	assert.Equal(t, -0.1, config.StationLon)
}

// TestServiceCmdSubcommands verifies the service subcommand tree is wired
// without actually invoking any of them (every RunE touches real system
// service state, which a unit test must not do).
func TestServiceCmdSubcommands(t *testing.T) {
	cmd := serviceCmd()
	names := make(map[string]bool)
	for _, c := range cmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"install", "start", "stop", "remove", "status"} {
		assert.True(t, names[want], "missing service subcommand %q", want)
	}
}
