package app

// Default configuration constants, per spec §6.1/§9.
const (
	DefaultFrequency  = 1090000000 // 1090 MHz
	DefaultSampleRate = 2000000    // 2 MHz: the demodulator assumes 2 samples per microsecond
	DefaultGain       = 40         // Manual gain
	DefaultRosterTTL  = 60         // seconds; spec §4.10 eviction window
)

// Config holds every wiring decision cmd/mode1090 exposes as a flag.
type Config struct {
	// Sample Source: exactly one of a physical device or a replay file.
	Frequency   uint32
	SampleRate  uint32
	Gain        int
	DeviceIndex int

	ReplayPath   string // non-empty switches the source to File Replay
	ReplayPasses int

	Aggressive bool // spec §4.2's two-bit correction pass

	// Sinks/Observers
	LogDir       string // SBS output directory, rotated by internal/logging
	LogRotateUTC bool

	RawOutPath string // spec §6.3; empty disables raw output
	RawInPath  string // spec §6.4; empty disables raw input

	HTTPAddr    string // empty disables the HTTP/JSON + /metrics sink
	WebRoot     string
	DefaultPage string

	RegistryPath string // empty uses the bundled CSV fallback

	Console     bool // enable the terminal Observer
	StationLat  float64
	StationLon  float64
	HaveStation bool

	MDNSName string // empty disables mDNS advertisement
	MDNSHost string

	ActivityGPIOChip   string // empty disables the activity indicator
	ActivityGPIOOffset int

	HotplugWatch bool // Linux only; ignored elsewhere

	Verbose     bool
	ShowVersion bool
}
