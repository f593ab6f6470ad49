//go:build !linux

package activitypin

// Open is a no-op off Linux: there's no gpiocdev to drive.
func Open(chip string, offset int) (Indicator, error) {
	return noopIndicator{}, nil
}
