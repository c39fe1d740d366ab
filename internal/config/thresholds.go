package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/v0xg/pagescout/internal/visual"
)

var ErrInvalidThreshold = errors.New("config: thresholds must be positive")

// thresholdsFile is the on-disk layout:
//
//	[visual]
//	overlap = 0.2
//	font_std_dev = 6
type thresholdsFile struct {
	Visual visual.Thresholds `toml:"visual"`
}

// LoadThresholds reads a TOML thresholds file over the defaults. Keys absent
// from the file keep their default value. An empty path returns the defaults.
func LoadThresholds(path string) (visual.Thresholds, error) {
	file := thresholdsFile{Visual: visual.DefaultThresholds()}
	if path == "" {
		return file.Visual, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return file.Visual, fmt.Errorf("failed to read thresholds file %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &file); err != nil {
		return file.Visual, fmt.Errorf("failed to parse thresholds file %s: %w", path, err)
	}

	th := file.Visual
	if th.Overlap <= 0 || th.OverlapHigh <= 0 || th.LayoutShift <= 0 || th.LayoutShiftHigh <= 0 ||
		th.SpacingRange <= 0 || th.FontStdDev <= 0 || th.MaxMarkup <= 0 {
		return th, fmt.Errorf("%w: %s", ErrInvalidThreshold, path)
	}
	return th, nil
}
