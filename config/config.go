package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Settings is the display configuration document. It is loaded once at
// start-up and passed by reference; nothing mutates it afterwards.
type Settings struct {
	// TwentyFourHourClock selects 24-hour time strings over am/pm.
	TwentyFourHourClock bool `mapstructure:"twenty_four_hour_clock"`
	// PartialUpdate enables partial clock refreshes between full redraws.
	// Only valid on 1-bit panels.
	PartialUpdate bool `mapstructure:"partial_update"`
	// SleepAfterDraw puts the panel to sleep after every draw. Leaving the
	// panel awake risks damaging it, so this defaults to on.
	SleepAfterDraw bool `mapstructure:"sleep_epd"`
	// FourGrayScale selects the 2-bit (four level) panel mode; otherwise the
	// panel runs at 1-bit.
	FourGrayScale bool `mapstructure:"four_gray_scale"`
	// Timezone is the IANA zone used for the calendar panel and clock.
	Timezone string `mapstructure:"timezone"`
}

// Default returns the settings used when no config file is present.
func Default() *Settings {
	return &Settings{
		TwentyFourHourClock: false,
		PartialUpdate:       false,
		SleepAfterDraw:      true,
		FourGrayScale:       true,
		Timezone:            "America/Los_Angeles",
	}
}

// Load reads display settings from path, or from display_settings.json in
// the home or working directory when path is empty. A missing file falls
// back to defaults; an invalid one is an error.
func Load(path string) (*Settings, error) {
	settings := Default()

	v := viper.New()
	v.SetConfigType("json")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return nil, fmt.Errorf("failed to find home directory: %w", err)
		}
		v.AddConfigPath(home)
		v.AddConfigPath(".")
		v.SetConfigName("display_settings")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return settings, settings.Validate()
		}
		return nil, fmt.Errorf("failed to read display settings: %w", err)
	}

	if err := v.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal display settings: %w", err)
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// Validate enforces the invariants between settings.
func (s *Settings) Validate() error {
	if s.PartialUpdate && s.FourGrayScale {
		return errors.New("partial updates are not supported in four gray scale mode, choose one or the other")
	}
	if _, err := time.LoadLocation(s.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", s.Timezone, err)
	}
	return nil
}

// Location resolves the configured timezone. Validate has already checked
// it, so failure here falls back to UTC rather than propagating.
func (s *Settings) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
