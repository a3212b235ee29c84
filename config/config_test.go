package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "display_settings.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeSettings(t, `{
		"twenty_four_hour_clock": true,
		"partial_update": false,
		"sleep_epd": false,
		"four_gray_scale": true,
		"timezone": "Europe/London"
	}`)

	s, err := Load(path)
	require.NoError(t, err)

	assert.True(t, s.TwentyFourHourClock)
	assert.False(t, s.PartialUpdate)
	assert.False(t, s.SleepAfterDraw)
	assert.True(t, s.FourGrayScale)
	assert.Equal(t, "Europe/London", s.Timezone)
}

func TestLoadRejectsPartialUpdateInFourGrayScale(t *testing.T) {
	path := writeSettings(t, `{
		"partial_update": true,
		"four_gray_scale": true
	}`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadAllowsPartialUpdateAtOneBit(t *testing.T) {
	path := writeSettings(t, `{
		"partial_update": true,
		"four_gray_scale": false
	}`)

	s, err := Load(path)
	require.NoError(t, err)
	assert.True(t, s.PartialUpdate)
	assert.False(t, s.FourGrayScale)
}

func TestLoadRejectsBadTimezone(t *testing.T) {
	path := writeSettings(t, `{"timezone": "Mars/Olympus_Mons"}`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingExplicitPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestDefaultValidates(t *testing.T) {
	assert.NoError(t, Default().Validate())
}
