package cmd

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	watchdog "github.com/allbin/serial-watchdog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setConfig(t *testing.T, key string, value any) {
	t.Helper()
	old := viper.Get(key)
	viper.Set(key, value)
	t.Cleanup(func() { viper.Set(key, old) })
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewLoggerFormats(t *testing.T) {
	setConfig(t, "log-level", "info")
	setConfig(t, "log-file", "")

	setConfig(t, "log-format", "json")
	var buf bytes.Buffer
	logger, closer, err := newLogger(&buf)
	require.NoError(t, err)
	defer closer.Close()

	logger.Info("hello", slog.String("port", "/dev/ttyUSB0"))
	assert.Contains(t, buf.String(), `"msg":"hello"`)
	assert.Contains(t, buf.String(), `"port":"/dev/ttyUSB0"`)

	setConfig(t, "log-format", "xml")
	_, _, err = newLogger(&buf)
	assert.Error(t, err)
}

func TestNewLoggerRespectsLevel(t *testing.T) {
	setConfig(t, "log-format", "text")
	setConfig(t, "log-file", "")
	setConfig(t, "log-level", "warn")

	var buf bytes.Buffer
	logger, _, err := newLogger(&buf)
	require.NoError(t, err)

	logger.Info("quiet")
	logger.Warn("loud")
	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), "loud")
}

func TestDetectorOptions(t *testing.T) {
	setConfig(t, "poll-interval", "250ms")
	setConfig(t, "marker", "BTHENUM")
	setConfig(t, "announce-all", true)

	lister := watchdog.ListerFunc(func() ([]watchdog.RawEntry, error) {
		return []watchdog.RawEntry{
			{PortIDs: []string{"COM1"}, Description: "bt", Address: `BTHENUM\{0000}`},
			{PortIDs: []string{"COM2"}, Description: "usb", Address: "USB VID:PID=0403:6001"},
		}, nil
	})

	det, err := watchdog.New(lister, detectorOptions(slog.Default())...)
	require.NoError(t, err)
	assert.Equal(t, "250ms", det.Interval().String())
	assert.Equal(t, []string{"COM1"}, det.Snapshot().PortIDs())
}

func TestExpandAll(t *testing.T) {
	lister := watchdog.ListerFunc(func() ([]watchdog.RawEntry, error) {
		return []watchdog.RawEntry{
			{PortIDs: []string{"/dev/ttyUSB0", "/dev/ttyUSB1"}, Description: "FT2232H", Address: "USB VID:PID=0403:6010"},
			{PortIDs: []string{"/dev/ttyS0"}, Description: "Standard Serial Port", Address: watchdog.NonUSBAddress},
			{PortIDs: []string{"/dev/ttyS0"}, Description: "duplicate", Address: watchdog.NonUSBAddress},
		}, nil
	})

	devices, err := expandAll(lister)
	require.NoError(t, err)
	assert.Equal(t, []string{"/dev/ttyUSB0", "/dev/ttyUSB1", "/dev/ttyS0"}, devices.PortIDs())
	assert.Equal(t, "Standard Serial Port", devices[2].Description)
}

func TestExpandAllWrapsFailure(t *testing.T) {
	cause := errors.New("no /dev")
	_, err := expandAll(watchdog.ListerFunc(func() ([]watchdog.RawEntry, error) {
		return nil, cause
	}))
	assert.True(t, watchdog.IsEnumerationError(err))
	assert.ErrorIs(t, err, cause)
}

func TestRenderSimple(t *testing.T) {
	var buf bytes.Buffer
	renderSimple(&buf, watchdog.DeviceSnapshot{
		{PortID: "COM3", Description: "Arduino Uno", Address: "USB VID:PID=2341:0043"},
		{PortID: "COM5", Description: "FT232R USB UART", Address: "USB VID:PID=0403:6001"},
	})
	assert.Equal(t, "COM3 : Arduino Uno\nCOM5 : FT232R USB UART\n", buf.String())
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	renderTable(&buf, watchdog.DeviceSnapshot{
		{PortID: "COM3", Description: "Arduino Uno", Address: "USB VID:PID=2341:0043"},
	})

	out := buf.String()
	assert.Contains(t, out, "Found 1 serial device(s)")
	assert.Contains(t, out, "Port")
	assert.Contains(t, out, "COM3")
	assert.Contains(t, out, "Arduino Uno")
	assert.Contains(t, out, "USB VID:PID=2341:0043")
}
