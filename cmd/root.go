/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	watchdog "github.com/allbin/serial-watchdog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "serial-watchdog",
	Short: "Watch for USB serial devices being attached and removed",
	Long: `serial-watchdog polls the system for USB serial devices and reports
when a device is attached or the device list changes.

Settings are read from flags, SERIAL_WATCHDOG_* environment variables and
$XDG_CONFIG_HOME/serial-watchdog/config.yaml, in that order of precedence.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $XDG_CONFIG_HOME/serial-watchdog/config.yaml)")
	rootCmd.PersistentFlags().Duration("poll-interval", time.Second, "Interval between device polls")
	rootCmd.PersistentFlags().String("marker", watchdog.DefaultUSBMarker, "Substring of the hardware address that marks a USB device")
	rootCmd.PersistentFlags().Bool("announce-all", false, "Announce every added device instead of only the first")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format: text, json")
	rootCmd.PersistentFlags().String("log-file", "", "Write logs to this file instead of stderr")
	rootCmd.PersistentFlags().String("dev-dir", "/dev", "Directory holding serial device nodes")
	rootCmd.PersistentFlags().String("sys-dir", "/sys", "sysfs mount point used for USB metadata")

	_ = viper.BindPFlags(rootCmd.PersistentFlags())
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		if dir, err := os.UserConfigDir(); err == nil {
			viper.AddConfigPath(filepath.Join(dir, "serial-watchdog"))
		}
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("SERIAL_WATCHDOG")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if cfgFile != "" {
			fmt.Fprintf(os.Stderr, "Error reading config file %s: %v\n", cfgFile, err)
		}
		return
	}
	slog.Debug("Using config file", slog.String("path", viper.ConfigFileUsed()))
}

// newLogger builds the process logger from the log-* settings. Without a
// log file, logs go to fallback.
func newLogger(fallback io.Writer) (*slog.Logger, io.Closer, error) {
	level, err := parseLevel(viper.GetString("log-level"))
	if err != nil {
		return nil, nil, err
	}

	out := fallback
	var closer io.Closer = io.NopCloser(nil)
	if path := viper.GetString("log-file"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out, closer = f, f
	}

	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(viper.GetString("log-format")) {
	case "", "text":
		return slog.New(slog.NewTextHandler(out, opts)), closer, nil
	case "json":
		return slog.New(slog.NewJSONHandler(out, opts)), closer, nil
	default:
		_ = closer.Close()
		return nil, nil, fmt.Errorf("unknown log format: %s (valid: text, json)", viper.GetString("log-format"))
	}
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("unknown log level: %s (valid: debug, info, warn, error)", s)
	}
	return level, nil
}

func newLister() *watchdog.SysfsLister {
	return &watchdog.SysfsLister{
		DevDir: viper.GetString("dev-dir"),
		SysDir: viper.GetString("sys-dir"),
	}
}

// detectorOptions maps the shared settings onto detector options.
func detectorOptions(logger *slog.Logger) []watchdog.Option {
	opts := []watchdog.Option{
		watchdog.WithPollInterval(viper.GetDuration("poll-interval")),
		watchdog.WithUSBMarker(viper.GetString("marker")),
		watchdog.WithLogger(logger),
	}
	if viper.GetBool("announce-all") {
		opts = append(opts, watchdog.WithAnnounceAllAdditions())
	}
	return opts
}
