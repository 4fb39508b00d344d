package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipdeck/internal/config"
	"go.klb.dev/clipdeck/internal/ipc"
	"go.klb.dev/clipdeck/internal/logging"
)

// bindViper wires a command's flags into a viper instance with the standard
// config file search order and CLIPDECK_* env var prefix.
//
// Precedence (lowest → highest): defaults → config file → CLIPDECK_* env vars → flags
func bindViper(cmd *cobra.Command, v *viper.Viper) error {
	configFlag, _ := cmd.Flags().GetString("config")
	if configFlag != "" {
		v.SetConfigFile(configFlag)
	} else {
		v.SetConfigName("clipdeck")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc/clipdeck/")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(fmt.Sprintf("%s/.config/clipdeck", home))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("config: %w", err)
		}
	}

	v.SetEnvPrefix("CLIPDECK")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}
	return nil
}

// addLoggingFlags adds the standard logging flags to a command.
func addLoggingFlags(cmd *cobra.Command) {
	cmd.Flags().String(config.KeyLogFormat, "auto", "log format: auto|text|json")
	cmd.Flags().String(config.KeyLogLevel, "", "log level: debug|info|warn|error (default: info, debug with --no-ui on a terminal)")
}

// addConfigFlag adds the --config flag to a command.
func addConfigFlag(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "path to config file (overrides auto-discovery)")
}

// addSocketFlag adds the --socket flag shared by the daemon and its clients.
func addSocketFlag(cmd *cobra.Command) {
	cmd.Flags().String("socket", ipc.SocketPath(), "control socket path")
}

// setupLogging configures slog to write to w.
func setupLogging(w io.Writer, cfg config.Config) {
	format := logging.ParseFormat(cfg.LogFormat)
	level := logging.ParseLevel(cfg.LogLevel)
	if cfg.LogLevel == "" {
		if logging.IsTTY(w) {
			level = logging.ParseLevel("debug")
		} else {
			level = logging.ParseLevel("info")
		}
	}
	logging.Setup(w, format, level)
}
