/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	watchdog "github.com/allbin/serial-watchdog"
	"github.com/allbin/serial-watchdog/internal/tui/models"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// uiCmd represents the ui command
var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Watch for USB serial devices in an interactive terminal UI",
	Long: `Open a full-screen terminal UI that shows the attached USB serial devices
and a scrolling log of notifications.

Logs are discarded unless --log-file is given, since they would corrupt
the screen.

Key bindings:
  c        Clear notifications
  ↑/↓      Select a device
  ?        Toggle help
  q/Ctrl+C Quit`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, closer, err := newLogger(io.Discard)
		if err != nil {
			return err
		}
		defer closer.Close()
		slog.SetDefault(logger)

		det, err := watchdog.New(newLister(), detectorOptions(logger)...)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
		defer stop()

		runErr := make(chan error, 1)
		go func() {
			runErr <- det.Run(ctx)
		}()

		model := models.NewWatchModel(det, det.Events(), det.Snapshot())
		p := tea.NewProgram(model, tea.WithAltScreen())
		_, progErr := p.Run()

		det.Stop()
		if err := <-runErr; err != nil {
			return err
		}
		if progErr != nil {
			fmt.Fprintf(os.Stderr, "Error running UI: %v\n", progErr)
			return progErr
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(uiCmd)
}
