// server/cmd/api/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sppg-kitchen-api-server/config"
	"sppg-kitchen-api-server/internal/app"
	"sppg-kitchen-api-server/internal/clock"
	"sppg-kitchen-api-server/internal/distribution"
	"sppg-kitchen-api-server/internal/export"
	"sppg-kitchen-api-server/internal/logging"
)

var (
	configDir string

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "sppg-api",
	Short: "SPPG kitchen and distribution API server",
	Long: `Backend for an SPPG school-meal kitchen: inventory, menu planning,
procurement, and the daily distribution of portions to schools.

Run without a subcommand to start the HTTP server.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load .env: %w", err)
		}
		var err error
		cfg, err = config.LoadConfig(configDir)
		if err != nil {
			return err
		}
		logger, err = logging.New(cfg.Log)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and websocket server",
	RunE:  runServe,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the master administrator and initial stock if missing",
	RunE:  runSeed,
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Remote store maintenance",
}

var syncPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Write every locally stored record to the remote store",
	Long: `Reads the local snapshot only and upserts every record into the
configured remote store. Use it after the remote was rebuilt or after a long
offline period. Remote rows that no longer exist locally are left alone.`,
	RunE: runSyncPush,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render documents from the stored data",
}

var (
	notesDate string
	notesOut  string
)

var exportNotesCmd = &cobra.Command{
	Use:   "delivery-notes",
	Short: "Render the delivery notes (surat jalan) of one day as PDF",
	Long: `Renders two delivery notes per A4 page, ordered by serial number.

Example:
  sppg-api export delivery-notes --date 2025-11-03 --out surat-jalan.pdf`,
	RunE: runExportNotes,
}

func init() {
	rootCmd.SilenceUsage = true
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "./config", "directory holding config.yaml")

	exportNotesCmd.Flags().StringVar(&notesDate, "date", "", "day to export, YYYY-MM-DD (default today)")
	exportNotesCmd.Flags().StringVarP(&notesOut, "out", "o", "", "output file (required)")
	_ = exportNotesCmd.MarkFlagRequired("out")

	syncCmd.AddCommand(syncPushCmd)
	exportCmd.AddCommand(exportNotesCmd)
	rootCmd.AddCommand(serveCmd, seedCmd, syncCmd, exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// open builds the application and loads its data. With remote set the remote
// store is read as well; otherwise only the local snapshot is used.
func open(ctx context.Context, remote bool) (*app.App, error) {
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := a.LoadLocal(ctx); err != nil {
		_ = a.Close(ctx)
		return nil, err
	}
	if remote {
		a.LoadRemote(ctx)
	}
	return a, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := open(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close(context.WithoutCancel(ctx))

	if err := a.Bootstrap(ctx); err != nil {
		return err
	}
	return a.Serve(ctx)
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := open(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	if err := a.Bootstrap(ctx); err != nil {
		return err
	}
	if err := a.Syncer.Flush(ctx); err != nil {
		logger.Warn("seed stored locally but not pushed", zap.Int("pending", a.Syncer.Pending()), zap.Error(err))
	}
	return nil
}

func runSyncPush(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := open(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	n, err := a.PushAll(ctx)
	if err != nil {
		return err
	}
	logger.Info("local records pushed", zap.String("remote", a.Remote.Name()), zap.Int("records", n))
	return nil
}

func runExportNotes(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := open(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	loc := a.Clock.Location()
	day := a.Clock.Now()
	if notesDate != "" {
		if day, err = clock.ParseDay(notesDate, loc); err != nil {
			return fmt.Errorf("invalid --date: %w", err)
		}
	}
	items := distribution.BySerial(distribution.ScheduledOn(a.Distributions.List(), day, loc))

	addresses := make(map[string]string, len(a.Seed.Destinations))
	for _, d := range a.Seed.Destinations {
		addresses[d.Name] = d.Address
	}

	f, err := os.Create(notesOut)
	if err != nil {
		return err
	}
	if err := export.DeliveryNotes(f, items, export.NoteOptions{Addresses: addresses, Location: loc}); err != nil {
		_ = f.Close()
		_ = os.Remove(notesOut)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	logger.Info("delivery notes written",
		zap.String("day", clock.Day(day, loc)), zap.Int("notes", len(items)), zap.String("file", notesOut))
	return nil
}
