package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/emoji-mirror/internal/config"
	"github.com/kozaktomas/emoji-mirror/internal/database"
	"github.com/kozaktomas/emoji-mirror/internal/database/postgres"
	"github.com/kozaktomas/emoji-mirror/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the Emoji Mirror web server.
The server accepts per-frame blendshape vectors on the classify endpoint,
manages the live calibration baseline and serves stored calibration
profiles.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
	serveCmd.Flags().Bool("no-store", false, "Run without a profile storage backend")
}

// initProfileHNSW builds or loads the profile HNSW index for fast matching.
// Only the PostgreSQL backend carries an index; MySQL matches in Go.
func initProfileHNSW(ctx context.Context, indexPath string) {
	writer, err := database.GetProfileWriter(ctx)
	if err != nil {
		return
	}
	repo, ok := writer.(*postgres.ProfileRepository)
	if !ok {
		return
	}

	if indexPath != "" {
		fmt.Printf("Loading profile HNSW index from %s...\n", indexPath)
	} else {
		fmt.Println("Building in-memory HNSW index for profile matching...")
	}
	if err := repo.EnableHNSW(ctx, indexPath); err != nil {
		fmt.Printf("Warning: Failed to build profile HNSW index: %v\n", err)
		fmt.Println("Profile matching will use PostgreSQL queries (slower)")
		return
	}

	if indexPath != "" {
		fmt.Printf("Profile HNSW index ready with %d profiles (persisted to %s)\n", repo.HNSWCount(), indexPath)
	} else {
		fmt.Printf("Profile HNSW index built with %d profiles (in-memory only)\n", repo.HNSWCount())
	}
}

// saveHNSWIndex saves the profile HNSW index to disk during shutdown.
func saveHNSWIndex() {
	if rebuilder := database.GetProfileHNSWRebuilder(); rebuilder != nil {
		if err := rebuilder.SaveHNSWIndex(); err != nil {
			fmt.Printf("Warning: failed to save profile HNSW index: %v\n", err)
		} else {
			fmt.Println("Profile HNSW index saved to disk")
		}
	}
}

// resolveServeHostPort resolves port and host from flags and environment variables.
func resolveServeHostPort(cmd *cobra.Command, cfg *config.Config) (int, string) {
	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")

	if !cmd.Flags().Changed("port") && cfg.Web.Port != 0 {
		port = cfg.Web.Port
	}
	if cfg.Web.Host != "" {
		host = cfg.Web.Host
	}
	return port, host
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	if mustGetBool(cmd, "no-store") {
		fmt.Println("Running without profile storage (calibration is in-memory only)")
	} else {
		if err := initStorageBackend(cfg); err != nil {
			return err
		}
		initProfileHNSW(context.Background(), cfg.Database.HNSWIndexPath)
	}

	port, host := resolveServeHostPort(cmd, cfg)
	server := web.NewServer(cfg, port, host)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")
		saveHNSWIndex()

		shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting Emoji Mirror on http://%s:%d\n", host, port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
