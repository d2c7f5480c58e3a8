package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/emoji-mirror/internal/config"
	"github.com/kozaktomas/emoji-mirror/internal/database/mysql"
	"github.com/kozaktomas/emoji-mirror/internal/database/postgres"
)

var rootCmd = &cobra.Command{
	Use:   "emoji-mirror",
	Short: "A camera mirror that shows your facial expression as an emoji",
	Long: `Emoji Mirror classifies facial expressions from face landmarker
blendshape scores and renders them as emoji. It calibrates against your
neutral face, so resting expressions don't leak into the output, and can
store named calibration profiles so returning users are recognized.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}

// initStorageBackend wires the profile store: PostgreSQL when DATABASE_URL
// is set, MySQL as a fallback when only MYSQL_DSN is set.
func initStorageBackend(cfg *config.Config) error {
	switch {
	case cfg.Database.URL != "":
		fmt.Println("Connecting to PostgreSQL database...")
		if err := postgres.Initialize(&cfg.Database); err != nil {
			return fmt.Errorf("failed to initialize PostgreSQL: %w", err)
		}
	case cfg.MySQL.DSN != "":
		fmt.Println("Connecting to MySQL database...")
		if err := mysql.Initialize(cfg.MySQL.DSN); err != nil {
			return fmt.Errorf("failed to initialize MySQL: %w", err)
		}
	default:
		return errors.New("DATABASE_URL or MYSQL_DSN environment variable is required")
	}
	return nil
}
