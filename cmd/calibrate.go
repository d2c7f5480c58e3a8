package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/emoji-mirror/internal/config"
	"github.com/kozaktomas/emoji-mirror/internal/database"
)

var calibrateCmd = &cobra.Command{
	Use:   "calibrate <image>",
	Short: "Store a neutral-face calibration profile",
	Long: `Calibrate captures the neutral face from an image and stores it as a
named calibration profile. The image should show a relaxed, neutral
expression; later classifications subtract this baseline so resting
expressions don't count.`,
	Args: cobra.ExactArgs(1),
	RunE: runCalibrate,
}

func init() {
	rootCmd.AddCommand(calibrateCmd)

	calibrateCmd.Flags().String("name", "", "Profile name (required)")
	calibrateCmd.MarkFlagRequired("name")
}

func runCalibrate(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx := context.Background()

	if err := initStorageBackend(cfg); err != nil {
		return err
	}

	vector, err := computeFrameVector(ctx, cfg, args[0])
	if err != nil {
		return err
	}
	if vector == nil {
		return errors.New("no face detected in the image")
	}

	writer, err := database.GetProfileWriter(ctx)
	if err != nil {
		return err
	}

	name := mustGetString(cmd, "name")
	channels, values := database.PackBaseline(vector)
	profile := &database.StoredProfile{
		Name:     name,
		Channels: channels,
		Baseline: values,
	}
	if err := writer.Save(ctx, profile); err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}

	fmt.Printf("Calibration profile %q saved (%d channels, uid %s)\n", name, len(channels), profile.UID)
	return nil
}
