package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/emoji-mirror/internal/config"
	"github.com/kozaktomas/emoji-mirror/internal/database"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Manage stored calibration profiles",
}

var profilesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored calibration profiles",
	RunE:  runProfilesList,
}

var profilesDeleteCmd = &cobra.Command{
	Use:   "delete <uid>",
	Short: "Delete a calibration profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfilesDelete,
}

var profilesMatchCmd = &cobra.Command{
	Use:   "match <image>",
	Short: "Find the stored profiles closest to a face",
	Long: `Match computes the blendshape vector for the face in an image and lists
the stored profiles with the closest baselines by cosine distance. Use
it to recognize a returning user without recalibrating.`,
	Args: cobra.ExactArgs(1),
	RunE: runProfilesMatch,
}

func init() {
	rootCmd.AddCommand(profilesCmd)
	profilesCmd.AddCommand(profilesListCmd)
	profilesCmd.AddCommand(profilesDeleteCmd)
	profilesCmd.AddCommand(profilesMatchCmd)

	profilesMatchCmd.Flags().Int("limit", 3, "Maximum number of matches to show")
}

func runProfilesList(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx := context.Background()

	if err := initStorageBackend(cfg); err != nil {
		return err
	}
	reader, err := database.GetProfileReader(ctx)
	if err != nil {
		return err
	}

	profiles, err := reader.List(ctx)
	if err != nil {
		return fmt.Errorf("listing profiles: %w", err)
	}
	if len(profiles) == 0 {
		fmt.Println("No calibration profiles stored")
		return nil
	}

	fmt.Printf("%-38s %-20s %-8s %s\n", "UID", "NAME", "CHANNELS", "CREATED")
	for _, p := range profiles {
		fmt.Printf("%-38s %-20s %-8d %s\n",
			p.UID, p.Name, len(p.Channels), p.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func runProfilesDelete(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx := context.Background()

	if err := initStorageBackend(cfg); err != nil {
		return err
	}
	writer, err := database.GetProfileWriter(ctx)
	if err != nil {
		return err
	}

	if err := writer.Delete(ctx, args[0]); err != nil {
		return fmt.Errorf("deleting profile: %w", err)
	}
	fmt.Printf("Profile %s deleted\n", args[0])
	return nil
}

func runProfilesMatch(cmd *cobra.Command, args []string) error {
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
		return fmt.Errorf("no face detected in the image")
	}

	matcher, err := database.GetProfileMatcher(ctx)
	if err != nil {
		return err
	}

	_, values := database.PackBaseline(vector)
	profiles, distances, err := matcher.FindNearest(ctx, values, mustGetInt(cmd, "limit"))
	if err != nil {
		return fmt.Errorf("matching profiles: %w", err)
	}
	if len(profiles) == 0 {
		fmt.Println("No stored profiles to match against")
		return nil
	}

	fmt.Printf("%-20s %-10s %s\n", "NAME", "DISTANCE", "UID")
	for i, p := range profiles {
		fmt.Printf("%-20s %-10.4f %s\n", p.Name, distances[i], p.UID)
	}
	return nil
}
