package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/emoji-mirror/internal/config"
	"github.com/kozaktomas/emoji-mirror/internal/database"
	"github.com/kozaktomas/emoji-mirror/internal/expression"
	"github.com/kozaktomas/emoji-mirror/internal/landmark"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <image>",
	Short: "Classify the facial expression in an image",
	Long: `Classify sends an image to the landmark server, classifies the
blendshape vector of the first detected face and prints the expression
category with its emoji.

Without --profile the classification runs uncalibrated (all-zero
baseline). With --profile the named calibration profile is loaded from
the storage backend first.`,
	Args: cobra.ExactArgs(1),
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)

	classifyCmd.Flags().String("profile", "", "Calibration profile name to classify against")
	classifyCmd.Flags().Bool("json", false, "Print the full result as JSON")
}

// loadProfileBaseline fetches a named profile's baseline from the backend.
func loadProfileBaseline(ctx context.Context, cfg *config.Config, name string) (expression.Vector, error) {
	if err := initStorageBackend(cfg); err != nil {
		return nil, err
	}
	reader, err := database.GetProfileReader(ctx)
	if err != nil {
		return nil, err
	}
	profile, err := reader.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("loading profile %q: %w", name, err)
	}
	if profile == nil {
		return nil, fmt.Errorf("profile %q not found", name)
	}
	return profile.Vector(), nil
}

// computeFrameVector sends an image to the landmark server and returns the
// blendshape vector, nil when no face was found.
func computeFrameVector(ctx context.Context, cfg *config.Config, path string) (expression.Vector, error) {
	frameData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}

	client := landmark.NewClient(cfg.Landmark.URL, cfg.Landmark.Model)
	result, err := client.ComputeBlendshapes(ctx, frameData)
	if err != nil {
		return nil, fmt.Errorf("computing blendshapes: %w", err)
	}
	return result.Vector, nil
}

func runClassify(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx := context.Background()

	var baseline expression.Vector
	if name := mustGetString(cmd, "profile"); name != "" {
		var err error
		baseline, err = loadProfileBaseline(ctx, cfg, name)
		if err != nil {
			return err
		}
	}

	current, err := computeFrameVector(ctx, cfg, args[0])
	if err != nil {
		return err
	}

	classifier := expression.NewClassifier(cfg.ClassifierTuning())
	category := classifier.Classify(current, baseline)
	glyphs := cfg.Glyphs()

	if mustGetBool(cmd, "json") {
		out := map[string]any{
			"category":   category,
			"glyph":      glyphs[category],
			"scores":     classifier.Scores(current, baseline),
			"face_found": current != nil,
		}
		return json.NewEncoder(os.Stdout).Encode(out)
	}

	if current == nil {
		fmt.Println("No face detected")
	}
	fmt.Printf("%s  %s\n", glyphs[category], category)
	return nil
}
