package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/emoji-mirror/internal/config"
	"github.com/kozaktomas/emoji-mirror/internal/expression"
)

var replayCmd = &cobra.Command{
	Use:   "replay <frames.jsonl>",
	Short: "Replay a recorded blendshape stream through the classifier",
	Long: `Replay reads a JSONL file with one frame per line and classifies every
frame, printing a per-category summary at the end. Each line carries
either a "vector" object (channel name to score) or a "blendshapes"
list in the landmark server's format; an empty line or empty object
counts as a frame without a face.

With --calibrate-first the first frame that contains a face becomes the
baseline before the remaining frames are classified.`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().Bool("calibrate-first", false, "Use the first face frame as the calibration baseline")
	replayCmd.Flags().Int("limit", 0, "Maximum number of frames to replay (0 = all)")
}

// replayFrame is one line of the recorded stream.
type replayFrame struct {
	Blendshapes []expression.Blendshape `json:"blendshapes"`
	Vector      map[string]float64      `json:"vector"`
}

func (f *replayFrame) toVector() expression.Vector {
	if len(f.Blendshapes) > 0 {
		return expression.FromBlendshapes(f.Blendshapes)
	}
	if len(f.Vector) > 0 {
		return expression.Vector(f.Vector)
	}
	return nil
}

// readFrames parses the JSONL stream into per-frame vectors.
func readFrames(path string, limit int) ([]expression.Vector, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening frame stream: %w", err)
	}
	defer f.Close()

	var frames []expression.Vector
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			frames = append(frames, nil)
			continue
		}
		var frame replayFrame
		if err := json.Unmarshal(line, &frame); err != nil {
			return nil, fmt.Errorf("parsing frame %d: %w", len(frames)+1, err)
		}
		frames = append(frames, frame.toVector())
		if limit > 0 && len(frames) >= limit {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading frame stream: %w", err)
	}
	return frames, nil
}

func runReplay(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	frames, err := readFrames(args[0], mustGetInt(cmd, "limit"))
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		fmt.Println("No frames to replay")
		return nil
	}

	classifier := expression.NewClassifier(cfg.ClassifierTuning())
	store := expression.NewBaselineStore()

	if mustGetBool(cmd, "calibrate-first") {
		for _, frame := range frames {
			if frame != nil {
				store.Calibrate(frame)
				break
			}
		}
		if !store.Calibrated() {
			fmt.Println("Warning: no face frame found for calibration")
		}
	}

	bar := progressbar.NewOptions(len(frames),
		progressbar.OptionSetDescription("Classifying frames"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("frames"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
	)

	counts := make(map[expression.Category]int)
	baseline := store.Baseline()
	for _, frame := range frames {
		counts[classifier.Classify(frame, baseline)]++
		bar.Add(1)
	}
	fmt.Println()

	glyphs := cfg.Glyphs()
	categories := append([]expression.Category{expression.Neutral}, classifier.Categories()...)

	fmt.Printf("\nReplayed %d frames:\n", len(frames))
	for _, c := range categories {
		fmt.Printf("  %s %-10s %6d (%.1f%%)\n",
			glyphs[c], c, counts[c], float64(counts[c])*100/float64(len(frames)))
	}
	return nil
}
