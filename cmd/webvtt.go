package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wwdcgrab/wwdcgrab/internal/client"
	"github.com/wwdcgrab/wwdcgrab/internal/config"
	"github.com/wwdcgrab/wwdcgrab/internal/util"
	"github.com/wwdcgrab/wwdcgrab/internal/vtt"
)

var webvttCmd = &cobra.Command{
	Use:   "webvtt url",
	Short: "Fetch WebVTT subtitles from a session URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		language, _ := cmd.Flags().GetString("language")
		combine, _ := cmd.Flags().GetBool("combine")

		cli := client.NewClient(config.GetConfig())
		record, err := fetchRecord(cmd.Context(), cli, args[0], language)
		if err != nil {
			return err
		}

		tracks, err := record.ResolveSubtitleTracks(language)
		if err != nil {
			return err
		}

		bodies := make([]string, 0, len(tracks))
		for _, track := range tracks {
			body, err := cli.FetchWebVTT(cmd.Context(), track.URL)
			if err != nil {
				return fmt.Errorf("failed to fetch %s subtitles: %w", track.Language, err)
			}
			bodies = append(bodies, body)
		}

		if combine {
			combined, err := vtt.Combine(bodies)
			if err != nil {
				return err
			}
			path := output
			if path == "" || isDir(path) {
				name := fmt.Sprintf("wwdc_%d_%s.vtt", record.Identity.Year, record.Identity.ID)
				path = filepath.Join(path, name)
			}
			if err := writeOutput(path, combined); err != nil {
				return fmt.Errorf("failed to write combined subtitles: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Combined subtitles saved to %s\n", path)
			return nil
		}

		dir := output
		if dir == "" {
			dir = "."
		}
		for i, track := range tracks {
			path := filepath.Join(dir, util.SanitizeFilename(track.Language)+".vtt")
			if err := writeOutput(path, bodies[i]); err != nil {
				return fmt.Errorf("failed to write %s subtitles: %w", track.Language, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Subtitles saved to %s\n", path)
		}
		return nil
	},
}

func init() {
	webvttCmd.Flags().StringP("output", "o", "", "file or directory to save subtitles to")
	webvttCmd.Flags().StringP("language", "l", "", "preferred subtitle language (falls back to en)")
	webvttCmd.Flags().BoolP("combine", "c", false, "merge all fetched tracks into a single deduplicated file")

	rootCmd.AddCommand(webvttCmd)
}
