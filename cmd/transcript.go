package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wwdcgrab/wwdcgrab/internal/client"
	"github.com/wwdcgrab/wwdcgrab/internal/config"
	"github.com/wwdcgrab/wwdcgrab/internal/format"
)

var transcriptCmd = &cobra.Command{
	Use:   "transcript url...",
	Short: "Fetch transcripts from one or more session URLs",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		formatFlag, _ := cmd.Flags().GetString("format")
		language, _ := cmd.Flags().GetString("language")
		combine, _ := cmd.Flags().GetBool("combine")

		outFormat, err := format.ParseFormat(formatFlag)
		if err != nil {
			return err
		}
		if len(args) > 1 && output != "" && !combine && !isDir(output) {
			return fmt.Errorf("with multiple URLs, --output must be a directory unless --combine is used")
		}

		logger := config.GetLogger()
		cli := client.NewClient(config.GetConfig())

		var rendered []string
		failures := 0

		// One fully failed URL does not abort the batch.
		for _, url := range args {
			record, err := fetchRecord(cmd.Context(), cli, url, language)
			if err != nil {
				logger.Error().Err(err).Str("url", url).Msg("Failed to fetch session")
				failures++
				continue
			}
			if record.TranscriptContent == "" {
				logger.Warn().Str("title", record.Title).Msg("No transcript available")
				continue
			}

			content, err := format.RenderTranscript(record, outFormat)
			if err != nil {
				return err
			}
			rendered = append(rendered, content)

			if output != "" && !combine {
				path := output
				if isDir(output) || len(args) > 1 {
					path = filepath.Join(output, contentFilename(record, outFormat.Extension()))
				}
				if err := writeOutput(path, content); err != nil {
					return fmt.Errorf("failed to write transcript: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Transcript saved to %s\n", path)
			} else if output == "" && !combine {
				fmt.Fprintln(cmd.OutOrStdout(), content)
			}
		}

		if len(rendered) == 0 {
			if failures > 0 {
				return fmt.Errorf("no transcripts were successfully fetched (%d of %d URLs failed)", failures, len(args))
			}
			return fmt.Errorf("no transcripts available for the given URLs")
		}

		if combine {
			combined := strings.Join(rendered, "\n\n")
			if output == "" {
				fmt.Fprintln(cmd.OutOrStdout(), combined)
				return nil
			}
			path := output
			if isDir(output) {
				path = filepath.Join(output, "combined_transcripts."+outFormat.Extension())
			}
			if err := writeOutput(path, combined); err != nil {
				return fmt.Errorf("failed to write combined transcripts: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Combined transcripts saved to %s\n", path)
		}
		return nil
	},
}

func init() {
	transcriptCmd.Flags().StringP("output", "o", "", "file or directory to save transcripts to (prints to stdout when omitted)")
	transcriptCmd.Flags().StringP("format", "f", "text", "output format (text, markdown or json)")
	transcriptCmd.Flags().StringP("language", "l", "", "language override for localized pages")
	transcriptCmd.Flags().BoolP("combine", "c", false, "combine all transcripts into a single output")

	rootCmd.AddCommand(transcriptCmd)
}
