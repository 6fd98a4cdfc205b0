package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wwdcgrab/wwdcgrab/internal/client"
	"github.com/wwdcgrab/wwdcgrab/internal/config"
	"github.com/wwdcgrab/wwdcgrab/internal/format"
)

var codeCmd = &cobra.Command{
	Use:   "code url...",
	Short: "Fetch inline code samples from one or more session URLs",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		formatFlag, _ := cmd.Flags().GetString("format")
		language, _ := cmd.Flags().GetString("language")

		outFormat, err := format.ParseFormat(formatFlag)
		if err != nil {
			return err
		}
		if len(args) > 1 && output != "" && !isDir(output) {
			return fmt.Errorf("with multiple URLs, --output must be a directory")
		}

		logger := config.GetLogger()
		cli := client.NewClient(config.GetConfig())

		succeeded := 0
		failures := 0

		for _, url := range args {
			record, err := fetchRecord(cmd.Context(), cli, url, language)
			if err != nil {
				logger.Error().Err(err).Str("url", url).Msg("Failed to fetch session")
				failures++
				continue
			}
			if len(record.CodeSamples) == 0 {
				logger.Warn().Str("title", record.Title).Msg("No code samples on page")
				continue
			}

			content, err := format.RenderCodeSamples(record, outFormat)
			if err != nil {
				return err
			}
			succeeded++

			if output == "" {
				fmt.Fprintln(cmd.OutOrStdout(), content)
				continue
			}
			path := output
			if isDir(output) || len(args) > 1 {
				path = filepath.Join(output, contentFilename(record, outFormat.Extension()))
			}
			if err := writeOutput(path, content); err != nil {
				return fmt.Errorf("failed to write code samples: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Code samples saved to %s\n", path)
		}

		if succeeded == 0 && failures > 0 {
			return fmt.Errorf("no code samples were successfully fetched (%d of %d URLs failed)", failures, len(args))
		}
		return nil
	},
}

func init() {
	codeCmd.Flags().StringP("output", "o", "", "file or directory to save code samples to (prints to stdout when omitted)")
	codeCmd.Flags().StringP("format", "f", "text", "output format (text, markdown or json)")
	codeCmd.Flags().StringP("language", "l", "", "language override for localized pages")

	rootCmd.AddCommand(codeCmd)
}
