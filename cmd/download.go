package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wwdcgrab/wwdcgrab/internal/client"
	"github.com/wwdcgrab/wwdcgrab/internal/config"
	"github.com/wwdcgrab/wwdcgrab/internal/models"
	"github.com/wwdcgrab/wwdcgrab/internal/services"
)

var downloadCmd = &cobra.Command{
	Use:   "download url",
	Short: "Download video, transcript, subtitles and sample code from a session URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		language, _ := cmd.Flags().GetString("language")
		qualityFlag, _ := cmd.Flags().GetString("quality")

		quality := models.ParseVideoQuality(qualityFlag)
		if qualityFlag != "" && quality == models.QualityUnknown {
			return fmt.Errorf("unknown quality %q (want hd or sd)", qualityFlag)
		}

		cli := client.NewClient(config.GetConfig())
		record, err := fetchRecord(cmd.Context(), cli, args[0], language)
		if err != nil {
			return err
		}

		destRoot := sessionDir(output, record.Identity)
		downloader := services.NewDownloader(cli)
		result := downloader.DownloadAll(cmd.Context(), record, destRoot, services.Options{
			Quality:      quality,
			SkipExisting: true,
		})

		fmt.Fprintf(cmd.OutOrStdout(), "Download summary for %s:\n", record.Title)
		for _, kind := range models.AllResourceKinds {
			outcome := result[kind]
			switch outcome.State {
			case models.StateSucceeded:
				fmt.Fprintf(cmd.OutOrStdout(), "  %-13s %s\n", kind, outcome.Paths)
			case models.StateFailed:
				fmt.Fprintf(cmd.OutOrStdout(), "  %-13s failed: %v\n", kind, outcome.Err)
			default:
				fmt.Fprintf(cmd.OutOrStdout(), "  %-13s not available\n", kind)
			}
		}

		if failures := result.Failures(); len(failures) == len(models.AllResourceKinds) {
			return fmt.Errorf("every resource download failed")
		}
		return nil
	},
}

func init() {
	downloadCmd.Flags().StringP("output", "o", ".", "directory to save downloaded content")
	downloadCmd.Flags().StringP("language", "l", "", "language override for localized pages")
	downloadCmd.Flags().StringP("quality", "q", "hd", "preferred video quality (hd or sd)")

	rootCmd.AddCommand(downloadCmd)
}
