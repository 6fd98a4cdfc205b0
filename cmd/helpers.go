package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/wwdcgrab/wwdcgrab/internal/client"
	"github.com/wwdcgrab/wwdcgrab/internal/config"
	"github.com/wwdcgrab/wwdcgrab/internal/filesystem"
	"github.com/wwdcgrab/wwdcgrab/internal/models"
	"github.com/wwdcgrab/wwdcgrab/internal/parser"
	"github.com/wwdcgrab/wwdcgrab/internal/urlnorm"
	"github.com/wwdcgrab/wwdcgrab/internal/util"
)

// fetchRecord resolves a session URL into its extracted record.
func fetchRecord(ctx context.Context, cli client.Client, rawURL, language string) (*models.SessionRecord, error) {
	identity, err := urlnorm.Parse(rawURL, language)
	if err != nil {
		return nil, err
	}

	markup, err := cli.FetchSessionPage(ctx, identity)
	if err != nil {
		return nil, err
	}

	sessionParser := parser.NewSessionParser(config.GetConfig().BaseURL)
	return sessionParser.Parse(strings.NewReader(markup), identity)
}

// sessionDir is the per-session destination directory under the output root.
func sessionDir(outputRoot string, identity models.SessionIdentity) string {
	return filepath.Join(outputRoot, fmt.Sprintf("wwdc_%d_%s", identity.Year, identity.ID))
}

// contentFilename builds the per-session output filename for batch fetches.
func contentFilename(record *models.SessionRecord, extension string) string {
	return fmt.Sprintf("%s_%s.%s", record.Identity.ID, util.SanitizeFilename(record.Title), extension)
}

// writeOutput writes rendered content through the filesystem backend,
// creating parent directories as needed.
func writeOutput(path, content string) error {
	fs := filesystem.API()
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return fs.WriteFile(path, []byte(content), 0o644)
}

// isDir reports whether path exists and is a directory.
func isDir(path string) bool {
	info, err := filesystem.API().Stat(path)
	return err == nil && info.IsDir()
}
