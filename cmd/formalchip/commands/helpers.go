package commands

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ulamai/formalchip/internal/config"
)

// loadConfig resolves the --config flag (walking up from the command)
// and loads it.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil || path == "" {
		path, _ = cmd.Root().PersistentFlags().GetString("config")
	}
	return config.Load(path)
}

// newLogger builds the one slog.Logger threaded from the CLI into the
// loop (spec.md §7 FULL), leveled by --debug.
func newLogger(cmd *cobra.Command) *slog.Logger {
	debug, _ := cmd.Root().PersistentFlags().GetBool("debug")
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// relPathOrAbs records paths in state.json relative to the run
// directory when possible, falling back to the absolute path so a
// cross-device or otherwise unrelated path is never silently dropped.
func relPathOrAbs(runDir, path string) string {
	if path == "" {
		return ""
	}
	rel, err := filepath.Rel(runDir, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}
