package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"strings"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/ivlev/scrollscrub/internal/config"
	"github.com/ivlev/scrollscrub/internal/framemap"
)

var (
	cfg     = config.Default()
	rootCmd *cobra.Command
)

func init() {
	rootCmd = &cobra.Command{
		Use:           "scrollscrub",
		Short:         "Render scroll-scrubbed frame sequences",
		Long:          "Plays a scroll path through a frame sequence the way the page would and exports the result as video or PNG frames.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&cfg.Sequence, "sequence", "s", cfg.Sequence, "Sequence preset (master, extended) or path to a YAML frame table")
	rootCmd.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(newRenderCmd(), newValidateCmd(), newPlanCmd(), newTableCmd())
}

func main() {
	cfg.BuildVersion = buildVersion()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "[-] %v\n", err)
		os.Exit(1)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      lvl,
		TimeFormat: "15:04:05",
	}))
}

// loadSequence resolves a preset name, falling back to a YAML table on disk.
func loadSequence(name string) (*framemap.Sequence, error) {
	if seq, err := framemap.Preset(name); err == nil {
		return seq, nil
	}
	if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
		return framemap.LoadFile(name)
	}
	if _, err := os.Stat(name); err == nil {
		return framemap.LoadFile(name)
	}
	return framemap.Preset(name)
}

func buildVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "dev"
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 7 {
			return s.Value[:7]
		}
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return v
	}
	return "dev"
}
