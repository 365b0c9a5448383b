package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ivlev/scrollscrub/internal/director"
	"github.com/ivlev/scrollscrub/internal/framemap"
	"github.com/ivlev/scrollscrub/internal/preload"
	"github.com/ivlev/scrollscrub/internal/source"
)

func newValidateCmd() *cobra.Command {
	var assets string
	var workers int
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a sequence table and, optionally, its frames",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(cfg.LogLevel)
			seq, err := loadSequence(cfg.Sequence)
			if err != nil {
				return err
			}
			if err := seq.Validate(); err != nil {
				return err
			}
			for _, cf := range seq.Crossfades() {
				logger.Info("crossfade", "from", cf.From, "to", cf.To, "frames", fmt.Sprintf("%d-%d", cf.FirstFrame, cf.LastFrame))
			}
			logger.Info("sequence ok", "frames", seq.TotalFrames, "sections", len(seq.Sections))

			if assets == "" {
				return nil
			}
			loader, err := source.New(assets)
			if err != nil {
				return err
			}
			rep, err := source.Check(cmd.Context(), loader, seq, seq.TotalFrames, workers)
			if err != nil {
				return err
			}
			for size, n := range rep.Sizes {
				logger.Info("frame size", "width", size.X, "height", size.Y, "frames", n)
			}
			if err := rep.Err(); err != nil {
				logger.Error("assets incomplete", "checked", rep.Checked, "missing", len(rep.Missing))
				return err
			}
			logger.Info("assets ok", "checked", rep.Checked)
			return nil
		},
	}
	cmd.Flags().StringVarP(&assets, "assets", "a", "", "Also probe every frame under this directory or URL")
	cmd.Flags().IntVar(&workers, "workers", 16, "Concurrent probes")
	return cmd
}

func newPlanCmd() *cobra.Command {
	var width, duration float64
	var writeScript bool
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the preload schedule and optionally write a tour script",
		RunE: func(cmd *cobra.Command, args []string) error {
			seq, err := loadSequence(cfg.Sequence)
			if err != nil {
				return err
			}
			opts := preload.DefaultOptions()
			skip := preload.SkipFactor(width, opts.SkipRules)
			priority, bulk := preload.Split(preload.Plan(seq.TotalFrames, skip), opts.PriorityCount)
			batches := preload.Batches(bulk, opts.BatchSize)

			fmt.Printf("Viewport %.0fpx: every %d. frame, %d of %d\n", width, skip, len(priority)+len(bulk), seq.TotalFrames)
			fmt.Printf("Priority: %d frames\n", len(priority))
			fmt.Printf("Bulk: %d batches of up to %d\n", len(batches), opts.BatchSize)

			if !writeScript {
				return nil
			}
			script, err := director.NewDirector().GenerateScript(seq, cfg.Sequence, duration)
			if err != nil {
				return err
			}
			path := director.GenerateScriptPath(director.DefaultScriptDir)
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return err
			}
			if err := director.WriteScript(script, path); err != nil {
				return err
			}
			fmt.Printf("Script: %s (%.1fs)\n", path, script.Duration())
			return nil
		},
	}
	cmd.Flags().Float64Var(&width, "width", 1280, "Viewport width in CSS pixels")
	cmd.Flags().Float64VarP(&duration, "duration", "d", 20, "Tour length in seconds")
	cmd.Flags().BoolVar(&writeScript, "write-script", false, "Write a generated tour to "+director.DefaultScriptDir+"/")
	return cmd
}

func newTableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "table <file>",
		Short: "Write the selected sequence as an editable YAML table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seq, err := loadSequence(cfg.Sequence)
			if err != nil {
				return err
			}
			return framemap.WriteFile(seq, args[0])
		},
	}
}
