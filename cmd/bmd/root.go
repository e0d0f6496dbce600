package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ZhouJie2090/BiliBili-Manga-Downloader/internal/config"
	"github.com/ZhouJie2090/BiliBili-Manga-Downloader/version"
)

var (
	cfgFile  string
	sessData string
	verbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "bmd",
	Short: "Bilibili Manga episode downloader",
	Long: `bmd downloads Bilibili Manga episodes and assembles each one into a
PDF document, a folder of numbered images, or a zip archive, with
title/author/tool metadata embedded in the artifact.

Locked (paid) episodes need a SESSDATA session cookie from a logged-in
browser session; without one only free episodes are reachable.`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.bmd/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&sessData, "sessdata", "", "SESSDATA session cookie (overrides config)",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false, "enable debug logging",
	)

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		})))
	}

	rootCmd.AddCommand(versionCmd, infoCmd, downloadCmd, configCmd)
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if sessData != "" {
		cfg.SessData = sessData
	}
	return cfg, nil
}
