package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ZhouJie2090/BiliBili-Manga-Downloader/internal/config"
	"github.com/ZhouJie2090/BiliBili-Manga-Downloader/internal/home"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default config file to ~/.bmd/config.yaml",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := home.New("")
		if err != nil {
			return err
		}
		if dir.ConfigExists() {
			return fmt.Errorf("config already exists at %s", dir.ConfigPath())
		}
		if err := dir.EnsureExists(); err != nil {
			return err
		}
		if err := config.WriteDefault(dir.ConfigPath()); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", dir.ConfigPath())
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
}
