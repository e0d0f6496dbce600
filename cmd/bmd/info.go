package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/ZhouJie2090/BiliBili-Manga-Downloader/internal/comic"
)

var infoEpisodes bool

var infoCmd = &cobra.Command{
	Use:   "info <comic-id>",
	Short: "Show comic details and the episode list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("comic id must be a number: %q", args[0])
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		c, err := comic.New(cmd.Context(), id, comic.Options{
			SessData: cfg.SessData,
			RootDir:  cfg.SaveDir,
		})
		if err != nil {
			return err
		}
		d := c.Detail()

		tw := table.NewWriter()
		tw.SetOutputMirror(os.Stdout)
		tw.SetStyle(table.StyleRounded)
		tw.AppendHeader(table.Row{"Title", "Authors", "Tags", "Episodes"})
		tw.AppendRow(table.Row{
			d.Title,
			strings.Join(d.AuthorName, ", "),
			strings.Join(d.Styles, " "),
			d.Total,
		})
		tw.Render()

		if d.Evaluate != "" {
			fmt.Println()
			fmt.Println(d.Evaluate)
		}

		if infoEpisodes {
			fmt.Println()
			etw := table.NewWriter()
			etw.SetOutputMirror(os.Stdout)
			etw.SetStyle(table.StyleRounded)
			etw.AppendHeader(table.Row{"Ord", "Title", "Available"})
			for _, ep := range c.Episodes() {
				etw.AppendRow(table.Row{ep.Ordinal, ep.Title, ep.Available})
			}
			etw.Render()
		}
		return nil
	},
}

func init() {
	infoCmd.Flags().BoolVar(&infoEpisodes, "episodes", false, "also list downloadable episodes")
}
