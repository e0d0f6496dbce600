package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/ZhouJie2090/BiliBili-Manga-Downloader/internal/assemble"
	"github.com/ZhouJie2090/BiliBili-Manga-Downloader/internal/comic"
	"github.com/ZhouJie2090/BiliBili-Manga-Downloader/internal/progress"
)

var (
	dlFrom    int
	dlTo      int
	dlFormat  string
	dlOutput  string
	dlWorkers int
)

var downloadCmd = &cobra.Command{
	Use:   "download <comic-id>",
	Short: "Download episodes of a comic",
	Long: `Download fetches every unlocked episode in the selected ordinal range
and assembles each one into the configured output format. Episodes whose
output already exists are skipped without any network traffic.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("comic id must be a number: %q", args[0])
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if dlFormat == "" {
			dlFormat = cfg.SaveFormat
		}
		format, err := assemble.ParseFormat(dlFormat)
		if err != nil {
			return err
		}
		if dlOutput == "" {
			dlOutput = cfg.SaveDir
		}
		if dlWorkers == 0 {
			dlWorkers = cfg.Workers
		}

		c, err := comic.New(cmd.Context(), id, comic.Options{
			SessData: cfg.SessData,
			RootDir:  dlOutput,
			Format:   format,
			Workers:  dlWorkers,
			From:     dlFrom,
			To:       dlTo,
		})
		if err != nil {
			return err
		}

		total := 0
		for _, ep := range c.Episodes() {
			if ep.Available {
				total++
			}
		}

		sink := progress.NewChannelSink(64)
		done := make(chan struct{})
		go consumeEvents(sink, total, done)

		dlErr := c.Download(cmd.Context(), sink)
		sink.Close()
		<-done

		if dlErr != nil {
			return dlErr
		}
		fmt.Printf("done: %s\n", c.Dir())
		return nil
	},
}

// consumeEvents renders pipeline progress: a progress bar over episodes on
// a terminal, plain logs otherwise. One tick per finished task, whether it
// succeeded or hit the failure sentinel.
func consumeEvents(sink *progress.ChannelSink, total int, done chan<- struct{}) {
	defer close(done)

	var bar *progressbar.ProgressBar
	if isatty.IsTerminal(os.Stdout.Fd()) {
		bar = progressbar.NewOptions(total,
			progressbar.OptionSetDescription("episodes"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	finished := make(map[string]bool)
	for ev := range sink.Events() {
		terminal := ev.Rate == progress.FailureRate || ev.Rate == 100
		if !terminal || finished[ev.TaskID] {
			continue
		}
		finished[ev.TaskID] = true
		if bar != nil {
			bar.Add(1)
		} else if ev.Rate == progress.FailureRate {
			slog.Error("episode failed", "task", ev.TaskID)
		} else {
			slog.Info("episode done", "path", ev.Path)
		}
	}
	if bar != nil {
		bar.Finish()
	}
}

func init() {
	downloadCmd.Flags().IntVar(&dlFrom, "from", 0, "first episode ordinal (default: no lower bound)")
	downloadCmd.Flags().IntVar(&dlTo, "to", 0, "last episode ordinal (default: no upper bound)")
	downloadCmd.Flags().StringVar(&dlFormat, "format", "", "output format: pdf, folder, or zip (overrides config)")
	downloadCmd.Flags().StringVarP(&dlOutput, "output", "o", "", "save directory root (overrides config)")
	downloadCmd.Flags().IntVar(&dlWorkers, "workers", 0, "concurrent episode downloads (overrides config)")
}
