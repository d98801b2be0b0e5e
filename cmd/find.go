package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"yt-latest/domain/model"
	"yt-latest/infrastructure/configuration"
	httpHandler "yt-latest/interfaces/http"
	"yt-latest/interfaces/render"
	"yt-latest/usecase"
)

var findCmd = &cobra.Command{
	Use:   "find",
	Short: "Look up the latest matching upload once and print the rendered result",
	Example: `  yt-latest find --handle @examplechannel --title "/LIVE/i"
  yt-latest find --handle examplechannel --title "market update" --max 120 --format json`,
	RunE: runFind,
}

func init() {
	findCmd.Flags().String("handle", "", "channel handle, with or without @")
	findCmd.Flags().String("title", "", `title pattern: "/expr/flags" or plain text`)
	findCmd.Flags().Int("max", -1, "maximum uploads to scan (default from config)")
	findCmd.Flags().Bool("fallback", true, "return the newest upload when nothing matches")
	findCmd.Flags().String("format", "html", "output format: html or json")
	findCmd.Flags().Bool("autoplay", false, "add autoplay=1 to the embed URL")
	findCmd.Flags().Bool("mute", false, "add mute=1 to the embed URL")
	_ = findCmd.MarkFlagRequired("handle")
	_ = findCmd.MarkFlagRequired("title")
	rootCmd.AddCommand(findCmd)
}

func runFind(cmd *cobra.Command, _ []string) error {
	handle, _ := cmd.Flags().GetString("handle")
	title, _ := cmd.Flags().GetString("title")
	maxItems, _ := cmd.Flags().GetInt("max")
	fallback, _ := cmd.Flags().GetBool("fallback")
	format, _ := cmd.Flags().GetString("format")
	autoplay, _ := cmd.Flags().GetBool("autoplay")
	mute, _ := cmd.Flags().GetBool("mute")

	if maxItems < 0 {
		maxItems = configuration.C.LatestVideo.MaxSearches
	}
	pattern, err := httpHandler.ParseTitlePattern(title)
	if err != nil {
		return err
	}
	req, err := model.NewScanRequest(handle, pattern, maxItems, fallback, 0)
	if err != nil {
		return err
	}

	var renderer usecase.Renderer
	opts := render.NewEmbedOptions(autoplay, mute)
	switch format {
	case "html":
		renderer = render.NewIframeRenderer(opts, title)
	case "json":
		renderer = render.NewJSONRenderer(opts, title)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}

	uc, err := newLatestVideoUseCase(cmd.Context(), nil)
	if err != nil {
		return err
	}
	if uc == nil {
		return errors.New("API Key Missing.")
	}

	start := time.Now()
	payload, err := uc.FindLatestMatchingVideoCached(cmd.Context(), req, renderer)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), payload)
	cmd.PrintErrf("done in %s\n", time.Since(start).Round(time.Millisecond))
	return nil
}
