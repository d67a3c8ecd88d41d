package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/nanodraw/draw"
)

func (a *App) newGenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate an image and stream its progress",
		Long: `Generate an image and stream its progress.

Examples:
  nanodraw generate --prompt "a red fox in snow"
  nanodraw generate --prompt "same fox, watercolor" --url https://example.com/fox.png --aspect-ratio 16:9
  nanodraw generate --prompt "a red fox" --json`,
		Args: cobra.NoArgs,
		RunE: a.runGenerate,
	}

	f := cmd.Flags()
	f.StringVar(&a.gen.prompt, "prompt", "", "image description (required)")
	f.StringVar(&a.gen.model, "model", "", "model (default from draw.model)")
	f.StringVar(&a.gen.aspectRatio, "aspect-ratio", "", "aspect ratio, e.g. 1:1 or 16:9 (default auto)")
	f.StringVar(&a.gen.imageSize, "image-size", "", "image size: 1K, 2K or 4K (default 1K)")
	f.StringArrayVar(&a.gen.urls, "url", nil, "reference image URL (repeatable)")
	f.StringVar(&a.gen.webhook, "webhook", "", "webhook URL notified on completion")
	f.BoolVar(&a.gen.noProgress, "no-progress", false, "ask the service not to send progress events")
	_ = cmd.MarkFlagRequired("prompt")

	return cmd
}

func (a *App) runGenerate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	shutdown, err := a.initObservability(ctx)
	if err != nil {
		return err
	}
	defer a.shutdownObservability(shutdown)

	client, err := a.newClient()
	if err != nil {
		return err
	}
	defer client.Close(ctx)

	req := draw.GenerationRequest{
		Prompt:           a.gen.prompt,
		Model:            a.gen.model,
		AspectRatio:      a.gen.aspectRatio,
		ImageSize:        a.gen.imageSize,
		ReferenceURLs:    a.gen.urls,
		WebhookURL:       a.gen.webhook,
		SuppressProgress: a.gen.noProgress,
	}

	progress := newProgressPrinter(a.stderr, a.log)
	out, err := client.Generate(ctx, req, progress.observe)
	progress.done()
	if err != nil {
		if draw.MayStillComplete(err) && progress.taskID != "" {
			fmt.Fprintf(a.stderr, "The task may still finish; check it with: nanodraw result %s --wait\n", progress.taskID)
		}
		return err
	}
	return a.printOutcome(out)
}
