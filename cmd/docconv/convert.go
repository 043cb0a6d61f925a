// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docconv/internal/capability"
	"github.com/pdiddy/docconv/internal/convert"
	"github.com/pdiddy/docconv/internal/dispatch"
	"github.com/pdiddy/docconv/internal/history"
	"github.com/pdiddy/docconv/internal/recent"
	"github.com/pdiddy/docconv/internal/toolchain"
	"github.com/pdiddy/docconv/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert --kind KIND [--out PATH] FILE...",
	Short: "Convert one or more documents",
	Long: `Convert runs one conversion job per file, strictly one at a time, and
prints a result line for each. Kinds: pdf2word, pdf2excel, pdf2image,
word2pdf, excel2pdf.

Without --out the destination sits next to the source with the target
extension. A multi-page PDF to image conversion writes a directory of
page images named after the destination. Press Ctrl-C to stop after the
current page; jobs not yet started are reported as skipped.`,
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringP("kind", "k", "", "conversion kind: pdf2word, pdf2excel, pdf2image, word2pdf, excel2pdf")
	convertCmd.Flags().StringP("out", "o", "", "output path (single file only)")
	convertCmd.MarkFlagRequired("kind")

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more files to convert")
	}
	kindName, _ := cmd.Flags().GetString("kind")
	kind, err := types.ParseKind(kindName)
	if err != nil {
		return err
	}
	out, _ := cmd.Flags().GetString("out")
	if out != "" && len(args) > 1 {
		return fmt.Errorf("--out can only be used with a single file")
	}

	runner := toolchain.NewRunner()
	caps := capability.Detect(appConfig.Convert, runner)
	worker := convert.NewWorker(caps, appConfig.Convert, runner, convert.WithLogger(appLog))

	opts := []dispatch.Option{
		dispatch.WithObserver(newProgressPrinter(cmd.ErrOrStderr(), cmd.OutOrStdout())),
		dispatch.WithLogger(appLog),
	}
	if appConfig.History.Enabled {
		store, err := history.Open(appConfig.History.Path)
		if err != nil {
			appLog.Warn("history disabled", "error", err)
		} else {
			defer store.Close()
			opts = append(opts, dispatch.WithHistory(store))
		}
	}
	d := dispatch.New(worker, caps, opts...)

	if adv := d.Advisory(); adv != "" {
		fmt.Fprint(cmd.ErrOrStderr(), adv)
	}
	if err := d.Check(kind); err != nil {
		return err
	}

	recentList, err := recent.Load(appConfig.Recent.Path, appConfig.Recent.Max)
	if err != nil {
		appLog.Warn("recent files unavailable", "error", err)
	}

	rejected := 0
	for _, file := range args {
		job, err := d.Enqueue(kind, file, out)
		if err != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "failed: %s (%v)\n", filepath.Base(file), err)
			rejected++
			continue
		}
		if recentList != nil {
			recentList.Add(job.SourcePath)
		}
	}
	if recentList != nil {
		if err := recentList.Save(); err != nil {
			appLog.Warn("saving recent files failed", "error", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res := d.Drain(ctx)
	for _, job := range res.Pending {
		fmt.Fprintf(cmd.OutOrStdout(), "skipped: %s (cancelled)\n", filepath.Base(job.SourcePath))
	}

	failed := rejected + len(res.Failed) + len(res.Pending)
	if failed > 0 {
		return fmt.Errorf("%d of %d conversion(s) failed", failed, len(args))
	}
	return nil
}
