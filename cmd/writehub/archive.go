package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pbaille/writehub/internal/archive"
	"github.com/pbaille/writehub/internal/fetcher"
	"github.com/pbaille/writehub/internal/journal"
	"github.com/pbaille/writehub/internal/report"
)

func exportCmd() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write viewpoints as text files under the export directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				var (
					res archive.ExportResult
					err error
				)
				if category != "" {
					res, err = a.archive.ExportCategory(ctx, category)
				} else {
					res, err = a.archive.ExportAll(ctx)
				}
				if err != nil {
					return err
				}

				fmt.Printf("Exported %d viewpoints to %s\n", len(res.Files), a.archive.Root())
				printFailures(res.Failed)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "only this category")
	return cmd
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [dir]",
		Short: "Import the text files of a category directory",
		Long:  "Import the .txt files of a directory. The directory name is the category.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				res, err := a.archive.ImportDirectory(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Printf("Imported %d viewpoints\n", len(res.Imported))
				printFailures(res.Failed)
				return nil
			})
		},
	}
}

func backupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Write a JSON backup of every viewpoint and category",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				path, err := a.archive.CreateBackup(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("Backup written to %s\n", path)
				return nil
			})
		},
	}
}

func restoreCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "restore [file]",
		Short: "Restore a JSON backup",
		Long:  "Restore a JSON backup. Records are added as they are; restoring twice duplicates them.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				ok, err := confirm(yes, fmt.Sprintf("Restore %s into %s?", args[0], a.cfg.DBPath))
				if err != nil || !ok {
					return err
				}
				res, err := a.archive.RestoreFile(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Printf("Restored %d viewpoints and %d categories, recomputed %d days\n",
					res.Viewpoints, res.Categories, res.Days)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func clipCmd() *cobra.Command {
	var (
		category string
		tags     []string
	)

	cmd := &cobra.Command{
		Use:   "clip [url]",
		Short: "Save the readable text of a web page as a viewpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				fmt.Printf("Fetching %s... ", args[0])
				page, err := fetcher.New(nil).Fetch(ctx, args[0])
				if err != nil {
					fmt.Println("failed")
					return err
				}
				fmt.Println("done")

				v, err := a.journal.Create(ctx, journal.NewViewpoint{
					Content:  page.Viewpoint(),
					Category: category,
					Tags:     append([]string{"clip"}, tags...),
				})
				if err != nil {
					return err
				}

				title := page.Title
				if title == "" {
					title = page.URL
				}
				fmt.Printf("Added viewpoint: %s\n", report.ShortID(v.ID))
				fmt.Printf("%s, %d words\n", title, v.WordCount)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "category name")
	cmd.Flags().StringSliceVarP(&tags, "tags", "t", nil, "extra tags")
	return cmd
}

func printFailures(failed []archive.Failure) {
	if len(failed) == 0 {
		return
	}
	fmt.Printf("%d skipped:\n", len(failed))
	for _, f := range failed {
		what := f.Path
		if what == "" {
			what = f.ID
		}
		fmt.Printf("  - %s: %s\n", what, strings.TrimSpace(f.Error))
	}
}
