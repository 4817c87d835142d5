package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/pbaille/writehub/internal/domain"
	"github.com/pbaille/writehub/internal/journal"
	"github.com/pbaille/writehub/internal/report"
	"github.com/pbaille/writehub/internal/store"
)

func addCmd() *cobra.Command {
	var (
		category string
		tags     []string
		date     string
	)

	cmd := &cobra.Command{
		Use:   "add [content]",
		Short: "Write a new viewpoint",
		Long:  "Write a new viewpoint. Without arguments the content is read from an editor, or from stdin when it is not a terminal.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				content, err := readContent(args)
				if err != nil {
					return err
				}

				if category == "" && len(args) == 0 && interactive() {
					if category, err = pickCategory(ctx, a); err != nil {
						return err
					}
				}

				var created time.Time
				if date != "" {
					if created, err = parseWhen(date, a.loc, time.Now()); err != nil {
						return err
					}
				}

				v, err := a.journal.Create(ctx, journal.NewViewpoint{
					Content:   content,
					Category:  category,
					Tags:      tags,
					CreatedAt: created,
				})
				if err != nil {
					return err
				}

				fmt.Printf("Added viewpoint: %s\n", report.ShortID(v.ID))
				fmt.Printf("%s, %d words\n", v.Category, v.WordCount)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "category name")
	cmd.Flags().StringSliceVarP(&tags, "tags", "t", nil, "comma-separated tags")
	cmd.Flags().StringVar(&date, "date", "", "backdate to YYYY-MM-DD or RFC 3339 time")
	return cmd
}

func listCmd() *cobra.Command {
	var (
		limit    int
		category string
		from, to string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent viewpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				q := store.ViewpointQuery{Category: category, Limit: limit}
				if from != "" {
					d, err := domain.ParseDay(from)
					if err != nil {
						return domain.NewValidationError("--from must be YYYY-MM-DD")
					}
					q.From = d.Start(a.loc)
				}
				if to != "" {
					d, err := domain.ParseDay(to)
					if err != nil {
						return domain.NewValidationError("--to must be YYYY-MM-DD")
					}
					q.To = d.AddDays(1).Start(a.loc)
				}

				viewpoints, err := a.journal.List(ctx, q)
				if err != nil {
					return err
				}
				if len(viewpoints) == 0 {
					fmt.Println("No viewpoints yet. Use 'writehub add' to write one.")
					return nil
				}

				now := time.Now()
				for _, v := range viewpoints {
					fmt.Println(report.ViewpointLine(v, now))
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of viewpoints to show")
	cmd.Flags().StringVarP(&category, "category", "c", "", "only this category")
	cmd.Flags().StringVar(&from, "from", "", "first day, YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "last day, YYYY-MM-DD")
	return cmd
}

func showCmd() *cobra.Command {
	var copyContent bool

	cmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Show a viewpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				v, err := a.journal.Get(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Println(report.ViewpointDetail(*v, a.loc))

				if copyContent {
					if err := clipboard.WriteAll(v.Content); err != nil {
						return fmt.Errorf("copy to clipboard: %w", err)
					}
					fmt.Println("\n(copied to clipboard)")
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&copyContent, "copy", false, "copy the content to the clipboard")
	return cmd
}

func editCmd() *cobra.Command {
	var (
		content  string
		category string
		tags     []string
	)

	cmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Edit a viewpoint",
		Long:  "Edit a viewpoint. Without flags the content is opened in an editor.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				var upd journal.ViewpointUpdate
				if cmd.Flags().Changed("content") {
					upd.Content = &content
				}
				if cmd.Flags().Changed("category") {
					upd.Category = &category
				}
				if cmd.Flags().Changed("tags") {
					upd.Tags = &tags
				}

				if upd.Content == nil && upd.Category == nil && upd.Tags == nil {
					if !interactive() {
						return domain.NewValidationError("nothing to change; pass --content, --category or --tags")
					}
					v, err := a.journal.Get(ctx, args[0])
					if err != nil {
						return err
					}
					edited := v.Content
					prompt := &survey.Editor{
						Message:       "Content",
						Default:       v.Content,
						AppendDefault: true,
						HideDefault:   true,
						FileName:      "*.md",
					}
					if err := survey.AskOne(prompt, &edited); err != nil {
						return err
					}
					upd.Content = &edited
				}

				v, err := a.journal.Update(ctx, args[0], upd)
				if err != nil {
					return err
				}
				fmt.Printf("Updated viewpoint: %s (%d words)\n", report.ShortID(v.ID), v.WordCount)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&content, "content", "", "new content")
	cmd.Flags().StringVarP(&category, "category", "c", "", "new category")
	cmd.Flags().StringSliceVarP(&tags, "tags", "t", nil, "replace the tags")
	return cmd
}

func deleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a viewpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				v, err := a.journal.Get(ctx, args[0])
				if err != nil {
					return err
				}
				ok, err := confirm(yes, fmt.Sprintf("Delete viewpoint %s (%d words)?", report.ShortID(v.ID), v.WordCount))
				if err != nil || !ok {
					return err
				}

				if _, err := a.journal.Delete(ctx, v.ID); err != nil {
					return err
				}
				fmt.Printf("Deleted viewpoint: %s\n", report.ShortID(v.ID))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func searchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search viewpoints",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				viewpoints, err := a.journal.Search(ctx, strings.Join(args, " "), limit)
				if err != nil {
					return err
				}
				if len(viewpoints) == 0 {
					fmt.Println("No matching viewpoints found.")
					return nil
				}

				now := time.Now()
				for _, v := range viewpoints {
					fmt.Println(report.ViewpointLine(v, now))
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "maximum results")
	return cmd
}

// readContent takes the content from args, an editor or piped stdin
func readContent(args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	if !interactive() {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}

	var content string
	prompt := &survey.Editor{Message: "Viewpoint", FileName: "*.md"}
	if err := survey.AskOne(prompt, &content, survey.WithValidator(survey.Required)); err != nil {
		return "", err
	}
	return content, nil
}

// pickCategory asks for one of the known categories
func pickCategory(ctx context.Context, a *app) (string, error) {
	categories, err := a.journal.ListCategories(ctx)
	if err != nil {
		return "", err
	}
	if len(categories) == 0 {
		return "", nil
	}

	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = c.Name
	}
	var name string
	prompt := &survey.Select{Message: "Category", Options: names, Default: names[0]}
	if err := survey.AskOne(prompt, &name); err != nil {
		return "", err
	}
	return name, nil
}

// confirm asks a yes/no question unless yes is already given. Without a
// terminal it refuses.
func confirm(yes bool, message string) (bool, error) {
	if yes {
		return true, nil
	}
	if !interactive() {
		return false, errors.New("refusing without a terminal; pass --yes")
	}
	ok := false
	if err := survey.AskOne(&survey.Confirm{Message: message}, &ok); err != nil {
		return false, err
	}
	return ok, nil
}

// parseWhen reads a YYYY-MM-DD day (taking now's time of day) or an RFC
// 3339 timestamp
func parseWhen(s string, loc *time.Location, now time.Time) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	d, err := domain.ParseDay(s)
	if err != nil {
		return time.Time{}, domain.NewValidationError("date must be YYYY-MM-DD or RFC 3339")
	}
	now = now.In(loc)
	return time.Date(d.Year, d.Month, d.Day, now.Hour(), now.Minute(), now.Second(), 0, loc), nil
}
