package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pbaille/writehub/internal/journal"
	"github.com/pbaille/writehub/internal/report"
)

func categoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "category",
		Aliases: []string{"categories", "cat"},
		Short:   "Manage categories",
	}
	cmd.AddCommand(categoryListCmd())
	cmd.AddCommand(categoryAddCmd())
	cmd.AddCommand(categoryEditCmd())
	cmd.AddCommand(categoryDeleteCmd())
	return cmd
}

func categoryListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List categories with their viewpoint counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				categories, err := a.journal.ListCategories(ctx)
				if err != nil {
					return err
				}
				if len(categories) == 0 {
					fmt.Println("No categories yet. Use 'writehub category add' to create one.")
					return nil
				}
				for _, c := range categories {
					fmt.Println(report.CategoryLine(c))
				}
				return nil
			})
		},
	}
}

func categoryAddCmd() *cobra.Command {
	var in journal.NewCategory

	cmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Create a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				in.Name = args[0]
				c, err := a.journal.CreateCategory(ctx, in)
				if err != nil {
					return err
				}
				fmt.Printf("Created category: %s (%s)\n", c.Name, c.Color)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&in.Color, "color", "", "hex color, #RRGGBB")
	cmd.Flags().StringVar(&in.DirectoryPath, "dir", "", "export directory override")
	cmd.Flags().StringVarP(&in.Description, "description", "d", "", "description")
	return cmd
}

func categoryEditCmd() *cobra.Command {
	var name, color, dir, description string

	cmd := &cobra.Command{
		Use:   "edit [id or name]",
		Short: "Rename or recolor a category",
		Long:  "Rename or recolor a category. A rename moves its viewpoints to the new name.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				var upd journal.CategoryUpdate
				if cmd.Flags().Changed("name") {
					upd.Name = &name
				}
				if cmd.Flags().Changed("color") {
					upd.Color = &color
				}
				if cmd.Flags().Changed("dir") {
					upd.DirectoryPath = &dir
				}
				if cmd.Flags().Changed("description") {
					upd.Description = &description
				}

				c, err := a.journal.UpdateCategory(ctx, args[0], upd)
				if err != nil {
					return err
				}
				fmt.Println(report.CategoryLine(*c))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&color, "color", "", "new hex color")
	cmd.Flags().StringVar(&dir, "dir", "", "new export directory")
	cmd.Flags().StringVarP(&description, "description", "d", "", "new description")
	return cmd
}

func categoryDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete [id or name]",
		Short: "Delete an empty category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				ok, err := confirm(yes, fmt.Sprintf("Delete category %s?", args[0]))
				if err != nil || !ok {
					return err
				}
				c, err := a.journal.DeleteCategory(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Printf("Deleted category: %s\n", c.Name)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}
