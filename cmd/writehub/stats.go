package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pbaille/writehub/internal/domain"
	"github.com/pbaille/writehub/internal/report"
	"github.com/pbaille/writehub/internal/stats"
)

func statsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Writing statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, printSummary)
		},
	}
	cmd.AddCommand(statsSummaryCmd())
	cmd.AddCommand(statsStreakCmd())
	cmd.AddCommand(statsRangeCmd())
	cmd.AddCommand(statsCalendarCmd())
	cmd.AddCommand(statsDayCmd())
	cmd.AddCommand(statsCategoriesCmd())
	cmd.AddCommand(statsRebuildCmd())
	return cmd
}

func statsSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Totals and streaks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, printSummary)
		},
	}
}

func printSummary(ctx context.Context, a *app) error {
	totals, err := a.stats.Totals(ctx, a.store)
	if err != nil {
		return err
	}
	streaks, err := a.stats.Streaks(ctx, a.store)
	if err != nil {
		return err
	}
	fmt.Println(report.Summary(totals, streaks))
	return nil
}

func statsStreakCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "streak",
		Aliases: []string{"streaks"},
		Short:   "Current and longest writing streak",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				s, err := a.stats.Streaks(ctx, a.store)
				if err != nil {
					return err
				}
				fmt.Println(report.Streaks(s))
				return nil
			})
		},
	}
}

func statsRangeCmd() *cobra.Command {
	var period, date string

	cmd := &cobra.Command{
		Use:   "range",
		Short: "Daily statistics for a day, week, month or year",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				p, err := stats.ParsePeriod(period)
				if err != nil {
					return err
				}
				at, err := dayFlag(date, a)
				if err != nil {
					return err
				}
				rows, err := a.stats.Range(ctx, a.store, p, at)
				if err != nil {
					return err
				}
				from, to := a.stats.Bounds(p, at)
				fmt.Print(report.Range(p, from, to, rows))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&period, "period", "p", string(stats.PeriodWeek), "day, week, month or year")
	cmd.Flags().StringVar(&date, "date", "", "a day inside the period, YYYY-MM-DD (default today)")
	return cmd
}

func statsCalendarCmd() *cobra.Command {
	var year int

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Contribution calendar for a year",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if year == 0 {
					year = a.stats.Today().Year
				}
				grid, err := a.stats.ContributionGrid(ctx, a.store, year)
				if err != nil {
					return err
				}
				fmt.Print(report.Calendar(grid))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "calendar year (default this year)")
	return cmd
}

func statsDayCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "day",
		Short: "Statistics and viewpoints of one day",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				at, err := dayFlag(date, a)
				if err != nil {
					return err
				}
				rows, err := a.stats.Day(ctx, a.store, at)
				if err != nil {
					return err
				}
				var ds *domain.DailyStat
				if len(rows) > 0 {
					ds = &rows[0]
				}
				fmt.Println(report.Day(a.stats.DayOf(at), ds))

				viewpoints, err := a.journal.ForDay(ctx, at)
				if err != nil {
					return err
				}
				now := time.Now()
				for _, v := range viewpoints {
					fmt.Println(report.ViewpointLine(v, now))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "YYYY-MM-DD (default today)")
	return cmd
}

func statsCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "Viewpoints per category",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				counts, err := a.stats.CategoryBreakdown(ctx, a.store)
				if err != nil {
					return err
				}
				fmt.Print(report.Categories(counts))
				return nil
			})
		},
	}
}

func statsRebuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild",
		Short: "Recompute every day's statistics from the viewpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				n, err := a.stats.RebuildAll(ctx, a.store)
				if err != nil {
					return err
				}
				fmt.Printf("Recomputed %d days\n", n)
				return nil
			})
		},
	}
}

// dayFlag turns an optional YYYY-MM-DD flag into local midnight of that
// day, defaulting to today
func dayFlag(value string, a *app) (time.Time, error) {
	if value == "" {
		return a.stats.Today().Start(a.loc), nil
	}
	d, err := domain.ParseDay(value)
	if err != nil {
		return time.Time{}, domain.NewValidationError("date must be YYYY-MM-DD")
	}
	return d.Start(a.loc), nil
}
