package main

import (
	"fmt"
	"time"

	"github.com/pbaille/moodlog/internal/journal"
	"github.com/pbaille/moodlog/internal/mood"
	"github.com/pbaille/moodlog/internal/render"
	"github.com/spf13/cobra"
)

func dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Print the mood overview",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(true)
			if err != nil {
				return err
			}
			defer rt.Close()

			d, err := journal.LoadDashboard(cmd.Context(), rt.client, rt.tokens, time.Now())
			if err != nil {
				return fmt.Errorf("load dashboard: %w", err)
			}

			fmt.Printf("Hello, %s\n", d.UserName)
			fmt.Printf("%s\n\n", d.Today.Format("Monday, January 2, 2006"))
			if d.Current != nil {
				fmt.Printf("Current mood:  %s %d/10\n", d.Current.Band.Emoji, d.Current.Score)
			} else {
				fmt.Printf("Current mood:  no scores yet\n")
			}
			fmt.Printf("Mood trend:    %s\n", d.Trend.Title())
			fmt.Printf("Total entries: %d\n", d.Total)

			if len(d.Graph) > 0 {
				fmt.Printf("\nLast %d entries: %s  (%s to %s)\n",
					len(d.Graph),
					mood.Sparkline(d.Graph),
					d.Graph[0].Label,
					d.Graph[len(d.Graph)-1].Label,
				)
			}

			if len(d.Recent) > 0 {
				fmt.Println("\nRecent entries")
				for _, e := range d.Recent {
					fmt.Printf("  %s %-22s %s\n", mood.Emoji(e.MoodScore), e.Title, render.Preview(e.Summary, 50))
				}
			}
			return nil
		},
	}
}
