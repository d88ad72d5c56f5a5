package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/stonebridge/assess-cli/internal/store"
)

var (
	listDealID    string
	listLimit     int
	historyDealID string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored assessments, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		results, err := env.Store.ListAssessments(ctx, store.AssessmentFilter{
			DealID: listDealID,
			Limit:  listLimit,
		})
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Println("no assessments found")
			return nil
		}

		fmt.Printf("%-36s  %-20s  %5s  %-2s  %-11s  %s\n", "ID", "DEAL", "SCORE", "GR", "READINESS", "CREATED")
		for _, r := range results {
			fmt.Printf("%-36s  %-20s  %5d  %-2s  %-11s  %s\n",
				r.ID, r.DealID, r.OverallScore, r.Grade, r.Readiness, r.CreatedAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show a deal's score trajectory over time",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		points, err := env.Store.ScoreHistory(ctx, historyDealID)
		if err != nil {
			return err
		}
		if len(points) == 0 {
			fmt.Printf("no assessments for deal %s\n", historyDealID)
			return nil
		}

		for _, p := range points {
			fmt.Printf("%s  score=%3d (%s)  readiness=%s\n",
				p.CreatedAt.Format("2006-01-02"), p.Score, p.Grade, p.Readiness)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&listDealID, "deal", "", "filter by deal ID")
	listCmd.Flags().IntVar(&listLimit, "limit", 50, "max results")
	rootCmd.AddCommand(listCmd)

	historyCmd.Flags().StringVar(&historyDealID, "deal", "", "deal ID")
	_ = historyCmd.MarkFlagRequired("deal")
	rootCmd.AddCommand(historyCmd)
}
