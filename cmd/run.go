package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/stonebridge/assess-cli/internal/assess"
	"github.com/stonebridge/assess-cli/internal/scoring"
)

var (
	runTapeFile      string
	runHistoryFile   string
	runDealID        string
	runStructureInfo bool
	runSupportDocs   bool
	runNoSave        bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Assess a single loan tape",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		tapeData, err := os.ReadFile(runTapeFile)
		if err != nil {
			return eris.Wrapf(err, "read tape %s", runTapeFile)
		}

		input := assess.RunInput{
			DealID:   runDealID,
			TapeData: tapeData,
			TapeName: runTapeFile,
			Options: scoring.Options{
				HasStructureInfo:  runStructureInfo,
				HasSupportingDocs: runSupportDocs,
			},
		}
		if runHistoryFile != "" {
			histData, err := os.ReadFile(runHistoryFile)
			if err != nil {
				return eris.Wrapf(err, "read history %s", runHistoryFile)
			}
			input.HistoryData = histData
			input.HistoryName = runHistoryFile
		}

		result, parsed, err := env.Engine.Run(ctx, input)
		if err != nil {
			return err
		}
		if result == nil {
			fmt.Println("Tape could not be assessed:")
			for _, e := range parsed.Errors {
				fmt.Printf("  error: %s\n", e)
			}
			for _, w := range parsed.Warnings {
				fmt.Printf("  warning: %s\n", w)
			}
			return eris.New("ingestion failed")
		}

		for _, w := range parsed.Warnings {
			fmt.Printf("warning: %s\n", w)
		}
		if len(parsed.UnmappedColumns) > 0 {
			fmt.Printf("unmapped columns: %v\n", parsed.UnmappedColumns)
		}

		if !runNoSave {
			if err := env.Store.SaveAssessment(ctx, result); err != nil {
				return err
			}
		}

		fmt.Print(renderReport(result))
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runTapeFile, "tape", "", "loan tape workbook (.xlsx)")
	runCmd.Flags().StringVar(&runHistoryFile, "history", "", "monthly performance history workbook (.xlsx)")
	runCmd.Flags().StringVar(&runDealID, "deal", "", "deal identifier used for score history")
	runCmd.Flags().BoolVar(&runStructureInfo, "structure-info", false, "deal structure information was supplied")
	runCmd.Flags().BoolVar(&runSupportDocs, "docs", false, "supporting loan documents accompany the tape")
	runCmd.Flags().BoolVar(&runNoSave, "no-save", false, "skip persisting the result")
	_ = runCmd.MarkFlagRequired("tape")
	rootCmd.AddCommand(runCmd)
}
