package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/stonebridge/assess-cli/internal/assess"
	"github.com/stonebridge/assess-cli/internal/scoring"
)

var (
	batchDir         string
	batchConcurrency int
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Assess every loan tape in a directory concurrently",
	Long:  "Runs one assessment per .xlsx file found in the directory. The file stem is used as the deal ID.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		entries, err := os.ReadDir(batchDir)
		if err != nil {
			return eris.Wrapf(err, "read dir %s", batchDir)
		}

		var tapes []string
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			ext := strings.ToLower(filepath.Ext(entry.Name()))
			if ext == ".xlsx" || ext == ".xls" {
				tapes = append(tapes, filepath.Join(batchDir, entry.Name()))
			}
		}
		if len(tapes) == 0 {
			return eris.Errorf("no workbooks found in %s", batchDir)
		}

		concurrency := batchConcurrency
		if concurrency <= 0 {
			concurrency = cfg.Batch.Concurrency
		}

		var succeeded, failed atomic.Int64
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(concurrency)

		for _, path := range tapes {
			g.Go(func() error {
				data, err := os.ReadFile(path)
				if err != nil {
					failed.Add(1)
					zap.L().Error("batch: read tape", zap.String("file", path), zap.Error(err))
					return nil
				}

				dealID := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
				result, parsed, err := env.Engine.Run(gctx, assess.RunInput{
					DealID:   dealID,
					TapeData: data,
					TapeName: path,
					Options:  scoring.Options{},
				})
				if err != nil {
					failed.Add(1)
					zap.L().Error("batch: assess", zap.String("file", path), zap.Error(err))
					return nil
				}
				if result == nil {
					failed.Add(1)
					zap.L().Warn("batch: ingestion failed",
						zap.String("file", path),
						zap.Strings("errors", parsed.Errors),
					)
					return nil
				}

				if err := env.Store.SaveAssessment(gctx, result); err != nil {
					failed.Add(1)
					zap.L().Error("batch: save", zap.String("file", path), zap.Error(err))
					return nil
				}

				succeeded.Add(1)
				fmt.Printf("%-40s score=%d (%s) readiness=%s\n", dealID, result.OverallScore, result.Grade, result.Readiness)
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return err
		}

		fmt.Printf("\nassessed %d tape(s), %d failed\n", succeeded.Load(), failed.Load())
		return nil
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchDir, "dir", "", "directory containing loan tape workbooks")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "max concurrent assessments (default from config)")
	_ = batchCmd.MarkFlagRequired("dir")
	rootCmd.AddCommand(batchCmd)
}
