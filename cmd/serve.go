package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stonebridge/assess-cli/internal/assess"
	"github.com/stonebridge/assess-cli/internal/scoring"
)

var servePort int

// 25 MB cap on uploaded workbooks.
const maxUploadBytes = 25 << 20

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server accepting loan tapes for assessment",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		mux := http.NewServeMux()

		mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		mux.HandleFunc("POST /assess", func(w http.ResponseWriter, r *http.Request) {
			handleAssess(env, w, r)
		})

		mux.HandleFunc("GET /assessments/{id}", func(w http.ResponseWriter, r *http.Request) {
			result, err := env.Store.GetAssessment(r.Context(), r.PathValue("id"))
			if err != nil {
				writeError(w, http.StatusInternalServerError, "lookup failed")
				return
			}
			if result == nil {
				writeError(w, http.StatusNotFound, "assessment not found")
				return
			}
			writeJSON(w, http.StatusOK, result)
		})

		mux.HandleFunc("GET /deals/{id}/history", func(w http.ResponseWriter, r *http.Request) {
			points, err := env.Store.ScoreHistory(r.Context(), r.PathValue("id"))
			if err != nil {
				writeError(w, http.StatusInternalServerError, "lookup failed")
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{
				"deal_id": r.PathValue("id"),
				"history": points,
			})
		})

		mux.HandleFunc("GET /deals/{id}/latest", func(w http.ResponseWriter, r *http.Request) {
			result, err := env.Store.LatestAssessment(r.Context(), r.PathValue("id"))
			if err != nil {
				writeError(w, http.StatusInternalServerError, "lookup failed")
				return
			}
			if result == nil {
				writeError(w, http.StatusNotFound, "no assessments for deal")
				return
			}
			writeJSON(w, http.StatusOK, result)
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(context.Background())
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// handleAssess accepts a multipart form with a required "tape" workbook, an
// optional "history" workbook, and optional "deal_id", "structure_info", and
// "supporting_docs" fields. It runs the assessment synchronously and persists
// the result before responding.
func handleAssess(env *appEnv, w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}

	tapeData, tapeName, err := readFormFile(r, "tape")
	if err != nil {
		writeError(w, http.StatusBadRequest, "tape file is required")
		return
	}
	historyData, historyName, _ := readFormFile(r, "history")

	dealID := r.FormValue("deal_id")
	if dealID == "" {
		dealID = strings.TrimSuffix(tapeName, filepath.Ext(tapeName))
	}

	result, parsed, err := env.Engine.Run(r.Context(), assess.RunInput{
		DealID:      dealID,
		TapeData:    tapeData,
		TapeName:    tapeName,
		HistoryData: historyData,
		HistoryName: historyName,
		Options: scoring.Options{
			HasStructureInfo:  r.FormValue("structure_info") == "true",
			HasSupportingDocs: r.FormValue("supporting_docs") == "true",
		},
	})
	if err != nil {
		zap.L().Error("assess request failed", zap.String("deal", dealID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "assessment failed")
		return
	}
	if result == nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":            "loan tape could not be parsed",
			"parse_errors":     parsed.Errors,
			"warnings":         parsed.Warnings,
			"unmapped_columns": parsed.UnmappedColumns,
		})
		return
	}

	if err := env.Store.SaveAssessment(r.Context(), result); err != nil {
		zap.L().Error("save assessment failed", zap.String("id", result.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "assessment completed but could not be saved")
		return
	}

	zap.L().Info("assessment complete",
		zap.String("deal", dealID),
		zap.String("id", result.ID),
		zap.Int("score", result.OverallScore),
	)
	writeJSON(w, http.StatusOK, result)
}

func readFormFile(r *http.Request, field string) ([]byte, string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, "", err
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		return nil, "", err
	}
	return data, header.Filename, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
