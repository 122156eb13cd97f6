package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/buildlane/sitetruth/internal/dashboard"
	"github.com/buildlane/sitetruth/internal/ledger"
	"github.com/buildlane/sitetruth/internal/model"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP boundary for dashboard collaborators",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		mux := http.NewServeMux()

		mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		openProject := func(w http.ResponseWriter, r *http.Request) *dashboard.Project {
			p, err := e.Manager.Open(r.Context(), r.PathValue("id"))
			if err != nil {
				http.Error(w, `{"error":"project not found"}`, http.StatusNotFound)
				return nil
			}
			return p
		}

		mux.HandleFunc("POST /projects", func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				ID       string  `json:"id"`
				Name     string  `json:"name"`
				Trade    string  `json:"trade"`
				Budget   float64 `json:"budget"`
				TeamSize int     `json:"team_size"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
				http.Error(w, `{"error":"name is required"}`, http.StatusBadRequest)
				return
			}
			if req.ID == "" {
				req.ID = uuid.NewString()
			}
			p := e.Manager.NewProject(req.ID, req.Name, req.Trade)
			if req.Budget > 0 {
				p.SetApprovedBudget(req.Budget)
			}
			if req.TeamSize > 0 {
				p.SetTeamMemberCount(req.TeamSize)
			}
			if err := p.Save(r.Context()); err != nil {
				http.Error(w, fmt.Sprintf(`{"error":%q}`, err.Error()), http.StatusBadGateway)
				return
			}
			writeJSON(w, http.StatusCreated, map[string]string{"id": req.ID})
		})

		mux.HandleFunc("GET /projects/{id}/snapshot", func(w http.ResponseWriter, r *http.Request) {
			if p := openProject(w, r); p != nil {
				writeJSON(w, http.StatusOK, p.GetSnapshot())
			}
		})

		mux.HandleFunc("GET /projects/{id}/summary", func(w http.ResponseWriter, r *http.Request) {
			if p := openProject(w, r); p != nil {
				writeJSON(w, http.StatusOK, p.GetFinancialSummary())
			}
		})

		mux.HandleFunc("GET /projects/{id}/score", func(w http.ResponseWriter, r *http.Request) {
			if p := openProject(w, r); p != nil {
				writeJSON(w, http.StatusOK, p.GetHealthScore())
			}
		})

		mux.HandleFunc("GET /projects/{id}/truth", func(w http.ResponseWriter, r *http.Request) {
			if p := openProject(w, r); p != nil {
				writeJSON(w, http.StatusOK, p.GetTruthMatrix())
			}
		})

		mux.HandleFunc("GET /projects/{id}/materials", func(w http.ResponseWriter, r *http.Request) {
			if p := openProject(w, r); p != nil {
				writeJSON(w, http.StatusOK, p.GetMaterialsWithCitations())
			}
		})

		mux.HandleFunc("POST /projects/{id}/materials", func(w http.ResponseWriter, r *http.Request) {
			p := openProject(w, r)
			if p == nil {
				return
			}
			var req struct {
				Name      string  `json:"name"`
				Quantity  float64 `json:"quantity"`
				Unit      string  `json:"unit"`
				UnitPrice float64 `json:"unit_price"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
				http.Error(w, `{"error":"name is required"}`, http.StatusBadRequest)
				return
			}
			item, err := p.AddMaterial(r.Context(), req.Name, req.Quantity, req.Unit, req.UnitPrice)
			if err != nil {
				// The item is in memory even when the citation sink failed.
				zap.L().Error("add material: citation sync failed", zap.Error(err))
			}
			writeJSON(w, http.StatusCreated, item)
		})

		mux.HandleFunc("PATCH /projects/{id}/materials/{itemID}", func(w http.ResponseWriter, r *http.Request) {
			p := openProject(w, r)
			if p == nil {
				return
			}
			var req struct {
				Field string          `json:"field"`
				Value json.RawMessage `json:"value"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
				return
			}
			value, err := decodeValue(req.Field, req.Value)
			if err != nil {
				http.Error(w, `{"error":"invalid value"}`, http.StatusBadRequest)
				return
			}
			if err := p.UpdateMaterial(r.Context(), r.PathValue("itemID"), req.Field, value); err != nil {
				http.Error(w, fmt.Sprintf(`{"error":%q}`, err.Error()), http.StatusBadRequest)
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
		})

		mux.HandleFunc("DELETE /projects/{id}/materials/{itemID}", func(w http.ResponseWriter, r *http.Request) {
			p := openProject(w, r)
			if p == nil {
				return
			}
			if err := p.RemoveMaterial(r.Context(), r.PathValue("itemID")); err != nil {
				zap.L().Error("remove material: citation sync failed", zap.Error(err))
			}
			writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
		})

		mux.HandleFunc("POST /projects/{id}/reconcile", func(w http.ResponseWriter, r *http.Request) {
			p := openProject(w, r)
			if p == nil {
				return
			}
			if err := p.Reconcile(r.Context()); err != nil {
				http.Error(w, fmt.Sprintf(`{"error":%q}`, err.Error()), http.StatusInternalServerError)
				return
			}
			writeJSON(w, http.StatusOK, p.GetSnapshot())
		})

		mux.HandleFunc("POST /projects/{id}/finalize", func(w http.ResponseWriter, r *http.Request) {
			p := openProject(w, r)
			if p == nil {
				return
			}
			if err := p.Finalize(r.Context()); err != nil {
				// In-memory state is unchanged and authoritative; only the
				// sync failed.
				http.Error(w, fmt.Sprintf(`{"error":%q}`, err.Error()), http.StatusBadGateway)
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"status": "finalized"})
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// decodeValue maps a raw JSON field value onto the tagged Value variant
// expected by the ledger.
func decodeValue(field string, raw json.RawMessage) (model.Value, error) {
	switch field {
	case ledger.FieldQuantity, ledger.FieldUnitPrice:
		var n float64
		if err := json.Unmarshal(raw, &n); err != nil {
			return model.None(), err
		}
		return model.Number(n), nil
	default:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return model.None(), err
		}
		return model.Text(s), nil
	}
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
