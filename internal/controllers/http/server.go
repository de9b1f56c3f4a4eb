package httpctrl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Agrid-Dev/heatload/internal/builder"
	"github.com/Agrid-Dev/heatload/internal/metrics"
	"github.com/Agrid-Dev/heatload/internal/ports"
	"github.com/Agrid-Dev/heatload/internal/report"
)

const maxBodyBytes = 1 << 20

type Server struct {
	svc    ports.ReportService
	srv    *http.Server
	logger *zap.Logger
}

// New returns a runnable server.
func New(svc ports.ReportService, addr string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	mux := http.NewServeMux()
	s := &Server{svc: svc, logger: logger}

	// Read
	mux.HandleFunc("GET /v1/report", s.handleReport(report.FormatJSON))
	mux.HandleFunc("GET /v1/report.json", s.handleReport(report.FormatJSON))
	mux.HandleFunc("GET /v1/report.txt", s.handleReport(report.FormatText))
	mux.HandleFunc("GET /v1/report.yaml", s.handleReport(report.FormatYAML))
	mux.HandleFunc("GET /v1/report.csv", s.handleReport(report.FormatCSV))
	mux.HandleFunc("GET /v1/report.xlsx", s.handleBinary("xlsx", xlsxContentType, report.BuildXLSX))
	mux.HandleFunc("GET /v1/report.pdf", s.handleBinary("pdf", "application/pdf", report.BuildPDF))
	mux.HandleFunc("GET /v1/rooms/{name}", s.handleGetRoom)

	// Write
	mux.HandleFunc("POST /v1/building", s.handlePostBuilding)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	s.logger.Info("http controller listening", zap.String("addr", s.srv.Addr))
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ---- Handlers ----

func (s *Server) handleReport(f report.Format) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		var buf bytes.Buffer
		if err := report.Write(&buf, s.svc.Summary(), f); err != nil {
			metrics.IncExport(string(f), metrics.ResultError)
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		metrics.IncExport(string(f), metrics.ResultSuccess)
		w.Header().Set("Content-Type", f.ContentType())
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	}
}

func (s *Server) handleBinary(name, contentType string, build func(report.Summary) ([]byte, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		data, err := build(s.svc.Summary())
		if err != nil {
			metrics.IncExport(name, metrics.ResultError)
			s.logger.Error("report export failed", zap.String("format", name), zap.Error(err))
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		metrics.IncExport(name, metrics.ResultSuccess)
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Disposition", `attachment; filename="heatload.`+name+`"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	room, ok := s.svc.Summary().Room(name)
	if !ok {
		writeErr(w, http.StatusNotFound, "room not found: "+name)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

func (s *Server) handlePostBuilding(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid body")
		return
	}
	src := builder.BytesSource{Data: body, Format: bodyFormat(r)}

	summary, err := s.svc.Recalculate(r.Context(), src)
	if err != nil {
		if errors.Is(err, ports.ErrSaveFailed) {
			s.logger.Error("calculation not saved", zap.Error(err))
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// bodyFormat picks the building document format from Content-Type; JSON
// unless YAML is announced.
func bodyFormat(r *http.Request) string {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return "json"
	}
	switch mt {
	case "application/yaml", "application/x-yaml", "text/yaml":
		return "yaml"
	default:
		return "json"
	}
}

// ---- generic helpers ----

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
