package transport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/rpggio/lapledger/internal/csvsync"
)

// maxUploadBytes caps the size of an imported CSV.
const maxUploadBytes = 8 << 20

// Exchange is the ledger import/export surface served over HTTP.
type Exchange interface {
	ExportCSV() string
	ExportXLSX(w io.Writer) error
	StageImport(r io.Reader) (*csvsync.Batch, error)
	CommitImport(ctx context.Context, batch *csvsync.Batch, mode csvsync.Mode) error
}

// Server wires HTTP handlers.
type Server struct {
	exchange Exchange
	logger   *slog.Logger
}

// NewRouter creates the HTTP router: the MCP endpoint, a health probe and
// spreadsheet download and upload routes.
func NewRouter(mcpHandler http.Handler, exchange Exchange, logger *slog.Logger) *mux.Router {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	srv := &Server{exchange: exchange, logger: logger}

	r := mux.NewRouter()
	r.Use(srv.logRequests)

	if mcpHandler != nil {
		r.PathPrefix("/mcp").Handler(mcpHandler)
	}
	r.HandleFunc("/health", srv.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/export.csv", srv.handleExportCSV).Methods(http.MethodGet)
	r.HandleFunc("/export.xlsx", srv.handleExportXLSX).Methods(http.MethodGet)
	r.HandleFunc("/import", srv.handleImport).Methods(http.MethodPost)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleExportCSV(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=times.csv")
	_, _ = io.WriteString(w, s.exchange.ExportCSV())
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=times.xlsx")
	if err := s.exchange.ExportXLSX(w); err != nil {
		s.logger.Error("xlsx export failed", "error", err)
		http.Error(w, "export failed", http.StatusInternalServerError)
	}
}

// ImportResponse summarizes an upload.
type ImportResponse struct {
	Mode        csvsync.Mode       `json:"mode"`
	Rows        int                `json:"rows"`
	Skipped     int                `json:"skipped"`
	NewProfiles int                `json:"new_profiles"`
	RowErrors   []csvsync.RowError `json:"row_errors,omitempty"`
}

// handleImport accepts a CSV either as the "file" form field or as the raw
// request body. The mode query parameter defaults to cancel, which only
// previews the batch.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	modeParam := r.URL.Query().Get("mode")
	if modeParam == "" {
		modeParam = string(csvsync.ModeCancel)
	}
	mode, err := csvsync.ParseMode(modeParam)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	body := io.Reader(r.Body)
	if file, _, err := r.FormFile("file"); err == nil {
		defer file.Close()
		body = file
	} else if !errors.Is(err, http.ErrNotMultipart) {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	batch, err := s.exchange.StageImport(body)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, csvsync.ErrFormat) {
			status = http.StatusUnprocessableEntity
		}
		writeJSONError(w, status, err.Error())
		return
	}
	if err := s.exchange.CommitImport(r.Context(), batch, mode); err != nil {
		s.logger.Error("import commit failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "import failed")
		return
	}

	writeJSON(w, http.StatusOK, ImportResponse{
		Mode:        mode,
		Rows:        len(batch.Entries),
		Skipped:     batch.Skipped,
		NewProfiles: len(batch.NewProfiles),
		RowErrors:   batch.RowErrors,
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"session_id", r.Header.Get("Mcp-Session-Id"),
			"duration", time.Since(start),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps streaming MCP responses working through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
