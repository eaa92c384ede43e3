package httpapi

import (
	"context"
	"encoding/csv"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/BrandonDHaskell/scanlog/internal/scanlog/service"
	"github.com/BrandonDHaskell/scanlog/internal/scanlog/store"
	"github.com/BrandonDHaskell/scanlog/internal/scanlog/types"
	"github.com/BrandonDHaskell/scanlog/internal/scanlog/wire"
)

type Dependencies struct {
	Logger   *slog.Logger
	Addr     string
	Exporter *service.RangeExporter
	LastScan *service.LastScan
}

type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	router     *mux.Router
	exporter   *service.RangeExporter
	lastScan   *service.LastScan
}

type exportResponse struct {
	From string      `json:"from"`
	To   string      `json:"to"`
	Rows []types.Row `json:"rows"`
}

func NewServer(d Dependencies) *Server {
	r := mux.NewRouter()

	s := &Server{
		logger:   d.Logger,
		router:   r,
		exporter: d.Exporter,
		lastScan: d.LastScan,
	}

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/v1/scans", s.handleExport).Methods(http.MethodGet).Queries("from", "{from}", "to", "{to}")
	r.HandleFunc("/v1/scans", s.handleMissingRange).Methods(http.MethodGet)
	r.HandleFunc("/v1/scans/last", s.handleLastScan).Methods(http.MethodGet)
	r.Use(requestLogger(d.Logger))

	s.httpServer = &http.Server{
		Addr:              d.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) Start() error {
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleMissingRange(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusBadRequest, "missing_range", "from and to query parameters are required")
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	from, err := types.ParseDate(vars["from"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_date", "from must be YYYY-MM-DD")
		return
	}
	to, err := types.ParseDate(vars["to"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_date", "to must be YYYY-MM-DD")
		return
	}

	rows, err := s.exporter.Export(r.Context(), from, to)
	if err != nil {
		if store.IsStorageError(err) {
			s.logger.Error("export failed", slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "storage_error", "scan log unavailable")
			return
		}
		s.logger.Error("export error", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}

	switch accept := r.Header.Get("Accept"); {
	case strings.Contains(accept, "text/csv"):
		s.writeCSV(w, from, to, rows)
	case isProtobuf(accept):
		writeProto(w, http.StatusOK, wire.RowsToProto(rows))
	default:
		writeJSON(w, http.StatusOK, exportResponse{From: from.String(), To: to.String(), Rows: rows})
	}
}

func (s *Server) writeCSV(w http.ResponseWriter, from, to types.Date, rows []types.Row) {
	name := strings.TrimSuffix(service.DefaultExportFilename(from, to), ".xlsx") + ".csv"
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	if err := cw.WriteAll(service.BuildSheet(rows)); err != nil {
		s.logger.Warn("csv write failed", slog.String("error", err.Error()))
	}
}

func (s *Server) handleLastScan(w http.ResponseWriter, _ *http.Request) {
	ev, ok := s.lastScan.Last()
	if !ok {
		writeError(w, http.StatusNotFound, "no_scans", "nothing scanned yet")
		return
	}
	writeJSON(w, http.StatusOK, ev)
}
