package main

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/2021147588/boheommian-rhapsody/internal/dashboard"
	"github.com/2021147588/boheommian-rhapsody/internal/logger"
	"github.com/2021147588/boheommian-rhapsody/internal/prefs"
	"github.com/2021147588/boheommian-rhapsody/internal/transport"
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTmpl = template.Must(template.ParseFS(templateFS, "templates/index.html"))

const maxUploadBytes = 32 << 20

type server struct {
	svc *dashboard.Service
	log *logger.Logger
}

func newHandler(svc *dashboard.Service, log *logger.Logger) http.Handler {
	s := &server{svc: svc, log: log.Component("http")}
	mux := http.NewServeMux()

	// health
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "ok")
	})

	mux.HandleFunc("GET /{$}", s.index)
	mux.HandleFunc("POST /api/simulations", s.runSimulation)
	mux.HandleFunc("GET /api/progress", s.progress)
	mux.HandleFunc("GET /api/overview", s.overview)
	mux.HandleFunc("GET /api/conversations/{idx}", s.conversation)
	mux.HandleFunc("GET /api/reports/{idx}", s.report)
	mux.HandleFunc("POST /api/reports/{idx}/document", s.reportDocument)
	mux.HandleFunc("GET /api/reports/{idx}/html", s.reportHTML)
	mux.HandleFunc("GET /api/export.xlsx", s.exportWorkbook)
	mux.HandleFunc("GET /api/export.json", s.exportResults)
	mux.HandleFunc("GET /api/preferences/theme", s.theme)
	mux.HandleFunc("PUT /api/preferences/theme", s.setTheme)
	mux.HandleFunc("POST /api/preferences/theme/toggle", s.toggleTheme)

	return s.withRequestLog(mux)
}

// withRequestLog tags every request with an id and logs its outcome.
func (s *server) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := logger.RequestID(r)
		r.Header.Set(logger.RequestIDHeader, id)
		w.Header().Set(logger.RequestIDHeader, id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		s.log.WithRequest(r).
			WithField("status", rec.status).
			WithField("duration_ms", time.Since(start).Milliseconds()).
			Info("request handled")
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

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// writeError maps service errors onto status codes and user-facing messages.
func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := http.StatusInternalServerError, "내부 오류가 발생했습니다."
	var sim *dashboard.SimulationError
	switch {
	case errors.Is(err, transport.ErrUnsupportedFile):
		status, msg = http.StatusBadRequest, "Please upload a .json file"
	case errors.Is(err, dashboard.ErrInvalidParams):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, dashboard.ErrNoResults):
		status, msg = http.StatusNotFound, "시뮬레이션 결과가 없습니다."
	case errors.Is(err, dashboard.ErrConversationNotFound):
		status, msg = http.StatusNotFound, "선택된 대화를 찾을 수 없습니다."
	case errors.As(err, &sim):
		status, msg = http.StatusBadGateway, "시뮬레이션 실행 중 오류가 발생했습니다: "+sim.Err.Error()
	case errors.Is(err, errBadRequest):
		status, msg = http.StatusBadRequest, err.Error()
	}
	entry := s.log.WithRequest(r).WithField("status", status).WithField("error", err.Error())
	if status >= 500 {
		entry.Error("request failed")
	} else {
		entry.Warn("request rejected")
	}
	writeJSON(w, status, errorBody{Error: msg})
}

var errBadRequest = errors.New("bad request")

func pathIndex(r *http.Request) (int, error) {
	idx, err := strconv.Atoi(r.PathValue("idx"))
	if err != nil {
		return 0, fmt.Errorf("%w: index %q", errBadRequest, r.PathValue("idx"))
	}
	return idx, nil
}

func formInt(r *http.Request, key string) (int, error) {
	v := r.FormValue(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", errBadRequest, key)
	}
	return n, nil
}

func (s *server) runSimulation(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: Please select a file first", errBadRequest))
		return
	}
	defer file.Close()
	content, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	maxTurns, err := formInt(r, "max_turns")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	maxSamples, err := formInt(r, "max_samples")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	up := transport.Upload{Filename: header.Filename, Content: content}
	runID, err := s.svc.Run(r.Context(), up, dashboard.RunParams{MaxTurns: maxTurns, MaxSamples: maxSamples})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"run_id": runID})
}

func (s *server) progress(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Progress())
}

func (s *server) overview(w http.ResponseWriter, r *http.Request) {
	ov, err := s.svc.Overview()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ov)
}

func (s *server) conversation(w http.ResponseWriter, r *http.Request) {
	idx, err := pathIndex(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cv, err := s.svc.Conversation(idx)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cv)
}

func (s *server) report(w http.ResponseWriter, r *http.Request) {
	idx, err := pathIndex(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rv, err := s.svc.Report(r.Context(), idx)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rv)
}

func attachment(w http.ResponseWriter, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(filename)))
}

func (s *server) reportDocument(w http.ResponseWriter, r *http.Request) {
	idx, err := pathIndex(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	doc, err := s.svc.ReportDocument(r.Context(), idx)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	attachment(w, doc.ContentType, doc.Filename)
	_, _ = w.Write(doc.Content)
}

func (s *server) reportHTML(w http.ResponseWriter, r *http.Request) {
	idx, err := pathIndex(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var buf bytes.Buffer
	name, err := s.svc.WriteReportHTML(r.Context(), idx, &buf)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	attachment(w, "text/html; charset=utf-8", name)
	_, _ = buf.WriteTo(w)
}

func (s *server) exportWorkbook(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.svc.WriteWorkbook(&buf); err != nil {
		s.writeError(w, r, err)
		return
	}
	attachment(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "simulation_results.xlsx")
	_, _ = buf.WriteTo(w)
}

func (s *server) exportResults(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.svc.WriteResults(&buf); err != nil {
		s.writeError(w, r, err)
		return
	}
	attachment(w, "application/json", "simulation_results.json")
	_, _ = buf.WriteTo(w)
}

type themeBody struct {
	Theme prefs.Theme `json:"theme"`
}

func (s *server) theme(w http.ResponseWriter, r *http.Request) {
	t, err := s.svc.Theme()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, themeBody{Theme: t})
}

func (s *server) setTheme(w http.ResponseWriter, r *http.Request) {
	var body themeBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || !body.Theme.Valid() {
		s.writeError(w, r, fmt.Errorf("%w: theme must be light or dark", errBadRequest))
		return
	}
	if err := s.svc.SetTheme(body.Theme); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *server) toggleTheme(w http.ResponseWriter, r *http.Request) {
	t, err := s.svc.ToggleTheme()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, themeBody{Theme: t})
}

type indexPage struct {
	Theme    prefs.Theme
	Overview *dashboard.Overview
}

func (s *server) index(w http.ResponseWriter, r *http.Request) {
	page := indexPage{Theme: prefs.ThemeLight}
	if t, err := s.svc.Theme(); err == nil {
		page.Theme = t
	}
	if ov, err := s.svc.Overview(); err == nil {
		page.Overview = &ov
	}
	var buf bytes.Buffer
	if err := indexTmpl.Execute(&buf, page); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
