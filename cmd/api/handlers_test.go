package main

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/h2non/gock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2021147588/boheommian-rhapsody/internal/dashboard"
	"github.com/2021147588/boheommian-rhapsody/internal/logger"
	"github.com/2021147588/boheommian-rhapsody/internal/prefs"
	"github.com/2021147588/boheommian-rhapsody/internal/session"
	"github.com/2021147588/boheommian-rhapsody/internal/transport"
)

const backend = "http://simulator.test"

const submitResponse = `{"message":"success","data":{
  "summary":{"total_samples":2,"success_count":[1],"success_rate":50.0,"timestamp":"20240101_120000"},
  "conversations":[
    {"success":true,"user_info":{"user":{"name":"김민수","gender":"남성"},"vehicle":{"model":"소나타"}},
     "turns":[{"turn":1,"current_agent":"Router","agent_response":"고급형이 좋습니다"}],
     "final_report":{"사용자 만족도 추정":"높음"}},
    {"success":false,"user_info":{"user":{"name":"이영희"}},"turns":[{"turn":1,"current_agent":"Router"}]}
  ]}}`

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	p, err := prefs.Open(filepath.Join(t.TempDir(), "prefs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })

	log := logger.NewWith("test", "error", io.Discard)
	svc := dashboard.New(transport.NewClient(backend), session.NewStore(), p, dashboard.WithLogger(log))
	return newHandler(svc, log)
}

func upload(t *testing.T, filename string) *http.Request {
	t.Helper()
	var b bytes.Buffer
	w := multipart.NewWriter(&b)
	fw, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, _ = fw.Write([]byte(`[{"user":{"name":"김민수"}}]`))
	require.NoError(t, w.WriteField("max_turns", "3"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/simulations", &b)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	rec := serve(newTestHandler(t), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(logger.RequestIDHeader))
}

func TestNoResultsYet(t *testing.T) {
	h := newTestHandler(t)

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/api/overview", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "시뮬레이션 결과가 없습니다.")
}

func TestSimulationRejectsNonJSON(t *testing.T) {
	defer gock.Off()
	gock.New(backend).Post("/submit").Reply(http.StatusOK)

	rec := serve(newTestHandler(t), upload(t, "data.csv"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please upload a .json file")
	assert.False(t, gock.IsDone())
}

func TestSimulationBackendFailure(t *testing.T) {
	defer gock.Off()
	gock.New(backend).Post("/submit").Reply(http.StatusInternalServerError)

	rec := serve(newTestHandler(t), upload(t, "profiles.json"))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "HTTP error status 500")
}

func TestSimulationFlow(t *testing.T) {
	defer gock.Off()
	gock.New(backend).Post("/submit").Reply(http.StatusOK).BodyString(submitResponse)
	gock.New(backend).Get("/load-report").MatchParam("name", "이영희").Reply(http.StatusNotFound)
	h := newTestHandler(t)

	rec := serve(h, upload(t, "profiles.json"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/api/progress", nil))
	var p dashboard.Progress
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, 100, p.Percent)

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/api/overview", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var ov dashboard.Overview
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ov))
	assert.Equal(t, 1, ov.Summary.SuccessCount)
	require.Len(t, ov.Rows, 2)
	assert.Equal(t, "고급형", ov.Rows[0].RecommendedPlan)

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/api/conversations/0", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = serve(h, httptest.NewRequest(http.MethodGet, "/api/conversations/9", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = serve(h, httptest.NewRequest(http.MethodGet, "/api/conversations/x", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/api/reports/1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var rv dashboard.ReportView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rv))
	assert.Equal(t, dashboard.MessageReportNotFound, rv.Message)

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/api/reports/0/html", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "insurance_report_")

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/api/export.xlsx", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotZero(t, rec.Body.Len())

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Contains(t, rec.Body.String(), "김민수")
}

func TestThemePreference(t *testing.T) {
	h := newTestHandler(t)

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/api/preferences/theme", nil))
	assert.JSONEq(t, `{"theme":"light"}`, rec.Body.String())

	rec = serve(h, httptest.NewRequest(http.MethodPut, "/api/preferences/theme", strings.NewReader(`{"theme":"dark"}`)))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(h, httptest.NewRequest(http.MethodPut, "/api/preferences/theme", strings.NewReader(`{"theme":"blue"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(h, httptest.NewRequest(http.MethodPost, "/api/preferences/theme/toggle", nil))
	assert.JSONEq(t, `{"theme":"light"}`, rec.Body.String())
}
