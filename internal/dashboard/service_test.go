package dashboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2021147588/boheommian-rhapsody/internal/prefs"
	"github.com/2021147588/boheommian-rhapsody/internal/session"
	"github.com/2021147588/boheommian-rhapsody/internal/transport"
	"github.com/2021147588/boheommian-rhapsody/internal/types"
)

type fakeTransport struct {
	result     types.SimulationResult
	submitErr  error
	report     types.FinalReport
	fetchErr   error
	submits    int
	fetches    []string
	lastTurns  int
	lastSample int

	// inFlight, when set, runs after the backend accepted the request
	// and before the body is handed back.
	inFlight func()
}

func (f *fakeTransport) Submit(ctx context.Context, _ transport.Upload, maxTurns, maxSamples int) (types.SimulationResult, error) {
	f.submits++
	f.lastTurns, f.lastSample = maxTurns, maxSamples
	if f.submitErr != nil {
		return types.SimulationResult{}, f.submitErr
	}
	transport.NotifyAccepted(ctx)
	if f.inFlight != nil {
		f.inFlight()
	}
	return f.result, nil
}

func (f *fakeTransport) FetchReport(_ context.Context, name string) (types.FinalReport, error) {
	f.fetches = append(f.fetches, name)
	return f.report, f.fetchErr
}

func (f *fakeTransport) GenerateReport(_ context.Context, c types.ConversationRecord) (transport.Document, error) {
	return transport.Document{Filename: transport.ReportFilename(c.CustomerName()), Content: []byte("<html/>")}, nil
}

func sampleResult() types.SimulationResult {
	return types.SimulationResult{
		Summary: types.Summary{TotalSamples: 2, SuccessCount: 1, SuccessRate: 50, Timestamp: "20240101_120000"},
		Conversations: []types.ConversationRecord{
			{
				Success:  true,
				UserInfo: &types.UserInfo{User: types.User{Name: "김민수", BirthDate: "1990-01-01", Gender: "남성"}},
				Turns: []types.Turn{
					{Turn: 1, CurrentAgent: "Router", AgentResponse: "안녕하세요"},
					{Turn: 2, CurrentAgent: "Recommendation", AgentResponse: "표준형을 추천합니다", RAGPerformed: true},
				},
				FinalReport: types.FinalReport{
					{Key: "사용자 만족도 추정", Value: "보통"},
					{Key: "상담 성과 지표", Value: "양호"},
				},
			},
			{
				UserInfo: &types.UserInfo{User: types.User{Name: "이영희", Gender: "여성"}},
				Turns:    []types.Turn{{Turn: 1, CurrentAgent: "Router"}},
			},
		},
	}
}

func newService(t *testing.T, ft *fakeTransport) *Service {
	t.Helper()
	p, err := prefs.Open(filepath.Join(t.TempDir(), "prefs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return New(ft, session.NewStore(), p, WithClock(func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }))
}

func TestRunRejectsNonJSONWithoutCallingBackend(t *testing.T) {
	ft := &fakeTransport{}
	s := newService(t, ft)

	_, err := s.Run(context.Background(), transport.Upload{Filename: "data.csv"}, RunParams{})

	assert.ErrorIs(t, err, transport.ErrUnsupportedFile)
	assert.Zero(t, ft.submits)
	assert.Equal(t, Progress{}, s.Progress())
	_, err = s.Overview()
	assert.ErrorIs(t, err, ErrNoResults)
}

func TestRunRejectsInvalidParams(t *testing.T) {
	ft := &fakeTransport{}
	s := newService(t, ft)

	_, err := s.Run(context.Background(), transport.Upload{Filename: "p.json"}, RunParams{MaxTurns: -1})

	assert.ErrorIs(t, err, ErrInvalidParams)
	assert.Zero(t, ft.submits)
}

func TestRunStoresResult(t *testing.T) {
	ft := &fakeTransport{result: sampleResult()}
	s := newService(t, ft)

	id, err := s.Run(context.Background(), transport.Upload{Filename: "p.json"}, RunParams{})

	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, defaultMaxTurns, ft.lastTurns)
	assert.Equal(t, transport.DefaultMaxSamples, ft.lastSample)
	assert.Equal(t, Progress{Percent: 100, Message: "완료!"}, s.Progress())

	ov, err := s.Overview()
	require.NoError(t, err)
	assert.Equal(t, id, ov.RunID)
	assert.Equal(t, "50.0%", ov.Summary.SuccessRate)
	require.Len(t, ov.Rows, 2)
	assert.Equal(t, "표준형", ov.Rows[0].RecommendedPlan)
	assert.Equal(t, "36", ov.Rows[0].Age)
	assert.Len(t, ov.Reports, 2)
}

func TestRunReportsProgressWhileInFlight(t *testing.T) {
	ft := &fakeTransport{result: sampleResult()}
	s := newService(t, ft)
	accepted := make(chan Progress)
	release := make(chan struct{})
	ft.inFlight = func() {
		accepted <- s.Progress()
		<-release
	}

	done := make(chan error, 1)
	go func() {
		_, err := s.Run(context.Background(), transport.Upload{Filename: "p.json"}, RunParams{})
		done <- err
	}()

	during := <-accepted
	assert.Equal(t, 50, during.Percent)
	assert.True(t, during.Active)
	assert.Equal(t, during, s.Progress())

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 100, s.Progress().Percent)
}

func TestOverviewFollowsSeededRun(t *testing.T) {
	ft := &fakeTransport{result: sampleResult()}
	s := newService(t, ft)
	_, err := s.Run(context.Background(), transport.Upload{Filename: "p.json"}, RunParams{})
	require.NoError(t, err)
	before, err := s.Overview()
	require.NoError(t, err)

	s.Seed(types.SimulationResult{Conversations: []types.ConversationRecord{{Success: true}}})
	after, err := s.Overview()
	require.NoError(t, err)

	assert.NotEqual(t, before.RunID, after.RunID)
	assert.NotEqual(t, before.Charts, after.Charts)
	assert.Len(t, after.Rows, 1)
}

func TestRunFailureKeepsPreviousResult(t *testing.T) {
	ft := &fakeTransport{result: sampleResult()}
	s := newService(t, ft)
	first, err := s.Run(context.Background(), transport.Upload{Filename: "p.json"}, RunParams{})
	require.NoError(t, err)

	ft.submitErr = &transport.StatusError{Endpoint: "/submit", Code: 500}
	_, err = s.Run(context.Background(), transport.Upload{Filename: "p.json"}, RunParams{MaxTurns: 3, MaxSamples: 2})

	var sim *SimulationError
	require.ErrorAs(t, err, &sim)
	var se *transport.StatusError
	assert.ErrorAs(t, err, &se)
	assert.Equal(t, Progress{}, s.Progress())
	assert.Equal(t, 3, ft.lastTurns)
	snap, err := s.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, first, snap.RunID)
}

func TestConversation(t *testing.T) {
	s := newService(t, &fakeTransport{})
	_, err := s.Conversation(0)
	assert.ErrorIs(t, err, ErrNoResults)

	s.Seed(sampleResult())
	cv, err := s.Conversation(0)
	require.NoError(t, err)
	assert.Equal(t, "김민수", cv.Name)
	assert.Equal(t, "성공", cv.Outcome)
	assert.Equal(t, 1, cv.Stats.AgentSwitches)
	assert.Equal(t, 1, cv.Stats.RAGCount)
	assert.Len(t, cv.Messages, 2)

	_, err = s.Conversation(5)
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestReportFromConversation(t *testing.T) {
	ft := &fakeTransport{}
	s := newService(t, ft)
	s.Seed(sampleResult())

	rv, err := s.Report(context.Background(), 0)

	require.NoError(t, err)
	require.True(t, rv.Available())
	assert.Equal(t, SourceConversation, rv.Source)
	assert.Equal(t, "보통", rv.Report.Satisfaction.Text)
	assert.Empty(t, ft.fetches)
	assert.Nil(t, rv.ProductFitChart)
	require.NotNil(t, rv.MetricsChart)
	assert.Equal(t, []float64{75, 80, 65, 90}, rv.MetricsChart.Datasets[0].Data)
}

func TestReportFallbackFailureIsAMessage(t *testing.T) {
	ft := &fakeTransport{fetchErr: fmt.Errorf("%w: 이영희", transport.ErrReportNotFound)}
	s := newService(t, ft)
	s.Seed(sampleResult())

	rv, err := s.Report(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, rv.Available())
	assert.Equal(t, MessageReportNotFound, rv.Message)
	assert.Equal(t, []string{"이영희"}, ft.fetches)

	ft.fetchErr = errors.New("connection refused")
	rv, err = s.Report(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, MessageReportLoadError+"connection refused", rv.Message)
}

func TestReportFallbackIsCached(t *testing.T) {
	ft := &fakeTransport{report: types.FinalReport{{Key: "사용자 만족도 추정", Value: "낮음"}}}
	s := newService(t, ft)
	res := sampleResult()
	s.Seed(res)

	for i := 0; i < 2; i++ {
		rv, err := s.Report(context.Background(), 1)
		require.NoError(t, err)
		require.True(t, rv.Available())
		assert.Equal(t, SourceFetched, rv.Source)
		assert.Equal(t, "낮음", rv.Report.Satisfaction.Text)
	}
	assert.Len(t, ft.fetches, 1)

	snap, _ := s.Snapshot()
	assert.Empty(t, snap.Result.Conversations[1].FinalReport)

	s.Seed(res)
	_, err := s.Report(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, ft.fetches, 2)
}

func TestReportFallbackUsesUnknownName(t *testing.T) {
	ft := &fakeTransport{fetchErr: transport.ErrReportNotFound}
	s := newService(t, ft)
	s.Seed(types.SimulationResult{Conversations: []types.ConversationRecord{{}}})

	_, err := s.Report(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Unknown"}, ft.fetches)
}

func TestReportFilenamesAgreeForNamelessCustomer(t *testing.T) {
	ft := &fakeTransport{fetchErr: transport.ErrReportNotFound}
	s := newService(t, ft)
	s.Seed(types.SimulationResult{Conversations: []types.ConversationRecord{{}}})

	doc, err := s.ReportDocument(context.Background(), 0)
	require.NoError(t, err)
	name, err := s.WriteReportHTML(context.Background(), 0, &bytes.Buffer{})
	require.NoError(t, err)

	assert.Equal(t, "insurance_report_고객 1.html", doc.Filename)
	assert.Equal(t, name, doc.Filename)
}

func TestExports(t *testing.T) {
	ft := &fakeTransport{fetchErr: transport.ErrReportNotFound}
	s := newService(t, ft)
	s.Seed(sampleResult())

	var page bytes.Buffer
	name, err := s.WriteReportHTML(context.Background(), 1, &page)
	require.NoError(t, err)
	assert.Equal(t, "insurance_report_이영희.html", name)
	assert.Contains(t, page.String(), MessageReportNotFound)

	var book bytes.Buffer
	require.NoError(t, s.WriteWorkbook(&book))
	assert.NotZero(t, book.Len())

	var js bytes.Buffer
	require.NoError(t, s.WriteResults(&js))
	assert.Contains(t, js.String(), `"total_samples": 2`)

	doc, err := s.ReportDocument(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, "insurance_report_김민수.html", doc.Filename)
}

func TestTheme(t *testing.T) {
	s := newService(t, &fakeTransport{})

	th, err := s.Theme()
	require.NoError(t, err)
	assert.Equal(t, prefs.ThemeLight, th)

	th, err = s.ToggleTheme()
	require.NoError(t, err)
	assert.Equal(t, prefs.ThemeDark, th)

	require.NoError(t, s.SetTheme(prefs.ThemeLight))
	th, _ = s.Theme()
	assert.Equal(t, prefs.ThemeLight, th)
}
