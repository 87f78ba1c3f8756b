package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voicelane/voicelane/pkg/ai/llm"
	"github.com/voicelane/voicelane/pkg/analysis"
	"github.com/voicelane/voicelane/pkg/database"
	"github.com/voicelane/voicelane/pkg/domain"
	"github.com/voicelane/voicelane/pkg/models"
	"github.com/voicelane/voicelane/pkg/store"
)

const handlerAnalysisJSON = `{
	"leadScore": 85,
	"qualificationStatus": "Hot",
	"sentiment": "Positive",
	"detailedSummary": "Ready to buy.",
	"interestLevel": 9,
	"decisionAuthority": "High"
}`

// stubLLM serves a canned response or error
type stubLLM struct {
	response string
	err      error
}

func (s *stubLLM) Chat(context.Context, string, llm.ChatRequest) (*llm.ChatResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &llm.ChatResponse{Message: s.response}, nil
}

// stubCreds returns a fixed key or error
type stubCreds struct {
	key string
	err error
}

func (s *stubCreds) OpenAIKey(context.Context, string) (string, error) {
	return s.key, s.err
}

func setupAnalyzeTest(t *testing.T, llmClient llm.Client, creds analysis.CredentialSource) (*AnalyzeHandler, *store.CallStore) {
	t.Helper()

	pool := database.PoolConfig{
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Minute,
		ConnMaxIdleTime: time.Minute,
	}
	db, err := database.Open("sqlite3", ":memory:", pool)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate(context.Background()))

	callStore := store.NewCallStore(db.DB)
	svc := analysis.NewService(callStore, nil, creds, llmClient, nil, nil)
	return NewAnalyzeHandler(svc), callStore
}

func createAnalyzeCall(t *testing.T, callStore *store.CallStore, transcript string) *models.CallRecord {
	t.Helper()
	call := &models.CallRecord{
		UserID:    "user-1",
		Provider:  "vapi",
		Direction: models.DirectionOutbound,
		Status:    models.CallStatusCompleted,
	}
	require.NoError(t, callStore.Create(context.Background(), call))
	if transcript != "" {
		require.NoError(t, callStore.SetTranscript(context.Background(), call.ID, transcript))
	}
	return call
}

func postAnalyze(t *testing.T, h *AnalyzeHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/calls/analyze", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.Analyze(c))
	return rec
}

func TestAnalyzeHandler_PrimarySuccess(t *testing.T) {
	h, callStore := setupAnalyzeTest(t, &stubLLM{response: handlerAnalysisJSON}, &stubCreds{key: "sk-test"})
	call := createAnalyzeCall(t, callStore, "")

	rec := postAnalyze(t, h, `{"transcript": "a transcript", "callId": "`+call.ID+`"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp AnalyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 85, resp.LeadScore)
	assert.Equal(t, "Hot", resp.QualificationStatus)
	assert.Equal(t, analysis.AnalyzerOpenAI, resp.AnalyzerUsed)
	assert.Nil(t, resp.OpenAIError)
	assert.True(t, resp.Persisted)

	// The analysis was written back to the call record
	stored, err := callStore.GetByID(context.Background(), call.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LeadScore)
	assert.Equal(t, 85, *stored.LeadScore)
}

func TestAnalyzeHandler_DegradesToFallback(t *testing.T) {
	h, callStore := setupAnalyzeTest(t,
		&stubLLM{err: domain.NewUpstreamError("openai returned 503", nil)},
		&stubCreds{key: "sk-test"})
	call := createAnalyzeCall(t, callStore, "")

	rec := postAnalyze(t, h, `{"transcript": "yes great definitely want", "callId": "`+call.ID+`"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp AnalyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, analysis.AnalyzerFallback, resp.AnalyzerUsed)
	assert.Equal(t, 100, resp.LeadScore)
	require.NotNil(t, resp.OpenAIError)
	assert.NotEmpty(t, resp.OpenAIError.Message)
}

func TestAnalyzeHandler_ErrorResponses(t *testing.T) {
	h, callStore := setupAnalyzeTest(t, &stubLLM{response: handlerAnalysisJSON}, &stubCreds{key: "sk-test"})
	call := createAnalyzeCall(t, callStore, "")

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantType   string
	}{
		{"missing transcript", `{"callId": "` + call.ID + `"}`, http.StatusBadRequest, domain.ErrCodeValidation},
		{"blank transcript", `{"transcript": "  ", "callId": "` + call.ID + `"}`, http.StatusBadRequest, domain.ErrCodeValidation},
		{"missing call id", `{"transcript": "hello"}`, http.StatusBadRequest, domain.ErrCodeValidation},
		{"unknown call id", `{"transcript": "hello", "callId": "nope"}`, http.StatusNotFound, domain.ErrCodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postAnalyze(t, h, tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)

			var resp models.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantType, resp.Type)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestAnalyzeHandler_Reanalyze(t *testing.T) {
	h, callStore := setupAnalyzeTest(t, &stubLLM{response: handlerAnalysisJSON}, &stubCreds{key: "sk-test"})
	call := createAnalyzeCall(t, callStore, "yes definitely interested")

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/v1/calls/:id/reanalyze")
	c.SetParamNames("id")
	c.SetParamValues(call.ID)

	require.NoError(t, h.Reanalyze(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp AnalyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, analysis.AnalyzerOpenAI, resp.AnalyzerUsed)
	assert.Equal(t, 85, resp.LeadScore)
}

func TestAnalyzeHandler_ReanalyzeWithoutTranscript(t *testing.T) {
	h, callStore := setupAnalyzeTest(t, &stubLLM{response: handlerAnalysisJSON}, &stubCreds{key: "sk-test"})
	call := createAnalyzeCall(t, callStore, "")

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(call.ID)

	require.NoError(t, h.Reanalyze(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
