package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"skill_assess_backend/internal/config"
	"skill_assess_backend/internal/model"
	"skill_assess_backend/internal/testutil"
	"skill_assess_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	t   *testing.T
	app *App
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)
	return &testServer{t: t, app: New(testutil.Config(), db, nil)}
}

func (s *testServer) token(userID uint, role model.UserRole) string {
	tok, err := util.GenerateJWT(userID, role, s.app.Config.JWT.Secret, time.Hour)
	require.NoError(s.t, err)
	return tok
}

func (s *testServer) do(method, path, token string, body interface{}) (int, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.app.Router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "" {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w.Code, env
}

func TestQuizFlowOverHTTP(t *testing.T) {
	s := newTestServer(t)
	skill, qs := testutil.SeedSkill(t, s.app.DB, "http", 3)
	owner := s.token(11, model.Student)

	code, env := s.do(http.MethodPost, "/api/attempts", owner, gin.H{"skillId": skill.ID})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var attempt model.QuizAttempt
	require.NoError(t, json.Unmarshal(env.Data, &attempt))
	assert.Equal(t, 3, attempt.TotalQuestions)

	answerPath := "/api/attempts/" + attempt.ID + "/answers"
	code, env = s.do(http.MethodPost, answerPath, owner, gin.H{"questionId": qs[0].ID, "selectedAnswer": "A", "timeTaken": 4})
	require.Equal(t, http.StatusOK, code)
	var result struct {
		IsCorrect     bool   `json:"isCorrect"`
		CorrectAnswer string `json:"correctAnswer"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.True(t, result.IsCorrect)
	assert.Equal(t, "A", result.CorrectAnswer)

	code, env = s.do(http.MethodPost, answerPath, owner, gin.H{"questionId": qs[0].ID, "selectedAnswer": "B", "timeTaken": 1})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, util.CodeDuplicateAnswer, env.Error)

	code, env = s.do(http.MethodPost, answerPath, owner, gin.H{"questionId": qs[1].ID, "selectedAnswer": "Z", "timeTaken": 1})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, util.CodeBadRequest, env.Error)

	stranger := s.token(12, model.Student)
	code, env = s.do(http.MethodPost, answerPath, stranger, gin.H{"questionId": qs[1].ID, "selectedAnswer": "B", "timeTaken": 1})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, util.CodeNotFound, env.Error)

	completePath := "/api/attempts/" + attempt.ID + "/complete"
	code, env = s.do(http.MethodPost, completePath, owner, gin.H{"timeTaken": 42})
	require.Equal(t, http.StatusOK, code)
	var summary struct {
		TotalQuestions  int     `json:"totalQuestions"`
		CorrectAnswers  int     `json:"correctAnswers"`
		ScorePercentage float64 `json:"scorePercentage"`
		TimeTaken       int     `json:"timeTaken"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.Equal(t, 3, summary.TotalQuestions)
	assert.Equal(t, 1, summary.CorrectAnswers)
	assert.Equal(t, 33.33, summary.ScorePercentage)
	assert.Equal(t, 42, summary.TimeTaken)

	code, env = s.do(http.MethodPost, completePath, owner, gin.H{"timeTaken": 50})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, util.CodeAlreadyCompleted, env.Error)

	code, env = s.do(http.MethodPost, answerPath, owner, gin.H{"questionId": qs[2].ID, "selectedAnswer": "C", "timeTaken": 1})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, util.CodeAlreadyCompleted, env.Error)

	code, _ = s.do(http.MethodGet, "/api/attempts/"+attempt.ID, owner, nil)
	assert.Equal(t, http.StatusOK, code)

	code, env = s.do(http.MethodGet, "/api/attempts/"+attempt.ID, stranger, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, util.CodeForbidden, env.Error)

	admin := s.token(1, model.Admin)
	code, env = s.do(http.MethodGet, "/api/attempts/"+attempt.ID, admin, nil)
	require.Equal(t, http.StatusOK, code)
	var detail struct {
		Answers []struct {
			QuestionID    string `json:"questionId"`
			CorrectAnswer string `json:"correctAnswer"`
		} `json:"answers"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	assert.Len(t, detail.Answers, 1)
}

func TestCreateAttemptErrors(t *testing.T) {
	s := newTestServer(t)
	owner := s.token(21, model.Student)

	code, env := s.do(http.MethodPost, "/api/attempts", owner, gin.H{"skillId": model.GenerateUUID()})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, util.CodeNotFound, env.Error)

	empty := &model.Skill{Name: "empty", IsActive: true}
	require.NoError(t, s.app.DB.Create(empty).Error)
	code, env = s.do(http.MethodPost, "/api/attempts", owner, gin.H{"skillId": empty.ID})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, util.CodeSkillEmpty, env.Error)

	code, env = s.do(http.MethodPost, "/api/attempts", owner, gin.H{})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, util.CodeBadRequest, env.Error)
}

func TestCompleteRejectsNegativeTime(t *testing.T) {
	s := newTestServer(t)
	skill, _ := testutil.SeedSkill(t, s.app.DB, "negative", 1)
	owner := s.token(31, model.Student)

	_, env := s.do(http.MethodPost, "/api/attempts", owner, gin.H{"skillId": skill.ID})
	var attempt model.QuizAttempt
	require.NoError(t, json.Unmarshal(env.Data, &attempt))

	code, env := s.do(http.MethodPost, "/api/attempts/"+attempt.ID+"/complete", owner, gin.H{"timeTaken": -3})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, util.CodeBadRequest, env.Error)
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(http.MethodGet, "/api/attempts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, util.CodeUnauthorized, env.Error)

	code, _ = s.do(http.MethodGet, "/api/attempts", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	forged, err := util.GenerateJWT(5, model.Admin, "some-other-secret-some-other-secret", time.Hour)
	require.NoError(t, err)
	code, _ = s.do(http.MethodGet, "/api/admin/attempts", forged, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestHistoryAndAdminListing(t *testing.T) {
	s := newTestServer(t)
	skill, _ := testutil.SeedSkill(t, s.app.DB, "history", 2)
	alice := s.token(41, model.Student)
	bob := s.token(42, model.Student)

	for _, tok := range []string{alice, alice, bob} {
		code, _ := s.do(http.MethodPost, "/api/attempts", tok, gin.H{"skillId": skill.ID})
		require.Equal(t, http.StatusCreated, code)
	}

	code, env := s.do(http.MethodGet, "/api/attempts?limit=1", alice, nil)
	require.Equal(t, http.StatusOK, code)
	var page util.PageResponse
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, 1, page.Limit)

	code, env = s.do(http.MethodGet, "/api/admin/attempts", alice, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, util.CodeForbidden, env.Error)

	admin := s.token(1, model.Admin)
	code, env = s.do(http.MethodGet, "/api/admin/attempts?ownerId=42", admin, nil)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, int64(1), page.Total)

	code, _ = s.do(http.MethodGet, "/api/admin/attempts?ownerId=abc", admin, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(http.MethodGet, "/api/attempts?status=paused", alice, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestSkillEndpoints(t *testing.T) {
	s := newTestServer(t)
	skill, _ := testutil.SeedSkill(t, s.app.DB, "endpoints", 5)
	tok := s.token(51, model.Student)

	code, env := s.do(http.MethodGet, "/api/skills", tok, nil)
	require.Equal(t, http.StatusOK, code)
	var skills []model.Skill
	require.NoError(t, json.Unmarshal(env.Data, &skills))
	require.Len(t, skills, 1)

	code, env = s.do(http.MethodGet, "/api/skills/"+skill.ID+"/questions?limit=3", tok, nil)
	require.Equal(t, http.StatusOK, code)
	var questions []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &questions))
	assert.Len(t, questions, 3)
	for _, q := range questions {
		assert.NotContains(t, q, "correctAnswer")
	}

	code, _ = s.do(http.MethodGet, "/api/skills/"+skill.ID+"/questions?limit=x", tok, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"database":"up"`)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	s.app.Router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestConfigCallbacks(t *testing.T) {
	s := newTestServer(t)

	var got int
	s.app.RegisterConfigCallback(func(cfg *config.Config) { got = cfg.RateLimit.MaxRequests })

	next := testutil.Config()
	next.RateLimit.MaxRequests = 1
	s.app.applyConfig(next)
	assert.Equal(t, 1, got)
}
