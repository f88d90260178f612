package v1

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valsia/internal/app/models"
	"valsia/internal/app/services"
	"valsia/internal/app/views"
	"valsia/pkg/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type upstream struct {
	srv   *httptest.Server
	calls atomic.Int32
	last  atomic.Value // models.ChatMessageRequest
}

// newUpstream 模拟 Dify /chat-messages
func newUpstream(t *testing.T, handler func(w http.ResponseWriter, req models.ChatMessageRequest)) *upstream {
	t.Helper()
	u := &upstream{}
	u.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.calls.Add(1)
		var req models.ChatMessageRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		u.last.Store(req)
		handler(w, req)
	}))
	t.Cleanup(u.srv.Close)
	return u
}

func sseFrames(frames ...string) func(w http.ResponseWriter, req models.ChatMessageRequest) {
	return func(w http.ResponseWriter, _ models.ChatMessageRequest) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, f := range frames {
			_, _ = fmt.Fprintf(w, "data: %s\n\n", f)
			w.(http.Flusher).Flush()
		}
	}
}

func jsonReply(status int, body string) func(w http.ResponseWriter, req models.ChatMessageRequest) {
	return func(w http.ResponseWriter, _ models.ChatMessageRequest) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = fmt.Fprint(w, body)
	}
}

func newRouter(t *testing.T, u *upstream, timeout time.Duration) *gin.Engine {
	t.Helper()
	conf := &config.Config{
		Dify: config.Dify{
			BaseURL:          u.srv.URL,
			User:             "valsia-user",
			Keys:             config.DifyKeys{Chat: "c", Roadmap: "r", Project: "p", Skill: "s"},
			StreamTimeout:    timeout,
			MaxResponseBytes: 1 << 20,
		},
	}
	service := services.NewLearningService(services.NewDifyClient(conf.Dify), nil, conf)
	learning := NewLearningController(service)
	view := NewViewController(service, views.NewPresenter(nil, nil))

	r := gin.New()
	r.POST("/api/chat", learning.Chat)
	r.POST("/api/chat/stream", learning.ChatStream)
	r.POST("/api/roadmap", learning.Roadmap)
	r.POST("/api/project", learning.Project)
	r.POST("/api/skill/validate", learning.ValidateSkill)
	r.POST("/view/project", view.Project)
	r.POST("/view/roadmap", view.Roadmap)
	r.POST("/view/skill", view.Skill)
	r.POST("/view/chat", view.Chat)
	return r
}

func post(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestChat_EmptyMessageNeverCallsUpstream(t *testing.T) {
	u := newUpstream(t, sseFrames(`{"answer":"unused"}`))
	r := newRouter(t, u, 5*time.Second)

	w := post(r, "/api/chat", `{"message":""}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Message is required"}`, w.Body.String())
	assert.Equal(t, int32(0), u.calls.Load())
}

func TestChat_InvalidJSON(t *testing.T) {
	u := newUpstream(t, sseFrames())
	r := newRouter(t, u, 5*time.Second)

	w := post(r, "/api/chat", `{"message":`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, int32(0), u.calls.Load())
}

func TestChat_AggregatesAllTextFields(t *testing.T) {
	u := newUpstream(t, sseFrames(`{"event":"message","answer":"Hi"}`, `not json`, `{"event":"agent_message","text":" there"}`, `{"event":"message_end"}`))
	r := newRouter(t, u, 5*time.Second)

	w := post(r, "/api/chat", `{"message":"hello"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"response":"Hi there"}`, w.Body.String())
	req := u.last.Load().(models.ChatMessageRequest)
	assert.Equal(t, "yes", req.Inputs["greeting"])
	assert.Equal(t, models.ResponseModeStreaming, req.ResponseMode)
}

func TestChat_EmptyStreamFallsBack(t *testing.T) {
	u := newUpstream(t, sseFrames(`{"event":"message_end"}`))
	r := newRouter(t, u, 5*time.Second)

	w := post(r, "/api/chat", `{"message":"teach me"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"response":"Sorry, I couldn't process that. Please try again."}`, w.Body.String())
}

func TestChat_UpstreamErrorKeepsStatus(t *testing.T) {
	u := newUpstream(t, jsonReply(http.StatusUnauthorized, `{"code":"unauthorized","message":"Access token is invalid"}`))
	r := newRouter(t, u, 5*time.Second)

	w := post(r, "/api/chat", `{"message":"hello"}`)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Access token is invalid"}`, w.Body.String())
}

func TestChat_NoResponseBody(t *testing.T) {
	u := newUpstream(t, func(w http.ResponseWriter, _ models.ChatMessageRequest) {})
	r := newRouter(t, u, 5*time.Second)

	w := post(r, "/api/chat", `{"message":"hello"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"No response body"}`, w.Body.String())
}

func TestChat_Timeout(t *testing.T) {
	u := newUpstream(t, func(w http.ResponseWriter, _ models.ChatMessageRequest) {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = fmt.Fprint(w, "data: {\"answer\":\"slow\"}\n\n")
		w.(http.Flusher).Flush()
		time.Sleep(500 * time.Millisecond)
	})
	r := newRouter(t, u, 100*time.Millisecond)

	w := post(r, "/api/chat", `{"message":"hello"}`)

	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
}

func TestRoadmap_PassesUpstreamErrorThrough(t *testing.T) {
	u := newUpstream(t, jsonReply(http.StatusTooManyRequests, `{"message":"rate limited"}`))
	r := newRouter(t, u, 5*time.Second)

	w := post(r, "/api/roadmap", `{"skill":"Go"}`)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"message":"rate limited"}`, w.Body.String())
}

func TestRoadmap_Success(t *testing.T) {
	u := newUpstream(t, sseFrames(`{"answer":"{\"phases\":"}`, `{"answer":"[]}"}`))
	r := newRouter(t, u, 5*time.Second)

	w := post(r, "/api/roadmap", `{"skill":"Go","experience":"some_experience","timeCommitment":15,"learningGoal":"switch_careers"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"roadmap":"{\"phases\":[]}"}`, w.Body.String())
	req := u.last.Load().(models.ChatMessageRequest)
	assert.Equal(t, "15", req.Inputs["time_commitment_"])
	assert.Equal(t, "Create a learning roadmap for Go at some_experience level", req.Query)
}

func TestRoadmap_EmptyFallback(t *testing.T) {
	u := newUpstream(t, sseFrames(`{"event":"ping"}`))
	r := newRouter(t, u, 5*time.Second)

	w := post(r, "/api/roadmap", `{"skill":"Go"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"roadmap":"I couldn't generate a roadmap. Please try again."}`, w.Body.String())
}

func TestRoadmap_MissingSkill(t *testing.T) {
	u := newUpstream(t, sseFrames())
	r := newRouter(t, u, 5*time.Second)

	w := post(r, "/api/roadmap", `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Skill is required"}`, w.Body.String())
}

func TestProject_SuggestWithZeroProjects(t *testing.T) {
	u := newUpstream(t, sseFrames(`{"answer":"{\"suggested_"}`, `{"answer":"projects\":[]}"}`))
	r := newRouter(t, u, 5*time.Second)

	w := post(r, "/api/project", `{"skill":"Go","mode":"suggest"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"answer":"{\"suggested_projects\":[]}"}`, w.Body.String())
	req := u.last.Load().(models.ChatMessageRequest)
	assert.Equal(t, "suggest", req.Inputs["mode"])

	view := post(r, "/view/project", `{"skill":"Go","mode":"suggest"}`)
	var resp struct {
		Code int               `json:"code"`
		Data views.ProjectsView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(view.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Code)
	assert.True(t, resp.Data.Structured)
	assert.Empty(t, resp.Data.Projects)
	assert.Empty(t, resp.Data.Segments)
}

func TestProject_UpstreamErrorDefaultMessage(t *testing.T) {
	u := newUpstream(t, jsonReply(http.StatusBadRequest, `{"code":"invalid_param"}`))
	r := newRouter(t, u, 5*time.Second)

	w := post(r, "/api/project", `{"skill":"Go"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Failed to generate project"}`, w.Body.String())
}

func TestSkill_PassesBlockingBodyThrough(t *testing.T) {
	body := `{"event":"message","answer":"{\"skill_name\":\"Go\",\"is_valid\":true}","conversation_id":"c1"}`
	u := newUpstream(t, jsonReply(http.StatusOK, body))
	r := newRouter(t, u, 5*time.Second)

	w := post(r, "/api/skill/validate", `{"skill":"Go"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, body, w.Body.String())
	req := u.last.Load().(models.ChatMessageRequest)
	assert.Equal(t, models.ResponseModeBlocking, req.ResponseMode)
	assert.Equal(t, "Go", req.Inputs["skill_interest"])

	view := post(r, "/view/skill", `{"skill":"Go"}`)
	var resp struct {
		Data views.SkillView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(view.Body.Bytes(), &resp))
	require.NotNil(t, resp.Data.Validation)
	assert.Equal(t, "Go", resp.Data.Validation.SkillName)
}

func TestSkill_NonJSONUpstream(t *testing.T) {
	u := newUpstream(t, func(w http.ResponseWriter, _ models.ChatMessageRequest) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = fmt.Fprint(w, "<html>gateway</html>")
	})
	r := newRouter(t, u, 5*time.Second)

	w := post(r, "/api/skill/validate", `{"skill":"Go"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Failed to validate skill"}`, w.Body.String())
}

func TestChatStream_RelaysFrames(t *testing.T) {
	u := newUpstream(t, sseFrames(`{"answer":"Lesson: "}`, `{"answer":"loops"}`))
	r := newRouter(t, u, 5*time.Second)

	w := post(r, "/api/chat/stream", `{"message":"teach me loops"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/event-stream")
	assert.Equal(t,
		`data: {"text":"Lesson: ","type":"append-text"}`+"\n\n"+
			`data: {"text":"loops","type":"append-text"}`+"\n\n"+
			`data: {"response":"Lesson: loops","type":"message-end"}`+"\n\n"+
			"data: [DONE]\n\n",
		w.Body.String())
}

func TestChatStream_UpstreamErrorFrame(t *testing.T) {
	u := newUpstream(t, jsonReply(http.StatusServiceUnavailable, `{"message":"maintenance"}`))
	r := newRouter(t, u, 5*time.Second)

	w := post(r, "/api/chat/stream", `{"message":"hello"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `data: {"error":"maintenance","status":503,"type":"error"}`)
	assert.True(t, strings.HasSuffix(w.Body.String(), "data: [DONE]\n\n"))
}

func TestChatStream_MissingMessage(t *testing.T) {
	u := newUpstream(t, sseFrames())
	r := newRouter(t, u, 5*time.Second)

	w := post(r, "/api/chat/stream", `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Message is required"}`, w.Body.String())
}

func TestViewChat_LessonSections(t *testing.T) {
	u := newUpstream(t, sseFrames(`{"answer":"Lesson: Slices grow. Task: Append three items."}`))
	r := newRouter(t, u, 5*time.Second)

	w := post(r, "/view/chat", `{"message":"slices"}`)

	var resp struct {
		Data struct {
			IsLesson bool `json:"is_lesson"`
			Sections []struct {
				Title   string `json:"title"`
				Content string `json:"content"`
			} `json:"sections"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Data.IsLesson)
	require.Len(t, resp.Data.Sections, 2)
	assert.Equal(t, "Task", resp.Data.Sections[1].Title)
}

func TestViewRoadmap_UpstreamErrorEnvelope(t *testing.T) {
	u := newUpstream(t, jsonReply(http.StatusTooManyRequests, `{"message":"rate limited"}`))
	r := newRouter(t, u, 5*time.Second)

	w := post(r, "/view/roadmap", `{"skill":"Go"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp models.RespValue
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusTooManyRequests, resp.Code)
	assert.Equal(t, "rate limited", resp.Msg)
}
