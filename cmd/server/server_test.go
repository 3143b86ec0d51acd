package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devpathway/challenge-engine/internal/config"
	"github.com/devpathway/challenge-engine/internal/monitoring"
)

func writeFixture(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// fixtureRouter serves a minimal checkout whose single challenge reviews
// without spawning external tools (no test suite, no e2e spec, no lint
// requirement).
func fixtureRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	root := t.TempDir()

	writeFixture(t, root, "pathway-review/pathway-config.json", `{
  "pathwayName": "Frontend",
  "pathwayVersion": "1.0",
  "courses": [{"id": "react-basics", "name": "React Basics"}]
}`)
	writeFixture(t, root, "courses/react-basics/course-config.json", `{
  "courseId": "react-basics",
  "courseName": "React Basics",
  "challenges": [{"id": "01-intro", "name": "Intro"}]
}`)
	writeFixture(t, root, "courses/react-basics/project/challenges/01-intro/metadata.json", `{
  "id": "01-intro",
  "name": "Intro",
  "filesToCheck": ["src/Intro.tsx"],
  "patternsRequired": []
}`)
	writeFixture(t, root, "courses/react-basics/project/challenges/01-intro/README.md",
		"# Intro\n\nRender a greeting.\n")
	writeFixture(t, root, "courses/react-basics/project/src/Intro.tsx",
		"export const Intro = () => <p>hi</p>;\n")

	r := newRouter(config.Layout{Root: root}, monitoring.NewLogger(), monitoring.NewMetrics())
	return r, root
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealthEndpoint(t *testing.T) {
	r, _ := fixtureRouter(t)

	w := get(r, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	assert.Contains(t, w.Body.String(), `"tools"`)
	assert.Contains(t, w.Body.String(), `"npx"`)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestMetricsEndpoint(t *testing.T) {
	r, _ := fixtureRouter(t)

	w := get(r, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "request_count")
}

func TestProgressBeforeAnyRun(t *testing.T) {
	r, _ := fixtureRouter(t)

	w := get(r, "/api/progress")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "not available")
}

func TestReviewThenRead(t *testing.T) {
	r, _ := fixtureRouter(t)
	t.Setenv("GROQ_API_KEY", "")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/review", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"pathwayName":"Frontend"`)

	w = get(r, "/api/progress")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "react-basics")

	w = get(r, "/api/pathway")
	assert.Equal(t, http.StatusOK, w.Code)

	w = get(r, "/api/courses/react-basics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"courseName":"React Basics"`)

	w = get(r, "/api/courses/react-basics/challenges/01-intro")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"challengeId":"01-intro"`)
	assert.Contains(t, w.Body.String(), "Render a greeting")
	assert.Contains(t, w.Body.String(), `"metadata"`)
	assert.Contains(t, w.Body.String(), `"result"`)

	w = get(r, "/api/courses/react-basics/challenges")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"lastRun"`)

	w = get(r, "/api/courses/react-basics/challenges/99-ghost")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestCoursesPagination(t *testing.T) {
	r, _ := fixtureRouter(t)

	w := get(r, "/api/courses?page=1&pageSize=10")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)
	// Unreviewed courses still appear as placeholders.
	assert.Contains(t, w.Body.String(), `"badgeLevel":"none"`)

	w = get(r, "/api/courses?page=2&pageSize=10")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"courses":[]`)
}

func TestCourseChallengesList(t *testing.T) {
	r, _ := fixtureRouter(t)

	w := get(r, "/api/courses/react-basics/challenges")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)
	assert.Contains(t, w.Body.String(), `"id":"01-intro"`)
	// Before any review there is no progress to merge in.
	assert.NotContains(t, w.Body.String(), `"lastRun"`)

	w = get(r, "/api/courses/react-basics/challenges?page=2&pageSize=10")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"challenges":[]`)

	w = get(r, "/api/courses/99-ghost/challenges")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestReviewValidation(t *testing.T) {
	r, _ := fixtureRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/review",
		strings.NewReader(`{"challengeId":"01-intro"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "requires courseId")
}

func TestParsePositiveInt(t *testing.T) {
	assert.Equal(t, 3, parsePositiveInt("3", 1))
	assert.Equal(t, 1, parsePositiveInt("", 1))
	assert.Equal(t, 1, parsePositiveInt("-2", 1))
	assert.Equal(t, 1, parsePositiveInt("junk", 1))
}
