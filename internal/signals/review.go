package signals

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/devpathway/challenge-engine/internal/types"
)

// DefaultReviewEndpoint is the chat-completion endpoint the reviewer posts
// to. Tests point the adapter at an httptest server instead.
const DefaultReviewEndpoint = "https://api.groq.com/openai/v1/chat/completions"

// reviewModel is the model the qualitative reviewer asks for.
const reviewModel = "llama-3.3-70b-versatile"

// maxFileBytes bounds how much of each source file goes into the prompt.
const maxFileBytes = 5000

// maxListItems caps the strengths/improvements lists extracted from a
// free-text reply.
const maxListItems = 5

// ParseOutcome tags how much of the model's reply could be recovered.
type ParseOutcome int

const (
	// ParsedFull means the strict JSON extraction succeeded.
	ParsedFull ParseOutcome = iota
	// ParsedPartial means only the line-oriented fallback recovered fields.
	ParsedPartial
	// Unparseable means neither stage recovered anything usable.
	Unparseable
)

// ReviewVerdict is the structured verdict the model is asked to produce.
type ReviewVerdict struct {
	ComplianceScore int      `json:"complianceScore"`
	Readability     int      `json:"readability"`
	Maintainability int      `json:"maintainability"`
	Strengths       []string `json:"strengths"`
	Improvements    []string `json:"improvements"`
	OverallFeedback string   `json:"overallFeedback"`
}

// chatRequest/chatResponse mirror the OpenAI-style completion wire shape.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// AIReviewAdapter asks an LLM for a qualitative verdict on a challenge's
// source. It only runs when the functional signal proved the code works,
// so a model call is never spent on known-broken submissions.
type AIReviewAdapter struct {
	client   *http.Client
	endpoint string
	timeout  time.Duration
}

// NewAIReviewAdapter creates the adapter against the production endpoint.
func NewAIReviewAdapter() *AIReviewAdapter {
	return &AIReviewAdapter{
		client:   &http.Client{},
		endpoint: DefaultReviewEndpoint,
		timeout:  DefaultToolTimeout,
	}
}

// NewAIReviewAdapterWithEndpoint creates the adapter against a custom
// endpoint, used by tests with httptest servers.
func NewAIReviewAdapterWithEndpoint(client *http.Client, endpoint string) *AIReviewAdapter {
	return &AIReviewAdapter{client: client, endpoint: endpoint, timeout: DefaultToolTimeout}
}

var envKeyLineRe = regexp.MustCompile(`(?m)^\s*GROQ_API_KEY\s*=\s*["']?([^"'\s]+)["']?\s*$`)

// apiKey resolves the model credential from the environment, falling back
// to a single-line scan of the project's .env file.
func apiKey(projectDir string) string {
	if key := os.Getenv("GROQ_API_KEY"); key != "" {
		return key
	}
	content, err := os.ReadFile(filepath.Join(projectDir, ".env"))
	if err != nil {
		return ""
	}
	if m := envKeyLineRe.FindSubmatch(content); m != nil {
		return string(m[1])
	}
	return ""
}

// Run produces the qualitative signal. functional is the already-computed
// functional-test result used as the gate.
func (a *AIReviewAdapter) Run(ctx context.Context, meta types.ChallengeMetadata, projectDir string, functional types.SignalResult) types.SignalResult {
	if !functional.Passed || functional.TotalTests == 0 {
		return types.Errored("skipped: functional tests must pass before qualitative review")
	}

	key := apiKey(projectDir)
	if key == "" {
		return types.Errored("no API key found (set GROQ_API_KEY or add it to .env)")
	}

	prompt, err := buildPrompt(meta, projectDir)
	if err != nil {
		return types.Errored(err.Error())
	}

	reply, err := a.complete(ctx, key, prompt)
	if err != nil {
		return types.Errored(fmt.Sprintf("review request failed: %v", err))
	}

	verdict, outcome := ParseVerdict(reply)
	if outcome == Unparseable {
		return types.Errored("could not extract a verdict from the model reply")
	}

	score := round1(clampScore(
		float64(verdict.ComplianceScore)*0.4 +
			float64(verdict.Readability)*0.3 +
			float64(verdict.Maintainability)*0.3))

	result := types.SignalResult{
		Score:   score,
		Passed:  score >= 70,
		Details: verdict,
	}
	if outcome == ParsedPartial {
		result.Note = "model reply was not valid JSON; fields recovered heuristically"
	}
	return result
}

// buildPrompt concatenates the challenge's declared files (truncated) and
// its requirement text into one review request.
func buildPrompt(meta types.ChallengeMetadata, projectDir string) (string, error) {
	var b strings.Builder
	b.WriteString("You are reviewing a learner's solution to the coding challenge \"")
	b.WriteString(meta.Name)
	b.WriteString("\".\n\nRequirements:\n")
	for _, req := range meta.Requirements.Functional {
		fmt.Fprintf(&b, "- %s\n", req)
	}
	for _, req := range meta.Requirements.CodeQuality {
		fmt.Fprintf(&b, "- %s\n", req)
	}

	included := 0
	for _, f := range meta.FilesToCheck {
		content, err := os.ReadFile(filepath.Join(projectDir, f))
		if err != nil {
			continue
		}
		if len(content) > maxFileBytes {
			content = content[:maxFileBytes]
		}
		fmt.Fprintf(&b, "\n--- %s ---\n%s\n", f, content)
		included++
	}
	if included == 0 {
		return "", fmt.Errorf("no source files available for review")
	}

	b.WriteString(`
Reply with a single JSON object, no prose around it:
{
  "complianceScore": <0-100, how well the code meets the requirements>,
  "readability": <0-100>,
  "maintainability": <0-100>,
  "strengths": ["..."],
  "improvements": ["..."],
  "overallFeedback": "<one paragraph>"
}`)
	return b.String(), nil
}

// complete posts the prompt and returns the model's reply text.
func (a *AIReviewAdapter) complete(ctx context.Context, key, prompt string) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	body, err := json.Marshal(chatRequest{
		Model:       reviewModel,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: 0.2,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, a.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("model endpoint returned %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("malformed completion envelope: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("completion carried no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

var (
	complianceLineRe      = regexp.MustCompile(`(?i)compliance\w*\W+(\d{1,3})`)
	readabilityLineRe     = regexp.MustCompile(`(?i)readability\W+(\d{1,3})`)
	maintainabilityLineRe = regexp.MustCompile(`(?i)maintainability\W+(\d{1,3})`)
	listMarkerRe          = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s+(.*)$`)
)

// ParseVerdict recovers a verdict from the model's reply. Stage one is a
// strict parse of the first balanced JSON object; stage two falls back to
// line-oriented extraction of the numeric fields and bullet lists. Missing
// numeric fields stay zero.
func ParseVerdict(reply string) (ReviewVerdict, ParseOutcome) {
	if span, ok := firstJSONObject(reply); ok {
		var verdict ReviewVerdict
		if err := json.Unmarshal([]byte(span), &verdict); err == nil {
			if verdict.Strengths == nil {
				verdict.Strengths = []string{}
			}
			if verdict.Improvements == nil {
				verdict.Improvements = []string{}
			}
			return verdict, ParsedFull
		}
	}

	verdict := ReviewVerdict{Strengths: []string{}, Improvements: []string{}}
	recovered := false

	if m := complianceLineRe.FindStringSubmatch(reply); m != nil {
		verdict.ComplianceScore = atoiClamped(m[1])
		recovered = true
	}
	if m := readabilityLineRe.FindStringSubmatch(reply); m != nil {
		verdict.Readability = atoiClamped(m[1])
		recovered = true
	}
	if m := maintainabilityLineRe.FindStringSubmatch(reply); m != nil {
		verdict.Maintainability = atoiClamped(m[1])
		recovered = true
	}

	verdict.Strengths = extractList(reply, "strength")
	verdict.Improvements = extractList(reply, "improvement")
	if len(verdict.Strengths) > 0 || len(verdict.Improvements) > 0 {
		recovered = true
	}

	if !recovered {
		return verdict, Unparseable
	}
	return verdict, ParsedPartial
}

// extractList scans for a line mentioning the keyword, then consumes the
// bullet lines after it until a blank line or the item cap.
func extractList(reply, keyword string) []string {
	items := []string{}
	lines := strings.Split(reply, "\n")
	for i, line := range lines {
		if !strings.Contains(strings.ToLower(line), keyword) {
			continue
		}
		for j := i + 1; j < len(lines) && len(items) < maxListItems; j++ {
			m := listMarkerRe.FindStringSubmatch(lines[j])
			if m == nil {
				break
			}
			items = append(items, strings.TrimSpace(m[1]))
		}
		break
	}
	return items
}

func atoiClamped(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
