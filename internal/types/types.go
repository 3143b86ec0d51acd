package types

import "time"

// Signal names in declared pipeline order. Later signals may gate on the
// results of earlier ones, so reviewers must run them in this order.
const (
	SignalFunctionalTests = "functionalTests"
	SignalCodeQuality     = "codeQuality"
	SignalArchitecture    = "architecture"
	SignalBestPractices   = "bestPractices"
	SignalE2ETests        = "e2eTests"
	SignalAIReview        = "aiReview"
)

// SignalOrder is the fixed execution order for one challenge review.
var SignalOrder = []string{
	SignalFunctionalTests,
	SignalCodeQuality,
	SignalArchitecture,
	SignalBestPractices,
	SignalE2ETests,
	SignalAIReview,
}

// Requirements holds the free-text requirement categories parsed from a
// challenge's requirements.md.
type Requirements struct {
	Functional    []string `json:"functional"`
	CodeQuality   []string `json:"codeQuality"`
	Architecture  []string `json:"architecture"`
	BestPractices []string `json:"bestPractices"`
}

// ChallengeMetadata is the static descriptor of one exercise, loaded once
// per review run and never mutated afterwards.
type ChallengeMetadata struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	FilesToCheck     []string     `json:"filesToCheck"`
	PatternsRequired []string     `json:"patternsRequired"`
	Skills           []string     `json:"skills,omitempty"`
	Requirements     Requirements `json:"requirements"`
}

// SignalResult is the normalized output of one signal adapter. An adapter
// that cannot compute its signal still returns a well-formed SignalResult
// with Error set and Score zero; aggregation never branches on field
// presence.
type SignalResult struct {
	Score  float64 `json:"score"`
	Passed bool    `json:"passed"`
	Error  string  `json:"error,omitempty"`
	Note   string  `json:"note,omitempty"`

	// Tallies reported by count-based signals (tests, e2e).
	TotalTests  int `json:"totalTests,omitempty"`
	PassedTests int `json:"passedTests,omitempty"`
	FailedTests int `json:"failedTests,omitempty"`

	// Details carries source-specific payloads (per-file issue lists,
	// pattern sets, AI review body) for human-facing reporting only.
	// Scoring math never reads it.
	Details any `json:"details,omitempty"`
}

// Errored creates a SignalResult for a signal that could not be computed.
// Score stays zero so the weighted total treats it as a failing signal.
func Errored(reason string) SignalResult {
	return SignalResult{Score: 0, Passed: false, Error: reason}
}

// ChallengeResult is one review run's full output for one challenge.
// Recomputed wholesale on every invocation; only the latest run is kept.
type ChallengeResult struct {
	ChallengeID   string                  `json:"challengeId"`
	ChallengeName string                  `json:"challengeName"`
	Timestamp     time.Time               `json:"timestamp"`
	Signals       map[string]SignalResult `json:"signals"`
	TotalScore    float64                 `json:"totalScore"`
	Passed        bool                    `json:"passed"`
	Errors        []string                `json:"errors"`
}

// ChallengeOutcome is the compact per-challenge line embedded in a
// CourseSummary.
type ChallengeOutcome struct {
	ChallengeID   string  `json:"challengeId"`
	ChallengeName string  `json:"challengeName"`
	Score         float64 `json:"score"`
	Passed        bool    `json:"passed"`
}

// CourseSummary aggregates all ChallengeResults for one course.
type CourseSummary struct {
	CourseID             string             `json:"courseId"`
	CourseName           string             `json:"courseName"`
	LastUpdated          time.Time          `json:"lastUpdated"`
	TotalChallenges      int                `json:"totalChallenges"`
	CompletedChallenges  int                `json:"completedChallenges"`
	AverageScore         float64            `json:"averageScore"`
	CompletionPercentage float64            `json:"completionPercentage"`
	BadgeLevel           BadgeLevel         `json:"badgeLevel"`
	ChallengeResults     []ChallengeOutcome `json:"challengeResults"`
	SkillStrengths       []string           `json:"skillStrengths"`
	ImprovementAreas     []string           `json:"improvementAreas"`
}

// CourseStanding is a CourseSummary reduced to the fields the pathway
// aggregator consumes, with the pathway-config weight attached.
type CourseStanding struct {
	CourseID            string     `json:"courseId"`
	CourseName          string     `json:"courseName"`
	Score               float64    `json:"score"`
	Completion          float64    `json:"completion"`
	BadgeLevel          BadgeLevel `json:"badgeLevel"`
	TotalChallenges     int        `json:"totalChallenges"`
	CompletedChallenges int        `json:"completedChallenges"`
	SkillStrengths      []string   `json:"skillStrengths"`
	ImprovementAreas    []string   `json:"improvementAreas"`
}

// PathwaySummary aggregates all course summaries into the headline result.
type PathwaySummary struct {
	PathwayName          string           `json:"pathwayName"`
	Version              string           `json:"version"`
	LastUpdated          time.Time        `json:"lastUpdated"`
	OverallScore         float64          `json:"overallScore"`
	CompletionPercentage float64          `json:"completionPercentage"`
	BadgeLevel           BadgeLevel       `json:"badgeLevel"`
	Courses              []CourseStanding `json:"courses"`
	TotalChallenges      int              `json:"totalChallenges"`
	CompletedChallenges  int              `json:"completedChallenges"`
	SkillStrengths       []string         `json:"skillStrengths"`
	ImprovementAreas     []string         `json:"improvementAreas"`
	Insights             *PathwayInsights `json:"insights,omitempty"`
}

// PathwayInsights summarizes AI feedback across courses.
type PathwayInsights struct {
	TopStrengths    []string `json:"topStrengths"`
	TopImprovements []string `json:"topImprovements"`
	ReviewedCount   int      `json:"reviewedCount"`
}

// BadgeLevel is a named achievement tier.
type BadgeLevel string

const (
	BadgeGold   BadgeLevel = "gold"
	BadgeSilver BadgeLevel = "silver"
	BadgeBronze BadgeLevel = "bronze"
	BadgeNone   BadgeLevel = "none"
)

// BadgeTier is one row of a BadgeThresholds table. Both conditions must
// hold simultaneously for the tier to apply.
type BadgeTier struct {
	MinScore      float64 `json:"minScore"`
	MinCompletion float64 `json:"minCompletion"`
}

// BadgeThresholds is the three-tier badge table. Course-level and
// pathway-level reviews supply distinct instances; the aggregators carry
// no thresholds of their own.
type BadgeThresholds struct {
	Gold   BadgeTier `json:"gold"`
	Silver BadgeTier `json:"silver"`
	Bronze BadgeTier `json:"bronze"`
}

// AIFeedbackEntry is one row of a course's ai-feedback.json, emitted only
// for challenges where the qualitative signal actually ran.
type AIFeedbackEntry struct {
	ChallengeID   string `json:"challengeId"`
	ChallengeName string `json:"challengeName"`
	AIReview      any    `json:"aiReview"`
}

// ChallengeProgress is the per-challenge line of progress.json.
type ChallengeProgress struct {
	ChallengeID   string             `json:"challengeId"`
	ChallengeName string             `json:"challengeName"`
	Passed        bool               `json:"passed"`
	Score         float64            `json:"score"`
	LastRun       *time.Time         `json:"lastRun"`
	Scores        map[string]float64 `json:"scores"`
}

// CourseProgress is the per-course block of progress.json.
type CourseProgress struct {
	CourseID             string                       `json:"courseId"`
	CourseName           string                       `json:"courseName"`
	AverageScore         float64                      `json:"averageScore"`
	CompletionPercentage float64                      `json:"completionPercentage"`
	BadgeLevel           BadgeLevel                   `json:"badgeLevel"`
	TotalChallenges      int                          `json:"totalChallenges"`
	CompletedChallenges  int                          `json:"completedChallenges"`
	Challenges           map[string]ChallengeProgress `json:"challenges"`
}

// PathwayProgress is the headline block of progress.json.
type PathwayProgress struct {
	Name                 string     `json:"name"`
	Version              string     `json:"version"`
	OverallScore         float64    `json:"overallScore"`
	CompletionPercentage float64    `json:"completionPercentage"`
	BadgeLevel           BadgeLevel `json:"badgeLevel"`
	TotalChallenges      int        `json:"totalChallenges"`
	CompletedChallenges  int        `json:"completedChallenges"`
}

// Progress is the cross-course snapshot consumed by the dashboard.
type Progress struct {
	LastUpdated time.Time                 `json:"lastUpdated"`
	Pathway     PathwayProgress           `json:"pathway"`
	Courses     map[string]CourseProgress `json:"courses"`
}
