// Package review drives the whole pipeline: one challenge's six signals in
// order, one course's challenges in order, all courses in pathway order,
// then the artifact writes. Everything is sequential on purpose — the
// signal sources spawn processes and browsers that contend for the same
// local ports and CPU.
package review

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/devpathway/challenge-engine/internal/aggregate"
	"github.com/devpathway/challenge-engine/internal/config"
	"github.com/devpathway/challenge-engine/internal/monitoring"
	"github.com/devpathway/challenge-engine/internal/results"
	"github.com/devpathway/challenge-engine/internal/scoring"
	"github.com/devpathway/challenge-engine/internal/signals"
	"github.com/devpathway/challenge-engine/internal/types"
)

// Engine wires the adapters, scorer, and aggregators over one pathway
// checkout.
type Engine struct {
	layout  config.Layout
	store   *results.Store
	logger  *monitoring.Logger
	metrics *monitoring.Metrics

	functional    *signals.FunctionalTestAdapter
	lint          *signals.LintAdapter
	architecture  *signals.ArchitectureAdapter
	bestPractices *signals.BestPracticesAdapter
	e2e           *signals.E2EAdapter
	aiReview      *signals.AIReviewAdapter
}

// NewEngine creates an engine with the production adapters.
func NewEngine(layout config.Layout, logger *monitoring.Logger, metrics *monitoring.Metrics) *Engine {
	return &Engine{
		layout:        layout,
		store:         results.NewStore(layout),
		logger:        logger,
		metrics:       metrics,
		functional:    signals.NewFunctionalTestAdapter(),
		lint:          signals.NewLintAdapter(),
		architecture:  signals.NewArchitectureAdapter(),
		bestPractices: signals.NewBestPracticesAdapter(),
		e2e:           signals.NewE2EAdapter(),
		aiReview:      signals.NewAIReviewAdapter(),
	}
}

// ReviewChallenge runs the six signals for one challenge in declared order
// and folds them into a ChallengeResult. Signals that cannot run still
// contribute their zero score; the qualitative review is additionally
// gated on the functional result so no model call is spent on broken code.
func (e *Engine) ReviewChallenge(ctx context.Context, cfg config.CourseConfig, meta types.ChallengeMetadata, projectDir string) types.ChallengeResult {
	start := time.Now()
	sigs := make(map[string]types.SignalResult, len(types.SignalOrder))

	run := func(name string, fn func() types.SignalResult) {
		sigStart := time.Now()
		result := fn()
		sigs[name] = result
		e.metrics.RecordSignal(name, time.Since(sigStart), result.Error != "")
		e.logger.SignalLogger(meta.ID, name, result.Score, result.Passed, result.Error, hintFor(result.Error))
	}

	run(types.SignalFunctionalTests, func() types.SignalResult {
		return e.functional.Run(ctx, meta, projectDir)
	})
	run(types.SignalCodeQuality, func() types.SignalResult {
		return e.lint.Run(ctx, meta, projectDir)
	})
	run(types.SignalArchitecture, func() types.SignalResult {
		return e.architecture.Run(ctx, meta, projectDir)
	})
	run(types.SignalBestPractices, func() types.SignalResult {
		return e.bestPractices.Run(ctx, meta, projectDir)
	})
	run(types.SignalE2ETests, func() types.SignalResult {
		return e.e2e.Run(ctx, meta, projectDir)
	})
	run(types.SignalAIReview, func() types.SignalResult {
		return e.aiReview.Run(ctx, meta, projectDir, sigs[types.SignalFunctionalTests])
	})

	result := scoring.Score(meta.ID, meta.Name, sigs, cfg.Scoring, cfg.Requirements.MinScore)
	e.logger.ChallengeLogger(meta.ID, result.TotalScore, result.Passed, time.Since(start))
	return result
}

// ReviewCourse reviews every challenge in a course's declared order and
// writes the course's three artifacts. A challenge whose metadata cannot
// even be loaded becomes an errored result rather than aborting the run.
func (e *Engine) ReviewCourse(ctx context.Context, courseID string, onlyChallenge string) (types.CourseSummary, []types.ChallengeResult, error) {
	cfg, err := config.LoadCourseConfig(e.layout.CourseConfigPath(courseID))
	if err != nil {
		return types.CourseSummary{}, nil, err
	}

	projectDir := e.layout.ProjectDir(courseID)
	reviewed := make([]types.ChallengeResult, 0, len(cfg.Challenges))
	feedback := make([]types.AIFeedbackEntry, 0)

	for _, ref := range cfg.Challenges {
		if onlyChallenge != "" && ref.ID != onlyChallenge {
			continue
		}
		if err := ctx.Err(); err != nil {
			return types.CourseSummary{}, nil, fmt.Errorf("course review canceled: %w", err)
		}

		meta, err := config.LoadChallengeMetadata(e.layout.ChallengeDir(courseID, ref.ID))
		if err != nil {
			e.logger.Warn("Challenge skipped", "course", courseID, "challenge", ref.ID, "reason", err.Error())
			reviewed = append(reviewed, types.ChallengeResult{
				ChallengeID:   ref.ID,
				ChallengeName: ref.Name,
				Timestamp:     time.Now().UTC(),
				Signals:       map[string]types.SignalResult{},
				Errors:        []string{fmt.Sprintf("metadata: %v", err)},
			})
			continue
		}

		result := e.ReviewChallenge(ctx, cfg, meta, projectDir)
		reviewed = append(reviewed, result)
		e.metrics.IncrementReviewsRun()

		if ai, ok := result.Signals[types.SignalAIReview]; ok && ai.Error == "" {
			feedback = append(feedback, types.AIFeedbackEntry{
				ChallengeID:   meta.ID,
				ChallengeName: meta.Name,
				AIReview:      ai.Details,
			})
		}
	}

	// A single-challenge run still rewrites whole artifacts: merge the
	// fresh result over the previously stored set first.
	if onlyChallenge != "" {
		previous, err := e.store.ReadChallengeResults(courseID)
		if err == nil {
			reviewed = mergeResults(previous, reviewed)
		}
		previousFeedback, err := e.store.ReadAIFeedback(courseID)
		if err == nil {
			feedback = mergeFeedback(previousFeedback, feedback)
		}
	}

	summary := aggregate.Course(cfg.CourseID, cfg.CourseName, reviewed, len(cfg.Challenges), cfg.CourseBadgeThresholds())
	e.logger.CourseLogger(courseID, summary.AverageScore, summary.CompletionPercentage, string(summary.BadgeLevel))

	if err := e.store.WriteChallengeResults(courseID, reviewed); err != nil {
		return summary, reviewed, err
	}
	if err := e.store.WriteCourseSummary(courseID, summary); err != nil {
		return summary, reviewed, err
	}
	if err := e.store.WriteAIFeedback(courseID, feedback); err != nil {
		return summary, reviewed, err
	}
	return summary, reviewed, nil
}

// ReviewPathway reviews every course in the pathway's declared order, then
// writes pathway-summary.json and progress.json.
func (e *Engine) ReviewPathway(ctx context.Context) (types.PathwaySummary, error) {
	cfg, err := config.LoadPathwayConfig(e.layout.PathwayConfigPath())
	if err != nil {
		return types.PathwaySummary{}, err
	}

	standings := make([]types.CourseStanding, 0, len(cfg.Courses))
	records := make([]aggregate.CourseRecord, 0, len(cfg.Courses))
	allFeedback := make([]types.AIFeedbackEntry, 0)

	for _, course := range cfg.Courses {
		summary, reviewed, err := e.ReviewCourse(ctx, course.ID, "")
		if err != nil {
			e.logger.Error("Course review failed", "course", course.ID, "error", err.Error())
			continue
		}
		standings = append(standings, aggregate.Standing(summary))
		records = append(records, aggregate.CourseRecord{Summary: summary, Results: reviewed})

		if feedback, err := e.store.ReadAIFeedback(course.ID); err == nil {
			allFeedback = append(allFeedback, feedback...)
		}
	}

	pathway := aggregate.Pathway(cfg.PathwayName, cfg.PathwayVersion, standings, cfg.CourseWeights(), cfg.PathwayBadgeThresholds())
	pathway.Insights = aggregate.BuildInsights(allFeedback)

	if err := e.store.WritePathwaySummary(pathway); err != nil {
		return pathway, err
	}
	if err := e.store.WriteProgress(aggregate.BuildProgress(pathway, records)); err != nil {
		return pathway, err
	}
	return pathway, nil
}

// RefreshAggregates recomputes pathway-summary.json and progress.json from
// the stored course artifacts without re-running any signals.
func (e *Engine) RefreshAggregates() (types.PathwaySummary, error) {
	cfg, err := config.LoadPathwayConfig(e.layout.PathwayConfigPath())
	if err != nil {
		return types.PathwaySummary{}, err
	}

	standings := make([]types.CourseStanding, 0, len(cfg.Courses))
	records := make([]aggregate.CourseRecord, 0, len(cfg.Courses))
	allFeedback := make([]types.AIFeedbackEntry, 0)

	for _, course := range cfg.Courses {
		summary, err := e.store.ReadCourseSummary(course.ID)
		if err != nil {
			continue
		}
		reviewed, err := e.store.ReadChallengeResults(course.ID)
		if err != nil {
			reviewed = []types.ChallengeResult{}
		}
		standings = append(standings, aggregate.Standing(summary))
		records = append(records, aggregate.CourseRecord{Summary: summary, Results: reviewed})
		if feedback, err := e.store.ReadAIFeedback(course.ID); err == nil {
			allFeedback = append(allFeedback, feedback...)
		}
	}

	pathway := aggregate.Pathway(cfg.PathwayName, cfg.PathwayVersion, standings, cfg.CourseWeights(), cfg.PathwayBadgeThresholds())
	pathway.Insights = aggregate.BuildInsights(allFeedback)

	if err := e.store.WritePathwaySummary(pathway); err != nil {
		return pathway, err
	}
	if err := e.store.WriteProgress(aggregate.BuildProgress(pathway, records)); err != nil {
		return pathway, err
	}
	return pathway, nil
}

// Store exposes the artifact store for the dashboard layer.
func (e *Engine) Store() *results.Store {
	return e.store
}

// mergeResults overlays fresh results onto previous ones by challenge id,
// keeping the previous ordering and appending genuinely new challenges.
func mergeResults(previous, fresh []types.ChallengeResult) []types.ChallengeResult {
	byID := make(map[string]types.ChallengeResult, len(fresh))
	for _, r := range fresh {
		byID[r.ChallengeID] = r
	}
	merged := make([]types.ChallengeResult, 0, len(previous)+len(fresh))
	for _, r := range previous {
		if updated, ok := byID[r.ChallengeID]; ok {
			merged = append(merged, updated)
			delete(byID, r.ChallengeID)
		} else {
			merged = append(merged, r)
		}
	}
	for _, r := range fresh {
		if _, ok := byID[r.ChallengeID]; ok {
			merged = append(merged, r)
		}
	}
	return merged
}

func mergeFeedback(previous, fresh []types.AIFeedbackEntry) []types.AIFeedbackEntry {
	byID := make(map[string]types.AIFeedbackEntry, len(fresh))
	for _, f := range fresh {
		byID[f.ChallengeID] = f
	}
	merged := make([]types.AIFeedbackEntry, 0, len(previous)+len(fresh))
	for _, f := range previous {
		if updated, ok := byID[f.ChallengeID]; ok {
			merged = append(merged, updated)
			delete(byID, f.ChallengeID)
		} else {
			merged = append(merged, f)
		}
	}
	for _, f := range fresh {
		if _, ok := byID[f.ChallengeID]; ok {
			merged = append(merged, f)
		}
	}
	return merged
}

// hintFor maps common signal failure reasons to remediation hints.
func hintFor(errMsg string) string {
	switch {
	case errMsg == "":
		return ""
	case strings.Contains(errMsg, "playwright install"):
		return "npx playwright install"
	case strings.Contains(errMsg, "API key"):
		return "export GROQ_API_KEY or add it to .env"
	case strings.Contains(errMsg, "test file not found"):
		return "check the challenge's tests/ directory"
	default:
		return ""
	}
}
