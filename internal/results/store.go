// Package results owns the JSON artifacts the review pipeline produces.
// Every artifact is rewritten wholesale by exactly one producing stage per
// run; readers (the dashboard) only ever see complete documents.
package results

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/devpathway/challenge-engine/internal/config"
	"github.com/devpathway/challenge-engine/internal/types"
)

// Artifact file names inside a course's results directory.
const (
	ChallengeResultsFile = "challenge-results.json"
	CourseSummaryFile    = "course-summary.json"
	AIFeedbackFile       = "ai-feedback.json"
)

// Store reads and writes artifacts under one pathway checkout.
type Store struct {
	layout config.Layout
}

// NewStore creates a store rooted at the pathway checkout.
func NewStore(layout config.Layout) *Store {
	return &Store{layout: layout}
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create results dir: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

// WriteChallengeResults overwrites a course's challenge-results.json.
func (s *Store) WriteChallengeResults(courseID string, results []types.ChallengeResult) error {
	return writeJSON(filepath.Join(s.layout.ResultsDir(courseID), ChallengeResultsFile), results)
}

// ReadChallengeResults loads a course's challenge-results.json. A missing
// file means the course has never been reviewed and yields an empty slice.
func (s *Store) ReadChallengeResults(courseID string) ([]types.ChallengeResult, error) {
	path := filepath.Join(s.layout.ResultsDir(courseID), ChallengeResultsFile)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return []types.ChallengeResult{}, nil
	}
	var results []types.ChallengeResult
	if err := readJSON(path, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// WriteCourseSummary overwrites a course's course-summary.json.
func (s *Store) WriteCourseSummary(courseID string, summary types.CourseSummary) error {
	return writeJSON(filepath.Join(s.layout.ResultsDir(courseID), CourseSummaryFile), summary)
}

// ReadCourseSummary loads a course's course-summary.json.
func (s *Store) ReadCourseSummary(courseID string) (types.CourseSummary, error) {
	var summary types.CourseSummary
	err := readJSON(filepath.Join(s.layout.ResultsDir(courseID), CourseSummaryFile), &summary)
	return summary, err
}

// WriteAIFeedback overwrites a course's ai-feedback.json.
func (s *Store) WriteAIFeedback(courseID string, entries []types.AIFeedbackEntry) error {
	return writeJSON(filepath.Join(s.layout.ResultsDir(courseID), AIFeedbackFile), entries)
}

// ReadAIFeedback loads a course's ai-feedback.json; missing means no
// qualitative reviews have run yet.
func (s *Store) ReadAIFeedback(courseID string) ([]types.AIFeedbackEntry, error) {
	path := filepath.Join(s.layout.ResultsDir(courseID), AIFeedbackFile)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return []types.AIFeedbackEntry{}, nil
	}
	var entries []types.AIFeedbackEntry
	if err := readJSON(path, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// WritePathwaySummary overwrites pathway-summary.json.
func (s *Store) WritePathwaySummary(summary types.PathwaySummary) error {
	return writeJSON(s.layout.PathwaySummaryPath(), summary)
}

// ReadPathwaySummary loads pathway-summary.json.
func (s *Store) ReadPathwaySummary() (types.PathwaySummary, error) {
	var summary types.PathwaySummary
	err := readJSON(s.layout.PathwaySummaryPath(), &summary)
	return summary, err
}

// WriteProgress overwrites learner-results/progress.json.
func (s *Store) WriteProgress(progress types.Progress) error {
	return writeJSON(s.layout.ProgressPath(), progress)
}

// ReadProgress loads learner-results/progress.json.
func (s *Store) ReadProgress() (types.Progress, error) {
	var progress types.Progress
	err := readJSON(s.layout.ProgressPath(), &progress)
	return progress, err
}

// ProgressFresh reports whether progress.json exists and its age.
func (s *Store) ProgressFresh() (bool, os.FileInfo) {
	info, err := os.Stat(s.layout.ProgressPath())
	if err != nil {
		return false, nil
	}
	return true, info
}
