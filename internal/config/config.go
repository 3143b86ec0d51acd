// Package config loads the static review configuration: pathway-config.json,
// per-course course-config.json, and per-challenge metadata. All loaded
// structs are plain immutable values passed explicitly into the scorer and
// aggregators; nothing in here is global state.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/devpathway/challenge-engine/internal/types"
)

// CourseRef is one entry of the pathway's course list.
type CourseRef struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Weight float64 `json:"weight,omitempty"`
}

// PathwayConfig mirrors pathway-config.json.
type PathwayConfig struct {
	PathwayName    string                 `json:"pathwayName"`
	PathwayVersion string                 `json:"pathwayVersion"`
	Courses        []CourseRef            `json:"courses"`
	BadgeLevels    *types.BadgeThresholds `json:"badgeLevels,omitempty"`
}

// ChallengeRef is one entry of a course's challenge list.
type ChallengeRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CourseConfig mirrors course-config.json.
type CourseConfig struct {
	CourseID     string             `json:"courseId"`
	CourseName   string             `json:"courseName"`
	Challenges   []ChallengeRef     `json:"challenges"`
	Scoring      map[string]float64 `json:"scoring"`
	Requirements struct {
		MinScore float64 `json:"minScore"`
	} `json:"requirements"`
	BadgeLevels *types.BadgeThresholds `json:"badgeLevels,omitempty"`
}

// DefaultWeights is the signal weight table used when a course config omits
// its scoring block. Functional tests dominate; the remaining signals
// descend in the declared pipeline order.
func DefaultWeights() map[string]float64 {
	return map[string]float64{
		types.SignalFunctionalTests: 0.35,
		types.SignalCodeQuality:     0.20,
		types.SignalArchitecture:    0.15,
		types.SignalBestPractices:   0.10,
		types.SignalE2ETests:        0.15,
		types.SignalAIReview:        0.05,
	}
}

// DefaultBadgeThresholds is the course-level badge table applied when a
// config supplies none.
func DefaultBadgeThresholds() types.BadgeThresholds {
	return types.BadgeThresholds{
		Gold:   types.BadgeTier{MinScore: 90, MinCompletion: 100},
		Silver: types.BadgeTier{MinScore: 75, MinCompletion: 75},
		Bronze: types.BadgeTier{MinScore: 60, MinCompletion: 50},
	}
}

// DefaultMinPassScore applies when a course config omits requirements.minScore.
const DefaultMinPassScore = 70.0

// Layout resolves the on-disk locations of a pathway checkout.
type Layout struct {
	Root string
}

func (l Layout) PathwayConfigPath() string {
	return filepath.Join(l.Root, "pathway-review", "pathway-config.json")
}

func (l Layout) PathwaySummaryPath() string {
	return filepath.Join(l.Root, "pathway-review", "pathway-summary.json")
}

func (l Layout) ProgressPath() string {
	return filepath.Join(l.Root, "learner-results", "progress.json")
}

func (l Layout) CourseDir(courseID string) string {
	return filepath.Join(l.Root, "courses", courseID)
}

func (l Layout) CourseConfigPath(courseID string) string {
	return filepath.Join(l.CourseDir(courseID), "course-config.json")
}

func (l Layout) ProjectDir(courseID string) string {
	return filepath.Join(l.CourseDir(courseID), "project")
}

func (l Layout) ResultsDir(courseID string) string {
	return filepath.Join(l.CourseDir(courseID), "results")
}

func (l Layout) ChallengeDir(courseID, challengeID string) string {
	return filepath.Join(l.ProjectDir(courseID), "challenges", challengeID)
}

// LoadPathwayConfig reads and decodes pathway-config.json.
func LoadPathwayConfig(path string) (PathwayConfig, error) {
	var cfg PathwayConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read pathway config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse pathway config: %w", err)
	}
	return cfg, nil
}

// LoadCourseConfig reads and decodes one course-config.json, filling in the
// default weight table and pass threshold when the config omits them.
func LoadCourseConfig(path string) (CourseConfig, error) {
	var cfg CourseConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read course config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse course config: %w", err)
	}
	if len(cfg.Scoring) == 0 {
		cfg.Scoring = DefaultWeights()
	}
	if cfg.Requirements.MinScore == 0 {
		cfg.Requirements.MinScore = DefaultMinPassScore
	}
	return cfg, nil
}

// CourseBadgeThresholds returns the badge table for a course, defaulting
// when the config carries none.
func (c CourseConfig) CourseBadgeThresholds() types.BadgeThresholds {
	if c.BadgeLevels != nil {
		return *c.BadgeLevels
	}
	return DefaultBadgeThresholds()
}

// PathwayBadgeThresholds returns the pathway badge table, defaulting when
// the config carries none.
func (p PathwayConfig) PathwayBadgeThresholds() types.BadgeThresholds {
	if p.BadgeLevels != nil {
		return *p.BadgeLevels
	}
	return DefaultBadgeThresholds()
}

// CourseWeights returns the per-course weight slice aligned with
// p.Courses. A zero weight in the config means "unspecified" and falls
// back to the uniform 1/N share.
func (p PathwayConfig) CourseWeights() []float64 {
	weights := make([]float64, len(p.Courses))
	uniform := 0.0
	if len(p.Courses) > 0 {
		uniform = 1.0 / float64(len(p.Courses))
	}
	for i, c := range p.Courses {
		if c.Weight > 0 {
			weights[i] = c.Weight
		} else {
			weights[i] = uniform
		}
	}
	return weights
}

// LoadChallengeMetadata reads a challenge's metadata.json and, when present,
// its requirements.md, producing the immutable descriptor the adapters
// consume.
func LoadChallengeMetadata(challengeDir string) (types.ChallengeMetadata, error) {
	var meta types.ChallengeMetadata
	data, err := os.ReadFile(filepath.Join(challengeDir, "metadata.json"))
	if err != nil {
		return meta, fmt.Errorf("read challenge metadata: %w", err)
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return meta, fmt.Errorf("parse challenge metadata: %w", err)
	}

	reqData, err := os.ReadFile(filepath.Join(challengeDir, "requirements.md"))
	if err == nil {
		meta.Requirements = ParseRequirements(string(reqData))
	}
	return meta, nil
}

var listItemRe = regexp.MustCompile(`^\d+\.\s*`)

// ParseRequirements scans a requirements.md body for the four recognized
// section headers and collects the list items under each. Unknown sections
// are ignored.
func ParseRequirements(content string) types.Requirements {
	var reqs types.Requirements
	var current *[]string

	for _, line := range strings.Split(content, "\n") {
		switch {
		case strings.Contains(line, "## Functional Requirements"):
			current = &reqs.Functional
			continue
		case strings.Contains(line, "## Code Quality Requirements"):
			current = &reqs.CodeQuality
			continue
		case strings.Contains(line, "## Architecture Requirements"):
			current = &reqs.Architecture
			continue
		case strings.Contains(line, "## Best Practice"):
			current = &reqs.BestPractices
			continue
		case strings.HasPrefix(strings.TrimSpace(line), "## "):
			// Unrecognized section: stop collecting until a known header.
			current = nil
			continue
		}

		if current == nil {
			continue
		}
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "-") || strings.HasPrefix(trimmed, "*") || listItemRe.MatchString(trimmed) {
			item := strings.TrimLeft(trimmed, "-* ")
			item = listItemRe.ReplaceAllString(item, "")
			item = strings.TrimSpace(strings.ReplaceAll(item, "✅", ""))
			if item != "" {
				*current = append(*current, item)
			}
		}
	}
	return reqs
}
