package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/devpathway/challenge-engine/internal/config"
	"github.com/devpathway/challenge-engine/internal/monitoring"
	"github.com/devpathway/challenge-engine/internal/review"
	"github.com/devpathway/challenge-engine/internal/types"
)

func main() {
	root := flag.String("root", ".", "pathway checkout root")
	courseID := flag.String("course", "", "review a single course")
	challengeID := flag.String("challenge", "", "review a single challenge (requires -course)")
	flag.Parse()

	logger := monitoring.NewLogger()
	slog.SetDefault(logger.Logger)

	if *challengeID != "" && *courseID == "" {
		fmt.Fprintln(os.Stderr, "-challenge requires -course")
		os.Exit(2)
	}

	layout := config.Layout{Root: *root}
	engine := review.NewEngine(layout, logger, monitoring.NewMetrics())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *courseID != "" {
		summary, results, err := engine.ReviewCourse(ctx, *courseID, *challengeID)
		if err != nil {
			slog.Error("Course review failed", "course", *courseID, "error", err.Error())
			os.Exit(1)
		}
		if _, err := engine.RefreshAggregates(); err != nil {
			slog.Error("Aggregate refresh failed", "error", err.Error())
			os.Exit(1)
		}
		printCourse(summary, results)
		return
	}

	pathway, err := engine.ReviewPathway(ctx)
	if err != nil {
		slog.Error("Pathway review failed", "error", err.Error())
		os.Exit(1)
	}
	printPathway(pathway)
}

func printCourse(summary types.CourseSummary, results []types.ChallengeResult) {
	fmt.Printf("\n%s — %.1f avg, %.1f%% complete, badge: %s\n",
		summary.CourseName, summary.AverageScore, summary.CompletionPercentage, summary.BadgeLevel)
	for _, r := range results {
		status := "FAIL"
		if r.Passed {
			status = "PASS"
		}
		fmt.Printf("  [%s] %-40s %.1f\n", status, r.ChallengeName, r.TotalScore)
		for _, e := range r.Errors {
			fmt.Printf("         ! %s\n", e)
		}
	}
}

func printPathway(pathway types.PathwaySummary) {
	fmt.Printf("\n%s (v%s) — %.1f overall, %.1f%% complete, badge: %s\n",
		pathway.PathwayName, pathway.Version, pathway.OverallScore,
		pathway.CompletionPercentage, pathway.BadgeLevel)
	for _, course := range pathway.Courses {
		fmt.Printf("  %-40s %.1f (%d/%d challenges, %s)\n",
			course.CourseName, course.Score, course.CompletedChallenges,
			course.TotalChallenges, course.BadgeLevel)
	}
	if pathway.Insights != nil {
		fmt.Printf("\n  Reviewed by AI: %d challenges\n", pathway.Insights.ReviewedCount)
		for _, s := range pathway.Insights.TopStrengths {
			fmt.Printf("  + %s\n", s)
		}
		for _, s := range pathway.Insights.TopImprovements {
			fmt.Printf("  - %s\n", s)
		}
	}
}
