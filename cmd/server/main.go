package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/time/rate"

	_ "github.com/devpathway/challenge-engine/docs"
	"github.com/devpathway/challenge-engine/internal/cache"
	"github.com/devpathway/challenge-engine/internal/config"
	"github.com/devpathway/challenge-engine/internal/errors"
	"github.com/devpathway/challenge-engine/internal/monitoring"
	"github.com/devpathway/challenge-engine/internal/ratelimit"
	"github.com/devpathway/challenge-engine/internal/review"
	"github.com/devpathway/challenge-engine/internal/types"
)

// reviewRequest is the POST /api/review body. Empty means "review the
// whole pathway"; courseId alone means one course; both fields mean one
// challenge.
type reviewRequest struct {
	CourseID    string `json:"courseId"`
	ChallengeID string `json:"challengeId"`
}

func main() {
	logger := monitoring.NewLogger()
	slog.SetDefault(logger.Logger)

	pathwayRoot := getEnvOrDefault("PATHWAY_ROOT", ".")
	port := getEnvOrDefault("PORT", "3001")

	r := newRouter(config.Layout{Root: pathwayRoot}, logger, monitoring.NewMetrics())

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		slog.Info("Starting dashboard server", "port", port, "pathway_root", pathwayRoot)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited")
}

// newRouter assembles the dashboard API over one pathway checkout.
func newRouter(layout config.Layout, logger *monitoring.Logger, appMetrics *monitoring.Metrics) *gin.Engine {
	engine := review.NewEngine(layout, logger, appMetrics)
	store := engine.Store()

	r := gin.New()
	r.Use(monitoring.MonitoringMiddleware(appMetrics, logger))
	r.Use(errors.ErrorHandler())
	r.Use(errors.RecoveryHandler())
	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{"http://localhost:5173", "http://localhost:5174"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))

	appCache := cache.New(30 * time.Second)
	r.Use(appCache.Middleware(appMetrics))

	// Reviews spawn test runners and browsers; one at a time, and clients
	// get told when a run is already going.
	var reviewMu sync.Mutex
	reviewLimiter := ratelimit.New(rate.Every(30*time.Second), 2)

	r.GET("/health", func(c *gin.Context) {
		fresh, info := store.ProgressFresh()
		health := gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"artifacts": gin.H{"progress": fresh},
			"tools":     toolAvailability(),
		}
		if fresh {
			health["artifacts"] = gin.H{
				"progress":    true,
				"lastWritten": info.ModTime().Format(time.RFC3339),
				"ageSeconds":  int(time.Since(info.ModTime()).Seconds()),
			}
		}
		c.JSON(http.StatusOK, health)
	})

	r.GET("/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, appMetrics.GetStats())
	})

	r.GET("/cache/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, appCache.Stats())
	})

	api := r.Group("/api")

	api.GET("/progress", func(c *gin.Context) {
		progress, err := store.ReadProgress()
		if err != nil {
			c.Error(errors.NewMissingInputError("progress not available yet", "run a review first"))
			return
		}
		c.JSON(http.StatusOK, progress)
	})

	api.GET("/pathway", func(c *gin.Context) {
		summary, err := store.ReadPathwaySummary()
		if err != nil {
			c.Error(errors.NewMissingInputError("pathway summary not available yet", "run a review first"))
			return
		}
		c.JSON(http.StatusOK, summary)
	})

	api.GET("/courses", func(c *gin.Context) {
		pathwayCfg, err := config.LoadPathwayConfig(layout.PathwayConfigPath())
		if err != nil {
			c.Error(errors.NewInternalError("could not load pathway config", err))
			return
		}

		page := parsePositiveInt(c.Query("page"), 1)
		pageSize := parsePositiveInt(c.Query("pageSize"), 10)
		if pageSize > 50 {
			pageSize = 50
		}

		summaries := make([]types.CourseSummary, 0, len(pathwayCfg.Courses))
		for _, ref := range pathwayCfg.Courses {
			summary, err := store.ReadCourseSummary(ref.ID)
			if err != nil {
				// Unreviewed courses still appear, empty.
				summary = types.CourseSummary{
					CourseID:   ref.ID,
					CourseName: ref.Name,
					BadgeLevel: types.BadgeNone,
				}
			}
			summaries = append(summaries, summary)
		}

		total := len(summaries)
		start := (page - 1) * pageSize
		if start > total {
			start = total
		}
		end := start + pageSize
		if end > total {
			end = total
		}

		c.JSON(http.StatusOK, gin.H{
			"courses":  summaries[start:end],
			"page":     page,
			"pageSize": pageSize,
			"total":    total,
		})
	})

	api.GET("/courses/:id", func(c *gin.Context) {
		courseID := c.Param("id")
		summary, err := store.ReadCourseSummary(courseID)
		if err != nil {
			c.Error(errors.NewMissingInputError("course has no results yet", "run a review for "+courseID))
			return
		}
		feedback, _ := store.ReadAIFeedback(courseID)
		c.JSON(http.StatusOK, gin.H{
			"summary":    summary,
			"aiFeedback": feedback,
		})
	})

	api.GET("/courses/:id/challenges", func(c *gin.Context) {
		courseID := c.Param("id")
		cfg, err := config.LoadCourseConfig(layout.CourseConfigPath(courseID))
		if err != nil {
			c.Error(errors.NewMissingInputError("course not found: "+courseID, ""))
			return
		}

		page := parsePositiveInt(c.Query("page"), 1)
		pageSize := parsePositiveInt(c.Query("pageSize"), 50)
		if pageSize > 200 {
			pageSize = 200
		}

		total := len(cfg.Challenges)
		start := (page - 1) * pageSize
		if start > total {
			start = total
		}
		end := start + pageSize
		if end > total {
			end = total
		}

		var courseProgress types.CourseProgress
		if progress, err := store.ReadProgress(); err == nil {
			courseProgress = progress.Courses[courseID]
		}

		entries := make([]gin.H, 0, end-start)
		for _, ref := range cfg.Challenges[start:end] {
			entry := gin.H{"id": ref.ID, "name": ref.Name}
			if ch, ok := courseProgress.Challenges[ref.ID]; ok {
				entry["passed"] = ch.Passed
				entry["score"] = ch.Score
				entry["lastRun"] = ch.LastRun
			}
			if meta, err := config.LoadChallengeMetadata(layout.ChallengeDir(courseID, ref.ID)); err == nil && len(meta.Skills) > 0 {
				entry["skills"] = meta.Skills
			}
			entries = append(entries, entry)
		}

		c.JSON(http.StatusOK, gin.H{
			"challenges": entries,
			"page":       page,
			"pageSize":   pageSize,
			"total":      total,
		})
	})

	api.GET("/courses/:id/challenges/:challengeId", func(c *gin.Context) {
		courseID := c.Param("id")
		challengeID := c.Param("challengeId")

		cfg, err := config.LoadCourseConfig(layout.CourseConfigPath(courseID))
		if err != nil {
			c.Error(errors.NewMissingInputError("course not found: "+courseID, ""))
			return
		}
		var ref *config.ChallengeRef
		for i := range cfg.Challenges {
			if cfg.Challenges[i].ID == challengeID {
				ref = &cfg.Challenges[i]
				break
			}
		}
		if ref == nil {
			c.Error(errors.NewMissingInputError("challenge not found: "+challengeID, ""))
			return
		}

		detail := gin.H{
			"challengeId":  ref.ID,
			"name":         ref.Name,
			"instructions": "",
		}
		challengeDir := layout.ChallengeDir(courseID, challengeID)
		if meta, err := config.LoadChallengeMetadata(challengeDir); err == nil {
			detail["metadata"] = meta
			detail["skills"] = meta.Skills
		}
		if readme, err := os.ReadFile(filepath.Join(challengeDir, "README.md")); err == nil {
			detail["instructions"] = string(readme)
		}
		if results, err := store.ReadChallengeResults(courseID); err == nil {
			for _, result := range results {
				if result.ChallengeID == challengeID {
					detail["result"] = result
					break
				}
			}
		}
		if feedback, err := store.ReadAIFeedback(courseID); err == nil {
			for _, entry := range feedback {
				if entry.ChallengeID == challengeID {
					detail["aiFeedback"] = entry.AIReview
					break
				}
			}
		}
		c.JSON(http.StatusOK, detail)
	})

	api.POST("/review", reviewLimiter.Middleware(), func(c *gin.Context) {
		var req reviewRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.Error(errors.NewValidationError("invalid review request body"))
				return
			}
		}
		if req.ChallengeID != "" && req.CourseID == "" {
			c.Error(errors.NewValidationError("challengeId requires courseId"))
			return
		}

		if !reviewMu.TryLock() {
			c.JSON(http.StatusConflict, gin.H{"error": "a review run is already in progress"})
			return
		}
		defer reviewMu.Unlock()

		ctx := c.Request.Context()
		if req.CourseID != "" {
			summary, _, err := engine.ReviewCourse(ctx, req.CourseID, req.ChallengeID)
			if err != nil {
				c.Error(errors.NewPipelineError("course review failed", err))
				return
			}
			if _, err := engine.RefreshAggregates(); err != nil {
				c.Error(errors.NewPipelineError("aggregate refresh failed", err))
				return
			}
			appCache.Clear()
			c.JSON(http.StatusOK, summary)
			return
		}

		pathway, err := engine.ReviewPathway(ctx)
		if err != nil {
			c.Error(errors.NewPipelineError("pathway review failed", err))
			return
		}
		appCache.Clear()
		c.JSON(http.StatusOK, pathway)
	})

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// toolAvailability probes PATH for the external runners the pipeline
// shells out to. The dashboard surfaces this so a broken environment is
// visible before anyone triggers a review.
func toolAvailability() gin.H {
	tools := gin.H{}
	for _, tool := range []string{"node", "npm", "npx"} {
		_, err := exec.LookPath(tool)
		tools[tool] = err == nil
	}
	return tools
}

func getEnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parsePositiveInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
