package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/orgball2608/technews-autopilot/internal/activity"
	"github.com/orgball2608/technews-autopilot/internal/domain"
	"github.com/orgball2608/technews-autopilot/internal/queue"
	queuerepo "github.com/orgball2608/technews-autopilot/internal/repositories/queue"
	"github.com/orgball2608/technews-autopilot/internal/repositories/target"
)

const (
	defaultLimit = 50
	maxLimit     = 500
	maxDays      = 365
)

func limitParam(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil || n <= 0 {
		return defaultLimit
	}
	return min(n, maxLimit)
}

func (s *Server) internalError(c *gin.Context, msg string, err error) {
	s.logger.Error(msg, "path", c.Request.URL.Path, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}

func (s *Server) health(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func (s *Server) listActivity(c *gin.Context) {
	events, err := s.recorder.Recent(c.Request.Context(), limitParam(c))
	if err != nil {
		s.internalError(c, "failed to load activity", err)
		return
	}
	c.JSON(http.StatusOK, mapAll(events, toActivity))
}

func (s *Server) listRecentPosts(c *gin.Context) {
	posts, err := s.posts.GetRecent(c.Request.Context(), limitParam(c))
	if err != nil {
		s.internalError(c, "failed to load posts", err)
		return
	}
	c.JSON(http.StatusOK, mapAll(posts, toPost))
}

func (s *Server) listQueue(c *gin.Context) {
	ctx := c.Request.Context()

	status := domain.QueueStatus(c.Query("status"))
	switch status {
	case "", domain.QueueStatusScheduled, domain.QueueStatusProcessing, domain.QueueStatusPosted, domain.QueueStatusFailed:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
		return
	}

	items, err := s.queueItems.ListRecent(ctx, status, limitParam(c))
	if err != nil {
		s.internalError(c, "failed to load queue", err)
		return
	}
	counts, err := s.queueItems.CountByStatus(ctx)
	if err != nil {
		s.internalError(c, "failed to count queue", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":  mapAll(items, toQueueItem),
		"counts": counts,
	})
}

func (s *Server) requeue(c *gin.Context) {
	item, err := s.queue.Requeue(c.Request.Context(), c.Param("id"))
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, toQueueItem(item))
	case errors.Is(err, queuerepo.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "queue item not found"})
	case errors.Is(err, queue.ErrNotRequeueable), errors.Is(err, queue.ErrRequeueLimit):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		s.internalError(c, "failed to requeue item", err)
	}
}

func (s *Server) listEngagement(c *gin.Context) {
	entries, err := s.engagements.GetRecent(c.Request.Context(), limitParam(c))
	if err != nil {
		s.internalError(c, "failed to load engagement history", err)
		return
	}
	c.JSON(http.StatusOK, mapAll(entries, toEngagement))
}

type inboundCommentRequest struct {
	Platform domain.Platform `json:"platform" binding:"required"`
	Account  string          `json:"account" binding:"required"`
	PostID   string          `json:"postId"`
}

// recordInboundComment logs a comment left on one of our posts so the
// reply sweep can answer it.
func (s *Server) recordInboundComment(c *gin.Context) {
	var req inboundCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.recorder.LogEngagement(c.Request.Context(), domain.EngagementLogEntry{
		Type:          domain.EngagementComment,
		Platform:      req.Platform,
		TargetAccount: strings.TrimPrefix(req.Account, "@"),
		TargetPostID:  req.PostID,
		Success:       true,
	})
	c.Status(http.StatusAccepted)
}

func (s *Server) report(c *gin.Context) {
	days, err := strconv.Atoi(c.Param("days"))
	if err != nil || days <= 0 || days > maxDays {
		c.JSON(http.StatusBadRequest, gin.H{"error": "days must be between 1 and 365"})
		return
	}

	r, err := s.recorder.Report(c.Request.Context(), days)
	if err != nil {
		s.internalError(c, "failed to build report", err)
		return
	}
	c.JSON(http.StatusOK, toReport(r))
}

type emergencyStopRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) activateEmergencyStop(c *gin.Context) {
	var req emergencyStopRequest
	// the body is optional
	_ = c.ShouldBindJSON(&req)
	if req.Reason == "" {
		req.Reason = "Manual emergency stop"
	}
	s.setEmergencyStop(c, true, req.Reason)
}

func (s *Server) deactivateEmergencyStop(c *gin.Context) {
	s.setEmergencyStop(c, false, "")
}

func (s *Server) setEmergencyStop(c *gin.Context, enabled bool, reason string) {
	ctx := c.Request.Context()
	if err := s.settings.SetEmergencyStop(ctx, enabled, reason); err != nil {
		s.internalError(c, "failed to update emergency stop", err)
		return
	}

	event := domain.ActivityEvent{
		Type:        domain.ActivitySystem,
		Title:       "Emergency Stop Deactivated",
		Description: "Automation resumed",
		Metadata:    map[string]any{"source": "api"},
	}
	if enabled {
		event.Title = "Emergency Stop Activated"
		event.Description = reason
	}
	s.recorder.Record(ctx, event)
	s.hub.Broadcast(activity.EventSystem, gin.H{"emergencyStop": enabled, "reason": reason})

	c.JSON(http.StatusOK, gin.H{"emergencyStop": enabled})
}

func (s *Server) getSettings(c *gin.Context) {
	ctx := c.Request.Context()
	c.JSON(http.StatusOK, gin.H{
		"emergencyStop":         s.settings.EmergencyStopped(ctx),
		"autoEngagement":        s.settings.AutoEngagementEnabled(ctx),
		"twitterCharacterLimit": s.settings.TwitterCharacterLimit(ctx),
	})
}

type toggleRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

func (s *Server) setAutoEngagement(c *gin.Context) {
	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.settings.SetAutoEngagement(c.Request.Context(), *req.Enabled); err != nil {
		s.internalError(c, "failed to update auto engagement", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"autoEngagement": *req.Enabled})
}

type accountTypeRequest struct {
	Type string `json:"type" binding:"required,oneof=free premium"`
}

func (s *Server) setTwitterAccountType(c *gin.Context) {
	var req accountTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()
	if err := s.settings.SetTwitterAccountType(ctx, req.Type); err != nil {
		s.internalError(c, "failed to update twitter account type", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"twitterCharacterLimit": s.settings.TwitterCharacterLimit(ctx)})
}

func (s *Server) listTargets(c *gin.Context) {
	targets, err := s.targets.ListActive(c.Request.Context(),
		domain.Platform(c.Param("platform")), domain.EngagementType(c.Param("type")))
	if err != nil {
		s.internalError(c, "failed to load targets", err)
		return
	}
	c.JSON(http.StatusOK, mapAll(targets, toTarget))
}

type targetRequest struct {
	Platform domain.Platform       `json:"platform" binding:"required"`
	Username string                `json:"username" binding:"required"`
	Type     domain.EngagementType `json:"type" binding:"required,oneof=like retweet comment"`
	Niche    string                `json:"niche"`
}

func (s *Server) createTarget(c *gin.Context) {
	var req targetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := s.targets.Create(c.Request.Context(), domain.TargetAccount{
		Platform: req.Platform,
		Username: strings.TrimPrefix(req.Username, "@"),
		Type:     req.Type,
		Niche:    req.Niche,
		IsActive: true,
	})
	if errors.Is(err, target.ErrAlreadyExists) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		s.internalError(c, "failed to create target", err)
		return
	}
	c.JSON(http.StatusCreated, toTarget(created))
}

func (s *Server) deactivateTarget(c *gin.Context) {
	err := s.targets.SetActive(c.Request.Context(), c.Param("id"), false)
	if errors.Is(err, target.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		s.internalError(c, "failed to deactivate target", err)
		return
	}
	c.Status(http.StatusNoContent)
}
