package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/HeemPlayz/arabs-giveaways/internal/models"
	"github.com/HeemPlayz/arabs-giveaways/internal/services"
	"github.com/gin-gonic/gin"
)

// GiveawayHandler handles giveaway-related HTTP requests
type GiveawayHandler struct {
	giveawayService services.GiveawayService
}

// NewGiveawayHandler creates a new GiveawayHandler
func NewGiveawayHandler(giveawayService services.GiveawayService) *GiveawayHandler {
	return &GiveawayHandler{
		giveawayService: giveawayService,
	}
}

// CreateGiveawayRequest is the payload for POST /giveaways
type CreateGiveawayRequest struct {
	GuildID   string `json:"guildId" binding:"required"`
	ChannelID string `json:"channelId" binding:"required"`
	HostedBy  string `json:"hostedBy" binding:"required"`
	Prize     string `json:"prize" binding:"required"`
	Winners   int    `json:"winners" binding:"required"`
	Duration  string `json:"duration" binding:"required"` // Go duration string, e.g. "24h"
}

// CreateGiveaway handles POST /giveaways
func (h *GiveawayHandler) CreateGiveaway(c *gin.Context) {
	var request CreateGiveawayRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	duration, err := time.ParseDuration(request.Duration)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid duration format: " + err.Error()})
		return
	}

	giveaway, err := h.giveawayService.Create(c.Request.Context(), &models.CreateGiveawayOptions{
		GuildID:   request.GuildID,
		ChannelID: request.ChannelID,
		HostedBy:  request.HostedBy,
		Prize:     request.Prize,
		Winners:   request.Winners,
		Duration:  duration,
	})
	if err != nil {
		var validationErr *services.ValidationError
		if errors.As(err, &validationErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create giveaway: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, giveaway)
}

// CompleteGiveaway handles POST /giveaways/:messageId/complete
func (h *GiveawayHandler) CompleteGiveaway(c *gin.Context) {
	result, err := h.giveawayService.Complete(c.Request.Context(), c.Param("messageId"))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Giveaway not found or already ended"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to complete giveaway: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// RerollGiveaway handles POST /giveaways/:messageId/reroll
func (h *GiveawayHandler) RerollGiveaway(c *gin.Context) {
	result, err := h.giveawayService.Reroll(c.Request.Context(), c.Param("messageId"))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Giveaway not found or not ended yet"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reroll giveaway: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetGiveaway handles GET /giveaways/:messageId
func (h *GiveawayHandler) GetGiveaway(c *gin.Context) {
	giveaway, err := h.giveawayService.Fetch(c.Request.Context(), c.Param("messageId"))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Giveaway not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve giveaway: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, giveaway)
}

// ListGiveaways handles GET /guilds/:guildId/giveaways
func (h *GiveawayHandler) ListGiveaways(c *gin.Context) {
	summaries, err := h.giveawayService.List(c.Request.Context(), c.Param("guildId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list giveaways: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, summaries)
}
