package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/selvester69/notifications/internal/domain"
	"github.com/selvester69/notifications/internal/dto"
	"github.com/selvester69/notifications/internal/service"
	"github.com/selvester69/notifications/internal/store"
)

type Handler struct {
	notifications service.NotificationServicer
	templates     store.TemplateStore
	preferences   store.PreferenceStore
	router        *gin.Engine
	log           *zap.Logger
}

func NewHandler(notifications service.NotificationServicer, templates store.TemplateStore, preferences store.PreferenceStore, log *zap.Logger) *Handler {
	h := &Handler{
		notifications: notifications,
		templates:     templates,
		preferences:   preferences,
		router:        gin.Default(),
		log:           log,
	}

	h.registerRoutes()

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.router.GET("/health", h.healthCheck)

	h.router.POST("/notifications/trigger", h.triggerNotification)
	h.router.GET("/notifications/:user_id", h.listDeliveries)

	h.router.POST("/templates", h.createTemplate)
	h.router.GET("/templates/search", h.searchTemplate)
	h.router.GET("/templates/:id", h.getTemplate)
	h.router.PUT("/templates/:id", h.updateTemplate)
	h.router.DELETE("/templates/:id", h.deleteTemplate)

	h.router.PUT("/preferences", h.setPreference)
	h.router.POST("/preferences/bulk", h.setPreferencesBulk)
	h.router.GET("/preferences", h.listPreferences)
}

// healthCheck handles GET /health
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// triggerNotification handles POST /notifications/trigger. The event is
// accepted and queued; delivery happens asynchronously in the worker.
func (h *Handler) triggerNotification(c *gin.Context) {
	var req dto.TriggerNotificationRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid trigger request",
			zap.Error(err),
			zap.String("event_type", req.EventType))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	eventID, err := h.notifications.TriggerNotification(c.Request.Context(), &req)
	if err != nil {
		h.log.Error("Failed to queue notification",
			zap.Error(err),
			zap.String("event_type", req.EventType),
			zap.String("user_id", req.UserID))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	h.log.Info("Notification accepted",
		zap.String("event_id", eventID),
		zap.String("event_type", req.EventType))

	c.JSON(http.StatusAccepted, dto.TriggerNotificationResponse{
		EventID: eventID,
		Status:  "accepted",
	})
}

// listDeliveries handles GET /notifications/:user_id
func (h *Handler) listDeliveries(c *gin.Context) {
	userID := c.Param("user_id")

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 1000 {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error:   "validation_error",
				Message: "limit must be an integer between 1 and 1000",
			})
			return
		}
		limit = parsed
	}

	deliveries, err := h.notifications.ListDeliveries(c.Request.Context(), userID, limit)
	if err != nil {
		h.log.Error("Failed to list deliveries",
			zap.Error(err),
			zap.String("user_id", userID))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":    userID,
		"deliveries": deliveries,
	})
}

// createTemplate handles POST /templates
func (h *Handler) createTemplate(c *gin.Context) {
	var req dto.CreateTemplateRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	channel, ok := parseChannel(req.Channel)
	if !ok {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: "unknown channel: " + req.Channel,
		})
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	template := &domain.Template{
		Name:     req.Name,
		Channel:  channel,
		Language: req.Language,
		Subject:  req.Subject,
		Body:     req.Body,
		Active:   active,
	}

	if err := h.templates.Create(c.Request.Context(), template); err != nil {
		h.log.Error("Failed to create template",
			zap.Error(err),
			zap.String("name", req.Name))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, templateResponse(template))
}

// getTemplate handles GET /templates/:id
func (h *Handler) getTemplate(c *gin.Context) {
	id := c.Param("id")

	template, err := h.templates.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{
				Error:   "not_found",
				Message: "template not found",
			})
			return
		}
		h.log.Error("Failed to get template",
			zap.Error(err),
			zap.String("id", id))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, templateResponse(template))
}

// searchTemplate handles GET /templates/search. Only active templates
// are returned, matching what the dispatch path resolves.
func (h *Handler) searchTemplate(c *gin.Context) {
	name := c.Query("name")
	language := c.Query("language")
	channel, ok := parseChannel(c.Query("channel"))
	if name == "" || language == "" || !ok {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: "name, channel and language query parameters are required",
		})
		return
	}

	template, err := h.templates.Lookup(c.Request.Context(), name, channel, language)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{
				Error:   "not_found",
				Message: "template not found",
			})
			return
		}
		h.log.Error("Failed to search template",
			zap.Error(err),
			zap.String("name", name))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, templateResponse(template))
}

// updateTemplate handles PUT /templates/:id
func (h *Handler) updateTemplate(c *gin.Context) {
	id := c.Param("id")

	var req dto.CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	channel, ok := parseChannel(req.Channel)
	if !ok {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: "unknown channel: " + req.Channel,
		})
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	template := &domain.Template{
		ID:       id,
		Name:     req.Name,
		Channel:  channel,
		Language: req.Language,
		Subject:  req.Subject,
		Body:     req.Body,
		Active:   active,
	}

	if err := h.templates.Update(c.Request.Context(), template); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{
				Error:   "not_found",
				Message: "template not found",
			})
			return
		}
		h.log.Error("Failed to update template",
			zap.Error(err),
			zap.String("id", id))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, templateResponse(template))
}

// deleteTemplate handles DELETE /templates/:id
func (h *Handler) deleteTemplate(c *gin.Context) {
	id := c.Param("id")

	if err := h.templates.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{
				Error:   "not_found",
				Message: "template not found",
			})
			return
		}
		h.log.Error("Failed to delete template",
			zap.Error(err),
			zap.String("id", id))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	c.Status(http.StatusNoContent)
}

// setPreference handles PUT /preferences
func (h *Handler) setPreference(c *gin.Context) {
	var req dto.SetPreferenceRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	preference, clientErr := preferenceFromRequest(&req)
	if clientErr != "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: clientErr,
		})
		return
	}

	if err := h.preferences.Set(c.Request.Context(), preference); err != nil {
		h.log.Error("Failed to set preference",
			zap.Error(err),
			zap.String("user_id", req.UserID))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, preferenceResponse(preference))
}

// setPreferencesBulk handles POST /preferences/bulk
func (h *Handler) setPreferencesBulk(c *gin.Context) {
	var req dto.BulkPreferencesRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	preferences := make([]*domain.Preference, 0, len(req.Preferences))
	for i := range req.Preferences {
		preference, clientErr := preferenceFromRequest(&req.Preferences[i])
		if clientErr != "" {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error:   "validation_error",
				Message: clientErr,
			})
			return
		}
		preferences = append(preferences, preference)
	}

	if err := h.preferences.SetBulk(c.Request.Context(), preferences); err != nil {
		h.log.Error("Failed to set preferences in bulk",
			zap.Error(err),
			zap.Int("count", len(preferences)))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"updated": len(preferences),
	})
}

// listPreferences handles GET /preferences?user_id=&category=
func (h *Handler) listPreferences(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: "user_id query parameter is required",
		})
		return
	}

	var preferences []*domain.Preference
	var err error
	if raw := c.Query("category"); raw != "" {
		category, ok := parseCategory(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error:   "validation_error",
				Message: "unknown category: " + raw,
			})
			return
		}
		preferences, err = h.preferences.ListByCategory(c.Request.Context(), userID, category)
	} else {
		preferences, err = h.preferences.List(c.Request.Context(), userID)
	}
	if err != nil {
		h.log.Error("Failed to list preferences",
			zap.Error(err),
			zap.String("user_id", userID))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	responses := make([]dto.PreferenceResponse, 0, len(preferences))
	for _, preference := range preferences {
		responses = append(responses, *preferenceResponse(preference))
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":     userID,
		"preferences": responses,
	})
}

func parseChannel(raw string) (domain.Channel, bool) {
	switch domain.Channel(raw) {
	case domain.ChannelEmail, domain.ChannelSMS, domain.ChannelPush, domain.ChannelSlack:
		return domain.Channel(raw), true
	}
	return "", false
}

func parseCategory(raw string) (domain.Category, bool) {
	switch domain.Category(raw) {
	case domain.CategoryOrder, domain.CategoryUserEvent, domain.CategoryMarketing:
		return domain.Category(raw), true
	}
	return "", false
}

func preferenceFromRequest(req *dto.SetPreferenceRequest) (*domain.Preference, string) {
	channel, ok := parseChannel(req.Channel)
	if !ok {
		return nil, "unknown channel: " + req.Channel
	}
	category, ok := parseCategory(req.Category)
	if !ok {
		return nil, "unknown category: " + req.Category
	}
	return &domain.Preference{
		UserID:   req.UserID,
		Category: category,
		Channel:  channel,
		Enabled:  req.Enabled,
	}, ""
}

func templateResponse(template *domain.Template) *dto.TemplateResponse {
	return &dto.TemplateResponse{
		ID:        template.ID,
		Name:      template.Name,
		Channel:   string(template.Channel),
		Language:  template.Language,
		Subject:   template.Subject,
		Body:      template.Body,
		Active:    template.Active,
		CreatedAt: template.CreatedAt,
		UpdatedAt: template.UpdatedAt,
	}
}

func preferenceResponse(preference *domain.Preference) *dto.PreferenceResponse {
	return &dto.PreferenceResponse{
		UserID:    preference.UserID,
		Category:  string(preference.Category),
		Channel:   string(preference.Channel),
		Enabled:   preference.Enabled,
		UpdatedAt: preference.UpdatedAt,
	}
}
