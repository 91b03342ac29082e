// internal/handlers/lead/lead_handler.go
package lead

import (
	"net/http"
	"strconv"

	"leadflow-service/internal/domain/lead"
	"leadflow-service/internal/domain/note"
	"leadflow-service/internal/middleware"
	"leadflow-service/internal/pkg/response"
	assignmentUsecase "leadflow-service/internal/service/assignment"
	leadUsecase "leadflow-service/internal/service/lead"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type LeadHandler struct {
	leadService   *leadUsecase.Service
	assignService *assignmentUsecase.Service
	logger        *zap.Logger
}

func NewLeadHandler(leadService *leadUsecase.Service, assignService *assignmentUsecase.Service, logger *zap.Logger) *LeadHandler {
	return &LeadHandler{
		leadService:   leadService,
		assignService: assignService,
		logger:        logger,
	}
}

// Create registers a lead and runs auto-assignment if requested.
func (h *LeadHandler) Create(c *gin.Context) {
	actor := middleware.MustGetActor(c)

	var req lead.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	created, err := h.leadService.Create(c.Request.Context(), actor, &req)
	if err != nil {
		h.logger.Warn("lead creation failed",
			zap.Int64("actor_id", actor.ID),
			zap.Error(err),
		)
		response.FromError(c, "failed to create lead", err)
		return
	}

	response.Success(c, http.StatusCreated, "lead created", created)
}

// List returns leads scoped to the caller's role.
func (h *LeadHandler) List(c *gin.Context) {
	actor := middleware.MustGetActor(c)

	var filters lead.ListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid filters", err)
		return
	}

	leads, err := h.leadService.List(c.Request.Context(), actor, &filters)
	if err != nil {
		response.FromError(c, "failed to list leads", err)
		return
	}

	response.Success(c, http.StatusOK, "leads retrieved", leads)
}

// Get returns a single lead if visible to the caller.
func (h *LeadHandler) Get(c *gin.Context) {
	actor := middleware.MustGetActor(c)

	id, ok := parseLeadID(c)
	if !ok {
		return
	}

	l, err := h.leadService.Get(c.Request.Context(), actor, id)
	if err != nil {
		response.FromError(c, "failed to get lead", err)
		return
	}

	response.Success(c, http.StatusOK, "lead retrieved", l)
}

// Update modifies a lead's details or status.
func (h *LeadHandler) Update(c *gin.Context) {
	actor := middleware.MustGetActor(c)

	id, ok := parseLeadID(c)
	if !ok {
		return
	}

	var req lead.UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	updated, err := h.leadService.Update(c.Request.Context(), actor, id, &req)
	if err != nil {
		response.FromError(c, "failed to update lead", err)
		return
	}

	response.Success(c, http.StatusOK, "lead updated", updated)
}

// AssignManager hands a lead to a specific manager (admin only).
func (h *LeadHandler) AssignManager(c *gin.Context) {
	actor := middleware.MustGetActor(c)

	id, ok := parseLeadID(c)
	if !ok {
		return
	}

	var req lead.ManualAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	l, err := h.assignService.ManualAssignManager(c.Request.Context(), id, req.UserID, req.Reason, actor)
	if err != nil {
		h.logger.Warn("manager assignment failed",
			zap.Int64("lead_id", id),
			zap.Int64("manager_id", req.UserID),
			zap.Error(err),
		)
		response.FromError(c, "failed to assign manager", err)
		return
	}

	response.Success(c, http.StatusOK, "manager assigned", l)
}

// AssignExecutive hands a lead to an executive on the owning manager's team.
func (h *LeadHandler) AssignExecutive(c *gin.Context) {
	actor := middleware.MustGetActor(c)

	id, ok := parseLeadID(c)
	if !ok {
		return
	}

	var req lead.ManualAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	l, err := h.assignService.ManualAssignExecutive(c.Request.Context(), id, req.UserID, req.Reason, actor)
	if err != nil {
		h.logger.Warn("executive assignment failed",
			zap.Int64("lead_id", id),
			zap.Int64("executive_id", req.UserID),
			zap.Error(err),
		)
		response.FromError(c, "failed to assign executive", err)
		return
	}

	response.Success(c, http.StatusOK, "executive assigned", l)
}

// History returns the full assignment trail for a lead.
func (h *LeadHandler) History(c *gin.Context) {
	actor := middleware.MustGetActor(c)

	id, ok := parseLeadID(c)
	if !ok {
		return
	}

	history, err := h.assignService.History(c.Request.Context(), id, actor)
	if err != nil {
		response.FromError(c, "failed to get assignment history", err)
		return
	}

	response.Success(c, http.StatusOK, "assignment history retrieved", history)
}

// AddNote attaches a note to a lead visible to the caller.
func (h *LeadHandler) AddNote(c *gin.Context) {
	actor := middleware.MustGetActor(c)

	id, ok := parseLeadID(c)
	if !ok {
		return
	}

	var req note.CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	created, err := h.leadService.AddNote(c.Request.Context(), actor, id, &req)
	if err != nil {
		response.FromError(c, "failed to add note", err)
		return
	}

	response.Success(c, http.StatusCreated, "note added", created)
}

// ListNotes returns a lead's notes with author names.
func (h *LeadHandler) ListNotes(c *gin.Context) {
	actor := middleware.MustGetActor(c)

	id, ok := parseLeadID(c)
	if !ok {
		return
	}

	notes, err := h.leadService.ListNotes(c.Request.Context(), actor, id)
	if err != nil {
		response.FromError(c, "failed to list notes", err)
		return
	}

	response.Success(c, http.StatusOK, "notes retrieved", notes)
}

func parseLeadID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "invalid lead id", err)
		return 0, false
	}
	return id, true
}
