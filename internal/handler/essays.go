package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inkwell/backend/internal/model"
	"github.com/inkwell/backend/internal/service"
)

type EssayHandler struct {
	svc    *service.EssayService
	logger *slog.Logger
}

func NewEssayHandler(svc *service.EssayService, logger *slog.Logger) *EssayHandler {
	return &EssayHandler{svc: svc, logger: logger}
}

// ListMine godoc
// @Summary List the caller's essays
// @Description All statuses, most recently updated first.
// @Tags essays
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.EssayListResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/essays [get]
func (h *EssayHandler) ListMine(c *gin.Context) {
	user := GetAuthUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	essays, err := h.svc.ListMine(c.Request.Context(), user.ID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.EssayListResponse{Essays: essays})
}

// ListPublic godoc
// @Summary List published essays
// @Description Published essays from all accounts with author names.
// @Tags essays
// @Produce json
// @Success 200 {object} model.EssayListResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/essays/public [get]
func (h *EssayHandler) ListPublic(c *gin.Context) {
	essays, err := h.svc.ListPublic(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.EssayListResponse{Essays: essays})
}

// Get godoc
// @Summary Get an essay
// @Description Published essays are public; drafts are visible to their owner only.
// @Tags essays
// @Produce json
// @Param id path string true "Essay ID"
// @Success 200 {object} model.EssayResponse
// @Failure 404 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/essays/{id} [get]
func (h *EssayHandler) Get(c *gin.Context) {
	essay, err := h.svc.Get(c.Request.Context(), c.Param("id"), GetAuthUser(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.EssayResponse{Essay: *essay})
}

// Create godoc
// @Summary Create a draft essay
// @Tags essays
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.CreateEssayRequest true "Title and content"
// @Success 201 {object} model.EssayResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/essays [post]
func (h *EssayHandler) Create(c *gin.Context) {
	user := GetAuthUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req model.CreateEssayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	essay, err := h.svc.Create(c.Request.Context(), user.ID, req.Title, req.Content)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, model.EssayResponse{Essay: *essay})
}

// Update godoc
// @Summary Update an essay
// @Description Partial update of title and/or content, owner only.
// @Tags essays
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Essay ID"
// @Param request body model.UpdateEssayRequest true "Fields to update"
// @Success 200 {object} model.EssayResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 403 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/essays/{id} [put]
func (h *EssayHandler) Update(c *gin.Context) {
	user := GetAuthUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req model.UpdateEssayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	essay, err := h.svc.Update(c.Request.Context(), c.Param("id"), user.ID, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.EssayResponse{Essay: *essay})
}

// Publish godoc
// @Summary Publish an essay
// @Tags essays
// @Produce json
// @Security BearerAuth
// @Param id path string true "Essay ID"
// @Success 200 {object} model.EssayResponse
// @Failure 403 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/essays/{id}/publish [put]
func (h *EssayHandler) Publish(c *gin.Context) {
	h.setStatus(c, h.svc.Publish)
}

// Unpublish godoc
// @Summary Unpublish an essay
// @Tags essays
// @Produce json
// @Security BearerAuth
// @Param id path string true "Essay ID"
// @Success 200 {object} model.EssayResponse
// @Failure 403 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/essays/{id}/unpublish [put]
func (h *EssayHandler) Unpublish(c *gin.Context) {
	h.setStatus(c, h.svc.Unpublish)
}

// Delete godoc
// @Summary Delete an essay
// @Tags essays
// @Produce json
// @Security BearerAuth
// @Param id path string true "Essay ID"
// @Success 200 {object} map[string]string
// @Failure 403 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/essays/{id} [delete]
func (h *EssayHandler) Delete(c *gin.Context) {
	user := GetAuthUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), user.ID); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *EssayHandler) setStatus(c *gin.Context, op func(ctx context.Context, id string, ownerID int64) (*model.Essay, error)) {
	user := GetAuthUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	essay, err := op(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.EssayResponse{Essay: *essay})
}

func (h *EssayHandler) writeError(c *gin.Context, err error) {
	switch err {
	case service.ErrEmptyTitle, service.ErrTitleTooLong, service.ErrContentTooLong:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case service.ErrForbidden:
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case service.ErrNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		// Internal detail stays in the server log.
		h.logger.Error("essay operation failed",
			"request_id", c.GetString(requestIDKey),
			"path", c.Request.URL.Path,
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
	}
}
