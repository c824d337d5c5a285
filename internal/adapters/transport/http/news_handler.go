package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/khattakbelt/community-api/internal/adapters/transport/http/middleware"
	"github.com/khattakbelt/community-api/internal/app/dto"
	"github.com/khattakbelt/community-api/internal/domain/apperrors"
)

func (h *Handler) listNews(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	result, err := h.news.List(c.Request.Context(), page, limit)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) getNews(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.handleError(c, apperrors.ErrNotFound)
		return
	}

	item, err := h.news.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) createNews(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		h.handleError(c, apperrors.ErrInvalidToken)
		return
	}

	var body dto.NewsCreateDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		h.handleError(c, apperrors.NewInvalidArgument(err.Error()))
		return
	}

	item, err := h.news.Create(c.Request.Context(), identity, body)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *Handler) updateNews(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		h.handleError(c, apperrors.ErrInvalidToken)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.handleError(c, apperrors.ErrNotFound)
		return
	}

	var body dto.NewsUpdateDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		h.handleError(c, apperrors.NewInvalidArgument(err.Error()))
		return
	}

	item, err := h.news.Update(c.Request.Context(), identity, id, body)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) deleteNews(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		h.handleError(c, apperrors.ErrInvalidToken)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.handleError(c, apperrors.ErrNotFound)
		return
	}

	if err := h.news.Delete(c.Request.Context(), identity, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "News deleted successfully"})
}
