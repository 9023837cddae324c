package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"blogify/internal/service"
)

// BlogHandler mantiene dependencias para endpoints de blogs y comentarios.
type BlogHandler struct {
	logger *zap.Logger
	blogs  *service.BlogService
}

func NewBlogHandler(logger *zap.Logger, blogs *service.BlogService) *BlogHandler {
	return &BlogHandler{logger: logger, blogs: blogs}
}

// Create maneja POST /blog (multipart: title, body, coverImage).
func (h *BlogHandler) Create(c *gin.Context) {
	user, _ := CurrentUser(c)

	file, ok := openFormFile(c, "coverImage")
	if ok {
		defer file.Close()
	}

	blog, err := h.blogs.Create(c.Request.Context(), user.ID, c.PostForm("title"), c.PostForm("body"), readerOrNil(file, ok))
	if err != nil {
		h.writeBlogError(c, err, "create blog failed")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"blog": blog})
}

// List maneja GET /blog.
func (h *BlogHandler) List(c *gin.Context) {
	blogs, err := h.blogs.List(c.Request.Context())
	if err != nil {
		h.writeBlogError(c, err, "list blogs failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"blogs": blogs})
}

// Search maneja GET /blog/search?query=&page=.
func (h *BlogHandler) Search(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	blogs, totalPages, err := h.blogs.Search(c.Request.Context(), c.Query("query"), page)
	if err != nil {
		h.writeBlogError(c, err, "search blogs failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"blogs": blogs, "total_pages": totalPages})
}

// Get maneja GET /blog/:id.
func (h *BlogHandler) Get(c *gin.Context) {
	blog, comments, err := h.blogs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeBlogError(c, err, "get blog failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"blog": blog, "comments": comments})
}

// Update maneja PUT /blog/:id (multipart: title, body, coverImage).
func (h *BlogHandler) Update(c *gin.Context) {
	file, ok := openFormFile(c, "coverImage")
	if ok {
		defer file.Close()
	}

	blog, err := h.blogs.Update(c.Request.Context(), c.Param("id"), c.PostForm("title"), c.PostForm("body"), readerOrNil(file, ok))
	if err != nil {
		h.writeBlogError(c, err, "update blog failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"blog": blog})
}

// Delete maneja DELETE /blog/:id.
func (h *BlogHandler) Delete(c *gin.Context) {
	if err := h.blogs.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeBlogError(c, err, "delete blog failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Blog deleted"})
}

// ToggleLike maneja POST /blog/:id/like.
func (h *BlogHandler) ToggleLike(c *gin.Context) {
	user, _ := CurrentUser(c)
	liked, count, err := h.blogs.ToggleLike(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		h.writeBlogError(c, err, "like blog failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": liked, "likes_count": count})
}

// AddComment maneja POST /blog/comment/:id (id = blog).
func (h *BlogHandler) AddComment(c *gin.Context) {
	user, _ := CurrentUser(c)

	var req struct {
		Content       string `json:"content" binding:"required"`
		ParentComment string `json:"parent_comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	comment, err := h.blogs.AddComment(c.Request.Context(), c.Param("id"), user.ID, req.Content, req.ParentComment)
	if err != nil {
		h.writeBlogError(c, err, "add comment failed")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}

// UpdateComment maneja PUT /blog/comment/:id.
func (h *BlogHandler) UpdateComment(c *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	comment, err := h.blogs.UpdateComment(c.Request.Context(), c.Param("id"), req.Content)
	if err != nil {
		h.writeBlogError(c, err, "update comment failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"comment": comment})
}

// DeleteComment maneja DELETE /blog/comment/:id.
func (h *BlogHandler) DeleteComment(c *gin.Context) {
	if err := h.blogs.DeleteComment(c.Request.Context(), c.Param("id")); err != nil {
		h.writeBlogError(c, err, "delete comment failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted"})
}

func (h *BlogHandler) writeBlogError(c *gin.Context, err error, logMsg string) {
	switch {
	case errors.Is(err, service.ErrMissingFields):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title and body are required."})
	case errors.Is(err, service.ErrBlogNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Blog not found"})
	case errors.Is(err, service.ErrCommentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
	case errors.Is(err, service.ErrParentNotFound):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Parent comment not found"})
	default:
		h.logger.Error(logMsg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
	}
}
