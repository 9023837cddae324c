package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"blogify/internal/repository"
)

// AdminHandler sirve el dashboard de moderación.
type AdminHandler struct {
	logger   *zap.Logger
	users    repository.UserRepository
	blogs    repository.BlogRepository
	comments repository.CommentRepository
}

func NewAdminHandler(logger *zap.Logger, users repository.UserRepository, blogs repository.BlogRepository, comments repository.CommentRepository) *AdminHandler {
	return &AdminHandler{
		logger:   logger,
		users:    users,
		blogs:    blogs,
		comments: comments,
	}
}

// Dashboard maneja GET /admin.
func (h *AdminHandler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()

	users, err := h.users.ListAll(ctx)
	if err != nil {
		h.logger.Error("admin list users failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch admin dashboard data"})
		return
	}
	blogs, err := h.blogs.ListAll(ctx)
	if err != nil {
		h.logger.Error("admin list blogs failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch admin dashboard data"})
		return
	}
	comments, err := h.comments.ListAll(ctx)
	if err != nil {
		h.logger.Error("admin list comments failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch admin dashboard data"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users":    users,
		"blogs":    blogs,
		"comments": comments,
	})
}
