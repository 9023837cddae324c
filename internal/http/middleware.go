package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"blogify/internal/domain"
	"blogify/internal/repository"
	"blogify/internal/token"
)

const authUserKey = "auth_user"

// TokenCookieName es la cookie que transporta el session token.
const TokenCookieName = "token"

// ResolveIdentity lee la cookie de sesión y, si el token es válido,
// adjunta el usuario al contexto. Credencial ausente, inválida o de un
// usuario ya borrado degrada a request anónimo, nunca corta.
func ResolveIdentity(logger *zap.Logger, tokens *token.Service, users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(TokenCookieName)
		if err != nil || cookie == "" {
			c.Next()
			return
		}

		userID, err := tokens.Validate(cookie)
		if err != nil {
			if logger != nil {
				logger.Debug("stale session cookie", zap.Error(err))
			}
			c.Next()
			return
		}

		user, err := users.GetByID(c.Request.Context(), userID)
		if err != nil {
			if logger != nil && !errors.Is(err, pgx.ErrNoRows) {
				logger.Warn("identity lookup failed", zap.Error(err), zap.String("user_id", userID))
			}
			c.Next()
			return
		}

		c.Set(authUserKey, user)
		c.Next()
	}
}

// CurrentUser obtiene el usuario resuelto desde el contexto.
func CurrentUser(c *gin.Context) (domain.User, bool) {
	val, ok := c.Get(authUserKey)
	if !ok {
		return domain.User{}, false
	}
	user, ok := val.(domain.User)
	return user, ok
}

// RequireAuth corta con 401 los requests anónimos.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required."})
			return
		}
		c.Next()
	}
}

// RequireRole exige que el rol del usuario esté en el conjunto permitido.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required."})
			return
		}
		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied: insufficient permissions."})
	}
}

// RequireSelf exige que el id del path sea el del usuario autenticado.
func RequireSelf(paramName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required."})
			return
		}
		if c.Param(paramName) != user.ID {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied: not your resource."})
			return
		}
		c.Next()
	}
}

// RequireBlogOwnerOrAdmin permite al dueño del blog o a un ADMIN.
func RequireBlogOwnerOrAdmin(blogs repository.BlogRepository, paramName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required."})
			return
		}

		blog, err := blogs.GetByID(c.Request.Context(), c.Param(paramName))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Blog not found."})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load blog."})
			return
		}

		if blog.CreatedBy != user.ID && !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied: not blog owner or admin."})
			return
		}
		c.Next()
	}
}

// RequireCommentOwnerOrAdmin permite al autor del comentario o a un ADMIN.
func RequireCommentOwnerOrAdmin(comments repository.CommentRepository, paramName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required."})
			return
		}

		comment, err := comments.GetByID(c.Request.Context(), c.Param(paramName))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Comment not found."})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load comment."})
			return
		}

		if comment.CreatedBy != user.ID && !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied: not comment owner or admin."})
			return
		}
		c.Next()
	}
}

// RejectIfAuthenticated corta con 400 a quien ya tiene sesión iniciada.
func RejectIfAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); ok {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Already logged in."})
			return
		}
		c.Next()
	}
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// corsMiddleware habilita el origin del frontend con credenciales.
func corsMiddleware(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
