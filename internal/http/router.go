package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"blogify/internal/domain"
	"blogify/internal/repository"
	"blogify/internal/token"
)

// RouterDeps agrupa lo que necesita el router para armar la cadena de guards.
type RouterDeps struct {
	Logger        *zap.Logger
	Tokens        *token.Service
	Users         repository.UserRepository
	Blogs         repository.BlogRepository
	Comments      repository.CommentRepository
	CORSOrigin    string
	UserH         *UserHandler
	BlogH         *BlogHandler
	NotificationH *NotificationHandler
	AdminH        *AdminHandler
}

// NewRouter configura el router de Gin con middlewares y rutas.
// ResolveIdentity corre global; los guards por ruta van en orden
// declarado y el primero que falla corta el request.
func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	r.Use(
		zapLoggerMiddleware(deps.Logger),
		gin.Recovery(),
		corsMiddleware(deps.CORSOrigin),
		ResolveIdentity(deps.Logger, deps.Tokens, deps.Users),
	)

	user := r.Group("/user")
	user.POST("/signup", RejectIfAuthenticated(), deps.UserH.Signup)
	user.POST("/verify-otp", RejectIfAuthenticated(), deps.UserH.VerifyOTP)
	user.POST("/resend-otp", RejectIfAuthenticated(), deps.UserH.ResendOTP)
	user.POST("/login", RejectIfAuthenticated(), deps.UserH.Login)
	user.POST("/google-login", RejectIfAuthenticated(), deps.UserH.GoogleLogin)
	user.POST("/logout", deps.UserH.Logout)
	user.GET("/me", deps.UserH.Me)
	user.GET("/public/:username", deps.UserH.PublicProfile)
	user.GET("/profile/:id", RequireSelf("id"), deps.UserH.Profile)
	user.PUT("/profile/:id", RequireSelf("id"), deps.UserH.UpdateProfile)
	user.DELETE("/profile/:id", RequireSelf("id"), deps.UserH.DeleteProfile)
	user.POST("/save/:blogId", RequireAuth(), deps.UserH.ToggleSave)

	blog := r.Group("/blog")
	blog.GET("", deps.BlogH.List)
	blog.GET("/search", deps.BlogH.Search)
	blog.POST("", RequireAuth(), deps.BlogH.Create)
	blog.GET("/:id", deps.BlogH.Get)
	blog.PUT("/:id", RequireBlogOwnerOrAdmin(deps.Blogs, "id"), deps.BlogH.Update)
	blog.DELETE("/:id", RequireBlogOwnerOrAdmin(deps.Blogs, "id"), deps.BlogH.Delete)
	blog.POST("/:id/like", RequireAuth(), deps.BlogH.ToggleLike)
	blog.POST("/comment/:id", RequireAuth(), deps.BlogH.AddComment)
	blog.PUT("/comment/:id", RequireCommentOwnerOrAdmin(deps.Comments, "id"), deps.BlogH.UpdateComment)
	blog.DELETE("/comment/:id", RequireCommentOwnerOrAdmin(deps.Comments, "id"), deps.BlogH.DeleteComment)

	notification := r.Group("/notification")
	notification.GET("", RequireAuth(), deps.NotificationH.List)
	notification.PUT("/:id/read", RequireAuth(), deps.NotificationH.MarkRead)

	admin := r.Group("/admin")
	admin.GET("", RequireRole(domain.RoleAdmin), deps.AdminH.Dashboard)

	return r
}
