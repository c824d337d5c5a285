package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/khattakbelt/community-api/internal/adapters/transport/http/middleware"
	authsvc "github.com/khattakbelt/community-api/internal/app/auth"
	"github.com/khattakbelt/community-api/internal/app/dto"
	newssvc "github.com/khattakbelt/community-api/internal/app/news"
	"github.com/khattakbelt/community-api/internal/domain/apperrors"
	"github.com/khattakbelt/community-api/internal/domain/model"
)

type Handler struct {
	auth authsvc.Service
	news newssvc.Service
	log  *zap.Logger

	cookieDomain  string
	secureCookies bool
	exposeErrors  bool
}

func NewHandler(auth authsvc.Service, news newssvc.Service, log *zap.Logger, cookieDomain string, secureCookies, exposeErrors bool) *Handler {
	return &Handler{
		auth:          auth,
		news:          news,
		log:           log,
		cookieDomain:  cookieDomain,
		secureCookies: secureCookies,
		exposeErrors:  exposeErrors,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	guard := middleware.RequireAuth(h.auth)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().Unix()})
	})

	api := r.Group("/api")
	api.GET("", h.welcome)

	authGroup := api.Group("/auth")
	authGroup.POST("/register", h.register)
	authGroup.POST("/login", h.login)
	authGroup.GET("/me", guard, h.me)
	authGroup.POST("/logout", guard, h.logout)
	authGroup.PUT("/updatedetails", guard, h.updateDetails)

	users := api.Group("/users", guard)
	users.PUT("/profile", h.updateProfile)
	users.PUT("/profile-picture", h.updateProfilePicture)
	users.DELETE("", h.deleteAccount)

	news := api.Group("/news")
	news.GET("", h.listNews)
	news.GET("/:id", h.getNews)
	news.POST("", guard, h.createNews)
	news.PUT("/:id", guard, h.updateNews)
	news.DELETE("/:id", guard, h.deleteNews)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"success":      false,
			"message":      "endpoint not found",
			"requestedUrl": c.Request.URL.Path,
		})
	})
}

func (h *Handler) welcome(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Welcome to Khattak Belt API",
		"version": "1.0.0",
		"endpoints": gin.H{
			"register": "POST /api/auth/register",
			"login":    "POST /api/auth/login",
		},
	})
}

func (h *Handler) register(c *gin.Context) {
	var body dto.RegisterDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		h.handleError(c, apperrors.NewInvalidArgument(err.Error()))
		return
	}

	session, err := h.auth.Register(c.Request.Context(), body)
	if err != nil {
		h.handleError(c, err)
		return
	}

	h.setTokenCookie(c, session)
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Registration successful",
		"user":    toUserResponse(session.User),
		"token":   session.Token,
	})
}

func (h *Handler) login(c *gin.Context) {
	var body dto.LoginDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		h.handleError(c, apperrors.NewInvalidArgument(err.Error()))
		return
	}

	session, err := h.auth.Login(c.Request.Context(), body)
	if err != nil {
		h.handleError(c, err)
		return
	}

	h.setTokenCookie(c, session)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Login successful",
		"user":    toUserResponse(session.User),
		"token":   session.Token,
	})
}

func (h *Handler) me(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		h.handleError(c, apperrors.ErrInvalidToken)
		return
	}

	user, err := h.auth.GetProfile(c.Request.Context(), identity.ID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

func (h *Handler) logout(c *gin.Context) {
	h.clearTokenCookie(c)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out successfully"})
}

func (h *Handler) updateDetails(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		h.handleError(c, apperrors.ErrInvalidToken)
		return
	}

	var body dto.UpdateDetailsDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		h.handleError(c, apperrors.NewInvalidArgument(err.Error()))
		return
	}

	user, err := h.auth.UpdateDetails(c.Request.Context(), identity.ID, body)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Profile updated", "user": user})
}

func (h *Handler) updateProfile(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		h.handleError(c, apperrors.ErrInvalidToken)
		return
	}

	var body dto.UpdateProfileDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		h.handleError(c, apperrors.NewInvalidArgument(err.Error()))
		return
	}

	user, err := h.auth.UpdateProfile(c.Request.Context(), identity.ID, body)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Profile updated successfully", "user": user})
}

func (h *Handler) updateProfilePicture(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		h.handleError(c, apperrors.ErrInvalidToken)
		return
	}

	var body dto.ProfilePictureDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		h.handleError(c, apperrors.NewInvalidArgument(err.Error()))
		return
	}

	user, err := h.auth.UpdateProfilePicture(c.Request.Context(), identity.ID, body)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Profile picture updated successfully",
		"profilePic": user.ProfilePic,
	})
}

func (h *Handler) deleteAccount(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		h.handleError(c, apperrors.ErrInvalidToken)
		return
	}

	if err := h.auth.DeleteAccount(c.Request.Context(), identity.ID); err != nil {
		h.handleError(c, err)
		return
	}

	h.clearTokenCookie(c)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Account deleted successfully"})
}

func (h *Handler) setTokenCookie(c *gin.Context, session model.Session) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		"token",
		session.Token,
		int(time.Until(session.ExpiresAt).Seconds()),
		"/",
		h.cookieDomain,
		h.secureCookies,
		true, // httpOnly
	)
}

func (h *Handler) clearTokenCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("token", "", -1, "/", h.cookieDomain, h.secureCookies, true)
}

func toUserResponse(u model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:         u.ID.String(),
		Username:   u.Username,
		Email:      u.Email,
		ProfilePic: u.ProfilePic,
		Role:       string(u.Role),
	}
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case apperrors.IsInvalidArgument(err):
		var ve *apperrors.ValidationError
		if errors.As(err, &ve) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Validation failed",
				"errors":  ve.Violations,
			})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})

	case apperrors.IsAlreadyExists(err):
		var conflict *apperrors.ConflictError
		if errors.As(err, &conflict) {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"message": conflict.Error(),
				"errors": []apperrors.FieldViolation{
					{Field: conflict.Field, Message: conflict.Error()},
				},
			})
			return
		}
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": err.Error()})

	case apperrors.IsInvalidCredentials(err):
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid credentials"})

	case apperrors.IsInvalidToken(err):
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthorized"})

	case apperrors.IsPermissionDenied(err):
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "forbidden"})

	case apperrors.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "not found"})

	default:
		_ = c.Error(err)
		h.log.Error("internal error", zap.Error(err), zap.String("path", c.Request.URL.Path))
		body := gin.H{"success": false, "message": "internal server error"}
		if h.exposeErrors {
			body["error"] = err.Error()
		}
		c.JSON(http.StatusInternalServerError, body)
	}
}
