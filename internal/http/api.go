package http

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"portal/internal/domain"
	"portal/internal/service"
)

const (
	msgUsernameTaken      = "Username already registered"
	msgInvalidCredentials = "Incorrect username or password"
	msgUnauthorized       = "Could not validate credentials"
	msgUnavailable        = "service unavailable"
	msgInternal           = "internal server error"
	msgTooManyAttempts    = "too many login attempts, retry later"
)

// Options tunes the transport layer.
type Options struct {
	CORSOrigins []string
	// LoginRate is the per-minute login allowance per client address; zero disables it.
	LoginRate  int
	LoginBurst int
}

// Handler wires HTTP routes to domain services.
type Handler struct {
	users   service.UserService
	catalog service.CatalogService
	gate    *service.AuthGate
	logger  *logrus.Logger
	origins []string
	limiter *loginLimiter
}

func NewHandler(users service.UserService, catalog service.CatalogService, gate *service.AuthGate, logger *logrus.Logger, opts Options) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	registerJSONFieldNames()

	h := &Handler{
		users:   users,
		catalog: catalog,
		gate:    gate,
		logger:  logger,
		origins: opts.CORSOrigins,
	}
	if opts.LoginRate > 0 {
		h.limiter = newLoginLimiter(opts.LoginRate, opts.LoginBurst)
	}
	return h
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(requestLogger(h.logger), corsMiddleware(h.origins))

	api := router.Group("/api")
	{
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
		api.POST("/register", h.register)
		api.POST("/login", h.throttleLogin(), h.login)

		protected := api.Group("", h.requireAuth())
		protected.GET("/me", h.me)
		protected.GET("/applications", h.listApplications)
		protected.POST("/applications/:id/access-token", h.applicationToken)
	}
}

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	FullName string `json:"full_name" binding:"required"`
	Password string `json:"password" binding:"required,max=72"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	AccessToken string             `json:"access_token"`
	TokenType   string             `json:"token_type"`
	User        *domain.PublicUser `json:"user"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeValidationError(c, err)
		return
	}

	user, err := h.users.Register(c.Request.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.logger.WithField("username", user.Username).Info("user registered")
	c.JSON(http.StatusOK, user)
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeValidationError(c, err)
		return
	}

	res, err := h.users.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, tokenResponse{
		AccessToken: res.AccessToken,
		TokenType:   res.TokenType,
		User:        res.User,
	})
}

func (h *Handler) me(c *gin.Context) {
	c.JSON(http.StatusOK, h.users.Whoami(currentUser(c)))
}

func (h *Handler) listApplications(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.ListApplications())
}

func (h *Handler) applicationToken(c *gin.Context) {
	user := currentUser(c)
	c.JSON(http.StatusOK, h.catalog.MintApplicationToken(c.Param("id"), user.ID))
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUsernameTaken):
		c.JSON(http.StatusBadRequest, gin.H{"detail": msgUsernameTaken})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.Header("WWW-Authenticate", "Bearer")
		c.JSON(http.StatusUnauthorized, gin.H{"detail": msgInvalidCredentials})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
	case service.IsUnauthorized(err):
		c.Header("WWW-Authenticate", "Bearer")
		c.JSON(http.StatusUnauthorized, gin.H{"detail": msgUnauthorized})
	case errors.Is(err, service.ErrUnavailable):
		h.logger.WithError(err).WithField("path", c.FullPath()).Error("credential store failure")
		c.JSON(http.StatusServiceUnavailable, gin.H{"detail": msgUnavailable})
	default:
		h.logger.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": msgInternal})
	}
}

func (h *Handler) writeValidationError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "request body must be a valid JSON object"})
		return
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "email":
			msgs = append(msgs, fe.Field()+" must be a valid email address")
		case "max":
			msgs = append(msgs, fe.Field()+" must be at most "+fe.Param()+" characters")
		default:
			msgs = append(msgs, fe.Field()+" is invalid")
		}
	}
	c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": strings.Join(msgs, "; ")})
}

var fieldNamesOnce sync.Once

// registerJSONFieldNames makes validation errors report json field names.
func registerJSONFieldNames() {
	fieldNamesOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return field.Name
			}
			return name
		})
	})
}
