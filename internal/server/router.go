package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/MarcoPoloResearchLab/shelf/backend/internal/auth"
	"github.com/MarcoPoloResearchLab/shelf/backend/internal/works"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const subjectContextKey = "shelf_key_subject"

var (
	errMissingKeyValidator  = errors.New("key validator dependency required")
	errMissingWorkStore     = errors.New("work store dependency required")
	errInvalidAuthorization = errors.New("authorization header missing or invalid")
)

// KeyValidator resolves an API key to its subject.
type KeyValidator interface {
	ValidateKey(key string) (string, error)
}

// WorkStore is the persistence backing the works routes.
type WorkStore interface {
	List(ctx context.Context, ordering works.Ordering) ([]works.Work, error)
	Insert(ctx context.Context, record works.Record) (works.Work, error)
	Update(ctx context.Context, id works.ID, record works.Record) error
	Delete(ctx context.Context, id works.ID) error
}

type Dependencies struct {
	KeyValidator KeyValidator
	WorkStore    WorkStore
	Logger       *zap.Logger
}

func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.KeyValidator == nil {
		return nil, errMissingKeyValidator
	}
	if deps.WorkStore == nil {
		return nil, errMissingWorkStore
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	handler := &httpHandler{
		keys:   deps.KeyValidator,
		store:  deps.WorkStore,
		logger: logger,
	}

	router.GET("/healthz", handler.handleHealth)

	protected := router.Group("/works")
	protected.Use(handler.authorizeRequest)
	protected.GET("", handler.handleListWorks)
	protected.POST("", handler.handleInsertWork)
	protected.PUT("/:id", handler.handleUpdateWork)
	protected.DELETE("/:id", handler.handleDeleteWork)

	return router, nil
}

func corsMiddleware() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:    []string{"Authorization", "Content-Type"},
		MaxAge:          12 * time.Hour,
	})
}

type httpHandler struct {
	keys   KeyValidator
	store  WorkStore
	logger *zap.Logger
}

func (h *httpHandler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *httpHandler) handleListWorks(c *gin.Context) {
	ordering, err := works.ParseOrdering(c.Query("order_by"), c.Query("direction"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_ordering"})
		return
	}

	items, err := h.store.List(c.Request.Context(), ordering)
	if err != nil {
		h.respondStoreError(c, err)
		return
	}

	response := WorksResponse{Works: make([]WorkPayload, 0, len(items))}
	for _, item := range items {
		response.Works = append(response.Works, NewWorkPayload(item))
	}
	c.JSON(http.StatusOK, response)
}

func (h *httpHandler) handleInsertWork(c *gin.Context) {
	var request WorkPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	inserted, err := h.store.Insert(c.Request.Context(), request.Record())
	if err != nil {
		h.respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, WorkResponse{Work: NewWorkPayload(inserted)})
}

func (h *httpHandler) handleUpdateWork(c *gin.Context) {
	id, err := works.NewID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_work_id"})
		return
	}

	var request WorkPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	if err := h.store.Update(c.Request.Context(), id, request.Record()); err != nil {
		h.respondStoreError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *httpHandler) handleDeleteWork(c *gin.Context) {
	id, err := works.NewID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_work_id"})
		return
	}

	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		h.respondStoreError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *httpHandler) respondStoreError(c *gin.Context, err error) {
	body := gin.H{}
	var serviceErr *works.ServiceError
	if errors.As(err, &serviceErr) {
		body["code"] = serviceErr.Code()
	}

	var validationErr *works.ValidationError
	switch {
	case errors.Is(err, works.ErrWorkNotFound):
		body["error"] = "not_found"
		c.JSON(http.StatusNotFound, body)
	case errors.As(err, &validationErr):
		body["error"] = "invalid_record"
		body["fields"] = fieldErrorPayloads(validationErr.Errors)
		c.JSON(http.StatusBadRequest, body)
	case errors.Is(err, works.ErrInvalidOrdering):
		body["error"] = "invalid_ordering"
		c.JSON(http.StatusBadRequest, body)
	case errors.Is(err, works.ErrInvalidWorkID):
		body["error"] = "invalid_work_id"
		c.JSON(http.StatusBadRequest, body)
	default:
		h.logger.Error("work store request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.String("subject", c.GetString(subjectContextKey)),
			zap.Error(err))
		body["error"] = "store_failed"
		c.JSON(http.StatusInternalServerError, body)
	}
}

func (h *httpHandler) authorizeRequest(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errInvalidAuthorization.Error()})
		return
	}
	key := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if key == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errInvalidAuthorization.Error()})
		return
	}
	subject, err := h.keys.ValidateKey(key)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredKey) {
			h.logger.Info("api key validation failed", zap.Error(err))
		} else {
			h.logger.Warn("api key validation failed", zap.Error(err))
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Set(subjectContextKey, subject)
	c.Next()
}
