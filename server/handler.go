package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"book-catalog/library"
)

// Store is the persistence the handler needs. *Database implements it.
type Store interface {
	ListBooks(ctx context.Context) ([]library.Book, error)
	GetBook(ctx context.Context, id string) (library.Book, error)
	AddBook(ctx context.Context, p library.BookPayload) (library.Book, error)
	UpdateBook(ctx context.Context, id string, p library.BookPayload) (library.Book, error)
	DeleteBook(ctx context.Context, id string) error
}

var _ Store = (*Database)(nil)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Code    string               `json:"code"`
	Message string               `json:"message"`
	Errors  []library.FieldError `json:"errors"`
}

type bookRequest struct {
	Title  string `json:"title" binding:"required"`
	Author string `json:"author" binding:"required"`
	Year   int    `json:"year" binding:"required,gte=1,lte=9999"`
	Genre  string `json:"genre" binding:"required,oneof=thriller action adventure romantic comedy"`
	Status string `json:"status" binding:"required,oneof=available issued"`
}

func (r bookRequest) payload() library.BookPayload {
	return library.BookPayload{
		Title:  strings.TrimSpace(r.Title),
		Author: strings.TrimSpace(r.Author),
		Year:   r.Year,
		Genre:  library.Genre(r.Genre),
		Status: library.Status(r.Status),
	}
}

type BookHandler struct {
	store  Store
	logger *zap.Logger
}

func NewBookHandler(store Store, logger *zap.Logger) *BookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookHandler{store: store, logger: logger}
}

func (h *BookHandler) RegisterRoutes(r *gin.RouterGroup) {
	books := r.Group("/books")
	{
		books.GET("", h.ListBooks)
		books.GET("/:id", h.GetBook)
		books.POST("", h.CreateBook)
		books.PUT("/:id", h.UpdateBook)
		books.DELETE("/:id", h.DeleteBook)
	}
}

func (h *BookHandler) ListBooks(c *gin.Context) {
	books, err := h.store.ListBooks(c.Request.Context())
	if err != nil {
		h.storeError(c, "BOOK_LIST_FAILED", "failed to list books", err)
		return
	}
	c.JSON(http.StatusOK, books)
}

func (h *BookHandler) GetBook(c *gin.Context) {
	book, err := h.store.GetBook(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.storeError(c, "BOOK_FETCH_FAILED", "failed to fetch book", err)
		return
	}
	c.JSON(http.StatusOK, book)
}

func (h *BookHandler) CreateBook(c *gin.Context) {
	var req bookRequest
	if !bindJSON(c, &req) {
		return
	}
	book, err := h.store.AddBook(c.Request.Context(), req.payload())
	if err != nil {
		h.storeError(c, "BOOK_CREATE_FAILED", "failed to create book", err)
		return
	}
	c.JSON(http.StatusCreated, book)
}

func (h *BookHandler) UpdateBook(c *gin.Context) {
	var req bookRequest
	if !bindJSON(c, &req) {
		return
	}
	book, err := h.store.UpdateBook(c.Request.Context(), c.Param("id"), req.payload())
	if err != nil {
		h.storeError(c, "BOOK_UPDATE_FAILED", "failed to update book", err)
		return
	}
	c.JSON(http.StatusOK, book)
}

func (h *BookHandler) DeleteBook(c *gin.Context) {
	if err := h.store.DeleteBook(c.Request.Context(), c.Param("id")); err != nil {
		h.storeError(c, "BOOK_DELETE_FAILED", "failed to delete book", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *BookHandler) storeError(c *gin.Context, code, message string, err error) {
	if errors.Is(err, ErrNotFound) {
		writeError(c, http.StatusNotFound, "BOOK_NOT_FOUND", "book not found")
		return
	}
	h.logger.Error(message, zap.String("id", c.Param("id")), zap.Error(err))
	_ = c.Error(err)
	writeError(c, http.StatusInternalServerError, code, message)
}

func writeError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Code:    code,
		Message: message,
		Errors:  []library.FieldError{},
	})
}

func bindJSON(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]library.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			name := jsonFieldName(fe.Field())
			fields = append(fields, library.FieldError{
				Field:   name,
				Rule:    fe.Tag(),
				Message: fieldMessage(name, fe.Tag()),
			})
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
			Code:    "VALIDATION_FAILED",
			Message: "validation failed",
			Errors:  fields,
		})
		return false
	}

	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
		Code:    "INVALID_BODY",
		Message: "invalid request body",
		Errors:  []library.FieldError{{Rule: "syntax", Message: err.Error()}},
	})
	return false
}

func jsonFieldName(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

func fieldMessage(field, rule string) string {
	if rule == "required" {
		return field + " is required"
	}
	return field + " is invalid (" + rule + ")"
}

// HealthHandler answers liveness checks.
type HealthHandler struct {
	db        *Database
	startTime time.Time
}

func NewHealthHandler(db *Database, startTime time.Time) *HealthHandler {
	return &HealthHandler{db: db, startTime: startTime}
}

func (h *HealthHandler) RegisterRoutes(e *gin.Engine) {
	e.GET("/health", h.Health)
}

func (h *HealthHandler) Health(c *gin.Context) {
	uptime := int64(time.Since(h.startTime).Seconds())
	if h.db != nil {
		if err := h.db.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"db":     gin.H{"status": "down", "error": err.Error()},
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "uptime": uptime})
}
