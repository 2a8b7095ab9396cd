package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/temcen/storefront/internal/search"
	"github.com/temcen/storefront/internal/services"
	"github.com/temcen/storefront/internal/session"
	"github.com/temcen/storefront/pkg/models"
)

const noResultsMessage = "No products found matching your search."

// StorefrontService is the session service the HTTP surface drives.
type StorefrontService interface {
	CreateSession(ctx context.Context) (*services.Session, error)
	GetSession(ctx context.Context, id uuid.UUID) (*services.Session, error)
	SetIdentity(ctx context.Context, id uuid.UUID, userID int64) (*services.Session, error)
	Search(ctx context.Context, id uuid.UUID, query string) (*services.Session, error)
	Dispatch(ctx context.Context, id uuid.UUID, kind session.ActionKind, productID *int64) (*services.Outcome, error)
}

type IdentityRequest struct {
	UserID *int64 `json:"user_id" validate:"required"`
}

type ActionRequest struct {
	Action    string `json:"action" validate:"required,oneof=view_details add_to_cart back buy_now go_home clear_cart"`
	ProductID *int64 `json:"product_id,omitempty" validate:"omitempty,gt=0"`
}

// SessionResponse is the rendered view of a session.
type SessionResponse struct {
	ID             uuid.UUID            `json:"id"`
	Page           session.Page         `json:"page"`
	CurrentProduct *models.ProductView  `json:"current_product,omitempty"`
	Cart           []int64              `json:"cart"`
	CartSize       int                  `json:"cart_size"`
	UserID         *models.UserIdentity `json:"user_id,omitempty"`
	Query          string               `json:"query"`
	Products       []models.ProductView `json:"products"`
}

type SessionHandler struct {
	logger      *logrus.Logger
	storefront  StorefrontService
	formatter   *models.Formatter
	titleLength int
	validator   *validator.Validate
}

func NewSessionHandler(logger *logrus.Logger, storefront StorefrontService, formatter *models.Formatter, titleLength int) *SessionHandler {
	return &SessionHandler{
		logger:      logger,
		storefront:  storefront,
		formatter:   formatter,
		titleLength: titleLength,
		validator:   validator.New(),
	}
}

func (h *SessionHandler) Create(c *gin.Context) {
	sess, err := h.storefront.CreateSession(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"data": h.render(sess),
	})
}

func (h *SessionHandler) Get(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}

	sess, err := h.storefront.GetSession(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": h.render(sess),
	})
}

func (h *SessionHandler) SetIdentity(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}

	var req IdentityRequest
	if !h.bind(c, &req) {
		return
	}

	sess, err := h.storefront.SetIdentity(c.Request.Context(), id, *req.UserID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": h.render(sess),
	})
}

// Search runs the search box: a non-empty q searches, an empty q browses trending items.
func (h *SessionHandler) Search(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}

	sess, err := h.storefront.Search(c.Request.Context(), id, c.Query("q"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	response := gin.H{
		"data": h.render(sess),
	}
	if len(sess.Listing) == 0 {
		response["message"] = noResultsMessage
	}
	c.JSON(http.StatusOK, response)
}

func (h *SessionHandler) Dispatch(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}

	var req ActionRequest
	if !h.bind(c, &req) {
		return
	}

	outcome, err := h.storefront.Dispatch(c.Request.Context(), id, session.ActionKind(req.Action), req.ProductID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response := gin.H{
		"data":  h.render(outcome.Session),
		"added": outcome.Added,
	}
	if outcome.Notice != "" {
		response["message"] = outcome.Notice
	}
	if outcome.RecordError != "" {
		response["warning"] = outcome.RecordError
	}
	c.JSON(http.StatusOK, response)
}

func (h *SessionHandler) render(sess *services.Session) SessionResponse {
	response := SessionResponse{
		ID:       sess.ID,
		Page:     sess.State.Page,
		Cart:     sess.State.Cart,
		CartSize: len(sess.State.Cart),
		Query:    sess.Query,
		Products: make([]models.ProductView, 0, len(sess.Listing)),
	}
	if response.Cart == nil {
		response.Cart = []int64{}
	}
	if sess.State.UserID.IsKnown() {
		user := sess.State.UserID
		response.UserID = &user
	}
	if sess.State.CurrentProduct != nil {
		view := h.formatter.View(*sess.State.CurrentProduct, 0)
		response.CurrentProduct = &view
	}
	for _, product := range sess.Listing {
		response.Products = append(response.Products, h.formatter.View(product, h.titleLength))
	}
	return response
}

func (h *SessionHandler) sessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("sessionId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Invalid session ID",
				"details": err.Error(),
			},
		})
		return uuid.Nil, false
	}
	return id, true
}

func (h *SessionHandler) bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.logger.WithError(err).Debug("Failed to bind session request")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Invalid request format",
				"details": err.Error(),
			},
		})
		return false
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "VALIDATION_FAILED",
				"message": "Request validation failed",
				"details": err.Error(),
			},
		})
		return false
	}
	return true
}

func (h *SessionHandler) writeError(c *gin.Context, err error) {
	var searchErr *search.Error

	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": gin.H{
				"code":    "SESSION_NOT_FOUND",
				"message": "Session not found",
			},
		})
	case errors.As(err, &searchErr):
		c.JSON(http.StatusBadGateway, gin.H{
			"error": gin.H{
				"code":    "SEARCH_FAILED",
				"message": "Search is unavailable right now, please try again",
				"details": searchErr.Error(),
			},
		})
	case errors.Is(err, session.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{
			"error": gin.H{
				"code":    "INVALID_TRANSITION",
				"message": "Action is not available on this page",
				"details": err.Error(),
			},
		})
	default:
		h.logger.WithError(err).Error("Session request failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "Internal server error",
			},
		})
	}
}
