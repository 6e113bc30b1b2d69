package handlers

import (
	"strconv"
	"time"

	"dealercrm_backend/internal/logger"
	"dealercrm_backend/internal/validator"
	"dealercrm_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// HeaderSessionID identifies the websocket session that originated a REST
// control action, so the resulting control event skips that session.
const HeaderSessionID = "X-Session-ID"

type BaseHandler struct {
	validator *validator.Validator
}

func NewBaseHandler(v *validator.Validator) *BaseHandler {
	return &BaseHandler{validator: v}
}

func (h *BaseHandler) BindAndValidateJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("invalid request body: "+err.Error()))
		return false
	}

	if err := h.validator.Validate(obj); err != nil {
		if vErr, ok := err.(*validator.ValidationError); ok {
			apperrors.HandleError(c, apperrors.ValidationError(vErr.Errors))
		} else {
			apperrors.HandleError(c, apperrors.InternalError(err))
		}
		return false
	}
	return true
}

func (h *BaseHandler) BindAndValidateQuery(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("invalid query parameters: "+err.Error()))
		return false
	}
	return true
}

func (h *BaseHandler) HandleServiceError(c *gin.Context, err error) {
	if appErr, ok := apperrors.AsAppError(err); ok {
		apperrors.HandleError(c, appErr)
		return
	}
	logger.Error("unhandled service error", "path", c.Request.URL.Path, "error", err)
	apperrors.HandleError(c, apperrors.InternalError(err))
}

func (h *BaseHandler) GetAndAuthorizeUserID(c *gin.Context) (string, bool) {
	userIDVal, exists := c.Get("userID")
	if !exists {
		apperrors.HandleError(c, apperrors.NewUnauthorizedError("user not authenticated"))
		return "", false
	}
	userID, ok := userIDVal.(string)
	if !ok || userID == "" {
		apperrors.HandleError(c, apperrors.NewUnauthorizedError("invalid user id in context"))
		return "", false
	}
	return userID, true
}

// OriginSessionID returns the caller's websocket session id, empty when the
// client did not send one.
func (h *BaseHandler) OriginSessionID(c *gin.Context) string {
	return c.GetHeader(HeaderSessionID)
}

func ParseQueryInt(c *gin.Context, key string, defaultValue int) int {
	valueStr := c.Query(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// ParseQueryTimeRange reads from/to query params (RFC 3339), defaulting to
// the coming week.
func ParseQueryTimeRange(c *gin.Context) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	from, to := now, now.AddDate(0, 0, 7)

	if s := c.Query("from"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return from, to, apperrors.NewBadRequestError("invalid 'from' timestamp, expected RFC 3339")
		}
		from = t
	}
	if s := c.Query("to"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return from, to, apperrors.NewBadRequestError("invalid 'to' timestamp, expected RFC 3339")
		}
		to = t
	}
	return from, to, nil
}
