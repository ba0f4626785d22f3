package util

import (
	"errors"
	"net/http"

	"skill_assess_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Error   string      `json:"error,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// PageResponse 分页响应结构
type PageResponse struct {
	List  interface{} `json:"list"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

// Machine readable error codes returned in Response.Error.
const (
	CodeBadRequest       = "bad_request"
	CodeUnauthorized     = "unauthorized"
	CodeForbidden        = "forbidden"
	CodeNotFound         = "not_found"
	CodeAlreadyCompleted = "already_completed"
	CodeDuplicateAnswer  = "duplicate_answer"
	CodeSkillEmpty       = "skill_empty"
	CodeRateLimited      = "rate_limited"
	CodeInternal         = "internal"
)

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: "created",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, errCode, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
		Error:   errCode,
	})
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, CodeUnauthorized, "Unauthorized")
}

func Forbidden(c *gin.Context) {
	Error(c, http.StatusForbidden, CodeForbidden, "Forbidden")
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, CodeBadRequest, message)
}

func NotFound(c *gin.Context) {
	Error(c, http.StatusNotFound, CodeNotFound, "Resource not found")
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, CodeInternal, "Internal server error")
}

func LogInternalError(c *gin.Context, err error) {
	logger.Log.Error("Internal server error", zap.Error(err), zap.String("path", c.FullPath()))
	InternalServerError(c)
}

// HandleServiceError maps lifecycle errors to their HTTP status and code.
func HandleServiceError(c *gin.Context, err error) {
	switch {
	case IsNotFound(err):
		Error(c, http.StatusNotFound, CodeNotFound, err.Error())
	case errors.Is(err, ErrForbidden):
		Error(c, http.StatusForbidden, CodeForbidden, err.Error())
	case errors.Is(err, ErrAttemptAlreadyCompleted):
		Error(c, http.StatusConflict, CodeAlreadyCompleted, err.Error())
	case errors.Is(err, ErrDuplicateAnswer):
		Error(c, http.StatusConflict, CodeDuplicateAnswer, err.Error())
	case errors.Is(err, ErrSkillEmpty):
		Error(c, http.StatusUnprocessableEntity, CodeSkillEmpty, err.Error())
	case errors.Is(err, ErrInvalidAnswerLabel), errors.Is(err, ErrInvalidTimeTaken):
		BadRequest(c, err.Error())
	default:
		LogInternalError(c, err)
	}
}
