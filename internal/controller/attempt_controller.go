package controller

import (
	"strconv"

	"skill_assess_backend/internal/repository"
	"skill_assess_backend/internal/service"
	"skill_assess_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AttemptController struct {
	AttemptService *service.AttemptService
}

func NewAttemptController(attemptService *service.AttemptService) *AttemptController {
	return &AttemptController{AttemptService: attemptService}
}

type CreateAttemptRequest struct {
	SkillID string `json:"skillId" binding:"required"`
}

type CompleteAttemptRequest struct {
	TimeTaken int `json:"timeTaken" binding:"min=0"`
}

// @Summary 开始测验
// @Description Opens a quiz attempt for a skill
// @Tags 测验
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateAttemptRequest true "技能"
// @Success 201 {object} util.Response{data=model.QuizAttempt}
// @Failure 404 {object} util.Response
// @Failure 422 {object} util.Response
// @Router /api/attempts [post]
func (c *AttemptController) CreateAttempt(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req CreateAttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	attempt, err := c.AttemptService.CreateAttempt(ctx.Request.Context(), user.UserID, req.SkillID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Created(ctx, attempt)
}

// @Summary 提交答案
// @Description Records one answer; the correct option is returned immediately
// @Tags 测验
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "测验ID"
// @Param request body service.SubmitAnswerRequest true "答案"
// @Success 200 {object} util.Response{data=service.SubmitAnswerResult}
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/attempts/{id}/answers [post]
func (c *AttemptController) SubmitAnswer(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.SubmitAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.AttemptService.SubmitAnswer(ctx.Request.Context(), ctx.Param("id"), user.UserID, req)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// @Summary 完成测验
// @Tags 测验
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "测验ID"
// @Param request body CompleteAttemptRequest true "用时（秒）"
// @Success 200 {object} util.Response{data=service.ScoreSummary}
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/attempts/{id}/complete [post]
func (c *AttemptController) CompleteAttempt(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req CompleteAttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	summary, err := c.AttemptService.CompleteAttempt(ctx.Request.Context(), ctx.Param("id"), user.UserID, req.TimeTaken)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, summary)
}

// @Summary 测验详情
// @Description Attempt with every answer and its correct option, for review
// @Tags 测验
// @Produce json
// @Security BearerAuth
// @Param id path string true "测验ID"
// @Success 200 {object} util.Response{data=service.AttemptDetail}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/attempts/{id} [get]
func (c *AttemptController) GetAttempt(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	detail, err := c.AttemptService.GetAttemptDetail(ctx.Request.Context(), ctx.Param("id"), user.UserID, user.Role)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, detail)
}

// @Summary 我的测验记录
// @Tags 测验
// @Produce json
// @Security BearerAuth
// @Param skillId query string false "技能ID"
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/attempts [get]
func (c *AttemptController) ListMyAttempts(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	filter, ok := bindAttemptFilter(ctx)
	if !ok {
		return
	}
	filter.OwnerID = user.UserID

	c.respondSummaries(ctx, filter)
}

// @Summary 全部测验记录（管理员）
// @Tags 测验
// @Produce json
// @Security BearerAuth
// @Param ownerId query int false "用户ID"
// @Param skillId query string false "技能ID"
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/admin/attempts [get]
func (c *AttemptController) ListAllAttempts(ctx *gin.Context) {
	filter, ok := bindAttemptFilter(ctx)
	if !ok {
		return
	}
	if ownerID := ctx.Query("ownerId"); ownerID != "" {
		id, err := strconv.ParseUint(ownerID, 10, 32)
		if err != nil {
			util.BadRequest(ctx, "invalid ownerId")
			return
		}
		filter.OwnerID = uint(id)
	}

	c.respondSummaries(ctx, filter)
}

func (c *AttemptController) respondSummaries(ctx *gin.Context, filter repository.AttemptFilter) {
	summaries, total, err := c.AttemptService.ListAttempts(ctx.Request.Context(), filter)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	page, limit := util.NormalizePage(filter.Page, filter.Limit)
	util.Success(ctx, util.PageResponse{
		List:  summaries,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

func bindAttemptFilter(ctx *gin.Context) (repository.AttemptFilter, bool) {
	page, err := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	if err != nil {
		util.BadRequest(ctx, "invalid page")
		return repository.AttemptFilter{}, false
	}
	limit, err := strconv.Atoi(ctx.DefaultQuery("limit", strconv.Itoa(util.DefaultLimit)))
	if err != nil {
		util.BadRequest(ctx, "invalid limit")
		return repository.AttemptFilter{}, false
	}

	filter := repository.AttemptFilter{
		SkillID: ctx.Query("skillId"),
		Page:    page,
		Limit:   limit,
	}
	if status := ctx.Query("status"); status != "" {
		var completed bool
		switch status {
		case "completed":
			completed = true
		case "open":
			completed = false
		default:
			util.BadRequest(ctx, "status must be open or completed")
			return repository.AttemptFilter{}, false
		}
		filter.Completed = &completed
	}
	return filter, true
}
