package controller

import (
	"strconv"

	"skill_assess_backend/internal/service"
	"skill_assess_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SkillController struct {
	PoolService *service.QuestionPoolService
}

func NewSkillController(poolService *service.QuestionPoolService) *SkillController {
	return &SkillController{PoolService: poolService}
}

// @Summary 技能列表
// @Tags 技能
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Skill}
// @Router /api/skills [get]
func (c *SkillController) ListSkills(ctx *gin.Context) {
	skills, err := c.PoolService.ListActiveSkills(ctx.Request.Context())
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, skills)
}

// @Summary 抽取题目
// @Description Randomly sampled active questions, correct answers withheld
// @Tags 技能
// @Produce json
// @Security BearerAuth
// @Param skillId path string true "技能ID"
// @Param limit query int false "题目数量"
// @Success 200 {object} util.Response{data=[]service.PoolQuestion}
// @Failure 404 {object} util.Response
// @Router /api/skills/{skillId}/questions [get]
func (c *SkillController) SampleQuestions(ctx *gin.Context) {
	limit := 0
	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			util.BadRequest(ctx, "invalid limit")
			return
		}
		limit = n
	}

	questions, err := c.PoolService.SampleQuestions(ctx.Request.Context(), ctx.Param("skillId"), limit)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, questions)
}
