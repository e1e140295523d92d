package controller

import (
	"waterball_lms_backend/internal/service"
	"waterball_lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService *service.ProgressService
	RewardService   *service.RewardService
}

func NewProgressController(progressService *service.ProgressService, rewardService *service.RewardService) *ProgressController {
	return &ProgressController{
		ProgressService: progressService,
		RewardService:   rewardService,
	}
}

// swagger:model RecordProgressRequest
type RecordProgressRequest struct {
	CurrentTime float64 `json:"currentTime"`
	Duration    float64 `json:"duration"`
}

// RecordProgress godoc
// @Summary 回报播放进度
// @Description 记录单元观看进度；达到完成阈值后 completed 置位且不再回退
// @Tags 学习进度
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "单元ID"
// @Param   body body RecordProgressRequest true "播放进度"
// @Success 200 {object} util.Response{data=model.LessonProgress} "成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 403 {object} util.Response "需要课程持有权"
// @Failure 404 {object} util.Response "单元不存在"
// @Router /api/lessons/{id}/progress [put]
func (c *ProgressController) RecordProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	lessonID, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	var req RecordProgressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	progress, err := c.ProgressService.RecordProgress(claims.UserID, lessonID, req.CurrentTime, req.Duration)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}

// GetProgress godoc
// @Summary 查询单元进度
// @Tags 学习进度
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "单元ID"
// @Success 200 {object} util.Response{data=model.LessonProgress} "成功"
// @Failure 404 {object} util.Response "尚无进度记录"
// @Router /api/lessons/{id}/progress [get]
func (c *ProgressController) GetProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	lessonID, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	progress, err := c.ProgressService.GetProgress(claims.UserID, lessonID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}

// ListProgress godoc
// @Summary 全部单元进度
// @Tags 学习进度
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.LessonProgress} "成功"
// @Router /api/progress [get]
func (c *ProgressController) ListProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	progresses, err := c.ProgressService.ListProgress(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, progresses)
}

// Deliver godoc
// @Summary 交付已完成单元
// @Description 交付后发放经验值；同一单元至多交付一次
// @Tags 学习进度
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "单元ID"
// @Success 200 {object} util.Response{data=service.DeliverResult} "成功"
// @Failure 404 {object} util.Response "单元或进度不存在"
// @Failure 409 {object} util.Response "尚未完成或已交付"
// @Router /api/lessons/{id}/deliver [post]
func (c *ProgressController) Deliver(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	lessonID, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	result, err := c.RewardService.Deliver(claims.UserID, lessonID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// JourneyCompletion godoc
// @Summary 课程完成度
// @Tags 学习进度
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Success 200 {object} util.Response{data=service.JourneyCompletion} "成功"
// @Router /api/journeys/{id}/completion [get]
func (c *ProgressController) JourneyCompletion(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	journeyID, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	completion, err := c.ProgressService.JourneyCompletion(claims.UserID, journeyID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, completion)
}

// ListRewards godoc
// @Summary 经验值发放记录
// @Tags 学习进度
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.RewardGrant} "成功"
// @Router /api/rewards [get]
func (c *ProgressController) ListRewards(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	grants, err := c.RewardService.ListGrants(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, grants)
}
