package controller

import (
	"waterball_lms_backend/internal/service"
	"waterball_lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type GymController struct {
	GymService *service.GymService
}

func NewGymController(gymService *service.GymService) *GymController {
	return &GymController{GymService: gymService}
}

// GetRecord godoc
// @Summary 道馆挑战状态
// @Description 返回用户对道馆的挑战记录，首次查询会评估解锁条件
// @Tags 道馆
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "道馆ID"
// @Success 200 {object} util.Response{data=model.GymChallengeRecord} "成功"
// @Failure 404 {object} util.Response "道馆不存在"
// @Router /api/gyms/{id} [get]
func (c *GymController) GetRecord(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	gymID, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	record, err := c.GymService.Record(claims.UserID, gymID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, record)
}

// StartAttempt godoc
// @Summary 发起道馆挑战
// @Tags 道馆
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "道馆ID"
// @Success 200 {object} util.Response{data=model.GymChallengeRecord} "成功"
// @Failure 403 {object} util.Response "道馆未解锁"
// @Failure 409 {object} util.Response "已通关"
// @Router /api/gyms/{id}/attempts [post]
func (c *GymController) StartAttempt(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	gymID, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	record, err := c.GymService.StartAttempt(claims.UserID, gymID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, record)
}

// swagger:model SubmitAttemptRequest
type SubmitAttemptRequest struct {
	Score int `json:"score"`
}

// SubmitAttempt godoc
// @Summary 提交道馆挑战结果
// @Description 分数达到及格线则通关并发放经验值，否则回到可挑战状态
// @Tags 道馆
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "道馆ID"
// @Param   body body SubmitAttemptRequest true "挑战分数"
// @Success 200 {object} util.Response{data=model.GymChallengeRecord} "成功"
// @Failure 400 {object} util.Response "分数不合法"
// @Failure 409 {object} util.Response "没有进行中的挑战或已通关"
// @Router /api/gyms/{id}/attempts/submit [post]
func (c *GymController) SubmitAttempt(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	gymID, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	var req SubmitAttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	record, err := c.GymService.SubmitAttempt(claims.UserID, gymID, req.Score)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, record)
}

// ListRecords godoc
// @Summary 课程内全部道馆状态
// @Tags 道馆
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Success 200 {object} util.Response{data=[]model.GymChallengeRecord} "成功"
// @Router /api/journeys/{id}/gyms [get]
func (c *GymController) ListRecords(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	journeyID, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	records, err := c.GymService.ListRecords(claims.UserID, journeyID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, records)
}

// JourneyGymProgress godoc
// @Summary 课程道馆战绩
// @Description 返回通关数与已获得的徽章
// @Tags 道馆
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Success 200 {object} util.Response{data=model.UserGymProgress} "成功"
// @Router /api/journeys/{id}/gyms/progress [get]
func (c *GymController) JourneyGymProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	journeyID, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	progress, err := c.GymService.JourneyGymProgress(claims.UserID, journeyID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}
