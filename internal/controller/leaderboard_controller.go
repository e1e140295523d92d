package controller

import (
	"strconv"

	"waterball_lms_backend/internal/model"
	"waterball_lms_backend/internal/service"
	"waterball_lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type LeaderboardController struct {
	LeaderboardService *service.LeaderboardService
}

func NewLeaderboardController(leaderboardService *service.LeaderboardService) *LeaderboardController {
	return &LeaderboardController{LeaderboardService: leaderboardService}
}

func (c *LeaderboardController) queryFromContext(ctx *gin.Context) service.LeaderboardQuery {
	query := service.LeaderboardQuery{
		Type:      model.LeaderboardType(ctx.DefaultQuery("type", string(model.LeaderboardGlobal))),
		TimeRange: model.LeaderboardTimeRange(ctx.DefaultQuery("timeRange", string(model.TimeRangeAllTime))),
		SortBy:    model.LeaderboardSortBy(ctx.DefaultQuery("sortBy", string(model.SortByExp))),
	}

	if journeyID, err := strconv.ParseUint(ctx.Query("journeyId"), 10, 32); err == nil {
		query.JourneyID = uint(journeyID)
	}
	if limit, err := strconv.Atoi(ctx.Query("limit")); err == nil {
		query.Limit = limit
	}
	if claims := util.GetUserFromContext(ctx); claims != nil {
		query.UserID = claims.UserID
	}
	return query
}

// Get godoc
// @Summary 排行榜
// @Description 支持全站/课程范围，总榜与周/月增量榜
// @Tags 排行榜
// @Produce  json
// @Security ApiKeyAuth
// @Param   type query string false "GLOBAL 或 JOURNEY" default(GLOBAL)
// @Param   journeyId query int false "JOURNEY 榜必填"
// @Param   timeRange query string false "ALL_TIME、THIS_WEEK 或 THIS_MONTH" default(ALL_TIME)
// @Param   sortBy query string false "EXP、LEVEL、LESSONS_COMPLETED、GYMS_PASSED 或 EXP_GAINED" default(EXP)
// @Param   limit query int false "返回条数"
// @Success 200 {object} util.Response{data=model.LeaderboardResponse} "成功"
// @Failure 400 {object} util.Response "查询参数错误"
// @Router /api/leaderboard [get]
func (c *LeaderboardController) Get(ctx *gin.Context) {
	query := c.queryFromContext(ctx)

	response, err := c.LeaderboardService.Get(ctx.Request.Context(), query)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, response)
}

// Nearby godoc
// @Summary 周边排名
// @Description 返回当前用户前后各 radius 名的榜单切片
// @Tags 排行榜
// @Produce  json
// @Security ApiKeyAuth
// @Param   radius query int false "前后名次数" default(2)
// @Success 200 {object} util.Response{data=[]model.LeaderboardEntry} "成功"
// @Router /api/leaderboard/nearby [get]
func (c *LeaderboardController) Nearby(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	query := c.queryFromContext(ctx)

	radius := 2
	if r, err := strconv.Atoi(ctx.Query("radius")); err == nil {
		radius = r
	}

	entries, err := c.LeaderboardService.Nearby(ctx.Request.Context(), query, radius)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, entries)
}
