package controller

import (
	"errors"

	"waterball_lms_backend/internal/repository"
	"waterball_lms_backend/internal/service"
	"waterball_lms_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CatalogController struct {
	CatalogRepo   *repository.CatalogRepository
	AccessService *service.AccessService
}

func NewCatalogController(catalogRepo *repository.CatalogRepository, accessService *service.AccessService) *CatalogController {
	return &CatalogController{CatalogRepo: catalogRepo, AccessService: accessService}
}

// ListJourneys godoc
// @Summary 课程列表
// @Tags 课程目录
// @Produce  json
// @Success 200 {object} util.Response{data=[]model.Journey} "成功"
// @Router /api/journeys [get]
func (c *CatalogController) ListJourneys(ctx *gin.Context) {
	journeys, err := c.CatalogRepo.ListJourneys()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, journeys)
}

// GetJourney godoc
// @Summary 课程详情
// @Description 返回课程及其章节、单元、道馆
// @Tags 课程目录
// @Produce  json
// @Param   id path int true "课程ID"
// @Success 200 {object} util.Response{data=model.Journey} "成功"
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/journeys/{id} [get]
func (c *CatalogController) GetJourney(ctx *gin.Context) {
	journeyID, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	journey, err := c.CatalogRepo.FindJourney(journeyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, journey)
}

// CheckLessonAccess godoc
// @Summary 单元可达性
// @Description 判断当前用户能否访问指定单元
// @Tags 课程目录
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "单元ID"
// @Success 200 {object} util.Response{data=object} "成功"
// @Failure 404 {object} util.Response "单元不存在"
// @Router /api/lessons/{id}/accessible [get]
func (c *CatalogController) CheckLessonAccess(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	lessonID, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	accessible, err := c.AccessService.CanAccessLesson(claims.UserID, lessonID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"accessible": accessible})
}
