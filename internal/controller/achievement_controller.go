package controller

import (
	"estudiapro_backend/internal/service"
	"estudiapro_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type AchievementController struct {
	AchievementService *service.AchievementService
}

func NewAchievementController(achievementService *service.AchievementService) *AchievementController {
	return &AchievementController{AchievementService: achievementService}
}

// @Summary My achievements
// @Description Active catalog with the caller's progress and unlock state
// @Tags gamification
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]service.AchievementView}
// @Router /api/achievements/me [get]
func (c *AchievementController) GetUserAchievements(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	views, err := c.AchievementService.ForUser(user.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, views)
}

// @Summary Points and level
// @Tags gamification
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.PointsSummary}
// @Router /api/achievements/points [get]
func (c *AchievementController) GetPoints(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	summary, err := c.AchievementService.Points(user.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, summary)
}

// @Summary Activity log
// @Tags gamification
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Max entries" default(20)
// @Success 200 {object} util.Response{data=[]model.StudentActivity}
// @Router /api/achievements/activity [get]
func (c *AchievementController) GetActivity(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", strconv.Itoa(util.DefaultLimit)))
	if limit < 1 || limit > util.MaxLimit {
		limit = util.DefaultLimit
	}

	activities, err := c.AchievementService.Activity(user.UserID, limit)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, activities)
}

// @Summary Achievement catalog
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Achievement}
// @Router /api/admin/achievements [get]
func (c *AchievementController) Catalog(ctx *gin.Context) {
	list, err := c.AchievementService.Catalog()
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, list)
}

// @Summary Create achievement
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param achievement body service.AchievementRequest true "Achievement"
// @Success 201 {object} util.Response{data=model.Achievement}
// @Router /api/admin/achievements [post]
func (c *AchievementController) CreateAchievement(ctx *gin.Context) {
	var req service.AchievementRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	a, err := c.AchievementService.Create(&req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Created(ctx, a)
}

// @Summary Update achievement
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Achievement ID"
// @Param achievement body service.AchievementRequest true "Achievement"
// @Success 200 {object} util.Response{data=model.Achievement}
// @Router /api/admin/achievements/{id} [put]
func (c *AchievementController) UpdateAchievement(ctx *gin.Context) {
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	var req service.AchievementRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	a, err := c.AchievementService.Update(id, &req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, a)
}

// @Summary Delete achievement
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Achievement ID"
// @Success 200 {object} util.Response
// @Router /api/admin/achievements/{id} [delete]
func (c *AchievementController) DeleteAchievement(ctx *gin.Context) {
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	if err := c.AchievementService.Delete(id); err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"message": "achievement deleted"})
}
