package controller

import (
	"estudiapro_backend/internal/model"
	"estudiapro_backend/internal/repository"
	"estudiapro_backend/internal/service"
	"estudiapro_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	UserService *service.UserService
}

func NewUserController(userService *service.UserService) *UserController {
	return &UserController{UserService: userService}
}

// @Summary Current profile
// @Description Returns the user, the role profile and the points summary
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.Profile}
// @Router /api/users/me [get]
func (c *UserController) GetProfile(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	profile, err := c.UserService.Profile(user.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, profile)
}

// @Summary Verify role
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.RoleInfo}
// @Router /api/users/verify-role [get]
func (c *UserController) VerifyRole(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	info, err := c.UserService.VerifyRole(user.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, info)
}

// @Summary Activate premium
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/users/premium [post]
func (c *UserController) ActivatePremium(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	updated, err := c.UserService.ActivatePremium(user.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, updated)
}

// @Summary Track study time
// @Description Adds study minutes to the student profile and advances the streak
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.TrackTimeRequest true "Minutes studied"
// @Success 200 {object} util.Response{data=service.StudyTime}
// @Router /api/users/track-time [post]
func (c *UserController) TrackTime(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.TrackTimeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	st, err := c.UserService.TrackTime(user.UserID, req.Minutes)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, st)
}

// @Summary List users
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param role query string false "Role filter" Enums(student, creator, admin)
// @Param status query string false "Status filter" Enums(active, inactive, suspended)
// @Param search query string false "Username, email or name"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/admin/users [get]
func (c *UserController) ListUsers(ctx *gin.Context) {
	page, limit := util.Pagination(ctx)
	filter := repository.UserFilter{
		Role:   model.UserRole(ctx.Query("role")),
		Status: model.UserStatus(ctx.Query("status")),
		Search: ctx.Query("search"),
	}

	users, total, err := c.UserService.List(filter, page, limit)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{List: users, Total: total, Page: page, Limit: limit})
}

// @Summary Update user
// @Description Changing the role swaps the role profile
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body service.AdminUserUpdate true "Fields to change"
// @Success 200 {object} util.Response{data=service.UserView}
// @Router /api/admin/users/{id} [put]
func (c *UserController) UpdateUser(ctx *gin.Context) {
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	var req service.AdminUserUpdate
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	view, err := c.UserService.Update(id, &req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, view)
}

// @Summary Delete user
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} util.Response
// @Router /api/admin/users/{id} [delete]
func (c *UserController) DeleteUser(ctx *gin.Context) {
	admin := util.GetUserFromContext(ctx)
	if admin == nil {
		util.Unauthorized(ctx)
		return
	}
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	if err := c.UserService.Delete(admin.UserID, id); err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"message": "user deleted"})
}

// @Summary Platform statistics
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=repository.PlatformStats}
// @Router /api/admin/stats [get]
func (c *UserController) Stats(ctx *gin.Context) {
	stats, err := c.UserService.Stats()
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, stats)
}
