package controller

import (
	"estudiapro_backend/internal/service"
	"estudiapro_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CalendarController struct {
	CalendarService *service.CalendarService
}

func NewCalendarController(calendarService *service.CalendarService) *CalendarController {
	return &CalendarController{CalendarService: calendarService}
}

// @Summary Upcoming activities
// @Description Entries from today on, ordered by date and time
// @Tags calendar
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.UpcomingActivity}
// @Router /api/calendar [get]
func (c *CalendarController) Upcoming(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	list, err := c.CalendarService.Upcoming(user.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, list)
}

// @Summary Create activity
// @Tags calendar
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param activity body service.ActivityRequest true "Activity"
// @Success 201 {object} util.Response{data=model.UpcomingActivity}
// @Router /api/calendar [post]
func (c *CalendarController) Create(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.ActivityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	a, err := c.CalendarService.Create(user.UserID, &req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Created(ctx, a)
}

// @Summary Update activity
// @Description Only manual entries can be changed
// @Tags calendar
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Activity ID"
// @Param activity body service.ActivityRequest true "Activity"
// @Success 200 {object} util.Response{data=model.UpcomingActivity}
// @Failure 403 {object} util.Response
// @Router /api/calendar/{id} [put]
func (c *CalendarController) Update(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	var req service.ActivityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	a, err := c.CalendarService.Update(user.UserID, id, &req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, a)
}

// @Summary Delete activity
// @Tags calendar
// @Produce json
// @Security BearerAuth
// @Param id path int true "Activity ID"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /api/calendar/{id} [delete]
func (c *CalendarController) Delete(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	if err := c.CalendarService.Delete(user.UserID, id); err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"message": "activity deleted"})
}
