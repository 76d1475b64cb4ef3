package controller

import (
	"estudiapro_backend/internal/service"
	"estudiapro_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService  *service.ProgressService
	DashboardService *service.DashboardService
}

func NewProgressController(progressService *service.ProgressService, dashboardService *service.DashboardService) *ProgressController {
	return &ProgressController{ProgressService: progressService, DashboardService: dashboardService}
}

// @Summary Enroll in course
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 201 {object} util.Response{data=model.Enrollment}
// @Failure 400 {object} util.Response
// @Router /api/courses/{id}/enroll [post]
func (c *ProgressController) Enroll(ctx *gin.Context) {
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

	enrollment, err := c.ProgressService.Enroll(user.UserID, id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Created(ctx, enrollment)
}

// @Summary Unenroll from course
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} util.Response
// @Router /api/courses/{id}/enroll [delete]
func (c *ProgressController) Unenroll(ctx *gin.Context) {
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

	if err := c.ProgressService.Unenroll(user.UserID, id); err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"message": "unenrolled"})
}

// @Summary My enrollments
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]service.CourseProgress}
// @Router /api/enrollments [get]
func (c *ProgressController) MyEnrollments(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	views, err := c.ProgressService.MyEnrollments(user.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, views)
}

// @Summary Detailed progress
// @Description Every enrollment with its completed resource ids
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]service.CourseProgress}
// @Router /api/progress [get]
func (c *ProgressController) Detailed(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	views, err := c.ProgressService.Detailed(user.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, views)
}

// @Summary Course progress
// @Description Recomputes and returns progress for one course
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} util.Response{data=service.CourseProgress}
// @Router /api/courses/{id}/progress [get]
func (c *ProgressController) CourseProgress(ctx *gin.Context) {
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

	view, err := c.ProgressService.Refresh(user.UserID, id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, view)
}

// @Summary Complete resource
// @Description Marks a resource done, enrolling first when needed
// @Tags progress
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Resource ID"
// @Param body body service.CompleteResourceRequest false "Time spent"
// @Success 200 {object} util.Response{data=service.CourseProgress}
// @Router /api/resources/{id}/complete [post]
func (c *ProgressController) CompleteResource(ctx *gin.Context) {
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

	var req service.CompleteResourceRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}
	}

	view, err := c.ProgressService.CompleteResource(user.UserID, id, req.TimeSpentMinutes)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, view)
}

// @Summary Set exam date
// @Description Stores the planned exam date and keeps the calendar entry in sync
// @Tags progress
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param body body service.ExamDateRequest true "Date and time"
// @Success 200 {object} util.Response{data=model.Enrollment}
// @Router /api/courses/{id}/exam-date [put]
func (c *ProgressController) SetExamDate(ctx *gin.Context) {
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

	var req service.ExamDateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	enrollment, err := c.ProgressService.SetExamDate(user.UserID, id, &req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, enrollment)
}

// @Summary Student dashboard
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.Dashboard}
// @Router /api/dashboard [get]
func (c *ProgressController) Dashboard(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	dashboard, err := c.DashboardService.Student(user.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, dashboard)
}
