package controller

import (
	"estudiapro_backend/internal/service"
	"estudiapro_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type TutoringController struct {
	TutoringService *service.TutoringService
}

func NewTutoringController(tutoringService *service.TutoringService) *TutoringController {
	return &TutoringController{TutoringService: tutoringService}
}

// @Summary List tutors
// @Description Active tutors with their rates
// @Tags tutoring
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]service.TutorListing}
// @Router /api/tutors [get]
func (c *TutoringController) Tutors(ctx *gin.Context) {
	list, err := c.TutoringService.Tutors()
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, list)
}

// @Summary My tutor profile
// @Tags tutoring
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=model.TutorProfile}
// @Router /api/tutors/me [get]
func (c *TutoringController) GetMe(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	tutor, err := c.TutoringService.Me(user.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, tutor)
}

// @Summary Update my tutor profile
// @Tags tutoring
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param profile body service.TutorProfileRequest true "Tutor profile"
// @Success 200 {object} util.Response{data=model.TutorProfile}
// @Router /api/tutors/me [put]
func (c *TutoringController) UpdateMe(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.TutorProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	tutor, err := c.TutoringService.UpdateMe(user.UserID, &req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, tutor)
}

// @Summary Request tutoring session
// @Description Books a 30 or 60 minute session with an active tutor
// @Tags tutoring
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param session body service.SessionRequest true "Session"
// @Success 201 {object} util.Response{data=model.TutoringSession}
// @Router /api/tutoring/sessions [post]
func (c *TutoringController) RequestSession(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.SessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	session, err := c.TutoringService.Request(ctx.Request.Context(), user.UserID, &req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Created(ctx, session)
}

// @Summary My tutoring sessions
// @Tags tutoring
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.TutoringSession}
// @Router /api/tutoring/sessions [get]
func (c *TutoringController) Sessions(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	list, err := c.TutoringService.Sessions(user)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, list)
}

// @Summary Update session status
// @Description requested to confirmed or cancelled, confirmed to completed or cancelled
// @Tags tutoring
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Session ID"
// @Param status body service.StatusRequest true "Next status"
// @Success 200 {object} util.Response{data=model.TutoringSession}
// @Router /api/tutoring/sessions/{id}/status [patch]
func (c *TutoringController) Transition(ctx *gin.Context) {
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

	var req service.StatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	session, err := c.TutoringService.Transition(user, id, req.Status)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, session)
}
