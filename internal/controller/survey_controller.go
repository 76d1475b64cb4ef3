package controller

import (
	"estudiapro_backend/internal/service"
	"estudiapro_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SurveyController struct {
	SurveyService *service.SurveyService
}

func NewSurveyController(surveyService *service.SurveyService) *SurveyController {
	return &SurveyController{SurveyService: surveyService}
}

// @Summary Available surveys
// @Description Open surveys the caller has not answered
// @Tags surveys
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Survey}
// @Router /api/surveys [get]
func (c *SurveyController) Available(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	list, err := c.SurveyService.Available(user.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, list)
}

// @Summary My surveys
// @Tags surveys
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Survey}
// @Router /api/surveys/mine [get]
func (c *SurveyController) Mine(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	list, err := c.SurveyService.Mine(user.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, list)
}

// @Summary Survey detail
// @Tags surveys
// @Produce json
// @Security BearerAuth
// @Param id path int true "Survey ID"
// @Success 200 {object} util.Response{data=model.Survey}
// @Router /api/surveys/{id} [get]
func (c *SurveyController) Detail(ctx *gin.Context) {
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	survey, err := c.SurveyService.Detail(id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, survey)
}

// @Summary Create survey
// @Tags surveys
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param survey body service.SurveyRequest true "Survey"
// @Success 201 {object} util.Response{data=model.Survey}
// @Router /api/surveys [post]
func (c *SurveyController) Create(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.SurveyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	survey, err := c.SurveyService.Create(user, &req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Created(ctx, survey)
}

// @Summary Respond to survey
// @Tags surveys
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Survey ID"
// @Param response body service.SurveyResponseRequest true "Answers"
// @Success 201 {object} util.Response
// @Failure 400 {object} util.Response
// @Router /api/surveys/{id}/responses [post]
func (c *SurveyController) Respond(ctx *gin.Context) {
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

	var req service.SurveyResponseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	resp, err := c.SurveyService.Respond(user.UserID, id, &req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Created(ctx, gin.H{"responseId": resp.ID})
}

// @Summary Survey results
// @Description Creator only
// @Tags surveys
// @Produce json
// @Security BearerAuth
// @Param id path int true "Survey ID"
// @Success 200 {object} util.Response{data=service.SurveyResults}
// @Router /api/surveys/{id}/results [get]
func (c *SurveyController) Results(ctx *gin.Context) {
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

	results, err := c.SurveyService.Results(user, id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, results)
}
