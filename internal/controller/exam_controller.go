package controller

import (
	"estudiapro_backend/internal/model"
	"estudiapro_backend/internal/service"
	"estudiapro_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ExamController struct {
	ExamService *service.ExamService
}

func NewExamController(examService *service.ExamService) *ExamController {
	return &ExamController{ExamService: examService}
}

// @Summary List exams
// @Description Active exams, optionally for one course and type
// @Tags exams
// @Produce json
// @Security BearerAuth
// @Param courseId query int false "Course ID"
// @Param type query string false "Exam type" Enums(practice, simulator, evaluation)
// @Success 200 {object} util.Response{data=[]model.Exam}
// @Router /api/exams [get]
func (c *ExamController) ListExams(ctx *gin.Context) {
	exams, err := c.ExamService.List(util.QueryUint(ctx, "courseId"), model.ExamType(ctx.Query("type")))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, exams)
}

// @Summary Exam detail
// @Tags exams
// @Produce json
// @Security BearerAuth
// @Param id path int true "Exam ID"
// @Success 200 {object} util.Response{data=model.Exam}
// @Router /api/exams/{id} [get]
func (c *ExamController) GetExam(ctx *gin.Context) {
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	exam, err := c.ExamService.Get(id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, exam)
}

// @Summary Create exam
// @Tags exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exam body service.ExamRequest true "Exam"
// @Success 201 {object} util.Response{data=model.Exam}
// @Router /api/exams [post]
func (c *ExamController) CreateExam(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.ExamRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	exam, err := c.ExamService.Create(user, &req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Created(ctx, exam)
}

// @Summary Update exam
// @Tags exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Exam ID"
// @Param exam body service.ExamRequest true "Exam"
// @Success 200 {object} util.Response{data=model.Exam}
// @Router /api/exams/{id} [put]
func (c *ExamController) UpdateExam(ctx *gin.Context) {
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

	var req service.ExamRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	exam, err := c.ExamService.Update(user, id, &req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, exam)
}

// @Summary Delete exam
// @Tags exams
// @Produce json
// @Security BearerAuth
// @Param id path int true "Exam ID"
// @Success 200 {object} util.Response
// @Router /api/exams/{id} [delete]
func (c *ExamController) DeleteExam(ctx *gin.Context) {
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

	if err := c.ExamService.Delete(user, id); err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"message": "exam deleted"})
}

// @Summary Generate simulator exam
// @Tags exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.SimulatorRequest true "Simulator settings"
// @Success 201 {object} util.Response{data=model.Exam}
// @Router /api/exams/simulator [post]
func (c *ExamController) GenerateSimulator(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.SimulatorRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	exam, err := c.ExamService.GenerateSimulator(user, &req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Created(ctx, exam)
}

// @Summary List exam templates
// @Tags exams
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.ExamTemplate}
// @Router /api/exam-templates [get]
func (c *ExamController) ListTemplates(ctx *gin.Context) {
	templates, err := c.ExamService.Templates()
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, templates)
}

// @Summary Create exam template
// @Tags exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param template body service.TemplateRequest true "Template"
// @Success 201 {object} util.Response{data=model.ExamTemplate}
// @Router /api/exam-templates [post]
func (c *ExamController) CreateTemplate(ctx *gin.Context) {
	var req service.TemplateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	tpl, err := c.ExamService.CreateTemplate(&req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Created(ctx, tpl)
}

// @Summary Delete exam template
// @Tags exams
// @Produce json
// @Security BearerAuth
// @Param id path int true "Template ID"
// @Success 200 {object} util.Response
// @Router /api/exam-templates/{id} [delete]
func (c *ExamController) DeleteTemplate(ctx *gin.Context) {
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	if err := c.ExamService.DeleteTemplate(id); err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"message": "template deleted"})
}

// @Summary Start exam
// @Description Opens an attempt; questions come without answers
// @Tags exams
// @Produce json
// @Security BearerAuth
// @Param id path int true "Exam ID"
// @Success 201 {object} util.Response{data=service.StartResponse}
// @Router /api/exams/{id}/start [post]
func (c *ExamController) StartExam(ctx *gin.Context) {
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

	resp, err := c.ExamService.Start(user.UserID, id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Created(ctx, resp)
}

// @Summary Submit exam
// @Description Grades the attempt and refreshes course progress
// @Tags exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Exam ID"
// @Param answers body service.SubmitRequest true "Answers"
// @Success 200 {object} util.Response{data=service.SubmitResult}
// @Failure 400 {object} util.Response
// @Router /api/exams/{id}/submit [post]
func (c *ExamController) SubmitExam(ctx *gin.Context) {
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

	var req service.SubmitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.ExamService.Submit(user.UserID, id, &req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// @Summary Attempt history
// @Tags exams
// @Produce json
// @Security BearerAuth
// @Param examId query int false "Exam ID"
// @Success 200 {object} util.Response{data=[]model.ExamAttempt}
// @Router /api/attempts [get]
func (c *ExamController) History(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	attempts, err := c.ExamService.History(user.UserID, util.QueryUint(ctx, "examId"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, attempts)
}

// @Summary Attempt review
// @Description Answers with correctness and explanations
// @Tags exams
// @Produce json
// @Security BearerAuth
// @Param id path int true "Attempt ID"
// @Success 200 {object} util.Response{data=service.AttemptReview}
// @Router /api/attempts/{id} [get]
func (c *ExamController) Review(ctx *gin.Context) {
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

	review, err := c.ExamService.Review(user.UserID, id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, review)
}
