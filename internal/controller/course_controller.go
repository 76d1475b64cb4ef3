package controller

import (
	"estudiapro_backend/internal/model"
	"estudiapro_backend/internal/repository"
	"estudiapro_backend/internal/service"
	"estudiapro_backend/internal/util"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	CourseService *service.CourseService
}

func NewCourseController(courseService *service.CourseService) *CourseController {
	return &CourseController{CourseService: courseService}
}

func courseFilter(ctx *gin.Context) repository.CourseFilter {
	filter := repository.CourseFilter{
		Query:    ctx.Query("q"),
		Category: ctx.Query("category"),
		Level:    model.CourseLevel(ctx.Query("level")),
	}
	if v, err := strconv.ParseBool(ctx.Query("free")); err == nil {
		filter.Free = &v
	}
	return filter
}

// @Summary List courses
// @Description Active courses, filtered by text, category, level and price
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param q query string false "Search text"
// @Param category query string false "Category"
// @Param level query string false "Level"
// @Param free query bool false "Only free courses"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	page, limit := util.Pagination(ctx)
	courses, total, err := c.CourseService.List(courseFilter(ctx), page, limit)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{List: courses, Total: total, Page: page, Limit: limit})
}

// @Summary Admin course list
// @Description All courses including inactive ones
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/admin/courses [get]
func (c *CourseController) AdminListCourses(ctx *gin.Context) {
	page, limit := util.Pagination(ctx)
	filter := courseFilter(ctx)
	filter.IncludeInactive = true

	courses, total, err := c.CourseService.List(filter, page, limit)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{List: courses, Total: total, Page: page, Limit: limit})
}

// @Summary Course detail
// @Description Course with modules and resources in order
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 404 {object} util.Response
// @Router /api/courses/{id} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	user := util.GetUserFromContext(ctx)

	course, err := c.CourseService.Detail(id, user != nil && user.IsAdmin())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, course)
}

// @Summary Create course
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param course body service.CourseRequest true "Course"
// @Success 201 {object} util.Response{data=model.Course}
// @Router /api/courses [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.CourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.CourseService.Create(user, &req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Created(ctx, course)
}

// @Summary Update course
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param course body service.CourseRequest true "Course"
// @Success 200 {object} util.Response{data=model.Course}
// @Router /api/courses/{id} [put]
func (c *CourseController) UpdateCourse(ctx *gin.Context) {
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

	var req service.CourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.CourseService.Update(user, id, &req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, course)
}

// @Summary Delete course
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} util.Response
// @Router /api/courses/{id} [delete]
func (c *CourseController) DeleteCourse(ctx *gin.Context) {
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

	if err := c.CourseService.Delete(user, id); err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"message": "course deleted"})
}

// @Summary Toggle course visibility
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} util.Response{data=model.Course}
// @Router /api/admin/courses/{id}/toggle [patch]
func (c *CourseController) ToggleCourse(ctx *gin.Context) {
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	course, err := c.CourseService.ToggleActive(id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, course)
}

// @Summary List modules
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} util.Response{data=[]model.Module}
// @Router /api/courses/{id}/modules [get]
func (c *CourseController) ListModules(ctx *gin.Context) {
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	modules, err := c.CourseService.Modules(id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, modules)
}

// @Summary Create module
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param module body service.ModuleRequest true "Module"
// @Success 201 {object} util.Response{data=model.Module}
// @Router /api/courses/{id}/modules [post]
func (c *CourseController) CreateModule(ctx *gin.Context) {
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

	var req service.ModuleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	module, err := c.CourseService.CreateModule(user, id, &req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Created(ctx, module)
}

// @Summary Update module
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Module ID"
// @Param module body service.ModuleRequest true "Module"
// @Success 200 {object} util.Response{data=model.Module}
// @Router /api/modules/{id} [put]
func (c *CourseController) UpdateModule(ctx *gin.Context) {
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

	var req service.ModuleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	module, err := c.CourseService.UpdateModule(user, id, &req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, module)
}

// @Summary Delete module
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Module ID"
// @Success 200 {object} util.Response
// @Router /api/modules/{id} [delete]
func (c *CourseController) DeleteModule(ctx *gin.Context) {
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

	if err := c.CourseService.DeleteModule(user, id); err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"message": "module deleted"})
}

// @Summary Resource detail
// @Tags resources
// @Produce json
// @Security BearerAuth
// @Param id path int true "Resource ID"
// @Success 200 {object} util.Response{data=model.Resource}
// @Router /api/resources/{id} [get]
func (c *CourseController) GetResource(ctx *gin.Context) {
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	resource, err := c.CourseService.Resource(id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, resource)
}

// @Summary Create resource
// @Description JSON body, or multipart form with a file field for uploads
// @Tags resources
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param resource body service.ResourceRequest false "Resource"
// @Param file formData file false "Uploaded file"
// @Success 201 {object} util.Response{data=model.Resource}
// @Router /api/resources [post]
func (c *CourseController) CreateResource(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.ResourceRequest
	file, err := bindWithFile(ctx, &req)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	resource, err := c.CourseService.CreateResource(ctx.Request.Context(), user, &req, file)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Created(ctx, resource)
}

// @Summary Update resource
// @Tags resources
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Resource ID"
// @Param resource body service.ResourceRequest true "Resource"
// @Success 200 {object} util.Response{data=model.Resource}
// @Router /api/resources/{id} [put]
func (c *CourseController) UpdateResource(ctx *gin.Context) {
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

	var req service.ResourceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	resource, err := c.CourseService.UpdateResource(user, id, &req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, resource)
}

// @Summary Delete resource
// @Tags resources
// @Produce json
// @Security BearerAuth
// @Param id path int true "Resource ID"
// @Success 200 {object} util.Response
// @Router /api/resources/{id} [delete]
func (c *CourseController) DeleteResource(ctx *gin.Context) {
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

	if err := c.CourseService.DeleteResource(user, id); err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"message": "resource deleted"})
}

// @Summary List questions
// @Description Students get questions without answers
// @Tags questions
// @Produce json
// @Security BearerAuth
// @Param moduleId query int false "Module ID"
// @Param difficulty query string false "Difficulty" Enums(easy, medium, hard)
// @Success 200 {object} util.Response
// @Router /api/questions [get]
func (c *CourseController) ListQuestions(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	questions, err := c.CourseService.Questions(util.QueryUint(ctx, "moduleId"), model.Difficulty(ctx.Query("difficulty")))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	if user.Role == model.Student {
		util.Success(ctx, service.StudentQuestionViews(questions))
		return
	}
	util.Success(ctx, questions)
}

// @Summary Create question
// @Tags questions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param question body service.QuestionRequest true "Question"
// @Success 201 {object} util.Response{data=model.Question}
// @Router /api/questions [post]
func (c *CourseController) CreateQuestion(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.CourseService.CreateQuestion(user, &req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Created(ctx, q)
}

// @Summary Update question
// @Tags questions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Question ID"
// @Param question body service.QuestionRequest true "Question"
// @Success 200 {object} util.Response{data=model.Question}
// @Router /api/questions/{id} [put]
func (c *CourseController) UpdateQuestion(ctx *gin.Context) {
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

	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.CourseService.UpdateQuestion(user, id, &req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, q)
}

// @Summary Delete question
// @Tags questions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Question ID"
// @Success 200 {object} util.Response
// @Router /api/questions/{id} [delete]
func (c *CourseController) DeleteQuestion(ctx *gin.Context) {
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

	if err := c.CourseService.DeleteQuestion(user, id); err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"message": "question deleted"})
}

// bindWithFile binds a JSON body, or a multipart form plus its optional
// "file" part.
func bindWithFile(ctx *gin.Context, req interface{}) (*multipart.FileHeader, error) {
	if !strings.HasPrefix(ctx.ContentType(), "multipart/") {
		return nil, ctx.ShouldBindJSON(req)
	}
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, util.MaxUploadBytes)
	if err := ctx.ShouldBind(req); err != nil {
		return nil, err
	}
	file, err := ctx.FormFile("file")
	if err == http.ErrMissingFile {
		return nil, nil
	}
	return file, err
}
