package controller

import (
	"estudiapro_backend/internal/repository"
	"estudiapro_backend/internal/service"
	"estudiapro_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ForumController struct {
	ForumService *service.ForumService
}

func NewForumController(forumService *service.ForumService) *ForumController {
	return &ForumController{ForumService: forumService}
}

type flagRequest struct {
	Value *bool `json:"value"`
}

// flag reads an optional {"value": bool} body, defaulting to true.
func flag(ctx *gin.Context) (bool, error) {
	if ctx.Request.ContentLength <= 0 {
		return true, nil
	}
	var req flagRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return false, err
	}
	return req.Value == nil || *req.Value, nil
}

// @Summary List threads
// @Tags forum
// @Produce json
// @Security BearerAuth
// @Param category query string false "Category"
// @Param courseId query int false "Course ID"
// @Param q query string false "Search text"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/forum/threads [get]
func (c *ForumController) ListThreads(ctx *gin.Context) {
	page, limit := util.Pagination(ctx)
	filter := repository.ThreadFilter{
		Category: ctx.Query("category"),
		CourseID: util.QueryUint(ctx, "courseId"),
		Search:   ctx.Query("q"),
	}

	threads, total, err := c.ForumService.List(filter, page, limit)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{List: threads, Total: total, Page: page, Limit: limit})
}

// @Summary My threads
// @Tags forum
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/forum/threads/mine [get]
func (c *ForumController) MyThreads(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	page, limit := util.Pagination(ctx)

	threads, total, err := c.ForumService.List(repository.ThreadFilter{AuthorID: user.UserID}, page, limit)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{List: threads, Total: total, Page: page, Limit: limit})
}

// @Summary Thread detail
// @Description Thread with replies; counts a view
// @Tags forum
// @Produce json
// @Security BearerAuth
// @Param id path int true "Thread ID"
// @Success 200 {object} util.Response{data=model.ForumThread}
// @Router /api/forum/threads/{id} [get]
func (c *ForumController) GetThread(ctx *gin.Context) {
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	thread, err := c.ForumService.Detail(id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, thread)
}

// @Summary Create thread
// @Tags forum
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param thread body service.ThreadRequest true "Thread"
// @Success 201 {object} util.Response{data=model.ForumThread}
// @Router /api/forum/threads [post]
func (c *ForumController) CreateThread(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.ThreadRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	thread, err := c.ForumService.Create(user.UserID, &req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Created(ctx, thread)
}

// @Summary Update thread
// @Tags forum
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Thread ID"
// @Param thread body service.ThreadRequest true "Thread"
// @Success 200 {object} util.Response{data=model.ForumThread}
// @Router /api/forum/threads/{id} [put]
func (c *ForumController) UpdateThread(ctx *gin.Context) {
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

	var req service.ThreadRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	thread, err := c.ForumService.Update(user, id, &req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, thread)
}

// @Summary Delete thread
// @Tags forum
// @Produce json
// @Security BearerAuth
// @Param id path int true "Thread ID"
// @Success 200 {object} util.Response
// @Router /api/forum/threads/{id} [delete]
func (c *ForumController) DeleteThread(ctx *gin.Context) {
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

	if err := c.ForumService.Delete(user, id); err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"message": "thread deleted"})
}

// @Summary Resolve thread
// @Description Thread author only; body {"value": false} reopens
// @Tags forum
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Thread ID"
// @Success 200 {object} util.Response{data=model.ForumThread}
// @Failure 403 {object} util.Response
// @Router /api/forum/threads/{id}/resolve [post]
func (c *ForumController) ResolveThread(ctx *gin.Context) {
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
	value, err := flag(ctx)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	thread, err := c.ForumService.Resolve(user.UserID, id, value)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, thread)
}

// @Summary Close thread
// @Description Author or admin; body {"value": false} reopens
// @Tags forum
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Thread ID"
// @Success 200 {object} util.Response{data=model.ForumThread}
// @Router /api/forum/threads/{id}/close [post]
func (c *ForumController) CloseThread(ctx *gin.Context) {
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
	value, err := flag(ctx)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	thread, err := c.ForumService.SetClosed(user, id, value)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, thread)
}

// @Summary Reply to thread
// @Tags forum
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Thread ID"
// @Param reply body service.ReplyRequest true "Reply"
// @Success 201 {object} util.Response{data=model.ForumReply}
// @Failure 400 {object} util.Response
// @Router /api/forum/threads/{id}/replies [post]
func (c *ForumController) CreateReply(ctx *gin.Context) {
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

	var req service.ReplyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	reply, err := c.ForumService.Reply(user.UserID, id, &req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Created(ctx, reply)
}

// @Summary Mark solution
// @Description Thread author marks a reply as the solution
// @Tags forum
// @Produce json
// @Security BearerAuth
// @Param id path int true "Reply ID"
// @Success 200 {object} util.Response{data=model.ForumReply}
// @Router /api/forum/replies/{id}/solution [post]
func (c *ForumController) MarkSolution(ctx *gin.Context) {
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

	reply, err := c.ForumService.MarkSolution(user.UserID, id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, reply)
}

// @Summary Vote on reply
// @Description Same vote again removes it, the opposite vote switches it
// @Tags forum
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Reply ID"
// @Param vote body service.VoteRequest true "Vote"
// @Success 200 {object} util.Response{data=service.VoteResult}
// @Router /api/forum/replies/{id}/vote [post]
func (c *ForumController) Vote(ctx *gin.Context) {
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

	var req service.VoteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.ForumService.Vote(user.UserID, id, req.Type)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, result)
}
