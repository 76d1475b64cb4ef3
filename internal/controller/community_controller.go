package controller

import (
	"estudiapro_backend/internal/model"
	"estudiapro_backend/internal/repository"
	"estudiapro_backend/internal/service"
	"estudiapro_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CommunityController struct {
	CommunityService *service.CommunityService
}

func NewCommunityController(communityService *service.CommunityService) *CommunityController {
	return &CommunityController{CommunityService: communityService}
}

// @Summary List community resources
// @Description Approved resources ordered by rating, then downloads
// @Tags community
// @Produce json
// @Security BearerAuth
// @Param q query string false "Search text"
// @Param type query string false "Type" Enums(document, video, link, article, other)
// @Param courseId query int false "Course ID"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/community/resources [get]
func (c *CommunityController) ListResources(ctx *gin.Context) {
	page, limit := util.Pagination(ctx)
	filter := repository.CommunityFilter{
		Query:    ctx.Query("q"),
		Type:     model.CommunityResourceType(ctx.Query("type")),
		CourseID: util.QueryUint(ctx, "courseId"),
	}

	list, total, err := c.CommunityService.List(filter, page, limit)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{List: list, Total: total, Page: page, Limit: limit})
}

// @Summary My community resources
// @Tags community
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.CommunityResource}
// @Router /api/community/resources/mine [get]
func (c *CommunityController) MyResources(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	list, err := c.CommunityService.Mine(user.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, list)
}

// @Summary Community resource detail
// @Tags community
// @Produce json
// @Security BearerAuth
// @Param id path int true "Resource ID"
// @Success 200 {object} util.Response{data=service.CommunityResourceDetail}
// @Router /api/community/resources/{id} [get]
func (c *CommunityController) GetResource(ctx *gin.Context) {
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	detail, err := c.CommunityService.Detail(util.GetUserFromContext(ctx), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, detail)
}

// @Summary Share a resource
// @Description JSON body, or multipart form with a file field
// @Tags community
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param resource body service.CommunityResourceRequest false "Resource"
// @Param file formData file false "Uploaded file"
// @Success 201 {object} util.Response{data=model.CommunityResource}
// @Router /api/community/resources [post]
func (c *CommunityController) CreateResource(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.CommunityResourceRequest
	file, err := bindWithFile(ctx, &req)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	res, err := c.CommunityService.Create(ctx.Request.Context(), user.UserID, &req, file)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Created(ctx, res)
}

// @Summary Update community resource
// @Tags community
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Resource ID"
// @Param resource body service.CommunityResourceRequest true "Resource"
// @Success 200 {object} util.Response{data=model.CommunityResource}
// @Router /api/community/resources/{id} [put]
func (c *CommunityController) UpdateResource(ctx *gin.Context) {
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

	var req service.CommunityResourceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	res, err := c.CommunityService.Update(user, id, &req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, res)
}

// @Summary Delete community resource
// @Tags community
// @Produce json
// @Security BearerAuth
// @Param id path int true "Resource ID"
// @Success 200 {object} util.Response
// @Router /api/community/resources/{id} [delete]
func (c *CommunityController) DeleteResource(ctx *gin.Context) {
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

	if err := c.CommunityService.Delete(ctx.Request.Context(), user, id); err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"message": "resource deleted"})
}

// @Summary Pending community resources
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.CommunityResource}
// @Router /api/admin/community/pending [get]
func (c *CommunityController) Pending(ctx *gin.Context) {
	list, err := c.CommunityService.Pending()
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, list)
}

// @Summary Moderate community resource
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Resource ID"
// @Param body body service.ModerationRequest true "Decision"
// @Success 200 {object} util.Response{data=model.CommunityResource}
// @Router /api/admin/community/{id}/moderate [post]
func (c *CommunityController) Moderate(ctx *gin.Context) {
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	var req service.ModerationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	res, err := c.CommunityService.Moderate(id, req.Approved)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, res)
}

// @Summary Rate community resource
// @Description Score 1 to 5; rating again replaces the previous one
// @Tags community
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Resource ID"
// @Param rating body service.RatingRequest true "Rating"
// @Success 200 {object} util.Response{data=service.RatingResult}
// @Router /api/community/resources/{id}/rate [post]
func (c *CommunityController) Rate(ctx *gin.Context) {
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

	var req service.RatingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.CommunityService.Rate(user, id, &req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// @Summary Download community resource
// @Description Records the download and returns the file URL
// @Tags community
// @Produce json
// @Security BearerAuth
// @Param id path int true "Resource ID"
// @Success 200 {object} util.Response{data=service.DownloadResult}
// @Router /api/community/resources/{id}/download [post]
func (c *CommunityController) Download(ctx *gin.Context) {
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

	result, err := c.CommunityService.Download(user, id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, result)
}
