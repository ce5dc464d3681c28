package v1

import (
	"strings"

	"github.com/bugpredictor/dto"
	"github.com/bugpredictor/services"
	"github.com/gin-gonic/gin"
)

// BugController handles bug endpoints
type BugController struct {
	bugService *services.BugService
}

func NewBugController(bugService *services.BugService) *BugController {
	return &BugController{bugService: bugService}
}

// RegisterRoutes registers bug routes on an authenticated group
func (b *BugController) RegisterRoutes(router *gin.RouterGroup) {
	bugs := router.Group("/bugs")
	{
		bugs.GET("", b.ListBugs)
		bugs.POST("", b.CreateBug)
		bugs.GET("/:id", b.GetBug)
		bugs.GET("/:id/form", b.GetBugForm)
		bugs.PUT("/:id", b.UpdateBug)
		bugs.DELETE("/:id", b.DeleteBug)
	}
}

// ListBugs godoc
// @Summary List bugs with pagination and filtering
// @Description Bugs visible to the current user, searchable by title
// @Tags bugs
// @Produce json
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Param search query string false "Search term for title"
// @Param sortBy query string false "Field to sort by (created_at, updated_at, title, status, priority, severity)"
// @Param sortOrder query string false "Sort order (asc or desc)"
// @Param status query string false "NEW, OPEN, ASSIGNED or FIXED"
// @Param priority query string false "LOW, MEDIUM or HIGH"
// @Param severity query string false "MINOR, NORMAL, MAJOR, CRITICAL or BLOCKER"
// @Success 200 {object} dto.BugListResponse
// @Router /bugs [get]
func (b *BugController) ListBugs(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	filter := dto.BugFilter{
		PageQuery: pageQuery(c),
		Status:    strings.ToUpper(c.Query("status")),
		Priority:  strings.ToUpper(c.Query("priority")),
		Severity:  strings.ToUpper(c.Query("severity")),
	}

	response, err := b.bugService.List(user, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, response)
}

// GetBug godoc
// @Summary Get a bug
// @Description Returns a visible bug with its attachments and comments
// @Tags bugs
// @Produce json
// @Param id path string true "Bug ID"
// @Success 200 {object} dto.BugDetailResponse
// @Router /bugs/{id} [get]
func (b *BugController) GetBug(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	bug, err := b.bugService.Get(user, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, dto.NewBugDetailResponse(bug))
}

// GetBugForm godoc
// @Summary Describe the bug edit form
// @Description Lists editable and read-only fields for the current user, with assignee choices for project owners
// @Tags bugs
// @Produce json
// @Param id path string true "Bug ID"
// @Success 200 {object} dto.BugFormResponse
// @Router /bugs/{id}/form [get]
func (b *BugController) GetBugForm(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	form, err := b.bugService.Form(user, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, form)
}

// CreateBug godoc
// @Summary Report a bug
// @Description Severity is predicted from the description and never accepted from the client
// @Tags bugs
// @Accept json
// @Produce json
// @Param bug body dto.CreateBugRequest true "Bug details"
// @Success 201 {object} dto.BugResponse
// @Router /bugs [post]
func (b *BugController) CreateBug(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.CreateBugRequest
	if !bindJSON(c, &req) {
		return
	}

	bug, err := b.bugService.Create(c.Request.Context(), user, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, dto.NewBugResponse(bug))
}

// UpdateBug godoc
// @Summary Update a bug
// @Description Applies the provided fields. Title is read-only and only project owners may change the assignee
// @Tags bugs
// @Accept json
// @Produce json
// @Param id path string true "Bug ID"
// @Param bug body dto.UpdateBugRequest true "Fields to change"
// @Success 200 {object} dto.BugResponse
// @Router /bugs/{id} [put]
func (b *BugController) UpdateBug(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.UpdateBugRequest
	if !bindJSON(c, &req) {
		return
	}

	bug, err := b.bugService.Update(c.Request.Context(), user, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, dto.NewBugResponse(bug))
}

// DeleteBug godoc
// @Summary Delete a bug
// @Description Removes the bug with its comments and attachments. Allowed for project owners and the reporter
// @Tags bugs
// @Produce json
// @Param id path string true "Bug ID"
// @Success 200 {object} map[string]interface{}
// @Router /bugs/{id} [delete]
func (b *BugController) DeleteBug(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	if err := b.bugService.Delete(user, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "Bug deleted successfully")
}
