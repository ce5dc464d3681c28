package v1

import (
	"github.com/bugpredictor/dto"
	"github.com/bugpredictor/middleware"
	"github.com/bugpredictor/services"
	"github.com/gin-gonic/gin"
)

// ProjectController handles the project of the current user and project administration
type ProjectController struct {
	projectService *services.ProjectService
}

func NewProjectController(projectService *services.ProjectService) *ProjectController {
	return &ProjectController{projectService: projectService}
}

// RegisterRoutes registers project routes on an authenticated group
func (p *ProjectController) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/project", p.GetProject)
	router.PUT("/project", middleware.ProjectOwnerMiddleware(), p.UpdateProject)

	admin := router.Group("/admin")
	admin.Use(middleware.SuperuserMiddleware())
	{
		admin.GET("/projects", p.ListProjects)
		admin.DELETE("/projects/:id", p.DeleteProject)
	}
}

// GetProject godoc
// @Summary Get own project
// @Description Returns the project the current user belongs to
// @Tags projects
// @Produce json
// @Success 200 {object} dto.ProjectResponse
// @Router /project [get]
func (p *ProjectController) GetProject(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	project, err := p.projectService.GetOwn(user)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, dto.NewProjectResponse(project))
}

// UpdateProject godoc
// @Summary Update own project
// @Description Changes name and description. Project owners only
// @Tags projects
// @Accept json
// @Produce json
// @Param project body dto.UpdateProjectRequest true "Project details"
// @Success 200 {object} dto.ProjectResponse
// @Router /project [put]
func (p *ProjectController) UpdateProject(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.UpdateProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := p.projectService.UpdateOwn(user, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, dto.NewProjectResponse(project))
}

// ListProjects godoc
// @Summary List all projects
// @Description Superusers only
// @Tags projects
// @Produce json
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Param search query string false "Search term for project name/description"
// @Param sortBy query string false "Field to sort by (created_at, updated_at, name)"
// @Param sortOrder query string false "Sort order (asc or desc)"
// @Success 200 {object} dto.ProjectListResponse
// @Router /admin/projects [get]
func (p *ProjectController) ListProjects(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	response, err := p.projectService.ListProjects(user, pageQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, response)
}

// DeleteProject godoc
// @Summary Delete a project
// @Description Superusers only. Refused while users or bugs still reference the project
// @Tags projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} map[string]interface{}
// @Router /admin/projects/{id} [delete]
func (p *ProjectController) DeleteProject(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	if err := p.projectService.DeleteProject(user, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "Project deleted successfully")
}
