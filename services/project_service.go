package services

import (
	"github.com/bugpredictor/apperrors"
	"github.com/bugpredictor/dto"
	"github.com/bugpredictor/logger"
	"github.com/bugpredictor/models"
	"github.com/bugpredictor/repositories"
)

var projectSortColumns = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"name":       true,
}

// ProjectService handles business logic for projects
type ProjectService struct {
	projectRepo *repositories.ProjectRepository
}

// NewProjectService creates a new project service instance
func NewProjectService() *ProjectService {
	return &ProjectService{
		projectRepo: repositories.NewProjectRepository(),
	}
}

// GetOwn returns the project viewer belongs to
func (s *ProjectService) GetOwn(viewer *models.User) (models.Project, error) {
	if viewer.ProjectID == nil {
		return models.Project{}, apperrors.NotFound("project")
	}
	project, err := s.projectRepo.FindByID(*viewer.ProjectID)
	if err != nil {
		return models.Project{}, notFoundOr(err, "project")
	}
	return project, nil
}

// UpdateOwn changes name and description of the owner's project
func (s *ProjectService) UpdateOwn(viewer *models.User, req dto.UpdateProjectRequest) (models.Project, error) {
	project, err := s.GetOwn(viewer)
	if err != nil {
		return models.Project{}, err
	}
	if !viewer.CanManageProject(project.ID) {
		return models.Project{}, apperrors.Forbidden()
	}

	project.Name = trimmed(req.Name)
	project.Description = trimmed(req.Description)
	if project.Name == "" {
		return models.Project{}, apperrors.Validation("name", "this field is required")
	}
	if err := s.projectRepo.UpdateDetails(&project); err != nil {
		return models.Project{}, internal(err)
	}
	return project, nil
}

// ListProjects retrieves all projects with pagination. Superusers only.
func (s *ProjectService) ListProjects(viewer *models.User, q dto.PageQuery) (dto.ProjectListResponse, error) {
	if !viewer.IsSuperuser {
		return dto.ProjectListResponse{}, apperrors.Forbidden()
	}
	q.Normalize(10, projectSortColumns, "created_at")

	projects, total, err := s.projectRepo.FindWithPagination(q)
	if err != nil {
		return dto.ProjectListResponse{}, internal(err)
	}

	items := make([]dto.ProjectResponse, 0, len(projects))
	for _, p := range projects {
		items = append(items, dto.NewProjectResponse(p))
	}
	return dto.ProjectListResponse{Projects: items, PageMeta: dto.NewPageMeta(total, q)}, nil
}

// DeleteProject removes a project that no user or bug references. Superusers only.
func (s *ProjectService) DeleteProject(viewer *models.User, id string) error {
	if !viewer.IsSuperuser {
		return apperrors.Forbidden()
	}

	project, err := s.projectRepo.FindByID(id)
	if err != nil {
		return notFoundOr(err, "project")
	}

	users, err := s.projectRepo.CountUsers(id)
	if err != nil {
		return internal(err)
	}
	bugs, err := s.projectRepo.CountBugs(id)
	if err != nil {
		return internal(err)
	}
	if users > 0 || bugs > 0 {
		return apperrors.Protected("project %q still has %d users and %d bugs", project.Name, users, bugs)
	}

	if err := s.projectRepo.Delete(id); err != nil {
		return internal(err)
	}
	logger.Info("Project %s deleted by %s", project.ID, viewer.Username)
	return nil
}
