package services

import (
	"context"
	"strings"

	"github.com/bugpredictor/apperrors"
	"github.com/bugpredictor/dto"
	"github.com/bugpredictor/lib/mailer"
	"github.com/bugpredictor/lib/storage"
	"github.com/bugpredictor/logger"
	"github.com/bugpredictor/models"
	"github.com/bugpredictor/repositories"
	"github.com/bugpredictor/utils"
)

// DefaultBugPageSize is the bug list page size when none is requested
const DefaultBugPageSize = 10

var bugSortColumns = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"title":      true,
	"status":     true,
	"priority":   true,
	"severity":   true,
}

// BugService implements bug reporting, triage and deletion
type BugService struct {
	bugs      *repositories.BugRepository
	users     *repositories.UserRepository
	projects  *repositories.ProjectRepository
	predictor SeverityPredictor
	files     *storage.Disk
	mailer    Mailer
	baseURL   string
}

func NewBugService(predictor SeverityPredictor, files *storage.Disk, m Mailer, baseURL string) *BugService {
	return &BugService{
		bugs:      repositories.NewBugRepository(),
		users:     repositories.NewUserRepository(),
		projects:  repositories.NewProjectRepository(),
		predictor: predictor,
		files:     files,
		mailer:    m,
		baseURL:   strings.TrimRight(baseURL, "/"),
	}
}

// List returns the bugs visible to viewer that match filter
func (s *BugService) List(viewer *models.User, filter dto.BugFilter) (dto.BugListResponse, error) {
	fields := map[string]string{}
	if filter.Status != "" && !models.BugStatus(filter.Status).IsValid() {
		fields["status"] = "unknown status"
	}
	if filter.Priority != "" && !models.Priority(filter.Priority).IsValid() {
		fields["priority"] = "unknown priority"
	}
	if filter.Severity != "" && !models.Severity(filter.Severity).IsValid() {
		fields["severity"] = "unknown severity"
	}
	if len(fields) > 0 {
		return dto.BugListResponse{}, apperrors.ValidationFields(fields)
	}

	filter.Normalize(DefaultBugPageSize, bugSortColumns, "created_at")

	bugs, total, err := s.bugs.FindWithPagination(viewer, filter)
	if err != nil {
		return dto.BugListResponse{}, internal(err)
	}
	return dto.BugListResponse{
		Bugs:     dto.NewBugListItems(bugs),
		PageMeta: dto.NewPageMeta(total, filter.PageQuery),
	}, nil
}

// Get returns a bug with media and comments if viewer may see it
func (s *BugService) Get(viewer *models.User, id string) (models.Bug, error) {
	bug, err := s.bugs.FindVisibleByID(viewer, id, true)
	if err != nil {
		return models.Bug{}, notFoundOr(err, "bug")
	}
	return bug, nil
}

// Create files a new bug in the reporter's project
func (s *BugService) Create(ctx context.Context, viewer *models.User, req dto.CreateBugRequest) (models.Bug, error) {
	projectID, err := s.targetProject(viewer, req.ProjectID)
	if err != nil {
		return models.Bug{}, err
	}

	bug := models.Bug{
		Title:         trimmed(req.Title),
		Description:   strings.TrimSpace(req.Description),
		Status:        models.StatusNew,
		Priority:      models.PriorityMedium,
		IsPredicted:   true,
		ProjectID:     projectID,
		SubmittedByID: viewer.ID,
	}

	fields := map[string]string{}
	if bug.Title == "" {
		fields["title"] = "this field is required"
	} else if utils.HasControlChars(bug.Title) {
		fields["title"] = "title cannot contain line breaks or control characters"
	}
	if req.Status != "" {
		bug.Status = models.BugStatus(req.Status)
		if !bug.Status.IsValid() {
			fields["status"] = "unknown status"
		}
	}
	if req.Priority != "" {
		bug.Priority = models.Priority(req.Priority)
		if !bug.Priority.IsValid() {
			fields["priority"] = "unknown priority"
		}
	}
	if len(fields) > 0 {
		return models.Bug{}, apperrors.ValidationFields(fields)
	}
	if req.IsPredicted != nil {
		bug.IsPredicted = *req.IsPredicted
	}

	var assignee *models.User
	if id := utils.Deref(req.AssignedToID); id != "" {
		if !viewer.CanManageProject(projectID) {
			return models.Bug{}, apperrors.Newf(apperrors.ErrForbidden, "only the project owner can assign bugs")
		}
		if assignee, err = s.assignee(projectID, id); err != nil {
			return models.Bug{}, err
		}
		bug.AssignedToID = &assignee.ID
	}

	if bug.Severity, err = s.resolveSeverity(ctx, bug.IsPredicted, bug.Description); err != nil {
		return models.Bug{}, err
	}

	if err := s.bugs.Create(&bug); err != nil {
		return models.Bug{}, internal(err)
	}
	logger.Info("User %s reported bug %s with severity %s", viewer.Username, bug.ID, bug.Severity)

	if assignee != nil && assignee.ID != viewer.ID {
		s.notifyAssignee(*assignee, bug)
	}
	return s.reload(viewer, bug.ID)
}

// Update applies the provided changes to a visible bug.
// Title is fixed after creation and only project owners may change the assignee.
func (s *BugService) Update(ctx context.Context, viewer *models.User, id string, req dto.UpdateBugRequest) (models.Bug, error) {
	bug, err := s.bugs.FindVisibleByID(viewer, id, false)
	if err != nil {
		return models.Bug{}, notFoundOr(err, "bug")
	}

	if req.Title != nil && trimmed(*req.Title) != bug.Title {
		return models.Bug{}, apperrors.Validation("title", "title cannot be changed after the bug is reported")
	}

	fields := map[string]string{}
	if req.Status != nil {
		status := models.BugStatus(*req.Status)
		if status.IsValid() {
			bug.Status = status
		} else {
			fields["status"] = "unknown status"
		}
	}
	if req.Priority != nil {
		priority := models.Priority(*req.Priority)
		if priority.IsValid() {
			bug.Priority = priority
		} else {
			fields["priority"] = "unknown priority"
		}
	}
	if len(fields) > 0 {
		return models.Bug{}, apperrors.ValidationFields(fields)
	}

	var newAssignee *models.User
	if req.AssignedToID != nil && *req.AssignedToID != utils.Deref(bug.AssignedToID) {
		if !viewer.CanManageProject(bug.ProjectID) {
			return models.Bug{}, apperrors.Newf(apperrors.ErrForbidden, "only the project owner can assign bugs")
		}
		if *req.AssignedToID == "" {
			bug.AssignedToID = nil
		} else {
			if newAssignee, err = s.assignee(bug.ProjectID, *req.AssignedToID); err != nil {
				return models.Bug{}, err
			}
			bug.AssignedToID = &newAssignee.ID
		}
	}

	reclassify := false
	if req.Description != nil {
		description := strings.TrimSpace(*req.Description)
		reclassify = description != bug.Description
		bug.Description = description
	}
	if req.IsPredicted != nil && *req.IsPredicted != bug.IsPredicted {
		bug.IsPredicted = *req.IsPredicted
		reclassify = true
	}
	if !bug.IsPredicted {
		bug.Severity = models.SeverityNormal
	} else if reclassify {
		if bug.Severity, err = s.resolveSeverity(ctx, true, bug.Description); err != nil {
			return models.Bug{}, err
		}
	}

	bug.AssignedTo, bug.SubmittedBy = nil, nil
	if err := s.bugs.SaveFields(&bug, "description", "status", "priority", "severity", "is_predicted", "assigned_to_id", "updated_at"); err != nil {
		return models.Bug{}, internal(err)
	}

	if newAssignee != nil && newAssignee.ID != viewer.ID {
		s.notifyAssignee(*newAssignee, bug)
	}
	return s.reload(viewer, bug.ID)
}

// Delete removes a bug with its comments and files.
// Allowed for the project owner, a superuser or the reporter.
func (s *BugService) Delete(viewer *models.User, id string) error {
	bug, err := s.bugs.FindVisibleByID(viewer, id, false)
	if err != nil {
		return notFoundOr(err, "bug")
	}
	if !viewer.CanManageProject(bug.ProjectID) && bug.SubmittedByID != viewer.ID {
		return apperrors.Forbidden()
	}

	if err := s.bugs.Delete(bug.ID); err != nil {
		return internal(err)
	}
	if s.files != nil {
		if err := s.files.RemoveBug(bug.ID); err != nil {
			logger.Warn("Failed to remove files of bug %s: %v", bug.ID, err)
		}
	}
	logger.Info("User %s deleted bug %s", viewer.Username, bug.ID)
	return nil
}

// Form describes which fields of a bug viewer may edit
func (s *BugService) Form(viewer *models.User, id string) (dto.BugFormResponse, error) {
	bug, err := s.bugs.FindVisibleByID(viewer, id, false)
	if err != nil {
		return dto.BugFormResponse{}, notFoundOr(err, "bug")
	}

	form := dto.BugFormResponse{
		EditableFields: []string{"description", "status", "priority", "isPredicted"},
		ReadOnlyFields: []string{"title", "severity"},
	}
	for _, st := range models.BugStatuses {
		form.Statuses = append(form.Statuses, string(st))
	}
	for _, p := range models.Priorities {
		form.Priorities = append(form.Priorities, string(p))
	}

	if !viewer.CanManageProject(bug.ProjectID) {
		form.ReadOnlyFields = append(form.ReadOnlyFields, "assignedToId")
		return form, nil
	}

	form.EditableFields = append(form.EditableFields, "assignedToId")
	members, err := s.users.FindTeamMembers(bug.ProjectID)
	if err != nil {
		return dto.BugFormResponse{}, internal(err)
	}
	form.AssigneeChoices = make([]dto.UserSummary, 0, len(members))
	for i := range members {
		form.AssigneeChoices = append(form.AssigneeChoices, *dto.NewUserSummary(&members[i]))
	}
	return form, nil
}

// resolveSeverity applies the save rule: predicted bugs ask the classifier,
// all others are NORMAL.
func (s *BugService) resolveSeverity(ctx context.Context, isPredicted bool, description string) (models.Severity, error) {
	if !isPredicted || s.predictor == nil {
		return models.SeverityNormal, nil
	}
	severity, err := s.predictor.Predict(ctx, description)
	if err != nil {
		logger.Warn("Severity prediction failed: %v", err)
		return "", apperrors.Wrap(apperrors.ErrClassifierUnavailable, err)
	}
	if !severity.IsValid() {
		return models.SeverityNormal, nil
	}
	return severity, nil
}

// targetProject picks the project a new bug belongs to
func (s *BugService) targetProject(viewer *models.User, requested *string) (string, error) {
	if viewer.IsSuperuser && utils.Deref(requested) != "" {
		project, err := s.projects.FindByID(*requested)
		if err != nil {
			if isNotFound(err) {
				return "", apperrors.Validation("projectId", "project does not exist")
			}
			return "", internal(err)
		}
		return project.ID, nil
	}
	if viewer.ProjectID == nil {
		return "", apperrors.Validation("projectId", "you are not assigned to a project")
	}
	return *viewer.ProjectID, nil
}

// assignee loads a team member of projectID
func (s *BugService) assignee(projectID, userID string) (*models.User, error) {
	user, err := s.users.FindByID(userID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.Validation("assignedToId", "select a valid team member")
		}
		return nil, internal(err)
	}
	if user.Role != models.RoleTeamMember || !user.InProject(projectID) {
		return nil, apperrors.Validation("assignedToId", "select a valid team member")
	}
	return &user, nil
}

func (s *BugService) reload(viewer *models.User, id string) (models.Bug, error) {
	bug, err := s.bugs.FindVisibleByID(viewer, id, false)
	if err != nil {
		return models.Bug{}, notFoundOr(err, "bug")
	}
	return bug, nil
}

func (s *BugService) notifyAssignee(assignee models.User, bug models.Bug) {
	sendMail(s.mailer, assignee.Email, "Bug assigned: "+bug.Title, mailer.TemplateBugAssigned, map[string]string{
		"FullName": displayName(assignee),
		"Title":    bug.Title,
		"Priority": string(bug.Priority),
		"Severity": string(bug.Severity),
		"Link":     s.baseURL + "/bugs/" + bug.ID,
	})
}
