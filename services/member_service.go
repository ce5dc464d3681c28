package services

import (
	"strings"

	"github.com/bugpredictor/apperrors"
	"github.com/bugpredictor/dto"
	"github.com/bugpredictor/lib/mailer"
	"github.com/bugpredictor/logger"
	"github.com/bugpredictor/models"
	"github.com/bugpredictor/repositories"
	"github.com/bugpredictor/utils"
)

// DefaultMemberPageSize is the member list page size when none is requested
const DefaultMemberPageSize = 3

var memberSortColumns = map[string]bool{
	"created_at": true,
	"full_name":  true,
	"username":   true,
	"email":      true,
}

// MemberService manages the team members of a project
type MemberService struct {
	users    *repositories.UserRepository
	projects *repositories.ProjectRepository
	mailer   Mailer
	baseURL  string
}

func NewMemberService(m Mailer, baseURL string) *MemberService {
	return &MemberService{
		users:    repositories.NewUserRepository(),
		projects: repositories.NewProjectRepository(),
		mailer:   m,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
}

// List returns the team members visible to viewer
func (s *MemberService) List(viewer *models.User, q dto.PageQuery) (dto.MemberListResponse, error) {
	q.Normalize(DefaultMemberPageSize, memberSortColumns, "created_at")

	users, total, err := s.users.FindWithPagination(viewer, models.RoleTeamMember, q)
	if err != nil {
		return dto.MemberListResponse{}, internal(err)
	}

	members := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		members = append(members, dto.NewUserResponse(u))
	}
	return dto.MemberListResponse{Members: members, PageMeta: dto.NewPageMeta(total, q)}, nil
}

// Get returns a user visible to viewer
func (s *MemberService) Get(viewer *models.User, id string) (models.User, error) {
	user, err := s.users.FindVisibleByID(viewer, id)
	if err != nil {
		return models.User{}, notFoundOr(err, "member")
	}
	return user, nil
}

// Create adds a verified team member to the owner's project and mails the credentials
func (s *MemberService) Create(owner *models.User, req dto.CreateMemberRequest) (models.User, error) {
	if !owner.IsProjectOwner() && !owner.IsSuperuser {
		return models.User{}, apperrors.Forbidden()
	}
	if owner.ProjectID == nil {
		return models.User{}, apperrors.Validation("project", "you are not assigned to a project")
	}

	email := utils.NormalizeEmail(req.Email)
	username := trimmed(req.Username)

	fields := passwordErrors(req.Password1, req.Password2, "password1", "password2")
	if err := checkIdentity(s.users, fields, username, email); err != nil {
		return models.User{}, err
	}
	if len(fields) > 0 {
		return models.User{}, apperrors.ValidationFields(fields)
	}

	hashed, err := utils.HashPassword(req.Password1)
	if err != nil {
		return models.User{}, internal(err)
	}

	member := models.User{
		Username:  username,
		Email:     email,
		Password:  hashed,
		FullName:  trimmed(req.FullName),
		Role:      models.RoleTeamMember,
		ProjectID: owner.ProjectID,
		Verified:  true,
	}
	if err := s.users.Create(nil, &member); err != nil {
		return models.User{}, internal(err)
	}

	projectName := ""
	if project, err := s.projects.FindByID(*owner.ProjectID); err == nil {
		projectName = project.Name
	}
	sendMail(s.mailer, member.Email, "Your team account", mailer.TemplateNewMember, map[string]string{
		"FullName":    displayName(member),
		"ProjectName": projectName,
		"Username":    member.Username,
		"Password":    req.Password1,
		"LoginURL":    s.baseURL + "/login",
	})

	logger.Info("User %s added member %s to project %s", owner.Username, member.Username, *owner.ProjectID)
	return member, nil
}

// Update changes the full name or email of a team member
func (s *MemberService) Update(owner *models.User, id string, req dto.UpdateMemberRequest) (models.User, error) {
	member, err := s.managedMember(owner, id)
	if err != nil {
		return models.User{}, err
	}

	columns := []string{}
	if req.FullName != nil {
		member.FullName = trimmed(*req.FullName)
		columns = append(columns, "full_name")
	}
	if req.Email != nil {
		email := utils.NormalizeEmail(*req.Email)
		taken, err := s.users.EmailTaken(email, member.ID)
		if err != nil {
			return models.User{}, internal(err)
		}
		if taken {
			return models.User{}, apperrors.Validation("email", "a user with that email already exists")
		}
		member.Email = email
		columns = append(columns, "email")
	}

	if len(columns) == 0 {
		return member, nil
	}
	if err := s.users.UpdateFields(&member, columns...); err != nil {
		return models.User{}, internal(err)
	}
	return member, nil
}

// Delete removes a team member that no bug or comment references
func (s *MemberService) Delete(owner *models.User, id string) error {
	member, err := s.managedMember(owner, id)
	if err != nil {
		return err
	}

	refs, err := s.users.CountReferences(member.ID)
	if err != nil {
		return internal(err)
	}
	if refs > 0 {
		return apperrors.Protected("member %s is referenced by %d bugs, comments or attachments", member.Username, refs)
	}

	if err := s.users.Delete(member.ID); err != nil {
		return internal(err)
	}
	logger.Info("User %s deleted member %s", owner.Username, member.Username)
	return nil
}

// managedMember loads a team member that owner may modify
func (s *MemberService) managedMember(owner *models.User, id string) (models.User, error) {
	member, err := s.users.FindVisibleByID(owner, id)
	if err != nil {
		return models.User{}, notFoundOr(err, "member")
	}
	if member.Role != models.RoleTeamMember || member.ProjectID == nil {
		return models.User{}, apperrors.NotFound("member")
	}
	if !owner.CanManageProject(*member.ProjectID) {
		return models.User{}, apperrors.Forbidden()
	}
	return member, nil
}
