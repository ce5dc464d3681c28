package v1

import (
	"github.com/bugpredictor/dto"
	"github.com/bugpredictor/middleware"
	"github.com/bugpredictor/services"
	"github.com/gin-gonic/gin"
)

// MemberController handles team management endpoints
type MemberController struct {
	memberService *services.MemberService
}

func NewMemberController(memberService *services.MemberService) *MemberController {
	return &MemberController{memberService: memberService}
}

// RegisterRoutes registers member routes. Changes are limited to project owners.
func (m *MemberController) RegisterRoutes(router *gin.RouterGroup) {
	members := router.Group("/members")
	ownerOnly := middleware.ProjectOwnerMiddleware()
	{
		members.GET("", m.ListMembers)
		members.POST("", ownerOnly, m.CreateMember)
		members.GET("/:id", m.GetMember)
		members.PUT("/:id", ownerOnly, m.UpdateMember)
		members.DELETE("/:id", ownerOnly, m.DeleteMember)
	}
}

// ListMembers godoc
// @Summary List team members
// @Description Team members visible to the current user, searchable by full name
// @Tags members
// @Produce json
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Param search query string false "Search term for full name"
// @Param sortBy query string false "Field to sort by (created_at, full_name, username, email)"
// @Param sortOrder query string false "Sort order (asc or desc)"
// @Success 200 {object} dto.MemberListResponse
// @Router /members [get]
func (m *MemberController) ListMembers(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	response, err := m.memberService.List(user, pageQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, response)
}

// GetMember godoc
// @Summary Get a user
// @Description Returns a user visible to the current user
// @Tags members
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} dto.UserResponse
// @Router /members/{id} [get]
func (m *MemberController) GetMember(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	member, err := m.memberService.Get(user, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, dto.NewUserResponse(member))
}

// CreateMember godoc
// @Summary Add a team member
// @Description Creates a verified team member in the owner's project and emails the credentials
// @Tags members
// @Accept json
// @Produce json
// @Param member body dto.CreateMemberRequest true "Member details"
// @Success 201 {object} dto.UserResponse
// @Router /members [post]
func (m *MemberController) CreateMember(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.CreateMemberRequest
	if !bindJSON(c, &req) {
		return
	}

	member, err := m.memberService.Create(user, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, dto.NewUserResponse(member))
}

// UpdateMember godoc
// @Summary Update a team member
// @Description Changes full name or email. Project owners only
// @Tags members
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param member body dto.UpdateMemberRequest true "Fields to change"
// @Success 200 {object} dto.UserResponse
// @Router /members/{id} [put]
func (m *MemberController) UpdateMember(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.UpdateMemberRequest
	if !bindJSON(c, &req) {
		return
	}

	member, err := m.memberService.Update(user, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, dto.NewUserResponse(member))
}

// DeleteMember godoc
// @Summary Delete a team member
// @Description Refused while bugs, comments or attachments reference the member
// @Tags members
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} map[string]interface{}
// @Router /members/{id} [delete]
func (m *MemberController) DeleteMember(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	if err := m.memberService.Delete(user, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "Member deleted successfully")
}
