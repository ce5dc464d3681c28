package dto

// CreateMemberRequest is the add-team-member form
type CreateMemberRequest struct {
	FullName  string `json:"fullName" binding:"max=255"`
	Username  string `json:"username" binding:"required,max=150"`
	Email     string `json:"email" binding:"required,email"`
	Password1 string `json:"password1" binding:"required"`
	Password2 string `json:"password2" binding:"required"`
}

// UpdateMemberRequest changes only the provided fields
type UpdateMemberRequest struct {
	FullName *string `json:"fullName" binding:"omitempty,max=255"`
	Email    *string `json:"email" binding:"omitempty,email"`
}

type MemberListResponse struct {
	Members []UserResponse `json:"members"`
	PageMeta
}
