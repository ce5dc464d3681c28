package services

import (
	"testing"

	"github.com/bugpredictor/apperrors"
	"github.com/bugpredictor/dto"
	"github.com/bugpredictor/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComments(t *testing.T) {
	setupDB(t)
	svc := NewCommentService()

	apollo := createProject(t, "Apollo")
	owner := createUser(t, "owner", models.RoleProjectOwner, &apollo)
	alice := createUser(t, "alice", models.RoleTeamMember, &apollo)
	bob := createUser(t, "bob", models.RoleTeamMember, &apollo)
	bug := createBug(t, "discuss", apollo, alice, bob)
	hidden := createBug(t, "private", apollo, owner, nil)

	comment, err := svc.Create(alice, bug.ID, dto.CreateCommentRequest{Body: "Repro: **always**"})
	require.NoError(t, err)
	assert.Equal(t, alice.ID, comment.AuthorID)

	_, err = svc.Create(alice, bug.ID, dto.CreateCommentRequest{Body: "   "})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))

	_, err = svc.Create(alice, hidden.ID, dto.CreateCommentRequest{Body: "hi"})
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))

	list, err := svc.List(bob, bug.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Author)
	assert.Equal(t, "alice", list[0].Author.Username)
	assert.Contains(t, dto.NewCommentResponse(list[0]).BodyHTML, "<strong>always</strong>")

	err = svc.Delete(bob, bug.ID, comment.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))

	require.NoError(t, svc.Delete(owner, bug.ID, comment.ID))
	list, err = svc.List(alice, bug.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}
