package services

import (
	"testing"
	"time"

	"github.com/bugpredictor/database"
	"github.com/bugpredictor/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboard(t *testing.T) {
	setupDB(t)
	svc := NewDashboardService()

	apollo := createProject(t, "Apollo")
	gemini := createProject(t, "Gemini")
	owner := createUser(t, "owner", models.RoleProjectOwner, &apollo)
	alice := createUser(t, "alice", models.RoleTeamMember, &apollo)
	bob := createUser(t, "bob", models.RoleTeamMember, &apollo)
	carol := createUser(t, "carol", models.RoleTeamMember, &gemini)

	createBug(t, "a1", apollo, alice, alice)
	createBug(t, "a2", apollo, owner, alice)
	fixed := createBug(t, "a3", apollo, owner, bob)
	createBug(t, "a4", apollo, owner, nil)
	createBug(t, "g1", gemini, carol, carol)
	require.NoError(t, database.DB.Model(&fixed).Updates(map[string]interface{}{
		"status":   models.StatusFixed,
		"severity": models.SeverityBlocker,
	}).Error)

	resp, err := svc.Get(owner)
	require.NoError(t, err)

	require.NotNil(t, resp.Project)
	assert.Equal(t, "Apollo", resp.Project.Name)
	assert.Equal(t, int64(4), resp.TotalBugs)
	assert.Equal(t, int64(3), resp.ByStatus["NEW"])
	assert.Equal(t, int64(1), resp.ByStatus["FIXED"])
	assert.Equal(t, int64(0), resp.ByStatus["OPEN"])
	assert.Equal(t, int64(4), resp.ByPriority["MEDIUM"])
	assert.Equal(t, int64(1), resp.BySeverity["BLOCKER"])
	assert.Equal(t, int64(3), resp.BySeverity["NORMAL"])
	assert.Equal(t, int64(2), resp.MemberCount)
	assert.Len(t, resp.RecentBugs, 4)

	perAssignee := map[string]int64{}
	for _, a := range resp.ByAssignee {
		key := "unassigned"
		if a.Assignee != nil {
			key = a.Assignee.Username
		}
		perAssignee[key] = a.Count
	}
	assert.Equal(t, map[string]int64{"alice": 2, "bob": 1, "unassigned": 1}, perAssignee)

	require.Len(t, resp.CreatedPerDay, 14)
	assert.Equal(t, time.Now().Format("2006-01-02"), resp.CreatedPerDay[13].Date)
	assert.Equal(t, int64(4), resp.CreatedPerDay[13].Count)

	mine, err := svc.Get(bob)
	require.NoError(t, err)
	assert.Equal(t, int64(1), mine.TotalBugs)
	assert.Equal(t, int64(1), mine.MemberCount)
}
