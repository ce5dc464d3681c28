package services

import (
	"time"

	"github.com/bugpredictor/dto"
	"github.com/bugpredictor/models"
	"github.com/bugpredictor/repositories"
)

const (
	dashboardDays   = 14
	dashboardRecent = 5
)

// DashboardService aggregates chart data over the bugs a user can see
type DashboardService struct {
	bugs     *repositories.BugRepository
	users    *repositories.UserRepository
	projects *repositories.ProjectRepository
	now      func() time.Time
}

func NewDashboardService() *DashboardService {
	return &DashboardService{
		bugs:     repositories.NewBugRepository(),
		users:    repositories.NewUserRepository(),
		projects: repositories.NewProjectRepository(),
		now:      time.Now,
	}
}

// Get builds the dashboard of viewer
func (s *DashboardService) Get(viewer *models.User) (dto.DashboardResponse, error) {
	var resp dto.DashboardResponse
	var err error

	if viewer.ProjectID != nil {
		project, err := s.projects.FindByID(*viewer.ProjectID)
		if err != nil && !isNotFound(err) {
			return resp, internal(err)
		}
		if err == nil {
			p := dto.NewProjectResponse(project)
			resp.Project = &p
		}
	}

	if resp.TotalBugs, err = s.bugs.CountVisible(viewer); err != nil {
		return resp, internal(err)
	}

	statusKeys := make([]string, 0, len(models.BugStatuses))
	for _, v := range models.BugStatuses {
		statusKeys = append(statusKeys, string(v))
	}
	if resp.ByStatus, err = s.grouped(viewer, "status", statusKeys); err != nil {
		return resp, err
	}

	priorityKeys := make([]string, 0, len(models.Priorities))
	for _, v := range models.Priorities {
		priorityKeys = append(priorityKeys, string(v))
	}
	if resp.ByPriority, err = s.grouped(viewer, "priority", priorityKeys); err != nil {
		return resp, err
	}

	severityKeys := make([]string, 0, len(models.Severities))
	for _, v := range models.Severities {
		severityKeys = append(severityKeys, string(v))
	}
	if resp.BySeverity, err = s.grouped(viewer, "severity", severityKeys); err != nil {
		return resp, err
	}

	if resp.ByAssignee, err = s.byAssignee(viewer); err != nil {
		return resp, err
	}
	if resp.CreatedPerDay, err = s.createdPerDay(viewer); err != nil {
		return resp, err
	}
	if resp.MemberCount, err = s.users.CountVisible(viewer, models.RoleTeamMember); err != nil {
		return resp, internal(err)
	}

	recent, err := s.bugs.Recent(viewer, dashboardRecent)
	if err != nil {
		return resp, internal(err)
	}
	resp.RecentBugs = dto.NewBugListItems(recent)
	return resp, nil
}

// grouped counts bugs per value of column, reporting zero for absent keys
func (s *DashboardService) grouped(viewer *models.User, column string, keys []string) (map[string]int64, error) {
	rows, err := s.bugs.CountGrouped(viewer, column)
	if err != nil {
		return nil, internal(err)
	}
	counts := make(map[string]int64, len(keys))
	for _, k := range keys {
		counts[k] = 0
	}
	for _, row := range rows {
		if row.GroupKey != nil {
			counts[*row.GroupKey] += row.Total
		}
	}
	return counts, nil
}

func (s *DashboardService) byAssignee(viewer *models.User) ([]dto.AssigneeCount, error) {
	rows, err := s.bugs.CountGrouped(viewer, "assigned_to_id")
	if err != nil {
		return nil, internal(err)
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.GroupKey != nil {
			ids = append(ids, *row.GroupKey)
		}
	}
	users, err := s.users.FindByIDs(ids)
	if err != nil {
		return nil, internal(err)
	}
	byID := make(map[string]*models.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}

	result := make([]dto.AssigneeCount, 0, len(rows))
	for _, row := range rows {
		entry := dto.AssigneeCount{Count: row.Total}
		if row.GroupKey != nil {
			entry.Assignee = dto.NewUserSummary(byID[*row.GroupKey])
		}
		result = append(result, entry)
	}
	return result, nil
}

// createdPerDay buckets creation dates of the last dashboardDays days, oldest first
func (s *DashboardService) createdPerDay(viewer *models.User) ([]dto.DayCount, error) {
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	first := today.AddDate(0, 0, -(dashboardDays - 1))

	// one extra day absorbs timezone differences in stored timestamps
	times, err := s.bugs.CreatedSince(viewer, first.AddDate(0, 0, -1))
	if err != nil {
		return nil, internal(err)
	}

	counts := make(map[string]int64, dashboardDays)
	for _, t := range times {
		t = t.In(now.Location())
		if t.Before(first) {
			continue
		}
		counts[t.Format("2006-01-02")]++
	}

	days := make([]dto.DayCount, 0, dashboardDays)
	for d := first; !d.After(today); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		days = append(days, dto.DayCount{Date: key, Count: counts[key]})
	}
	return days, nil
}
