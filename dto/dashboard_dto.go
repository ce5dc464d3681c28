package dto

// DashboardResponse holds the chart data of the dashboard
type DashboardResponse struct {
	Project       *ProjectResponse `json:"project"`
	TotalBugs     int64            `json:"totalBugs"`
	ByStatus      map[string]int64 `json:"byStatus"`
	ByPriority    map[string]int64 `json:"byPriority"`
	BySeverity    map[string]int64 `json:"bySeverity"`
	ByAssignee    []AssigneeCount  `json:"byAssignee"`
	CreatedPerDay []DayCount       `json:"createdPerDay"`
	MemberCount   int64            `json:"memberCount"`
	RecentBugs    []BugResponse    `json:"recentBugs"`
}

// AssigneeCount is one bar of the per-assignee chart. Unassigned bugs have no assignee.
type AssigneeCount struct {
	Assignee *UserSummary `json:"assignee"`
	Count    int64        `json:"count"`
}

type DayCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}
