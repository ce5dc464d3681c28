package v1

import (
	"github.com/bugpredictor/services"
	"github.com/gin-gonic/gin"
)

// DashboardController serves the chart data of the home page
type DashboardController struct {
	dashboardService *services.DashboardService
}

func NewDashboardController(dashboardService *services.DashboardService) *DashboardController {
	return &DashboardController{dashboardService: dashboardService}
}

func (d *DashboardController) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/dashboard", d.GetDashboard)
}

// GetDashboard godoc
// @Summary Get dashboard charts
// @Description Counts by status, priority, severity and assignee, bugs created per day over two weeks, member count and recent bugs, all limited to bugs the user can see
// @Tags dashboard
// @Produce json
// @Success 200 {object} dto.DashboardResponse
// @Router /dashboard [get]
func (d *DashboardController) GetDashboard(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	resp, err := d.dashboardService.Get(user)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, resp)
}
