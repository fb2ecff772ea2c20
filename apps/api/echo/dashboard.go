package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/azedu/quizdesk/core/quiz"
	"github.com/azedu/quizdesk/core/user"
)

type dashboardApi struct {
	deps ServerDeps
}

func registerDashboardAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := dashboardApi{deps: deps}

	dg := g.Group("/dashboard", jwt)

	ag := dg.Group("/admin", roleGuard(user.RoleAdmin))
	ag.GET("/overview", api.adminOverview)
	ag.GET("/recent-results", api.recentResults)

	sg := dg.Group("/student", roleGuard(user.RoleStudent))
	sg.GET("/overview", api.studentOverview)
}

func (api *dashboardApi) adminOverview(ctx echo.Context) error {
	ov, err := api.deps.DashboardSvc.AdminOverview(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "building admin overview")
	}
	return ctx.JSON(http.StatusOK, ov)
}

func (api *dashboardApi) recentResults(ctx echo.Context) error {
	limit, _ := strconv.Atoi(ctx.QueryParam("limit"))

	results, err := api.deps.DashboardSvc.RecentResults(ctx.Request().Context(), limit)
	if err != nil {
		return errors.Wrap(err, "querying recent results")
	}
	if results == nil {
		results = []quiz.Result{}
	}
	return ctx.JSON(http.StatusOK, results)
}

func (api *dashboardApi) studentOverview(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var groupID int
	if ctxUsr.GroupID != nil {
		groupID = *ctxUsr.GroupID
	}
	ov, err := api.deps.DashboardSvc.StudentOverview(ctx.Request().Context(), ctxUsr.ID, groupID)
	if err != nil {
		return errors.Wrap(err, "building student overview")
	}
	return ctx.JSON(http.StatusOK, ov)
}
