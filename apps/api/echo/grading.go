package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/azedu/quizdesk/core/quiz"
	"github.com/azedu/quizdesk/core/user"
)

type gradingApi struct {
	deps ServerDeps
}

func registerGradingAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := gradingApi{deps: deps}

	gg := g.Group("/grading", jwt, roleGuard(user.RoleAdmin, user.RoleTeacher))
	gg.GET("/results", api.results)
}

var resultOrderings = map[string]string{
	"submitted_at": "r.submitted_at",
	"total_score":  "r.total_score",
}

// results lists all submissions; teachers only see their own quizzes.
func (api *gradingApi) results(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var filter *quiz.QueryFilter
	if ctxUsr.IsTeacher() {
		filter = &quiz.QueryFilter{TeacherID: ctxUsr.ID}
	}
	ordering := new(Ordering)
	ordering.Bind(ctx, resultOrderings)

	results, err := api.deps.QuizSvc.Results(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying results")
	}
	if results == nil {
		results = []quiz.Result{}
	}
	return ctx.JSON(http.StatusOK, results)
}
