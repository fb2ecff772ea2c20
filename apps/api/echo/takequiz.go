package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/azedu/quizdesk/core"
	"github.com/azedu/quizdesk/core/quiz"
	"github.com/azedu/quizdesk/core/user"
)

type takeQuizApi struct {
	deps ServerDeps
}

func registerTakeQuizAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := takeQuizApi{deps: deps}

	tg := g.Group("/take-quiz", jwt, roleGuard(user.RoleStudent))
	tg.GET("/available", api.available)
	tg.POST("/submit", api.submit)
}

func (api *takeQuizApi) available(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if ctxUsr.GroupID == nil {
		return ctx.JSON(http.StatusOK, []quiz.Quiz{})
	}

	quizzes, err := api.deps.QuizSvc.Available(ctx.Request().Context(), ctxUsr.ID, *ctxUsr.GroupID)
	if err != nil {
		return errors.Wrap(err, "querying available quizzes")
	}
	if quizzes == nil {
		quizzes = []quiz.Quiz{}
	}
	return ctx.JSON(http.StatusOK, quizzes)
}

func (api *takeQuizApi) submit(ctx echo.Context) error {
	var data quiz.Submission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Submission")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	res, err := api.deps.QuizSvc.Submit(ctx.Request().Context(), ctxUsr.ID, data)
	if err != nil {
		switch errors.Cause(err) {
		case quiz.ErrNotFound:
			return errHttpNotFound
		case quiz.ErrNotOpen:
			return core.NewValidationError(quiz.ErrNotOpen)
		case quiz.ErrAlreadyTaken:
			return core.NewValidationError(quiz.ErrAlreadyTaken)
		}
		return errors.Wrap(err, "submitting quiz")
	}
	return ctx.JSON(http.StatusCreated, res)
}
