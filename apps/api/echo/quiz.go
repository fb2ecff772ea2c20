package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/azedu/quizdesk/core/quiz"
	"github.com/azedu/quizdesk/core/user"
)

type quizApi struct {
	deps ServerDeps
}

func registerQuizAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := quizApi{deps: deps}

	qg := g.Group("/quizzes", jwt)

	// student result history; registered before /:id routes on purpose
	qg.GET("/my-results", api.myResults, roleGuard(user.RoleStudent))

	teachers := roleGuard(user.RoleAdmin, user.RoleTeacher)
	qg.GET("", api.query, teachers)
	qg.POST("", api.create, teachers)
	qg.GET("/:id", api.retrieve, teachers)
	qg.PUT("/:id", api.update, teachers)
	qg.DELETE("/:id", api.destroy, teachers)
	qg.GET("/results/:quizId", api.resultsForQuiz, teachers)
	qg.GET("/results/detail/:resultId", api.resultDetail, teachers)
}

// ownQuiz fetches the quiz and enforces teacher ownership; admins pass.
func (api *quizApi) ownQuiz(ctx echo.Context, id int) (quiz.Quiz, error) {
	qz, err := api.deps.QuizSvc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == quiz.ErrNotFound {
			return quiz.Quiz{}, errHttpNotFound
		}
		return quiz.Quiz{}, errors.Wrap(err, "finding quiz by ID")
	}

	ctxUsr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return quiz.Quiz{}, errors.Wrap(err, "getting context user")
	}
	if ctxUsr.IsTeacher() && qz.TeacherID != ctxUsr.ID {
		return quiz.Quiz{}, errHttpForbidden
	}
	return qz, nil
}

var quizOrderings = map[string]string{
	"title":      "q.title",
	"start_time": "q.start_time",
	"end_time":   "q.end_time",
	"created_at": "q.created_at",
}

func (api *quizApi) query(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var filter *quiz.QueryFilter
	if ctxUsr.IsTeacher() {
		filter = &quiz.QueryFilter{TeacherID: ctxUsr.ID}
	}
	ordering := new(Ordering)
	ordering.Bind(ctx, quizOrderings)

	quizzes, err := api.deps.QuizSvc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying quizzes")
	}
	if quizzes == nil {
		quizzes = []quiz.Quiz{}
	}
	return ctx.JSON(http.StatusOK, quizzes)
}

func (api *quizApi) create(ctx echo.Context) error {
	var data quiz.NewQuiz
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewQuiz")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	qz, err := api.deps.QuizSvc.Create(ctx.Request().Context(), ctxUsr.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating quiz")
	}
	return ctx.JSON(http.StatusCreated, qz)
}

func (api *quizApi) retrieve(ctx echo.Context) error {
	qz, err := api.ownQuiz(ctx, intParam(ctx, "id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, qz)
}

func (api *quizApi) update(ctx echo.Context) error {
	qz, err := api.ownQuiz(ctx, intParam(ctx, "id"))
	if err != nil {
		return err
	}

	var data quiz.NewQuiz
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewQuiz")
	}
	if err = data.Validate(api.deps.Validate); err != nil {
		return err
	}

	qz, err = api.deps.QuizSvc.Update(ctx.Request().Context(), qz.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating quiz")
	}
	return ctx.JSON(http.StatusOK, qz)
}

func (api *quizApi) destroy(ctx echo.Context) error {
	qz, err := api.ownQuiz(ctx, intParam(ctx, "id"))
	if err != nil {
		return err
	}
	if err = api.deps.QuizSvc.Delete(ctx.Request().Context(), qz.ID); err != nil {
		return errors.Wrap(err, "deleting quiz")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *quizApi) resultsForQuiz(ctx echo.Context) error {
	qz, err := api.ownQuiz(ctx, intParam(ctx, "quizId"))
	if err != nil {
		return err
	}

	results, err := api.deps.QuizSvc.ResultsForQuiz(ctx.Request().Context(), qz.ID)
	if err != nil {
		return errors.Wrap(err, "querying quiz results")
	}
	if results == nil {
		results = []quiz.Result{}
	}
	return ctx.JSON(http.StatusOK, results)
}

func (api *quizApi) resultDetail(ctx echo.Context) error {
	res, err := api.deps.QuizSvc.ResultDetail(ctx.Request().Context(), intParam(ctx, "resultId"))
	if err != nil {
		if errors.Cause(err) == quiz.ErrResultNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding result by ID")
	}

	// teacher ownership goes through the parent quiz
	if _, err = api.ownQuiz(ctx, res.QuizID); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *quizApi) myResults(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	results, err := api.deps.QuizSvc.MyResults(ctx.Request().Context(), claims.UserID())
	if err != nil {
		return errors.Wrap(err, "querying student results")
	}
	if results == nil {
		results = []quiz.Result{}
	}
	return ctx.JSON(http.StatusOK, results)
}
