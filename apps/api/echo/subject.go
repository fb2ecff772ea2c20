package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/azedu/quizdesk/core"
	"github.com/azedu/quizdesk/core/subject"
	"github.com/azedu/quizdesk/core/user"
)

type subjectApi struct {
	deps ServerDeps
}

func registerSubjectAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := subjectApi{deps: deps}

	sg := g.Group("/subjects", jwt)
	// teachers read their own subjects, admin reads all; writes are admin-only
	sg.GET("", api.query, roleGuard(user.RoleAdmin, user.RoleTeacher))
	sg.POST("", api.create, roleGuard(user.RoleAdmin))
	sg.PUT("/:id", api.update, roleGuard(user.RoleAdmin))
	sg.DELETE("/:id", api.destroy, roleGuard(user.RoleAdmin))
}

var subjectOrderings = map[string]string{
	"name":       "s.name",
	"created_at": "s.created_at",
}

func (api *subjectApi) query(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var filter *subject.QueryFilter
	if ctxUsr.IsTeacher() {
		filter = &subject.QueryFilter{TeacherID: ctxUsr.ID}
	}
	ordering := new(Ordering)
	ordering.Bind(ctx, subjectOrderings)

	subs, err := api.deps.SubjectSvc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying subjects")
	}
	if subs == nil {
		subs = []subject.Subject{}
	}
	return ctx.JSON(http.StatusOK, subs)
}

func (api *subjectApi) create(ctx echo.Context) error {
	var data subject.NewSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubject")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	sub, err := api.deps.SubjectSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		return wrapSubjectErr(err, "creating subject")
	}
	return ctx.JSON(http.StatusCreated, sub)
}

func (api *subjectApi) update(ctx echo.Context) error {
	var data subject.NewSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubject")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	sub, err := api.deps.SubjectSvc.Update(ctx.Request().Context(), intParam(ctx, "id"), data)
	if err != nil {
		if errors.Cause(err) == subject.ErrNotFound {
			return errHttpNotFound
		}
		return wrapSubjectErr(err, "updating subject")
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *subjectApi) destroy(ctx echo.Context) error {
	if err := api.deps.SubjectSvc.Delete(ctx.Request().Context(), intParam(ctx, "id")); err != nil {
		if errors.Cause(err) == subject.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting subject")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func wrapSubjectErr(err error, msg string) error {
	switch errors.Cause(err) {
	case subject.ErrNoGroup:
		return core.NewValidationError(nil, core.FieldError{Field: "group_id", Error: subject.ErrNoGroup.Error()})
	case subject.ErrNoTeacher:
		return core.NewValidationError(nil, core.FieldError{Field: "teacher_id", Error: subject.ErrNoTeacher.Error()})
	}
	return errors.Wrap(err, msg)
}
