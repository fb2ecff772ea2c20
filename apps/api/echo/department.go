package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/azedu/quizdesk/core/department"
	"github.com/azedu/quizdesk/core/user"
)

type departmentApi struct {
	deps ServerDeps
}

func registerDepartmentAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := departmentApi{deps: deps}

	dg := g.Group("/departments", jwt, roleGuard(user.RoleAdmin))
	dg.GET("", api.query)
	dg.POST("", api.create)
	dg.PUT("/:id", api.update)
	dg.DELETE("/:id", api.destroy)
}

var departmentOrderings = map[string]string{
	"name":       "name",
	"created_at": "created_at",
}

func (api *departmentApi) query(ctx echo.Context) error {
	ordering := new(Ordering)
	ordering.Bind(ctx, departmentOrderings)

	deps, err := api.deps.DepartmentSvc.Query(ctx.Request().Context(), ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying departments")
	}
	if deps == nil {
		deps = []department.Department{}
	}
	return ctx.JSON(http.StatusOK, deps)
}

func (api *departmentApi) create(ctx echo.Context) error {
	var data department.NewDepartment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewDepartment")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	dep, err := api.deps.DepartmentSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating department")
	}
	return ctx.JSON(http.StatusCreated, dep)
}

func (api *departmentApi) update(ctx echo.Context) error {
	var data department.NewDepartment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewDepartment")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	dep, err := api.deps.DepartmentSvc.Update(ctx.Request().Context(), intParam(ctx, "id"), data)
	if err != nil {
		if errors.Cause(err) == department.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating department")
	}
	return ctx.JSON(http.StatusOK, dep)
}

func (api *departmentApi) destroy(ctx echo.Context) error {
	if err := api.deps.DepartmentSvc.Delete(ctx.Request().Context(), intParam(ctx, "id")); err != nil {
		switch errors.Cause(err) {
		case department.ErrNotFound:
			return errHttpNotFound
		case department.ErrInUse:
			return echo.NewHTTPError(http.StatusConflict, department.ErrInUse.Error())
		}
		return errors.Wrap(err, "deleting department")
	}
	return ctx.NoContent(http.StatusNoContent)
}
