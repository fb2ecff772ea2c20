package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/azedu/quizdesk/core/group"
	"github.com/azedu/quizdesk/core/user"
)

type groupApi struct {
	deps ServerDeps
}

func registerGroupAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := groupApi{deps: deps}

	gg := g.Group("/groups", jwt, roleGuard(user.RoleAdmin))
	gg.GET("", api.query)
	gg.POST("", api.create)
	gg.PUT("/:id", api.update)
	gg.DELETE("/:id", api.destroy)
}

var groupOrderings = map[string]string{
	"name":       "g.name",
	"department": "d.name",
	"created_at": "g.created_at",
}

func (api *groupApi) query(ctx echo.Context) error {
	ordering := new(Ordering)
	ordering.Bind(ctx, groupOrderings)

	grps, err := api.deps.GroupSvc.Query(ctx.Request().Context(), ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying groups")
	}
	if grps == nil {
		grps = []group.Group{}
	}
	return ctx.JSON(http.StatusOK, grps)
}

func (api *groupApi) create(ctx echo.Context) error {
	var data group.NewGroup
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGroup")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	grp, err := api.deps.GroupSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating group")
	}
	return ctx.JSON(http.StatusCreated, grp)
}

func (api *groupApi) update(ctx echo.Context) error {
	var data group.NewGroup
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGroup")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	grp, err := api.deps.GroupSvc.Update(ctx.Request().Context(), intParam(ctx, "id"), data)
	if err != nil {
		if errors.Cause(err) == group.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating group")
	}
	return ctx.JSON(http.StatusOK, grp)
}

func (api *groupApi) destroy(ctx echo.Context) error {
	if err := api.deps.GroupSvc.Delete(ctx.Request().Context(), intParam(ctx, "id")); err != nil {
		switch errors.Cause(err) {
		case group.ErrNotFound:
			return errHttpNotFound
		case group.ErrInUse:
			return echo.NewHTTPError(http.StatusConflict, group.ErrInUse.Error())
		}
		return errors.Wrap(err, "deleting group")
	}
	return ctx.NoContent(http.StatusNoContent)
}
