package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/hostel/core/occupancy"
	"github.com/trezcool/hostel/core/room"
)

type roomApi struct {
	svc    *room.Service
	occSvc *occupancy.Service
}

func registerRoomAPI(g *echo.Group, svc *room.Service, occSvc *occupancy.Service) {
	api := roomApi{svc: svc, occSvc: occSvc}

	rg := g.Group("/rooms", managerMiddleware())
	rg.GET("", api.query)
	rg.POST("", api.create)
	rg.POST("/reconcile", api.reconcile)

	// detail endpoints
	rg.GET("/:number", api.retrieve)
	rg.PUT("/:number", api.update)
	rg.DELETE("/:number", api.destroy)
}

// Handlers

func (api *roomApi) create(ctx echo.Context) error {
	var data room.NewRoom
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to room.NewRoom")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	rm, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating room")
	}
	return ctx.JSON(http.StatusCreated, rm)
}

func (api *roomApi) query(ctx echo.Context) error {
	filter := new(room.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []room.Room{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	rooms, err := api.svc.Query(ctx.Request().Context(), *filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying rooms")
	}
	return ctx.JSON(http.StatusOK, rooms)
}

func (api *roomApi) retrieve(ctx echo.Context) error {
	rm, err := api.svc.Get(ctx.Request().Context(), ctx.Param("number"))
	if err != nil {
		return errors.Wrap(err, "getting room")
	}
	return ctx.JSON(http.StatusOK, rm)
}

func (api *roomApi) update(ctx echo.Context) error {
	var data room.UpdateRoom
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to room.UpdateRoom")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	rm, err := api.svc.Update(ctx.Request().Context(), ctx.Param("number"), data)
	if err != nil {
		return errors.Wrap(err, "updating room")
	}
	return ctx.JSON(http.StatusOK, rm)
}

func (api *roomApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("number")); err != nil {
		return errors.Wrap(err, "deleting room")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// reconcile recomputes every room's counters from the student profiles. `?dry_run=true` only reports.
func (api *roomApi) reconcile(ctx echo.Context) error {
	report, err := api.occSvc.Reconcile(ctx.Request().Context(), queryBool(ctx, dryRunParam))
	if err != nil {
		return errors.Wrap(err, "reconciling room occupancy")
	}
	return ctx.JSON(http.StatusOK, report)
}
