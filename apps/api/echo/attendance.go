package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/hostel/core/attendance"
)

type attendanceApi struct {
	svc *attendance.Service
}

func registerAttendanceAPI(g *echo.Group, svc *attendance.Service) {
	api := attendanceApi{svc: svc}

	ag := g.Group("/attendance")
	ag.POST("", api.mark, managerMiddleware())
	ag.GET("", api.query)
}

// Handlers

func (api *attendanceApi) mark(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context principal")
	}

	var data attendance.Mark
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to attendance.Mark")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	records, err := api.svc.Mark(ctx.Request().Context(), p.ID, data)
	if err != nil {
		return errors.Wrap(err, "marking attendance")
	}
	return ctx.JSON(http.StatusOK, records)
}

// query lists attendance for wardens and admins, and only their own for students.
func (api *attendanceApi) query(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context principal")
	}

	filter := new(attendance.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to attendance.QueryFilter")
	}
	if err := filter.Validate(); err != nil {
		return err
	}
	if !p.CanManageHostel() {
		filter.StudentID = p.ID
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	records, err := api.svc.Query(ctx.Request().Context(), *filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying attendance")
	}
	return ctx.JSON(http.StatusOK, records)
}
