package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/hostel/core/complaint"
	"github.com/trezcool/hostel/core/user"
)

type complaintApi struct {
	svc *complaint.Service
}

func registerComplaintAPI(g *echo.Group, svc *complaint.Service) {
	api := complaintApi{svc: svc}

	cg := g.Group("/complaints")
	cg.POST("", api.create, roleMiddleware(user.RoleStudent))
	cg.GET("", api.query)
	cg.GET("/:id", api.retrieve)
	cg.PATCH("/:id", api.update, managerMiddleware())
}

// Handlers

func (api *complaintApi) create(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context principal")
	}

	var data complaint.NewComplaint
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to complaint.NewComplaint")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	c, err := api.svc.Create(ctx.Request().Context(), p.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating complaint")
	}
	return ctx.JSON(http.StatusCreated, c)
}

// query lists every complaint for wardens and admins, and only their own for students.
func (api *complaintApi) query(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context principal")
	}

	filter := new(complaint.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []complaint.Complaint{})
	}
	filter.Clean()
	if !p.CanManageHostel() {
		filter.StudentID = p.ID
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	complaints, err := api.svc.Query(ctx.Request().Context(), *filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying complaints")
	}
	return ctx.JSON(http.StatusOK, complaints)
}

func (api *complaintApi) retrieve(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context principal")
	}

	c, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting complaint")
	}
	if c.StudentID != p.ID && !p.CanManageHostel() {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *complaintApi) update(ctx echo.Context) error {
	var data complaint.UpdateComplaint
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to complaint.UpdateComplaint")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	c, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating complaint")
	}
	return ctx.JSON(http.StatusOK, c)
}
