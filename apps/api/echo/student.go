package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/hostel/core"
	"github.com/trezcool/hostel/core/occupancy"
	"github.com/trezcool/hostel/core/student"
)

const (
	msgDetailsSaved = "student details saved"
	msgSaveFailed   = "server error while saving"
)

type studentApi struct {
	svc    *student.Service
	occSvc *occupancy.Service
}

func registerStudentAPI(g *echo.Group, svc *student.Service, occSvc *occupancy.Service) {
	api := studentApi{svc: svc, occSvc: occSvc}

	sg := g.Group("/students")
	sg.GET("", api.query, managerMiddleware())
	sg.GET("/:id", api.retrieve, selfOrManagerMiddleware("id"))
	sg.PUT("/:id/details", api.saveDetails, managerMiddleware())
}

// Handlers

func (api *studentApi) query(ctx echo.Context) error {
	filter := new(student.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []student.Profile{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	profiles, err := api.svc.Query(ctx.Request().Context(), *filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying student profiles")
	}
	return ctx.JSON(http.StatusOK, profiles)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	p, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting student profile")
	}
	return ctx.JSON(http.StatusOK, p)
}

// saveDetails creates or updates the student's profile and moves them to the submitted room.
// Client errors keep their own status; anything else surfaces as a generic save failure.
func (api *studentApi) saveDetails(ctx echo.Context) error {
	var data student.Details
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to student.Details")
	}

	if _, _, err := api.occSvc.SaveDetails(ctx.Request().Context(), ctx.Param("id"), data); err != nil {
		switch errors.Cause(err).(type) {
		case validator.ValidationErrors, *core.ValidationError, *core.ConflictError:
			return err
		}
		return newPublicError(http.StatusInternalServerError, msgSaveFailed, err)
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: msgDetailsSaved})
}
