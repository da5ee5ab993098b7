package http

import (
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
)

func pathUUID(c echo.Context, name string) (kernel.UUID, error) {
	var raw string
	err := runtime.BindStyledParameterWithOptions("simple", name, c.Param(name), &raw, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	id, err := kernel.UUIDFromString(raw)
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return id, nil
}

// orderID binds the {id} segment shared by every delivery route.
func orderID(c echo.Context) (kernel.UUID, error) {
	return pathUUID(c, "id")
}

// queryParam binds an optional form-style query parameter; dest must be a
// pointer to a pointer.
func queryParam(c echo.Context, name string, dest any) error {
	if err := runtime.BindQueryParameter("form", true, false, name, c.QueryParams(), dest); err != nil {
		return errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return nil
}

func page(c echo.Context) (limit, offset int, err error) {
	var l, o *int
	if err = queryParam(c, "limit", &l); err != nil {
		return 0, 0, err
	}
	if err = queryParam(c, "offset", &o); err != nil {
		return 0, 0, err
	}
	if l != nil {
		limit = *l
	}
	if o != nil {
		offset = *o
	}
	return limit, offset, nil
}

// bind decodes the JSON body into dest.
func bind(c echo.Context, dest any) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, dest); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("body", err)
	}
	return nil
}
