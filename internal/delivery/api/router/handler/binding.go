package handler

import (
	"foodbridge/internal/delivery/api/middleware"
	"foodbridge/internal/delivery/api/response"
	"foodbridge/internal/delivery/api/validator"
	"foodbridge/internal/domain/entity"
	domainerrors "foodbridge/internal/domain/errors"
	"foodbridge/internal/errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// MessageResponse is the payload of operations with nothing else to return.
type MessageResponse struct {
	Message string `json:"message"`
}

// errResponded signals that a helper already wrote the response.
var errResponded = errors.New("response already written")

// bindAndValidate decodes the request body into req and checks its tags.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		_ = response.BadRequest(c, "INVALID_INPUT", "Malformed request body")

		return errResponded
	}

	if err := c.Validate(req); err != nil {
		if fieldErrs, ok := errors.AsType[validator.ValidationErrors](err); ok {
			_ = response.ValidationError(c, fieldErrs)
		} else {
			_ = response.BadRequest(c, domainerrors.ErrValidationFailed.ErrorCode(), err.Error())
		}

		return errResponded
	}

	return nil
}

// done converts a helper's outcome into the handler's return value.
func done(err error) error {
	if errors.Is(err, errResponded) {
		return nil
	}

	return err
}

func pathID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		_ = response.BadRequest(c, "INVALID_ID", "Invalid "+name)

		return uuid.Nil, errResponded
	}

	return id, nil
}

func actorOf(c echo.Context) (entity.Actor, error) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		_ = response.AppError(c, domainerrors.ErrUnauthenticated)

		return nil, errResponded
	}

	return actor, nil
}

func restaurantOf(c echo.Context) (entity.RestaurantActor, error) {
	actor, err := actorOf(c)
	if err != nil {
		return entity.RestaurantActor{}, err
	}

	restaurant, ok := actor.(entity.RestaurantActor)
	if !ok {
		_ = response.AppError(c, domainerrors.ErrForbidden)

		return entity.RestaurantActor{}, errResponded
	}

	return restaurant, nil
}

func ngoOf(c echo.Context) (entity.NGOActor, error) {
	actor, err := actorOf(c)
	if err != nil {
		return entity.NGOActor{}, err
	}

	ngo, ok := actor.(entity.NGOActor)
	if !ok {
		_ = response.AppError(c, domainerrors.ErrForbidden)

		return entity.NGOActor{}, errResponded
	}

	return ngo, nil
}
