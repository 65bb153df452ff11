package echoapi

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/padhaihq/padhai/core"
	"github.com/padhaihq/padhai/core/user"
)

type adminApi struct {
	conf     *core.Config
	svc      user.Service
	validate *validator.Validate
}

func registerAdminAPI(g *echo.Group, conf *core.Config, svc user.Service, validate *validator.Validate) {
	api := adminApi{conf: conf, svc: svc, validate: validate}

	g.GET("/users", api.listUsers)
	g.PATCH("/users/:id/role", api.changeRole)
	g.PATCH("/users/:id/premium", api.togglePremium)
	g.PATCH("/users/:id/status", api.toggleStatus)
}

// listUsers returns one page of users matching the query filters.
// An empty page is a valid, non-error result.
func (api *adminApi) listUsers(ctx echo.Context) error {
	filter := new(user.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	filter.PageSize = api.conf.Server.PageSize // page size is fixed, not caller-controlled

	users, pagination, err := api.svc.Filter(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	if users == nil {
		users = []user.User{}
	}
	return ctx.JSON(http.StatusOK, ListUsersResponse{Users: users, Pagination: pagination})
}

func (api *adminApi) changeRole(ctx echo.Context) error {
	var data RoleRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RoleRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	actor, err := getContextUser(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	usr, err := api.svc.ChangeRole(ctx.Request().Context(), actor, ctx.Param("id"), data.Role)
	if err != nil {
		return errors.Wrap(err, "changing user role")
	}
	return ctx.JSON(http.StatusOK, MutationResponse{
		Success: true,
		Message: fmt.Sprintf("User role changed to %s", usr.Role),
	})
}

func (api *adminApi) togglePremium(ctx echo.Context) error {
	var data PremiumRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PremiumRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	actor, err := getContextUser(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	usr, err := api.svc.SetPremium(ctx.Request().Context(), actor, ctx.Param("id"), *data.IsPaidUser)
	if err != nil {
		return errors.Wrap(err, "toggling premium")
	}

	msg := "Premium status disabled"
	if usr.IsPaidUser {
		msg = "Premium status enabled"
	}
	return ctx.JSON(http.StatusOK, MutationResponse{Success: true, Message: msg})
}

func (api *adminApi) toggleStatus(ctx echo.Context) error {
	var data StatusRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StatusRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	actor, err := getContextUser(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	usr, err := api.svc.SetDisabled(ctx.Request().Context(), actor, ctx.Param("id"), *data.IsDisabled)
	if err != nil {
		return errors.Wrap(err, "toggling account status")
	}

	msg := "Account enabled"
	if usr.IsDisabled {
		msg = "Account disabled"
	}
	return ctx.JSON(http.StatusOK, MutationResponse{Success: true, Message: msg})
}

type (
	ListUsersResponse struct {
		Users      []user.User     `json:"users"`
		Pagination user.Pagination `json:"pagination"`
	}

	RoleRequest struct {
		Role string `json:"role" validate:"required"`
	}

	PremiumRequest struct {
		IsPaidUser *bool `json:"isPaidUser" validate:"required"`
	}

	StatusRequest struct {
		IsDisabled *bool `json:"isDisabled" validate:"required"`
	}

	MutationResponse struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
)

func (rr *RoleRequest) Validate(validate *validator.Validate) error {
	rr.Role = core.CleanString(rr.Role, true /* lower */)
	return validate.Struct(rr)
}
