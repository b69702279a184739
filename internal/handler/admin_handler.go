package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront/internal/model"
	"storefront/internal/service"
)

// Messages returned by the admin endpoints.
const (
	MsgDashboardRetrieved = "Dashboard stats retrieved successfully"
	MsgUsersRetrieved     = "Users retrieved successfully"
	MsgUserRetrieved      = "User retrieved successfully"
	MsgUserUpdated        = "User updated successfully"
	MsgUserDeleted        = "User deleted successfully"
)

// DashboardStats godoc
// @Summary Admin dashboard
// @Description Active user and product counts, category count and the five newest products and users.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=model.Dashboard}
// @Failure 401 {object} Response
// @Failure 403 {object} Response
// @Router /admin/api/stats [get]
func DashboardStats(svc service.AdminService) echo.HandlerFunc {
	return func(c echo.Context) error {
		dashboard, err := svc.Dashboard(c.Request().Context())
		if err != nil {
			return err
		}
		return respond(c, http.StatusOK, MsgDashboardRetrieved, dashboard)
	}
}

// ListUsers godoc
// @Summary List active users
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} Response{data=[]model.User}
// @Failure 401 {object} Response
// @Failure 403 {object} Response
// @Router /admin/api/users [get]
func ListUsers(svc service.UserService) echo.HandlerFunc {
	return func(c echo.Context) error {
		result, err := svc.List(c.Request().Context(), pageFromQuery(c))
		if err != nil {
			return err
		}
		return respondPage(c, MsgUsersRetrieved, result.Items, result.Pagination)
	}
}

// GetUser godoc
// @Summary Get user by id
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} Response{data=model.User}
// @Failure 400 {object} Response
// @Failure 404 {object} Response
// @Router /admin/api/users/{id} [get]
func GetUser(svc service.UserService) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}
		user, err := svc.Get(c.Request().Context(), id)
		if err != nil {
			return err
		}
		return respond(c, http.StatusOK, MsgUserRetrieved, user)
	}
}

// UpdateUser godoc
// @Summary Update user
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param user body model.UserPatch true "Fields to change"
// @Success 200 {object} Response{data=model.User}
// @Failure 400 {object} Response
// @Failure 404 {object} Response
// @Router /admin/api/users/{id} [put]
func UpdateUser(svc service.UserService) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}
		var patch model.UserPatch
		if err := bind(c, &patch); err != nil {
			return err
		}
		user, err := svc.Update(c.Request().Context(), id, patch)
		if err != nil {
			return err
		}
		return respond(c, http.StatusOK, MsgUserUpdated, user)
	}
}

// DeleteUser godoc
// @Summary Delete user
// @Description Soft delete: the user can no longer sign in and is hidden from listings.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Failure 404 {object} Response
// @Router /admin/api/users/{id} [delete]
func DeleteUser(svc service.UserService) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}
		if err := svc.Delete(c.Request().Context(), id); err != nil {
			return err
		}
		return respond(c, http.StatusOK, MsgUserDeleted, nil)
	}
}
