package handler

import (
	"time"

	"crm-service/internal/model"
	"crm-service/internal/repository"
	"crm-service/pkg/apierror"
	"crm-service/pkg/logger"
	"crm-service/pkg/request"
	"crm-service/pkg/response"
	"crm-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// UserHandler serves users. Users carry no tenant column; membership lives in
// the user_tenants link table, created on POST and checked on every scoped
// read and write.
type UserHandler struct {
	users       *repository.UserRepository
	tenants     *repository.TenantRepository
	userTenants *repository.UserTenantRepository
}

func NewUserHandler(users *repository.UserRepository, tenants *repository.TenantRepository, userTenants *repository.UserTenantRepository) *UserHandler {
	return &UserHandler{users: users, tenants: tenants, userTenants: userTenants}
}

func (h *UserHandler) List(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("user", "list")

	params, err := request.QueryParams(c, listQueryParams)
	if err != nil {
		return err
	}
	tenantID := uint(params.Number("tenantId"))

	defer prometheus.TrackDBOperation("query")(time.Now())

	users, total, err := h.users.List(c.Request().Context(), params.Int("limit"), params.Int("offset"), tenantID)
	if err != nil {
		log.Error("Failed to list users", zap.Uint("tenant_id", tenantID), zap.Error(err))
		return apierror.Internal("Failed to fetch users")
	}

	items := make([]model.PublicUser, 0, len(users))
	for i := range users {
		items = append(items, users[i].Public())
	}

	log.Info("Users listed",
		zap.Int("count", len(items)),
		zap.Int64("total", total),
		zap.Uint("tenant_id", tenantID))
	return response.Fetch(c, "Successfully fetched users", model.PaginatedResponse[model.PublicUser]{Items: items, Total: total})
}

func (h *UserHandler) Get(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("user", "get")

	path, err := request.PathParams(c, "uuid")
	if err != nil {
		return err
	}
	params, err := request.QueryParams(c, tenantQueryParams)
	if err != nil {
		return err
	}
	tenantID := uint(params.Number("tenantId"))

	defer prometheus.TrackDBOperation("query")(time.Now())

	user, err := h.memberByExternalUUID(c, path["uuid"], tenantID)
	if err != nil {
		return err
	}
	if user == nil {
		log.Warn("User not found",
			zap.String("uuid", path["uuid"]),
			zap.Uint("tenant_id", tenantID))
		return apierror.BadRequest("User not found")
	}

	return response.Fetch(c, "Successfully fetched user", user.Public())
}

// Create persists a new user and links it to the tenant.
func (h *UserHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("user", "create")

	params, err := request.QueryParams(c, tenantQueryParams)
	if err != nil {
		return err
	}
	tenantID := uint(params.Number("tenantId"))

	payload, err := request.Body[model.UserPayload](c, model.UserRequiredFields...)
	if err != nil {
		return err
	}

	tenant, err := h.tenants.ByID(c.Request().Context(), tenantID)
	if err != nil {
		return apierror.Internal("Failed to fetch tenant")
	}
	if tenant == nil {
		log.Warn("User references unknown tenant", zap.Uint("tenant_id", tenantID))
		return apierror.BadRequest("Tenant does not exist")
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	user := payload.Entity()
	id, err := h.users.Insert(c.Request().Context(), &user)
	if err != nil {
		log.Error("Failed to create user", zap.Uint("tenant_id", tenantID), zap.Error(err))
		return apierror.Internal("Failed to create user")
	}

	if err := h.userTenants.Link(c.Request().Context(), id, tenantID); err != nil {
		log.Error("Failed to link user to tenant",
			zap.Uint("user_id", id),
			zap.Uint("tenant_id", tenantID),
			zap.Error(err))
		return apierror.Internal("Failed to create user")
	}

	created, err := h.users.ByID(c.Request().Context(), id)
	if err != nil {
		return apierror.Internal("Failed to fetch user")
	}
	if created == nil {
		return apierror.Internal("User not found")
	}

	log.Info("User created",
		zap.Uint("id", id),
		zap.String("uuid", created.ExternalUUID),
		zap.Uint("tenant_id", tenantID))
	return response.Persist(c, "User has been created", created.Public())
}

func (h *UserHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("user", "update")

	path, err := request.PathParams(c, "uuid")
	if err != nil {
		return err
	}
	params, err := request.QueryParams(c, tenantQueryParams)
	if err != nil {
		return err
	}
	tenantID := uint(params.Number("tenantId"))

	payload, err := request.Body[model.UserPayload](c, model.UserRequiredFields...)
	if err != nil {
		return err
	}

	user, err := h.memberByExternalUUID(c, path["uuid"], tenantID)
	if err != nil {
		return err
	}
	if user == nil {
		return apierror.BadRequest("User not found")
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	if err := h.users.Update(c.Request().Context(), user.ID, payload.Updates()); err != nil {
		log.Error("Failed to update user", zap.String("uuid", path["uuid"]), zap.Error(err))
		return apierror.Internal("Failed to update user")
	}

	updated, err := h.users.ByID(c.Request().Context(), user.ID)
	if err != nil {
		return apierror.Internal("Failed to fetch user")
	}
	if updated == nil {
		return apierror.Internal("User not found")
	}

	log.Info("User updated",
		zap.String("uuid", path["uuid"]),
		zap.Uint("tenant_id", tenantID))
	return response.Persist(c, "User has been updated", updated.Public())
}

// Delete soft-deletes the user and its tenant link.
func (h *UserHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("user", "delete")

	path, err := request.PathParams(c, "uuid")
	if err != nil {
		return err
	}
	params, err := request.QueryParams(c, tenantQueryParams)
	if err != nil {
		return err
	}
	tenantID := uint(params.Number("tenantId"))

	user, err := h.memberByExternalUUID(c, path["uuid"], tenantID)
	if err != nil {
		return err
	}
	if user == nil {
		return apierror.BadRequest("User not found")
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())

	if err := h.userTenants.Unlink(c.Request().Context(), user.ID, tenantID); err != nil {
		log.Error("Failed to unlink user", zap.String("uuid", path["uuid"]), zap.Error(err))
		return apierror.Internal("Failed to delete user")
	}
	if err := h.users.SoftDelete(c.Request().Context(), user.ID); err != nil {
		log.Error("Failed to delete user", zap.String("uuid", path["uuid"]), zap.Error(err))
		return apierror.Internal("Failed to delete user")
	}

	log.Info("User deleted",
		zap.String("uuid", path["uuid"]),
		zap.Uint("tenant_id", tenantID))
	return response.Deleted(c)
}

// memberByExternalUUID looks the user up and keeps tenants from seeing users
// that never belonged to them.
func (h *UserHandler) memberByExternalUUID(c echo.Context, externalUUID string, tenantID uint) (*model.User, error) {
	user, err := h.users.ByExternalUUID(c.Request().Context(), externalUUID)
	if err != nil {
		return nil, apierror.Internal("Failed to fetch user")
	}
	if user == nil {
		return nil, nil
	}
	member, err := h.userTenants.Exists(c.Request().Context(), user.ID, tenantID)
	if err != nil {
		return nil, apierror.Internal("Failed to fetch user")
	}
	if !member {
		return nil, nil
	}
	return user, nil
}
