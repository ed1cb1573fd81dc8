package handler

import (
	"context"
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

type CustomerHandler struct {
	customers *repository.CustomerRepository
}

func NewCustomerHandler(customers *repository.CustomerRepository) *CustomerHandler {
	return &CustomerHandler{customers: customers}
}

// List returns a page of customers for the tenant.
func (h *CustomerHandler) List(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("customer", "list")

	params, err := request.QueryParams(c, listQueryParams)
	if err != nil {
		return err
	}
	tenantID := uint(params.Number("tenantId"))

	defer prometheus.TrackDBOperation("query")(time.Now())

	customers, total, err := h.customers.List(c.Request().Context(), params.Int("limit"), params.Int("offset"), tenantID)
	if err != nil {
		log.Error("Failed to list customers", zap.Uint("tenant_id", tenantID), zap.Error(err))
		return apierror.Internal("Failed to fetch customers")
	}

	items := make([]model.PublicCustomer, 0, len(customers))
	for i := range customers {
		items = append(items, customers[i].Public())
	}

	log.Info("Customers listed",
		zap.Int("count", len(items)),
		zap.Int64("total", total),
		zap.Uint("tenant_id", tenantID))
	return response.Fetch(c, "Successfully fetched customers", model.PaginatedResponse[model.PublicCustomer]{Items: items, Total: total})
}

// Get returns a single customer by its external uuid.
func (h *CustomerHandler) Get(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("customer", "get")

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

	customer, err := h.customers.ByExternalUUID(c.Request().Context(), path["uuid"], tenantID)
	if err != nil {
		log.Error("Failed to fetch customer", zap.String("uuid", path["uuid"]), zap.Error(err))
		return apierror.Internal("Failed to fetch customer")
	}
	if customer == nil {
		log.Warn("Customer not found",
			zap.String("uuid", path["uuid"]),
			zap.Uint("tenant_id", tenantID))
		return apierror.BadRequest("Customer not found")
	}

	return response.Fetch(c, "Successfully fetched customer", customer.Public())
}

// Create validates the payload against the customer schema and persists a new
// customer for the tenant.
func (h *CustomerHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("customer", "create")

	params, err := request.QueryParams(c, tenantQueryParams)
	if err != nil {
		return err
	}
	tenantID := uint(params.Number("tenantId"))

	payload, err := request.SchemaBody[model.CustomerPayload](c, model.CustomerSchema)
	if err != nil {
		return err
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	customer := payload.Entity(tenantID)
	id, err := h.customers.Insert(c.Request().Context(), &customer)
	if err != nil {
		log.Error("Failed to create customer", zap.Uint("tenant_id", tenantID), zap.Error(err))
		return apierror.Internal("Failed to create customer")
	}

	created, err := h.customers.ByID(c.Request().Context(), id)
	if err != nil {
		return apierror.Internal("Failed to fetch customer")
	}
	if created == nil {
		return apierror.Internal("Customer not found")
	}

	go h.refreshCount(tenantID)

	log.Info("Customer created",
		zap.Uint("id", id),
		zap.String("uuid", created.ExternalUUID),
		zap.Uint("tenant_id", tenantID))
	return response.Persist(c, "Customer has been created", created.Public())
}

// Update applies a full payload to an existing customer.
func (h *CustomerHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("customer", "update")

	path, err := request.PathParams(c, "uuid")
	if err != nil {
		return err
	}
	params, err := request.QueryParams(c, tenantQueryParams)
	if err != nil {
		return err
	}
	tenantID := uint(params.Number("tenantId"))

	payload, err := request.SchemaBody[model.CustomerPayload](c, model.CustomerSchema)
	if err != nil {
		return err
	}

	customer, err := h.customers.ByExternalUUID(c.Request().Context(), path["uuid"], tenantID)
	if err != nil {
		return apierror.Internal("Failed to fetch customer")
	}
	if customer == nil {
		return apierror.BadRequest("Customer not found")
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	if err := h.customers.Update(c.Request().Context(), customer.ID, payload.Updates()); err != nil {
		log.Error("Failed to update customer", zap.String("uuid", path["uuid"]), zap.Error(err))
		return apierror.Internal("Failed to update customer")
	}

	updated, err := h.customers.ByID(c.Request().Context(), customer.ID)
	if err != nil {
		return apierror.Internal("Failed to fetch customer")
	}
	if updated == nil {
		return apierror.Internal("Customer not found")
	}

	log.Info("Customer updated",
		zap.String("uuid", path["uuid"]),
		zap.Uint("tenant_id", tenantID))
	return response.Persist(c, "Customer has been updated", updated.Public())
}

// Delete soft-deletes a customer.
func (h *CustomerHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("customer", "delete")

	path, err := request.PathParams(c, "uuid")
	if err != nil {
		return err
	}
	params, err := request.QueryParams(c, tenantQueryParams)
	if err != nil {
		return err
	}
	tenantID := uint(params.Number("tenantId"))

	customer, err := h.customers.ByExternalUUID(c.Request().Context(), path["uuid"], tenantID)
	if err != nil {
		return apierror.Internal("Failed to fetch customer")
	}
	if customer == nil {
		return apierror.BadRequest("Customer not found")
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())

	if err := h.customers.SoftDelete(c.Request().Context(), customer.ID); err != nil {
		log.Error("Failed to delete customer", zap.String("uuid", path["uuid"]), zap.Error(err))
		return apierror.Internal("Failed to delete customer")
	}

	go h.refreshCount(tenantID)

	log.Info("Customer deleted",
		zap.String("uuid", path["uuid"]),
		zap.Uint("tenant_id", tenantID))
	return response.Deleted(c)
}

func (h *CustomerHandler) refreshCount(tenantID uint) {
	count, err := h.customers.Count(context.Background(), tenantID)
	if err != nil {
		logger.GetLogger().Warn("Failed to refresh customer count",
			zap.Uint("tenant_id", tenantID),
			zap.Error(err))
		return
	}
	prometheus.UpdateRecordsPerTenant(tenantID, "customer", count)
}
