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

// DealHandler serves deals. Writes resolve the customer by external uuid, so
// the handler carries both repositories.
type DealHandler struct {
	deals     *repository.DealRepository
	customers *repository.CustomerRepository
}

func NewDealHandler(deals *repository.DealRepository, customers *repository.CustomerRepository) *DealHandler {
	return &DealHandler{deals: deals, customers: customers}
}

func (h *DealHandler) List(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("deal", "list")

	params, err := request.QueryParams(c, listQueryParams)
	if err != nil {
		return err
	}
	tenantID := uint(params.Number("tenantId"))

	defer prometheus.TrackDBOperation("query")(time.Now())

	deals, total, err := h.deals.List(c.Request().Context(), params.Int("limit"), params.Int("offset"), tenantID)
	if err != nil {
		log.Error("Failed to list deals", zap.Uint("tenant_id", tenantID), zap.Error(err))
		return apierror.Internal("Failed to fetch deals")
	}

	items := make([]model.PublicDeal, 0, len(deals))
	for i := range deals {
		items = append(items, deals[i].Public())
	}

	log.Info("Deals listed",
		zap.Int("count", len(items)),
		zap.Int64("total", total),
		zap.Uint("tenant_id", tenantID))
	return response.Fetch(c, "Successfully fetched deals", model.PaginatedResponse[model.PublicDeal]{Items: items, Total: total})
}

func (h *DealHandler) Get(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("deal", "get")

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

	deal, err := h.deals.ByExternalUUID(c.Request().Context(), path["uuid"], tenantID)
	if err != nil {
		log.Error("Failed to fetch deal", zap.String("uuid", path["uuid"]), zap.Error(err))
		return apierror.Internal("Failed to fetch deal")
	}
	if deal == nil {
		log.Warn("Deal not found",
			zap.String("uuid", path["uuid"]),
			zap.Uint("tenant_id", tenantID))
		return apierror.BadRequest("Deal not found")
	}

	return response.Fetch(c, "Successfully fetched deal", deal.Public())
}

func (h *DealHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("deal", "create")

	params, err := request.QueryParams(c, tenantQueryParams)
	if err != nil {
		return err
	}
	tenantID := uint(params.Number("tenantId"))

	payload, err := request.Body[model.DealPayload](c, model.DealRequiredFields...)
	if err != nil {
		return err
	}

	customer, err := h.customers.ByExternalUUID(c.Request().Context(), payload.CustomerUUID, tenantID)
	if err != nil {
		return apierror.Internal("Failed to fetch customer")
	}
	if customer == nil {
		log.Warn("Deal references unknown customer",
			zap.String("customer_uuid", payload.CustomerUUID),
			zap.Uint("tenant_id", tenantID))
		return apierror.BadRequest("Customer does not exist")
	}

	deal, err := payload.Entity(tenantID, customer.ID)
	if err != nil {
		return err
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	id, err := h.deals.Insert(c.Request().Context(), &deal)
	if err != nil {
		log.Error("Failed to create deal", zap.Uint("tenant_id", tenantID), zap.Error(err))
		return apierror.Internal("Failed to create deal")
	}

	created, err := h.deals.ByID(c.Request().Context(), id)
	if err != nil {
		return apierror.Internal("Failed to fetch deal")
	}
	if created == nil {
		return apierror.Internal("Deal not found")
	}

	go h.refreshCount(tenantID)

	log.Info("Deal created",
		zap.Uint("id", id),
		zap.String("uuid", created.ExternalUUID),
		zap.Uint("tenant_id", tenantID))
	return response.Persist(c, "Deal has been created", created.Public())
}

func (h *DealHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("deal", "update")

	path, err := request.PathParams(c, "uuid")
	if err != nil {
		return err
	}
	params, err := request.QueryParams(c, tenantQueryParams)
	if err != nil {
		return err
	}
	tenantID := uint(params.Number("tenantId"))

	payload, err := request.Body[model.DealPayload](c, model.DealRequiredFields...)
	if err != nil {
		return err
	}

	deal, err := h.deals.ByExternalUUID(c.Request().Context(), path["uuid"], tenantID)
	if err != nil {
		return apierror.Internal("Failed to fetch deal")
	}
	if deal == nil {
		return apierror.BadRequest("Deal not found")
	}

	updates, err := payload.Updates()
	if err != nil {
		return err
	}

	// A new customerUuid moves the deal; an absent one keeps the current
	// customer.
	if payload.CustomerUUID != "" {
		customer, err := h.customers.ByExternalUUID(c.Request().Context(), payload.CustomerUUID, tenantID)
		if err != nil {
			return apierror.Internal("Failed to fetch customer")
		}
		if customer == nil {
			return apierror.BadRequest("Customer does not exist")
		}
		updates["customer_id"] = customer.ID
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	if err := h.deals.Update(c.Request().Context(), deal.ID, updates); err != nil {
		log.Error("Failed to update deal", zap.String("uuid", path["uuid"]), zap.Error(err))
		return apierror.Internal("Failed to update deal")
	}

	updated, err := h.deals.ByID(c.Request().Context(), deal.ID)
	if err != nil {
		return apierror.Internal("Failed to fetch deal")
	}
	if updated == nil {
		return apierror.Internal("Deal not found")
	}

	log.Info("Deal updated",
		zap.String("uuid", path["uuid"]),
		zap.Uint("tenant_id", tenantID))
	return response.Persist(c, "Deal has been updated", updated.Public())
}

func (h *DealHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("deal", "delete")

	path, err := request.PathParams(c, "uuid")
	if err != nil {
		return err
	}
	params, err := request.QueryParams(c, tenantQueryParams)
	if err != nil {
		return err
	}
	tenantID := uint(params.Number("tenantId"))

	deal, err := h.deals.ByExternalUUID(c.Request().Context(), path["uuid"], tenantID)
	if err != nil {
		return apierror.Internal("Failed to fetch deal")
	}
	if deal == nil {
		return apierror.BadRequest("Deal not found")
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())

	if err := h.deals.SoftDelete(c.Request().Context(), deal.ID); err != nil {
		log.Error("Failed to delete deal", zap.String("uuid", path["uuid"]), zap.Error(err))
		return apierror.Internal("Failed to delete deal")
	}

	go h.refreshCount(tenantID)

	log.Info("Deal deleted",
		zap.String("uuid", path["uuid"]),
		zap.Uint("tenant_id", tenantID))
	return response.Deleted(c)
}

func (h *DealHandler) refreshCount(tenantID uint) {
	count, err := h.deals.Count(context.Background(), tenantID)
	if err != nil {
		logger.GetLogger().Warn("Failed to refresh deal count",
			zap.Uint("tenant_id", tenantID),
			zap.Error(err))
		return
	}
	prometheus.UpdateRecordsPerTenant(tenantID, "deal", count)
}
