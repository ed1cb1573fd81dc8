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

var activityListQueryParams = []request.QueryParam{
	{Name: "limit", Required: true, Type: request.Number},
	{Name: "offset", Required: true, Type: request.Number},
	{Name: "tenantId", Required: true, Type: request.Number},
	{Name: "dealUuid", Required: false, Type: request.String},
}

var activityGetQueryParams = []request.QueryParam{
	{Name: "tenantId", Required: true, Type: request.Number},
	{Name: "dealUuid", Required: true, Type: request.String},
}

// ActivityHandler serves activities. Every activity belongs to a deal, so
// reads and writes resolve the parent by external uuid.
type ActivityHandler struct {
	activities *repository.ActivityRepository
	deals      *repository.DealRepository
}

func NewActivityHandler(activities *repository.ActivityRepository, deals *repository.DealRepository) *ActivityHandler {
	return &ActivityHandler{activities: activities, deals: deals}
}

// List pages activities for the tenant, optionally narrowed to one deal.
func (h *ActivityHandler) List(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("activity", "list")

	params, err := request.QueryParams(c, activityListQueryParams)
	if err != nil {
		return err
	}
	tenantID := uint(params.Number("tenantId"))

	var dealID uint
	if params.Has("dealUuid") {
		deal, err := h.deals.ByExternalUUID(c.Request().Context(), params.String("dealUuid"), tenantID)
		if err != nil {
			return apierror.Internal("Failed to fetch deal")
		}
		if deal == nil {
			return apierror.BadRequest("Deal does not exist")
		}
		dealID = deal.ID
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	activities, total, err := h.activities.List(c.Request().Context(), params.Int("limit"), params.Int("offset"), tenantID, dealID)
	if err != nil {
		log.Error("Failed to list activities", zap.Uint("tenant_id", tenantID), zap.Error(err))
		return apierror.Internal("Failed to fetch activities")
	}

	items := make([]model.PublicActivity, 0, len(activities))
	for i := range activities {
		items = append(items, activities[i].Public())
	}

	log.Info("Activities listed",
		zap.Int("count", len(items)),
		zap.Int64("total", total),
		zap.Uint("tenant_id", tenantID))
	return response.Fetch(c, "Successfully fetched activities", model.PaginatedResponse[model.PublicActivity]{Items: items, Total: total})
}

// Get returns a single activity and checks it belongs to the deal named in
// the query.
func (h *ActivityHandler) Get(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("activity", "get")

	path, err := request.PathParams(c, "uuid")
	if err != nil {
		return err
	}
	params, err := request.QueryParams(c, activityGetQueryParams)
	if err != nil {
		return err
	}
	tenantID := uint(params.Number("tenantId"))

	defer prometheus.TrackDBOperation("query")(time.Now())

	activity, err := h.activities.ByExternalUUID(c.Request().Context(), path["uuid"], tenantID)
	if err != nil {
		log.Error("Failed to fetch activity", zap.String("uuid", path["uuid"]), zap.Error(err))
		return apierror.Internal("Failed to fetch activity")
	}
	if activity == nil || activity.Deal.ExternalUUID != params.String("dealUuid") {
		log.Warn("Activity not found",
			zap.String("uuid", path["uuid"]),
			zap.Uint("tenant_id", tenantID))
		return apierror.BadRequest("Activity not found")
	}

	return response.Fetch(c, "Successfully fetched activity", activity.Public())
}

func (h *ActivityHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("activity", "create")

	params, err := request.QueryParams(c, tenantQueryParams)
	if err != nil {
		return err
	}
	tenantID := uint(params.Number("tenantId"))

	payload, err := request.Body[model.ActivityPayload](c, model.ActivityRequiredFields...)
	if err != nil {
		return err
	}

	deal, err := h.deals.ByExternalUUID(c.Request().Context(), payload.DealUUID, tenantID)
	if err != nil {
		return apierror.Internal("Failed to fetch deal")
	}
	if deal == nil {
		log.Warn("Activity references unknown deal",
			zap.String("deal_uuid", payload.DealUUID),
			zap.Uint("tenant_id", tenantID))
		return apierror.BadRequest("Deal does not exist")
	}

	activity, err := payload.Entity(tenantID, deal.ID)
	if err != nil {
		return err
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	id, err := h.activities.Insert(c.Request().Context(), &activity)
	if err != nil {
		log.Error("Failed to create activity", zap.Uint("tenant_id", tenantID), zap.Error(err))
		return apierror.Internal("Failed to create activity")
	}

	created, err := h.activities.ByID(c.Request().Context(), id)
	if err != nil {
		return apierror.Internal("Failed to fetch activity")
	}
	if created == nil {
		return apierror.Internal("Activity not found")
	}

	go h.refreshCount(tenantID)

	log.Info("Activity created",
		zap.Uint("id", id),
		zap.String("uuid", created.ExternalUUID),
		zap.Uint("tenant_id", tenantID))
	return response.Persist(c, "Activity has been created", created.Public())
}

func (h *ActivityHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("activity", "update")

	path, err := request.PathParams(c, "uuid")
	if err != nil {
		return err
	}
	params, err := request.QueryParams(c, tenantQueryParams)
	if err != nil {
		return err
	}
	tenantID := uint(params.Number("tenantId"))

	payload, err := request.Body[model.ActivityPayload](c, model.ActivityRequiredFields...)
	if err != nil {
		return err
	}

	activity, err := h.activities.ByExternalUUID(c.Request().Context(), path["uuid"], tenantID)
	if err != nil {
		return apierror.Internal("Failed to fetch activity")
	}
	if activity == nil {
		return apierror.BadRequest("Activity not found")
	}

	updates, err := payload.Updates()
	if err != nil {
		return err
	}

	// A new dealUuid moves the activity; an absent one keeps the current
	// parent.
	if payload.DealUUID != "" {
		deal, err := h.deals.ByExternalUUID(c.Request().Context(), payload.DealUUID, tenantID)
		if err != nil {
			return apierror.Internal("Failed to fetch deal")
		}
		if deal == nil {
			return apierror.BadRequest("Deal does not exist")
		}
		updates["deal_id"] = deal.ID
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	if err := h.activities.Update(c.Request().Context(), activity.ID, updates); err != nil {
		log.Error("Failed to update activity", zap.String("uuid", path["uuid"]), zap.Error(err))
		return apierror.Internal("Failed to update activity")
	}

	updated, err := h.activities.ByID(c.Request().Context(), activity.ID)
	if err != nil {
		return apierror.Internal("Failed to fetch activity")
	}
	if updated == nil {
		return apierror.Internal("Activity not found")
	}

	log.Info("Activity updated",
		zap.String("uuid", path["uuid"]),
		zap.Uint("tenant_id", tenantID))
	return response.Persist(c, "Activity has been updated", updated.Public())
}

func (h *ActivityHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("activity", "delete")

	path, err := request.PathParams(c, "uuid")
	if err != nil {
		return err
	}
	params, err := request.QueryParams(c, tenantQueryParams)
	if err != nil {
		return err
	}
	tenantID := uint(params.Number("tenantId"))

	activity, err := h.activities.ByExternalUUID(c.Request().Context(), path["uuid"], tenantID)
	if err != nil {
		return apierror.Internal("Failed to fetch activity")
	}
	if activity == nil {
		return apierror.BadRequest("Activity not found")
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())

	if err := h.activities.SoftDelete(c.Request().Context(), activity.ID); err != nil {
		log.Error("Failed to delete activity", zap.String("uuid", path["uuid"]), zap.Error(err))
		return apierror.Internal("Failed to delete activity")
	}

	go h.refreshCount(tenantID)

	log.Info("Activity deleted",
		zap.String("uuid", path["uuid"]),
		zap.Uint("tenant_id", tenantID))
	return response.Deleted(c)
}

func (h *ActivityHandler) refreshCount(tenantID uint) {
	count, err := h.activities.Count(context.Background(), tenantID)
	if err != nil {
		logger.GetLogger().Warn("Failed to refresh activity count",
			zap.Uint("tenant_id", tenantID),
			zap.Error(err))
		return
	}
	prometheus.UpdateRecordsPerTenant(tenantID, "activity", count)
}
