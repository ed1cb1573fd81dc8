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

type TaskHandler struct {
	tasks *repository.TaskRepository
}

func NewTaskHandler(tasks *repository.TaskRepository) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

func (h *TaskHandler) List(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("task", "list")

	params, err := request.QueryParams(c, listQueryParams)
	if err != nil {
		return err
	}
	tenantID := uint(params.Number("tenantId"))

	defer prometheus.TrackDBOperation("query")(time.Now())

	tasks, total, err := h.tasks.List(c.Request().Context(), params.Int("limit"), params.Int("offset"), tenantID)
	if err != nil {
		log.Error("Failed to list tasks", zap.Uint("tenant_id", tenantID), zap.Error(err))
		return apierror.Internal("Failed to fetch tasks")
	}

	items := make([]model.PublicTask, 0, len(tasks))
	for i := range tasks {
		items = append(items, tasks[i].Public())
	}

	log.Info("Tasks listed",
		zap.Int("count", len(items)),
		zap.Int64("total", total),
		zap.Uint("tenant_id", tenantID))
	return response.Fetch(c, "Successfully fetched tasks", model.PaginatedResponse[model.PublicTask]{Items: items, Total: total})
}

func (h *TaskHandler) Get(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("task", "get")

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

	task, err := h.tasks.ByExternalUUID(c.Request().Context(), path["uuid"], tenantID)
	if err != nil {
		log.Error("Failed to fetch task", zap.String("uuid", path["uuid"]), zap.Error(err))
		return apierror.Internal("Failed to fetch task")
	}
	if task == nil {
		log.Warn("Task not found",
			zap.String("uuid", path["uuid"]),
			zap.Uint("tenant_id", tenantID))
		return apierror.BadRequest("Task not found")
	}

	return response.Fetch(c, "Successfully fetched task", task.Public())
}

func (h *TaskHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("task", "create")

	params, err := request.QueryParams(c, tenantQueryParams)
	if err != nil {
		return err
	}
	tenantID := uint(params.Number("tenantId"))

	payload, err := request.Body[model.TaskPayload](c, model.TaskRequiredFields...)
	if err != nil {
		return err
	}

	task, err := payload.Entity(tenantID)
	if err != nil {
		return err
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	id, err := h.tasks.Insert(c.Request().Context(), &task)
	if err != nil {
		log.Error("Failed to create task", zap.Uint("tenant_id", tenantID), zap.Error(err))
		return apierror.Internal("Failed to create task")
	}

	created, err := h.tasks.ByID(c.Request().Context(), id)
	if err != nil {
		return apierror.Internal("Failed to fetch task")
	}
	if created == nil {
		return apierror.Internal("Task not found")
	}

	go h.refreshCount(tenantID)

	log.Info("Task created",
		zap.Uint("id", id),
		zap.String("uuid", created.ExternalUUID),
		zap.Uint("tenant_id", tenantID))
	return response.Persist(c, "Task has been created", created.Public())
}

func (h *TaskHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("task", "update")

	path, err := request.PathParams(c, "uuid")
	if err != nil {
		return err
	}
	params, err := request.QueryParams(c, tenantQueryParams)
	if err != nil {
		return err
	}
	tenantID := uint(params.Number("tenantId"))

	payload, err := request.Body[model.TaskPayload](c, model.TaskRequiredFields...)
	if err != nil {
		return err
	}

	task, err := h.tasks.ByExternalUUID(c.Request().Context(), path["uuid"], tenantID)
	if err != nil {
		return apierror.Internal("Failed to fetch task")
	}
	if task == nil {
		return apierror.BadRequest("Task not found")
	}

	updates, err := payload.Updates()
	if err != nil {
		return err
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	if err := h.tasks.Update(c.Request().Context(), task.ID, updates); err != nil {
		log.Error("Failed to update task", zap.String("uuid", path["uuid"]), zap.Error(err))
		return apierror.Internal("Failed to update task")
	}

	updated, err := h.tasks.ByID(c.Request().Context(), task.ID)
	if err != nil {
		return apierror.Internal("Failed to fetch task")
	}
	if updated == nil {
		return apierror.Internal("Task not found")
	}

	log.Info("Task updated",
		zap.String("uuid", path["uuid"]),
		zap.Uint("tenant_id", tenantID))
	return response.Persist(c, "Task has been updated", updated.Public())
}

func (h *TaskHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("task", "delete")

	path, err := request.PathParams(c, "uuid")
	if err != nil {
		return err
	}
	params, err := request.QueryParams(c, tenantQueryParams)
	if err != nil {
		return err
	}
	tenantID := uint(params.Number("tenantId"))

	task, err := h.tasks.ByExternalUUID(c.Request().Context(), path["uuid"], tenantID)
	if err != nil {
		return apierror.Internal("Failed to fetch task")
	}
	if task == nil {
		return apierror.BadRequest("Task not found")
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())

	if err := h.tasks.SoftDelete(c.Request().Context(), task.ID); err != nil {
		log.Error("Failed to delete task", zap.String("uuid", path["uuid"]), zap.Error(err))
		return apierror.Internal("Failed to delete task")
	}

	go h.refreshCount(tenantID)

	log.Info("Task deleted",
		zap.String("uuid", path["uuid"]),
		zap.Uint("tenant_id", tenantID))
	return response.Deleted(c)
}

func (h *TaskHandler) refreshCount(tenantID uint) {
	count, err := h.tasks.Count(context.Background(), tenantID)
	if err != nil {
		logger.GetLogger().Warn("Failed to refresh task count",
			zap.Uint("tenant_id", tenantID),
			zap.Error(err))
		return
	}
	prometheus.UpdateRecordsPerTenant(tenantID, "task", count)
}
