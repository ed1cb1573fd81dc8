// Package handler implements the HTTP pipeline for every entity and verb:
// validate the request, run the repository operation, project the row to its
// public shape, format the response. Errors short-circuit to the central
// error handler.
package handler

import "crm-service/pkg/request"

// listQueryParams are required on every collection read, in this order.
var listQueryParams = []request.QueryParam{
	{Name: "limit", Required: true, Type: request.Number},
	{Name: "offset", Required: true, Type: request.Number},
	{Name: "tenantId", Required: true, Type: request.Number},
}

// tenantQueryParams scope single-record operations to the calling tenant.
var tenantQueryParams = []request.QueryParam{
	{Name: "tenantId", Required: true, Type: request.Number},
}
