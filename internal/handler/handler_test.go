package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"crm-service/internal/model"
	"crm-service/internal/repository"
	"crm-service/pkg/database"
	"crm-service/pkg/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/labstack/echo/v4"
)

type testServer struct {
	e  *echo.Echo
	db *gorm.DB

	tenantID uint
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	dsn := fmt.Sprintf("file:handler_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	customers := repository.NewCustomerRepository(db)
	deals := repository.NewDealRepository(db)
	tasks := repository.NewTaskRepository(db)
	activities := repository.NewActivityRepository(db)
	users := repository.NewUserRepository(db)
	tenants := repository.NewTenantRepository(db)
	userTenants := repository.NewUserTenantRepository(db)

	e := echo.New()
	e.HTTPErrorHandler = response.ErrorHandler()

	customerHandler := NewCustomerHandler(customers)
	dealHandler := NewDealHandler(deals, customers)
	taskHandler := NewTaskHandler(tasks)
	activityHandler := NewActivityHandler(activities, deals)
	userHandler := NewUserHandler(users, tenants, userTenants)

	for prefix, h := range map[string]struct{ list, get, create, update, del echo.HandlerFunc }{
		"/customers":  {customerHandler.List, customerHandler.Get, customerHandler.Create, customerHandler.Update, customerHandler.Delete},
		"/deals":      {dealHandler.List, dealHandler.Get, dealHandler.Create, dealHandler.Update, dealHandler.Delete},
		"/tasks":      {taskHandler.List, taskHandler.Get, taskHandler.Create, taskHandler.Update, taskHandler.Delete},
		"/activities": {activityHandler.List, activityHandler.Get, activityHandler.Create, activityHandler.Update, activityHandler.Delete},
		"/users":      {userHandler.List, userHandler.Get, userHandler.Create, userHandler.Update, userHandler.Delete},
	} {
		e.GET(prefix, h.list)
		e.GET(prefix+"/:uuid", h.get)
		e.POST(prefix, h.create)
		e.PUT(prefix+"/:uuid", h.update)
		e.DELETE(prefix+"/:uuid", h.del)
	}

	tenantID, err := tenants.Insert(context.Background(), &model.Tenant{Name: "acme"})
	require.NoError(t, err)

	return &testServer{e: e, db: db, tenantID: tenantID}
}

func (s *testServer) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func data(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	d, ok := decode(t, rec)["data"].(map[string]any)
	require.True(t, ok, rec.Body.String())
	return d
}

const customerBody = `{"firstName":"Ada","lastName":"Lovelace","email":"ada@example.com","phone":"555-0100","street":"12 Main St","city":"Springfield","state":"IL","zipCode":"62701"}`

func (s *testServer) createCustomer(t *testing.T) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, fmt.Sprintf("/customers?tenantId=%d", s.tenantID), customerBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	uuid, _ := data(t, rec)["uuid"].(string)
	require.NotEmpty(t, uuid)
	return uuid
}

func (s *testServer) createDeal(t *testing.T, customerUUID string) string {
	t.Helper()
	body := fmt.Sprintf(`{"customerUuid":%q,"price":1200.50,"street":"12 Main St","city":"Springfield","state":"IL","zipCode":"62701","roomArea":35.5,"numberOfPeople":2,"appointmentDate":"2026-04-01T10:00:00Z","progress":"inProgress","roomAccess":"keysInLockbox"}`, customerUUID)
	rec := s.do(t, http.MethodPost, fmt.Sprintf("/deals?tenantId=%d", s.tenantID), body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	uuid, _ := data(t, rec)["uuid"].(string)
	require.NotEmpty(t, uuid)
	return uuid
}

func TestCustomerCreateAndGetRoundTrip(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, fmt.Sprintf("/customers?tenantId=%d", s.tenantID), customerBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, "Customer has been created", body["message"])
	assert.Equal(t, "PersistSuccess", body["type"])
	created := body["data"].(map[string]any)
	assert.Equal(t, "Ada", created["firstName"])
	assert.NotEmpty(t, created["createdOn"])
	assert.Nil(t, created["modifiedOn"])

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/customers/%s?tenantId=%d", created["uuid"], s.tenantID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	assert.Equal(t, "Successfully fetched customer", body["message"])
	assert.Equal(t, "FetchSuccess", body["type"])
	assert.Equal(t, created["uuid"], body["data"].(map[string]any)["uuid"])
}

func TestCustomerCreateMissingFields(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, fmt.Sprintf("/customers?tenantId=%d", s.tenantID), `{"email":"ada@example.com"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Missing fields: firstName, lastName, phone, street, city, state, zipCode", body["message"])
	assert.Equal(t, "BadRequestError", body["type"])
	assert.Equal(t, true, body["error"])
}

func TestCustomerListMissingQueryParams(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/customers", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Event query parameters not found", decode(t, rec)["message"])

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/customers?tenantId=%d", s.tenantID), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing required query parameters: limit, offset", decode(t, rec)["message"])
}

func TestCustomerListPagination(t *testing.T) {
	s := newTestServer(t)
	for i := 0; i < 9; i++ {
		s.createCustomer(t)
	}

	rec := s.do(t, http.MethodGet, fmt.Sprintf("/customers?limit=5&offset=0&tenantId=%d", s.tenantID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	page := data(t, rec)
	assert.Len(t, page["items"], 5)
	assert.Equal(t, 9.0, page["total"])

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/customers?limit=5&offset=5&tenantId=%d", s.tenantID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	page = data(t, rec)
	assert.Len(t, page["items"], 4)
	assert.Equal(t, 9.0, page["total"])
}

// An empty page is still a 200 with items and total, never a 204.
func TestCustomerListEmptyPage(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, fmt.Sprintf("/customers?limit=5&offset=0&tenantId=%d", s.tenantID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	page := data(t, rec)
	assert.Empty(t, page["items"])
	assert.Equal(t, 0.0, page["total"])
}

func TestCustomerTenantIsolation(t *testing.T) {
	s := newTestServer(t)
	uuid := s.createCustomer(t)

	rec := s.do(t, http.MethodGet, fmt.Sprintf("/customers/%s?tenantId=%d", uuid, s.tenantID+1), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Customer not found", decode(t, rec)["message"])
}

func TestCustomerUpdateStampsModifiedOn(t *testing.T) {
	s := newTestServer(t)
	uuid := s.createCustomer(t)

	update := strings.Replace(customerBody, "Ada", "Grace", 1)
	rec := s.do(t, http.MethodPut, fmt.Sprintf("/customers/%s?tenantId=%d", uuid, s.tenantID), update)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, "Customer has been updated", body["message"])
	updated := body["data"].(map[string]any)
	assert.Equal(t, "Grace", updated["firstName"])
	assert.Equal(t, uuid, updated["uuid"])
	assert.NotNil(t, updated["modifiedOn"])
}

func TestCustomerDeleteThenGone(t *testing.T) {
	s := newTestServer(t)
	uuid := s.createCustomer(t)

	rec := s.do(t, http.MethodDelete, fmt.Sprintf("/customers/%s?tenantId=%d", uuid, s.tenantID), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	// Deleting again fails the lookup
	rec = s.do(t, http.MethodDelete, fmt.Sprintf("/customers/%s?tenantId=%d", uuid, s.tenantID), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Customer not found", decode(t, rec)["message"])
}

func TestDealCreateUnknownCustomer(t *testing.T) {
	s := newTestServer(t)

	body := `{"customerUuid":"00000000-0000-0000-0000-000000000000","price":100,"street":"s","city":"c","state":"st","zipCode":"z","roomArea":1,"numberOfPeople":1,"appointmentDate":"2026-04-01","progress":"pending","roomAccess":"other"}`
	rec := s.do(t, http.MethodPost, fmt.Sprintf("/deals?tenantId=%d", s.tenantID), body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Customer does not exist", decode(t, rec)["message"])
}

func TestDealCreateNestsCustomer(t *testing.T) {
	s := newTestServer(t)
	customerUUID := s.createCustomer(t)

	dealUUID := s.createDeal(t, customerUUID)

	rec := s.do(t, http.MethodGet, fmt.Sprintf("/deals/%s?tenantId=%d", dealUUID, s.tenantID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	deal := data(t, rec)
	nested, ok := deal["customer"].(map[string]any)
	require.True(t, ok, rec.Body.String())
	assert.Equal(t, customerUUID, nested["uuid"])
	assert.Equal(t, "inProgress", deal["progress"])
	assert.Equal(t, "keysInLockbox", deal["roomAccess"])
}

func TestDealCreateInvalidEnum(t *testing.T) {
	s := newTestServer(t)
	customerUUID := s.createCustomer(t)

	body := fmt.Sprintf(`{"customerUuid":%q,"price":100,"street":"s","city":"c","state":"st","zipCode":"z","roomArea":1,"numberOfPeople":1,"appointmentDate":"2026-04-01","progress":"done","roomAccess":"other"}`, customerUUID)
	rec := s.do(t, http.MethodPost, fmt.Sprintf("/deals?tenantId=%d", s.tenantID), body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid fields: progress", decode(t, rec)["message"])
}

func TestTaskCreateMissingFields(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, fmt.Sprintf("/tasks?tenantId=%d", s.tenantID), `{"completed":true}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing fields: description, dueDate", decode(t, rec)["message"])
}

func TestTaskCreateInvalidDueDate(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, fmt.Sprintf("/tasks?tenantId=%d", s.tenantID), `{"description":"call back","dueDate":"not a date"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid fields: dueDate", decode(t, rec)["message"])
}

func TestTaskCompletedRoundTrip(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, fmt.Sprintf("/tasks?tenantId=%d", s.tenantID), `{"description":"call back","dueDate":"2026-05-01"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	task := data(t, rec)
	assert.Equal(t, false, task["completed"])
	uuid := task["uuid"].(string)

	rec = s.do(t, http.MethodPut, fmt.Sprintf("/tasks/%s?tenantId=%d", uuid, s.tenantID), `{"description":"call back","dueDate":"2026-05-01","completed":true}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, true, data(t, rec)["completed"])
}

func TestActivityCreateUnknownDeal(t *testing.T) {
	s := newTestServer(t)

	body := `{"dealUuid":"00000000-0000-0000-0000-000000000000","description":"site visit","activityDate":"2026-04-02"}`
	rec := s.do(t, http.MethodPost, fmt.Sprintf("/activities?tenantId=%d", s.tenantID), body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Deal does not exist", decode(t, rec)["message"])
}

func TestActivityGetChecksParentDeal(t *testing.T) {
	s := newTestServer(t)
	customerUUID := s.createCustomer(t)
	dealUUID := s.createDeal(t, customerUUID)
	otherDealUUID := s.createDeal(t, customerUUID)

	body := fmt.Sprintf(`{"dealUuid":%q,"description":"site visit","activityDate":"2026-04-02T09:00:00Z"}`, dealUUID)
	rec := s.do(t, http.MethodPost, fmt.Sprintf("/activities?tenantId=%d", s.tenantID), body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	activityUUID := data(t, rec)["uuid"].(string)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/activities/%s?tenantId=%d&dealUuid=%s", activityUUID, s.tenantID, dealUUID), "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, dealUUID, data(t, rec)["dealUuid"])

	// The same activity under another deal's scope is not found
	rec = s.do(t, http.MethodGet, fmt.Sprintf("/activities/%s?tenantId=%d&dealUuid=%s", activityUUID, s.tenantID, otherDealUUID), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Activity not found", decode(t, rec)["message"])

	// dealUuid is mandatory on single reads
	rec = s.do(t, http.MethodGet, fmt.Sprintf("/activities/%s?tenantId=%d", activityUUID, s.tenantID), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing required query parameters: dealUuid", decode(t, rec)["message"])
}

func TestActivityListFiltersByDealUUID(t *testing.T) {
	s := newTestServer(t)
	customerUUID := s.createCustomer(t)
	dealA := s.createDeal(t, customerUUID)
	dealB := s.createDeal(t, customerUUID)

	for _, dealUUID := range []string{dealA, dealA, dealB} {
		body := fmt.Sprintf(`{"dealUuid":%q,"description":"site visit","activityDate":"2026-04-02"}`, dealUUID)
		rec := s.do(t, http.MethodPost, fmt.Sprintf("/activities?tenantId=%d", s.tenantID), body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := s.do(t, http.MethodGet, fmt.Sprintf("/activities?limit=10&offset=0&tenantId=%d&dealUuid=%s", s.tenantID, dealA), "")
	require.Equal(t, http.StatusOK, rec.Code)
	page := data(t, rec)
	assert.Len(t, page["items"], 2)
	assert.Equal(t, 2.0, page["total"])
}

func TestUserCreateUnknownTenant(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, fmt.Sprintf("/users?tenantId=%d", s.tenantID+99), `{"firstName":"Ada","lastName":"Lovelace","email":"ada@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Tenant does not exist", decode(t, rec)["message"])
}

func TestUserCreateLinksTenant(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, fmt.Sprintf("/users?tenantId=%d", s.tenantID), `{"firstName":"Ada","lastName":"Lovelace","email":"ada@example.com"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	uuid := data(t, rec)["uuid"].(string)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/users/%s?tenantId=%d", uuid, s.tenantID), "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "ada@example.com", data(t, rec)["email"])

	// Membership is per tenant
	rec = s.do(t, http.MethodGet, fmt.Sprintf("/users/%s?tenantId=%d", uuid, s.tenantID+1), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User not found", decode(t, rec)["message"])
}

func TestUnknownRouteIsJSONError(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["error"])
}
