// Package integration runs end-to-end tests of the OpsPilot API against real
// PostgreSQL and MySQL databases. Each test skips a driver whose database does
// not answer.
package integration

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opspilot/platform/internal/app"
	authDomain "github.com/opspilot/platform/internal/auth/domain"
	authDTO "github.com/opspilot/platform/internal/auth/http/dto"
	"github.com/opspilot/platform/internal/config"
	employeeDTO "github.com/opspilot/platform/internal/employee/http/dto"
	employeeUseCase "github.com/opspilot/platform/internal/employee/usecase"
	"github.com/opspilot/platform/internal/httputil"
	"github.com/opspilot/platform/internal/testutil"
	workItemDTO "github.com/opspilot/platform/internal/workitem/http/dto"
)

const (
	adminEmail    = "admin@opspilot.test"
	adminPassword = "Adm1n$ecretPass" //nolint:gosec // test credentials
	testPassword  = "Op3r@torPassw0rd" //nolint:gosec // test credentials
)

var drivers = []string{"postgres", "mysql"}

type integrationTestContext struct {
	container  *app.Container
	db         *sql.DB
	server     *httptest.Server
	adminToken string
	dbDriver   string
}

// makeRequest performs an HTTP request with an optional bearer token and
// returns the response and its body.
func (ctx *integrationTestContext) makeRequest(
	t *testing.T,
	method, path string,
	body any,
	token string,
) (*http.Response, []byte) {
	t.Helper()

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		require.NoError(t, err, "failed to marshal request body")
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequest(method, ctx.server.URL+path, bodyReader)
	require.NoError(t, err, "failed to create request")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	//nolint:gosec // controlled test environment with localhost URLs
	resp, err := client.Do(req)
	require.NoError(t, err, "failed to perform request")

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")
	if closeErr := resp.Body.Close(); closeErr != nil {
		t.Logf("Warning: failed to close response body: %v", closeErr)
	}

	return resp, respBody
}

// login posts credentials and returns the issued token.
func (ctx *integrationTestContext) login(t *testing.T, email, password string) string {
	t.Helper()

	resp, body := ctx.makeRequest(t, http.MethodPost, "/api/auth/login", authDTO.LoginRequest{
		Email:    email,
		Password: password,
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var response authDTO.LoginResponse
	require.NoError(t, json.Unmarshal(body, &response))
	require.NotEmpty(t, response.Token)
	assert.Equal(t, "Bearer", response.Type)
	return response.Token
}

// registerEmployee registers an account through the API as the caller
// identified by token and returns the created employee.
func (ctx *integrationTestContext) registerEmployee(
	t *testing.T,
	token, email, fullName string,
	role authDomain.Role,
) employeeDTO.EmployeeResponse {
	t.Helper()

	resp, body := ctx.makeRequest(t, http.MethodPost, "/api/auth/register", authDTO.RegisterRequest{
		Email:    email,
		Password: testPassword,
		FullName: fullName,
		Role:     role.String(),
	}, token)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var response employeeDTO.EmployeeResponse
	require.NoError(t, json.Unmarshal(body, &response))
	return response
}

func setupIntegrationTest(t *testing.T, dbDriver string) *integrationTestContext {
	t.Helper()

	gin.SetMode(gin.TestMode)

	var db *sql.DB
	var dsn string
	if dbDriver == "postgres" {
		db = testutil.SetupPostgresDB(t)
		dsn = testutil.GetPostgresTestDSN()
	} else {
		db = testutil.SetupMySQLDB(t)
		dsn = testutil.GetMySQLTestDSN()
	}

	cfg := &config.Config{
		ServerHost:            "localhost",
		ServerPort:            8080,
		AppEnv:                "test",
		DBDriver:              dbDriver,
		DBConnectionString:    dsn,
		DBMaxOpenConnections:  10,
		DBMaxIdleConnections:  5,
		DBConnMaxLifetime:     time.Hour,
		LogLevel:              "error",
		JWTSecret:             "integration-test-signing-secret-0123456789",
		AuthTokenExpiration:   time.Hour,
		RateLimitLoginEnabled: false,
		CORSEnabled:           false,
		MetricsEnabled:        false,
		WorkerInterval:        time.Second,
		WorkerBatchSize:       10,
		WorkerMaxRetries:      3,
	}

	container := app.NewContainer(cfg)
	ctx := context.Background()

	employeeUC, err := container.EmployeeUseCase()
	require.NoError(t, err, "failed to get employee use case")
	_, err = employeeUC.Register(ctx, employeeUseCase.RegisterEmployeeInput{
		Email:    adminEmail,
		Password: adminPassword,
		FullName: "Integration Admin",
		Role:     authDomain.RoleAdmin,
	})
	require.NoError(t, err, "failed to bootstrap admin")

	httpServer, err := container.HTTPServer(ctx)
	require.NoError(t, err, "failed to get http server")
	server := httptest.NewServer(httpServer.GetHandler())

	itCtx := &integrationTestContext{
		container: container,
		db:        db,
		server:    server,
		dbDriver:  dbDriver,
	}
	itCtx.adminToken = itCtx.login(t, adminEmail, adminPassword)

	return itCtx
}

func teardownIntegrationTest(t *testing.T, ctx *integrationTestContext) {
	t.Helper()

	if ctx.server != nil {
		ctx.server.Close()
	}
	if ctx.container != nil {
		if err := ctx.container.Shutdown(context.Background()); err != nil {
			t.Logf("Warning: container shutdown failed: %v", err)
		}
	}
	testutil.TeardownDB(t, ctx.db)
}

func skipIfUnavailable(t *testing.T, dbDriver string) {
	t.Helper()
	if dbDriver == "postgres" {
		testutil.SkipIfNoPostgres(t)
	} else {
		testutil.SkipIfNoMySQL(t)
	}
}

func TestIntegration_Health(t *testing.T) {
	for _, dbDriver := range drivers {
		t.Run(dbDriver, func(t *testing.T) {
			skipIfUnavailable(t, dbDriver)
			ctx := setupIntegrationTest(t, dbDriver)
			defer teardownIntegrationTest(t, ctx)

			resp, body := ctx.makeRequest(t, http.MethodGet, "/health", nil, "")
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.JSONEq(t, `{"status":"healthy"}`, string(body))

			resp, body = ctx.makeRequest(t, http.MethodGet, "/api/health", nil, "")
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.JSONEq(t, `{"status":"UP","service":"OpsPilot Operations Core"}`, string(body))

			resp, _ = ctx.makeRequest(t, http.MethodGet, "/ready", nil, "")
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
		})
	}
}

func TestIntegration_Auth_CompleteFlow(t *testing.T) {
	for _, dbDriver := range drivers {
		t.Run(dbDriver, func(t *testing.T) {
			skipIfUnavailable(t, dbDriver)
			ctx := setupIntegrationTest(t, dbDriver)
			defer teardownIntegrationTest(t, ctx)

			t.Run("login failures share one answer", func(t *testing.T) {
				attempts := []authDTO.LoginRequest{
					{Email: adminEmail, Password: "wrong-password"},
					{Email: "nobody@opspilot.test", Password: adminPassword},
				}
				var bodies []string
				for _, attempt := range attempts {
					resp, body := ctx.makeRequest(t, http.MethodPost, "/api/auth/login", attempt, "")
					assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
					bodies = append(bodies, string(body))
				}
				assert.Equal(t, bodies[0], bodies[1])
			})

			t.Run("login normalizes email", func(t *testing.T) {
				token := ctx.login(t, "  ADMIN@OpsPilot.test ", adminPassword)
				assert.NotEmpty(t, token)
			})

			t.Run("anonymous register", func(t *testing.T) {
				viewer := ctx.registerEmployee(t, "", "viewer@opspilot.test", "Vera Viewer", authDomain.RoleViewer)
				assert.Equal(t, "VIEWER", viewer.Role)
				assert.True(t, viewer.Active)

				resp, _ := ctx.makeRequest(t, http.MethodPost, "/api/auth/register", authDTO.RegisterRequest{
					Email:    "sneaky@opspilot.test",
					Password: testPassword,
					FullName: "Sneaky Admin",
					Role:     "ADMIN",
				}, "")
				assert.Equal(t, http.StatusForbidden, resp.StatusCode)
			})

			t.Run("duplicate email conflicts", func(t *testing.T) {
				resp, _ := ctx.makeRequest(t, http.MethodPost, "/api/auth/register", authDTO.RegisterRequest{
					Email:    "VIEWER@opspilot.test",
					Password: testPassword,
					FullName: "Vera Again",
					Role:     "VIEWER",
				}, "")
				assert.Equal(t, http.StatusConflict, resp.StatusCode)
			})

			t.Run("me", func(t *testing.T) {
				resp, body := ctx.makeRequest(t, http.MethodGet, "/api/me", nil, ctx.adminToken)
				require.Equal(t, http.StatusOK, resp.StatusCode)

				var me authDTO.PrincipalResponse
				require.NoError(t, json.Unmarshal(body, &me))
				assert.Equal(t, adminEmail, me.Email)
				assert.Equal(t, "ADMIN", me.Role)
				assert.Contains(t, me.Authorities, "ROLE_ADMIN")
			})

			t.Run("missing and tampered tokens", func(t *testing.T) {
				resp, _ := ctx.makeRequest(t, http.MethodGet, "/api/me", nil, "")
				assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

				parts := strings.Split(ctx.adminToken, ".")
				require.Len(t, parts, 3)
				tampered := parts[0] + "." + parts[1] + ".c2lnbmF0dXJl"
				resp, _ = ctx.makeRequest(t, http.MethodGet, "/api/me", nil, tampered)
				assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			})

			t.Run("viewer cannot touch work items", func(t *testing.T) {
				token := ctx.login(t, "viewer@opspilot.test", testPassword)
				resp, _ := ctx.makeRequest(t, http.MethodGet, "/api/workitems/my", nil, token)
				assert.Equal(t, http.StatusForbidden, resp.StatusCode)
			})
		})
	}
}

func TestIntegration_Employees_Admin(t *testing.T) {
	for _, dbDriver := range drivers {
		t.Run(dbDriver, func(t *testing.T) {
			skipIfUnavailable(t, dbDriver)
			ctx := setupIntegrationTest(t, dbDriver)
			defer teardownIntegrationTest(t, ctx)

			operator := ctx.registerEmployee(t, ctx.adminToken, "olga@opspilot.test", "Olga Operator", authDomain.RoleOperator)
			viewer := ctx.registerEmployee(t, ctx.adminToken, "vic@opspilot.test", "Vic Viewer", authDomain.RoleViewer)
			assert.Equal(t, "OPERATOR", operator.Role)

			resp, body := ctx.makeRequest(t, http.MethodGet, "/api/admin/employees?offset=0&limit=2", nil, ctx.adminToken)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			var page httputil.PageResponse[employeeDTO.EmployeeResponse]
			require.NoError(t, json.Unmarshal(body, &page))
			assert.Equal(t, int64(3), page.Total)
			assert.Len(t, page.Items, 2)

			resp, body = ctx.makeRequest(t, http.MethodGet, "/api/admin/employees/operators", nil, ctx.adminToken)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			var operators []employeeDTO.EmployeeResponse
			require.NoError(t, json.Unmarshal(body, &operators))
			require.Len(t, operators, 1)
			assert.Equal(t, operator.ID, operators[0].ID)

			resp, body = ctx.makeRequest(t, http.MethodGet, "/api/admin/employees/"+viewer.ID, nil, ctx.adminToken)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.NotContains(t, string(body), "password")

			resp, _ = ctx.makeRequest(t, http.MethodGet, "/api/admin/employees/not-a-uuid", nil, ctx.adminToken)
			assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

			operatorToken := ctx.login(t, "olga@opspilot.test", testPassword)
			resp, _ = ctx.makeRequest(t, http.MethodGet, "/api/admin/employees", nil, operatorToken)
			assert.Equal(t, http.StatusForbidden, resp.StatusCode)

			viewerToken := ctx.login(t, "vic@opspilot.test", testPassword)
			inactive := false
			resp, body = ctx.makeRequest(t, http.MethodPut, "/api/admin/employees/"+viewer.ID+"/active",
				employeeDTO.SetActiveRequest{Active: &inactive}, ctx.adminToken)
			require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

			resp, _ = ctx.makeRequest(t, http.MethodPost, "/api/auth/login", authDTO.LoginRequest{
				Email:    "vic@opspilot.test",
				Password: testPassword,
			}, "")
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

			// Tokens issued before deactivation stay valid until they expire.
			resp, _ = ctx.makeRequest(t, http.MethodGet, "/api/me", nil, viewerToken)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
		})
	}
}

func TestIntegration_WorkItems_CompleteFlow(t *testing.T) {
	for _, dbDriver := range drivers {
		t.Run(dbDriver, func(t *testing.T) {
			skipIfUnavailable(t, dbDriver)
			ctx := setupIntegrationTest(t, dbDriver)
			defer teardownIntegrationTest(t, ctx)

			operator := ctx.registerEmployee(t, ctx.adminToken, "otto@opspilot.test", "Otto Operator", authDomain.RoleOperator)
			operatorToken := ctx.login(t, "otto@opspilot.test", testPassword)

			var item workItemDTO.WorkItemResponse
			t.Run("create", func(t *testing.T) {
				resp, body := ctx.makeRequest(t, http.MethodPost, "/api/workitems", workItemDTO.CreateWorkItemRequest{
					Title:       "Rotate TLS certificates",
					Description: "Edge proxies expire next week",
				}, operatorToken)
				require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
				require.NoError(t, json.Unmarshal(body, &item))

				assert.Equal(t, "OPEN", item.Status)
				assert.Equal(t, operator.ID, item.CreatedByID)
				assert.Equal(t, "Otto Operator", item.CreatedByName)
				assert.Nil(t, item.AssignedToID)
			})

			t.Run("create validation", func(t *testing.T) {
				resp, _ := ctx.makeRequest(t, http.MethodPost, "/api/workitems", workItemDTO.CreateWorkItemRequest{
					Title: "   ",
				}, operatorToken)
				assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
			})

			t.Run("update", func(t *testing.T) {
				title := "Rotate TLS certificates on edge"
				resp, body := ctx.makeRequest(t, http.MethodPut, "/api/workitems/"+item.ID,
					workItemDTO.UpdateWorkItemRequest{Title: &title}, operatorToken)
				require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

				var updated workItemDTO.WorkItemResponse
				require.NoError(t, json.Unmarshal(body, &updated))
				assert.Equal(t, title, updated.Title)
				assert.Equal(t, "Edge proxies expire next week", updated.Description)
			})

			t.Run("assign", func(t *testing.T) {
				resp, _ := ctx.makeRequest(t, http.MethodPut, "/api/admin/workitems/"+item.ID+"/assign",
					workItemDTO.AssignRequest{EmployeeID: operator.ID}, operatorToken)
				assert.Equal(t, http.StatusForbidden, resp.StatusCode)

				resp, body := ctx.makeRequest(t, http.MethodPut, "/api/admin/workitems/"+item.ID+"/assign",
					workItemDTO.AssignRequest{EmployeeID: operator.ID}, ctx.adminToken)
				require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

				var assigned workItemDTO.WorkItemResponse
				require.NoError(t, json.Unmarshal(body, &assigned))
				assert.Equal(t, "IN_PROGRESS", assigned.Status)
				require.NotNil(t, assigned.AssignedToID)
				assert.Equal(t, operator.ID, *assigned.AssignedToID)
			})

			t.Run("list mine", func(t *testing.T) {
				resp, body := ctx.makeRequest(t, http.MethodGet, "/api/workitems/my", nil, operatorToken)
				require.Equal(t, http.StatusOK, resp.StatusCode)

				var items []workItemDTO.WorkItemResponse
				require.NoError(t, json.Unmarshal(body, &items))
				require.Len(t, items, 1)
				assert.Equal(t, item.ID, items[0].ID)

				resp, body = ctx.makeRequest(t, http.MethodGet, "/api/workitems/my/paginated?page=0&size=5", nil, operatorToken)
				require.Equal(t, http.StatusOK, resp.StatusCode)

				var page workItemDTO.WorkItemPageResponse
				require.NoError(t, json.Unmarshal(body, &page))
				assert.Equal(t, int64(1), page.Total)
				assert.Equal(t, int64(1), page.TotalPages)
				assert.Equal(t, 5, page.Size)
			})

			t.Run("status", func(t *testing.T) {
				resp, _ := ctx.makeRequest(t, http.MethodPut, "/api/workitems/"+item.ID+"/status",
					workItemDTO.UpdateStatusRequest{Status: "ARCHIVED"}, operatorToken)
				assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

				resp, body := ctx.makeRequest(t, http.MethodPut, "/api/workitems/"+item.ID+"/status",
					workItemDTO.UpdateStatusRequest{Status: "COMPLETED"}, operatorToken)
				require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

				var completed workItemDTO.WorkItemResponse
				require.NoError(t, json.Unmarshal(body, &completed))
				assert.Equal(t, "COMPLETED", completed.Status)
			})

			t.Run("admin listing and dashboard", func(t *testing.T) {
				resp, body := ctx.makeRequest(t, http.MethodGet,
					"/api/admin/workitems?page=0&size=10&sortBy=createdAt&direction=desc", nil, ctx.adminToken)
				require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

				var page workItemDTO.WorkItemPageResponse
				require.NoError(t, json.Unmarshal(body, &page))
				assert.Equal(t, int64(1), page.Total)

				resp, body = ctx.makeRequest(t, http.MethodGet, "/api/admin/dashboard", nil, ctx.adminToken)
				require.Equal(t, http.StatusOK, resp.StatusCode)

				var stats workItemDTO.DashboardResponse
				require.NoError(t, json.Unmarshal(body, &stats))
				assert.Equal(t, int64(1), stats.TotalWorkItems)
				assert.Equal(t, int64(1), stats.CompletedWorkItems)
				assert.Zero(t, stats.OpenWorkItems)
				assert.Zero(t, stats.MyAssignedItems)
			})

			t.Run("unknown item", func(t *testing.T) {
				resp, _ := ctx.makeRequest(t, http.MethodPut,
					"/api/workitems/0190a5c8-7a3f-7000-8000-000000000000/status",
					workItemDTO.UpdateStatusRequest{Status: "OPEN"}, operatorToken)
				assert.Equal(t, http.StatusNotFound, resp.StatusCode)
			})

			t.Run("outbox events are relayed", func(t *testing.T) {
				outboxUC, err := ctx.container.OutboxUseCase()
				require.NoError(t, err)
				require.NoError(t, outboxUC.ProcessEvents(context.Background()))

				var pending, processed int
				require.NoError(t, ctx.db.QueryRow(
					"SELECT COUNT(*) FROM outbox_events WHERE status = 'pending'").Scan(&pending))
				require.NoError(t, ctx.db.QueryRow(
					"SELECT COUNT(*) FROM outbox_events WHERE status = 'processed'").Scan(&processed))
				assert.Zero(t, pending)
				assert.Positive(t, processed)
			})
		})
	}
}
