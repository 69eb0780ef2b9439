package routes

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ratesvc/internal/config"
	"ratesvc/internal/domain/fees"
	"ratesvc/internal/handlers"
	"ratesvc/internal/models"
	"ratesvc/internal/services/rates"
	"ratesvc/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type MockRatesService struct {
	mock.Mock
}

func (m *MockRatesService) Instantiate(ctx context.Context, req rates.InstantiateRequest) (*rates.ActionResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rates.ActionResponse), args.Error(1)
}

func (m *MockRatesService) UpdateRates(ctx context.Context, sender string, entries []fees.RateEntry) (*rates.ActionResponse, error) {
	args := m.Called(ctx, sender, entries)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rates.ActionResponse), args.Error(1)
}

func (m *MockRatesService) UpdateSaleTimestamp(ctx context.Context, sender string, lastTimestamp uint64) (*rates.ActionResponse, error) {
	args := m.Called(ctx, sender, lastTimestamp)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rates.ActionResponse), args.Error(1)
}

func (m *MockRatesService) Execute(ctx context.Context, sender string, msg fees.Instruction) (*rates.ActionResponse, error) {
	args := m.Called(ctx, sender, msg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rates.ActionResponse), args.Error(1)
}

func (m *MockRatesService) Payments(ctx context.Context) (*rates.PaymentsResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rates.PaymentsResponse), args.Error(1)
}

func (m *MockRatesService) DeductedFunds(ctx context.Context, funds fees.Funds) (*rates.OnFundsTransferResponse, error) {
	args := m.Called(ctx, funds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rates.OnFundsTransferResponse), args.Error(1)
}

func newTestApp(svc rates.Service, checks map[string]handlers.HealthCheck) *fiber.App {
	app := fiber.New()
	SetupRoutes(app, Dependencies{
		RatesService: svc,
		HealthChecks: checks,
		Gatherer:     prometheus.NewRegistry(),
		Auth:         config.AuthConfig{JWTSecret: testSecret},
		Limiter:      config.LimiterConfig{Max: 2, Expiration: time.Minute},
	})
	return app
}

func bearer(t *testing.T, address, role string) string {
	t.Helper()
	tok, err := utils.GenerateToken(utils.TokenOptions{
		Secret:  testSecret,
		TTL:     time.Hour,
		Address: address,
		Role:    role,
	})
	require.NoError(t, err)
	return "Bearer " + tok
}

func do(t *testing.T, app *fiber.App, method, path, body, auth string) (*http.Response, map[string]interface{}) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)

	out := map[string]interface{}{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = json.Unmarshal(raw, &out)
	return resp, out
}

func TestGetPayments(t *testing.T) {
	svc := new(MockRatesService)
	svc.On("Payments", mock.Anything).Return(&rates.PaymentsResponse{
		Payments: []fees.RateEntry{{
			Rate:       fees.FlatRate(20, "uusd"),
			IsAdditive: true,
			Recipients: []fees.Recipient{{Address: "recipient1"}},
		}},
		LastTimestamp: 42,
	}, nil)

	resp, body := do(t, newTestApp(svc, nil), fiber.MethodGet, "/api/rates", "", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(42), body["last_timestamp"])
	assert.Len(t, body["payments"], 1)
}

func TestDeductedFunds(t *testing.T) {
	svc := new(MockRatesService)
	svc.On("DeductedFunds", mock.Anything, fees.NativeFunds(100, "uusd")).Return(&rates.OnFundsTransferResponse{
		DistributionResult: fees.DistributionResult{LeftoverFunds: fees.NativeFunds(90, "uusd")},
		EvaluationID:       "id",
		Digest:             "abc",
	}, nil)
	svc.On("DeductedFunds", mock.Anything, fees.NativeFunds(1, "uusd")).Return(nil, fees.ErrInvalidTimestamp)

	app := newTestApp(svc, nil)

	resp, body := do(t, app, fiber.MethodPost, "/api/rates/deducted", `{"native":{"amount":"100","denom":"uusd"}}`, "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "abc", body["digest"])
	assert.Equal(t, map[string]interface{}{"native": map[string]interface{}{"amount": "90", "denom": "uusd"}}, body["leftover_funds"])

	resp, body = do(t, app, fiber.MethodPost, "/api/rates/deducted", `{"native":{"amount":"1","denom":"uusd"}}`, "")
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "temporal", body["kind"])

	// third request within the window is rejected before reaching the service
	resp, _ = do(t, app, fiber.MethodPost, "/api/rates/deducted", `{"native":{"amount":"2","denom":"uusd"}}`, "")
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	svc.AssertNumberOfCalls(t, "DeductedFunds", 2)
}

func TestDeductedFunds_BadBody(t *testing.T) {
	svc := new(MockRatesService)
	resp, body := do(t, newTestApp(svc, nil), fiber.MethodPost, "/api/rates/deducted", `{"native":`, "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "validation", body["kind"])
	svc.AssertNotCalled(t, "DeductedFunds", mock.Anything, mock.Anything)
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation", fees.ErrInvalidRate, fiber.StatusBadRequest},
		{"temporal", fees.ErrInvalidTimestamp, fiber.StatusConflict},
		{"arithmetic", fees.ErrInsufficientFunds, fiber.StatusUnprocessableEntity},
		{"unauthorized", rates.ErrUnauthorized, fiber.StatusForbidden},
		{"not instantiated", rates.ErrNotInstantiated, fiber.StatusNotFound},
		{"internal", errors.New("db down"), fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockRatesService)
			svc.On("UpdateRates", mock.Anything, "owner", mock.Anything).Return(nil, tt.err)

			resp, _ := do(t, newTestApp(svc, nil), fiber.MethodPut, "/api/rates", `{"rates":[]}`, bearer(t, "owner", models.RoleOperator))
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestInstantiate(t *testing.T) {
	t.Run("owner defaults to caller", func(t *testing.T) {
		svc := new(MockRatesService)
		svc.On("Instantiate", mock.Anything, mock.MatchedBy(func(req rates.InstantiateRequest) bool {
			return req.Owner == "owner" && len(req.Rates) == 1
		})).Return(&rates.ActionResponse{Attributes: []fees.Attribute{{Key: "action", Value: "instantiate"}}}, nil)

		body := `{"rates":[{"rate":{"percent":{"percent":"0.1"}},"is_additive":false,"recipients":[{"address":"r1"}]}]}`
		resp, _ := do(t, newTestApp(svc, nil), fiber.MethodPost, "/api/rates", body, bearer(t, "owner", models.RoleOperator))
		assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
		svc.AssertExpectations(t)
	})

	t.Run("invalid operator address", func(t *testing.T) {
		svc := new(MockRatesService)
		resp, body := do(t, newTestApp(svc, nil), fiber.MethodPost, "/api/rates", `{"operators":["not an address"],"rates":[]}`, bearer(t, "owner", models.RoleOperator))
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, body["error"], "operators")
	})

	t.Run("requires token", func(t *testing.T) {
		resp, _ := do(t, newTestApp(new(MockRatesService), nil), fiber.MethodPost, "/api/rates", `{}`, "")
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("requires write permission", func(t *testing.T) {
		resp, _ := do(t, newTestApp(new(MockRatesService), nil), fiber.MethodPost, "/api/rates", `{}`, bearer(t, "viewer", "viewer"))
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})
}

func TestUpdateSaleTimestamp(t *testing.T) {
	svc := new(MockRatesService)
	svc.On("UpdateSaleTimestamp", mock.Anything, "owner", uint64(1_571_797_419)).
		Return(&rates.ActionResponse{Attributes: []fees.Attribute{{Key: "action", Value: "update_sale_timestamp"}}}, nil)
	app := newTestApp(svc, nil)

	resp, _ := do(t, app, fiber.MethodPut, "/api/rates/timestamp", `{"last_timestamp":1571797419}`, bearer(t, "owner", models.RoleOperator))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = do(t, app, fiber.MethodPut, "/api/rates/timestamp", `{}`, bearer(t, "owner", models.RoleOperator))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	svc.AssertNumberOfCalls(t, "UpdateSaleTimestamp", 1)
}

func TestExecute(t *testing.T) {
	svc := new(MockRatesService)
	msg := fees.Instruction{UpdateSaleTimestamp: &fees.UpdateSaleTimestamp{Contract: "cosmos2contract", LastTimestamp: 7}}
	svc.On("Execute", mock.Anything, "cosmos2contract", msg).
		Return(&rates.ActionResponse{Attributes: []fees.Attribute{{Key: "action", Value: "update_sale_timestamp"}}}, nil)

	body := `{"update_sale_timestamp":{"contract_addr":"cosmos2contract","last_timestamp":7}}`
	resp, _ := do(t, newTestApp(svc, nil), fiber.MethodPost, "/api/rates/execute", body, bearer(t, "cosmos2contract", models.RoleSystem))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	svc.AssertExpectations(t)
}

func TestHealth(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	resp, body := do(t, newTestApp(new(MockRatesService), map[string]handlers.HealthCheck{"database": ok, "redis": ok}), fiber.MethodGet, "/health", "", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])

	resp, body = do(t, newTestApp(new(MockRatesService), map[string]handlers.HealthCheck{"database": ok, "redis": down}), fiber.MethodGet, "/health", "", "")
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "degraded", body["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	req := httptest.NewRequest(fiber.MethodGet, "/metrics", nil)
	resp, err := newTestApp(new(MockRatesService), nil).Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
