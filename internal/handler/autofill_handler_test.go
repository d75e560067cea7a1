package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/inbalnitzani/Integrations/internal/service"
	"github.com/inbalnitzani/Integrations/pkg/config"
)

func performRequest(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func newFunctionRouter(svc *service.AutofillService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewAutofillHandler(svc, nil)
	router.POST("/functions/generate-integration-fields", h.Generate)
	router.OPTIONS("/functions/generate-integration-fields", h.Preflight)
	router.POST("/integrations/autofill", h.Merge)
	return router
}

func stubAutofillService(t *testing.T, content string) (*service.AutofillService, func()) {
	t.Helper()
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"choices":[{"message":{"content":%q}}]}`, content)
	}))
	svc := service.NewAutofillService(
		config.OpenAIConfig{APIKey: "test-key", BaseURL: upstream.URL, Model: "gpt-3.5-turbo", Temperature: 0.7, Timeout: 5 * time.Second},
		config.AutofillConfig{PlaceholderBaseURL: "https://ui-avatars.com/api", LogoProbeTimeout: time.Second},
		nil,
		zap.NewNop(),
	)
	return svc, upstream.Close
}

func assertFunctionCORS(t *testing.T, resp *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, "*", resp.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "authorization, x-client-info, apikey, content-type", resp.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "POST, GET, OPTIONS", resp.Header().Get("Access-Control-Allow-Methods"))
}

func TestGeneratePreflight(t *testing.T) {
	svc, cleanup := stubAutofillService(t, "{}")
	defer cleanup()
	router := newFunctionRouter(svc)

	req, _ := http.NewRequest(http.MethodOptions, "/functions/generate-integration-fields", nil)
	resp := performRequest(router, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assertFunctionCORS(t, resp)
}

func TestGenerateInvalidJSON(t *testing.T) {
	svc, cleanup := stubAutofillService(t, "{}")
	defer cleanup()
	router := newFunctionRouter(svc)

	req, _ := http.NewRequest(http.MethodPost, "/functions/generate-integration-fields", bytes.NewBufferString("not json"))
	req.Header.Set("Content-Type", "application/json")
	resp := performRequest(router, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.JSONEq(t, `{"error":"Invalid JSON"}`, resp.Body.String())
	assertFunctionCORS(t, resp)
}

func TestGenerateMissingNameField(t *testing.T) {
	svc, cleanup := stubAutofillService(t, "{}")
	defer cleanup()
	router := newFunctionRouter(svc)

	req, _ := http.NewRequest(http.MethodPost, "/functions/generate-integration-fields", bytes.NewBufferString(`{"name":""}`))
	req.Header.Set("Content-Type", "application/json")
	resp := performRequest(router, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.JSONEq(t, `{"error":"Missing name"}`, resp.Body.String())
	assertFunctionCORS(t, resp)
}

func TestGenerateNoAPIKey(t *testing.T) {
	svc := service.NewAutofillService(config.OpenAIConfig{}, config.AutofillConfig{}, nil, zap.NewNop())
	router := newFunctionRouter(svc)

	req, _ := http.NewRequest(http.MethodPost, "/functions/generate-integration-fields", bytes.NewBufferString(`{"name":"Stripe"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := performRequest(router, req)

	require.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.JSONEq(t, `{"error":"No API key"}`, resp.Body.String())
	assertFunctionCORS(t, resp)
}

func TestGenerateUpstreamErrorStatusReturnsEmptyResult(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"message":"rate limited"}}`)
	}))
	defer upstream.Close()

	svc := service.NewAutofillService(
		config.OpenAIConfig{APIKey: "test-key", BaseURL: upstream.URL, Timeout: 5 * time.Second},
		config.AutofillConfig{},
		nil,
		zap.NewNop(),
	)
	router := newFunctionRouter(svc)

	req, _ := http.NewRequest(http.MethodPost, "/functions/generate-integration-fields", bytes.NewBufferString(`{"name":"Stripe"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := performRequest(router, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assertFunctionCORS(t, resp)
	assert.Contains(t, resp.Body.String(), `"result"`)
	assert.Contains(t, resp.Body.String(), `"description":""`)
	assert.Contains(t, resp.Body.String(), `"logo_url":""`)
}

func TestGenerateUpstreamFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, "<html>upstream down</html>")
	}))
	defer upstream.Close()

	svc := service.NewAutofillService(
		config.OpenAIConfig{APIKey: "test-key", BaseURL: upstream.URL, Timeout: 5 * time.Second},
		config.AutofillConfig{},
		nil,
		zap.NewNop(),
	)
	router := newFunctionRouter(svc)

	req, _ := http.NewRequest(http.MethodPost, "/functions/generate-integration-fields", bytes.NewBufferString(`{"name":"Stripe"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := performRequest(router, req)

	require.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.JSONEq(t, `{"error":"Internal server error."}`, resp.Body.String())
	assertFunctionCORS(t, resp)
}

func TestGenerateSuccessEnvelopesResult(t *testing.T) {
	svc, cleanup := stubAutofillService(t, `{"name":"Stripe","description":"Payments","tags":"payments","supplier":"Stripe Inc","integration_type":"Payment Processors"}`)
	defer cleanup()
	router := newFunctionRouter(svc)

	req, _ := http.NewRequest(http.MethodPost, "/functions/generate-integration-fields", bytes.NewBufferString(`{"name":"Stripe"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := performRequest(router, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assertFunctionCORS(t, resp)
	assert.Contains(t, resp.Body.String(), `"result"`)
	assert.Contains(t, resp.Body.String(), `"description":"Payments"`)
	assert.Contains(t, resp.Body.String(), `"integration_type":"Payment Processors"`)
}

func TestMergeRequiresName(t *testing.T) {
	svc, cleanup := stubAutofillService(t, "{}")
	defer cleanup()
	router := newFunctionRouter(svc)

	req, _ := http.NewRequest(http.MethodPost, "/integrations/autofill", bytes.NewBufferString(`{"description":"no name"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := performRequest(router, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "draft name is required")
}

func TestMergeKeepsUserValues(t *testing.T) {
	svc, cleanup := stubAutofillService(t, `{"description":"Generated description","tags":"payments"}`)
	defer cleanup()
	router := newFunctionRouter(svc)

	body := `{"name":"Stripe","description":"User wrote this","supplier":"Stripe Inc"}`
	req, _ := http.NewRequest(http.MethodPost, "/integrations/autofill", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp := performRequest(router, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"description":"Generated description"`)
	assert.Contains(t, resp.Body.String(), `"supplier":"Stripe Inc"`)
	assert.Contains(t, resp.Body.String(), `"tags":"payments"`)
}
