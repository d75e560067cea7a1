package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/inbalnitzani/Integrations/pkg/config"
	appErrors "github.com/inbalnitzani/Integrations/pkg/errors"
)

func completionServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-3.5-turbo", req.Model)
		assert.InDelta(t, 0.7, req.Temperature, 0.001)

		fmt.Fprintf(w, `{"choices":[{"message":{"content":%q}}]}`, content)
	}))
}

func newAutofillService(baseURL, placeholderURL string) *AutofillService {
	return NewAutofillService(
		config.OpenAIConfig{
			APIKey:      "test-key",
			BaseURL:     baseURL,
			Model:       "gpt-3.5-turbo",
			Temperature: 0.7,
			Timeout:     5 * time.Second,
		},
		config.AutofillConfig{
			PlaceholderBaseURL: placeholderURL,
			LogoProbeTimeout:   time.Second,
		},
		nil,
		zap.NewNop(),
	)
}

func TestGenerateMissingName(t *testing.T) {
	svc := newAutofillService("http://unused", "http://placeholder")

	_, err := svc.Generate(context.Background(), "   ")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Equal(t, "Missing name", appErr.Message)
}

func TestGenerateMissingAPIKey(t *testing.T) {
	svc := NewAutofillService(config.OpenAIConfig{}, config.AutofillConfig{}, nil, zap.NewNop())

	_, err := svc.Generate(context.Background(), "Stripe")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrMissingCredential.Code, appErr.Code)
	assert.Equal(t, "No API key", appErr.Message)
}

func TestGenerateErrorStatusDegradesToEmptyFields(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"message":"rate limited"}}`)
	}))
	defer upstream.Close()

	svc := newAutofillService(upstream.URL, "http://placeholder")
	fields, err := svc.Generate(context.Background(), "Stripe")
	require.NoError(t, err)
	assert.Empty(t, fields.Name)
	assert.Empty(t, fields.Description)
	assert.Empty(t, fields.LogoURL)
}

func TestGenerateUndecodableResponse(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, "<html>bad gateway</html>")
	}))
	defer upstream.Close()

	svc := newAutofillService(upstream.URL, "http://placeholder")
	_, err := svc.Generate(context.Background(), "Stripe")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}

func TestGenerateValidLogoKept(t *testing.T) {
	logo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
	}))
	defer logo.Close()

	content := fmt.Sprintf(`{"name":"Stripe","description":"Payments","logo_url":%q}`, logo.URL+"/logo.png")
	upstream := completionServer(t, content)
	defer upstream.Close()

	svc := newAutofillService(upstream.URL, "http://placeholder")
	fields, err := svc.Generate(context.Background(), "Stripe")
	require.NoError(t, err)
	assert.Equal(t, logo.URL+"/logo.png", fields.LogoURL)
}

func TestGenerateBrokenLogoReplaced(t *testing.T) {
	logo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer logo.Close()

	content := fmt.Sprintf(`{"name":"Stripe","logo_url":%q}`, logo.URL+"/logo.png")
	upstream := completionServer(t, content)
	defer upstream.Close()

	svc := newAutofillService(upstream.URL, "https://ui-avatars.com/api")
	fields, err := svc.Generate(context.Background(), "Stripe")
	require.NoError(t, err)
	assert.Equal(t, "https://ui-avatars.com/api/?name=Stripe", fields.LogoURL)
}

func TestGenerateNonImageLogoReplaced(t *testing.T) {
	logo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
	}))
	defer logo.Close()

	content := fmt.Sprintf(`{"name":"Acme Pay","logo_url":%q}`, logo.URL+"/logo")
	upstream := completionServer(t, content)
	defer upstream.Close()

	svc := newAutofillService(upstream.URL, "https://ui-avatars.com/api")
	fields, err := svc.Generate(context.Background(), "Acme Pay")
	require.NoError(t, err)
	assert.Equal(t, "https://ui-avatars.com/api/?name=Acme+Pay", fields.LogoURL)
}

func TestGenerateUnreachableLogoReplaced(t *testing.T) {
	content := `{"logo_url":"http://127.0.0.1:1/logo.png"}`
	upstream := completionServer(t, content)
	defer upstream.Close()

	svc := newAutofillService(upstream.URL, "https://ui-avatars.com/api")
	fields, err := svc.Generate(context.Background(), "Stripe")
	require.NoError(t, err)

	// Name was blank in the model output, so the fallback label is used.
	assert.Equal(t, "https://ui-avatars.com/api/?name=Integration", fields.LogoURL)
}

func TestGenerateUnparseableOutputDegrades(t *testing.T) {
	upstream := completionServer(t, "I am sorry, I cannot produce JSON today.")
	defer upstream.Close()

	svc := newAutofillService(upstream.URL, "http://placeholder")
	fields, err := svc.Generate(context.Background(), "Stripe")
	require.NoError(t, err)
	assert.Empty(t, fields.Description)
	assert.Empty(t, fields.LogoURL)
}
