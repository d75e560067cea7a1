package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/inbalnitzani/Integrations/internal/models"
	"github.com/inbalnitzani/Integrations/pkg/config"
	appErrors "github.com/inbalnitzani/Integrations/pkg/errors"
)

const promptTemplate = `Return a valid JSON object only (no explanation), for the integration "%s" with the following fields:

{
  "name": (the name of the integration),
  "description": (a short description of the integration),
  "api_docs_url": (a direct URL to the API documentation),
  "sample_config": (an example of a configuration string),
  "logo_url": (a direct URL to a logo image),
  "tags": (a comma-separated string, e.g., "email,communication,Google"),
  "supplier": (name of the provider/supplier),
  "integration_type": (one of the following: "Invoicing & Billing", "SMS & Messaging", "Chat & Instant Messaging", "Major CRMs", "Email Services", or "Payment Processors")
}

Make sure:
- All fields are filled with meaningful data based on the integration.
- "integration_type" must exactly match one of the allowed values above.
- "tags" must be a string, not an array.
- Do not include any explanation or text before/after the JSON.
Return only valid JSON.`

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// AutofillService synthesizes integration record fields from just a name by
// prompting a chat-completion model and sanitizing whatever comes back.
type AutofillService struct {
	cfg         config.OpenAIConfig
	placeholder string
	client      *http.Client
	probe       *http.Client
	metrics     *MetricsService
	logger      *zap.Logger
}

// NewAutofillService constructs the field-generation service. A nil metrics
// service disables instrumentation.
func NewAutofillService(cfg config.OpenAIConfig, autofill config.AutofillConfig, metrics *MetricsService, logger *zap.Logger) *AutofillService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AutofillService{
		cfg:         cfg,
		placeholder: strings.TrimRight(autofill.PlaceholderBaseURL, "/"),
		client:      &http.Client{Timeout: cfg.Timeout},
		probe:       &http.Client{Timeout: autofill.LogoProbeTimeout},
		metrics:     metrics,
		logger:      logger,
	}
}

// Generate proposes field values for the named integration. Malformed model
// output degrades to an empty field set; only transport-level failures and a
// missing credential surface as errors.
func (s *AutofillService) Generate(ctx context.Context, name string) (*models.GeneratedFields, error) {
	if strings.TrimSpace(name) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Missing name")
	}
	if s.cfg.APIKey == "" {
		return nil, appErrors.Clone(appErrors.ErrMissingCredential, "No API key")
	}

	message, err := s.complete(ctx, fmt.Sprintf(promptTemplate, name))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "model completion failed")
	}

	fields, direct := parseGeneratedFields(message)
	if !direct && s.metrics != nil {
		s.metrics.CountParseFallback()
	}

	if fields.LogoURL != "" && !s.isValidImageURL(ctx, fields.LogoURL) {
		fields.LogoURL = s.placeholderURL(fields.Name)
		if s.metrics != nil {
			s.metrics.CountLogoSubstitution()
		}
	}

	return &fields, nil
}

func (s *AutofillService) complete(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(chatCompletionRequest{
		Model:       s.cfg.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshal completion request: %w", err)
	}

	endpoint := strings.TrimRight(s.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call completion endpoint: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read completion response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		// Error statuses still carry a JSON body without choices; the
		// caller degrades to empty fields rather than failing the request.
		s.logger.Warn("completion endpoint returned error status", zap.Int("status", resp.StatusCode))
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", fmt.Errorf("decode completion response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", nil
	}
	return completion.Choices[0].Message.Content, nil
}

// isValidImageURL probes the URL with a HEAD request and accepts only a 2xx
// status carrying an image content type. Any network error counts as invalid.
func (s *AutofillService) isValidImageURL(ctx context.Context, rawURL string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return false
	}

	resp, err := s.probe.Do(req)
	if err != nil {
		s.logger.Debug("logo probe failed", zap.String("url", rawURL), zap.Error(err))
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return false
	}
	return strings.HasPrefix(resp.Header.Get("Content-Type"), "image/")
}

func (s *AutofillService) placeholderURL(name string) string {
	if name == "" {
		name = "Integration"
	}
	return s.placeholder + "/?name=" + url.QueryEscape(name)
}
