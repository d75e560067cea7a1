package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inbalnitzani/Integrations/internal/models"
	"github.com/inbalnitzani/Integrations/internal/service"
	appErrors "github.com/inbalnitzani/Integrations/pkg/errors"
	"github.com/inbalnitzani/Integrations/pkg/response"
)

// AutofillHandler exposes the AI field-generation function. The function
// route keeps the original edge-function wire contract (bare JSON bodies and
// permissive CORS) so existing clients keep working unchanged.
type AutofillHandler struct {
	autofill *service.AutofillService
	metrics  *service.MetricsService
}

// NewAutofillHandler constructs AutofillHandler.
func NewAutofillHandler(autofill *service.AutofillService, metrics *service.MetricsService) *AutofillHandler {
	return &AutofillHandler{autofill: autofill, metrics: metrics}
}

func setFunctionCORS(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")
	c.Header("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
}

// Preflight answers the CORS preflight for the function route.
func (h *AutofillHandler) Preflight(c *gin.Context) {
	setFunctionCORS(c)
	c.Status(http.StatusOK)
}

// Generate godoc
// @Summary Generate integration fields with AI
// @Description Proposes record field values from an integration name
// @Tags Autofill
// @Accept json
// @Produce json
// @Param payload body object true "{\"name\": string}"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /functions/generate-integration-fields [post]
func (h *AutofillHandler) Generate(c *gin.Context) {
	setFunctionCORS(c)

	var payload struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	if payload.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing name"})
		return
	}

	if h.metrics != nil {
		h.metrics.CountAutofill()
	}

	fields, err := h.autofill.Generate(c.Request.Context(), payload.Name)
	if err != nil {
		switch appErrors.FromError(err).Code {
		case appErrors.ErrMissingCredential.Code:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "No API key"})
		case appErrors.ErrValidation.Code:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing name"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error."})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": fields})
}

// Merge godoc
// @Summary Autofill a draft record
// @Description Generates fields for the draft's name and merges non-empty proposals into it
// @Tags Autofill
// @Accept json
// @Produce json
// @Param payload body models.Integration true "Draft record; name must be set"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /integrations/autofill [post]
func (h *AutofillHandler) Merge(c *gin.Context) {
	var draft models.Integration
	if err := c.ShouldBindJSON(&draft); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid draft payload"))
		return
	}
	if draft.Name == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "draft name is required"))
		return
	}

	if h.metrics != nil {
		h.metrics.CountAutofill()
	}

	fields, err := h.autofill.Generate(c.Request.Context(), draft.Name)
	if err != nil {
		response.Error(c, err)
		return
	}

	merged := service.MergeGeneratedFields(draft, *fields)
	response.JSON(c, http.StatusOK, merged, nil)
}
