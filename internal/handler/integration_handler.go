package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/inbalnitzani/Integrations/internal/models"
	"github.com/inbalnitzani/Integrations/internal/service"
	appErrors "github.com/inbalnitzani/Integrations/pkg/errors"
	"github.com/inbalnitzani/Integrations/pkg/response"
)

// IntegrationHandler exposes the catalog endpoints.
type IntegrationHandler struct {
	integrations *service.IntegrationService
	exports      *service.ExportService
}

// NewIntegrationHandler constructs IntegrationHandler.
func NewIntegrationHandler(integrations *service.IntegrationService, exports *service.ExportService) *IntegrationHandler {
	return &IntegrationHandler{integrations: integrations, exports: exports}
}

// List godoc
// @Summary List integrations
// @Tags Integrations
// @Produce json
// @Param search query string false "Search name or description"
// @Param type query string false "Filter by integration type"
// @Param supplier query string false "Filter by supplier"
// @Param created_from query string false "Creation date lower bound (RFC 3339 or YYYY-MM-DD)"
// @Param created_to query string false "Creation date upper bound (RFC 3339 or YYYY-MM-DD)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /integrations [get]
func (h *IntegrationHandler) List(c *gin.Context) {
	filter := filterFromQuery(c)

	records, pagination, err := h.integrations.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, pagination)
}

// Suppliers godoc
// @Summary List distinct suppliers
// @Tags Integrations
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /integrations/suppliers [get]
func (h *IntegrationHandler) Suppliers(c *gin.Context) {
	suppliers, err := h.integrations.Suppliers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, suppliers, nil)
}

// Get godoc
// @Summary Get integration detail
// @Tags Integrations
// @Produce json
// @Param id path string true "Integration ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /integrations/{id} [get]
func (h *IntegrationHandler) Get(c *gin.Context) {
	record, err := h.integrations.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Create godoc
// @Summary Create integration
// @Tags Integrations
// @Accept json
// @Produce json
// @Param payload body service.IntegrationRequest true "Integration payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /integrations [post]
func (h *IntegrationHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.IntegrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	record, err := h.integrations.Create(c.Request.Context(), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// Update godoc
// @Summary Update integration
// @Tags Integrations
// @Accept json
// @Produce json
// @Param id path string true "Integration ID"
// @Param payload body service.IntegrationRequest true "Integration payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /integrations/{id} [put]
func (h *IntegrationHandler) Update(c *gin.Context) {
	var req service.IntegrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	record, err := h.integrations.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Delete godoc
// @Summary Delete integration
// @Tags Integrations
// @Produce json
// @Param id path string true "Integration ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /integrations/{id} [delete]
func (h *IntegrationHandler) Delete(c *gin.Context) {
	if err := h.integrations.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Export godoc
// @Summary Export the filtered catalog
// @Tags Integrations
// @Produce text/csv
// @Produce application/pdf
// @Param format query string true "csv or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /integrations/export [get]
func (h *IntegrationHandler) Export(c *gin.Context) {
	filter := filterFromQuery(c)

	result, err := h.exports.Export(c.Request.Context(), filter, service.ExportFormat(c.Query("format")))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Content)
}

func filterFromQuery(c *gin.Context) models.IntegrationFilter {
	var filter models.IntegrationFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	filter.Supplier = strings.TrimSpace(c.Query("supplier"))

	if raw := c.Query("type"); raw != "" {
		t := models.IntegrationType(raw)
		filter.Type = &t
	}

	from := parseDate(c.Query("created_from"))
	to := parseDate(c.Query("created_to"))
	// Both bounds are required or the range is dropped.
	if from != nil && to != nil {
		filter.CreatedFrom = from
		filter.CreatedTo = to
	}

	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	return filter
}

func parseDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t
	}
	return nil
}
