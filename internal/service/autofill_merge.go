package service

import "github.com/inbalnitzani/Integrations/internal/models"

// MergeGeneratedFields folds proposed field values into a draft record,
// preferring each incoming value only when it is non-empty. A field the model
// left blank never clobbers what the user already typed.
func MergeGeneratedFields(draft models.Integration, fields models.GeneratedFields) models.Integration {
	if fields.Description != "" {
		draft.Description = fields.Description
	}
	if fields.APIDocsURL != "" {
		draft.APIDocsURL = fields.APIDocsURL
	}
	if fields.SampleConfig != "" {
		draft.ConfigExample = fields.SampleConfig
	}
	if fields.LogoURL != "" {
		draft.LogoURL = fields.LogoURL
	}
	if fields.Tags != "" {
		draft.Tags = fields.Tags
	}
	if fields.Supplier != "" {
		draft.Supplier = fields.Supplier
	}
	if fields.Type != "" {
		if t := models.IntegrationType(fields.Type); t.Valid() {
			draft.Type = t
		}
	}
	return draft
}
