package models

// GeneratedFields is the sanitized field set proposed by the model for an
// integration name. All values are plain strings; tags stays a comma-separated
// string rather than an array, matching the record shape.
type GeneratedFields struct {
	Name         string `json:"name,omitempty"`
	Description  string `json:"description"`
	APIDocsURL   string `json:"api_docs_url"`
	SampleConfig string `json:"sample_config"`
	LogoURL      string `json:"logo_url"`
	Tags         string `json:"tags"`
	Supplier     string `json:"supplier"`
	Type         string `json:"integration_type"`
}
