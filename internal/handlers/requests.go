package handlers

// FieldUpdateRequest sets one form field
type FieldUpdateRequest struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// FdtTypeRequest switches between distribution and feeder terminals
type FdtTypeRequest struct {
	FdtType string `json:"fdt_type"`
}

// SettingsUpdateRequest represents a request to update settings. Omitted
// fields are left unchanged.
type SettingsUpdateRequest struct {
	PrimaryURL   *string `json:"primary_url"`
	SecondaryURL *string `json:"secondary_url"`
	Language     *string `json:"language"`
}
