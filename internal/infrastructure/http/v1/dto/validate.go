package dto

// ValidateRequest carries an identifier to check.
type ValidateRequest struct {
	Value string `json:"value" binding:"required"`
}

// ValidateResponse reports a successful validation with canonical forms.
type ValidateResponse struct {
	Valid     bool   `json:"valid"`
	Canonical string `json:"canonical"`
	Formatted string `json:"formatted"`
}
