// internal/common/validation/request.go
package validation

func intPtr(i int) *int { return &i }

// RecommendationRequestSchema constrains the POST /api/v1/recommendations payload.
// Sector membership against the loaded dataset is checked separately by the service.
var RecommendationRequestSchema = JSONSchema{
	Type: "object",
	Properties: map[string]Property{
		"sector": {
			Type:      "string",
			MaxLength: intPtr(100),
		},
		"sectors": {
			Type:  "array",
			Items: &Property{Type: "string", MaxLength: intPtr(100)},
		},
		"risk": {
			Type: "string",
			Enum: []string{"Low", "Medium", "High"},
		},
		"text": {
			Type:      "string",
			MaxLength: intPtr(2000),
		},
	},
	AdditionalProperties: false,
}

// EmailRequestSchema constrains the POST /api/v1/notify/email payload.
var EmailRequestSchema = JSONSchema{
	Type: "object",
	Properties: map[string]Property{
		"interactionId": {
			Type:      "string",
			MinLength: intPtr(1),
		},
		"to": {
			Type:    "string",
			Pattern: strPtr(`^[^@\s]+@[^@\s]+\.[^@\s]+$`),
		},
	},
	Required:             []string{"interactionId", "to"},
	AdditionalProperties: false,
}

func strPtr(s string) *string { return &s }
