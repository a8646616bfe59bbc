package analyzer

// Field names of the diagnosis object.
const (
	FieldIsHealthy            = "isHealthy"
	FieldDiseaseName          = "diseaseName"
	FieldDescription          = "description"
	FieldTreatmentSuggestions = "treatmentSuggestions"
)

// RequiredFields lists every field the model must return.
var RequiredFields = []string{
	FieldIsHealthy,
	FieldDiseaseName,
	FieldDescription,
	FieldTreatmentSuggestions,
}

// ResponseSchema returns the JSON schema of the diagnosis object.
// A fresh map is built on each call so providers may rewrite it.
func ResponseSchema() map[string]interface{} {
	required := make([]interface{}, len(RequiredFields))
	for i, f := range RequiredFields {
		required[i] = f
	}
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			FieldIsHealthy: map[string]interface{}{
				"type":        "boolean",
				"description": "Is the plant in the image healthy?",
			},
			FieldDiseaseName: map[string]interface{}{
				"type":        "string",
				"description": "The common name of the disease. If healthy, this should be 'Healthy'.",
			},
			FieldDescription: map[string]interface{}{
				"type":        "string",
				"description": "A brief, easy-to-understand description of the disease or the plant's healthy state.",
			},
			FieldTreatmentSuggestions: map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string"},
				"description": "A list of at least two actionable treatment suggestions. If healthy, provide two general care tips.",
			},
		},
		"required": required,
	}
}
