package analyzer

import (
	"encoding/json"
	"strings"
)

const diagnosisPrompt = `You are an expert agricultural scientist and plant pathologist.
Analyze the provided image of a plant leaf.
Identify the plant species and determine if it is healthy or diseased.
If a disease is present, identify the disease, provide a brief description, and suggest at least two treatment options.
If the plant is healthy, state that and provide two general care tips for the plant.
Respond ONLY with a JSON object that conforms to the provided schema. Do not include any markdown formatting like ` + "```json" + `.`

// BuildDiagnosisPrompt returns the instruction sent with every leaf image.
func BuildDiagnosisPrompt() string {
	return diagnosisPrompt
}

// AppendSchema appends a JSON schema to an instruction, for providers that
// cannot enforce a response schema natively.
func AppendSchema(prompt string, schema map[string]interface{}) string {
	if schema == nil {
		return prompt
	}
	encoded, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return prompt
	}
	var b strings.Builder
	b.WriteString(prompt)
	b.WriteString("\n\nThe JSON object must follow this schema:\n")
	b.Write(encoded)
	return b.String()
}
