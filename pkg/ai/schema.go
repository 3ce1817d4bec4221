package ai

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// gradingResponseSchema describes the JSON the grading prompt asks for.
// Responses are validated before any field is trusted, so a malformed or
// truncated model reply fails the grading attempt instead of producing a
// half-applied result.
const gradingResponseSchema = `{
  "type": "object",
  "required": ["feedback", "criteriaEvaluation"],
  "properties": {
    "feedback": {"type": "string"},
    "criteriaEvaluation": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["criteria", "score", "feedback"],
        "properties": {
          "criteria": {"type": "string"},
          "score": {"type": "number", "minimum": 0, "maximum": 100},
          "feedback": {"type": "string"}
        }
      }
    }
  }
}`

var compiledGradingSchema = jsonschema.MustCompileString("grading_response.json", gradingResponseSchema)

func validateGradingResponse(content string) error {
	var decoded interface{}
	if err := json.Unmarshal([]byte(content), &decoded); err != nil {
		return fmt.Errorf("decode grading response: %w", err)
	}

	if err := compiledGradingSchema.Validate(decoded); err != nil {
		return fmt.Errorf("grading response schema: %w", err)
	}

	return nil
}
