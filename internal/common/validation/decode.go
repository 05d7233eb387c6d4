package validation

import (
	"encoding/json"
	"fmt"

	"ac-dispatch-workers/internal/common/errors"
)

// Decode validates a job's variables against s and unmarshals them into dst.
// Any failure is a non-retryable INVALID_JOB_REQUIREMENTS error.
func (s *Schema) Decode(variables string, dst interface{}) error {
	if variables == "" {
		variables = "{}"
	}

	result, err := s.ValidateJSON(variables)
	if err != nil {
		return errors.NewInvalidJobRequirementsError(err.Error())
	}
	if !result.Valid {
		return errors.NewInvalidJobRequirementsError(result.Error()).
			WithMetadata("validationErrors", result.GetErrorMessages())
	}

	if err := json.Unmarshal([]byte(variables), dst); err != nil {
		return errors.NewInvalidJobRequirementsError(fmt.Sprintf("decode variables: %v", err))
	}
	return nil
}
