package searchtechnicians

import "ac-dispatch-workers/internal/common/validation"

const InputSchema = `{
	"type": "object",
	"required": ["serviceArea"],
	"properties": {
		"serviceArea": {"type": "string", "minLength": 1},
		"requiredSkills": {"type": ["array", "null"], "items": {"type": "string"}},
		"availabilityStatuses": {"type": "array", "items": {"type": "string"}},
		"size": {"type": "integer", "minimum": 0, "maximum": 500}
	}
}`

var inputSchema = validation.MustCompile(InputSchema)
