package ranktechnicians

import (
	"ac-dispatch-workers/internal/common/validation"
	"ac-dispatch-workers/internal/roster"
)

const InputSchema = `{
	"type": "object",
	"properties": {
		"jobId": {"type": "string", "minLength": 1},
		"requirements": ` + roster.RequirementsSchema + `,
		"technicians": {"type": "array", "items": ` + roster.TechnicianSchema + `},
		"technicianIds": {"type": "array", "items": {"type": "string", "minLength": 1}},
		"limit": {"type": "integer", "minimum": 0}
	},
	"anyOf": [{"required": ["jobId"]}, {"required": ["requirements"]}]
}`

var inputSchema = validation.MustCompile(InputSchema)
