package sendassignmentnotification

import (
	"ac-dispatch-workers/internal/common/validation"
	"ac-dispatch-workers/internal/roster"
)

const InputSchema = `{
	"type": "object",
	"required": ["jobId", "technicianId"],
	"properties": {
		"assignmentId": {"type": "string"},
		"jobId": {"type": "string", "minLength": 1},
		"technicianId": {"type": "string", "minLength": 1},
		"technician": ` + roster.TechnicianSchema + `,
		"requirements": ` + roster.RequirementsSchema + `
	}
}`

var inputSchema = validation.MustCompile(InputSchema)
