package assigntechnician

import "ac-dispatch-workers/internal/common/validation"

const InputSchema = `{
	"type": "object",
	"required": ["jobId", "technicianId"],
	"properties": {
		"jobId": {"type": "string", "minLength": 1},
		"technicianId": {"type": "string", "minLength": 1}
	}
}`

var inputSchema = validation.MustCompile(InputSchema)
