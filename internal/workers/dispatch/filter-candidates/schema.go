package filtercandidates

import (
	"ac-dispatch-workers/internal/common/validation"
	"ac-dispatch-workers/internal/roster"
)

const InputSchema = `{
	"type": "object",
	"required": ["technicians"],
	"properties": {
		"technicians": {"type": "array", "items": ` + roster.TechnicianSchema + `}
	}
}`

var inputSchema = validation.MustCompile(InputSchema)
