package calculatematchscore

import (
	"ac-dispatch-workers/internal/common/validation"
	"ac-dispatch-workers/internal/roster"
)

const InputSchema = `{
	"type": "object",
	"properties": {
		"technicianId": {"type": "string", "minLength": 1},
		"technician": ` + roster.TechnicianSchema + `,
		"jobId": {"type": "string", "minLength": 1},
		"requirements": ` + roster.RequirementsSchema + `
	},
	"allOf": [
		{"anyOf": [{"required": ["technicianId"]}, {"required": ["technician"]}]},
		{"anyOf": [{"required": ["jobId"]}, {"required": ["requirements"]}]}
	]
}`

var inputSchema = validation.MustCompile(InputSchema)
