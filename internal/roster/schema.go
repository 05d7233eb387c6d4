package roster

// TechnicianSchema is the JSON schema of a technician passed inline in job
// variables. Missing fields take their zero value; maxJobsPerDay falls back
// to the configured default.
const TechnicianSchema = `{
	"type": "object",
	"required": ["id"],
	"properties": {
		"id": {"type": "string", "minLength": 1},
		"displayName": {"type": "string"},
		"skills": {"type": ["array", "null"], "items": {"type": "string"}},
		"serviceAreas": {"type": ["array", "null"], "items": {"type": "string"}},
		"availabilityStatus": {"type": "string"},
		"level": {"type": "string"},
		"yearsOfExperience": {"type": "integer", "minimum": 0},
		"currentJobIds": {"type": ["array", "null"], "items": {"type": "string"}},
		"maxJobsPerDay": {"type": "integer", "minimum": 0},
		"averageRating": {"type": "number"},
		"firstTimeFixRate": {"type": "number"}
	}
}`

// RequirementsSchema is the JSON schema of a job's matching requirements.
const RequirementsSchema = `{
	"type": "object",
	"required": ["requiredSkills", "serviceArea"],
	"properties": {
		"requiredSkills": {"type": ["array", "null"], "items": {"type": "string"}},
		"serviceArea": {"type": "string"},
		"complexity": {"type": "string"},
		"emergency": {"type": "boolean"},
		"requiresVehicle": {"type": "boolean"}
	}
}`
