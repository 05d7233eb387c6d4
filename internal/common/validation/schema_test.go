package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
	"type": "object",
	"required": ["jobId", "requiredSkills"],
	"properties": {
		"jobId": {"type": "string", "minLength": 1},
		"requiredSkills": {"type": "array", "items": {"type": "string"}},
		"complexity": {"type": "string", "enum": ["simple", "moderate", "complex"]}
	}
}`

func TestSchema_ValidateJSON(t *testing.T) {
	s := MustCompile(testSchema)

	tests := []struct {
		name      string
		doc       string
		valid     bool
		badFields []string
	}{
		{
			name:  "valid",
			doc:   `{"jobId":"job-1","requiredSkills":["ac_repair"],"complexity":"simple"}`,
			valid: true,
		},
		{
			name:      "missing required",
			doc:       `{"requiredSkills":[]}`,
			badFields: []string{"jobId"},
		},
		{
			name:      "wrong item type",
			doc:       `{"jobId":"job-1","requiredSkills":[1]}`,
			badFields: []string{"requiredSkills.0"},
		},
		{
			name:      "enum violation",
			doc:       `{"jobId":"job-1","requiredSkills":[],"complexity":"extreme"}`,
			badFields: []string{"complexity"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.ValidateJSON(tt.doc)
			require.NoError(t, err)
			assert.Equal(t, tt.valid, res.Valid)
			for _, f := range tt.badFields {
				assert.True(t, res.HasErrors(f), "expected error on %s, got %v", f, res.Errors)
			}
		})
	}
}

func TestSchema_ValidateGoValue(t *testing.T) {
	s := MustCompile(testSchema)
	res, err := s.Validate(map[string]interface{}{"jobId": "job-1"})
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Contains(t, res.Error(), "requiredSkills")
}

func TestSchema_MalformedDocument(t *testing.T) {
	s := MustCompile(testSchema)
	_, err := s.ValidateJSON(`{not json`)
	assert.Error(t, err)
}

func TestCompile_Invalid(t *testing.T) {
	_, err := Compile(`{"type": 12}`)
	assert.Error(t, err)
}

func TestValidateTaskType(t *testing.T) {
	assert.NoError(t, ValidateTaskType("rank-technicians"))
	assert.NoError(t, ValidateTaskType("filter"))
	assert.Error(t, ValidateTaskType("Rank_Technicians"))
	assert.Error(t, ValidateTaskType("rank-"))
}

func TestContactFormats(t *testing.T) {
	assert.True(t, ValidateEmail("kofi@example.com"))
	assert.False(t, ValidateEmail("kofi@"))
	assert.True(t, ValidatePhone("+233 20 123 4567"))
	assert.False(t, ValidatePhone("12345"))
}
