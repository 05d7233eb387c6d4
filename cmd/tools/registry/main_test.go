package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestValidate_ShippedRegistry(t *testing.T) {
	out, errOut, err := run(t, "validate", "--path", "../../../configs/activity-registry.json")
	require.NoError(t, err, errOut)
	assert.Contains(t, out, "Registry validation passed. Found 6 activities.")
	assert.NotContains(t, out, "warning:")
}

func TestValidate_UnservedTaskType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"version": "1.0.0",
		"activities": [
			{"id": "route-van", "displayName": "Route Van", "category": "dispatch", "taskType": "route-van"}
		]
	}`), 0o644))

	_, errOut, err := run(t, "validate", "--path", path)
	require.Error(t, err)
	assert.Contains(t, errOut, `no worker serves task type "route-van"`)
}

func TestList(t *testing.T) {
	out, _, err := run(t, "list", "--path", "../../../configs/activity-registry.json")
	require.NoError(t, err)
	assert.Contains(t, out, "TASK TYPE")
	assert.Contains(t, out, "rank-technicians")
}

func TestStatus(t *testing.T) {
	src, err := os.ReadFile("../../../configs/activity-registry.json")
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "registry.json")
	require.NoError(t, os.WriteFile(path, src, 0o644))

	out, _, err := run(t, "status", "assign-technician", "verified", "--path", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Updated activity assign-technician status to verified")

	out, _, err = run(t, "list", "--path", path)
	require.NoError(t, err)
	assert.Contains(t, out, "verified")
}
