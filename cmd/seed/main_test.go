package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datasets/internal/domain/auth"
	"datasets/internal/fixture"
)

const fixturePath = "../../internal/fixture/testdata/tree_preservation.yaml"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestValidateCommand(t *testing.T) {
	out, err := run(t, "validate", fixturePath)
	require.NoError(t, err)
	assert.Contains(t, out, "3 datasets, 1 categories (3 values), 2 organisations, 3 records")
}

func TestValidateCommand_JSON(t *testing.T) {
	out, err := run(t, "--format", "json", "validate", fixturePath)
	require.NoError(t, err)

	var got map[string]fixture.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 3, got[fixturePath].Datasets)
}

func TestValidateCommand_MissingFile(t *testing.T) {
	_, err := run(t, "validate", "testdata/missing.yaml")
	assert.ErrorContains(t, err, "failed to read fixture file")
}

func TestRootCommand_InvalidFormat(t *testing.T) {
	_, err := run(t, "--format", "xml", "validate", fixturePath)
	assert.ErrorContains(t, err, `invalid format "xml"`)
}

func TestSchemaCommand_NeedsDatabase(t *testing.T) {
	_, err := run(t, "--database-url", "", "schema")
	assert.ErrorContains(t, err, "--database-url or DATABASE_URL is required")
}

func TestTokenCommand(t *testing.T) {
	out, err := run(t, "token", "--secret", "s3cret", "--role", "editor", "planner")
	require.NoError(t, err)

	user, err := auth.NewJWTService(auth.DefaultJWTConfig("s3cret")).ValidateToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "planner", user.UserID)
	assert.Equal(t, []string{"editor"}, user.Roles)
}
