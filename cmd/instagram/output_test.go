package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesprial/go-instagram-api-wrapper/pkg/types"
)

func TestValidateFormat(t *testing.T) {
	assert.NoError(t, validateFormat("json"))
	assert.NoError(t, validateFormat("yaml"))
	assert.Error(t, validateFormat("xml"))
}

func TestPrintOutput_JSON(t *testing.T) {
	var buf bytes.Buffer
	err := printOutput(&buf, types.Tag{Name: "nofilter", MediaCount: 42}, formatJSON)
	require.NoError(t, err)

	assert.Equal(t, "{\n  \"name\": \"nofilter\",\n  \"media_count\": 42\n}\n", buf.String())
}

func TestPrintOutput_YAMLUsesJSONFieldNames(t *testing.T) {
	var buf bytes.Buffer
	err := printOutput(&buf, []types.User{{ID: "1574083", Username: "snoopdogg"}}, formatYAML)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "- ")
	assert.Contains(t, out, "id: \"1574083\"")
	assert.Contains(t, out, "username: snoopdogg")
	assert.NotContains(t, out, "Username")
}
