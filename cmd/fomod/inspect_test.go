package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspectCmd_Structure(t *testing.T) {
	assert.Equal(t, "inspect <path>", inspectCmd.Use)
	assert.NotEmpty(t, inspectCmd.Short)
	assert.NotEmpty(t, inspectCmd.Long)
}

func TestInspectCmd_Text(t *testing.T) {
	resetGlobals(t)
	mod := writeMod(t, textureScript)

	out, err := runCLI(t, "inspect", mod)
	require.NoError(t, err)

	assert.Contains(t, out, "Module: Texture Pack")
	assert.Contains(t, out, "Required files: 1")
	assert.Contains(t, out, "Conditional patterns: 1")
	assert.Contains(t, out, "Step 1: Textures")
	assert.Contains(t, out, "Size [SelectExactlyOne]")
	assert.Contains(t, out, "- 2K (Recommended)")
	assert.Contains(t, out, "- USSEP Patch (conditional, default Optional)")
	assert.Contains(t, out, `Step 3: 2K Extras (when res="2k")`)
}

func TestInspectCmd_Info(t *testing.T) {
	resetGlobals(t)
	mod := writeMod(t, textureScript)
	info := `<fomod><Name>Texture Pack</Name><Author>Jane</Author><Version>2.1</Version></fomod>`
	require.NoError(t, os.WriteFile(filepath.Join(mod, "fomod", "info.xml"), []byte(info), 0644))

	out, err := runCLI(t, "inspect", mod)
	require.NoError(t, err)
	assert.Contains(t, out, "Author: Jane")
	assert.Contains(t, out, "Version: 2.1")
}

func TestInspectCmd_JSON(t *testing.T) {
	resetGlobals(t)
	mod := writeMod(t, textureScript)

	out, err := runCLI(t, "inspect", mod, "--json")
	require.NoError(t, err)

	var got inspectJSON
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "Texture Pack", got.Module)
	assert.Equal(t, 1, got.RequiredFiles)
	assert.False(t, got.ModuleDependencies)
	require.Len(t, got.Steps, 3)
	assert.False(t, got.Steps[0].Conditional)
	assert.True(t, got.Steps[2].Conditional)

	require.Len(t, got.Steps[0].Groups, 1)
	size := got.Steps[0].Groups[0]
	assert.Equal(t, "SelectExactlyOne", size.Type)
	require.Len(t, size.Plugins, 2)
	assert.Equal(t, "1K", size.Plugins[0].Name)
	assert.Equal(t, 1, size.Plugins[0].Flags)
}

func TestInspectCmd_InvalidScript(t *testing.T) {
	resetGlobals(t)
	mod := writeMod(t, `<config><installSteps/></config>`)

	_, err := runCLI(t, "inspect", mod)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "moduleName")
}
