package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// textureScript offers a texture size, a patch that becomes Recommended when the
// unofficial patch is Active, and an extras step shown only for 2K
const textureScript = `<config>
  <moduleName>Texture Pack</moduleName>
  <requiredInstallFiles><file source="core.esp"/></requiredInstallFiles>
  <installSteps order="Explicit">
    <installStep name="Textures">
      <optionalFileGroups>
        <group name="Size" type="SelectExactlyOne">
          <plugins order="Explicit">
            <plugin name="1K">
              <description>Small textures</description>
              <files><folder source="textures/1k" destination="textures"/></files>
              <conditionFlags><flag name="res">1k</flag></conditionFlags>
              <typeDescriptor><type name="Optional"/></typeDescriptor>
            </plugin>
            <plugin name="2K">
              <description>Large textures</description>
              <files><folder source="textures/2k" destination="textures"/></files>
              <conditionFlags><flag name="res">2k</flag></conditionFlags>
              <typeDescriptor><type name="Recommended"/></typeDescriptor>
            </plugin>
          </plugins>
        </group>
      </optionalFileGroups>
    </installStep>
    <installStep name="Patches">
      <optionalFileGroups>
        <group name="Compatibility" type="SelectAny">
          <plugins>
            <plugin name="USSEP Patch">
              <description>Patch for the unofficial patch</description>
              <files><file source="patches/ussep.esp" destination="ussep.esp"/></files>
              <typeDescriptor>
                <dependencyType>
                  <defaultType name="Optional"/>
                  <patterns>
                    <pattern>
                      <dependencies><fileDependency file="Unofficial Patch.esp" state="Active"/></dependencies>
                      <type name="Recommended"/>
                    </pattern>
                  </patterns>
                </dependencyType>
              </typeDescriptor>
            </plugin>
          </plugins>
        </group>
      </optionalFileGroups>
    </installStep>
    <installStep name="2K Extras">
      <visible><flagDependency flag="res" value="2k"/></visible>
      <optionalFileGroups>
        <group name="Extras" type="SelectAny">
          <plugins>
            <plugin name="Parallax">
              <description>Parallax meshes</description>
              <files><folder source="parallax" destination="meshes"/></files>
              <typeDescriptor><type name="Optional"/></typeDescriptor>
            </plugin>
          </plugins>
        </group>
      </optionalFileGroups>
    </installStep>
  </installSteps>
  <conditionalFileInstalls>
    <patterns>
      <pattern>
        <dependencies><flagDependency flag="res" value="2k"/></dependencies>
        <files><file source="extras/2k-lod.esp" destination="2k-lod.esp"/></files>
      </pattern>
    </patterns>
  </conditionalFileInstalls>
</config>`

const gamesYAML = `games:
  skyrim-se:
    name: "Skyrim Special Edition"
    version: "1.6.640"
`

// resetGlobals restores every flag variable; cobra keeps them between Execute calls
func resetGlobals(t *testing.T) {
	t.Helper()
	configDir = t.TempDir()
	dataDir = t.TempDir()
	configFile = ""
	gameID = ""
	profileName = ""
	verbose = false
	jsonOutput = false
	noColor = true

	planSelect = nil
	planDefaults = false
	planFlags = nil
	planFiles = nil
	planGameVersion = ""

	indexModName = ""
	indexModVersion = ""
	indexDisabled = false

	gameName = ""
	gameVersion = ""
	gameModPath = ""
	gameDefault = false
}

// writeMod creates an extracted mod directory holding fomod/ModuleConfig.xml
func writeMod(t *testing.T, script string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "fomod"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fomod", "ModuleConfig.xml"), []byte(script), 0644))
	return dir
}

func writeGames(t *testing.T) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "games.yaml"), []byte(gamesYAML), 0644))
}

// runCLI executes the root command with args and returns its output
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return buf.String(), err
}

func decodePlan(t *testing.T, out string) planJSON {
	t.Helper()
	var plan planJSON
	require.NoError(t, json.Unmarshal([]byte(out), &plan), out)
	return plan
}

func planSources(plan planJSON) []string {
	sources := make([]string, len(plan.Files))
	for i, f := range plan.Files {
		sources[i] = f.Source
	}
	return sources
}
