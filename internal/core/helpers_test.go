package core_test

import (
	"testing"

	"github.com/DonovanMods/fomod/internal/core"
	"github.com/DonovanMods/fomod/internal/domain"
	"github.com/DonovanMods/fomod/internal/xmltree"

	"github.com/stretchr/testify/require"
)

// loadXML parses and loads a ModuleConfig.xml document
func loadXML(t *testing.T, doc string) *domain.Fomod {
	t.Helper()
	root, err := xmltree.ParseBytes([]byte(doc))
	require.NoError(t, err)
	script, err := core.LoadScript(root)
	require.NoError(t, err)
	return script
}

// loadErr parses a document and returns the loader error
func loadErr(t *testing.T, doc string) error {
	t.Helper()
	root, err := xmltree.ParseBytes([]byte(doc))
	require.NoError(t, err)
	_, err = core.LoadScript(root)
	return err
}

func sources(files []domain.FileEntry) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Source
	}
	return out
}

// flagScript has one step where "Base" sets X=1 and "Dependent" becomes
// Recommended once X is 1
const flagScript = `<config>
  <moduleName>Flag Test</moduleName>
  <installSteps>
    <installStep name="Main">
      <optionalFileGroups>
        <group name="Options" type="SelectAny">
          <plugins order="Explicit">
            <plugin name="Base">
              <description>Sets X</description>
              <files><file source="base.esp"/></files>
              <conditionFlags><flag name="X">1</flag></conditionFlags>
              <typeDescriptor><type name="Optional"/></typeDescriptor>
            </plugin>
            <plugin name="Dependent">
              <description>Depends on X</description>
              <files><file source="dependent.esp"/></files>
              <typeDescriptor>
                <dependencyType>
                  <defaultType name="Optional"/>
                  <patterns>
                    <pattern>
                      <dependencies><flagDependency flag="X" value="1"/></dependencies>
                      <type name="Recommended"/>
                    </pattern>
                  </patterns>
                </dependencyType>
              </typeDescriptor>
            </plugin>
            <plugin name="Broken">
              <description>Never usable</description>
              <files><file source="broken.esp"/></files>
              <conditionFlags><flag name="X">broken</flag></conditionFlags>
              <typeDescriptor><type name="NotUsable"/></typeDescriptor>
            </plugin>
          </plugins>
        </group>
      </optionalFileGroups>
    </installStep>
  </installSteps>
</config>`
