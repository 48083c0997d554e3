package core_test

import (
	"testing"

	"github.com/DonovanMods/fomod/internal/core"
	"github.com/DonovanMods/fomod/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func group(t domain.GroupType, order domain.OrderType, names ...string) *domain.Group {
	g := &domain.Group{Name: "G", Type: t, Order: order}
	for _, n := range names {
		g.Plugins = append(g.Plugins, domain.Plugin{Name: n})
	}
	return g
}

func TestValidateGroupSelection(t *testing.T) {
	tests := []struct {
		name     string
		typ      domain.GroupType
		selected []int
		wantErr  bool
	}{
		{"any none", domain.SelectAny, nil, false},
		{"any several", domain.SelectAny, []int{0, 1, 2}, false},
		{"at least one none", domain.SelectAtLeastOne, nil, true},
		{"at least one two", domain.SelectAtLeastOne, []int{0, 2}, false},
		{"at most one none", domain.SelectAtMostOne, nil, false},
		{"at most one two", domain.SelectAtMostOne, []int{0, 1}, true},
		{"exactly one", domain.SelectExactlyOne, []int{1}, false},
		{"exactly one duplicated", domain.SelectExactlyOne, []int{1, 1}, false},
		{"exactly one none", domain.SelectExactlyOne, nil, true},
		{"all", domain.SelectAll, []int{2, 0, 1}, false},
		{"all missing one", domain.SelectAll, []int{0, 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := core.ValidateGroupSelection(group(tt.typ, domain.OrderExplicit, "a", "b", "c"), tt.selected, nil)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrCardinality)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateStepSelection(t *testing.T) {
	step := &domain.InstallStep{Groups: []domain.Group{
		*group(domain.SelectExactlyOne, domain.OrderExplicit, "a", "b"),
		*group(domain.SelectAny, domain.OrderExplicit, "c"),
	}}

	assert.NoError(t, core.ValidateStepSelection(step, []core.Selection{{Group: 0, Plugin: 1}}, nil))
	assert.ErrorIs(t, core.ValidateStepSelection(step, []core.Selection{{Group: 1, Plugin: 0}}, nil), domain.ErrCardinality)
}

func TestSortedPlugins(t *testing.T) {
	assert.Equal(t, []int{1, 2, 0}, core.SortedPlugins(group(domain.SelectAny, domain.OrderAscending, "zeta", "Alpha", "beta")))
	assert.Equal(t, []int{0, 2, 1}, core.SortedPlugins(group(domain.SelectAny, domain.OrderDescending, "zeta", "Alpha", "beta")))
	assert.Equal(t, []int{0, 1, 2}, core.SortedPlugins(group(domain.SelectAny, domain.OrderExplicit, "zeta", "Alpha", "beta")))
}

func TestSortedGroups(t *testing.T) {
	step := &domain.InstallStep{
		GroupOrder: domain.OrderAscending,
		Groups:     []domain.Group{{Name: "Textures"}, {Name: "meshes"}},
	}
	assert.Equal(t, []int{1, 0}, core.SortedGroups(step))
}

func TestSelectionsByName(t *testing.T) {
	script := loadXML(t, stepsScript)
	step := &script.InstallSteps[0]

	sel, err := core.SelectionsByName(0, step, map[string][]string{"Style": {"Full"}})
	require.NoError(t, err)
	assert.Equal(t, []core.Selection{{Group: 0, Plugin: 1}}, sel)

	sel, err = core.SelectionsByName(0, step, map[string][]string{"style": {"full", "LITE"}})
	require.NoError(t, err)
	assert.Equal(t, []core.Selection{{Group: 0, Plugin: 0}, {Group: 0, Plugin: 1}}, sel)

	_, err = core.SelectionsByName(0, step, map[string][]string{"Colour": {"Red"}})
	assert.ErrorIs(t, err, domain.ErrInvalidSelection)

	_, err = core.SelectionsByName(0, step, map[string][]string{"Style": {"Medium"}})
	assert.ErrorIs(t, err, domain.ErrInvalidSelection)
}

func TestDefaultSelections(t *testing.T) {
	s := startSession(t, `<config>
  <moduleName>Defaults</moduleName>
  <installSteps>
    <installStep name="S">
      <optionalFileGroups order="Explicit">
        <group name="Pick" type="SelectExactlyOne">
          <plugins>
            <plugin name="b"><description/><typeDescriptor><type name="Optional"/></typeDescriptor></plugin>
            <plugin name="a"><description/><typeDescriptor><type name="NotUsable"/></typeDescriptor></plugin>
          </plugins>
        </group>
        <group name="Everything" type="SelectAll">
          <plugins>
            <plugin name="x"><description/><typeDescriptor><type name="Optional"/></typeDescriptor></plugin>
            <plugin name="y"><description/><typeDescriptor><type name="Optional"/></typeDescriptor></plugin>
          </plugins>
        </group>
        <group name="Extras" type="SelectAny">
          <plugins>
            <plugin name="required"><description/><typeDescriptor><type name="Required"/></typeDescriptor></plugin>
            <plugin name="optional"><description/><typeDescriptor><type name="Optional"/></typeDescriptor></plugin>
          </plugins>
        </group>
      </optionalFileGroups>
    </installStep>
  </installSteps>
</config>`, &core.StaticFacts{})

	sel, err := core.DefaultSelections(s)
	require.NoError(t, err)
	assert.Equal(t, []core.Selection{
		{Group: 0, Plugin: 0}, // first usable, "a" is NotUsable
		{Group: 1, Plugin: 0},
		{Group: 1, Plugin: 1},
		{Group: 2, Plugin: 0},
	}, sel)

	assert.NoError(t, s.ValidateSelection(sel))
}

func TestValidateGroupSelection_IgnoresNotUsable(t *testing.T) {
	g := group(domain.SelectAll, domain.OrderExplicit, "usable", "broken")
	typeOf := func(p int) domain.PluginType {
		if p == 1 {
			return domain.PluginNotUsable
		}
		return domain.PluginOptional
	}

	assert.NoError(t, core.ValidateGroupSelection(g, []int{0}, typeOf))
	assert.ErrorIs(t, core.ValidateGroupSelection(g, nil, typeOf), domain.ErrCardinality)

	allBroken := func(int) domain.PluginType { return domain.PluginNotUsable }
	for _, typ := range []domain.GroupType{domain.SelectExactlyOne, domain.SelectAtLeastOne} {
		g := group(typ, domain.OrderExplicit, "a", "b")
		assert.NoError(t, core.ValidateGroupSelection(g, nil, allBroken), typ.String())
		assert.ErrorIs(t, core.ValidateGroupSelection(g, nil, nil), domain.ErrCardinality, typ.String())
	}
}

// SelectAll defaults skip NotUsable plugins and still pass validation
func TestDefaultSelections_SelectAllWithNotUsable(t *testing.T) {
	s := startSession(t, `<config>
  <moduleName>All</moduleName>
  <installSteps>
    <installStep name="S">
      <optionalFileGroups>
        <group name="All" type="SelectAll">
          <plugins order="Explicit">
            <plugin name="Usable"><description/><typeDescriptor><type name="Optional"/></typeDescriptor></plugin>
            <plugin name="Broken"><description/><typeDescriptor><type name="NotUsable"/></typeDescriptor></plugin>
          </plugins>
        </group>
        <group name="Unavailable" type="SelectExactlyOne">
          <plugins>
            <plugin name="Gone"><description/><typeDescriptor><type name="NotUsable"/></typeDescriptor></plugin>
          </plugins>
        </group>
      </optionalFileGroups>
    </installStep>
  </installSteps>
</config>`, &core.StaticFacts{})

	sel, err := core.DefaultSelections(s)
	require.NoError(t, err)
	assert.Equal(t, []core.Selection{{Group: 0, Plugin: 0}}, sel)
	require.NoError(t, s.ValidateSelection(sel))

	plan, err := core.RunSession(s, func(s *core.Session, _ *domain.InstallStep) ([]core.Selection, error) {
		return sel, nil
	})
	require.NoError(t, err)
	assert.Empty(t, plan)
}

func TestSession_ValidateSelectionNotAtStep(t *testing.T) {
	s := core.NewSession(loadXML(t, flagScript), &core.StaticFacts{})
	assert.ErrorIs(t, s.ValidateSelection(nil), domain.ErrInvalidSelection)
}
