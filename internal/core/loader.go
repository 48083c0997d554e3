package core

import (
	"strconv"
	"strings"

	"github.com/DonovanMods/fomod/internal/domain"
	"github.com/DonovanMods/fomod/internal/xmltree"
)

// Schema defaults for optional attributes
const (
	defaultPosition   = "RightOfImage"
	defaultColour     = "000000"
	defaultImagePath  = "screenshot"
	defaultShowImage  = "true"
	defaultShowFade   = "true"
	defaultHeight     = "-1"
	defaultOperator   = "And"
	defaultOrder      = "Ascending"
	defaultPriority   = "0"
	defaultAlwaysFlag = "false"
)

// LoadScript converts a parsed ModuleConfig.xml tree into the document model.
// Only moduleName is mandatory; every other optional element falls back to its
// schema default. Required attributes and enumerated values are validated.
func LoadScript(root xmltree.ElementView) (*domain.Fomod, error) {
	if root == nil {
		return nil, &domain.SchemaError{Element: "config", Msg: "document has no root element"}
	}

	modName, err := loadModName(root.Child("moduleName"))
	if err != nil {
		return nil, err
	}

	script := &domain.Fomod{
		ModName:  modName,
		ModImage: loadModImage(root.Child("moduleImage")),
	}

	if el := root.Child("moduleDependencies"); el != nil {
		deps, err := loadCompositeDependencies(el)
		if err != nil {
			return nil, err
		}
		script.ModuleDependencies = &deps
	}

	if el := root.Child("requiredInstallFiles"); el != nil {
		script.RequiredFiles, err = loadFileList(el)
		if err != nil {
			return nil, err
		}
	}

	if el := root.Child("installSteps"); el != nil {
		script.StepOrder, err = orderAttr(el)
		if err != nil {
			return nil, err
		}
		for _, stepEl := range el.Children("installStep") {
			step, err := loadInstallStep(stepEl)
			if err != nil {
				return nil, err
			}
			script.InstallSteps = append(script.InstallSteps, step)
		}
	}

	if el := root.Child("conditionalFileInstalls"); el != nil {
		script.ConditionalFileInstalls, err = loadConditionalPatterns(el)
		if err != nil {
			return nil, err
		}
	}

	return script, nil
}

// LoadInfo converts a parsed info.xml tree into mod metadata.
// Every field is optional.
func LoadInfo(root xmltree.ElementView) *domain.ModInfo {
	info := &domain.ModInfo{}
	if root == nil {
		return info
	}

	info.Name = childText(root, "Name")
	info.Author = childText(root, "Author")
	info.Version = childText(root, "Version")
	info.Website = childText(root, "Website")
	info.Description = childText(root, "Description")

	if groups := root.Child("Groups"); groups != nil {
		for _, g := range groups.Children("element") {
			if name := strings.TrimSpace(g.CData()); name != "" {
				info.Groups = append(info.Groups, name)
			}
		}
	}

	return info
}

func loadModName(el xmltree.ElementView) (domain.ModName, error) {
	if el == nil {
		return domain.ModName{}, &domain.SchemaError{Element: "moduleName", Msg: "element is required"}
	}

	name := strings.TrimSpace(el.CData())
	if name == "" {
		return domain.ModName{}, &domain.SchemaError{Element: "moduleName", Msg: "module name is empty"}
	}

	position, ok := domain.ParsePosition(el.Attr("position", defaultPosition))
	if !ok {
		return domain.ModName{}, invalidValue(el, "position")
	}

	colour, ok := parseColour(el.Attr("colour", defaultColour))
	if !ok {
		colour, _ = parseColour(defaultColour)
	}

	return domain.ModName{Name: name, Position: position, Colour: colour}, nil
}

func loadModImage(el xmltree.ElementView) domain.ModImage {
	if el == nil {
		return domain.DefaultModImage()
	}

	return domain.ModImage{
		Path:      el.Attr("path", defaultImagePath),
		ShowImage: boolAttr(el, "showImage", defaultShowImage),
		ShowFade:  boolAttr(el, "showFade", defaultShowFade),
		Height:    intAttr(el, "height", defaultHeight),
	}
}

// loadCompositeDependencies reads a dependency container that may either hold a
// nested <dependencies> element or the dependency children directly.
func loadCompositeDependencies(el xmltree.ElementView) (domain.Dependencies, error) {
	if nested := el.Child("dependencies"); nested != nil {
		return loadDependencies(nested)
	}
	return loadDependencies(el)
}

func loadDependencies(el xmltree.ElementView) (domain.Dependencies, error) {
	var deps domain.Dependencies

	op, ok := domain.ParseOperator(el.Attr("operator", defaultOperator))
	if !ok {
		return deps, invalidValue(el, "operator")
	}
	deps.Operator = op

	for _, fileEl := range el.Children("fileDependency") {
		file, err := requiredAttr(fileEl, "file")
		if err != nil {
			return deps, err
		}
		stateStr, err := requiredAttr(fileEl, "state")
		if err != nil {
			return deps, err
		}
		state, ok := domain.ParseFileState(stateStr)
		if !ok {
			return deps, invalidValue(fileEl, "state")
		}
		deps.Files = append(deps.Files, domain.FileDependency{File: file, State: state})
	}

	for _, flagEl := range el.Children("flagDependency") {
		flag, err := requiredAttr(flagEl, "flag")
		if err != nil {
			return deps, err
		}
		deps.Flags = append(deps.Flags, domain.FlagDependency{
			Flag:  flag,
			Value: flagEl.Attr("value", ""),
		})
	}

	if gameEl := el.Child("gameDependency"); gameEl != nil {
		v, err := requiredAttr(gameEl, "version")
		if err != nil {
			return deps, err
		}
		deps.GameVersion = v
	}

	if fommEl := el.Child("fommDependency"); fommEl != nil {
		v, err := requiredAttr(fommEl, "version")
		if err != nil {
			return deps, err
		}
		deps.InstallerVersion = v
	}

	return deps, nil
}

// loadFileList reads <file> and <folder> children in document order
func loadFileList(el xmltree.ElementView) ([]domain.FileEntry, error) {
	var files []domain.FileEntry
	for _, child := range el.Children("") {
		var kind domain.FileKind
		switch child.Name() {
		case "file":
			kind = domain.KindFile
		case "folder":
			kind = domain.KindFolder
		default:
			continue
		}

		entry, err := loadFileEntry(child, kind)
		if err != nil {
			return nil, err
		}
		files = append(files, entry)
	}
	return files, nil
}

func loadFileEntry(el xmltree.ElementView, kind domain.FileKind) (domain.FileEntry, error) {
	source, err := requiredAttr(el, "source")
	if err != nil {
		return domain.FileEntry{}, err
	}

	dest := el.Attr("destination", "")
	if dest == "" {
		dest = source
	}

	return domain.FileEntry{
		Kind:            kind,
		Source:          source,
		Destination:     dest,
		Priority:        intAttr(el, "priority", defaultPriority),
		AlwaysInstall:   boolAttr(el, "alwaysInstall", defaultAlwaysFlag),
		InstallIfUsable: boolAttr(el, "installIfUsable", defaultAlwaysFlag),
	}, nil
}

func loadInstallStep(el xmltree.ElementView) (domain.InstallStep, error) {
	name, err := requiredAttr(el, "name")
	if err != nil {
		return domain.InstallStep{}, err
	}

	step := domain.InstallStep{Name: name, GroupOrder: domain.OrderAscending}

	if visEl := el.Child("visible"); visEl != nil {
		deps, err := loadCompositeDependencies(visEl)
		if err != nil {
			return step, err
		}
		step.Visible = &deps
	}

	if groupsEl := el.Child("optionalFileGroups"); groupsEl != nil {
		step.GroupOrder, err = orderAttr(groupsEl)
		if err != nil {
			return step, err
		}
		for _, groupEl := range groupsEl.Children("group") {
			group, err := loadGroup(groupEl)
			if err != nil {
				return step, err
			}
			step.Groups = append(step.Groups, group)
		}
	}

	return step, nil
}

func loadGroup(el xmltree.ElementView) (domain.Group, error) {
	name, err := requiredAttr(el, "name")
	if err != nil {
		return domain.Group{}, err
	}
	typeStr, err := requiredAttr(el, "type")
	if err != nil {
		return domain.Group{}, err
	}
	groupType, ok := domain.ParseGroupType(typeStr)
	if !ok {
		return domain.Group{}, invalidValue(el, "type")
	}

	group := domain.Group{Name: name, Type: groupType, Order: domain.OrderAscending}

	if pluginsEl := el.Child("plugins"); pluginsEl != nil {
		group.Order, err = orderAttr(pluginsEl)
		if err != nil {
			return group, err
		}
		for _, pluginEl := range pluginsEl.Children("plugin") {
			plugin, err := loadPlugin(pluginEl)
			if err != nil {
				return group, err
			}
			group.Plugins = append(group.Plugins, plugin)
		}
	}

	return group, nil
}

func loadPlugin(el xmltree.ElementView) (domain.Plugin, error) {
	name, err := requiredAttr(el, "name")
	if err != nil {
		return domain.Plugin{}, err
	}

	plugin := domain.Plugin{
		Name:        name,
		Description: childText(el, "description"),
	}

	if imgEl := el.Child("image"); imgEl != nil {
		plugin.Image = imgEl.Attr("path", "")
	}

	if filesEl := el.Child("files"); filesEl != nil {
		plugin.Files, err = loadFileList(filesEl)
		if err != nil {
			return plugin, err
		}
	}

	if flagsEl := el.Child("conditionFlags"); flagsEl != nil {
		for _, flagEl := range flagsEl.Children("flag") {
			flagName, err := requiredAttr(flagEl, "name")
			if err != nil {
				return plugin, err
			}
			plugin.ConditionFlags = append(plugin.ConditionFlags, domain.Flag{
				Name:  flagName,
				Value: strings.TrimSpace(flagEl.CData()),
			})
		}
	}

	descEl := el.Child("typeDescriptor")
	if descEl == nil {
		return plugin, &domain.SchemaError{Element: "plugin", Attr: "", Msg: "plugin " + strconv.Quote(name) + " has no typeDescriptor"}
	}
	plugin.TypeDescriptor, err = loadTypeDescriptor(descEl)
	if err != nil {
		return plugin, err
	}

	return plugin, nil
}

func loadTypeDescriptor(el xmltree.ElementView) (domain.PluginTypeDescriptor, error) {
	if depTypeEl := el.Child("dependencyType"); depTypeEl != nil {
		defEl := depTypeEl.Child("defaultType")
		if defEl == nil {
			return domain.PluginTypeDescriptor{}, &domain.SchemaError{Element: "dependencyType", Msg: "defaultType is required"}
		}
		defType, err := pluginTypeAttr(defEl)
		if err != nil {
			return domain.PluginTypeDescriptor{}, err
		}

		depType := &domain.DependencyType{DefaultType: defType}
		if patternsEl := depTypeEl.Child("patterns"); patternsEl != nil {
			for _, patEl := range patternsEl.Children("pattern") {
				pattern, err := loadTypePattern(patEl)
				if err != nil {
					return domain.PluginTypeDescriptor{}, err
				}
				depType.Patterns = append(depType.Patterns, pattern)
			}
		}
		return domain.PluginTypeDescriptor{Fixed: defType, Conditional: depType}, nil
	}

	if typeEl := el.Child("type"); typeEl != nil {
		t, err := pluginTypeAttr(typeEl)
		if err != nil {
			return domain.PluginTypeDescriptor{}, err
		}
		return domain.PluginTypeDescriptor{Fixed: t}, nil
	}

	return domain.PluginTypeDescriptor{}, &domain.SchemaError{Element: "typeDescriptor", Msg: "expected <type> or <dependencyType>"}
}

func loadTypePattern(el xmltree.ElementView) (domain.Pattern, error) {
	var pattern domain.Pattern

	if depsEl := el.Child("dependencies"); depsEl != nil {
		deps, err := loadDependencies(depsEl)
		if err != nil {
			return pattern, err
		}
		pattern.Dependencies = deps
	}

	typeEl := el.Child("type")
	if typeEl == nil {
		return pattern, &domain.SchemaError{Element: "pattern", Msg: "type is required"}
	}
	t, err := pluginTypeAttr(typeEl)
	if err != nil {
		return pattern, err
	}
	pattern.Type = t

	return pattern, nil
}

func loadConditionalPatterns(el xmltree.ElementView) ([]domain.Pattern, error) {
	patternsEl := el.Child("patterns")
	if patternsEl == nil {
		return nil, nil
	}

	var patterns []domain.Pattern
	for _, patEl := range patternsEl.Children("pattern") {
		var pattern domain.Pattern
		if depsEl := patEl.Child("dependencies"); depsEl != nil {
			deps, err := loadDependencies(depsEl)
			if err != nil {
				return nil, err
			}
			pattern.Dependencies = deps
		}
		if filesEl := patEl.Child("files"); filesEl != nil {
			files, err := loadFileList(filesEl)
			if err != nil {
				return nil, err
			}
			pattern.Files = files
		}
		patterns = append(patterns, pattern)
	}
	return patterns, nil
}

func pluginTypeAttr(el xmltree.ElementView) (domain.PluginType, error) {
	name, err := requiredAttr(el, "name")
	if err != nil {
		return domain.PluginOptional, err
	}
	t, ok := domain.ParsePluginType(name)
	if !ok {
		return domain.PluginOptional, invalidValue(el, "name")
	}
	return t, nil
}

func orderAttr(el xmltree.ElementView) (domain.OrderType, error) {
	order, ok := domain.ParseOrderType(el.Attr("order", defaultOrder))
	if !ok {
		return domain.OrderAscending, invalidValue(el, "order")
	}
	return order, nil
}

func requiredAttr(el xmltree.ElementView, key string) (string, error) {
	if !el.HasAttr(key) {
		return "", &domain.SchemaError{Element: el.Name(), Attr: key, Msg: "attribute is required"}
	}
	return el.Attr(key, ""), nil
}

func invalidValue(el xmltree.ElementView, key string) error {
	return &domain.SchemaError{
		Element: el.Name(),
		Attr:    key,
		Msg:     "unrecognized value " + strconv.Quote(el.Attr(key, "")),
	}
}

func childText(el xmltree.ElementView, name string) string {
	if child := el.Child(name); child != nil {
		return strings.TrimSpace(child.CData())
	}
	return ""
}

// boolAttr reads a boolean attribute. Malformed values fall back to def.
func boolAttr(el xmltree.ElementView, key, def string) bool {
	fallback, _ := strconv.ParseBool(def)
	v, err := strconv.ParseBool(strings.TrimSpace(el.Attr(key, def)))
	if err != nil {
		return fallback
	}
	return v
}

// intAttr reads an integer attribute. Malformed values fall back to def.
func intAttr(el xmltree.ElementView, key, def string) int {
	fallback, _ := strconv.Atoi(def)
	v, err := strconv.Atoi(strings.TrimSpace(el.Attr(key, def)))
	if err != nil {
		return fallback
	}
	return v
}

// parseColour accepts 6-digit or shorthand 3-digit hex colours, with or without '#'
func parseColour(s string) (domain.RGB, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return domain.RGB{}, false
	}

	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return domain.RGB{}, false
	}
	return domain.RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, true
}
