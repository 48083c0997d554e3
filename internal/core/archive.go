package core

import (
	"archive/zip"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/DonovanMods/fomod/internal/domain"
	"github.com/DonovanMods/fomod/internal/xmltree"
)

const (
	scriptName = "moduleconfig.xml"
	infoName   = "info.xml"
	fomodDir   = "fomod"
)

// ScriptFiles holds the parsed install script of a mod and its optional metadata
type ScriptFiles struct {
	Origin string           // Archive, directory or file the script came from
	Root   string           // Archive-relative directory containing fomod/
	Config *xmltree.Element // fomod/ModuleConfig.xml
	Info   *xmltree.Element // fomod/info.xml, nil when absent
}

// ArchiveReader locates and parses FOMOD scripts without extracting archives
type ArchiveReader struct{}

// NewArchiveReader creates a new ArchiveReader
func NewArchiveReader() *ArchiveReader {
	return &ArchiveReader{}
}

// DetectFormat returns the archive format based on filename extension
func (a *ArchiveReader) DetectFormat(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".zip":
		return "zip"
	case ".7z":
		return "7z"
	case ".rar":
		return "rar"
	case ".xml":
		return "xml"
	default:
		return ""
	}
}

// Open reads the install script from a mod directory, a .zip archive, or a
// ModuleConfig.xml file
func (a *ArchiveReader) Open(p string) (*ScriptFiles, error) {
	info, err := os.Stat(p)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", p, err)
	}

	if info.IsDir() {
		return a.openDir(p)
	}

	switch a.DetectFormat(p) {
	case "zip":
		return a.openZip(p)
	case "xml":
		return a.openXML(p)
	case "7z", "rar":
		return nil, fmt.Errorf("reading %s archives is not supported; extract the archive and pass the directory", a.DetectFormat(p))
	default:
		return nil, fmt.Errorf("unsupported archive format: %s", filepath.Ext(p))
	}
}

func (a *ArchiveReader) openXML(p string) (*ScriptFiles, error) {
	cfg, err := xmltree.ParseFile(p)
	if err != nil {
		return nil, err
	}

	files := &ScriptFiles{Origin: p, Config: cfg}

	// info.xml conventionally sits next to ModuleConfig.xml
	dir := filepath.Dir(p)
	if entries, err := os.ReadDir(dir); err == nil {
		for _, e := range entries {
			if !e.IsDir() && strings.EqualFold(e.Name(), infoName) {
				if files.Info, err = xmltree.ParseFile(filepath.Join(dir, e.Name())); err != nil {
					return nil, err
				}
				break
			}
		}
	}
	return files, nil
}

func (a *ArchiveReader) openDir(dir string) (*ScriptFiles, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}

	cfgPath, infoPath, root, err := findScript(paths)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", dir, err)
	}

	files := &ScriptFiles{Origin: dir, Root: root}
	if files.Config, err = xmltree.ParseFile(filepath.Join(dir, filepath.FromSlash(cfgPath))); err != nil {
		return nil, err
	}
	if infoPath != "" {
		if files.Info, err = xmltree.ParseFile(filepath.Join(dir, filepath.FromSlash(infoPath))); err != nil {
			return nil, err
		}
	}
	return files, nil
}

func (a *ArchiveReader) openZip(archivePath string) (files *ScriptFiles, err error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("opening zip: %w", err)
	}
	defer func() {
		if cerr := r.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing zip: %w", cerr)
		}
	}()

	byPath := make(map[string]*zip.File, len(r.File))
	var paths []string
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		name, err := sanitizeEntry(f.Name)
		if err != nil {
			return nil, err
		}
		byPath[name] = f
		paths = append(paths, name)
	}

	cfgPath, infoPath, root, err := findScript(paths)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", archivePath, err)
	}

	files = &ScriptFiles{Origin: archivePath, Root: root}
	if files.Config, err = parseZipEntry(byPath[cfgPath]); err != nil {
		return nil, err
	}
	if infoPath != "" {
		if files.Info, err = parseZipEntry(byPath[infoPath]); err != nil {
			return nil, err
		}
	}
	return files, nil
}

func parseZipEntry(f *zip.File) (*xmltree.Element, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s in archive: %w", f.Name, err)
	}
	defer rc.Close()

	el, err := xmltree.Parse(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Name, err)
	}
	return el, nil
}

// findScript picks the shallowest fomod/ModuleConfig.xml (case-insensitive) and
// the info.xml next to it
func findScript(paths []string) (cfgPath, infoPath, root string, err error) {
	depth := -1
	for _, p := range paths {
		lower := strings.ToLower(p)
		dir, base := path.Split(lower)
		if base != scriptName || path.Base(strings.TrimSuffix(dir, "/")) != fomodDir {
			continue
		}
		d := strings.Count(lower, "/")
		if depth < 0 || d < depth {
			depth = d
			cfgPath = p
		}
	}
	if cfgPath == "" {
		return "", "", "", domain.ErrScriptNotFound
	}

	fomodPath := path.Dir(cfgPath)
	root = path.Dir(fomodPath)
	if root == "." {
		root = ""
	}

	for _, p := range paths {
		if strings.EqualFold(p, path.Join(fomodPath, infoName)) {
			infoPath = p
			break
		}
	}
	return cfgPath, infoPath, root, nil
}

// sanitizeEntry cleans an archive entry name and rejects entries escaping the archive root
func sanitizeEntry(name string) (string, error) {
	clean := path.Clean(strings.ReplaceAll(name, "\\", "/"))
	if clean == ".." || strings.HasPrefix(clean, "../") || strings.HasPrefix(clean, "/") {
		return "", fmt.Errorf("path traversal detected: %s", name)
	}
	return clean, nil
}
