package hwpxfill

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
)

// MainSectionPart is the body part every HWPX template must carry.
const MainSectionPart = "Contents/section0.xml"

var sectionPartPattern = regexp.MustCompile(`^Contents/section(\d+)\.xml$`)

// Member is one named binary member of a document package. Method is
// the zip compression method it was stored with, so repackaging keeps
// the original settings (the mimetype member ships uncompressed).
type Member struct {
	Name   string
	Data   []byte
	Method uint16
}

// Package is an opened HWPX document package: an ordered collection of
// members read fully into memory. Members are mutated via SetPart and
// re-archived by Bytes/WriteFile; everything untouched round-trips
// byte-for-byte.
type Package struct {
	path    string
	members []*Member
	byName  map[string]*Member
}

// Open reads a document package from disk. It fails with a
// CorruptArchiveError when the file is not a zip archive or the main
// section part is missing, and with an IOError when the file cannot
// be read at all.
func Open(path string) (*Package, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewIOError("read", path, err)
	}
	pkg, err := FromBytes(data)
	if err != nil {
		if ca, ok := err.(*CorruptArchiveError); ok {
			ca.Path = path
		}
		return nil, err
	}
	pkg.path = path
	return pkg, nil
}

// FromBytes opens a document package from an in-memory archive.
func FromBytes(data []byte) (*Package, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, NewCorruptArchiveError("", "not a valid zip archive", err)
	}

	pkg := &Package{byName: make(map[string]*Member)}
	for _, file := range zr.File {
		rc, err := file.Open()
		if err != nil {
			return nil, NewCorruptArchiveError("", fmt.Sprintf("cannot open member %s", file.Name), err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, NewCorruptArchiveError("", fmt.Sprintf("cannot read member %s", file.Name), err)
		}
		member := &Member{
			Name:   file.Name,
			Data:   content,
			Method: file.Method,
		}
		pkg.members = append(pkg.members, member)
		pkg.byName[file.Name] = member
	}

	if _, ok := pkg.byName[MainSectionPart]; !ok {
		return nil, NewCorruptArchiveError("", "not a valid HWPX package: missing "+MainSectionPart, nil)
	}

	return pkg, nil
}

// Path returns the filesystem path the package was opened from, if any.
func (p *Package) Path() string {
	return p.path
}

// Member returns the named member.
func (p *Package) Member(name string) (*Member, bool) {
	m, ok := p.byName[name]
	return m, ok
}

// Members returns the member names in archive order.
func (p *Package) Members() []string {
	names := make([]string, len(p.members))
	for i, m := range p.members {
		names[i] = m.Name
	}
	return names
}

// SectionParts returns the names of all body section parts, sorted by
// section number. Anchors may live in any of them.
func (p *Package) SectionParts() []string {
	type section struct {
		name string
		num  int
	}
	var sections []section
	for _, m := range p.members {
		if match := sectionPartPattern.FindStringSubmatch(m.Name); match != nil {
			num := 0
			fmt.Sscanf(match[1], "%d", &num)
			sections = append(sections, section{name: m.Name, num: num})
		}
	}
	sort.Slice(sections, func(i, j int) bool { return sections[i].num < sections[j].num })
	names := make([]string, len(sections))
	for i, s := range sections {
		names[i] = s.name
	}
	return names
}

// SetPart replaces the content of an existing member.
func (p *Package) SetPart(name string, data []byte) error {
	m, ok := p.byName[name]
	if !ok {
		return NewTemplateError(name, "no such package member")
	}
	m.Data = data
	return nil
}

// Bytes re-archives the package: members in original order, original
// compression method per member, mutated parts with their new content
// and untouched members byte-for-byte.
func (p *Package) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, m := range p.members {
		header := &zip.FileHeader{
			Name:   m.Name,
			Method: m.Method,
		}
		fw, err := zw.CreateHeader(header)
		if err != nil {
			return nil, fmt.Errorf("failed to create member %s: %w", m.Name, err)
		}
		if _, err := fw.Write(m.Data); err != nil {
			return nil, fmt.Errorf("failed to write member %s: %w", m.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close archive: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile writes the re-archived package to path atomically: the
// archive is staged in a temporary file in the destination directory
// and renamed into place, so a failed run never leaves a partial
// output file behind.
func (p *Package) WriteFile(path string) error {
	data, err := p.Bytes()
	if err != nil {
		return NewIOError("package", path, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return NewIOError("mkdir", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".hwpxfill-*")
	if err != nil {
		return NewIOError("create", path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return NewIOError("write", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return NewIOError("close", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return NewIOError("chmod", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return NewIOError("rename", path, err)
	}
	return nil
}
