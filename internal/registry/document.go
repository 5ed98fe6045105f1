package registry

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
)

// Document is a complete Khronos XML API registry as it appears on disk.
// Element order is preserved; Select depends on it.
type Document struct {
	XMLName    xml.Name       `xml:"registry"`
	Comment    string         `xml:"comment"`
	Types      []xmlType      `xml:"types>type"`
	Enums      []xmlEnums     `xml:"enums"`
	Commands   []xmlCommand   `xml:"commands>command"`
	Features   []xmlFeature   `xml:"feature"`
	Extensions []xmlExtension `xml:"extensions>extension"`
}

type xmlType struct {
	Name     string `xml:"name,attr"`
	API      string `xml:"api,attr"`
	Requires string `xml:"requires,attr"`
	InnerXML string `xml:",innerxml"`
}

// TypeName returns the name of a <type>, which lives either in the name
// attribute or in a nested <name> element.
func (t xmlType) TypeName() string {
	if t.Name != "" {
		return t.Name
	}
	return between(t.InnerXML, "<name>", "</name>")
}

type xmlEnums struct {
	Namespace string    `xml:"namespace,attr"`
	Group     string    `xml:"group,attr"`
	Type      string    `xml:"type,attr"`
	Vendor    string    `xml:"vendor,attr"`
	Comment   string    `xml:"comment,attr"`
	Enum      []xmlEnum `xml:"enum"`
}

type xmlEnum struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
	Type  string `xml:"type,attr"` // "u" or "ull"
	API   string `xml:"api,attr"`
	Alias string `xml:"alias,attr"`
	Group string `xml:"group,attr"`
}

type xmlCommand struct {
	Proto    xmlProtoOrParam   `xml:"proto"`
	Param    []xmlProtoOrParam `xml:"param"`
	Alias    xmlName           `xml:"alias"`
	Vecequiv xmlName           `xml:"vecequiv"`
}

type xmlProtoOrParam struct {
	InnerXML string `xml:",innerxml"`
	Group    string `xml:"group,attr"`
	Len      string `xml:"len,attr"`
	PType    string `xml:"ptype"`
	Name     string `xml:"name"`
}

type xmlName struct {
	Name string `xml:"name,attr"`
}

type xmlFeature struct {
	Name    string          `xml:"name,attr"`
	API     string          `xml:"api,attr"`
	Number  string          `xml:"number,attr"`
	Require []xmlInterfaces `xml:"require"`
	Remove  []xmlInterfaces `xml:"remove"`
}

type xmlExtension struct {
	Name      string          `xml:"name,attr"`
	Supported string          `xml:"supported,attr"`
	Require   []xmlInterfaces `xml:"require"`
	Remove    []xmlInterfaces `xml:"remove"`
}

type xmlInterfaces struct {
	API     string    `xml:"api,attr"`
	Profile string    `xml:"profile,attr"`
	Comment string    `xml:"comment,attr"`
	Type    []xmlName `xml:"type"`
	Enum    []xmlName `xml:"enum"`
	Command []xmlName `xml:"command"`
}

// Parse decodes a registry document.
func Parse(r io.Reader) (*Document, error) {
	doc := &Document{}
	if err := xml.NewDecoder(r).Decode(doc); err != nil {
		return nil, fmt.Errorf("decode registry: %w", err)
	}
	if len(doc.Features) == 0 && len(doc.Commands) == 0 {
		return nil, fmt.Errorf("decode registry: %w", ErrEmptyRegistry)
	}
	return doc, nil
}

// ParseFile reads and decodes the registry at path.
func ParseFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open registry: %w", err)
	}
	defer f.Close()

	doc, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// SupportedExtensions lists, in document order, the extensions usable with
// the given api and profile.
func (d *Document) SupportedExtensions(api, profile string) []string {
	var names []string
	for _, ext := range d.Extensions {
		if supports(ext.Supported, api, profile) {
			names = append(names, ext.Name)
		}
	}
	return names
}

// supports reports whether a "|" separated supported attribute covers api.
// "glcore" stands for the core profile of desktop GL.
func supports(supported, api, profile string) bool {
	for _, s := range strings.Split(supported, "|") {
		if s == api {
			return true
		}
		if s == "glcore" && api == "gl" && profile == "core" {
			return true
		}
	}
	return false
}

func between(s, open, close string) string {
	i := strings.Index(s, open)
	if i < 0 {
		return ""
	}
	s = s[i+len(open):]
	j := strings.Index(s, close)
	if j < 0 {
		return ""
	}
	return s[:j]
}
