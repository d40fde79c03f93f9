package types

import "strings"

// DefaultFile is the settings file used when Metadata does not name one.
const DefaultFile = "settings.json"

// SectionSeparator splits a section into path segments.
const SectionSeparator = ":"

// Metadata locates a settings type inside a settings document. It is supplied
// when the type is registered.
type Metadata struct {
	// Section is the colon separated path to the type's subtree,
	// e.g. "App:Window". Empty means the type name.
	Section string `json:"section" yaml:"section"`

	// File is the document name relative to Options.LocalFilesDirectory.
	// Empty means DefaultFile.
	File string `json:"file" yaml:"file"`
}

// WithDefaults fills the empty fields of m: the section falls back to
// typeName and the file to DefaultFile.
func (m Metadata) WithDefaults(typeName string) Metadata {
	if strings.TrimSpace(m.Section) == "" {
		m.Section = typeName
	}
	if strings.TrimSpace(m.File) == "" {
		m.File = DefaultFile
	}
	return m
}
