package step

import "github.com/matzehuels/bimtower/pkg/buildinfo"

// Default header values.
const (
	DefaultFileName      = "export.ifc"
	DefaultDescription   = "IFC model generated by bimtower"
	DefaultSchema        = "IFC4"
	DefaultAuthor        = "bimtower"
	DefaultOrganization  = "bimtower"
	DefaultAuthorization = "None"
	DefaultProjectName   = "BIMTOWER PROJECT"
)

// Header holds the literal strings written to the HEADER section. Empty
// fields are replaced by defaults when the file is written.
type Header struct {
	FileName            string `json:"file_name,omitempty" toml:"file_name"`
	Description         string `json:"description,omitempty" toml:"description"`
	Schema              string `json:"schema,omitempty" toml:"schema"`
	Timestamp           string `json:"timestamp,omitempty" toml:"timestamp"`
	Author              string `json:"author,omitempty" toml:"author"`
	Organization        string `json:"organization,omitempty" toml:"organization"`
	PreprocessorVersion string `json:"preprocessor_version,omitempty" toml:"preprocessor_version"`
	OriginatingSystem   string `json:"originating_system,omitempty" toml:"originating_system"`
	Authorization       string `json:"authorization,omitempty" toml:"authorization"`
}

// DefaultHeader returns a header with every field except Timestamp set to
// its default. The timestamp is taken from the exporter's clock.
func DefaultHeader() Header {
	return Header{
		FileName:            DefaultFileName,
		Description:         DefaultDescription,
		Schema:              DefaultSchema,
		Author:              DefaultAuthor,
		Organization:        DefaultOrganization,
		PreprocessorVersion: buildinfo.Version,
		OriginatingSystem:   buildinfo.OriginatingSystem(),
		Authorization:       DefaultAuthorization,
	}
}

// Merge returns h with empty fields taken from o.
func (h Header) Merge(o Header) Header {
	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fill(&h.FileName, o.FileName)
	fill(&h.Description, o.Description)
	fill(&h.Schema, o.Schema)
	fill(&h.Timestamp, o.Timestamp)
	fill(&h.Author, o.Author)
	fill(&h.Organization, o.Organization)
	fill(&h.PreprocessorVersion, o.PreprocessorVersion)
	fill(&h.OriginatingSystem, o.OriginatingSystem)
	fill(&h.Authorization, o.Authorization)
	return h
}
