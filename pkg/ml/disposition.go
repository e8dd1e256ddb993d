package ml

import (
	"fmt"
	"strings"
)

// BodyPartType is the disposition type of a document body part.
type BodyPartType string

// Disposition types.
const (
	BodyPartInline     BodyPartType = "inline"
	BodyPartAttachment BodyPartType = "attachment"
)

// Category names the aspect of a document carried by a body part.
type Category string

// Document categories.
const (
	CategoryContent        Category = "content"
	CategoryMetadata       Category = "metadata"
	CategoryMetadataValues Category = "metadata-values"
	CategoryCollections    Category = "collections"
	CategoryPermissions    Category = "permissions"
	CategoryProperties     Category = "properties"
	CategoryQuality        Category = "quality"
)

// Valid reports whether the category is one the server understands.
func (c Category) Valid() bool {
	switch c {
	case CategoryContent, CategoryMetadata, CategoryMetadataValues, CategoryCollections,
		CategoryPermissions, CategoryProperties, CategoryQuality:
		return true
	}

	return false
}

// Disposition attribute names.
const (
	dispositionFilename         = "filename"
	dispositionDirectory        = "directory"
	dispositionExtension        = "extension"
	dispositionCategory         = "category"
	dispositionRepair           = "repair"
	dispositionExtract          = "extract"
	dispositionVersionID        = "versionId"
	dispositionTemporalDocument = "temporal-document"
	dispositionFormat           = "format"
)

// ContentDisposition is the server's document dialect of the
// Content-Disposition header.
//
// An attachment names its document with Filename. An inline part leaves the
// URI to the server and carries Directory and Extension instead. An empty
// Category list means the part carries content.
type ContentDisposition struct {
	BodyPartType     BodyPartType `json:"bodyPartType"               yaml:"bodyPartType"`
	Filename         string       `json:"filename,omitempty"         yaml:"filename,omitempty"`
	Directory        string       `json:"directory,omitempty"        yaml:"directory,omitempty"`
	Extension        string       `json:"extension,omitempty"        yaml:"extension,omitempty"`
	Category         []Category   `json:"category,omitempty"         yaml:"category,omitempty"`
	Format           Format       `json:"format,omitempty"           yaml:"format,omitempty"`
	Repair           string       `json:"repair,omitempty"           yaml:"repair,omitempty"`
	Extract          string       `json:"extract,omitempty"          yaml:"extract,omitempty"`
	VersionID        string       `json:"versionId,omitempty"        yaml:"versionId,omitempty"`
	TemporalDocument string       `json:"temporalDocument,omitempty" yaml:"temporalDocument,omitempty"`
}

// ParseContentDisposition parses a Content-Disposition header value.
//
// Only the disposition type is mandatory. Unknown attributes are skipped and
// repeated category attributes are collected in header order.
func ParseContentDisposition(raw string) (ContentDisposition, error) {
	segments := splitDispositionSegments(raw)

	var disposition ContentDisposition

	if len(segments) == 0 {
		return disposition, &MalformedContentDispositionError{Header: raw, Reason: "empty header"}
	}

	switch BodyPartType(strings.ToLower(segments[0])) {
	case BodyPartInline:
		disposition.BodyPartType = BodyPartInline
	case BodyPartAttachment:
		disposition.BodyPartType = BodyPartAttachment
	default:
		return disposition, &MalformedContentDispositionError{
			Header: raw,
			Reason: fmt.Sprintf("unknown disposition type %q", segments[0]),
		}
	}

	for _, segment := range segments[1:] {
		key, value, found := strings.Cut(segment, "=")
		if !found {
			continue
		}

		value = unquote(strings.TrimSpace(value))

		switch strings.TrimSpace(key) {
		case dispositionFilename:
			disposition.Filename = value
		case dispositionDirectory:
			disposition.Directory = value
		case dispositionExtension:
			disposition.Extension = value
		case dispositionCategory:
			disposition.Category = append(disposition.Category, Category(value))
		case dispositionFormat:
			disposition.Format = Format(value)
		case dispositionRepair:
			disposition.Repair = value
		case dispositionExtract:
			disposition.Extract = value
		case dispositionVersionID:
			disposition.VersionID = value
		case dispositionTemporalDocument:
			disposition.TemporalDocument = value
		}
	}

	return disposition, nil
}

// SerializeContentDisposition renders the header value in canonical order.
func SerializeContentDisposition(disposition ContentDisposition) string {
	var builder strings.Builder

	builder.WriteString(string(disposition.BodyPartType))

	writeAttr := func(key, value string) {
		if value == "" {
			return
		}

		builder.WriteString("; ")
		builder.WriteString(key)
		builder.WriteString("=")
		builder.WriteString(quoteIfNeeded(value))
	}

	writeAttr(dispositionFilename, disposition.Filename)
	writeAttr(dispositionDirectory, disposition.Directory)
	writeAttr(dispositionExtension, disposition.Extension)

	for _, category := range disposition.Category {
		writeAttr(dispositionCategory, string(category))
	}

	writeAttr(dispositionRepair, disposition.Repair)
	writeAttr(dispositionExtract, disposition.Extract)
	writeAttr(dispositionVersionID, disposition.VersionID)
	writeAttr(dispositionTemporalDocument, disposition.TemporalDocument)
	writeAttr(dispositionFormat, string(disposition.Format))

	return builder.String()
}

// String implements fmt.Stringer.
func (d ContentDisposition) String() string {
	return SerializeContentDisposition(d)
}

// Validate checks the naming invariant: an attachment carries a filename, an
// inline part carries a directory and an extension, never both. Attribute
// values must not contain a double quote, which the header cannot escape.
func (d ContentDisposition) Validate() error {
	for _, value := range []string{
		d.Filename, d.Directory, d.Extension, string(d.Format),
		d.Repair, d.Extract, d.VersionID, d.TemporalDocument,
	} {
		if strings.Contains(value, `"`) {
			return &MalformedContentDispositionError{
				Header: d.String(),
				Reason: fmt.Sprintf("attribute value %q contains a double quote", value),
			}
		}
	}

	switch d.BodyPartType {
	case BodyPartAttachment:
		if d.Filename == "" {
			return &MalformedContentDispositionError{Header: d.String(), Reason: "attachment without filename"}
		}

		if d.Directory != "" || d.Extension != "" {
			return &MalformedContentDispositionError{Header: d.String(), Reason: "attachment with directory or extension"}
		}
	case BodyPartInline:
		if d.Filename != "" {
			return &MalformedContentDispositionError{Header: d.String(), Reason: "inline part with filename"}
		}

		if d.Directory == "" || d.Extension == "" {
			return &MalformedContentDispositionError{Header: d.String(), Reason: "inline part without directory and extension"}
		}
	default:
		return &MalformedContentDispositionError{
			Header: d.String(),
			Reason: fmt.Sprintf("unknown disposition type %q", d.BodyPartType),
		}
	}

	for _, category := range d.Category {
		if !category.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidCategory, category)
		}
	}

	return nil
}

// IsContent reports whether the part carries document content.
func (d ContentDisposition) IsContent() bool {
	if len(d.Category) == 0 {
		return true
	}

	for _, category := range d.Category {
		if category == CategoryContent {
			return true
		}
	}

	return false
}

// IsTemporal reports whether the part belongs to a temporal document.
func (d ContentDisposition) IsTemporal() bool {
	return d.TemporalDocument != ""
}

// splitDispositionSegments splits on semicolons outside double quotes and
// trims each segment.
func splitDispositionSegments(raw string) []string {
	var (
		segments []string
		current  strings.Builder
		quoted   bool
	)

	flush := func() {
		segment := strings.TrimSpace(current.String())
		if segment != "" {
			segments = append(segments, segment)
		}

		current.Reset()
	}

	for _, r := range raw {
		switch {
		case r == '"':
			quoted = !quoted

			current.WriteRune(r)
		case r == ';' && !quoted:
			flush()
		default:
			current.WriteRune(r)
		}
	}

	flush()

	return segments
}

func unquote(value string) string {
	if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
		return value[1 : len(value)-1]
	}

	return value
}

func quoteIfNeeded(value string) string {
	if strings.ContainsAny(value, "; \t") {
		return `"` + value + `"`
	}

	return value
}
