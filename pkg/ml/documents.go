package ml

import (
	"fmt"

	"github.com/beevik/etree"

	"github.com/monasticus/mlclient/internal/constants"
)

// Format is the document type of stored content.
type Format string

// Document formats.
const (
	FormatXML    Format = "xml"
	FormatJSON   Format = "json"
	FormatText   Format = "text"
	FormatBinary Format = "binary"
)

// Valid reports whether the format is one the server stores.
func (f Format) Valid() bool {
	switch f {
	case FormatXML, FormatJSON, FormatText, FormatBinary:
		return true
	}

	return false
}

// MediaType returns the default content type for the format.
func (f Format) MediaType() string {
	switch f {
	case FormatXML:
		return constants.MediaTypeXML
	case FormatJSON:
		return constants.MediaTypeJSON
	case FormatText:
		return constants.MediaTypeText
	default:
		return constants.MediaTypeOctetStream
	}
}

// ParseFormat validates a format name.
func ParseFormat(name string) (Format, error) {
	format := Format(name)
	if !format.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidFormat, name)
	}

	return format, nil
}

// formatFromMediaType infers the document format of a content type.
func formatFromMediaType(mediaType string) Format {
	switch {
	case mediaType == "":
		return ""
	case isJSONMediaType(mediaType):
		return FormatJSON
	case isXMLMediaType(mediaType):
		return FormatXML
	case isTextMediaType(mediaType):
		return FormatText
	default:
		return FormatBinary
	}
}

// Permission grants capabilities on a document to a role.
type Permission struct {
	RoleName     string   `json:"role-name"    yaml:"role-name"`
	Capabilities []string `json:"capabilities" yaml:"capabilities"`
}

// Metadata is the union of every metadata category returned for a document.
// Categories that were not returned keep their empty value.
type Metadata struct {
	Collections    []string       `json:"collections,omitempty"    yaml:"collections"`
	Permissions    []Permission   `json:"permissions,omitempty"    yaml:"permissions"`
	Properties     map[string]any `json:"properties,omitempty"     yaml:"properties"`
	Quality        int            `json:"quality"                  yaml:"quality"`
	MetadataValues map[string]any `json:"metadataValues,omitempty" yaml:"metadataValues"`
}

// NewMetadata returns metadata with every collection-valued field non-nil.
func NewMetadata() *Metadata {
	return &Metadata{
		Collections:    []string{},
		Permissions:    []Permission{},
		Properties:     map[string]any{},
		MetadataValues: map[string]any{},
	}
}

// Document is one assembled document. The set of implementations is closed:
// XMLDocument, JSONDocument, TextDocument, BinaryDocument, RawDocument and
// MetadataDocument.
type Document interface {
	URI() string
	Format() Format
	// Content returns the format-specific content, nil for MetadataDocument.
	Content() any
	// Metadata returns nil when no metadata category was returned.
	Metadata() *Metadata
	IsTemporal() bool

	isDocument()
}

type documentBase struct {
	uri      string
	metadata *Metadata
	temporal bool
}

func (d documentBase) URI() string         { return d.uri }
func (d documentBase) Metadata() *Metadata { return d.metadata }
func (d documentBase) IsTemporal() bool    { return d.temporal }
func (documentBase) isDocument()           {}

// XMLDocument is a document with parsed XML content.
type XMLDocument struct {
	documentBase
	Root *etree.Document
}

// Format implements Document.
func (XMLDocument) Format() Format { return FormatXML }

// Content implements Document.
func (d XMLDocument) Content() any { return d.Root }

// JSONDocument is a document with parsed JSON content.
type JSONDocument struct {
	documentBase
	Value any
}

// Format implements Document.
func (JSONDocument) Format() Format { return FormatJSON }

// Content implements Document.
func (d JSONDocument) Content() any { return d.Value }

// TextDocument is a document with text content.
type TextDocument struct {
	documentBase
	Text string
}

// Format implements Document.
func (TextDocument) Format() Format { return FormatText }

// Content implements Document.
func (d TextDocument) Content() any { return d.Text }

// BinaryDocument is a document with binary content.
type BinaryDocument struct {
	documentBase
	Data []byte
}

// Format implements Document.
func (BinaryDocument) Format() Format { return FormatBinary }

// Content implements Document.
func (d BinaryDocument) Content() any { return d.Data }

// RawDocument keeps the wire bytes of a document's content undecoded.
type RawDocument struct {
	documentBase
	Data        []byte
	DocFormat   Format
	ContentType string
}

// Format implements Document.
func (d RawDocument) Format() Format { return d.DocFormat }

// Content implements Document.
func (d RawDocument) Content() any { return d.Data }

// MetadataDocument carries metadata only, when no content was requested.
type MetadataDocument struct {
	documentBase
}

// Format implements Document.
func (MetadataDocument) Format() Format { return "" }

// Content implements Document.
func (MetadataDocument) Content() any { return nil }

// NewXMLDocument builds an XML document.
func NewXMLDocument(uri string, root *etree.Document, metadata *Metadata, temporal bool) *XMLDocument {
	return &XMLDocument{documentBase: documentBase{uri: uri, metadata: metadata, temporal: temporal}, Root: root}
}

// NewJSONDocument builds a JSON document.
func NewJSONDocument(uri string, value any, metadata *Metadata, temporal bool) *JSONDocument {
	return &JSONDocument{documentBase: documentBase{uri: uri, metadata: metadata, temporal: temporal}, Value: value}
}

// NewTextDocument builds a text document.
func NewTextDocument(uri, text string, metadata *Metadata, temporal bool) *TextDocument {
	return &TextDocument{documentBase: documentBase{uri: uri, metadata: metadata, temporal: temporal}, Text: text}
}

// NewBinaryDocument builds a binary document.
func NewBinaryDocument(uri string, data []byte, metadata *Metadata, temporal bool) *BinaryDocument {
	return &BinaryDocument{documentBase: documentBase{uri: uri, metadata: metadata, temporal: temporal}, Data: data}
}

// NewRawDocument builds a document holding undecoded content.
func NewRawDocument(uri string, data []byte, format Format, contentType string, metadata *Metadata, temporal bool) *RawDocument {
	return &RawDocument{
		documentBase: documentBase{uri: uri, metadata: metadata, temporal: temporal},
		Data:         data,
		DocFormat:    format,
		ContentType:  contentType,
	}
}

// NewMetadataDocument builds a metadata-only document.
func NewMetadataDocument(uri string, metadata *Metadata, temporal bool) *MetadataDocument {
	return &MetadataDocument{documentBase: documentBase{uri: uri, metadata: metadata, temporal: temporal}}
}
