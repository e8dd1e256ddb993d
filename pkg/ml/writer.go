package ml

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/textproto"

	"github.com/monasticus/mlclient/internal/constants"
)

// Static errors for document writes.
var (
	ErrNothingToWrite       = errors.New("document write has neither content nor metadata")
	ErrMetadataRequiresURI  = errors.New("metadata can only be written for a document with a URI")
	ErrAmbiguousDocumentURI = errors.New("document write sets both a URI and a directory")
)

// DocumentWrite describes one document of a multi-document write. A write
// names its URI, or leaves it to the server with Directory and Extension.
type DocumentWrite struct {
	URI       string
	Directory string
	Extension string

	Format      Format
	ContentType string
	Content     []byte
	Metadata    *Metadata

	Repair           string
	Extract          string
	VersionID        string
	TemporalDocument string
}

// EncodeDocuments builds the multipart/mixed body of a document write. It
// returns the request content type and body.
func EncodeDocuments(writes []DocumentWrite) (string, []byte, error) {
	var body bytes.Buffer

	writer := multipart.NewWriter(&body)

	for i, write := range writes {
		err := encodeDocumentWrite(writer, write)
		if err != nil {
			return "", nil, fmt.Errorf("encoding document %d: %w", i, err)
		}
	}

	err := writer.Close()
	if err != nil {
		return "", nil, fmt.Errorf("closing multipart body: %w", err)
	}

	return constants.MediaTypeMultipartMixed + "; boundary=" + writer.Boundary(), body.Bytes(), nil
}

func encodeDocumentWrite(writer *multipart.Writer, write DocumentWrite) error {
	if write.Content == nil && write.Metadata == nil {
		return ErrNothingToWrite
	}

	if write.URI != "" && (write.Directory != "" || write.Extension != "") {
		return ErrAmbiguousDocumentURI
	}

	if write.Metadata != nil {
		if write.URI == "" {
			return ErrMetadataRequiresURI
		}

		metadata, err := json.Marshal(write.Metadata)
		if err != nil {
			return fmt.Errorf("marshaling metadata: %w", err)
		}

		disposition := ContentDisposition{
			BodyPartType: BodyPartAttachment,
			Filename:     write.URI,
			Category:     []Category{CategoryMetadata},
		}

		err = writePart(writer, disposition, constants.MediaTypeJSON, metadata)
		if err != nil {
			return err
		}
	}

	if write.Content == nil {
		return nil
	}

	disposition := ContentDisposition{
		Filename:         write.URI,
		Directory:        write.Directory,
		Extension:        write.Extension,
		Format:           write.Format,
		Repair:           write.Repair,
		Extract:          write.Extract,
		VersionID:        write.VersionID,
		TemporalDocument: write.TemporalDocument,
	}

	if write.URI != "" {
		disposition.BodyPartType = BodyPartAttachment
	} else {
		disposition.BodyPartType = BodyPartInline
	}

	contentType := write.ContentType
	if contentType == "" {
		contentType = write.Format.MediaType()
	}

	return writePart(writer, disposition, contentType, write.Content)
}

func writePart(writer *multipart.Writer, disposition ContentDisposition, contentType string, payload []byte) error {
	err := disposition.Validate()
	if err != nil {
		return err
	}

	header := make(textproto.MIMEHeader)
	header.Set(constants.HeaderContentType, contentType)
	header.Set(constants.HeaderContentDisposition, disposition.String())

	part, err := writer.CreatePart(header)
	if err != nil {
		return fmt.Errorf("creating part: %w", err)
	}

	_, err = part.Write(payload)
	if err != nil {
		return fmt.Errorf("writing part: %w", err)
	}

	return nil
}
