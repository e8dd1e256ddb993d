package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/monasticus/mlclient/internal/constants"
	"github.com/monasticus/mlclient/pkg/ml"
)

// DocumentView is the rendered form of one document.
type DocumentView struct {
	URI      string       `json:"uri"                yaml:"uri"`
	Format   string       `json:"format,omitempty"   yaml:"format,omitempty"`
	Temporal bool         `json:"temporal,omitempty" yaml:"temporal,omitempty"`
	Content  interface{}  `json:"content,omitempty"  yaml:"content,omitempty"`
	Metadata *ml.Metadata `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// NewDocsCommand creates the docs command group.
func NewDocsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "docs",
		Aliases: []string{"documents", "doc"},
		Short:   "Manage documents",
		Long:    "Read, write and delete documents and their metadata",
	}

	cmd.AddCommand(newDocsGetCommand())
	cmd.AddCommand(newDocsPutCommand())
	cmd.AddCommand(newDocsDeleteCommand())

	return cmd
}

func newDocsGetCommand() *cobra.Command {
	var (
		categories []string
		raw        bool
	)

	cmd := &cobra.Command{
		Use:   "get URI...",
		Short: "Get documents",
		Long:  "Retrieve documents with the requested categories of content and metadata",
		Example: `  mlclient docs get /a.xml
  mlclient docs get /a.xml /b.json --category content --category collections -o json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseCategories(categories)
			if err != nil {
				return err
			}

			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}

			documents, err := client.Documents().GetMany(cmd.Context(), args, &ml.DocumentsGetOptions{
				Categories: parsed,
				Raw:        raw,
			})
			if err != nil {
				return fmt.Errorf("failed to get documents: %w", err)
			}

			return renderDocuments(cmd.OutOrStdout(), viper.GetString("output"), documents)
		},
	}

	cmd.Flags().StringArrayVar(&categories, "category", nil, "category to retrieve (repeatable, default content)")
	cmd.Flags().BoolVar(&raw, "raw", false, "keep content as received")

	return cmd
}

func newDocsPutCommand() *cobra.Command {
	var (
		file        string
		format      string
		collections []string
		quality     int
	)

	cmd := &cobra.Command{
		Use:     "put URI",
		Short:   "Write a document",
		Long:    "Write a document from a file, optionally with collections and quality",
		Example: `  mlclient docs put /a.json -f a.json --collection c1`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			write, err := buildDocumentWrite(args[0], file, format, collections, quality, cmd.Flags().Changed("quality"))
			if err != nil {
				return err
			}

			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}

			err = client.Documents().Write(cmd.Context(), []ml.DocumentWrite{*write}, nil)
			if err != nil {
				return fmt.Errorf("failed to write document: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", args[0])

			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "file holding the document content")
	cmd.Flags().StringVar(&format, "format", "", "document format: xml, json, text or binary (default from file extension)")
	cmd.Flags().StringArrayVar(&collections, "collection", nil, "collection to add the document to (repeatable)")
	cmd.Flags().IntVar(&quality, "quality", 0, "document quality")

	return cmd
}

func newDocsDeleteCommand() *cobra.Command {
	var categories []string

	cmd := &cobra.Command{
		Use:   "delete URI...",
		Short: "Delete documents",
		Long:  "Delete documents, or only the given metadata categories of them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseCategories(categories)
			if err != nil {
				return err
			}

			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}

			err = client.Documents().Delete(cmd.Context(), args, &ml.DocumentsDeleteOptions{Categories: parsed})
			if err != nil {
				return fmt.Errorf("failed to delete documents: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", strings.Join(args, ", "))

			return nil
		},
	}

	cmd.Flags().StringArrayVar(&categories, "category", nil, "category to delete (repeatable, default the whole document)")

	return cmd
}

func parseCategories(names []string) ([]ml.Category, error) {
	categories := make([]ml.Category, 0, len(names))

	for _, name := range names {
		category := ml.Category(name)
		if !category.Valid() {
			return nil, fmt.Errorf("%w: %q", ml.ErrInvalidCategory, name)
		}

		categories = append(categories, category)
	}

	return categories, nil
}

func buildDocumentWrite(uri, file, format string, collections []string, quality int, qualitySet bool) (*ml.DocumentWrite, error) {
	if file == "" {
		return nil, constants.ErrContentFileRequired
	}

	// #nosec G304 -- the file is named by the user on the command line
	content, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", file, err)
	}

	if format == "" {
		format = formatFromExtension(file)
	}

	parsedFormat, err := ml.ParseFormat(format)
	if err != nil {
		return nil, err
	}

	write := &ml.DocumentWrite{
		URI:     uri,
		Format:  parsedFormat,
		Content: content,
	}

	if len(collections) > 0 || qualitySet {
		metadata := ml.NewMetadata()
		metadata.Collections = collections
		metadata.Quality = quality
		write.Metadata = metadata
	}

	return write, nil
}

func formatFromExtension(file string) string {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".xml", ".xsd", ".xsl", ".xslt":
		return string(ml.FormatXML)
	case ".json":
		return string(ml.FormatJSON)
	case ".txt", ".xqy", ".sjs", ".js", ".csv", ".md":
		return string(ml.FormatText)
	default:
		return string(ml.FormatBinary)
	}
}

func documentView(document ml.Document) DocumentView {
	view := DocumentView{
		URI:      document.URI(),
		Format:   string(document.Format()),
		Temporal: document.IsTemporal(),
		Metadata: document.Metadata(),
	}

	switch doc := document.(type) {
	case *ml.XMLDocument:
		content, err := doc.Root.WriteToString()
		if err == nil {
			view.Content = content
		}
	case *ml.JSONDocument:
		view.Content = doc.Value
	case *ml.TextDocument:
		view.Content = doc.Text
	case *ml.BinaryDocument:
		view.Content = fmt.Sprintf("<%d bytes>", len(doc.Data))
	case *ml.RawDocument:
		view.Content = string(doc.Data)
	}

	return view
}

func renderDocuments(out io.Writer, format string, documents []ml.Document) error {
	views := make([]DocumentView, 0, len(documents))
	for _, document := range documents {
		views = append(views, documentView(document))
	}

	return render(out, format, views, func(out io.Writer) error {
		table := tablewriter.NewWriter(out)
		table.Header("URI", "Format", "Collections", "Quality", "Content")

		for _, view := range views {
			collections := constants.None
			quality := constants.NotAvailable

			if view.Metadata != nil {
				if len(view.Metadata.Collections) > 0 {
					collections = strings.Join(view.Metadata.Collections, ", ")
				}

				quality = strconv.Itoa(view.Metadata.Quality)
			}

			content := constants.None
			if view.Content != nil {
				content = truncate(fmt.Sprint(view.Content))
			}

			_ = table.Append([]string{view.URI, valueOrNone(view.Format), collections, quality, content})
		}

		err := table.Render()
		if err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	})
}
