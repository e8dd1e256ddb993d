package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/monasticus/mlclient/internal/constants"
	"github.com/monasticus/mlclient/pkg/ml"
)

// EvalItem is the rendered form of one evaluation result.
type EvalItem struct {
	Index int         `json:"index" yaml:"index"`
	Type  string      `json:"type"  yaml:"type"`
	Value interface{} `json:"value" yaml:"value"`
}

type evalOptions struct {
	file        string
	javascript  bool
	variables   []string
	outputKind  string
	withHeaders bool
}

// NewEvalCommand creates the eval command.
func NewEvalCommand() *cobra.Command {
	options := &evalOptions{}

	cmd := &cobra.Command{
		Use:   "eval [CODE]",
		Short: "Evaluate XQuery or JavaScript",
		Long: `Evaluate ad-hoc XQuery (default) or JavaScript on the server and print
every item of the resulting sequence.

Variables are passed with --var name=value. A value that parses as JSON is sent
as JSON, anything else as a string.`,
		Example: `  mlclient eval 'fn:current-dateTime()'
  mlclient eval --javascript 'cts.doc("/a.json")'
  mlclient eval -f query.xqy --var limit=10`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			request, err := buildEvalRequest(options, args)
			if err != nil {
				return err
			}

			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}

			result, err := client.Eval().Eval(cmd.Context(), request)
			if err != nil {
				return fmt.Errorf("failed to evaluate: %w", err)
			}

			return renderEvalResult(cmd.OutOrStdout(), viper.GetString("output"), result)
		},
	}

	cmd.Flags().StringVarP(&options.file, "file", "f", "", "read code from a file")
	cmd.Flags().BoolVarP(&options.javascript, "javascript", "j", false, "evaluate JavaScript instead of XQuery")
	cmd.Flags().StringArrayVar(&options.variables, "var", nil, "external variable as name=value (repeatable)")
	cmd.Flags().StringVar(&options.outputKind, "as", constants.None, "result typing: none, text or bytes")
	cmd.Flags().BoolVar(&options.withHeaders, "headers", false, "keep part headers of each result")

	return cmd
}

func buildEvalRequest(options *evalOptions, args []string) (*ml.EvalRequest, error) {
	code, err := readEvalSource(options.file, args)
	if err != nil {
		return nil, err
	}

	kind, err := ml.ParseOutputKind(options.outputKind)
	if err != nil {
		return nil, err
	}

	variables, err := parseVariables(options.variables)
	if err != nil {
		return nil, err
	}

	request := &ml.EvalRequest{
		Variables:   variables,
		Output:      kind,
		WithHeaders: options.withHeaders,
	}

	if options.javascript {
		request.JavaScript = code
	} else {
		request.XQuery = code
	}

	return request, nil
}

func readEvalSource(file string, args []string) (string, error) {
	switch {
	case file != "" && len(args) > 0:
		return "", constants.ErrEvalSourceAmbiguous
	case file != "":
		// #nosec G304 -- the file is named by the user on the command line
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", file, err)
		}

		return string(data), nil
	case len(args) > 0 && strings.TrimSpace(args[0]) != "":
		return args[0], nil
	default:
		return "", constants.ErrEvalSourceRequired
	}
}

func parseVariables(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil //nolint:nilnil // no variables
	}

	variables := make(map[string]any, len(pairs))

	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: %q", constants.ErrInvalidVariable, pair)
		}

		var value any

		err := json.Unmarshal([]byte(raw), &value)
		if err != nil {
			value = raw
		}

		variables[name] = value
	}

	return variables, nil
}

func evalItems(result *ml.Result) []EvalItem {
	items := make([]EvalItem, 0, result.Len())

	for i, value := range result.Values() {
		item := EvalItem{Index: i, Type: value.Kind().String()}

		switch value.Kind() {
		case ml.KindXMLElement, ml.KindXMLDocument:
			item.Value = value.String()
		case ml.KindBytes:
			item.Value = value.String()
		default:
			item.Value = value.Interface()
		}

		items = append(items, item)
	}

	return items
}

func renderEvalResult(out io.Writer, format string, result *ml.Result) error {
	items := evalItems(result)

	var data interface{} = items
	if !result.IsList() {
		data = items[0]
	}

	return render(out, format, data, func(out io.Writer) error {
		table := tablewriter.NewWriter(out)
		table.Header("#", "Type", "Value")

		for i, value := range result.Values() {
			_ = table.Append([]string{strconv.Itoa(i), value.Kind().String(), truncate(value.String())})
		}

		err := table.Render()
		if err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	})
}

// truncate shortens long values for table cells.
func truncate(value string) string {
	value = strings.ReplaceAll(value, "\n", " ")

	runes := []rune(value)
	if len(runes) <= constants.StringTruncationLength {
		return value
	}

	return string(runes[:constants.StringTruncationLength-3]) + "..."
}
