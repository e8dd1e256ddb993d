package ml

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/beevik/etree"

	"github.com/monasticus/mlclient/internal/constants"
)

// PrimitiveTag is the semantic type the server declares for an evaluation
// result in the X-Primitive header.
type PrimitiveTag string

// Primitive tags.
const (
	TagNone         PrimitiveTag = ""
	TagString       PrimitiveTag = "string"
	TagInteger      PrimitiveTag = "integer"
	TagDecimal      PrimitiveTag = "decimal"
	TagBoolean      PrimitiveTag = "boolean"
	TagDate         PrimitiveTag = "date"
	TagDateTime     PrimitiveTag = "dateTime"
	TagMap          PrimitiveTag = "map"
	TagArray        PrimitiveTag = "array"
	TagElement      PrimitiveTag = "element()"
	TagDocumentNode PrimitiveTag = "document-node()"

	TagDouble        PrimitiveTag = "double"
	TagFloat         PrimitiveTag = "float"
	TagText          PrimitiveTag = "text()"
	TagAnyURI        PrimitiveTag = "anyURI"
	TagUntypedAtomic PrimitiveTag = "untypedAtomic"
	TagObjectNode    PrimitiveTag = "object-node()"
	TagArrayNode     PrimitiveTag = "array-node()"
)

// Kind identifies which payload of a Value is populated.
type Kind int

// Value kinds.
const (
	KindBytes Kind = iota
	KindString
	KindInteger
	KindDecimal
	KindBoolean
	KindDate
	KindDateTime
	KindJSON
	KindXMLElement
	KindXMLDocument
)

var kindNames = map[Kind]string{
	KindBytes:       "bytes",
	KindString:      "string",
	KindInteger:     "integer",
	KindDecimal:     "decimal",
	KindBoolean:     "boolean",
	KindDate:        "date",
	KindDateTime:    "dateTime",
	KindJSON:        "json",
	KindXMLElement:  "element",
	KindXMLDocument: "document",
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// OutputKind overrides the native typing of decoded values.
type OutputKind int

// Output kinds.
const (
	// OutputNone applies the native typing of each primitive tag.
	OutputNone OutputKind = iota
	// OutputText decodes every part as UTF-8 text.
	OutputText
	// OutputBytes returns the wire bytes of every part.
	OutputBytes
)

// ParseOutputKind maps the CLI spelling of an output kind.
func ParseOutputKind(name string) (OutputKind, error) {
	switch name {
	case "", constants.None, "native":
		return OutputNone, nil
	case "text", "str":
		return OutputText, nil
	case "bytes", "raw":
		return OutputBytes, nil
	}

	return OutputNone, fmt.Errorf("%w: %q", ErrInvalidOutputKind, name)
}

// Value is one decoded result. Exactly one payload is populated, selected by
// Kind.
type Value struct {
	kind     Kind
	text     string
	integer  int64
	decimal  float64
	boolean  bool
	instant  time.Time
	json     any
	element  *etree.Element
	document *etree.Document
	raw      []byte
}

// Constructors for each kind.

func BytesValue(raw []byte) Value           { return Value{kind: KindBytes, raw: raw} }
func StringValue(s string) Value            { return Value{kind: KindString, text: s} }
func IntegerValue(i int64) Value            { return Value{kind: KindInteger, integer: i} }
func DecimalValue(f float64) Value          { return Value{kind: KindDecimal, decimal: f} }
func BooleanValue(b bool) Value             { return Value{kind: KindBoolean, boolean: b} }
func DateValue(t time.Time) Value           { return Value{kind: KindDate, instant: t} }
func DateTimeValue(t time.Time) Value       { return Value{kind: KindDateTime, instant: t} }
func JSONValue(v any) Value                 { return Value{kind: KindJSON, json: v} }
func ElementValue(e *etree.Element) Value   { return Value{kind: KindXMLElement, element: e} }
func DocumentValue(d *etree.Document) Value { return Value{kind: KindXMLDocument, document: d} }

// Kind returns the populated payload kind.
func (v Value) Kind() Kind { return v.kind }

// Text returns the string payload.
func (v Value) Text() (string, bool) { return v.text, v.kind == KindString }

// Int returns the integer payload.
func (v Value) Int() (int64, bool) { return v.integer, v.kind == KindInteger }

// Float returns the decimal payload.
func (v Value) Float() (float64, bool) { return v.decimal, v.kind == KindDecimal }

// Bool returns the boolean payload.
func (v Value) Bool() (bool, bool) { return v.boolean, v.kind == KindBoolean }

// Time returns the date or dateTime payload.
func (v Value) Time() (time.Time, bool) {
	return v.instant, v.kind == KindDate || v.kind == KindDateTime
}

// JSON returns the parsed JSON payload.
func (v Value) JSON() (any, bool) { return v.json, v.kind == KindJSON }

// Element returns the XML element payload.
func (v Value) Element() (*etree.Element, bool) { return v.element, v.kind == KindXMLElement }

// Document returns the XML document payload.
func (v Value) Document() (*etree.Document, bool) { return v.document, v.kind == KindXMLDocument }

// Bytes returns the raw payload.
func (v Value) Bytes() ([]byte, bool) { return v.raw, v.kind == KindBytes }

// Interface returns the populated payload as a native Go value.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.text
	case KindInteger:
		return v.integer
	case KindDecimal:
		return v.decimal
	case KindBoolean:
		return v.boolean
	case KindDate, KindDateTime:
		return v.instant
	case KindJSON:
		return v.json
	case KindXMLElement:
		return v.element
	case KindXMLDocument:
		return v.document
	default:
		return v.raw
	}
}

// String renders the value for display.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.text
	case KindInteger:
		return strconv.FormatInt(v.integer, 10)
	case KindDecimal:
		return strconv.FormatFloat(v.decimal, 'f', -1, 64)
	case KindBoolean:
		return strconv.FormatBool(v.boolean)
	case KindDate:
		return v.instant.Format(dateLayoutZone)
	case KindDateTime:
		return v.instant.Format(time.RFC3339Nano)
	case KindJSON:
		out, err := json.Marshal(v.json)
		if err != nil {
			return fmt.Sprintf("%v", v.json)
		}

		return string(out)
	case KindXMLElement:
		doc := etree.NewDocument()
		doc.SetRoot(v.element.Copy())

		out, _ := doc.WriteToString()

		return out
	case KindXMLDocument:
		out, _ := v.document.WriteToString()

		return out
	default:
		return string(v.raw)
	}
}

// Date literal layouts. Go accepts fractional seconds after the seconds field
// even when the layout does not spell them out.
const (
	dateLayout         = "2006-01-02"
	dateLayoutZone     = "2006-01-02Z07:00"
	dateTimeLayout     = "2006-01-02T15:04:05"
	dateTimeLayoutZone = "2006-01-02T15:04:05Z07:00"
)

// errNotJSONObject and friends describe tag/payload shape mismatches.
var (
	errNotJSONObject      = errors.New("not a JSON object")
	errNotJSONArray       = errors.New("not a JSON array")
	errNotBooleanLiteral  = errors.New(`expected "true" or "false"`)
	errNoXMLElement       = errors.New("no root element")
	errTrailingXMLContent = errors.New("expected a single element")
)

// DecodePart turns one body part into a typed value according to its
// X-Primitive tag. Parts without a recognized tag stay raw bytes.
func DecodePart(part BodyPart, kind OutputKind) (Value, error) {
	switch kind {
	case OutputBytes:
		return BytesValue(part.Body), nil
	case OutputText:
		return StringValue(string(part.Body)), nil
	case OutputNone:
	default:
		return Value{}, fmt.Errorf("%w: %d", ErrInvalidOutputKind, kind)
	}

	tag := PrimitiveTag(part.Headers.Get(constants.HeaderPrimitive))

	return decodePrimitive(tag, part.Body)
}

func decodePrimitive(tag PrimitiveTag, body []byte) (Value, error) {
	switch tag {
	case TagString, TagText, TagAnyURI, TagUntypedAtomic:
		return StringValue(string(body)), nil
	case TagInteger:
		i, err := strconv.ParseInt(string(body), 10, 64)
		if err != nil {
			return Value{}, &DecodeError{Tag: tag, Body: body, Err: err}
		}

		return IntegerValue(i), nil
	case TagDecimal, TagDouble, TagFloat:
		f, err := strconv.ParseFloat(string(body), 64)
		if err != nil {
			return Value{}, &DecodeError{Tag: tag, Body: body, Err: err}
		}

		return DecimalValue(f), nil
	case TagBoolean:
		switch string(body) {
		case constants.BooleanTrue:
			return BooleanValue(true), nil
		case constants.BooleanFalse:
			return BooleanValue(false), nil
		}

		return Value{}, &DecodeError{Tag: tag, Body: body, Err: errNotBooleanLiteral}
	case TagDate:
		t, err := parseTime(string(body), dateLayoutZone, dateLayout)
		if err != nil {
			return Value{}, &DecodeError{Tag: tag, Body: body, Err: err}
		}

		return DateValue(t), nil
	case TagDateTime:
		t, err := parseTime(string(body), dateTimeLayoutZone, dateTimeLayout)
		if err != nil {
			return Value{}, &DecodeError{Tag: tag, Body: body, Err: err}
		}

		return DateTimeValue(t), nil
	case TagMap, TagObjectNode:
		return decodeJSON(tag, body, func(v any) error {
			if _, ok := v.(map[string]any); !ok {
				return errNotJSONObject
			}

			return nil
		})
	case TagArray, TagArrayNode:
		return decodeJSON(tag, body, func(v any) error {
			if _, ok := v.([]any); !ok {
				return errNotJSONArray
			}

			return nil
		})
	case TagElement:
		element, err := parseXMLElement(body)
		if err != nil {
			return Value{}, &DecodeError{Tag: tag, Body: body, Err: err}
		}

		return ElementValue(element), nil
	case TagDocumentNode:
		doc, err := parseXMLDocument(body)
		if err != nil {
			return Value{}, &DecodeError{Tag: tag, Body: body, Err: err}
		}

		return DocumentValue(doc), nil
	default:
		return BytesValue(body), nil
	}
}

func parseTime(literal string, layouts ...string) (time.Time, error) {
	var lastErr error

	for _, layout := range layouts {
		t, err := time.Parse(layout, literal)
		if err == nil {
			return t, nil
		}

		lastErr = err
	}

	return time.Time{}, lastErr
}

func decodeJSON(tag PrimitiveTag, body []byte, check func(any) error) (Value, error) {
	var parsed any

	err := json.Unmarshal(body, &parsed)
	if err != nil {
		return Value{}, &DecodeError{Tag: tag, Body: body, Err: err}
	}

	err = check(parsed)
	if err != nil {
		return Value{}, &DecodeError{Tag: tag, Body: body, Err: err}
	}

	return JSONValue(parsed), nil
}

func parseXMLDocument(body []byte) (*etree.Document, error) {
	doc := etree.NewDocument()

	err := doc.ReadFromBytes(body)
	if err != nil {
		return nil, fmt.Errorf("parsing XML: %w", err)
	}

	if doc.Root() == nil {
		return nil, errNoXMLElement
	}

	return doc, nil
}

// parseXMLElement accepts exactly one element. A prolog, comments and
// surrounding whitespace are tolerated, other character data is not.
func parseXMLElement(body []byte) (*etree.Element, error) {
	doc, err := parseXMLDocument(body)
	if err != nil {
		return nil, err
	}

	elements := 0

	for _, token := range doc.Child {
		switch t := token.(type) {
		case *etree.Element:
			elements++
		case *etree.CharData:
			if len(bytes.TrimSpace([]byte(t.Data))) > 0 {
				return nil, errTrailingXMLContent
			}
		}
	}

	if elements != 1 {
		return nil, errTrailingXMLContent
	}

	root := doc.Root()
	doc.RemoveChild(root)

	return root, nil
}
