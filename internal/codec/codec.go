// Package codec converts between user-supplied cookie text and cookie
// collections.
//
// Two import formats are understood. A JSON object (or array, keyed by
// index) is always tried first and wins whenever it parses; otherwise the text is read as
// percent-encoded name=value pairs separated by ';' or '&', the shape of
// a Cookie header or a query string. Export always produces JSON.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/artpar/cookiedesk/internal/cookies"
)

// Format identifies which import grammar produced a batch.
type Format int

const (
	FormatNone Format = iota
	FormatJSON
	FormatPairs
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatPairs:
		return "pairs"
	default:
		return "none"
	}
}

// ParseError reports import text that yielded no cookies.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return "parse cookies: " + e.Reason
}

var errUnparseable = &ParseError{Reason: "unparseable cookie format"}

var pairSeparator = regexp.MustCompile(`[;&]`)

// ParseImport parses text into an import batch.
func ParseImport(text string) (*Batch, error) {
	batch, _, err := Detect(text)
	return batch, err
}

// Detect parses text and reports which format matched.
func Detect(text string) (*Batch, Format, error) {
	if batch, ok := parseJSONObject(text); ok {
		if batch.Len() == 0 {
			return nil, FormatJSON, errUnparseable
		}
		return batch, FormatJSON, nil
	}

	batch, err := parsePairs(text)
	if err != nil {
		return nil, FormatPairs, err
	}
	if batch.Len() == 0 {
		return nil, FormatNone, errUnparseable
	}
	return batch, FormatPairs, nil
}

// parseJSONObject decodes a top-level JSON object keeping key order. A
// top-level array is accepted too, keyed by element index. It reports
// false when text is not exactly one JSON object or array.
func parseJSONObject(text string) (*Batch, bool) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, false
	}

	var batch *Batch
	switch tok {
	case json.Delim('{'):
		batch, err = decodeMembers(dec)
	case json.Delim('['):
		batch, err = decodeElements(dec)
	default:
		return nil, false
	}
	if err != nil {
		return nil, false
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, false
	}
	return batch, true
}

func decodeMembers(dec *json.Decoder) (*Batch, error) {
	batch := NewBatch()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected key %v", keyTok)
		}
		value, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		batch.Set(key, value)
	}
	if tok, err := dec.Token(); err != nil || tok != json.Delim('}') {
		return nil, errors.New("unterminated object")
	}
	return batch, nil
}

func decodeElements(dec *json.Decoder) (*Batch, error) {
	batch := NewBatch()
	for i := 0; dec.More(); i++ {
		value, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		batch.Set(strconv.Itoa(i), value)
	}
	if tok, err := dec.Token(); err != nil || tok != json.Delim(']') {
		return nil, errors.New("unterminated array")
	}
	return batch, nil
}

func decodeValue(dec *json.Decoder) (string, error) {
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return "", err
	}
	return coerce(raw)
}

// coerce renders a JSON value as a cookie value string.
func coerce(raw json.RawMessage) (string, error) {
	var v interface{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return "", err
	}

	switch vv := v.(type) {
	case string:
		return vv, nil
	case json.Number:
		return formatNumber(vv), nil
	case bool:
		if vv {
			return "true", nil
		}
		return "false", nil
	case nil:
		return "null", nil
	default:
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return "", err
		}
		return buf.String(), nil
	}
}

// formatNumber renders a JSON number the way a browser's String(n) does:
// shortest round-trip digits, plain notation for magnitudes in
// [1e-6, 1e21), exponent notation outside it.
func formatNumber(n json.Number) string {
	f, err := strconv.ParseFloat(n.String(), 64)
	switch {
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case err != nil:
		return n.String()
	case f == 0:
		return "0"
	}

	if abs := math.Abs(f); abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	s := strconv.FormatFloat(f, 'e', -1, 64)
	mant, exp, _ := strings.Cut(s, "e")
	sign := exp[:1]
	exp = strings.TrimLeft(exp[1:], "0")
	return mant + "e" + sign + exp
}

func parsePairs(text string) (*Batch, error) {
	decoded, err := url.PathUnescape(text)
	if err != nil {
		return nil, &ParseError{Reason: fmt.Sprintf("malformed percent-encoding: %v", err)}
	}
	if !utf8.ValidString(decoded) {
		return nil, &ParseError{Reason: "malformed percent-encoding: invalid UTF-8"}
	}

	batch := NewBatch()
	for _, fragment := range pairSeparator.Split(decoded, -1) {
		fragment = strings.TrimSpace(fragment)
		idx := strings.Index(fragment, "=")
		if idx <= 0 {
			continue
		}
		name := strings.TrimSpace(fragment[:idx])
		value := strings.TrimSpace(fragment[idx+1:])
		batch.Set(name, value)
	}
	return batch, nil
}

// Serialize renders cookies as a pretty-printed JSON object of
// name -> value. Later cookies overwrite earlier ones with the same name;
// key order follows first appearance in the input.
func Serialize(list []cookies.Cookie) (string, error) {
	batch := NewBatch()
	for _, c := range list {
		batch.Set(c.Name, c.Value)
	}
	return Encode(batch)
}

// SerializeOne renders a single cookie as a one-key JSON object.
func SerializeOne(c cookies.Cookie) (string, error) {
	return Serialize([]cookies.Cookie{c})
}

// Encode renders a batch as JSON with two-space indentation.
func Encode(batch *Batch) (string, error) {
	pairs := batch.Pairs()
	if len(pairs) == 0 {
		return "{}", nil
	}

	var sb strings.Builder
	sb.WriteString("{\n")
	for i, p := range pairs {
		key, err := marshalString(p.Name)
		if err != nil {
			return "", err
		}
		value, err := marshalString(p.Value)
		if err != nil {
			return "", err
		}
		sb.WriteString("  ")
		sb.WriteString(key)
		sb.WriteString(": ")
		sb.WriteString(value)
		if i < len(pairs)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}")
	return sb.String(), nil
}

func marshalString(s string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
