package codec

import (
	"errors"
	"testing"

	"github.com/artpar/cookiedesk/internal/cookies"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseImport_JSON(t *testing.T) {
	t.Run("parses object", func(t *testing.T) {
		batch, format, err := Detect(`{"a":"1"}`)
		require.NoError(t, err)
		assert.Equal(t, FormatJSON, format)
		assert.Equal(t, []Pair{{"a", "1"}}, batch.Pairs())
	})

	t.Run("takes precedence over pair grammar", func(t *testing.T) {
		batch, format, err := Detect(`{"a=b":"c;d=e"}`)
		require.NoError(t, err)
		assert.Equal(t, FormatJSON, format)
		assert.Equal(t, []Pair{{Name: "a=b", Value: "c;d=e"}}, batch.Pairs())
	})

	t.Run("keeps key order", func(t *testing.T) {
		batch, err := ParseImport(`{"z":"1","a":"2","m":"3"}`)
		require.NoError(t, err)
		assert.Equal(t, []Pair{{"z", "1"}, {"a", "2"}, {"m", "3"}}, batch.Pairs())
	})

	t.Run("duplicate keys last write wins", func(t *testing.T) {
		batch, err := ParseImport(`{"a":"1","b":"2","a":"3"}`)
		require.NoError(t, err)
		assert.Equal(t, []Pair{{"a", "3"}, {"b", "2"}}, batch.Pairs())
	})

	t.Run("coerces non-string values", func(t *testing.T) {
		batch, err := ParseImport(`{"n": 42, "f": 1.5, "t": true, "x": false, "z": null, "o": {"k": [1, 2]}}`)
		require.NoError(t, err)
		assert.Equal(t, []Pair{
			{"n", "42"},
			{"f", "1.5"},
			{"t", "true"},
			{"x", "false"},
			{"z", "null"},
			{"o", `{"k":[1,2]}`},
		}, batch.Pairs())
	})

	t.Run("normalizes numbers", func(t *testing.T) {
		batch, err := ParseImport(`{"a": 1.50, "b": 1e3, "c": -0, "d": 1e21, "e": 0.0000015, "f": 0.000001, "g": 1e400, "h": 12345678901234567890}`)
		require.NoError(t, err)
		assert.Equal(t, []Pair{
			{"a", "1.5"},
			{"b", "1000"},
			{"c", "0"},
			{"d", "1e+21"},
			{"e", "0.0000015"},
			{"f", "0.000001"},
			{"g", "Infinity"},
			{"h", "12345678901234567000"},
		}, batch.Pairs())
	})

	t.Run("small numbers use exponent notation", func(t *testing.T) {
		batch, err := ParseImport(`{"a": 1.5e-7, "b": -2e-10}`)
		require.NoError(t, err)
		assert.Equal(t, []Pair{{"a", "1.5e-7"}, {"b", "-2e-10"}}, batch.Pairs())
	})

	t.Run("surrounding whitespace", func(t *testing.T) {
		batch, err := ParseImport("\n  {\"a\": \"1\"}  \n")
		require.NoError(t, err)
		assert.Equal(t, 1, batch.Len())
	})

	t.Run("empty object is an error", func(t *testing.T) {
		_, err := ParseImport(`{}`)
		var perr *ParseError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, "unparseable cookie format", perr.Reason)
	})

	t.Run("array is keyed by index", func(t *testing.T) {
		batch, format, err := Detect(`["a=1", 2, {"k": true}]`)
		require.NoError(t, err)
		assert.Equal(t, FormatJSON, format)
		assert.Equal(t, []Pair{{"0", "a=1"}, {"1", "2"}, {"2", `{"k":true}`}}, batch.Pairs())
	})

	t.Run("empty array is an error", func(t *testing.T) {
		_, format, err := Detect(`[]`)
		assert.Equal(t, FormatJSON, format)
		var perr *ParseError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, "unparseable cookie format", perr.Reason)
	})

	t.Run("trailing garbage falls through", func(t *testing.T) {
		batch, format, err := Detect(`{"a":"1"} b=2`)
		require.NoError(t, err)
		assert.Equal(t, FormatPairs, format)
		assert.Equal(t, []Pair{{`{"a":"1"} b`, "2"}}, batch.Pairs())
	})
}

func TestParseImport_Pairs(t *testing.T) {
	t.Run("semicolon separated", func(t *testing.T) {
		batch, format, err := Detect("a=1; b=2")
		require.NoError(t, err)
		assert.Equal(t, FormatPairs, format)
		assert.Equal(t, []Pair{{"a", "1"}, {"b", "2"}}, batch.Pairs())
	})

	t.Run("ampersand separated", func(t *testing.T) {
		batch, err := ParseImport("a=1&b=2")
		require.NoError(t, err)
		assert.Equal(t, []Pair{{"a", "1"}, {"b", "2"}}, batch.Pairs())
	})

	t.Run("mixed separators and padding", func(t *testing.T) {
		batch, err := ParseImport("  a = 1 ;b=2&  c=3  ")
		require.NoError(t, err)
		assert.Equal(t, []Pair{{"a", "1"}, {"b", "2"}, {"c", "3"}}, batch.Pairs())
	})

	t.Run("splits on first equals only", func(t *testing.T) {
		batch, err := ParseImport("token=abc==; x=y=z")
		require.NoError(t, err)
		assert.Equal(t, []Pair{{"token", "abc=="}, {"x", "y=z"}}, batch.Pairs())
	})

	t.Run("drops fragments without a name", func(t *testing.T) {
		batch, err := ParseImport("=orphan; noequals; ok=1;;")
		require.NoError(t, err)
		assert.Equal(t, []Pair{{"ok", "1"}}, batch.Pairs())
	})

	t.Run("empty value is kept", func(t *testing.T) {
		batch, err := ParseImport("a=")
		require.NoError(t, err)
		assert.Equal(t, []Pair{{"a", ""}}, batch.Pairs())
	})

	t.Run("percent decodes once before splitting", func(t *testing.T) {
		batch, err := ParseImport("a%3D1%3B%20b%3D2%2520")
		require.NoError(t, err)
		assert.Equal(t, []Pair{{"a", "1"}, {"b", "2%20"}}, batch.Pairs())
	})

	t.Run("plus is literal", func(t *testing.T) {
		batch, err := ParseImport("q=a+b")
		require.NoError(t, err)
		assert.Equal(t, []Pair{{"q", "a+b"}}, batch.Pairs())
	})

	t.Run("duplicate names last write wins", func(t *testing.T) {
		batch, err := ParseImport("a=1; b=2; a=3")
		require.NoError(t, err)
		assert.Equal(t, []Pair{{"a", "3"}, {"b", "2"}}, batch.Pairs())
	})
}

func TestParseImport_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"no equals anywhere", "just some text"},
		{"empty", ""},
		{"only separators", ";;&&"},
		{"only leading equals", "=a; =b"},
		{"json scalar without pairs", `"text"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch, err := ParseImport(tt.input)
			assert.Nil(t, batch)
			var perr *ParseError
			assert.True(t, errors.As(err, &perr), "got %v", err)
		})
	}

	t.Run("malformed percent encoding", func(t *testing.T) {
		_, err := ParseImport("a=%zz")
		var perr *ParseError
		require.True(t, errors.As(err, &perr))
		assert.Contains(t, perr.Reason, "percent-encoding")
	})

	t.Run("percent encoding of invalid utf-8", func(t *testing.T) {
		for _, input := range []string{"a=%FF", "a=%C3", "n%E9=1"} {
			batch, err := ParseImport(input)
			assert.Nil(t, batch, input)
			var perr *ParseError
			require.True(t, errors.As(err, &perr), input)
			assert.Equal(t, "malformed percent-encoding: invalid UTF-8", perr.Reason)
		}
	})

	t.Run("percent encoded utf-8 decodes", func(t *testing.T) {
		batch, err := ParseImport("a=h%C3%A9llo")
		require.NoError(t, err)
		assert.Equal(t, []Pair{{"a", "héllo"}}, batch.Pairs())
	})
}

func TestSerialize(t *testing.T) {
	t.Run("pretty prints with two spaces", func(t *testing.T) {
		out, err := Serialize([]cookies.Cookie{
			{Name: "b", Value: "2"},
			{Name: "a", Value: "1"},
		})
		require.NoError(t, err)
		assert.Equal(t, "{\n  \"b\": \"2\",\n  \"a\": \"1\"\n}", out)
	})

	t.Run("empty collection", func(t *testing.T) {
		out, err := Serialize(nil)
		require.NoError(t, err)
		assert.Equal(t, "{}", out)
	})

	t.Run("duplicate names last write wins", func(t *testing.T) {
		out, err := Serialize([]cookies.Cookie{
			{Name: "a", Value: "1", Domain: "x.com"},
			{Name: "a", Value: "2", Domain: ".x.com"},
		})
		require.NoError(t, err)
		assert.Equal(t, "{\n  \"a\": \"2\"\n}", out)
	})

	t.Run("escapes quotes but not html", func(t *testing.T) {
		out, err := Serialize([]cookies.Cookie{{Name: "q", Value: `<"x">&`}})
		require.NoError(t, err)
		assert.Equal(t, "{\n  \"q\": \"<\\\"x\\\">&\"\n}", out)
	})

	t.Run("single cookie", func(t *testing.T) {
		out, err := SerializeOne(cookies.Cookie{Name: "sid", Value: "abc"})
		require.NoError(t, err)
		assert.Equal(t, "{\n  \"sid\": \"abc\"\n}", out)
	})
}

func TestRoundTrip(t *testing.T) {
	list := []cookies.Cookie{
		{Name: "session", Value: "abc123"},
		{Name: "theme", Value: "dark mode"},
		{Name: "pref", Value: `{"a":1}`},
		{Name: "enc", Value: "a%20b;c"},
		{Name: "unicode", Value: "héllo ✓"},
	}

	out, err := Serialize(list)
	require.NoError(t, err)

	batch, format, err := Detect(out)
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, format)

	want := make([]Pair, 0, len(list))
	for _, c := range list {
		want = append(want, Pair{Name: c.Name, Value: c.Value})
	}
	assert.Equal(t, want, batch.Pairs())
}

func TestFormat_String(t *testing.T) {
	assert.Equal(t, "json", FormatJSON.String())
	assert.Equal(t, "pairs", FormatPairs.String())
	assert.Equal(t, "none", FormatNone.String())
}
