package mapping

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mcqMappingJSON = `{
  "start_row": 1,
  "start_col": 0,
  "data": {
    "code": {"column": 0},
    "title": {"column": 1},
    "type": {"literal": "mcq"},
    "max_score": {"column": 2, "type": "number"},
    "keywords": {"column": 3, "type": "list"},
    "options": [
      {"value": {"type": {"literal": "text"}, "text": {"column": 4}}, "answer": {"column": 5, "type": "boolean"}},
      {"value": {"type": {"literal": "text"}, "text": {"column": 6}}, "answer": {"column": 7, "type": "boolean"}}
    ]
  }
}`

func TestLoad_JSONMapping(t *testing.T) {
	t.Parallel()

	s, warns, err := Load(strings.NewReader(mcqMappingJSON))
	require.NoError(t, err)
	assert.Empty(t, warns)
	assert.Equal(t, 1, s.StartRow)
	assert.Equal(t, 0, s.StartCol)

	names := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"code", "title", "type", "max_score", "keywords", "options"}, names)

	assert.Equal(t, KindLeaf, s.Fields[0].Node.Kind)
	assert.Equal(t, TypeString, s.Fields[0].Node.Column.Type)
	assert.Equal(t, KindLiteral, s.Fields[2].Node.Kind)
	assert.Equal(t, "mcq", s.Fields[2].Node.Literal)
	assert.Equal(t, TypeNumber, s.Fields[3].Node.Column.Type)
	assert.Equal(t, TypeList, s.Fields[4].Node.Column.Type)
	require.Equal(t, KindArray, s.Fields[5].Node.Kind)
	assert.Len(t, s.Fields[5].Node.Elems, 2)

	row := Row{"Q1", "Add", "1", "math, easy", "3", "no", "4", "yes"}
	assert.Equal(t,
		`{"code":"Q1","title":"Add","type":"mcq","max_score":1,"keywords":["math","easy"],`+
			`"options":[{"value":{"type":"text","text":"3"},"answer":false},{"value":{"type":"text","text":"4"},"answer":true}]}`,
		mustJSON(t, s.Map(row)),
	)
}

func TestLoad_YAMLMatchesJSON(t *testing.T) {
	t.Parallel()

	yml := `
start_row: 1
data:
  code: {column: 0}
  title: {column: 1}
  type: {literal: mcq}
  max_score: {column: 2, type: number}
  keywords: {column: 3, type: list}
  options:
    - value: {type: {literal: text}, text: {column: 4}}
      answer: {column: 5, type: boolean}
    - value: {type: {literal: text}, text: {column: 6}}
      answer: {column: 7, type: boolean}
`
	fromYAML, _, err := Load(strings.NewReader(yml))
	require.NoError(t, err)
	fromJSON, _, err := Load(strings.NewReader(mcqMappingJSON))
	require.NoError(t, err)

	row := Row{"Q1", "Add", "x", "", "", "", "4", "true"}
	assert.Equal(t, mustJSON(t, fromJSON.Map(row)), mustJSON(t, fromYAML.Map(row)))
}

func TestLoad_LegacyColDef(t *testing.T) {
	t.Parallel()

	doc := `{"data": {
		"code": {"col-def": {"column": 0}},
		"answer": {"col-def": {"column": 1, "type": "boolean"}},
		"hints": {"col-def": {"column": [2, 3]}}
	}}`
	s, warns, err := Load(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Empty(t, warns)

	got := s.Map(Row{"C", "yes", "h1", "h2"})
	assert.Equal(t, `{"code":"C","answer":true,"hints":["h1","h2"]}`, mustJSON(t, got))
}

func TestLoad_ColDefWinsOverLiteral(t *testing.T) {
	t.Parallel()

	s, _, err := Load(strings.NewReader(`{"data": {"x": {"col-def": {"column": 0}, "literal": "nope"}}}`))
	require.NoError(t, err)
	assert.Equal(t, KindLeaf, s.Fields[0].Node.Kind)
}

func TestLoad_LiteralValues(t *testing.T) {
	t.Parallel()

	doc := `{"data": {
		"n": {"literal": 5},
		"f": {"literal": 2.5},
		"b": {"literal": true},
		"l": {"literal": ["a", 1]},
		"o": {"literal": {"z": 1, "a": 2}},
		"nil": {"literal": null}
	}}`
	s, _, err := Load(strings.NewReader(doc))
	require.NoError(t, err)

	got := s.Map(Row{})
	assert.Equal(t, `{"n":5,"f":2.5,"b":true,"l":["a",1],"o":{"z":1,"a":2}}`, mustJSON(t, got))
}

func TestLoad_WarningsForUnknownShapes(t *testing.T) {
	t.Parallel()

	doc := `{"data": {
		"plain": "hello",
		"num": 3,
		"badcol": {"column": "abc"},
		"badtype": {"column": 0, "type": "date"},
		"nested": {"deep": true},
		"ok": {"column": 0}
	}}`
	s, warns, err := Load(strings.NewReader(doc))
	require.NoError(t, err)

	paths := make([]string, 0, len(warns))
	for _, w := range warns {
		paths = append(paths, w.Path)
	}
	assert.ElementsMatch(t, []string{
		"data.plain",
		"data.num",
		"data.badcol",
		"data.badtype.type",
		"data.nested.deep",
	}, paths)

	// unknown type falls back to string, invalid fields vanish
	got := s.Map(Row{" v "})
	assert.Equal(t, `{"badtype":"v","nested":{},"ok":"v"}`, mustJSON(t, got))
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"empty":         ``,
		"not object":    `[1, 2]`,
		"no data":       `{"start_row": 1}`,
		"data scalar":   `{"data": 3}`,
		"bad start_row": `{"start_row": "one", "data": {}}`,
		"frac start":    `{"start_col": 1.5, "data": {}}`,
		"garbage":       `{"data": {`,
	}
	for name, doc := range cases {
		_, _, err := Load(strings.NewReader(doc))
		assert.ErrorIs(t, err, ErrSchema, name)
	}
}

func TestLoad_StartRowDefaultsAndFloats(t *testing.T) {
	t.Parallel()

	s, _, err := Load(strings.NewReader(`{"start_row": 2.0, "start_col": null, "data": {}}`))
	require.NoError(t, err)
	assert.Equal(t, 2, s.StartRow)
	assert.Equal(t, 0, s.StartCol)
	assert.Empty(t, s.Fields)
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "mapping.json")
	require.NoError(t, os.WriteFile(path, []byte(mcqMappingJSON), 0o644))

	s, _, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, s.Fields, 6)

	_, _, err = LoadFile(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open mapping")
}

func TestLoad_WarnsOnLiteralArrayElement(t *testing.T) {
	t.Parallel()

	s, warns, err := Load(strings.NewReader(`{"data": {"tags": [{"column": 0}, {"literal": "fixed"}]}}`))
	require.NoError(t, err)
	require.Len(t, warns, 1)
	assert.Equal(t, "data.tags[1]", warns[0].Path)
	assert.Equal(t, `{"tags":["a"]}`, mustJSON(t, s.Map(Row{"a"})))
}
