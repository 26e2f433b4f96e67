package normalize

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/hupe1980/dander/internal/document"
	"github.com/hupe1980/dander/internal/output"
)

type fixture struct {
	fs  afero.Fs
	out *bytes.Buffer
	log *bytes.Buffer
	n   *Normalizer
}

func newFixture(t *testing.T, files map[string]string) *fixture {
	t.Helper()

	f := &fixture{
		fs:  afero.NewMemMapFs(),
		out: &bytes.Buffer{},
		log: &bytes.Buffer{},
	}

	for path, content := range files {
		require.NoError(t, afero.WriteFile(f.fs, path, []byte(content), 0o644))
	}

	f.n = New(
		WithFs(f.fs),
		WithOutput(output.NewStdoutWriter(f.out)),
		WithLogger(slog.New(slog.NewTextHandler(f.log, &slog.HandlerOptions{Level: slog.LevelDebug}))),
	)

	return f
}

func (f *fixture) read(t *testing.T, path string) string {
	t.Helper()

	data, err := afero.ReadFile(f.fs, path)
	require.NoError(t, err)

	return string(data)
}

func (f *fixture) files(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := afero.ReadDir(f.fs, dir)
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}

	return names
}

// ---------------------------------------------------------------------------
// FormatJSON
// ---------------------------------------------------------------------------

func TestFormatJSON_ToOutput(t *testing.T) {
	f := newFixture(t, map[string]string{"/data/x.json": `{"b":[1,2],"a":{}}`})

	res, err := f.n.FormatJSON(context.Background(), "/data/x.json", DefaultJSONOptions())
	require.NoError(t, err)

	want := "{\n    \"b\": [\n        1,\n        2\n    ],\n    \"a\": {}\n}\n"
	assert.Equal(t, want, f.out.String())
	assert.Equal(t, want, string(res.Content))
	assert.Equal(t, DestinationOutput, res.Destination)
	assert.Equal(t, `{"b":[1,2],"a":{}}`, f.read(t, "/data/x.json"), "source must be untouched")
}

func TestFormatJSON_WriteInPlace(t *testing.T) {
	f := newFixture(t, map[string]string{"/data/x.json": `{"a":"é"}`})

	opts := DefaultJSONOptions()
	opts.Write = true

	res, err := f.n.FormatJSON(context.Background(), "/data/x.json", opts)
	require.NoError(t, err)

	assert.Equal(t, DestinationFile, res.Destination)
	assert.Empty(t, f.out.String())
	assert.Equal(t, "{\n    \"a\": \"é\"\n}\n", f.read(t, "/data/x.json"))
	assert.NotContains(t, f.log.String(), "overwriting existing file")
}

func TestFormatJSON_VerboseOverridesWrite(t *testing.T) {
	f := newFixture(t, map[string]string{"/data/x.json": `[1]`})

	opts := JSONOptions{Indent: 2, Write: true, Verbose: true}

	res, err := f.n.FormatJSON(context.Background(), "/data/x.json", opts)
	require.NoError(t, err)

	assert.Equal(t, DestinationOutput, res.Destination)
	assert.Equal(t, "[\n  1\n]\n", f.out.String())
	assert.Equal(t, `[1]`, f.read(t, "/data/x.json"))
}

func TestFormatJSON_Idempotent(t *testing.T) {
	f := newFixture(t, map[string]string{"/x.json": `{"k":[true,null,1.50,"s"],"o":{"n":{}}}`})

	opts := DefaultJSONOptions()
	opts.Write = true

	_, err := f.n.FormatJSON(context.Background(), "/x.json", opts)
	require.NoError(t, err)

	first := f.read(t, "/x.json")

	_, err = f.n.FormatJSON(context.Background(), "/x.json", opts)
	require.NoError(t, err)

	assert.Equal(t, first, f.read(t, "/x.json"))
	assert.Contains(t, first, "1.50")
}

func TestFormatJSON_StripsBOM(t *testing.T) {
	f := newFixture(t, map[string]string{"/x.json": "\xef\xbb\xbf{\"a\":1}"})

	_, err := f.n.FormatJSON(context.Background(), "/x.json", DefaultJSONOptions())
	require.NoError(t, err)
	assert.Equal(t, "{\n    \"a\": 1\n}\n", f.out.String())
}

func TestFormatJSON_Errors(t *testing.T) {
	f := newFixture(t, map[string]string{"/bad.json": `{`})
	require.NoError(t, f.fs.MkdirAll("/dir.json", 0o755))

	tests := []struct {
		name string
		path string
		kind error
	}{
		{"missing", "/nope.json", ErrNotFound},
		{"directory", "/dir.json", ErrNotFound},
		{"truncated", "/bad.json", ErrParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultJSONOptions()
			opts.Write = true

			_, err := f.n.FormatJSON(context.Background(), tt.path, opts)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)

			var nerr *Error
			require.ErrorAs(t, err, &nerr)
			assert.Equal(t, "format json", nerr.Op)
			assert.Equal(t, tt.path, nerr.Path)
		})
	}

	assert.Equal(t, `{`, f.read(t, "/bad.json"))
	assert.Empty(t, f.out.String())
}

func TestFormatJSON_CanceledBeforeWrite(t *testing.T) {
	f := newFixture(t, map[string]string{"/x.json": `[1]`})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.n.FormatJSON(ctx, "/x.json", JSONOptions{Indent: 4, Write: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, `[1]`, f.read(t, "/x.json"))
}

func TestFormatJSON_OnDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"a":[]}`), 0o600))

	n := New(WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	_, err := n.FormatJSON(context.Background(), path, JSONOptions{Indent: 4, Write: true})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\n    \"a\": []\n}\n", string(data))
}

// ---------------------------------------------------------------------------
// SplitJSON
// ---------------------------------------------------------------------------

func TestSplitJSON_Object(t *testing.T) {
	f := newFixture(t, map[string]string{"/data/data.json": `{"a":1,"b":2}`})

	res, err := f.n.SplitJSON(context.Background(), "/data/data.json", DefaultSplitOptions())
	require.NoError(t, err)

	require.Len(t, res.Artifacts, 2)
	assert.Equal(t, "/data/data.json", res.Source)
	assert.Equal(t, "a", res.Artifacts[0].Key)
	assert.Equal(t, "b", res.Artifacts[1].Key)

	assert.Equal(t, "1\n", f.read(t, "/data/data__a.json"))
	assert.Equal(t, "2\n", f.read(t, "/data/data__b.json"))
	assert.Equal(t, `{"a":1,"b":2}`, f.read(t, "/data/data.json"))
}

func TestSplitJSON_Array(t *testing.T) {
	f := newFixture(t, map[string]string{"/nums.json": `[10,20]`})

	res, err := f.n.SplitJSON(context.Background(), "/nums.json", DefaultSplitOptions())
	require.NoError(t, err)
	require.Len(t, res.Artifacts, 2)

	assert.Equal(t, "10\n", f.read(t, "/nums__0.json"))
	assert.Equal(t, "20\n", f.read(t, "/nums__1.json"))
}

func TestSplitJSON_NestedMembersUseSplitIndent(t *testing.T) {
	f := newFixture(t, map[string]string{"/cfg.json": `{"db":{"host":"h","ports":[1]}}`})

	_, err := f.n.SplitJSON(context.Background(), "/cfg.json", DefaultSplitOptions())
	require.NoError(t, err)

	assert.Equal(t, "{\n  \"host\": \"h\",\n  \"ports\": [\n    1\n  ]\n}\n", f.read(t, "/cfg__db.json"))
}

func TestSplitJSON_EmptyCollection(t *testing.T) {
	f := newFixture(t, map[string]string{"/e.json": `{}`})

	res, err := f.n.SplitJSON(context.Background(), "/e.json", DefaultSplitOptions())
	require.NoError(t, err)
	assert.Empty(t, res.Artifacts)
	assert.Equal(t, []string{"e.json"}, f.files(t, "/"))
}

func TestSplitJSON_Rejections(t *testing.T) {
	f := newFixture(t, map[string]string{
		"/d/trunc.json":  `{`,
		"/d/scalar.json": `42`,
		"/d/str.json":    `"x"`,
	})
	require.NoError(t, f.fs.MkdirAll("/d/sub", 0o755))

	tests := []struct {
		name string
		path string
		kind error
	}{
		{"truncated", "/d/trunc.json", ErrParse},
		{"number root", "/d/scalar.json", ErrUnsupportedRootType},
		{"string root", "/d/str.json", ErrUnsupportedRootType},
		{"directory", "/d/sub", ErrIsADirectory},
		{"missing", "/d/none.json", ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.n.SplitJSON(context.Background(), tt.path, DefaultSplitOptions())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)
		})
	}

	assert.ElementsMatch(t, []string{"trunc.json", "scalar.json", "str.json", "sub"}, f.files(t, "/d"))
}

func TestSplitJSON_UnsupportedRootMessage(t *testing.T) {
	f := newFixture(t, map[string]string{"/x.json": `7`})

	_, err := f.n.SplitJSON(context.Background(), "/x.json", DefaultSplitOptions())
	require.Error(t, err)
	assert.Equal(t, "split json /x.json: unsupported root type: root is number, want object or array", err.Error())
}

func TestSplitJSON_DepthIgnored(t *testing.T) {
	f := newFixture(t, map[string]string{"/x.json": `{"a":{"b":1}}`})

	_, err := f.n.SplitJSON(context.Background(), "/x.json", SplitOptions{Depth: 3, Indent: 2})
	require.NoError(t, err)

	assert.Equal(t, "{\n  \"b\": 1\n}\n", f.read(t, "/x__a.json"))
	assert.Contains(t, f.log.String(), "ignoring depth")
}

func TestSplitJSON_KeySeparatorsAndCollisions(t *testing.T) {
	f := newFixture(t, map[string]string{"/x.json": `{"a/b":1,"a_b":2,"c\\d":3}`})

	res, err := f.n.SplitJSON(context.Background(), "/x.json", DefaultSplitOptions())
	require.NoError(t, err)
	require.Len(t, res.Artifacts, 3)

	assert.Equal(t, "2\n", f.read(t, "/x__a_b.json"), "later member wins")
	assert.Equal(t, "3\n", f.read(t, "/x__c_d.json"))
	assert.Contains(t, f.log.String(), "same file")
}

func TestSplitJSON_Canceled(t *testing.T) {
	f := newFixture(t, map[string]string{"/x.json": `[1,2]`})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.n.SplitJSON(ctx, "/x.json", DefaultSplitOptions())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"x.json"}, f.files(t, "/"))
}

func TestArtifactName(t *testing.T) {
	assert.Equal(t, "data__a.json", artifactName("data", "a"))
	assert.Equal(t, "data__0.json", artifactName("data", "0"))
	assert.Equal(t, "data__x_y.json", artifactName("data", "x/y"))
	assert.Equal(t, "data__.json", artifactName("data", ""))
}

func TestStem(t *testing.T) {
	assert.Equal(t, "data", Stem("/a/b/data.json"))
	assert.Equal(t, "archive.tar", Stem("archive.tar.gz"))
	assert.Equal(t, "noext", Stem("noext"))
	assert.Equal(t, ".json", Stem("/a/.json"))
}

// ---------------------------------------------------------------------------
// ValidateJSON
// ---------------------------------------------------------------------------

func TestValidateJSON(t *testing.T) {
	f := newFixture(t, map[string]string{
		"/schema.json": `{"type":"object","properties":{"n":{"type":"integer"}}}`,
		"/ok.json":     "\ufeff" + `{"n":1}`,
		"/bad.json":    `{"n":"one"}`,
		"/broken.json": `{"n":`,
		"/noschema":    `{"type":`,
	})
	require.NoError(t, f.fs.MkdirAll("/dir", 0o755))

	ctx := context.Background()

	require.NoError(t, f.n.ValidateJSON(ctx, "/ok.json", "/schema.json"))

	err := f.n.ValidateJSON(ctx, "/bad.json", "/schema.json")
	assert.ErrorIs(t, err, ErrSchemaViolation)

	var schemaErr *document.SchemaError
	assert.ErrorAs(t, err, &schemaErr)

	var nerr *Error
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, "/bad.json", nerr.Path)

	err = f.n.ValidateJSON(ctx, "/broken.json", "/schema.json")
	assert.ErrorIs(t, err, ErrParse)

	err = f.n.ValidateJSON(ctx, "/ok.json", "/noschema")
	require.ErrorAs(t, err, &nerr)
	assert.ErrorIs(t, err, ErrParse)
	assert.Equal(t, "/noschema", nerr.Path)

	assert.ErrorIs(t, f.n.ValidateJSON(ctx, "/missing.json", "/schema.json"), ErrNotFound)
	assert.ErrorIs(t, f.n.ValidateJSON(ctx, "/ok.json", "/dir"), ErrIsADirectory)
}

// ---------------------------------------------------------------------------
// FormatXML
// ---------------------------------------------------------------------------

func TestFormatXML_ToOutput(t *testing.T) {
	f := newFixture(t, map[string]string{"/r.xml": `<r><a/></r>`})

	res, err := f.n.FormatXML(context.Background(), "/r.xml", DefaultXMLOptions())
	require.NoError(t, err)

	assert.Equal(t, "<r>\n  <a/>\n</r>\n", f.out.String())
	assert.Equal(t, DestinationOutput, res.Destination)
}

func TestFormatXML_WriteInPlace(t *testing.T) {
	f := newFixture(t, map[string]string{"/r.xml": `<r x="1"><a>t</a></r>`})

	opts := DefaultXMLOptions()
	opts.Write = true
	opts.Indent = 4

	res, err := f.n.FormatXML(context.Background(), "/r.xml", opts)
	require.NoError(t, err)

	assert.Equal(t, DestinationFile, res.Destination)
	assert.Empty(t, f.out.String())
	assert.Equal(t, "<r x=\"1\">\n    <a>t</a>\n</r>\n", f.read(t, "/r.xml"))
}

func TestFormatXML_WriteInPlaceKeepsMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "private.xml")
	require.NoError(t, os.WriteFile(path, []byte(`<r><a/></r>`), 0o600))
	require.NoError(t, os.Chmod(path, 0o600))

	n := New(WithOutput(output.NewStdoutWriter(io.Discard)), WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	opts := DefaultXMLOptions()
	opts.Write = true

	_, err := n.FormatXML(context.Background(), path, opts)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<r>\n  <a/>\n</r>\n", string(data))
}

func TestFormatXML_UTF16WithBOM(t *testing.T) {
	src := `<?xml version="1.0" encoding="UTF-16"?><r><a>héllo</a></r>`
	encoded, _, err := transform.String(unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder(), src)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(encoded, "\xff\xfe"))

	f := newFixture(t, map[string]string{"/u16.xml": encoded})

	_, err = f.n.FormatXML(context.Background(), "/u16.xml", DefaultXMLOptions())
	require.NoError(t, err)

	want := "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<r>\n  <a>héllo</a>\n</r>\n"
	assert.Equal(t, want, f.out.String())
}

func TestFormatXML_VerboseOverridesWrite(t *testing.T) {
	f := newFixture(t, map[string]string{"/r.xml": `<r/>`})

	opts := DefaultXMLOptions()
	opts.Write = true
	opts.Verbose = true

	_, err := f.n.FormatXML(context.Background(), "/r.xml", opts)
	require.NoError(t, err)

	assert.Equal(t, "<r/>\n", f.out.String())
	assert.Equal(t, `<r/>`, f.read(t, "/r.xml"))
}

func TestFormatXML_StrictExtension(t *testing.T) {
	f := newFixture(t, map[string]string{
		"/doc.txt":  `<r/>`,
		"/bad.txt":  `<r>`,
		"/UP.XML":   `<r/>`,
		"/icon.svg": `<svg/>`,
	})

	_, err := f.n.FormatXML(context.Background(), "/doc.txt", DefaultXMLOptions())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExtensionMismatch)

	// Mismatch is reported before the content is parsed.
	_, err = f.n.FormatXML(context.Background(), "/bad.txt", DefaultXMLOptions())
	assert.ErrorIs(t, err, ErrExtensionMismatch)

	// Missing files are NotFound even when the extension is wrong.
	_, err = f.n.FormatXML(context.Background(), "/none.txt", DefaultXMLOptions())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.n.FormatXML(context.Background(), "/UP.XML", DefaultXMLOptions())
	require.NoError(t, err)

	opts := DefaultXMLOptions()
	opts.Extensions = []string{"svg"}

	_, err = f.n.FormatXML(context.Background(), "/icon.svg", opts)
	require.NoError(t, err)

	opts = DefaultXMLOptions()
	opts.Strict = false

	f.out.Reset()

	_, err = f.n.FormatXML(context.Background(), "/doc.txt", opts)
	require.NoError(t, err)
	assert.Equal(t, "<r/>\n", f.out.String())
}

func TestFormatXML_Errors(t *testing.T) {
	f := newFixture(t, map[string]string{"/bad.xml": `<r><a></r>`})
	require.NoError(t, f.fs.MkdirAll("/dir.xml", 0o755))

	opts := DefaultXMLOptions()
	opts.Write = true

	_, err := f.n.FormatXML(context.Background(), "/bad.xml", opts)
	assert.ErrorIs(t, err, ErrParse)
	assert.Equal(t, `<r><a></r>`, f.read(t, "/bad.xml"))

	_, err = f.n.FormatXML(context.Background(), "/dir.xml", opts)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.n.FormatXML(context.Background(), "/missing.xml", opts)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFormatXML_Idempotent(t *testing.T) {
	src := `<?xml version="1.0"?><!-- c --><cfg a="1" b="&lt;"><x>one</x><y><z/></y></cfg>`
	f := newFixture(t, map[string]string{"/c.xml": src})

	opts := DefaultXMLOptions()
	opts.Write = true

	_, err := f.n.FormatXML(context.Background(), "/c.xml", opts)
	require.NoError(t, err)

	first := f.read(t, "/c.xml")

	_, err = f.n.FormatXML(context.Background(), "/c.xml", opts)
	require.NoError(t, err)
	assert.Equal(t, first, f.read(t, "/c.xml"))
}

// ---------------------------------------------------------------------------
// Detect and Format
// ---------------------------------------------------------------------------

func TestDetect(t *testing.T) {
	f := newFixture(t, map[string]string{
		"/a.json":    `not json at all`,
		"/b.XML":     `x`,
		"/c.conf":    `{"k":[1,2,3]}`,
		"/d.conf":    `<?xml version="1.0" encoding="UTF-8"?><r/>`,
		"/notes.txt": `hello world`,
	})

	det, err := Detect(f.fs, "/a.json", nil)
	require.NoError(t, err)
	assert.Equal(t, Detection{Format: FormatJSON}, det)

	det, err = Detect(f.fs, "/b.XML", nil)
	require.NoError(t, err)
	assert.Equal(t, FormatXML, det.Format)
	assert.False(t, det.ByContent)

	det, err = Detect(f.fs, "/c.conf", nil)
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, det.Format)
	assert.True(t, det.ByContent)

	det, err = Detect(f.fs, "/d.conf", nil)
	require.NoError(t, err)
	assert.Equal(t, FormatXML, det.Format)
	assert.True(t, det.ByContent)

	_, err = Detect(f.fs, "/notes.txt", nil)
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = Detect(f.fs, "/missing", nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFormat_Dispatch(t *testing.T) {
	f := newFixture(t, map[string]string{
		"/a.json":  `[1]`,
		"/b.xml":   `<b><c/></b>`,
		"/app.cfg": `<?xml version="1.0"?><app/>`,
	})

	_, err := f.n.Format(context.Background(), "/a.json", DefaultFormatOptions())
	require.NoError(t, err)
	assert.Equal(t, "[\n    1\n]\n", f.out.String())

	f.out.Reset()

	_, err = f.n.Format(context.Background(), "/b.xml", DefaultFormatOptions())
	require.NoError(t, err)
	assert.Equal(t, "<b>\n  <c/>\n</b>\n", f.out.String())

	f.out.Reset()

	// Content-detected XML bypasses the extension check.
	_, err = f.n.Format(context.Background(), "/app.cfg", DefaultFormatOptions())
	require.NoError(t, err)
	assert.Equal(t, "<?xml version=\"1.0\"?>\n<app/>\n", f.out.String())
}

func TestFormat_UnregisteredFormat(t *testing.T) {
	f := newFixture(t, map[string]string{"/a.json": `[1]`})
	n := New(WithFs(f.fs), WithRegistry(NewRegistry()))

	_, err := n.Format(context.Background(), "/a.json", DefaultFormatOptions())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownFormat)
	assert.Contains(t, err.Error(), "available: none")
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, []Format{FormatJSON, FormatXML}, r.Formats())

	_, err := r.Lookup("yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "json, xml")

	called := false
	r.Register("yaml", func(context.Context, *Normalizer, string, FormatOptions) (*FormatResult, error) {
		called = true
		return nil, nil
	})

	fn, err := r.Lookup("yaml")
	require.NoError(t, err)

	_, _ = fn(context.Background(), nil, "", FormatOptions{})
	assert.True(t, called)
}

// ---------------------------------------------------------------------------
// Error
// ---------------------------------------------------------------------------

func TestError(t *testing.T) {
	cause := errors.New("boom")
	err := newError("format xml", "/a.xml", ErrParse, cause)

	assert.Equal(t, "format xml /a.xml: parse error: boom", err.Error())
	assert.ErrorIs(t, err, ErrParse)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrNotFound)

	bare := newError("split json", "/d", ErrIsADirectory, nil)
	assert.Equal(t, "split json /d: is a directory", bare.Error())
}

func TestDestinationString(t *testing.T) {
	assert.Equal(t, "output", DestinationOutput.String())
	assert.Equal(t, "file", DestinationFile.String())
}
