package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/dantetool/internal/cli"
	"github.com/yaklabco/dantetool/pkg/query"
	"github.com/yaklabco/dantetool/pkg/source"
)

var inferno1 = []string{
	"Nel mezzo del cammin di nostra vita",
	"mi ritrovai per una selva oscura,",
	"ché la diritta via era smarrita.",
}

const (
	line1Table = "| Word | Lemma |\n|---|---|\n| Nel | in |\n| mezzo | mezzo |\n| del | di |\n" +
		"| cammin | cammino |\n| di | di |\n| nostra | nostro |\n| vita | vita |"
	line2Rows = "\n| zzz | |\n| mi | mi |"
)

// project is a temporary working tree with a config file, the tokenized
// reference of Inferno 1 and one directory per model.
type project struct {
	dir    string
	config string
}

func newProject(t *testing.T) project {
	t.Helper()

	dir := t.TempDir()
	p := project{dir: dir, config: filepath.Join(dir, ".dantetool.yml")}
	require.NoError(t, os.WriteFile(p.config, []byte("root: .\nindex_path: index.db\n"), 0o644))

	ref := source.TokenizeLines(inferno1)
	require.NoError(t, source.WriteTokenized(context.Background(),
		source.TokenizedPath(filepath.Join(dir, "tokenize"), "inferno", 1), ref))
	return p
}

func (p project) model(t *testing.T, model string, qs ...query.Query) string {
	t.Helper()

	path := filepath.Join(p.dir, model, "inferno", "01.xml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, query.Write(context.Background(), path, qs, query.CountAttr(qs)))
	return path
}

func (p project) run(args ...string) (string, error) {
	cmd := cli.NewRootCommand(testInfo())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--config", p.config, "--color", "never"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func readQueries(t *testing.T, path string) []query.Query {
	t.Helper()

	qs, err := query.Read(context.Background(), path)
	require.NoError(t, err)
	return qs
}

func TestIntegration_AlignJSON(t *testing.T) {
	t.Parallel()

	p := newProject(t)
	p.model(t, "gpt", query.Query{Info: "Inferno Canto 1 1/1", Result: line1Table})
	p.model(t, "claude", query.Query{Info: "Inferno Canto 1 1/1", Error: "timeout"})

	out, err := p.run("align", "--format", "json")
	require.NoError(t, err)

	var report struct {
		Sources []struct {
			Source  string `json:"source"`
			Queries int    `json:"queries"`
			Dropped int    `json:"dropped"`
		} `json:"sources"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Sources, 1)
	assert.Equal(t, "gpt", report.Sources[0].Source)
	assert.Equal(t, 1, report.Sources[0].Queries)
	assert.Zero(t, report.Sources[0].Dropped)
}

func TestIntegration_AlignStrict(t *testing.T) {
	t.Parallel()

	p := newProject(t)
	path := p.model(t, "gpt", query.Query{Info: "Inferno Canto 1 1/2", Result: line1Table + line2Rows})

	out, err := p.run("align", "--strict", "--rows", path)
	require.ErrorIs(t, err, cli.ErrValidationFailed)
	assert.Equal(t, cli.ExitValidationFailed, cli.ExitCode(err))
	assert.Contains(t, out, "not_found")
	assert.Contains(t, out, "gpt Inferno Canto 1 1/2 | ln=2")
}

func TestIntegration_AlignRowsRejectsJSON(t *testing.T) {
	t.Parallel()

	p := newProject(t)
	_, err := p.run("align", "--rows", "--format", "json")
	assert.ErrorIs(t, err, cli.ErrUsage)
}

func TestIntegration_InvalidConfig(t *testing.T) {
	t.Parallel()

	p := newProject(t)
	require.NoError(t, os.WriteFile(p.config, []byte("span: -1\n"), 0o644))

	_, err := p.run("align")
	require.Error(t, err)
	assert.Equal(t, cli.ExitConfigError, cli.ExitCode(err))
}

func TestIntegration_Check(t *testing.T) {
	t.Parallel()

	p := newProject(t)
	path := p.model(t, "gpt", query.Query{
		Info:   "Inferno Canto 1 2/3",
		Prompt: "2 mi ritrovai per una selva oscura,",
		Result: "| Word | Lemma |\n|---|---|\n| mi | mi |\n| selva | selva |",
	})

	out, err := p.run("check")
	require.ErrorIs(t, err, cli.ErrValidationFailed)
	assert.Contains(t, out, "Inferno Canto 1 2/3")

	qs := readQueries(t, path)
	require.Len(t, qs, 1)
	assert.False(t, qs[0].OK())
	assert.NotEmpty(t, qs[0].Error)
}

func TestIntegration_Strip(t *testing.T) {
	t.Parallel()

	p := newProject(t)
	path := p.model(t, "gpt",
		query.Query{Info: "Inferno Canto 1 1/3", Result: "Here you go:\n\n| Word | Lemma |\n|---|---|\n| Nel | N/A |"},
		query.Query{Info: "Inferno Canto 1 2/3", Result: "no table"},
	)

	_, err := p.run("strip", path)
	require.NoError(t, err)

	qs := readQueries(t, path)
	require.Len(t, qs, 2)
	assert.True(t, qs[0].OK())
	assert.NotContains(t, qs[0].Result, "N/A")
	assert.NotContains(t, qs[0].Result, "Here you go")
	assert.False(t, qs[1].OK())
	assert.Equal(t, "no table", qs[1].Error)
}

func TestIntegration_StripDiff(t *testing.T) {
	t.Parallel()

	p := newProject(t)
	path := p.model(t, "gpt", query.Query{Info: "Inferno Canto 1 1/3", Result: "| Word | Lemma |\n|---|---|\n| Nel | N/A |"})
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	out, err := p.run("strip", "--diff", path)
	require.NoError(t, err)
	assert.Contains(t, out, "-| Nel | N/A |")
	assert.Contains(t, out, "+| Nel | |")

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestIntegration_PickupConcatReplace(t *testing.T) {
	t.Parallel()

	p := newProject(t)
	target := p.model(t, "gpt",
		query.Query{Info: "Inferno Canto 1 1/3", Result: line1Table},
		query.Query{Info: "Inferno Canto 1 2/3", Error: "timeout"},
	)

	errFile := filepath.Join(p.dir, "1-error.xml")
	_, err := p.run("pickup", errFile, target)
	require.NoError(t, err)
	picked := readQueries(t, errFile)
	require.Len(t, picked, 1)
	assert.Equal(t, "Inferno Canto 1 2/3", picked[0].Info)

	fixed := filepath.Join(p.dir, "1-error-ok.xml")
	require.NoError(t, query.Write(context.Background(), fixed, []query.Query{
		{Info: "Inferno Canto 1 2/3", Result: "| Word |\n|---|\n| mi |"},
	}))

	all := filepath.Join(p.dir, "all.xml")
	_, err = p.run("concat", "-o", all, target, fixed)
	require.NoError(t, err)
	assert.Len(t, readQueries(t, all), 3)

	_, err = p.run("replace", fixed, target)
	require.NoError(t, err)
	qs := readQueries(t, target)
	require.Len(t, qs, 2)
	assert.True(t, qs[1].OK())
}

func TestIntegration_Show(t *testing.T) {
	t.Parallel()

	p := newProject(t)
	path := p.model(t, "translate", query.Query{
		Info:   "Inferno Canto 1 1/3",
		Result: "1 In the middle of the journey\n2 I found myself\nnote",
	})

	out, err := p.run("show", path)
	require.NoError(t, err)
	assert.Equal(t, "1 In the middle of the journey\n2 I found myself\n", out)
}

func TestIntegration_Compare(t *testing.T) {
	t.Parallel()

	p := newProject(t)
	p.model(t, "gpt", query.Query{Info: "Inferno Canto 1 1/1", Result: line1Table})

	_, err := p.run("compare", "--format", "summary")
	require.NoError(t, err)

	md, err := os.ReadFile(filepath.Join(p.dir, "comparison", "inferno", "01.md"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(md), "# Inferno - Canto 1\n"))
	assert.Contains(t, string(md), "**gpt**")

	_, err = p.run("compare", "limbo/01")
	assert.ErrorIs(t, err, cli.ErrUsage)
}

func TestIntegration_Index(t *testing.T) {
	t.Parallel()

	p := newProject(t)
	p.model(t, "gpt", query.Query{Info: "Inferno Canto 1 1/2", Result: line1Table + line2Rows})

	_, err := p.run("index", "build")
	require.NoError(t, err)

	out, err := p.run("index", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "records: 1\n")

	out, err = p.run("index", "events", "--kind", "not_found")
	require.NoError(t, err)
	assert.Contains(t, out, "gpt Inferno Canto 1 1/2 | not_found")

	_, err = p.run("index", "events", "--kind", "bogus")
	assert.ErrorIs(t, err, cli.ErrUsage)
}

func TestIntegration_SplitTokenize(t *testing.T) {
	t.Parallel()

	p := newProject(t)
	edition := filepath.Join(p.dir, "edition.txt")
	require.NoError(t, os.WriteFile(edition, []byte("Inferno\nCanto II\n\n  Lo giorno se n'andava, e l'aere bruno\n"+
		"  toglieva li animai che sono in terra\n"), 0o644))

	it := filepath.Join(p.dir, "it")
	_, err := p.run("split", "-o", it, edition)
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(it, "inferno", "02.txt"))

	_, err = p.run("tokenize", "--from", it)
	require.NoError(t, err)

	ref, err := source.ReadTokenized(context.Background(),
		source.TokenizedPath(filepath.Join(p.dir, "tokenize"), "inferno", 2))
	require.NoError(t, err)
	require.Len(t, ref, 2)
	assert.Contains(t, ref[1].Text, "terra")
	assert.NotEmpty(t, ref[1].Tokens)
}

func TestIntegration_Init(t *testing.T) {
	t.Parallel()

	p := newProject(t)
	path := filepath.Join(p.dir, "sub", "project.yml")

	_, err := p.run("init", "--output", path)
	require.NoError(t, err)
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "# span: 3")

	_, err = p.run("init", "--output", path)
	assert.ErrorIs(t, err, cli.ErrUsage)

	_, err = p.run("init", "--output", path, "--full", "--force")
	require.NoError(t, err)
	content, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "span: 3")
	assert.NotContains(t, string(content), "# span: 3")
}
