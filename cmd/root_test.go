package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/langue/internal/language"
)

// execute runs the root command with fresh global state inside an isolated
// home and working directory.
func execute(t *testing.T, ctx context.Context, stdin string, args ...string) (string, string, error) {
	t.Helper()

	viper.Reset()
	dirFlag := rootCmd.PersistentFlags().Lookup("languages-dir")
	_ = dirFlag.Value.Set("")
	dirFlag.Changed = false
	_ = viper.BindPFlag("languages_dir", dirFlag)
	cfgFile, debugFlag = "", false
	hlLang, hlFormat, hlStrategy = "", "", ""
	watchOut, watchLang, watchFormat, watchStrategy = "", "", "", ""
	configForce = false
	cmpLang, cmpOverlap = "", ""
	// cobra only hands ctx to subcommands whose context is still nil
	for _, c := range rootCmd.Commands() {
		c.SetContext(nil) //nolint:staticcheck // reset so ctx flows down again
	}

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}

// sandbox points HOME and the working directory at fresh temp dirs.
func sandbox(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("LANGUE_DEBUG", "")
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestHighlight_File(t *testing.T) {
	dir := sandbox(t)
	src := filepath.Join(dir, "main.go")
	writeFile(t, src, `return "<x>"`)

	out, _, err := execute(t, context.Background(), "", "highlight", src)
	require.NoError(t, err)
	require.Equal(t, "<span class='keyword'>return</span> <span class='string'>&quot;&lt;x&gt;&quot;</span>", out)
}

func TestHighlight_StdinTokens(t *testing.T) {
	sandbox(t)

	out, _, err := execute(t, context.Background(), "def f(): pass\n",
		"highlight", "--lang", "language-Python", "--format", "tokens")
	require.NoError(t, err)
	require.Equal(t, strings.Join([]string{
		`0 keyword "def"`,
		`5 punctuation "("`,
		`6 punctuation ")"`,
		`7 punctuation ":"`,
		`9 keyword "pass"`,
		"",
	}, "\n"), out)
}

func TestHighlight_UnknownLanguageFailsOpen(t *testing.T) {
	sandbox(t)

	out, stderr, err := execute(t, context.Background(), "a < b", "highlight", "--lang", "cobol")
	require.NoError(t, err)
	require.Equal(t, "a &lt; b", out)
	require.Contains(t, stderr, "language not found")
}

func TestHighlight_NeedsLanguage(t *testing.T) {
	sandbox(t)

	_, _, err := execute(t, context.Background(), "x", "highlight")
	require.Error(t, err)
	require.Contains(t, err.Error(), "pass --lang")
}

func TestHighlight_InvalidFormat(t *testing.T) {
	sandbox(t)

	_, _, err := execute(t, context.Background(), "x", "highlight", "--lang", "go", "--format", "pdf")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown format")
}

func TestHighlight_UserDefinitionAndOverlapFlag(t *testing.T) {
	dir := sandbox(t)
	defs := filepath.Join(dir, "defs")
	writeFile(t, filepath.Join(defs, "demo.yaml"), `name: demo
comment: "//,\n"
string: '","'
`)
	text := "\"a//b\" c\n"

	strict, _, err := execute(t, context.Background(), text,
		"highlight", "--languages-dir", defs, "--lang", "demo", "--strategy", "legacy")
	require.NoError(t, err)
	require.Equal(t, "&quot;a<span class='comment'>//b&quot; c\n</span>", strict)

	cfgPath := filepath.Join(dir, "config.yaml")
	writeFile(t, cfgPath, "flags:\n  strict-overlap: false\n")

	compat, _, err := execute(t, context.Background(), text,
		"highlight", "--config", cfgPath, "--languages-dir", defs, "--lang", "demo", "--strategy", "legacy")
	require.NoError(t, err)
	require.Equal(t,
		"<span class='string'>&quot;a//b&quot;</span><span class='comment'>//b&quot; c\n</span>",
		compat)
}

func TestHighlight_ProjectConfig(t *testing.T) {
	dir := sandbox(t)
	writeFile(t, filepath.Join(dir, ".langue", "config.yaml"), "format: tokens\n")
	writeFile(t, filepath.Join(dir, ".langue", "languages", "ini.yaml"), `name: ini
comment: ";,\n"
`)

	out, _, err := execute(t, context.Background(), "a ; b\n", "highlight", "--lang", "ini")
	require.NoError(t, err)
	require.Equal(t, "2 comment \"; b\\n\"\n", out)
}

func TestInvalidConfig(t *testing.T) {
	dir := sandbox(t)
	cfgPath := filepath.Join(dir, "config.yaml")
	writeFile(t, cfgPath, "strategy: fastest\n")

	_, _, err := execute(t, context.Background(), "", "languages", "--config", cfgPath)
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid configuration")
}

func TestCheck(t *testing.T) {
	dir := sandbox(t)
	good := filepath.Join(dir, "good.json")
	bad := filepath.Join(dir, "bad.yaml")
	writeFile(t, good, `{"name": "good", "keywords": "\\bx\\b", "punctuation": ";"}`)
	writeFile(t, bad, "name: bad\nkeywords: '(x'\n")

	out, _, err := execute(t, context.Background(), "", "check", good)
	require.NoError(t, err)
	require.Contains(t, out, "good (2 rules)")

	out, stderr, err := execute(t, context.Background(), "", "check", good, bad, filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "2 of 3 definitions failed")
	require.Contains(t, out, "ok   "+good)
	require.Contains(t, stderr, "FAIL "+bad)
	require.Contains(t, stderr, "compile keyword pattern")
}

func TestLanguages(t *testing.T) {
	dir := sandbox(t)
	defs := filepath.Join(dir, "defs")
	writeFile(t, filepath.Join(defs, "toml.yaml"), "name: toml\n")
	writeFile(t, filepath.Join(defs, "go.json"), "{}")

	out, _, err := execute(t, context.Background(), "", "languages", "--languages-dir", defs)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	require.Regexp(t, `^go\s+`+regexp.QuoteMeta(defs)+`$`, lines[0])
	require.Regexp(t, `^javascript\s+builtin$`, lines[1])
	require.Regexp(t, `^json\s+builtin$`, lines[2])
	require.Regexp(t, `^python\s+builtin$`, lines[3])
	require.Regexp(t, `^toml\s+`, lines[4])
}

func TestConfigCommands(t *testing.T) {
	dir := sandbox(t)
	cfgPath := filepath.Join(dir, "conf", "config.yaml")

	out, _, err := execute(t, context.Background(), "", "config", "init", "--config", cfgPath)
	require.NoError(t, err)
	require.Contains(t, out, "wrote "+cfgPath)

	_, _, err = execute(t, context.Background(), "", "config", "init", "--config", cfgPath)
	require.Error(t, err)
	require.Contains(t, err.Error(), "already exists")

	_, _, err = execute(t, context.Background(), "", "config", "init", "--force", "--config", cfgPath)
	require.NoError(t, err)

	_, _, err = execute(t, context.Background(), "", "config", "set", "format", "ansi", "--config", cfgPath)
	require.NoError(t, err)

	_, _, err = execute(t, context.Background(), "", "config", "set", "format", "pdf", "--config", cfgPath)
	require.Error(t, err)

	out, _, err = execute(t, context.Background(), "", "config", "show", "--config", cfgPath)
	require.NoError(t, err)
	require.Contains(t, out, "format: ansi")
	require.Contains(t, out, "strategy: scanner")
	require.Contains(t, out, "strict-overlap: true")
	require.Contains(t, out, "debounce: 200ms")
}

func TestConfigInit_DefaultLocation(t *testing.T) {
	sandbox(t)
	home := os.Getenv("HOME")

	_, _, err := execute(t, context.Background(), "", "config", "init")
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(home, ".config", "langue", "config.yaml"))
}

func TestWatch(t *testing.T) {
	dir := sandbox(t)
	src := filepath.Join(dir, "app.js")
	out := filepath.Join(dir, "app.html")
	cfgPath := filepath.Join(dir, "config.yaml")
	writeFile(t, cfgPath, "watch:\n  debounce: 20ms\n")
	writeFile(t, src, "let a\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		_, _, err := execute(t, ctx, "", "watch", src, "--out", out, "--config", cfgPath)
		errCh <- err
	}()

	readOut := func() string {
		data, _ := os.ReadFile(out)
		return string(data)
	}
	require.Eventually(t, func() bool {
		return readOut() == "<span class='keyword'>let</span> a\n"
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(src, []byte("const b\n"), 0o600))
	require.Eventually(t, func() bool {
		return readOut() == "<span class='keyword'>const</span> b\n"
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestWatch_DefinitionEdits(t *testing.T) {
	dir := sandbox(t)
	defs := filepath.Join(dir, "defs")
	def := filepath.Join(defs, "demo.yaml")
	src := filepath.Join(dir, "input.txt")
	out := filepath.Join(dir, "out.html")
	cfgPath := filepath.Join(dir, "config.yaml")
	writeFile(t, cfgPath, "watch:\n  debounce: 20ms\n")
	writeFile(t, def, "keywords: '\\bfoo\\b'\n")
	writeFile(t, src, "foo bar")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		_, _, err := execute(t, ctx, "", "watch", src, "--lang", "demo", "--out", out,
			"--languages-dir", defs, "--config", cfgPath)
		errCh <- err
	}()

	readOut := func() string {
		data, _ := os.ReadFile(out)
		return string(data)
	}
	require.Eventually(t, func() bool {
		return readOut() == "<span class='keyword'>foo</span> bar"
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(def, []byte("keywords: '\\bbar\\b'\n"), 0o600))
	require.Eventually(t, func() bool {
		return readOut() == "foo <span class='keyword'>bar</span>"
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestCompare(t *testing.T) {
	dir := sandbox(t)
	defs := filepath.Join(dir, "defs")
	writeFile(t, filepath.Join(defs, "demo.yaml"), `name: demo
comment: "//,\n"
string: '","'
`)

	out, _, err := execute(t, context.Background(), "\"a\" // b\n",
		"compare", "--languages-dir", defs, "--lang", "demo")
	require.NoError(t, err)
	require.Equal(t, "strategies agree\n", out)

	out, _, err = execute(t, context.Background(), "\"a//b\" c\n",
		"compare", "--languages-dir", defs, "--lang", "demo", "--overlap", "containment")
	require.NoError(t, err)
	require.Equal(t, "  0 string \"\\\"a//b\\\"\"\n+ 2 comment \"//b\\\" c\\n\"\n", out)

	_, _, err = execute(t, context.Background(), "x", "compare", "--lang", "demo", "--overlap", "sideways")
	require.Error(t, err)

	_, _, err = execute(t, context.Background(), "x", "compare", "--lang", "cobol")
	require.ErrorIs(t, err, language.ErrNotFound)
}

func TestLanguageForFile(t *testing.T) {
	tests := map[string]string{
		"main.go":     "go",
		"app.JS":      "javascript",
		"lib.mjs":     "javascript",
		"script.py":   "python",
		"data.json":   "json",
		"conf.yml":    "yaml",
		"Makefile":    "",
		"-":           "",
		"dir/file.rs": "rs",
	}
	for file, want := range tests {
		require.Equal(t, want, languageForFile(file), "file %q", file)
	}
}
