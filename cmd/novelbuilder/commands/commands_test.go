package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/novelbuilder/internal/foundation/errors"
)

func runCLI(t *testing.T, args ...string) error {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli, kong.Name("novelbuilder"), kong.Vars{"version": "test"})
	require.NoError(t, err)
	ctx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	return ctx.Run(&Global{}, &cli)
}

func rawDir(t *testing.T) string {
	t.Helper()
	raw := filepath.Join(t.TempDir(), "Ten Truyen")
	require.NoError(t, os.MkdirAll(raw, 0o750))
	files := map[string]string{
		"foreword.txt": "Tên Truyện\nTác Giả\nhttp://example.test\nTiên hiệp\nGiới thiệu.",
		"1.txt":        "Chương 1\nChương 1\nĐây là một\ncâu rất dài.",
		"3.txt":        "Chương 3\nNội dung.",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(raw, name), []byte(content), 0o600))
	}
	return raw
}

func TestCleanDefaultsToSiblingResultDir(t *testing.T) {
	raw := rawDir(t)
	require.NoError(t, runCLI(t, "clean", raw))

	out := filepath.Join(filepath.Dir(raw), DefaultResultDir)
	data, err := os.ReadFile(filepath.Join(out, "1.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Chương 1\nChương 1\nĐây là một câu rất dài.", string(data))
}

func TestCleanWithDedupAndResult(t *testing.T) {
	raw := rawDir(t)
	out := t.TempDir()
	require.NoError(t, runCLI(t, "clean", raw, "--dedup", "--result", out))

	data, err := os.ReadFile(filepath.Join(out, "1.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Chương 1\nĐây là một câu rất dài.", string(data))
}

func TestDedupInPlace(t *testing.T) {
	raw := rawDir(t)
	require.NoError(t, runCLI(t, "dedup", raw))

	data, err := os.ReadFile(filepath.Join(raw, "1.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Chương 1\nĐây là một câu rất dài.", string(data))
}

func TestConvertWithRm(t *testing.T) {
	raw := rawDir(t)
	out := t.TempDir()
	stale := filepath.Join(out, "stale.xhtml")
	require.NoError(t, os.WriteFile(stale, []byte("x"), 0o600))

	require.NoError(t, runCLI(t, "convert", raw, "--lang", "vi", "--result", out, "--rm"))
	assert.NoFileExists(t, stale)
	assert.FileExists(t, filepath.Join(out, "Text", "1.xhtml"))
	assert.FileExists(t, filepath.Join(out, "Text", "3.xhtml"))
	assert.FileExists(t, filepath.Join(out, "Text", "foreword.xhtml"))
}

func TestEpubFromRawThenVerify(t *testing.T) {
	raw := rawDir(t)
	metricsFile := filepath.Join(t.TempDir(), "novelbuilder.prom")

	require.NoError(t, runCLI(t, "--metrics-file", metricsFile, "epub", "from_raw", raw, "--dedup"))

	book := filepath.Join(filepath.Dir(raw), "ten-truyen.epub")
	require.FileExists(t, book)
	require.NoError(t, runCLI(t, "epub", "verify", book))

	prom, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "novelbuilder_run_duration_seconds")
}

func TestEpubVerifyRejectsNonEpub(t *testing.T) {
	bogus := filepath.Join(t.TempDir(), "bogus.epub")
	require.NoError(t, os.WriteFile(bogus, []byte("not a zip"), 0o600))

	err := runCLI(t, "epub", "verify", bogus)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryPackaging))
	assert.Equal(t, 11, ferrors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
}

func TestConvertInvalidLang(t *testing.T) {
	err := runCLI(t, "convert", rawDir(t), "--lang", "not a tag!", "--result", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, 2, ferrors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
}

func TestExplicitConfigMustExist(t *testing.T) {
	err := runCLI(t, "-c", filepath.Join(t.TempDir(), "missing.yaml"), "clean", rawDir(t))
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}

func TestConfigFileLang(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("pipeline:\n  lang: zh\n"), 0o600))
	out := t.TempDir()

	require.NoError(t, runCLI(t, "-c", cfgPath, "convert", rawDir(t), "--result", out))
	data, err := os.ReadFile(filepath.Join(out, "Text", "3.xhtml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `xml:lang="zh"`)
}

func TestInitAndTemplatesExport(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "novelbuilder.yaml")
	require.NoError(t, runCLI(t, "-c", cfgPath, "init"))
	assert.FileExists(t, cfgPath)
	require.Error(t, runCLI(t, "-c", cfgPath, "init"))
	require.NoError(t, runCLI(t, "-c", cfgPath, "init", "--force"))

	tplDir := filepath.Join(dir, "templates")
	require.NoError(t, runCLI(t, "templates", "export", tplDir))
	assert.FileExists(t, filepath.Join(tplDir, "OEBPS", "Text", "chapter.xhtml"))
	require.NoError(t, runCLI(t, "templates", "check", tplDir))
	require.Error(t, runCLI(t, "templates", "export", tplDir))
}

func TestResolveOutputDir(t *testing.T) {
	assert.Equal(t, "/x", ResolveOutputDir("/x", "/a/raw", siblingResultDir))
	assert.Equal(t, filepath.Join("/a", DefaultResultDir), ResolveOutputDir("", "/a/raw", siblingResultDir))
	assert.Equal(t, "/a", ResolveOutputDir("", "/a/raw", parentDir))
	assert.Equal(t, "/a/raw", ResolveOutputDir("", "/a/raw", inPlace))
}
