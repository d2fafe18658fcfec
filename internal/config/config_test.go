package config

import (
	"os"
	"path/filepath"
	"testing"

	"finprobe/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	var cfg *Config
	require.NotPanics(t, func() { cfg = Default() })

	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, "workbook.xlsx", cfg.Input.Filename)
	assert.Equal(t, "analysis_results.txt", cfg.Output.ReportFile)
	assert.True(t, cfg.Output.Save)
	assert.Equal(t, 5, cfg.Analysis.ProfileColumnLimit)
	assert.Equal(t, 3, cfg.Analysis.TrendColumnLimit)
	assert.InDelta(t, 0.5, cfg.Analysis.CorrelationThreshold, 1e-12)
	assert.Equal(t, 2, cfg.Analysis.CategoryMinDistinct)
	assert.Equal(t, 20, cfg.Analysis.CategoryMaxDistinct)
	assert.Equal(t, 10, cfg.Analysis.CategoryLabelLimit)
	assert.Equal(t, 5, cfg.Analysis.MinObservations)
	assert.InDelta(t, 0.1, cfg.Analysis.VolatilityStableCV, 1e-12)
	assert.InDelta(t, 1.5, cfg.Analysis.OutlierIQRMultiplier, 1e-12)
	assert.True(t, cfg.Analysis.ChronologicalTrend)
	assert.Equal(t, DefaultFinancialKeywords, cfg.Vocabulary.Financial)
	assert.Equal(t, []string{"date", "year"}, cfg.Vocabulary.Date)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("FINPROBE_WORKERS", "4")
	t.Setenv("FINPROBE_ANALYSIS_MIN_OBSERVATIONS", "8")
	t.Setenv("FINPROBE_VOCABULARY_FINANCIAL", "Revenue, ARR ")
	t.Setenv("FINPROBE_LOGGING_LEVEL", "DEBUG")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 8, cfg.Analysis.MinObservations)
	assert.Equal(t, []string{"revenue", "arr"}, cfg.Vocabulary.Financial)
	assert.Equal(t, "DEBUG", cfg.Logging.Level)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("FINPROBE_ANALYSIS_CATEGORY_MAX_DISTINCT", "1")

	_, err := Load()
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestMergeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "finprobe.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
analysis:
  correlation_threshold: 0.7
vocabulary:
  date: [period, fy]
`), 0o644))

	cfg := Default()
	require.NoError(t, cfg.MergeFile(path))

	assert.InDelta(t, 0.7, cfg.Analysis.CorrelationThreshold, 1e-12)
	assert.Equal(t, 5, cfg.Analysis.ProfileColumnLimit)
	assert.Equal(t, []string{"period", "fy"}, cfg.Vocabulary.Date)
	assert.Equal(t, path, cfg.ConfigFile)
}

func TestMergeFileNormalizesVocabulary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "finprobe.yaml")
	require.NoError(t, os.WriteFile(path, []byte("vocabulary:\n  financial: [' HeadCount ', '', ARR]\n"), 0o644))

	flagCfg := Default()
	require.NoError(t, flagCfg.MergeFile(path))
	assert.Equal(t, []string{"headcount", "arr"}, flagCfg.Vocabulary.Financial)

	t.Setenv("FINPROBE_CONFIG_FILE", path)
	envCfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, envCfg.Vocabulary, flagCfg.Vocabulary)
	assert.Equal(t, envCfg.Fingerprint(), flagCfg.Fingerprint(), "file via flag or env gives the same settings hash")
}

func TestMergeFileMissing(t *testing.T) {
	err := Default().MergeFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestResolveInput(t *testing.T) {
	dir := t.TempDir()
	book := filepath.Join(dir, "book.xlsx")
	require.NoError(t, os.WriteFile(book, []byte("x"), 0o644))

	in := InputConfig{Filename: "book.xlsx", SearchDir: dir}

	path, err := in.ResolveInput("")
	require.NoError(t, err)
	assert.Equal(t, book, path)

	path, err = in.ResolveInput(book)
	require.NoError(t, err)
	assert.Equal(t, book, path)
}

func TestResolveInputListsCandidates(t *testing.T) {
	in := InputConfig{Filename: "missing-book.xlsx", SearchDir: t.TempDir()}

	_, err := in.ResolveInput("")
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
	for _, c := range in.Candidates("") {
		assert.Contains(t, err.Error(), c)
	}
	assert.Len(t, in.Candidates(""), 3)
	assert.Equal(t, []string{"x.xlsx"}, in.Candidates("x.xlsx"))
}

func TestFingerprint(t *testing.T) {
	a, b := Default(), Default()
	require.NotEmpty(t, a.Fingerprint())
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	b.Workers = 8
	b.Output.ReportFile = "other.md"
	assert.Equal(t, a.Fingerprint(), b.Fingerprint(), "run plumbing does not change results")

	b.Analysis.VolatilityHighCV = 0.7
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
}
