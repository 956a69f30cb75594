package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeProfile(t, `
icp:
  name: Mid-market SaaS
  industries: [Technology, Software]
  industry_weight: 30
  personas: [VP of Sales, CRO]
  persona_weight: 40
  company_size_min: 50
  company_size_max: 500
  size_weight: 30
thresholds:
  hot_min: 80
  warm_min: 50
`)

	p, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Mid-market SaaS", p.ICP.Name)
	assert.Equal(t, 100, p.ICP.WeightSum())
	assert.Equal(t, 80, p.Thresholds.HotMin)
	assert.Equal(t, 50, p.Thresholds.WarmMin)
}

func TestLoadFileDefaultThresholds(t *testing.T) {
	path := writeProfile(t, `
icp:
  name: Basic
  industries: [Technology]
  industry_weight: 50
`)

	p, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 71, p.Thresholds.HotMin)
	assert.Equal(t, 40, p.Thresholds.WarmMin)
}

func TestLoadFileInvalidWeights(t *testing.T) {
	path := writeProfile(t, `
icp:
  name: Overweight
  industries: [Technology]
  industry_weight: 80
  personas: [CEO]
  persona_weight: 40
`)

	_, err := LoadFile(path)
	assert.ErrorContains(t, err, "invalid criteria")
}

func TestLoadFileInvertedThresholds(t *testing.T) {
	path := writeProfile(t, `
icp:
  name: Basic
  industries: [Technology]
  industry_weight: 50
thresholds:
  hot_min: 40
  warm_min: 71
`)

	_, err := LoadFile(path)
	assert.ErrorContains(t, err, "warm threshold")
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
