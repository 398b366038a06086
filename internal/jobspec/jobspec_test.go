package jobspec

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
job:
  title: "Няня для двоих детей"
  family:
    children:
      - age: "2 года"
        notes: "аллергия на орехи"
      - age: "5 лет"
    pets: "кот"
  schedule:
    days: "пн-пт"
    hours: "9:00-18:00"
  address: "Москва, Тверская 1"
  duties:
    - "прогулки"
    - "развивающие игры"
  requirements:
    - "опыт от 3 лет"
    - "медкнижка"
  nice_to_have:
    - "педагогическое образование"
  notes: "Важна пунктуальность."
`

func writeSpec(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "job.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAndRender(t *testing.T) {
	spec, err := Load(writeSpec(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "Няня для двоих детей", spec.Title)
	require.Len(t, spec.Family.Children, 2)
	assert.Equal(t, "2 года", spec.Family.Children[0].Age)

	text := spec.Render()
	assert.Contains(t, text, "Няня для двоих детей")
	assert.Contains(t, text, "- 2 года (аллергия на орехи)")
	assert.Contains(t, text, "Schedule: пн-пт 9:00-18:00")
	assert.Contains(t, text, "Location: Москва, Тверская 1")
	assert.Contains(t, text, "Requirements:")
	assert.Contains(t, text, "- медкнижка")
	assert.Contains(t, text, "Важна пунктуальность.")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadEmptyJobSection(t *testing.T) {
	_, err := Load(writeSpec(t, "something_else: true\n"))
	assert.Error(t, err)
}

func TestRenderMinimalSpec(t *testing.T) {
	spec := &Spec{Title: "Няня на выходные"}
	assert.Equal(t, "Няня на выходные", spec.Render())
}
