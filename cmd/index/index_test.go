package index

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jonesrussell/north-cloud/search-probe/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadMapping(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
		return path
	}

	t.Run("yaml", func(t *testing.T) {
		t.Parallel()

		m, err := readMapping(write("m.yml", "title: text\nprice: integer\n"))
		require.NoError(t, err)
		assert.Equal(t, domain.FieldTypeText, m.Properties["title"].Type)
		assert.Equal(t, domain.FieldTypeInteger, m.Properties["price"].Type)
	})

	t.Run("json", func(t *testing.T) {
		t.Parallel()

		m, err := readMapping(write("m.json", `{"location": "geo_shape"}`))
		require.NoError(t, err)
		assert.Equal(t, domain.FieldTypeGeoShape, m.Properties["location"].Type)
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()

		_, err := readMapping(write("empty.yml", ""))
		require.Error(t, err)
	})

	t.Run("missing", func(t *testing.T) {
		t.Parallel()

		_, err := readMapping(filepath.Join(dir, "absent.yml"))
		require.Error(t, err)
	})
}
