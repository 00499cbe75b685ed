package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sujalbistaa/mysite/internal/models"
)

func TestInitSQLiteAndMigrate(t *testing.T) {
	database, err := Init("sqlite://" + filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	require.NoError(t, Migrate(database))

	for _, model := range []any{&models.User{}, &models.Post{}, &models.Comment{}, &models.Question{}, &models.Choice{}} {
		assert.True(t, database.Migrator().HasTable(model), "missing table for %T", model)
	}
}

func TestInitRejectsUnknownScheme(t *testing.T) {
	_, err := Init("mysql://root@localhost/mysite")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedURL)
}
