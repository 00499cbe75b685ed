package manage

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sujalbistaa/mysite/internal/accounts"
	"github.com/sujalbistaa/mysite/internal/polls"
)

var testNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func run(t *testing.T, dbURL string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(&app{now: func() time.Time { return testNow }})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--database", dbURL}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, dbURL string, args ...string) string {
	t.Helper()
	out, err := run(t, dbURL, args...)
	require.NoError(t, err, out)
	return out
}

func newDatabase(t *testing.T) string {
	t.Helper()
	dbURL := "sqlite://" + filepath.Join(t.TempDir(), "manage.db")
	out := mustRun(t, dbURL, "migrate")
	assert.Contains(t, out, "Database is up to date")
	return dbURL
}

func TestCreateUser(t *testing.T) {
	dbURL := newDatabase(t)

	out := mustRun(t, dbURL, "createuser", "Admin", "--password", "secret", "--moderator")
	assert.Contains(t, out, "Created moderator admin")

	out = mustRun(t, dbURL, "createuser", "reader", "--password", "secret", "--email", "r@example.com")
	assert.Contains(t, out, "Created user reader")

	_, err := run(t, dbURL, "createuser", "admin", "--password", "other")
	assert.ErrorIs(t, err, accounts.ErrUsernameTaken)

	_, err = run(t, dbURL, "createuser", "nopassword")
	assert.Error(t, err)
}

func TestQuestionCommands(t *testing.T) {
	dbURL := newDatabase(t)

	out := mustRun(t, dbURL, "addquestion", "--text", "What's new?", "--days", "-1")
	assert.Contains(t, out, `Created question 1 "What's new?"`)
	mustRun(t, dbURL, "addquestion", "--text", "Later?", "--pub-date", "2024-06-01T00:00:00Z")

	_, err := run(t, dbURL, "addquestion", "--text", "Both?", "--days", "1", "--pub-date", "2024-06-01T00:00:00Z")
	assert.Error(t, err)
	_, err = run(t, dbURL, "addquestion", "--text", "Bad date", "--pub-date", "tomorrow")
	assert.Error(t, err)

	out = mustRun(t, dbURL, "addchoice", "1", "Not much")
	assert.Contains(t, out, `Added choice 1 "Not much" to question 1`)
	mustRun(t, dbURL, "addchoice", "1", "The sky")

	_, err = run(t, dbURL, "addchoice", "99", "Orphan")
	assert.ErrorIs(t, err, polls.ErrQuestionNotFound)
	_, err = run(t, dbURL, "addchoice", "abc", "Orphan")
	assert.Error(t, err)

	out = mustRun(t, dbURL, "questions")
	assert.Contains(t, out, "What's new?")
	assert.Contains(t, out, "Later?")
	assert.Contains(t, out, "(scheduled)")
	assert.Contains(t, out, "yes")
}

func TestResultsAndResetVotes(t *testing.T) {
	dbURL := newDatabase(t)
	mustRun(t, dbURL, "addquestion", "--text", "Pick one", "--days", "-1")
	mustRun(t, dbURL, "addchoice", "1", "Red")
	mustRun(t, dbURL, "addchoice", "1", "Blue")

	out := mustRun(t, dbURL, "results", "1")
	assert.Contains(t, out, "Pick one")
	assert.Contains(t, out, "Red")
	assert.Contains(t, out, "Blue")
	assert.Contains(t, strings.ToUpper(out), "TOTAL")

	out = mustRun(t, dbURL, "resetvotes", "1")
	assert.Contains(t, out, "Reset votes of question 1")

	_, err := run(t, dbURL, "results", "7")
	assert.ErrorIs(t, err, polls.ErrQuestionNotFound)
	_, err = run(t, dbURL, "resetvotes", "7")
	assert.ErrorIs(t, err, polls.ErrQuestionNotFound)
}

func TestQuestionsEmpty(t *testing.T) {
	dbURL := newDatabase(t)
	out := mustRun(t, dbURL, "questions")
	assert.Contains(t, out, "No questions yet.")
}
