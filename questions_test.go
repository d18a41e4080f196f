package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Seednode/squadhealth/games/healthcheck"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadQuestions_Default(t *testing.T) {
	qs, err := loadQuestions("")
	require.NoError(t, err)
	assert.Equal(t, healthcheck.DefaultQuestions(), qs)
}

func TestLoadQuestions_YAML(t *testing.T) {
	path := writeFile(t, "questions.yaml", `questions:
  - title: Focus
    green: We know what matters this sprint.
    red: Everything is a priority.
  - title: Tooling
    green: Our tools help us.
    red: Our tools fight us.
`)

	qs, err := loadQuestions(path)
	require.NoError(t, err)
	assert.Equal(t, []healthcheck.Question{
		{Title: "Focus", Green: "We know what matters this sprint.", Red: "Everything is a priority."},
		{Title: "Tooling", Green: "Our tools help us.", Red: "Our tools fight us."},
	}, qs)
}

func TestLoadQuestions_JSON(t *testing.T) {
	path := writeFile(t, "questions.json", `{"questions": [{"title": "Fun", "green": "yes", "red": "no"}]}`)

	qs, err := loadQuestions(path)
	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Equal(t, "Fun", qs[0].Title)
}

func TestLoadQuestions_Errors(t *testing.T) {
	_, err := loadQuestions(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = loadQuestions(writeFile(t, "empty.yaml", "questions: []\n"))
	assert.Error(t, err)

	_, err = loadQuestions(writeFile(t, "untitled.yaml", "questions:\n  - green: g\n    red: r\n"))
	assert.Error(t, err)
}
