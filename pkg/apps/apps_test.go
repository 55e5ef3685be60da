package apps

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := Open(filepath.Join(t.TempDir(), "saved_apps"))
	require.NoError(t, err)
	return repo
}

func TestOpenCreatesRoot(t *testing.T) {
	repo := openRepo(t)
	info, err := os.Stat(repo.Root())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	repo := openRepo(t)
	cases := []struct {
		name, prompt, code string
	}{
		{"Adder", "a function that adds two numbers", "def add(a,b): return a+b"},
		{"BMI Calculator", "bmi calc\n", "import tkinter as tk\n\nprint(\"hi\")\n"},
		{"unicode", "héllo \"quoted\" {json}", "print('ü')"},
		{"empty", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.NoError(t, repo.Save(tc.name, tc.prompt, tc.code))

			app, err := repo.Load(tc.name)
			require.NoError(t, err)
			assert.Equal(t, tc.name, app.Name)
			assert.Equal(t, tc.prompt, app.Prompt)
			assert.Equal(t, tc.code, app.SourceCode)
		})
	}
}

func TestSaveLayout(t *testing.T) {
	repo := openRepo(t)
	require.NoError(t, repo.Save("Adder", "adds", "def add(a,b): return a+b"))

	source, err := os.ReadFile(filepath.Join(repo.Root(), "Adder", SourceFile))
	require.NoError(t, err)
	assert.Equal(t, "def add(a,b): return a+b", string(source))

	data, err := os.ReadFile(filepath.Join(repo.Root(), "Adder", MetaFile))
	require.NoError(t, err)
	assert.JSONEq(t, `{"prompt": "adds"}`, string(data))

	entries, err := os.ReadDir(filepath.Join(repo.Root(), "Adder"))
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temp files left behind")
}

func TestSaveEmptyNameIsNoop(t *testing.T) {
	repo := openRepo(t)
	require.NoError(t, repo.Save("Existing", "p", "c"))
	before, err := repo.List()
	require.NoError(t, err)

	require.NoError(t, repo.Save("", "prompt", "code"))

	after, err := repo.List()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestSaveOverwrites(t *testing.T) {
	repo := openRepo(t)
	require.NoError(t, repo.Save("App", "first prompt", "print(1)"))
	require.NoError(t, repo.Save("App", "second prompt", "print(2)"))

	app, err := repo.Load("App")
	require.NoError(t, err)
	assert.Equal(t, "second prompt", app.Prompt)
	assert.Equal(t, "print(2)", app.SourceCode)

	names, err := repo.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"App"}, names)
}

func TestListSortedDirectoriesOnly(t *testing.T) {
	repo := openRepo(t)
	for _, name := range []string{"zeta", "Alpha", "mid"} {
		require.NoError(t, repo.Save(name, "p", "c"))
	}
	require.NoError(t, os.WriteFile(filepath.Join(repo.Root(), "stray.txt"), []byte("x"), 0o644))

	names, err := repo.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha", "mid", "zeta"}, names)
}

func TestListEmpty(t *testing.T) {
	names, err := openRepo(t).List()
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestLoadMissing(t *testing.T) {
	repo := openRepo(t)

	_, err := repo.Load("ghost")
	assert.ErrorIs(t, err, ErrNotFound)

	// directory present but meta.json lost between the two writes
	require.NoError(t, os.MkdirAll(filepath.Join(repo.Root(), "half"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(repo.Root(), "half", SourceFile), []byte("print(1)"), 0o644))
	_, err = repo.Load("half")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadMalformedMeta(t *testing.T) {
	repo := openRepo(t)
	require.NoError(t, repo.Save("broken", "p", "c"))
	require.NoError(t, os.WriteFile(filepath.Join(repo.Root(), "broken", MetaFile), []byte("{"), 0o644))

	_, err := repo.Load("broken")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestInvalidNames(t *testing.T) {
	repo := openRepo(t)
	for _, name := range []string{".", "..", "a/b", `a\b`, "../escape"} {
		assert.ErrorIs(t, repo.Save(name, "p", "c"), ErrInvalidName, name)
		_, err := repo.Load(name)
		assert.ErrorIs(t, err, ErrInvalidName, name)
	}
	_, err := repo.Load("")
	assert.ErrorIs(t, err, ErrInvalidName)
}
