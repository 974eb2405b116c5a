package policy

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprint(t *testing.T) {
	a := []Entry{{Mode: "home", App: 0, Display: 1}, {Mode: "radio", App: 2, Audio: 2}}
	b := []Entry{{Mode: "radio", App: 2, Audio: 2}, {Mode: "home", App: 0, Display: 1}}

	assert.Len(t, Fingerprint(a), 64)
	assert.Equal(t, Fingerprint(a), New(a).Fingerprint())
	assert.NotEqual(t, Fingerprint(a), Fingerprint(b), "order decides which duplicate wins")

	changed := append([]Entry(nil), a...)
	changed[1].Mixing = true
	assert.NotEqual(t, Fingerprint(a), Fingerprint(changed))

	var nilTable *Table
	assert.Empty(t, nilTable.Fingerprint())
}

func TestFingerprintMatchesAcrossFormats(t *testing.T) {
	xmlEntries, err := Load(filepath.Join("testdata", "defaultmode.xml"))
	require.NoError(t, err)
	yamlEntries, err := Load(filepath.Join("testdata", "policy.yaml"))
	require.NoError(t, err)

	require.Len(t, yamlEntries, 4)
	assert.Equal(t, Fingerprint(xmlEntries[:4]), Fingerprint(yamlEntries))
}

func TestLoadRejectsOversizedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "huge.json")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat(" ", MaxFileSize+1)), 0o600))

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrConfigLoad)
}
