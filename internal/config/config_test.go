package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/strongbox/internal/testutil"
)

func validSource(t *testing.T) string {
	t.Helper()
	warden := testutil.NewParty("warden")
	return `
storage: path: "/tmp/vaults.db"
vault: default_capacity: 128
recovery: authority: "` + warden.ID.String() + `"
`
}

func TestParse_Valid(t *testing.T) {
	cfg, err := Parse("test.cue", []byte(validSource(t)))
	require.NoError(t, err)

	assert.Equal(t, "/tmp/vaults.db", cfg.Storage.Path)
	assert.Equal(t, 128, cfg.Vault.DefaultCapacity)

	id, err := cfg.RecoveryAuthority()
	require.NoError(t, err)
	assert.Equal(t, testutil.NewParty("warden").ID, id)
}

func TestParse_DefaultsApply(t *testing.T) {
	warden := testutil.NewParty("warden")
	cfg, err := Parse("test.cue",
		[]byte(`recovery: authority: "`+warden.ID.String()+`"`))
	require.NoError(t, err)

	assert.Equal(t, "strongbox.db", cfg.Storage.Path)
	assert.Equal(t, 64, cfg.Vault.DefaultCapacity)
}

func TestParse_MissingAuthority(t *testing.T) {
	_, err := Parse("test.cue", []byte(`storage: path: "x.db"`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "authority")
}

func TestParse_RejectsBadValues(t *testing.T) {
	warden := testutil.NewParty("warden")
	authority := `recovery: authority: "` + warden.ID.String() + `"` + "\n"
	cases := map[string]string{
		"capacity zero":     authority + `vault: default_capacity: 0`,
		"capacity too big":  authority + `vault: default_capacity: 65537`,
		"authority not hex": `recovery: authority: "not-a-key"`,
		"authority short":   `recovery: authority: "abcd"`,
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse("test.cue", []byte(src))
			assert.Error(t, err)
		})
	}
}

func TestParse_RejectsZeroAuthority(t *testing.T) {
	src := `recovery: authority: "` + strings.Repeat("0", 64) + `"`
	_, err := Parse("test.cue", []byte(src))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all-zero")
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strongbox.cue")
	require.NoError(t, os.WriteFile(path, []byte(validSource(t)), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 128, cfg.Vault.DefaultCapacity)

	_, err = Load(filepath.Join(t.TempDir(), "missing.cue"))
	assert.Error(t, err)
}
