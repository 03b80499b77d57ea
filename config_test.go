package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seednode/hitster/internal/catalog"
	"github.com/Seednode/hitster/internal/deck"
)

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "defaults", cfg: Config{storageDir: "/tmp/hitster"}},
		{name: "decade", cfg: Config{storageDir: "/tmp/hitster", decade: 1980}},
		{name: "odd decade", cfg: Config{storageDir: "/tmp/hitster", decade: 1985}, wantErr: true},
		{name: "ancient decade", cfg: Config{storageDir: "/tmp/hitster", decade: 1800}, wantErr: true},
		{name: "no storage", cfg: Config{}, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigValidateServe(t *testing.T) {
	cfg := Config{port: 8080, prefix: "/games/"}
	require.NoError(t, cfg.validateServe())
	assert.Equal(t, "/games", cfg.prefix)
	assert.Equal(t, "http", cfg.scheme())

	cfg = Config{port: 8080, tlsCert: "cert.pem"}
	assert.Error(t, cfg.validateServe())

	cfg = Config{port: 8080, tlsCert: "cert.pem", tlsKey: "key.pem"}
	assert.NoError(t, cfg.validateServe())
	assert.Equal(t, "https", cfg.scheme())

	for _, port := range []int{0, -1, 65536} {
		cfg = Config{port: port}
		assert.Error(t, cfg.validateServe(), "port %d", port)
	}
}

func TestConfigValidatePlay(t *testing.T) {
	assert.NoError(t, (&Config{role: "game", players: 2}).validatePlay())
	assert.NoError(t, (&Config{role: "dj", players: 8}).validatePlay())
	assert.Error(t, (&Config{role: "host", players: 2}).validatePlay())
	assert.Error(t, (&Config{role: "game", players: 1}).validatePlay())
	assert.Error(t, (&Config{role: "game", players: 9}).validatePlay())
}

func runCmd(t *testing.T, args ...string) string {
	t.Helper()

	var out bytes.Buffer
	cmd := newCmd(&Config{})
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())

	return out.String()
}

func TestEnvFillsUnsetFlags(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HITSTER_STORAGE_DIR", dir)
	t.Setenv("HITSTER_PORT", "9090")
	t.Setenv("HITSTER_ROLE", "dj")

	cfg := &Config{}
	newCmd(cfg)

	assert.Equal(t, dir, cfg.storageDir)
	assert.Equal(t, 9090, cfg.port)
	assert.Equal(t, "dj", cfg.role)
	assert.Equal(t, "127.0.0.1", cfg.bind)
}

func TestDeckCommand(t *testing.T) {
	t.Setenv("HITSTER_GENRES", "soul")

	want := deck.Build("42", deck.SeedConfig{Genres: []string{"pop", "rock"}}, catalog.Builtin())

	out := runCmd(t, "deck", "--code", "42", "--genres", "Rock,pop")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, len(want))
	assert.Contains(t, lines[0], want[0].ID)
	assert.Contains(t, lines[19], want[19].ID)

	out = runCmd(t, "deck", "--code", "42")
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), len(catalog.Builtin()), "a thin genre falls back to the full catalog")
}

func TestDeckCommand_RequiresCode(t *testing.T) {
	cmd := newCmd(&Config{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"deck"})
	assert.Error(t, cmd.Execute())
}

func TestCodeCommand(t *testing.T) {
	out := runCmd(t, "code")
	code := strings.TrimSpace(out)
	assert.Len(t, code, deck.CodeLength)
	assert.Equal(t, code, deck.NormalizeCode(code))

	out = runCmd(t, "code", "--qr", "--genres", "pop")
	assert.Greater(t, strings.Count(out, "\n"), 10)
}

func TestVersionFlag(t *testing.T) {
	assert.Equal(t, "hitster v"+releaseVersion+"\n", runCmd(t, "-V"))
}

func TestDecadeFlag(t *testing.T) {
	eighties := catalog.Builtin().InDecade(1980)
	require.NotEmpty(t, eighties)

	out := runCmd(t, "--decade", "1980", "deck", "--code", "1")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, len(eighties))
	for _, line := range lines {
		assert.Contains(t, line, "(198")
	}
}
