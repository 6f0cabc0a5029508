package main

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type cliEnv struct {
	dbPath string
}

func setupCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	base := t.TempDir()
	for _, key := range []string{
		"LAPLEDGER_CONFIG_PATH",
		"LAPLEDGER_SERVER_HOST",
		"LAPLEDGER_SERVER_PORT",
		"LAPLEDGER_TRANSPORT",
		"LAPLEDGER_DB_PATH",
		"LAPLEDGER_LOG_LEVEL",
		"LAPLEDGER_ASSETS_DIR",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("LAPLEDGER_LOG_PATH", filepath.Join(base, "lapledger.log"))
	return &cliEnv{dbPath: filepath.Join(base, "laps.db")}
}

func (e *cliEnv) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--db", e.dbPath}, args...))
	err := cmd.Execute()
	return stdout.String(), err
}

func (e *cliEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, "", args...)
	require.NoError(t, err, "lapledger %s", strings.Join(args, " "))
	return out
}

var createdID = regexp.MustCompile(`\(([0-9a-f]{8})\)`)

func TestCLI_ProfileAndTimes(t *testing.T) {
	env := setupCLIEnv(t)

	out := env.mustRun(t, "profile", "create", "--character", "Mario", "--skin", "Classic", "--vehicle", "Standard Kart")
	require.Contains(t, out, "Mario + Standard Kart")
	m := createdID.FindStringSubmatch(out)
	require.Len(t, m, 2)

	_, err := env.run(t, "", "time", "add", "--circuit", "Mario Circuit", "1:20.000")
	require.ErrorContains(t, err, "no profile selected")

	env.mustRun(t, "profile", "select", m[1])
	out = env.mustRun(t, "time", "add", "--circuit", "Mario Circuit", "1:20.000")
	require.Contains(t, out, "New personal best!")
	require.Contains(t, out, "🥇")

	out = env.mustRun(t, "time", "add", "--circuit", "Mario Circuit", "--digits", "12500")
	require.Contains(t, out, "0:12.500")
	require.Contains(t, out, "🥇")

	_, err = env.run(t, "", "time", "add", "--circuit", "Mario Circuit", "1:75.000")
	require.Error(t, err)

	out = env.mustRun(t, "time", "list")
	require.Contains(t, out, "1:20.000")
	require.Contains(t, out, "🥈")

	out = env.mustRun(t, "best")
	require.Contains(t, out, "Mario Circuit")

	out = env.mustRun(t, "circuits")
	require.Contains(t, out, "circuits/MarioCircuit.png")

	out = env.mustRun(t, "profile", "list")
	require.Contains(t, out, "*")

	env.mustRun(t, "profile", "delete", m[1])
	out = env.mustRun(t, "export")
	require.Contains(t, out, "Mario Circuit,Mario,Default,Standard Kart,1:20.000")
}

func TestCLI_ImportFromStdin(t *testing.T) {
	env := setupCLIEnv(t)
	csv := "time_of_entry,track,character,outfit,kart,race_time\n" +
		"2024-05-01T18:30:00.000Z,Rainbow Road,Peach,Pink,Biddybuggy,2:05.000\n" +
		"broken"

	_, err := env.run(t, csv, "import", "-")
	require.ErrorContains(t, err, "--mode")

	out, err := env.run(t, csv, "import", "--mode", "append", "-")
	require.NoError(t, err)
	require.Contains(t, out, "1 rows read, 1 skipped, 1 new profiles")
	require.Contains(t, out, "Imported 1 rows (append)")

	out = env.mustRun(t, "profile", "list")
	require.Contains(t, out, "Peach (Pink)")

	csvPath := filepath.Join(t.TempDir(), "times.csv")
	env.mustRun(t, "export", "-o", csvPath)
	written, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	require.Equal(t, "time_of_entry,track,character,outfit,kart,race_time\n"+
		"2024-05-01T18:30:00.000Z,Rainbow Road,Peach,Pink,Biddybuggy,2:05.000", string(written))

	xlsxPath := filepath.Join(t.TempDir(), "times.xlsx")
	env.mustRun(t, "export", "--xlsx", "-o", xlsxPath)
	info, err := os.Stat(xlsxPath)
	require.NoError(t, err)
	require.NotZero(t, info.Size())
}

func TestCLI_PrefsAndReset(t *testing.T) {
	env := setupCLIEnv(t)

	out := env.mustRun(t, "prefs", "relative-dates", "on")
	require.Contains(t, out, "relative-dates: yes")
	out = env.mustRun(t, "prefs")
	require.Contains(t, out, "relative-dates: yes")

	_, err := env.run(t, "", "prefs", "relative-dates", "maybe")
	require.Error(t, err)

	_, err = env.run(t, "", "reset")
	require.ErrorContains(t, err, "--yes")
	env.mustRun(t, "reset", "--yes")

	out = env.mustRun(t, "prefs")
	require.Contains(t, out, "relative-dates: no")
}

func TestCLI_Mask(t *testing.T) {
	env := setupCLIEnv(t)

	out := env.mustRun(t, "mask", "123456")
	require.Equal(t, "1:23.456 (valid)\n", out)

	out = env.mustRun(t, "mask", "12")
	require.Equal(t, "0:12 (incomplete)\n", out)
}
