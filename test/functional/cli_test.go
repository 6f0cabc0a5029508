package functional_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type cli struct {
	binary string
	env    []string
}

func newCLI(t *testing.T) *cli {
	t.Helper()

	binaryPath := "./bin/lapledger"
	if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
		binaryPath = "../../bin/lapledger"
		if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
			t.Skip("binary not found, build it into bin/ first")
		}
	}
	abs, err := filepath.Abs(binaryPath)
	require.NoError(t, err)

	dir := t.TempDir()
	return &cli{
		binary: abs,
		env: append(os.Environ(),
			"LAPLEDGER_DB_PATH="+filepath.Join(dir, "laps.db"),
			"LAPLEDGER_LOG_PATH="+filepath.Join(dir, "lapledger.log"),
		),
	}
}

func (c *cli) run(t *testing.T, args ...string) string {
	t.Helper()
	cmd := exec.Command(c.binary, args...)
	cmd.Env = c.env
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "lapledger %s: %s", strings.Join(args, " "), out)
	return string(out)
}

func TestCLI_RecordAndExport(t *testing.T) {
	c := newCLI(t)

	out := c.run(t, "profile", "create", "--character", "Mario", "--skin", "Classic", "--vehicle", "Standard Kart", "--select")
	require.Contains(t, out, "Mario + Standard Kart")

	out = c.run(t, "time", "add", "--circuit", "Mario Circuit", "1:20.000")
	require.Contains(t, out, "personal best")

	c.run(t, "time", "add", "--circuit", "Mario Circuit", "--digits", "121500")

	out = c.run(t, "best")
	require.Contains(t, out, "1:20.000")

	out = c.run(t, "export")
	require.True(t, strings.HasPrefix(out, "time_of_entry,track,character,outfit,kart,race_time\n"))
	require.Contains(t, out, "Mario Circuit,Mario,Classic,Standard Kart,1:21.500")
}

func TestCLI_ImportReplace(t *testing.T) {
	c := newCLI(t)

	path := filepath.Join(t.TempDir(), "times.csv")
	csv := "time_of_entry,track,character,outfit,kart,race_time\n" +
		"2024-05-01T18:30:00.000Z,Rainbow Road,Peach,Pink,Biddybuggy,2:05.000"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o600))

	out := c.run(t, "import", "--mode", "replace", path)
	require.Contains(t, out, "1 rows")

	out = c.run(t, "export")
	require.Equal(t, csv+"\n", out)
}
