package integration_test

import (
	"context"
	"os"
	"os/exec"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

// TestStdioProtocolCompliance runs the built binary over stdio with the SDK
// client.
func TestStdioProtocolCompliance(t *testing.T) {
	binaryPath := "./bin/lapledger"
	if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
		binaryPath = "../../bin/lapledger"
		if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
			t.Skip("binary not found, build it into bin/ first")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, binaryPath, "serve")
	cmd.Env = append(os.Environ(),
		"LAPLEDGER_TRANSPORT=stdio",
		"LAPLEDGER_DB_PATH=:memory:",
	)

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, &sdkmcp.CommandTransport{Command: cmd}, nil)
	require.NoError(t, err, "failed to connect to server")
	defer session.Close()

	t.Run("ServerInfo", func(t *testing.T) {
		initResult := session.InitializeResult()
		require.NotNil(t, initResult)
		require.NotNil(t, initResult.ServerInfo)
		require.Equal(t, "lapledger", initResult.ServerInfo.Name)
	})

	t.Run("ListTools", func(t *testing.T) {
		tools, err := session.ListTools(ctx, nil)
		require.NoError(t, err)

		names := make(map[string]bool)
		for _, tool := range tools.Tools {
			names[tool.Name] = true
		}
		for _, name := range []string{"ping", "create_profile", "add_time", "rankings", "export_csv", "import_csv"} {
			require.True(t, names[name], "missing tool %s", name)
		}
	})

	t.Run("CallPing", func(t *testing.T) {
		result, err := session.CallTool(ctx, &sdkmcp.CallToolParams{Name: "ping", Arguments: map[string]any{}})
		require.NoError(t, err)
		require.False(t, result.IsError)
	})
}
