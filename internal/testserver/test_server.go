package testserver

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/lapledger/internal/mcp"
	"github.com/rpggio/lapledger/internal/sqlite"
	"github.com/rpggio/lapledger/internal/tracker"
	"github.com/rpggio/lapledger/internal/transport"
	"github.com/stretchr/testify/require"
)

// TestServer runs the full HTTP stack over an in-memory database.
type TestServer struct {
	Server  *httptest.Server
	DB      *sqlite.DB
	Tracker *tracker.Tracker
}

// New starts a server whose database lives only for the duration of t.
func New(t *testing.T) *TestServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	tr, err := tracker.New(context.Background(), sqlite.NewKVRepository(db), nil)
	require.NoError(t, err)

	mcpServer := mcp.NewServer(mcp.Config{Tracker: tr})
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return mcpServer },
		nil,
	)
	server := httptest.NewServer(transport.NewRouter(mcpHandler, tr, nil))

	t.Cleanup(func() {
		server.Close()
		_ = db.Close()
	})

	return &TestServer{Server: server, DB: db, Tracker: tr}
}

// Connect opens an MCP client session against the server's /mcp endpoint.
func (ts *TestServer) Connect(t *testing.T) *sdkmcp.ClientSession {
	t.Helper()

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(context.Background(), &sdkmcp.StreamableClientTransport{
		Endpoint: ts.Server.URL + "/mcp",
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}
