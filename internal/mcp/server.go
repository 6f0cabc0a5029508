package mcp

import (
	"context"
	"io"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/lapledger/internal/csvsync"
	"github.com/rpggio/lapledger/internal/domain/ledger"
	"github.com/rpggio/lapledger/internal/domain/profile"
)

// Tracker defines the ledger operations needed by MCP.
type Tracker interface {
	CreateProfile(ctx context.Context, req profile.CreateRequest) (*profile.Profile, error)
	DeleteProfile(ctx context.Context, id string) error
	SelectProfile(ctx context.Context, id string) error
	ActiveProfile() (*profile.Profile, bool)
	Profiles() []profile.Profile
	FindProfile(id string) (*profile.Profile, bool)

	AddTime(ctx context.Context, req ledger.AddRequest) (*ledger.AddResult, error)
	EditTimeByID(ctx context.Context, id string, req ledger.EditRequest) (*ledger.Entry, error)
	RemoveTimeByID(ctx context.Context, id string) error
	Times() []ledger.Entry
	SortedTimes() []ledger.Entry
	Rankings() map[string]ledger.Placement
	PersonalBests() []ledger.Entry
	RecentCircuits() []string

	ExportCSV() string
	StageImport(r io.Reader) (*csvsync.Batch, error)
	CommitImport(ctx context.Context, batch *csvsync.Batch, mode csvsync.Mode) error
}

// Config contains server configuration.
type Config struct {
	Tracker Tracker
	Logger  *slog.Logger
	Version string
}

// NewServer creates and configures an MCP server with all tools and resources.
func NewServer(cfg Config) *sdkmcp.Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Version == "" {
		cfg.Version = "0.1.0"
	}

	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "lapledger",
		Version: cfg.Version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)
	registerExportResource(server, cfg.Tracker)

	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, cfg.Tracker)

	return server
}
