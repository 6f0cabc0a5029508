package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `lapledger records kart racing lap times per racer profile.

Core concepts:
- Profile: a racer setup (character, skin, vehicle). One profile can be selected as active.
- Time entry: a lap time (M:SS.mmm) on a circuit, stamped with the date it was recorded.
- Ranking: times on a circuit ordered fastest first; the top three get gold, silver and bronze.
- Personal best: a time faster than every earlier time on the same circuit.

Typical workflow:
1) list_profiles, then create_profile or select_profile.
2) add_time with circuit and time (or keypad digits). Omit profile_id to use the selected profile.
3) rankings / personal_bests / list_times to review.
4) export_csv and import_csv move the ledger to and from a spreadsheet.
   Call import_csv with mode=cancel first to preview what would change.

Docs:
- lapledger://docs/csv-format
- lapledger://export/times.csv (current ledger as CSV)
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "lapledger://docs/csv-format",
		Name:        "docs_csv_format",
		Title:       "Spreadsheet CSV format",
		Description: "Columns, quoting and import rules for export_csv and import_csv.",
		Content: `# Spreadsheet CSV format

Header (export order):

    time_of_entry,track,character,outfit,kart,race_time

- time_of_entry: ISO 8601 UTC timestamp with milliseconds, e.g. 2024-05-01T18:30:00.000Z
- track: circuit name
- character, outfit, kart: the racer setup; outfit is the character skin
- race_time: M:SS.mmm

Rows are separated by a newline. Fields containing a comma, quote or line break are
wrapped in double quotes with inner quotes doubled.

## Import rules

- Columns may appear in any order and extra columns are ignored, but all six names must be present.
- Rows with a missing track, character or race_time, or a malformed race_time, are skipped and reported.
- A row whose character, outfit and kart match no existing profile creates one new profile
  per distinct combination.
- mode=replace swaps the whole ledger, mode=append adds after existing times,
  mode=cancel reports what would happen and changes nothing.
- Quoted fields cannot contain line breaks on import.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      requestURI(req, doc.URI),
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}

const exportURI = "lapledger://export/times.csv"

func registerExportResource(server *sdkmcp.Server, t Tracker) {
	server.AddResource(&sdkmcp.Resource{
		URI:         exportURI,
		Name:        "times_csv",
		Title:       "Lap times CSV",
		Description: "The current ledger in spreadsheet CSV format.",
		MIMEType:    "text/csv",
	}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
		return &sdkmcp.ReadResourceResult{
			Contents: []*sdkmcp.ResourceContents{{
				URI:      requestURI(req, exportURI),
				MIMEType: "text/csv",
				Text:     t.ExportCSV(),
			}},
		}, nil
	})
}

func requestURI(req *sdkmcp.ReadResourceRequest, fallback string) string {
	if req != nil && req.Params != nil && req.Params.URI != "" {
		return req.Params.URI
	}
	return fallback
}
