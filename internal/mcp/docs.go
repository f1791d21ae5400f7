package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `learner-hours logs study sessions: a date plus a start and end clock time on that day.

Tools:
- list_sessions: every session, newest date first.
- log_session: add a session (date YYYY-MM-DD, times HH:MM, 24-hour). Identical sessions are rejected.
- update_session / delete_session: by id, as returned from list_sessions or log_session.
- search_sessions: substring match on the date ("2024-01" or "2024/01").
- total_duration: total logged time.

Read learner-hours://docs/guide for the rules in detail.`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "learner-hours://docs/guide",
		Name:        "guide",
		Title:       "learner-hours guide",
		Description: "Session rules, ordering, search and totals.",
		Content: `# learner-hours guide

## Sessions

A session is ` + "`{id, date, startTime, endTime}`" + `.

- ` + "`date`" + ` is ` + "`YYYY-MM-DD`" + `.
- Times are zero-padded 24-hour ` + "`HH:MM`" + ` on the same day. A session never crosses midnight.
- The start time may equal the end time (a zero-length session) but may not be after it.
- Logging a session identical in all three fields to a stored one fails with ` + "`DUPLICATE`" + `.
  Updates are not checked for duplicates.

## Ordering

Sessions are kept newest date first. Sessions on the same date keep the order they were logged in.

## Search

` + "`search_sessions`" + ` matches any session whose date contains the query. Slashes are read as dashes.
An empty result says whether nothing matched or nothing is stored at all.

## Totals

` + "`total_duration`" + ` sums every session and returns hours and minutes, e.g. ` + "`1h 45m`" + `.

## Errors

- ` + "`VALIDATION_ERROR`" + `: missing or malformed field, or start after end.
- ` + "`DUPLICATE`" + `: identical session already stored.
- ` + "`NOT_FOUND`" + `: no session with that id.
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
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
