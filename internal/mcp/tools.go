package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/learnerhours/internal/domain/hours"
)

// SessionOutput is a session as tools return it.
type SessionOutput struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	Description string `json:"description"`
}

func toOutput(s hours.Session) SessionOutput {
	return SessionOutput{
		ID:          s.ID,
		Date:        s.Date,
		StartTime:   s.StartTime,
		EndTime:     s.EndTime,
		Description: s.Describe(),
	}
}

func toOutputs(sessions []hours.Session) []SessionOutput {
	out := make([]SessionOutput, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, toOutput(s))
	}
	return out
}

type ListSessionsInput struct{}

type ListSessionsOutput struct {
	Sessions []SessionOutput `json:"sessions"`
	Count    int             `json:"count"`
}

type LogSessionInput struct {
	Date      string `json:"date" jsonschema:"session date as YYYY-MM-DD"`
	StartTime string `json:"startTime" jsonschema:"start time as 24-hour HH:MM"`
	EndTime   string `json:"endTime" jsonschema:"end time as 24-hour HH:MM, not before the start"`
}

type UpdateSessionInput struct {
	ID        string `json:"id" jsonschema:"id of the session to replace"`
	Date      string `json:"date" jsonschema:"session date as YYYY-MM-DD"`
	StartTime string `json:"startTime" jsonschema:"start time as 24-hour HH:MM"`
	EndTime   string `json:"endTime" jsonschema:"end time as 24-hour HH:MM, not before the start"`
}

type DeleteSessionInput struct {
	ID string `json:"id" jsonschema:"id of the session to delete"`
}

type DeleteSessionOutput struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

type SearchSessionsInput struct {
	Query string `json:"query" jsonschema:"text the session date must contain, e.g. 2024-01 or 2024/01"`
}

type SearchSessionsOutput struct {
	Query           string          `json:"query"`
	Sessions        []SessionOutput `json:"sessions"`
	NoResults       bool            `json:"no_results"`
	CollectionEmpty bool            `json:"collection_empty"`
}

type TotalDurationInput struct{}

type TotalDurationOutput struct {
	Hours    int    `json:"hours"`
	Minutes  int    `json:"minutes"`
	Sessions int    `json:"sessions"`
	Text     string `json:"text"`
}

func registerTools(server *sdkmcp.Server, sessions SessionService) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_sessions",
		Description: "List every logged study session, newest date first",
	}, listSessions(sessions))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "log_session",
		Description: "Log a new study session",
	}, logSession(sessions))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "update_session",
		Description: "Replace the date and times of a logged session",
	}, updateSession(sessions))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "delete_session",
		Description: "Delete a logged session",
	}, deleteSession(sessions))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "search_sessions",
		Description: "Find sessions whose date contains the query",
	}, searchSessions(sessions))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "total_duration",
		Description: "Total time across every logged session",
	}, totalDuration(sessions))
}

func listSessions(sessions SessionService) sdkmcp.ToolHandlerFor[ListSessionsInput, ListSessionsOutput] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ ListSessionsInput) (*sdkmcp.CallToolResult, ListSessionsOutput, error) {
		list, err := sessions.List(ctx)
		if err != nil {
			return nil, ListSessionsOutput{}, MapError(err)
		}
		return nil, ListSessionsOutput{Sessions: toOutputs(list), Count: len(list)}, nil
	}
}

func logSession(sessions SessionService) sdkmcp.ToolHandlerFor[LogSessionInput, SessionOutput] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, in LogSessionInput) (*sdkmcp.CallToolResult, SessionOutput, error) {
		created, err := sessions.Create(ctx, hours.Input{Date: in.Date, StartTime: in.StartTime, EndTime: in.EndTime})
		if err != nil {
			return nil, SessionOutput{}, MapError(err)
		}
		return nil, toOutput(created), nil
	}
}

func updateSession(sessions SessionService) sdkmcp.ToolHandlerFor[UpdateSessionInput, SessionOutput] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, in UpdateSessionInput) (*sdkmcp.CallToolResult, SessionOutput, error) {
		updated, err := sessions.Update(ctx, in.ID, hours.Input{Date: in.Date, StartTime: in.StartTime, EndTime: in.EndTime})
		if err != nil {
			return nil, SessionOutput{}, MapError(err)
		}
		return nil, toOutput(updated), nil
	}
}

func deleteSession(sessions SessionService) sdkmcp.ToolHandlerFor[DeleteSessionInput, DeleteSessionOutput] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, in DeleteSessionInput) (*sdkmcp.CallToolResult, DeleteSessionOutput, error) {
		if err := sessions.Delete(ctx, in.ID); err != nil {
			return nil, DeleteSessionOutput{}, MapError(err)
		}
		return nil, DeleteSessionOutput{ID: in.ID, Deleted: true}, nil
	}
}

func searchSessions(sessions SessionService) sdkmcp.ToolHandlerFor[SearchSessionsInput, SearchSessionsOutput] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, in SearchSessionsInput) (*sdkmcp.CallToolResult, SearchSessionsOutput, error) {
		result, err := sessions.Search(ctx, in.Query)
		if err != nil {
			return nil, SearchSessionsOutput{}, MapError(err)
		}
		return nil, SearchSessionsOutput{
			Query:           result.Query,
			Sessions:        toOutputs(result.Sessions),
			NoResults:       result.NoResults(),
			CollectionEmpty: result.CollectionEmpty(),
		}, nil
	}
}

func totalDuration(sessions SessionService) sdkmcp.ToolHandlerFor[TotalDurationInput, TotalDurationOutput] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ TotalDurationInput) (*sdkmcp.CallToolResult, TotalDurationOutput, error) {
		total, err := sessions.TotalDuration(ctx)
		if err != nil {
			return nil, TotalDurationOutput{}, MapError(err)
		}
		return nil, TotalDurationOutput{
			Hours:    total.Hours,
			Minutes:  total.Minutes,
			Sessions: total.Sessions,
			Text:     total.String(),
		}, nil
	}
}
