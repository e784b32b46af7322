package schedule_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/schedwise/schedwise/internal/instrumentation"
	"github.com/schedwise/schedwise/internal/schedule"
	"github.com/schedwise/schedwise/internal/server"
	"github.com/schedwise/schedwise/internal/tools/common"
)

// RegisterScheduleTools registers all scheduling tools with the MCP server
func RegisterScheduleTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	chatTool := mcp.NewTool("schedule_chat",
		mcp.WithDescription("Send a natural-language scheduling message. Starts a new conversation or continues an existing one; the reply either confirms the scheduled event or asks for the next missing detail."),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("skill",
			mcp.Description("Scheduling action: 'blockOffTime' (default), 'sendMeetingInvite', or 'rescheduleEvent'. Ignored when continuing a conversation."),
		),
		mcp.WithString("message",
			mcp.Required(),
			mcp.Description("The user's message, e.g. 'block off Friday afternoon for deep work'"),
		),
		mcp.WithString("conversationId",
			mcp.Description("ID of an existing conversation to continue. Omit to start a new one."),
		),
		mcp.WithString("timezone",
			mcp.Description("IANA timezone for date resolution (e.g. 'Europe/Berlin'). Defaults to UTC."),
		),
	)

	s.AddTool(chatTool, common.InstrumentedToolHandlerWithService(
		"schedule_chat", instrumentation.ServiceCalendar, instrumentation.OperationCreate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleChat(ctx, request, sc)
		}))

	resetTool := mcp.NewTool("schedule_reset",
		mcp.WithDescription("Discard a scheduling conversation and its accumulated draft"),
		mcp.WithString("conversationId",
			mcp.Required(),
			mcp.Description("ID of the conversation to discard"),
		),
	)

	s.AddTool(resetTool, common.InstrumentedToolHandler("schedule_reset", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleReset(ctx, request, sc)
		}))

	listTool := mcp.NewTool("schedule_list_conversations",
		mcp.WithDescription("List active scheduling conversations, newest first"),
	)

	s.AddTool(listTool, common.InstrumentedToolHandler("schedule_list_conversations", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListConversations(ctx, request, sc)
		}))

	searchTool := mcp.NewTool("schedule_search_events",
		mcp.WithDescription("Semantic search over previously scheduled events"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Free-text description of the event to find, e.g. 'the design meeting with Sam'"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results (default: 5)"),
		),
	)

	s.AddTool(searchTool, common.InstrumentedToolHandlerWithService(
		"schedule_search_events", instrumentation.ServiceSearch, instrumentation.OperationSearch, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSearchEvents(ctx, request, sc)
		}))

	return nil
}

// skillFromArgs maps the skill argument to a schedule.Skill, defaulting
// to blocking off time.
func skillFromArgs(args map[string]interface{}) (schedule.Skill, error) {
	raw, _ := args["skill"].(string)
	switch raw {
	case "", string(schedule.SkillBlockTime):
		return schedule.SkillBlockTime, nil
	case string(schedule.SkillMeetingInvite):
		return schedule.SkillMeetingInvite, nil
	case string(schedule.SkillReschedule):
		return schedule.SkillReschedule, nil
	default:
		return "", fmt.Errorf("unknown skill %q: expected %q, %q or %q",
			raw, schedule.SkillBlockTime, schedule.SkillMeetingInvite, schedule.SkillReschedule)
	}
}
