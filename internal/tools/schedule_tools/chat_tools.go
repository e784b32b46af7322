package schedule_tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/schedwise/schedwise/internal/dialogue"
	"github.com/schedwise/schedwise/internal/schedule"
	"github.com/schedwise/schedwise/internal/server"
	"github.com/schedwise/schedwise/internal/tools/common"
)

func handleChat(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	message, ok := args["message"].(string)
	if !ok || strings.TrimSpace(message) == "" {
		return mcp.NewToolResultError("message is required"), nil
	}

	manager := sc.Manager()

	conversationID, _ := args["conversationId"].(string)
	if conversationID == "" {
		skill, err := skillFromArgs(args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		timezone := "UTC"
		if tzVal, ok := args["timezone"].(string); ok && tzVal != "" {
			if _, err := time.LoadLocation(tzVal); err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Invalid timezone %q: %v", tzVal, err)), nil
			}
			timezone = tzVal
		}

		state := manager.Create(account, skill, timezone)
		conversationID = state.ID
		if metrics := sc.Metrics(); metrics != nil {
			metrics.IncrementActiveConversations(ctx)
		}
	}

	var (
		reply  string
		skill  schedule.Skill
		status schedule.Status
	)
	err := manager.With(conversationID, func(s *dialogue.State) error {
		ctrl, err := sc.ControllerFor(s.OwnerID, s.Skill)
		if err != nil {
			return err
		}
		reply, err = ctrl.HandleTurn(ctx, s, message)
		skill = s.Skill
		status = s.Status
		return err
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to process message: %v", err)), nil
	}

	if metrics := sc.Metrics(); metrics != nil {
		metrics.RecordDialogueTurn(ctx, string(skill), string(status))
	}
	if status == schedule.StatusCompleted {
		manager.Delete(conversationID)
		if metrics := sc.Metrics(); metrics != nil {
			metrics.DecrementActiveConversations(ctx)
		}
	}

	result := fmt.Sprintf("%s\n\nConversation: %s\nStatus: %s\n", reply, conversationID, status)
	return mcp.NewToolResultText(result), nil
}

func handleReset(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	conversationID, ok := args["conversationId"].(string)
	if !ok || conversationID == "" {
		return mcp.NewToolResultError("conversationId is required"), nil
	}

	if !sc.Manager().Delete(conversationID) {
		return mcp.NewToolResultError(fmt.Sprintf("No conversation with ID %s", conversationID)), nil
	}
	if metrics := sc.Metrics(); metrics != nil {
		metrics.DecrementActiveConversations(ctx)
	}

	return mcp.NewToolResultText(fmt.Sprintf("Conversation %s discarded.", conversationID)), nil
}

func handleListConversations(_ context.Context, _ mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	summaries := sc.Manager().List()
	if len(summaries) == 0 {
		return mcp.NewToolResultText("No active conversations."), nil
	}

	result := fmt.Sprintf("Found %d conversations:\n\n", len(summaries))
	for i, s := range summaries {
		result += fmt.Sprintf("%d. %s\n", i+1, s.ID)
		result += fmt.Sprintf("   Account: %s\n", s.OwnerID)
		result += fmt.Sprintf("   Skill: %s\n", s.Skill)
		result += fmt.Sprintf("   Status: %s\n", s.Status)
		result += fmt.Sprintf("   Turns: %d\n", s.Turns)
		result += fmt.Sprintf("   Updated: %s\n", s.UpdatedAt.Format(time.RFC3339))
		result += "\n"
	}

	return mcp.NewToolResultText(result), nil
}

func handleSearchEvents(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	query, ok := args["query"].(string)
	if !ok || strings.TrimSpace(query) == "" {
		return mcp.NewToolResultError("query is required"), nil
	}

	limit := 5
	if limitVal, ok := args["limit"].(float64); ok && limitVal > 0 {
		limit = int(limitVal)
	}

	store := sc.Store()
	if store == nil {
		return mcp.NewToolResultError("Event search is not available: no search store configured"), nil
	}
	extractor := sc.Extractor()
	if extractor == nil {
		return mcp.NewToolResultError("Event search is not available: no extractor configured"), nil
	}

	embedding, err := extractor.Embed(ctx, query)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to embed query: %v", err)), nil
	}

	hits, err := store.Search(ctx, account, embedding, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to search events: %v", err)), nil
	}
	if len(hits) == 0 {
		return mcp.NewToolResultText("No matching events found."), nil
	}

	result := fmt.Sprintf("Found %d events:\n\n", len(hits))
	for i, hit := range hits {
		result += fmt.Sprintf("%d. %s\n", i+1, hit.Title)
		result += fmt.Sprintf("   ID: %s\n", hit.EventID)
		result += fmt.Sprintf("   Start: %s\n", hit.Start.Format(time.RFC3339))
		result += fmt.Sprintf("   Score: %.3f\n", hit.Score)
		result += "\n"
	}

	return mcp.NewToolResultText(result), nil
}
