package common

import (
	"context"

	"github.com/schedwise/schedwise/internal/google"
)

// GetAccountFromArgs extracts the account name from request arguments.
// Defaults to "default" when no account name is explicitly provided.
func GetAccountFromArgs(_ context.Context, args map[string]interface{}) string {
	if accountVal, ok := args["account"].(string); ok && accountVal != "" {
		return accountVal
	}
	return google.DefaultAccount
}
