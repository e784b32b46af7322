// Package calendar provides a client for interacting with the Google Calendar API.
//
// This package offers functionality for managing calendar events, including
// creating, reading, updating, moving and deleting events, checking
// availability, and cross-linking buffer events via private extended
// properties. The Provider type adapts the client to the scheduling
// orchestrator's calendar boundary.
//
// The client supports multi-account authentication using the Google OAuth2
// flow and can manage events across multiple Google accounts.
//
// Example usage:
//
//	ctx := context.Background()
//	client, err := calendar.NewClient(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// List upcoming events
//	events, err := client.ListEvents(ctx, "primary", time.Now(), time.Now().AddDate(0, 0, 7), "")
//	if err != nil {
//	    log.Fatal(err)
//	}
package calendar
