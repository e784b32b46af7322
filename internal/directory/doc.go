// Package directory provides contact lookup over the Google People API.
//
// It searches personal contacts, "other contacts" (interaction history) and
// the Workspace directory, deduplicating across sources. The Resolver type
// adapts the client to the scheduling attendee resolver's directory
// boundary.
package directory
