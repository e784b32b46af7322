// Package google provides OAuth2 authentication and token management for
// the Google APIs the scheduler talks to (Calendar, Gmail send, People).
//
// Tokens are stored per account under the user cache directory, so one
// server process can serve multiple Google accounts side by side. The
// TokenProvider interface allows alternative token sources to be plugged
// in.
package google
