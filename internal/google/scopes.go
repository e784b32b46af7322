package google

// DefaultOAuthScopes are the Google OAuth scopes required for full
// scheduling functionality. These scopes are used consistently across the
// application for OAuth configurations.
//
// The scopes provide access to:
//   - Google Calendar: full access (event creation, moves, free/busy)
//   - Gmail: send-only (outbound meeting invites)
//   - Contacts: read-only (attendee resolution, including other contacts
//     and the Workspace directory)
var DefaultOAuthScopes = []string{
	// OpenID Connect scopes (required for user info)
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",

	// Google Calendar scope
	"https://www.googleapis.com/auth/calendar",

	// Gmail scope: sending invites only, never reading mail
	"https://www.googleapis.com/auth/gmail.send",

	// Contacts scopes
	"https://www.googleapis.com/auth/contacts.readonly",
	"https://www.googleapis.com/auth/contacts.other.readonly",
	"https://www.googleapis.com/auth/directory.readonly",
}
