// Package mailer sends templated outbound email through the Gmail API.
//
// Messages are built in RFC 2822 format and sent via the raw-message
// endpoint. The Sender type adapts the client to the scheduling
// orchestrator's mail boundary; invite emails carry the meeting host as
// Reply-To so guests respond to the organizer, not the service account.
package mailer
