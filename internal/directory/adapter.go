package directory

import (
	"context"

	"github.com/schedwise/schedwise/internal/schedule"
)

// searchPageSize bounds how many candidates one attendee lookup pulls in.
const searchPageSize = 10

// Resolver adapts a People client to the attendee resolver's directory
// boundary.
type Resolver struct {
	client *Client
}

// NewResolver wraps a client.
func NewResolver(client *Client) *Resolver {
	return &Resolver{client: client}
}

var _ schedule.Directory = (*Resolver)(nil)

// FindByName fuzzy-matches directory entries by display name.
func (r *Resolver) FindByName(ctx context.Context, pattern string) ([]schedule.DirectoryEntry, error) {
	contacts, err := r.client.SearchContacts(ctx, pattern, searchPageSize)
	if err != nil {
		return nil, err
	}

	entries := make([]schedule.DirectoryEntry, 0, len(contacts))
	for _, c := range contacts {
		entries = append(entries, toEntry(c))
	}
	return entries, nil
}

// Self returns the requesting user's own directory entry.
func (r *Resolver) Self(ctx context.Context) (schedule.DirectoryEntry, error) {
	me, err := r.client.Me(ctx)
	if err != nil {
		return schedule.DirectoryEntry{}, err
	}
	return toEntry(me), nil
}

func toEntry(c *Contact) schedule.DirectoryEntry {
	entry := schedule.DirectoryEntry{DisplayName: c.DisplayName}
	for _, email := range c.Emails {
		entry.Emails = append(entry.Emails, schedule.DirectoryEmail{
			Value:   email.Value,
			Primary: email.Primary,
		})
	}
	return entry
}
