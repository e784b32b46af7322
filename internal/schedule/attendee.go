package schedule

import (
	"context"
	"fmt"
)

// DirectoryEmail is one email address on a directory entry.
type DirectoryEmail struct {
	Value   string
	Primary bool
}

// DirectoryEntry is a contact-directory record.
type DirectoryEntry struct {
	DisplayName string
	Emails      []DirectoryEmail
}

// PrimaryEmail returns the address flagged primary, or the first address,
// or "" when the entry has no emails.
func (e DirectoryEntry) PrimaryEmail() string {
	for _, em := range e.Emails {
		if em.Primary {
			return em.Value
		}
	}
	if len(e.Emails) > 0 {
		return e.Emails[0].Value
	}
	return ""
}

// Directory is the contact-directory lookup consumed by the Attendee
// Resolver.
type Directory interface {
	// FindByName fuzzy-matches directory entries by display name.
	FindByName(ctx context.Context, pattern string) ([]DirectoryEntry, error)

	// Self returns the requesting user's own directory entry.
	Self(ctx context.Context) (DirectoryEntry, error)
}

// ResolveAttendees fills in missing attendee emails from the contact
// directory and guarantees a host. For each attendee without an email the
// directory is queried by name; a primary address is preferred, else the
// first. Attendees that cannot be resolved are surfaced as unmet
// requirement leaves rather than silently dropped. When no attendee is
// flagged host, the requesting user's own directory entry is appended as
// host; failing to establish a host email is likewise an unmet
// requirement, not an error.
func ResolveAttendees(ctx context.Context, dir Directory, attendees []Attendee) ([]Attendee, []*Node, error) {
	resolved := make([]Attendee, 0, len(attendees)+1)
	var unmet []*Node

	for _, a := range attendees {
		if a.Email != "" {
			resolved = append(resolved, a)
			continue
		}
		if a.Name == "" {
			unmet = append(unmet, Leaf("attendees[].email", "What is the email address of the attendee?"))
			continue
		}

		entries, err := dir.FindByName(ctx, a.Name)
		if err != nil {
			return nil, nil, fmt.Errorf("directory lookup for %q: %w", a.Name, err)
		}

		email := ""
		for _, e := range entries {
			if email = e.PrimaryEmail(); email != "" {
				break
			}
		}
		if email == "" {
			unmet = append(unmet, Leaf("attendees[].email",
				fmt.Sprintf("I couldn't find %s in your contacts. What is their email address?", a.Name)))
			continue
		}

		a.Email = email
		resolved = append(resolved, a)
	}

	if !hasHost(resolved) {
		self, err := dir.Self(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("resolving host identity: %w", err)
		}
		host := Attendee{Name: self.DisplayName, Email: self.PrimaryEmail(), Host: true}
		if host.Email == "" {
			unmet = append(unmet, Leaf("hostEmail", "Which email address should host the meeting?"))
		} else {
			resolved = append(resolved, host)
		}
	}

	return resolved, unmet, nil
}

func hasHost(attendees []Attendee) bool {
	for _, a := range attendees {
		if a.Host && a.Email != "" {
			return true
		}
	}
	return false
}

// HostOf returns the host attendee, used for reply-to addressing in
// outbound email.
func HostOf(attendees []Attendee) (Attendee, bool) {
	for _, a := range attendees {
		if a.Host {
			return a, true
		}
	}
	return Attendee{}, false
}
