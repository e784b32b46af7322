package directory

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/people/v1"

	"github.com/schedwise/schedwise/internal/google"
)

// Client wraps the Google People service for contact lookup
type Client struct {
	svc     *people.Service
	account string // The account this client is associated with
}

// Account returns the account name this client is associated with
func (c *Client) Account() string {
	return c.account
}

// HasTokenForAccount checks if a valid OAuth token exists for the specified account
func HasTokenForAccount(account string) bool {
	return google.HasTokenForAccount(account)
}

// NewClientForAccount creates a new People client with OAuth2 authentication for a specific account
func NewClientForAccount(ctx context.Context, account string) (*Client, error) {
	client, err := google.GetHTTPClientForAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("no valid Google OAuth token found for account %s: %w", account, err)
	}

	svc, err := people.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create People service: %w", err)
	}

	return &Client{
		svc:     svc,
		account: account,
	}, nil
}

// NewClient creates a new People client for the default account
func NewClient(ctx context.Context) (*Client, error) {
	return NewClientForAccount(ctx, "default")
}

// EmailAddress is one address on a contact, with its primary flag.
type EmailAddress struct {
	Value   string
	Primary bool
}

// Contact represents a simplified contact entry
type Contact struct {
	ResourceName string
	DisplayName  string
	Emails       []EmailAddress
}

// SearchContacts searches for contacts across all sources (personal,
// directory, and other contacts) using the query string to filter results
func (c *Client) SearchContacts(ctx context.Context, query string, pageSize int) ([]*Contact, error) {
	if pageSize <= 0 {
		pageSize = 10
	}

	var allContacts []*Contact
	seen := make(map[string]bool) // Track seen resource names to avoid duplicates
	queryLower := strings.ToLower(query)

	add := func(person *people.Person) {
		contact := extractContact(person)
		if contact == nil || len(contact.Emails) == 0 {
			return
		}
		if seen[contact.ResourceName] {
			return
		}
		seen[contact.ResourceName] = true
		allContacts = append(allContacts, contact)
	}

	// 1. Search personal contacts
	resp, err := c.svc.People.SearchContacts().
		Context(ctx).
		Query(query).
		ReadMask("names,emailAddresses").
		PageSize(int64(pageSize * 2)).
		Do()
	if err == nil { // Don't fail if one source fails
		for _, result := range resp.Results {
			add(result.Person)
		}
	}

	// 2. Search other contacts (people the user has interacted with).
	// The API has no search parameter here, so filter pages locally.
	pageToken := ""
	for pages := 0; pages < 10; pages++ {
		otherReq := c.svc.OtherContacts.List().
			Context(ctx).
			ReadMask("names,emailAddresses").
			PageSize(100)
		if pageToken != "" {
			otherReq = otherReq.PageToken(pageToken)
		}

		otherResp, err := otherReq.Do()
		if err != nil {
			break
		}

		for _, person := range otherResp.OtherContacts {
			if contact := extractContact(person); contact != nil && matchesQuery(contact, queryLower) {
				add(person)
			}
		}

		pageToken = otherResp.NextPageToken
		if pageToken == "" || len(allContacts) >= pageSize*10 {
			break
		}
	}

	// 3. Search directory contacts (Workspace accounts only; fails
	// gracefully for consumer accounts)
	dirResp, err := c.svc.People.SearchDirectoryPeople().
		Context(ctx).
		Query(query).
		ReadMask("names,emailAddresses").
		Sources("DIRECTORY_SOURCE_TYPE_DOMAIN_PROFILE", "DIRECTORY_SOURCE_TYPE_DOMAIN_CONTACT").
		PageSize(int64(pageSize * 2)).
		Do()
	if err == nil {
		for _, person := range dirResp.People {
			add(person)
		}
	}

	if len(allContacts) > pageSize {
		allContacts = allContacts[:pageSize]
	}
	return allContacts, nil
}

// Me returns the requesting user's own profile entry.
func (c *Client) Me(ctx context.Context) (*Contact, error) {
	person, err := c.svc.People.Get("people/me").
		Context(ctx).
		PersonFields("names,emailAddresses").
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get own profile: %w", err)
	}

	contact := extractContact(person)
	if contact == nil {
		return nil, fmt.Errorf("own profile has no usable contact information")
	}
	return contact, nil
}

// extractContact extracts contact information from a Person object
func extractContact(person *people.Person) *Contact {
	if person == nil {
		return nil
	}

	contact := &Contact{
		ResourceName: person.ResourceName,
	}

	if len(person.Names) > 0 {
		contact.DisplayName = person.Names[0].DisplayName
	}

	for _, email := range person.EmailAddresses {
		if email.Value == "" {
			continue
		}
		primary := email.Metadata != nil && email.Metadata.Primary
		contact.Emails = append(contact.Emails, EmailAddress{
			Value:   email.Value,
			Primary: primary,
		})
	}

	// Skip contacts without any useful information
	if contact.DisplayName == "" && len(contact.Emails) == 0 {
		return nil
	}
	return contact
}

// matchesQuery checks if a contact matches the search query
func matchesQuery(contact *Contact, queryLower string) bool {
	if queryLower == "" {
		return true
	}

	if strings.Contains(strings.ToLower(contact.DisplayName), queryLower) {
		return true
	}
	for _, email := range contact.Emails {
		if strings.Contains(strings.ToLower(email.Value), queryLower) {
			return true
		}
	}
	return false
}
