package directory

import (
	"testing"

	"google.golang.org/api/people/v1"
)

func TestExtractContact(t *testing.T) {
	// Nil person yields nil
	if extractContact(nil) != nil {
		t.Error("expected nil for nil person")
	}

	// Person with no usable data yields nil
	if extractContact(&people.Person{ResourceName: "people/1"}) != nil {
		t.Error("expected nil for empty person")
	}

	person := &people.Person{
		ResourceName: "people/2",
		Names: []*people.Name{
			{DisplayName: "Sam Rivera"},
		},
		EmailAddresses: []*people.EmailAddress{
			{Value: "s@x.com"},
			{Value: "sam@x.com", Metadata: &people.FieldMetadata{Primary: true}},
			{Value: ""},
		},
	}

	contact := extractContact(person)
	if contact == nil {
		t.Fatal("expected contact")
	}
	if contact.DisplayName != "Sam Rivera" {
		t.Errorf("DisplayName = %q", contact.DisplayName)
	}
	if len(contact.Emails) != 2 {
		t.Fatalf("expected 2 emails (empty value skipped), got %d", len(contact.Emails))
	}
	if !contact.Emails[1].Primary || contact.Emails[1].Value != "sam@x.com" {
		t.Errorf("primary flag not preserved: %+v", contact.Emails)
	}
}

func TestMatchesQuery(t *testing.T) {
	contact := &Contact{
		DisplayName: "Sam Rivera",
		Emails: []EmailAddress{
			{Value: "sam@example.com"},
		},
	}

	tests := []struct {
		query string
		want  bool
	}{
		{"", true},
		{"sam", true},
		{"rivera", true},
		{"example.com", true},
		{"kim", false},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			if got := matchesQuery(contact, tt.query); got != tt.want {
				t.Errorf("matchesQuery(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestToEntry(t *testing.T) {
	contact := &Contact{
		DisplayName: "Sam Rivera",
		Emails: []EmailAddress{
			{Value: "s@x.com"},
			{Value: "sam@x.com", Primary: true},
		},
	}

	entry := toEntry(contact)
	if entry.DisplayName != "Sam Rivera" {
		t.Errorf("DisplayName = %q", entry.DisplayName)
	}
	if entry.PrimaryEmail() != "sam@x.com" {
		t.Errorf("PrimaryEmail = %q, want sam@x.com", entry.PrimaryEmail())
	}
}
