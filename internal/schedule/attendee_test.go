package schedule

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDirectory struct {
	entries map[string][]DirectoryEntry
	self    DirectoryEntry
	selfErr error
	findErr error
}

func (d *fakeDirectory) FindByName(_ context.Context, pattern string) ([]DirectoryEntry, error) {
	if d.findErr != nil {
		return nil, d.findErr
	}
	return d.entries[pattern], nil
}

func (d *fakeDirectory) Self(_ context.Context) (DirectoryEntry, error) {
	if d.selfErr != nil {
		return DirectoryEntry{}, d.selfErr
	}
	return d.self, nil
}

func TestResolveAttendees_PrefersPrimaryEmail(t *testing.T) {
	dir := &fakeDirectory{
		entries: map[string][]DirectoryEntry{
			"Sam": {
				{
					DisplayName: "Sam Rivera",
					Emails: []DirectoryEmail{
						{Value: "s@x.com"},
						{Value: "sam@x.com", Primary: true},
					},
				},
			},
		},
		self: DirectoryEntry{
			DisplayName: "Host User",
			Emails:      []DirectoryEmail{{Value: "host@x.com", Primary: true}},
		},
	}

	resolved, unmet, err := ResolveAttendees(context.Background(), dir, []Attendee{{Name: "Sam"}})
	require.NoError(t, err)
	assert.Empty(t, unmet)
	require.Len(t, resolved, 2)
	assert.Equal(t, "sam@x.com", resolved[0].Email)
	assert.True(t, resolved[1].Host, "host synthesized from self")
	assert.Equal(t, "host@x.com", resolved[1].Email)
}

func TestResolveAttendees_FirstEmailWhenNoPrimary(t *testing.T) {
	dir := &fakeDirectory{
		entries: map[string][]DirectoryEntry{
			"Kim": {
				{Emails: []DirectoryEmail{{Value: "kim@x.com"}, {Value: "k@x.com"}}},
			},
		},
		self: DirectoryEntry{Emails: []DirectoryEmail{{Value: "host@x.com", Primary: true}}},
	}

	resolved, unmet, err := ResolveAttendees(context.Background(), dir, []Attendee{{Name: "Kim"}})
	require.NoError(t, err)
	assert.Empty(t, unmet)
	assert.Equal(t, "kim@x.com", resolved[0].Email)
}

func TestResolveAttendees_UnresolvableBecomesUnmetLeaf(t *testing.T) {
	dir := &fakeDirectory{
		entries: map[string][]DirectoryEntry{},
		self:    DirectoryEntry{Emails: []DirectoryEmail{{Value: "host@x.com", Primary: true}}},
	}

	resolved, unmet, err := ResolveAttendees(context.Background(), dir, []Attendee{
		{Name: "Nobody"},
		{Name: "Known", Email: "known@x.com"},
	})
	require.NoError(t, err)
	require.Len(t, unmet, 1)
	assert.Equal(t, "attendees[].email", unmet[0].Key)
	assert.Contains(t, unmet[0].Prompt, "Nobody")

	// The attendee with an email is kept, not dropped with the sibling.
	require.Len(t, resolved, 2)
	assert.Equal(t, "known@x.com", resolved[0].Email)
	assert.True(t, resolved[1].Host)
}

func TestResolveAttendees_NamelessEmaillessAttendee(t *testing.T) {
	dir := &fakeDirectory{
		self: DirectoryEntry{Emails: []DirectoryEmail{{Value: "host@x.com", Primary: true}}},
	}

	_, unmet, err := ResolveAttendees(context.Background(), dir, []Attendee{{}})
	require.NoError(t, err)
	require.Len(t, unmet, 1)
	assert.Equal(t, "attendees[].email", unmet[0].Key)
}

func TestResolveAttendees_ExplicitHostNotReplaced(t *testing.T) {
	dir := &fakeDirectory{
		selfErr: errors.New("should not be called"),
	}

	resolved, unmet, err := ResolveAttendees(context.Background(), dir, []Attendee{
		{Name: "Me", Email: "me@x.com", Host: true},
	})
	require.NoError(t, err)
	assert.Empty(t, unmet)
	require.Len(t, resolved, 1)
	assert.True(t, resolved[0].Host)
}

func TestResolveAttendees_SelfWithoutEmailIsUnmetHost(t *testing.T) {
	dir := &fakeDirectory{
		self: DirectoryEntry{DisplayName: "Host User"},
	}

	resolved, unmet, err := ResolveAttendees(context.Background(), dir, nil)
	require.NoError(t, err)
	require.Len(t, unmet, 1)
	assert.Equal(t, "hostEmail", unmet[0].Key)
	assert.Empty(t, resolved)
}

func TestResolveAttendees_DirectoryErrorPropagates(t *testing.T) {
	dir := &fakeDirectory{findErr: errors.New("people api unavailable")}

	_, _, err := ResolveAttendees(context.Background(), dir, []Attendee{{Name: "Sam"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Sam")
}
