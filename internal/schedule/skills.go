package schedule

// Requirement specifications per skill, built once at startup. The trees
// are declarative: the evaluator in requirement.go is the only code that
// walks them.

// blockTimeSpec: blocking off time needs a title, a duration and a
// resolvable start; the timezone comes from a UI picker when the chat
// never mentioned one.
var blockTimeSpec = &Spec{
	Required: []*Node{
		Leaf("title", "What should I call this time block?"),
		Leaf("duration", "How long should I block off?"),
	},
	Optional: []*Node{
		Leaf("location", "Where will you be?"),
	},
	TemporalRequired: []*Node{
		Leaf("when", "When should I block off the time?"),
		FormLeaf("timezone", "Which timezone should I use?"),
	},
}

// meetingInviteSpec: an invite additionally needs at least one attendee
// with a resolvable email address.
var meetingInviteSpec = &Spec{
	Required: []*Node{
		Leaf("title", "What is the meeting about?"),
		Leaf("duration", "How long should the meeting be?"),
		And(
			Leaf("attendees", "Who should I invite?"),
			Leaf("attendees[].email", "What is the email address of the attendee?"),
		),
	},
	Optional: []*Node{
		Leaf("location", "Where should the meeting take place?"),
	},
	TemporalRequired: []*Node{
		Leaf("when", "When should the meeting happen?"),
		FormLeaf("timezone", "Which timezone should I use?"),
	},
}

// rescheduleSpec: moving an event needs a description of which event and a
// new time.
var rescheduleSpec = &Spec{
	Required: []*Node{
		Leaf("targetQuery", "Which event should I move?"),
	},
	TemporalRequired: []*Node{
		Leaf("when", "When should I move it to?"),
		FormLeaf("timezone", "Which timezone should I use?"),
	},
}

var skillSpecs = map[Skill]*Spec{
	SkillBlockTime:     blockTimeSpec,
	SkillMeetingInvite: meetingInviteSpec,
	SkillReschedule:    rescheduleSpec,
}

// SpecFor returns the requirement specification for a skill, or nil for an
// unknown skill.
func SpecFor(skill Skill) *Spec {
	return skillSpecs[skill]
}

// requiredNodes returns every node that must be satisfied before the
// finalize tail may run.
func (s *Spec) requiredNodes() []*Node {
	nodes := make([]*Node, 0, len(s.Required)+len(s.TemporalRequired))
	nodes = append(nodes, s.Required...)
	nodes = append(nodes, s.TemporalRequired...)
	return nodes
}
