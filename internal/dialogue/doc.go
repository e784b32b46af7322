// Package dialogue manages scheduling conversations: a registry of
// in-flight conversations and the controller that turns user utterances
// into assistant replies by driving the scheduling orchestrator.
//
// One conversation holds a transcript, the last reported status and an
// opaque continuation from the orchestrator. Each successful turn appends
// exactly one user turn and one assistant reply; a failed turn leaves the
// conversation untouched so it can simply be retried.
package dialogue
