// Package search is the SQLite-backed persistence layer: an embedding
// index over scheduled events (with a separate training index for events
// that carried explicit priority or preferences), stored reminders, and
// recorded time preferences. Lookup is a linear cosine scan, which is
// plenty for a personal calendar's worth of events.
package search
