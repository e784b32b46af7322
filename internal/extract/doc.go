// Package extract talks to an OpenAI-compatible API to turn chat
// messages into structured scheduling fields, compose invite emails,
// and produce embeddings for the event search index. It implements
// the schedule.Extractor port.
package extract
