// Package llm defines the provider abstraction used by every stage that
// talks to a language model, plus a Client wrapper that layers retry,
// rate limiting, caching and metrics on top of a raw provider.
package llm
