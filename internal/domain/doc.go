// Package domain holds the core Q&A model: questions, answers, the status
// lifecycle that governs triage ordering, and the repository contracts the
// adapters implement. It has no I/O of its own.
package domain
