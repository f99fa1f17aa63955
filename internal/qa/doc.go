// Package qa implements the question-and-answer core: anonymous submission,
// answering, admin status triage, and the ordered listing viewers see. Every
// mutation re-reads the stored question and broadcasts it in full, so viewers
// never need to merge partial updates.
package qa
