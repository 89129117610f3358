// Package registrar implements get-or-create registration on top of a store-level unique
// constraint.
//
// A registration is one conditional insert that either stores the candidate record or is
// suppressed by the natural-key constraint. When the insert is suppressed the identifier of
// the existing row is returned instead, and the candidate's provisional identifier is
// discarded. The store's unique constraint is the only mutual exclusion: the engine holds
// no locks, caches no keys, and never retries on its own.
//
// Failures are classified once by a dialect-specific Classifier:
//
//   - ClassCollision: the natural-key constraint rejected the row. Resolved by lookup, never
//     returned to the caller.
//   - ClassValidation: another constraint rejected the row (unknown foreign key, not-null,
//     check, a different unique constraint). Matches entity.ErrValidationFailed.
//   - ClassTransport: connectivity loss, timeout, cancellation, open circuit. Matches
//     entity.ErrTransport; the caller may retry since registration is idempotent.
//   - ClassFatal: everything else. Matches ErrFatal.
package registrar
