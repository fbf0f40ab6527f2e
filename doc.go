// Package accounts provides account registration, e-mail activation, and
// JWT-based login primitives backed by Bun repositories.
//
// Registration:
//   - RegisterProfileHandler persists a new, inactive Profile carrying a
//     random activation token, then dispatches the activation e-mail through
//     a Notifier. Delivery is governed by an explicit DeliveryPolicy so the
//     coupling between persistence and notification is a configuration
//     decision, never an accident.
//
// Activation:
//   - ActivateProfileHandler flips a Profile to active when presented with a
//     known activation token. Unknown and already-used tokens produce the
//     same answer so the endpoint cannot be used as a token oracle.
//
// Login:
//   - Auther verifies credentials through an IdentityProvider and mints a
//     signed token whose subject is the profile e-mail. Every failure mode
//     collapses into one opaque authentication error at the boundary while
//     internal diagnostics stay distinct in logs and activity events.
package accounts
