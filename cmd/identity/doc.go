// Package identity implements Gate's user persistence and credential
// collaborator.
//
// It owns the User model (id, username, email, role, active flag) and its
// stores. The token lifecycle subsystem only ever reads identities; it never
// writes them.
package identity
