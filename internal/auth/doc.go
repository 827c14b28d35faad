// Package auth implements the authentication and authorization stack for the
// catalog: local users with bcrypt passwords, cookie sessions backed by the
// application database, CSRF protection for form posts, and the route gates
// (login required, role required, permission required) the views hang off.
//
// Authorization is two-level. Authentication answers "is this caller signed
// in"; permissions answer "may this caller do X". The renewal workflow is
// gated by the catalog.can_mark_returned permission, which librarians and
// admins hold.
package auth
