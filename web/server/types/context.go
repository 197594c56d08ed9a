package types

// ContextKey is a custom type for request context keys.
type ContextKey string

// AuthPermissionKey is the request context key holding the permission level of
// the authenticated API client.
const AuthPermissionKey ContextKey = "auth_permission"
