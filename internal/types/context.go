package types

type contextKey string

// UserIDKey holds the authenticated user's id in a request context.
const UserIDKey contextKey = "user_id"
