package common

const (
	// RedisSessionKeyPrefix prefixes the hash that stores one session.
	RedisSessionKeyPrefix = "session:"

	// Session hash fields. The names match the keys the web client keeps in local storage.
	SessionFieldAuthToken = "authToken"
	SessionFieldAuthName  = "authName"
	SessionFieldAuthEmail = "authEmail"
	SessionFieldCreatedAt = "createdAt"
	SessionFieldExpiresAt = "expiresAt"

	// SessionAuthTokenValue is the only value that marks a session as logged in.
	SessionAuthTokenValue = "1"

	// EntryPagePath is where unauthenticated users are sent.
	EntryPagePath = "/"

	// ContextKeySession is the echo context key holding *entity.Session.
	ContextKeySession = "session"

	// ContextKeySessionToken is the echo context key holding the raw session token.
	ContextKeySessionToken = "sessionToken"
)
