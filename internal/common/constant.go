package common

// AuthorizationHeader carries the bearer token on API requests.
const AuthorizationHeader = "Authorization"

// BearerPrefix is the expected scheme prefix of the Authorization header.
const BearerPrefix = "Bearer "
