package constants

// Pagination bounds for the project summaries listing.
const (
	MinPage         = 1
	DefaultPageSize = 6
	MaxPageSize     = 50
)

// ContextKeyIdentity is the gin context key holding the resolved caller
// identity set by the identity middleware.
const ContextKeyIdentity = "identity"
