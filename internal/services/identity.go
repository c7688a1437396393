package services

// Identity is the fully-resolved caller identity supplied by the external
// authenticator. The core never authenticates; it only scopes by ownership
// and organization.
type Identity struct {
	ID         string
	Email      string
	GivenName  string
	FamilyName string
	Roles      []string
}

// OrgContext is the resolved organization scope for a caller.
type OrgContext struct {
	OrganizationID string
	Currency       string
}
