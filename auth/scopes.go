package auth

// Scope is a Google OAuth2 scope URL.
type Scope = string

const scopePrefix = "https://www.googleapis.com/auth/"

// Well-known Google Cloud scopes.
// Ref. https://developers.google.com/identity/protocols/oauth2/scopes
const (
	ScopeCloudPlatform         Scope = scopePrefix + "cloud-platform"
	ScopeCloudPlatformReadOnly Scope = scopePrefix + "cloud-platform.read-only"

	ScopeStorageFull      Scope = scopePrefix + "devstorage.full_control"
	ScopeStorageReadOnly  Scope = scopePrefix + "devstorage.read_only"
	ScopeStorageReadWrite Scope = scopePrefix + "devstorage.read_write"

	ScopePubSub    Scope = scopePrefix + "pubsub"
	ScopeCompute   Scope = scopePrefix + "compute"
	ScopeDatastore Scope = scopePrefix + "datastore"
	ScopeFirebase  Scope = scopePrefix + "firebase"

	ScopeLoggingAdmin Scope = scopePrefix + "logging.admin"
	ScopeLoggingRead  Scope = scopePrefix + "logging.read"
	ScopeLoggingWrite Scope = scopePrefix + "logging.write"
)

// DefaultScopes covers Firestore access.
func DefaultScopes() []Scope {
	return []Scope{ScopeCloudPlatform, ScopeDatastore}
}
