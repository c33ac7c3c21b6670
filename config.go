package firedoc

import (
	"time"

	"github.com/dmitrijs2005/firedoc/auth"
	"github.com/dmitrijs2005/firedoc/internal/logging"
)

// Logger is the structured logging interface accepted by the client.
type Logger = logging.Logger

// Config holds the settings needed to construct a Client.
//
// Fields:
//   - ProjectID: the Google Cloud project owning the database. Required.
//   - DatabaseID: the database within the project, "(default)" if empty.
//   - Endpoint: host:port of the Firestore gRPC endpoint.
//   - CredentialsFile: path to a service-account JSON key file. Required.
//   - Scopes: OAuth scopes requested for the access token.
//   - TokenCheckInterval / TokenRefreshLead: refresh schedule of the token
//     manager.
//   - Logger: structured logger; discarded if nil.
type Config struct {
	ProjectID          string
	DatabaseID         string
	Endpoint           string
	CredentialsFile    string
	Scopes             []auth.Scope
	TokenCheckInterval time.Duration
	TokenRefreshLead   time.Duration
	Logger             Logger
}

// LoadDefaults fills every optional field that is unset.
func (c *Config) LoadDefaults() {
	if c.DatabaseID == "" {
		c.DatabaseID = DefaultDatabaseID
	}
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	if len(c.Scopes) == 0 {
		c.Scopes = auth.DefaultScopes()
	}
	if c.TokenCheckInterval == 0 {
		c.TokenCheckInterval = auth.DefaultCheckInterval
	}
	if c.TokenRefreshLead == 0 {
		c.TokenRefreshLead = auth.DefaultRefreshLead
	}
	if c.Logger == nil {
		c.Logger = logging.NopLogger{}
	}
}
