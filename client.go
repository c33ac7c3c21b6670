// Package firedoc is a client engine for Google Cloud Firestore over gRPC.
//
// It converts between a typed value model (package fvalue) and the wire
// value format, builds structured queries (package query), runs paginated
// reads, and executes batch and transactional writes while enforcing the
// store's client-side limits. Authentication is handled by a self-refreshing
// service-account token manager (package auth).
package firedoc

import (
	"context"
	"crypto/tls"

	pb "cloud.google.com/go/firestore/apiv1/firestorepb"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/metadata"

	"github.com/dmitrijs2005/firedoc/auth"
	"github.com/dmitrijs2005/firedoc/internal/logging"
)

const (
	// DefaultEndpoint is the public Firestore gRPC endpoint.
	DefaultEndpoint = "firestore.googleapis.com:443"
	// DefaultDatabaseID is the single database every project starts with.
	DefaultDatabaseID = "(default)"

	// MaxBatchWriteOps is the largest operation count accepted by one batch
	// write call. Larger batches trip "entity too large" server errors well
	// before the documented 500, so the cap is lower.
	MaxBatchWriteOps = 450
	// MaxTxWriteOps is the largest operation count committable in one
	// transaction.
	MaxTxWriteOps = 500
	// MaxBatchGetDocs is the largest path count per batch-get call.
	MaxBatchGetDocs = 1000

	defaultPageSize = int32(100)

	authorizationHeader = "authorization"
)

// Client is a Firestore client. It is safe for concurrent use; the only
// shared mutable state is the access token, which is swapped atomically.
type Client struct {
	projectID  string
	databaseID string
	conn       *grpc.ClientConn
	fs         pb.FirestoreClient
	tokens     *auth.TokenManager
	log        logging.Logger
}

// New connects to the Firestore endpoint over TLS, loads the service-account
// credentials and starts the token manager. The returned client owns the
// manager; Close stops it.
func New(ctx context.Context, cfg Config) (*Client, error) {
	cfg.LoadDefaults()
	if cfg.ProjectID == "" {
		return nil, validationErrorf("project id is required")
	}

	creds, err := auth.ReadServiceAccountFile(cfg.CredentialsFile, cfg.Scopes)
	if err != nil {
		return nil, err
	}
	tokens, err := auth.StartTokenManager(ctx, creds, auth.ManagerOptions{
		CheckInterval: cfg.TokenCheckInterval,
		RefreshLead:   cfg.TokenRefreshLead,
		Logger:        cfg.Logger,
	})
	if err != nil {
		return nil, err
	}

	c := &Client{
		projectID:  cfg.ProjectID,
		databaseID: cfg.DatabaseID,
		tokens:     tokens,
		log:        cfg.Logger,
	}

	conn, err := grpc.NewClient(cfg.Endpoint,
		grpc.WithTransportCredentials(credentials.NewTLS(&tls.Config{})),
		grpc.WithUnaryInterceptor(c.authUnaryInterceptor),
		grpc.WithStreamInterceptor(c.authStreamInterceptor),
	)
	if err != nil {
		tokens.Stop()
		return nil, err
	}
	c.conn = conn
	c.fs = pb.NewFirestoreClient(conn)
	return c, nil
}

// ForceTokenRefresh requests an immediate out-of-schedule credential
// refresh. It never blocks.
func (c *Client) ForceTokenRefresh() {
	if c.tokens != nil {
		c.tokens.ForceRefresh()
	}
}

// Close stops the token manager and closes the connection.
func (c *Client) Close() error {
	if c.tokens != nil {
		c.tokens.Stop()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// withBearerToken attaches the current access token to the outgoing
// metadata. Reading the token is lock-free and never triggers a refresh.
func (c *Client) withBearerToken(ctx context.Context) context.Context {
	tok := c.tokens.Token()
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy() // Copy handles the no-metadata case, returning an empty MD
	md.Set(authorizationHeader, "Bearer "+tok.AccessToken)
	return metadata.NewOutgoingContext(ctx, md)
}

func (c *Client) authUnaryInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	return invoker(c.withBearerToken(ctx), method, req, reply, cc, opts...)
}

func (c *Client) authStreamInterceptor(
	ctx context.Context,
	desc *grpc.StreamDesc,
	cc *grpc.ClientConn,
	method string,
	streamer grpc.Streamer,
	opts ...grpc.CallOption,
) (grpc.ClientStream, error) {
	return streamer(c.withBearerToken(ctx), desc, cc, method, opts...)
}
