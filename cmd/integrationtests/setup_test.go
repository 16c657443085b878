package integrationtests

import (
	"bytes"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"lotmarket/internal/auction"
	"lotmarket/internal/gateway"
	"lotmarket/internal/models"
	"lotmarket/internal/repository"
	"lotmarket/internal/server"
	"lotmarket/internal/session"
	"lotmarket/internal/storage"
	"lotmarket/services/auction/command"
)

const testPassword = "password123"

// client bundles a full client stack pointed at the test server. Each
// client has its own session store, so tests can run several signed-in
// profiles against the same marketplace.
type client struct {
	commands *command.Commands
	service  *auction.Service
	sessions *session.Store
	out      *bytes.Buffer
}

// SetupTestServer starts the dev API server with an empty in-memory
// marketplace for integration testing.
func SetupTestServer(t *testing.T) (*httptest.Server, *repository.MemoryRepo) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	repo := repository.NewMemoryRepo()
	router := server.SetupRouter(repo, server.DefaultTokenConfig("integration-secret"))

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, repo
}

// NewClient builds the client stack against the given server
func NewClient(t *testing.T, srv *httptest.Server) *client {
	t.Helper()

	sessions := session.NewStore(storage.NewMemoryStore())
	gw := gateway.New(srv.URL, sessions)
	service := auction.NewService(gw)
	out := &bytes.Buffer{}

	return &client{
		commands: command.New(service, sessions, out),
		service:  service,
		sessions: sessions,
		out:      out,
	}
}

// SignUp registers a profile and signs the client in
func SignUp(t *testing.T, c *client, name string) {
	t.Helper()

	email := name + "@stud.noroff.no"
	require.NoError(t, c.commands.Register(name, email, testPassword))
	require.NoError(t, c.commands.Login(email, testPassword))
	require.True(t, c.sessions.Authenticated())
}

// CreateListing creates a listing through the client API and returns it
func CreateListing(t *testing.T, c *client, title string, endsIn time.Duration) models.Listing {
	t.Helper()

	listing, err := c.service.CreateListing(auction.ListingInput{
		Title:  title,
		EndsAt: time.Now().Add(endsIn).UTC(),
	}, c.sessions.AuthToken())
	require.NoError(t, err)
	require.NotEmpty(t, listing.ID)
	return listing
}
