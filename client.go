package supasaas

import (
	"errors"
	"net/url"
	"sync"

	supa "github.com/nedpals/supabase-go"
	storage_go "github.com/supabase-community/storage-go"

	"github.com/ashrobertsdragon/SupaSaaS/logging"
)

// ErrClientNotInitialized reports an operation attempted on a handle whose
// initialization failed.
var ErrClientNotInitialized = errors.New("supabase client not initialized")

// handle bundles the SDK clients built from one API key.
type handle struct {
	api     *supa.Client
	storage *storage_go.Client
}

// Client is the registry of SDK handles the facades draw from. The
// anonymous handle is always built; the privileged one only when the login
// carries a service role key. Handles are rebuilt in place by Refresh, so
// facades select a handle per call instead of holding one.
type Client struct {
	mu    sync.RWMutex
	login Login
	log   logging.Func

	anon    *handle
	service *handle
}

// NewClient builds the registry for login. Initialization failures are
// logged, not returned; the affected handle stays absent.
func NewClient(login Login, opts ...Option) *Client {
	s := newSettings(opts...)
	c := &Client{login: login, log: s.log}
	c.build()
	return c
}

func (c *Client) build() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.anon = c.initialize(c.login.Key)
	if c.anon != nil {
		c.log("info", "Default client initialized", nil)
	}
	c.service = nil
	if c.login.HasServiceRole() {
		c.service = c.initialize(c.login.ServiceRole)
		if c.service != nil {
			c.log("info", "Service role client initialized", nil)
		}
	}
}

func (c *Client) initialize(key string) *handle {
	if _, err := url.Parse(c.login.URL); err != nil {
		c.log("error", "initialize client", err)
		return nil
	}
	return &handle{
		api:     supa.CreateClient(c.login.URL, key),
		storage: storage_go.NewClient(c.login.URL+"/storage/v1", key, nil),
	}
}

// Select returns the API client for the requested tier. The privileged
// client is meant only for operations performed with no authenticated
// end-user, such as first-party inserts that bypass row-level
// authorization; everything else should stay on the anonymous client so
// the backend's row-level policies apply. Requesting the privileged client
// when no service role key is configured falls back to the anonymous one.
func (c *Client) Select(useServiceRole bool) *supa.Client {
	if h := c.selectHandle(useServiceRole); h != nil {
		return h.api
	}
	return nil
}

// SelectStorage mirrors Select for the storage client.
func (c *Client) SelectStorage(useServiceRole bool) *storage_go.Client {
	if h := c.selectHandle(useServiceRole); h != nil {
		return h.storage
	}
	return nil
}

func (c *Client) selectHandle(useServiceRole bool) *handle {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if useServiceRole && c.service != nil {
		return c.service
	}
	return c.anon
}

// Refresh reconstructs both handles from the stored login. The table
// facade calls it when the transport reports a closed connection.
func (c *Client) Refresh() {
	c.build()
}
