package provider

import (
	"context"
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
)

const iface = "org.gnome.Shell.SearchProvider2"

// Result is one search result as described by the provider.
type Result struct {
	ID          string
	Name        string
	Description string
	Icon        string
}

// Client calls a running search provider over the session bus
type Client struct {
	conn *dbus.Conn
	obj  dbus.BusObject
	mu   sync.Mutex
}

// NewClient connects to the session bus and targets the provider at
// busName/objectPath. Empty values fall back to the environment and defaults.
func NewClient(busName, objectPath string) (*Client, error) {
	busName, objectPath, err := resolveTarget(busName, objectPath)
	if err != nil {
		return nil, err
	}
	path := dbus.ObjectPath(objectPath)
	if !path.IsValid() {
		return nil, fmt.Errorf("invalid object path %q", objectPath)
	}

	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}

	return &Client{
		conn: conn,
		obj:  conn.Object(busName, path),
	}, nil
}

// Close closes the bus connection
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}

// Search returns the initial result set for terms.
func (c *Client) Search(ctx context.Context, terms []string) ([]string, error) {
	var ids []string
	if err := c.obj.CallWithContext(ctx, iface+".GetInitialResultSet", 0, terms).Store(&ids); err != nil {
		return nil, fmt.Errorf("GetInitialResultSet: %w", err)
	}
	return ids, nil
}

// Describe returns display metadata for ids.
func (c *Client) Describe(ctx context.Context, ids []string) ([]Result, error) {
	var raw []map[string]dbus.Variant
	if err := c.obj.CallWithContext(ctx, iface+".GetResultMetas", 0, ids).Store(&raw); err != nil {
		return nil, fmt.Errorf("GetResultMetas: %w", err)
	}
	return decodeMetas(raw), nil
}

// Activate asks the provider to launch id.
func (c *Client) Activate(ctx context.Context, id string, terms []string) error {
	if terms == nil {
		terms = []string{}
	}
	if call := c.obj.CallWithContext(ctx, iface+".ActivateResult", 0, id, terms, uint32(0)); call.Err != nil {
		return fmt.Errorf("ActivateResult: %w", call.Err)
	}
	return nil
}

func decodeMetas(raw []map[string]dbus.Variant) []Result {
	results := make([]Result, 0, len(raw))
	for _, m := range raw {
		results = append(results, Result{
			ID:          stringField(m, "id"),
			Name:        stringField(m, "name"),
			Description: stringField(m, "description"),
			Icon:        stringField(m, "gicon"),
		})
	}
	return results
}

func stringField(m map[string]dbus.Variant, key string) string {
	v, ok := m[key]
	if !ok {
		return ""
	}
	s, _ := v.Value().(string)
	return s
}
