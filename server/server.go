package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/0xADE/ade-steam-search/internal/search"
)

// Interface is the GNOME Shell search provider interface served on the bus.
const Interface = "org.gnome.Shell.SearchProvider2"

const (
	introspectable = "org.freedesktop.DBus.Introspectable"
	launchTimeout  = 10 * time.Second
)

// Provider is the application logic behind the search provider interface.
type Provider interface {
	Match(terms []string) []string
	Describe(ids []string) ([]search.ResultMeta, error)
	Activate(ctx context.Context, id string, terms []string, timestamp uint32)
	LaunchSearch(ctx context.Context, terms []string, timestamp uint32)
}

// Server exports a Provider on the session bus under a well-known name.
type Server struct {
	conn     *dbus.Conn
	provider Provider
	busName  string
	path     dbus.ObjectPath
	running  bool
	mu       sync.RWMutex
}

// NewServer creates a server for provider. It does not touch the bus until Start.
func NewServer(conn *dbus.Conn, provider Provider, busName, objectPath string) (*Server, error) {
	path := dbus.ObjectPath(objectPath)
	if !path.IsValid() {
		return nil, fmt.Errorf("invalid object path %q", objectPath)
	}
	if busName == "" {
		return nil, fmt.Errorf("empty bus name")
	}
	return &Server{
		conn:     conn,
		provider: provider,
		busName:  busName,
		path:     path,
	}, nil
}

// Start exports the provider, claims the bus name and serves until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	if err := s.register(); err != nil {
		return err
	}

	slog.Info("search provider registered", "bus_name", s.busName, "object_path", s.path)

	<-ctx.Done()
	return ctx.Err()
}

func (s *Server) register() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.conn.Export(&shellProvider{provider: s.provider}, s.path, Interface); err != nil {
		return fmt.Errorf("failed to export %s: %w", Interface, err)
	}
	if err := s.conn.Export(introspect.NewIntrospectable(introspection()), s.path, introspectable); err != nil {
		s.unexport()
		return fmt.Errorf("failed to export introspection: %w", err)
	}

	reply, err := s.conn.RequestName(s.busName, dbus.NameFlagDoNotQueue)
	if err != nil {
		s.unexport()
		return fmt.Errorf("failed to request name %s: %w", s.busName, err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		s.unexport()
		return fmt.Errorf("bus name %s already taken", s.busName)
	}

	s.running = true
	return nil
}

func (s *Server) unexport() error {
	if err := s.conn.Export(nil, s.path, Interface); err != nil {
		return err
	}
	return s.conn.Export(nil, s.path, introspectable)
}

// Stop releases the bus name and withdraws the exported objects.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return nil
	}
	s.running = false

	if _, err := s.conn.ReleaseName(s.busName); err != nil {
		return fmt.Errorf("failed to release %s: %w", s.busName, err)
	}
	return s.unexport()
}

// shellProvider carries only the methods exported on the bus.
type shellProvider struct {
	provider Provider
}

func (p *shellProvider) GetInitialResultSet(terms []string) ([]string, *dbus.Error) {
	slog.Debug("initial result set", "terms", terms)
	return p.provider.Match(terms), nil
}

// The index is small, so a subsearch rescans it instead of narrowing previous.
func (p *shellProvider) GetSubsearchResultSet(previous []string, terms []string) ([]string, *dbus.Error) {
	slog.Debug("subsearch result set", "previous", len(previous), "terms", terms)
	return p.provider.Match(terms), nil
}

func (p *shellProvider) GetResultMetas(ids []string) ([]map[string]dbus.Variant, *dbus.Error) {
	metas, err := p.provider.Describe(ids)
	if err != nil {
		slog.Error("failed to describe results", "ids", ids, "error", err)
		return nil, dbus.MakeFailedError(err)
	}

	out := make([]map[string]dbus.Variant, 0, len(metas))
	for _, m := range metas {
		out = append(out, map[string]dbus.Variant{
			"id":          dbus.MakeVariant(m.ID),
			"name":        dbus.MakeVariant(m.Name),
			"description": dbus.MakeVariant(m.Description),
			"gicon":       dbus.MakeVariant(m.Icon),
		})
	}
	return out, nil
}

func (p *shellProvider) ActivateResult(id string, terms []string, timestamp uint32) *dbus.Error {
	ctx, cancel := context.WithTimeout(context.Background(), launchTimeout)
	defer cancel()
	p.provider.Activate(ctx, id, terms, timestamp)
	return nil
}

func (p *shellProvider) LaunchSearch(terms []string, timestamp uint32) *dbus.Error {
	ctx, cancel := context.WithTimeout(context.Background(), launchTimeout)
	defer cancel()
	p.provider.LaunchSearch(ctx, terms, timestamp)
	return nil
}

func introspection() *introspect.Node {
	in := func(name, typ string) introspect.Arg {
		return introspect.Arg{Name: name, Type: typ, Direction: "in"}
	}
	out := func(name, typ string) introspect.Arg {
		return introspect.Arg{Name: name, Type: typ, Direction: "out"}
	}

	return &introspect.Node{
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name: Interface,
				Methods: []introspect.Method{
					{Name: "GetInitialResultSet", Args: []introspect.Arg{in("terms", "as"), out("results", "as")}},
					{Name: "GetSubsearchResultSet", Args: []introspect.Arg{in("previous_results", "as"), in("terms", "as"), out("results", "as")}},
					{Name: "GetResultMetas", Args: []introspect.Arg{in("identifiers", "as"), out("metas", "aa{sv}")}},
					{Name: "ActivateResult", Args: []introspect.Arg{in("identifier", "s"), in("terms", "as"), in("timestamp", "u")}},
					{Name: "LaunchSearch", Args: []introspect.Arg{in("terms", "as"), in("timestamp", "u")}},
				},
			},
		},
	}
}
