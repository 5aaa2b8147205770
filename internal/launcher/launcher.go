// Package launcher hands URIs to the desktop's default handler.
package launcher

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/godbus/dbus/v5"

	"github.com/0xADE/ade-steam-search/internal/search"
)

const (
	portalDest    = "org.freedesktop.portal.Desktop"
	portalPath    = dbus.ObjectPath("/org/freedesktop/portal/desktop")
	portalOpenURI = "org.freedesktop.portal.OpenURI.OpenURI"
	defaultOpener = "xdg-open"
	kindPortal    = "portal"
	kindCommand   = "xdg-open"
)

// Portal opens URIs through the XDG desktop portal on the session bus.
type Portal struct {
	conn *dbus.Conn
}

// NewPortal returns a launcher using conn, a session bus connection.
func NewPortal(conn *dbus.Conn) *Portal {
	return &Portal{conn: conn}
}

// Launch implements search.Launcher.
func (p *Portal) Launch(ctx context.Context, uri string) error {
	obj := p.conn.Object(portalDest, portalPath)
	var handle dbus.ObjectPath
	call := obj.CallWithContext(ctx, portalOpenURI, 0, "", uri, map[string]dbus.Variant{})
	if call.Err != nil {
		return fmt.Errorf("portal OpenURI %s: %w", uri, call.Err)
	}
	if err := call.Store(&handle); err != nil {
		return fmt.Errorf("portal OpenURI %s: %w", uri, err)
	}
	slog.Debug("portal accepted launch request", "uri", uri, "request", handle)
	return nil
}

// Command opens URIs by spawning an opener program such as xdg-open.
type Command struct {
	Program string
}

// NewCommand returns a launcher running program, or xdg-open when empty.
func NewCommand(program string) *Command {
	if program == "" {
		program = defaultOpener
	}
	return &Command{Program: program}
}

// Launch implements search.Launcher. The opener runs detached from ctx and
// is reaped in the background.
func (c *Command) Launch(_ context.Context, uri string) error {
	cmd := exec.Command(c.Program, uri)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", c.Program, err)
	}

	pid := cmd.Process.Pid
	slog.Debug("opener started", "program", c.Program, "uri", uri, "pid", pid)
	go func() {
		if err := cmd.Wait(); err != nil {
			slog.Warn("opener exited with error", "program", c.Program, "uri", uri, "pid", pid, "error", err)
		}
	}()
	return nil
}

// New selects a launcher by kind: "portal" (needs conn) or "xdg-open",
// which runs opener.
func New(kind, opener string, conn *dbus.Conn) (search.Launcher, error) {
	switch kind {
	case kindPortal:
		if conn == nil {
			return nil, fmt.Errorf("portal launcher needs a session bus connection")
		}
		return NewPortal(conn), nil
	case kindCommand:
		return NewCommand(opener), nil
	default:
		return nil, fmt.Errorf("unknown launcher %q", kind)
	}
}
