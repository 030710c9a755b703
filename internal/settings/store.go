// Package settings is the settings source for the routing engine.
//
// Routing configuration lives in a generic per-workspace key-value table. This
// package loads it, applies any active mode override and hands the engine an
// immutable routing.Settings snapshot per call.
package settings

import (
	"context"
	"errors"
	"strings"

	"phoneline/internal/routing"
)

var (
	ErrNotFound        = errors.New("settings: not found")
	ErrInvalidArgument = errors.New("settings: invalid argument")
)

// Store persists routing settings per workspace.
type Store interface {
	// Get returns ErrNotFound when the workspace has never saved settings.
	Get(ctx context.Context, workspaceID string) (routing.Settings, error)
	Put(ctx context.Context, workspaceID string, s routing.Settings) error
}

// LineDirectory resolves which workspace owns a dialed number.
type LineDirectory interface {
	WorkspaceForNumber(ctx context.Context, number string) (string, error)
}

// StaticLineDirectory maps numbers to workspaces from configuration, for
// single-tenant deployments without a workspace_lines table.
type StaticLineDirectory map[string]string

func (d StaticLineDirectory) WorkspaceForNumber(ctx context.Context, number string) (string, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return "", ErrInvalidArgument
	}
	ws, ok := d[number]
	if !ok || ws == "" {
		return "", ErrNotFound
	}
	return ws, nil
}
