package yamaha

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/strefethen/yamaha-hub-go/internal/yamaha/ync"
)

// MenuStatus fetches the hierarchical menu state for the current source.
func (s *Session) MenuStatus(ctx context.Context) (ync.MenuStatus, error) {
	src, cur, err := s.resolveSource(ctx, "")
	if err != nil {
		return ync.MenuStatus{}, err
	}
	if src == "" {
		return ync.MenuStatus{}, &MenuUnavailableError{Input: cur}
	}
	resp, err := s.client.Exec(ctx, "menu status", s.ctrlURL, ync.Get, "", ync.ListInfoGet(src))
	if err != nil {
		return ync.MenuStatus{}, err
	}
	return ync.ParseMenuStatus(resp)
}

// MenuJumpLine jumps the menu cursor to an absolute line number.
func (s *Session) MenuJumpLine(ctx context.Context, lineno int) error {
	src, cur, err := s.resolveSource(ctx, "")
	if err != nil {
		return err
	}
	if src == "" {
		return &MenuUnavailableError{Input: cur}
	}
	_, err = s.client.Exec(ctx, "menu jump", s.ctrlURL, ync.Put, "", ync.JumpLine(src, lineno))
	return err
}

// SupportedCursorActions returns the cursor actions the current source
// advertises.
func (s *Session) SupportedCursorActions(ctx context.Context) ([]ync.CursorAction, error) {
	src, _, err := s.resolveSource(ctx, "")
	if err != nil || src == "" {
		return nil, err
	}
	var actions []ync.CursorAction
	for _, name := range s.caps.SourceCursorActions[src] {
		actions = append(actions, ync.CursorAction(name))
	}
	return actions, nil
}

// MenuCursor issues a cursor action for the current source. The action must
// be part of the closed enumeration and advertised by the source; the
// command template depends on whether the source exposes List_Control or
// Cursor_Control.
func (s *Session) MenuCursor(ctx context.Context, action ync.CursorAction) error {
	if !action.Known() {
		return &ValidationError{Kind: "cursor action", Name: string(action)}
	}
	src, cur, err := s.resolveSource(ctx, "")
	if err != nil {
		return err
	}
	if src == "" {
		return &MenuUnavailableError{Input: cur}
	}

	var payload string
	switch {
	case s.caps.SupportsCommand(src, "List_Control", "Cursor"):
		payload = ync.ListCursor(src, action)
	case s.caps.SupportsCommand(src, "Cursor_Control", "Cursor"):
		payload = ync.CursorControl(src, action)
	default:
		return &MenuUnavailableError{Input: cur}
	}

	if !s.caps.SupportsCursorAction(src, action) {
		return &UnsupportedOperationError{Source: cur, Action: string(action)}
	}

	_, err = s.client.Exec(ctx, "menu cursor "+string(action), s.ctrlURL, ync.Put, "", payload)
	return err
}

// MenuReset returns the menu to its root layer by issuing Return while the
// reported layer is above 1. The loop is bounded by the traversal attempt
// budget.
func (s *Session) MenuReset(ctx context.Context) error {
	for attempt := 0; attempt < s.menuMaxAttempts; attempt++ {
		status, err := s.MenuStatus(ctx)
		if err != nil {
			return err
		}
		if status.Layer <= 1 {
			return nil
		}
		if err := s.MenuCursor(ctx, ync.CursorReturn); err != nil {
			return err
		}
	}
	return &MenuTraversalError{Path: "(root)", Attempts: s.menuMaxAttempts}
}

// PlayNetRadio navigates the NET RADIO menu to a '>'-separated station path,
// e.g. "Bookmarks>Internet>Radio Paradise".
func (s *Session) PlayNetRadio(ctx context.Context, path string) error {
	return s.TraverseMenu(ctx, InputNetRadio, path)
}

// PlayServer navigates the SERVER menu to a '>'-separated path,
// e.g. "Library>Playlists>GoodVibes".
func (s *Session) PlayServer(ctx context.Context, path string) error {
	return s.TraverseMenu(ctx, InputServer, path)
}

// TraverseMenu switches the zone to the given input, resets its menu to the
// root and walks the layer path. Each attempt polls the menu; a page that is
// not ready yet (the receiver is still fetching it from its backend) waits
// one retry delay. A visible line whose text equals the current layer's path
// segment is selected by its numeric line id; matching the final segment
// completes the traversal. Segments beyond the visible page are not scrolled
// for. Exhausting the attempt budget returns a MenuTraversalError carrying
// the last observed state.
func (s *Session) TraverseMenu(ctx context.Context, input, path string) error {
	layers := strings.Split(path, ">")

	if err := s.SetInput(ctx, input); err != nil {
		return err
	}
	src, err := s.caps.SourceForInput(input)
	if err != nil {
		return err
	}
	if err := s.MenuReset(ctx); err != nil {
		return err
	}

	var last *ync.MenuStatus
	for attempt := 1; attempt <= s.menuMaxAttempts; attempt++ {
		menu, err := s.MenuStatus(ctx)
		if err != nil {
			return err
		}
		last = &menu

		if !menu.Ready {
			if err := s.waitRetry(ctx); err != nil {
				return err
			}
			continue
		}

		if menu.Layer >= 1 && menu.Layer <= len(layers) {
			want := layers[menu.Layer-1]
			for _, line := range menu.Lines {
				if line.Text != want {
					continue
				}
				lineno, err := strconv.Atoi(strings.TrimPrefix(line.ID, "Line_"))
				if err != nil {
					continue
				}
				if _, err := s.client.Exec(ctx, "menu select", s.ctrlURL, ync.Put, "", ync.DirectSelLine(src, lineno)); err != nil {
					return err
				}
				if menu.Layer == len(layers) {
					return nil
				}
				break
			}
		}
	}

	return &MenuTraversalError{Path: path, Attempts: s.menuMaxAttempts, LastStatus: last}
}

func (s *Session) waitRetry(ctx context.Context) error {
	if s.menuRetryDelay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.menuRetryDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
