package kv

import (
	"context"
	"fmt"

	"github.com/alexedwards/scs/v2"
)

// Session keeps values in the visitor's scs session. The context passed to Get
// and Set must come from a request wrapped by SessionManager.LoadAndSave.
type Session struct {
	sm *scs.SessionManager
}

// NewSessionBackend returns a Backend whose stores live in scs sessions. The
// session cookie already identifies the visitor, so Scope ignores its argument.
func NewSessionBackend(sm *scs.SessionManager) Backend {
	s := &Session{sm: sm}
	return BackendFunc(func(string) Store { return s })
}

func (s *Session) Get(ctx context.Context, key string) (v string, ok bool, err error) {
	defer recoverUnloaded(&err)
	if !s.sm.Exists(ctx, key) {
		return "", false, nil
	}
	return s.sm.GetString(ctx, key), true, nil
}

func (s *Session) Set(ctx context.Context, key, value string) (err error) {
	defer recoverUnloaded(&err)
	s.sm.Put(ctx, key, value)
	return nil
}

// scs panics when the context carries no session data.
func recoverUnloaded(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%w: %v", ErrUnavailable, r)
	}
}
