package hours

import "context"

// Store persists the serialized session collection under one key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

// Observer is told about the full, sorted collection after every mutation.
type Observer interface {
	SessionsChanged(ctx context.Context, sessions []Session)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, sessions []Session)

// SessionsChanged calls f.
func (f ObserverFunc) SessionsChanged(ctx context.Context, sessions []Session) {
	f(ctx, sessions)
}
