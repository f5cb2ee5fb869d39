package grant

import (
	"context"
	"fmt"
	"os"
)

// Permission is the result of probing access to a stored grant path.
type Permission int

const (
	// Granted means the path is accessible right now.
	Granted Permission = iota
	// Prompt means access needs to be requested before use.
	Prompt
	// Denied means access was refused.
	Denied
)

// Prober checks and requests permission for a grant path. Query must
// not prompt; Request may.
type Prober interface {
	Query(ctx context.Context, path string) (Permission, error)
	Request(ctx context.Context, path string) (Permission, error)
}

// OSProber probes by attempting to open the directory. Request is the
// same check: the operating system has no interactive re-grant.
type OSProber struct{}

func (OSProber) Query(ctx context.Context, path string) (Permission, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) || os.IsPermission(err) {
			return Denied, nil
		}
		return Denied, fmt.Errorf("grant: probe %s: %w", path, err)
	}
	f.Close()
	return Granted, nil
}

func (p OSProber) Request(ctx context.Context, path string) (Permission, error) {
	return p.Query(ctx, path)
}

// Restore replays the stored grant into a live root capability.
//
// No record → (nil, false, nil). With a record, permission is queried
// first and requested if not yet granted; a grant that still is not
// usable is cleared from the store and reported as absent. Store
// failures are returned as errors, never as "not granted".
func Restore(ctx context.Context, store *Store, prober Prober) (*os.Root, Record, bool, error) {
	rec, ok, err := store.Load()
	if err != nil {
		return nil, Record{}, false, err
	}
	if !ok {
		return nil, Record{}, false, nil
	}

	perm, err := prober.Query(ctx, rec.Path)
	if err != nil {
		return nil, Record{}, false, err
	}
	if perm != Granted {
		perm, err = prober.Request(ctx, rec.Path)
		if err != nil {
			return nil, Record{}, false, err
		}
	}
	if perm != Granted {
		if err := store.Clear(); err != nil {
			return nil, Record{}, false, err
		}
		return nil, Record{}, false, nil
	}

	root, err := os.OpenRoot(rec.Path)
	if err != nil {
		// The directory disappeared since the probe; the record is dead.
		if clearErr := store.Clear(); clearErr != nil {
			return nil, Record{}, false, clearErr
		}
		return nil, Record{}, false, nil
	}
	return root, rec, true, nil
}
