package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/simplebot/pkg/domain"
	"github.com/aretw0/simplebot/pkg/persistence/middleware"
	"github.com/aretw0/simplebot/pkg/session"
	"github.com/mitchellh/mapstructure"
)

// StateAdmin backs the `state` subcommands.
type StateAdmin struct {
	sessions *session.Manager
}

// NewStateAdmin opens an administration view over storage. Unless reveal is set,
// stored email addresses are masked.
func NewStateAdmin(storage *Storage, reveal bool, logger *slog.Logger) (*StateAdmin, error) {
	store := storage.Store
	if !reveal {
		mw, err := middleware.NewRedactionMiddleware(middleware.DefaultRedactPatterns)
		if err != nil {
			return nil, err
		}
		store = middleware.Chain(store, mw)
	}

	opts := []session.Option{session.WithLogger(logger)}
	if storage.Locker != nil {
		opts = append(opts, session.WithLocker(storage.Locker))
	}
	return &StateAdmin{sessions: session.NewManager(store, opts...)}, nil
}

// List prints every stored key.
func (a *StateAdmin) List(ctx context.Context, w io.Writer) error {
	keys, err := a.sessions.List(ctx)
	if err != nil {
		return fmt.Errorf("list state: %w", err)
	}
	if len(keys) == 0 {
		fmt.Fprintln(w, "No stored state found.")
		return nil
	}

	fmt.Fprintln(w, "Stored State:")
	for _, k := range keys {
		fmt.Fprintln(w, "- "+k)
	}
	return nil
}

// Inspect pretty prints the bag stored under key.
func (a *StateAdmin) Inspect(ctx context.Context, key string, w io.Writer) error {
	bag, err := a.sessions.Inspect(ctx, key)
	if err != nil {
		return fmt.Errorf("load %q: %w", key, err)
	}

	data, err := json.MarshalIndent(bag, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// Remove deletes every key, reporting each one. Missing keys are not errors.
func (a *StateAdmin) Remove(ctx context.Context, keys []string, w io.Writer) error {
	var errs []error
	for _, k := range keys {
		if err := a.sessions.Delete(ctx, k); err != nil {
			fmt.Fprintf(w, "Error removing '%s': %v\n", k, err)
			errs = append(errs, err)
			continue
		}
		fmt.Fprintf(w, "Removed '%s'\n", k)
	}
	return errors.Join(errs...)
}

// Run loads the dialog run persisted for a conversation key, nil when idle.
func (a *StateAdmin) Run(ctx context.Context, key, property string) (*domain.DialogRun, error) {
	bag, err := a.sessions.Inspect(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrStateNotFound) {
			return nil, nil
		}
		return nil, err
	}
	raw, ok := bag[property]
	if !ok {
		return nil, nil
	}

	var ds domain.DialogState
	if err := mapstructure.WeakDecode(raw, &ds); err != nil {
		return nil, fmt.Errorf("decode %s: %w", property, err)
	}
	return ds.Active, nil
}
