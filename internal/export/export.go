// Package export bundles the persisted documents into a single backup file
// and wipes them on request.
package export

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/cory-johannsen/dexcompanion/internal/storage"
)

// ErrNothingToExport is returned when neither document exists.
var ErrNothingToExport = errors.New("no data to export")

// isoMillis matches the millisecond ISO-8601 form used in export dates.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// Documents names the two documents an export bundles.
type Documents struct {
	Collection string
	Profile    string
}

// Bundle reads both documents raw and returns
// {"appData": <collection or null>, "userData": <profile or null>, "exportDate": <ISO-8601>}.
//
// Precondition: docs must be non-nil.
// Postcondition: Returns the bundle bytes, ErrNothingToExport when neither
// document exists, or an error when a document cannot be read or is not JSON.
func Bundle(ctx context.Context, docs storage.Documents, names Documents, now time.Time) ([]byte, error) {
	app, err := loadRaw(ctx, docs, names.Collection)
	if err != nil {
		return nil, err
	}
	user, err := loadRaw(ctx, docs, names.Profile)
	if err != nil {
		return nil, err
	}
	if app == nil && user == nil {
		return nil, ErrNothingToExport
	}

	out := []byte(`{}`)
	out, err = sjson.SetRawBytes(out, "appData", orNull(app))
	if err != nil {
		return nil, fmt.Errorf("assembling export: %w", err)
	}
	out, err = sjson.SetRawBytes(out, "userData", orNull(user))
	if err != nil {
		return nil, fmt.Errorf("assembling export: %w", err)
	}
	out, err = sjson.SetBytes(out, "exportDate", now.UTC().Format(isoMillis))
	if err != nil {
		return nil, fmt.Errorf("assembling export: %w", err)
	}
	return out, nil
}

// Filename returns the dated backup file name for now.
func Filename(now time.Time) string {
	return "poke_companion_backup_" + now.UTC().Format(time.DateOnly) + ".json"
}

func loadRaw(ctx context.Context, docs storage.Documents, name string) ([]byte, error) {
	data, err := docs.Load(ctx, name)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %q for export: %w", name, err)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("document %q is not valid JSON", name)
	}
	return data, nil
}

func orNull(raw []byte) []byte {
	if raw == nil {
		return []byte("null")
	}
	return raw
}

// Clearer is a store whose document can be deleted and state reset.
type Clearer interface {
	Clear(ctx context.Context) error
}

// ClearAll deletes every store's document and resets its state. It attempts
// every store even when one fails.
//
// Postcondition: Returns nil when all stores cleared, otherwise the joined errors.
func ClearAll(ctx context.Context, stores ...Clearer) error {
	var errs []error
	for _, s := range stores {
		if err := s.Clear(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
