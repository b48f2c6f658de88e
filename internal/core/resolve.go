package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/filingmap/internal/mapping"
)

// UnknownTableError is returned when a requested table number is not
// registered. Available lists the valid numbers for the caller to show.
type UnknownTableError struct {
	Requested string
	Available []int
}

func (e *UnknownTableError) Error() string {
	ids := make([]string, len(e.Available))
	for i, id := range e.Available {
		ids[i] = strconv.Itoa(id)
	}
	return fmt.Sprintf("unknown table %q; available tables: %s", e.Requested, strings.Join(ids, ", "))
}

func (r *Registry) unknown(id int) error {
	return &UnknownTableError{Requested: strconv.Itoa(id), Available: r.IDs()}
}

// ParseTableID converts a user-supplied table number. Anything that is not
// a registered number yields an *UnknownTableError.
func (r *Registry) ParseTableID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, &UnknownTableError{Requested: s, Available: r.IDs()}
	}
	if _, ok := r.Get(id); !ok {
		return 0, &UnknownTableError{Requested: s, Available: r.IDs()}
	}
	return id, nil
}

// ResolveTable resolves one table against store.
func (r *Registry) ResolveTable(id int, store mapping.Store) (TableResult, error) {
	def, ok := r.Get(id)
	if !ok {
		return TableResult{}, r.unknown(id)
	}
	return resolveDefinition(def, store)
}

// resolveDefinition converts a panic inside a store or template into the
// table's error.
func resolveDefinition(def TableDefinition, store mapping.Store) (res TableResult, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("table %d (%s): resolve panicked: %v", def.Info.ID, def.Info.Name, p)
		}
	}()

	data, err := mapping.Resolve(def.Template, def.Info.Strategy, store, mapping.WithPeriodLabels(def.Labels))
	if err != nil {
		return TableResult{}, fmt.Errorf("table %d (%s): %w", def.Info.ID, def.Info.Name, err)
	}
	return TableResult{
		TableName:   def.Info.Name,
		TableNumber: def.Info.ID,
		Data:        data,
	}, nil
}

// BatchEntry is the outcome of one table in a batch: either Result or Err
// is set.
type BatchEntry struct {
	Definition TableDefinition
	Result     TableResult
	Err        error
}

// Key returns the output key of the entry.
func (e BatchEntry) Key() string {
	if e.Err != nil {
		return e.Definition.ErrorKey()
	}
	return e.Definition.Key()
}

// BatchResult collects one entry per registered table, in table order.
type BatchResult struct {
	Entries []BatchEntry
}

// Failed returns the number of entries that carry an error.
func (b *BatchResult) Failed() int {
	n := 0
	for _, e := range b.Entries {
		if e.Err != nil {
			n++
		}
	}
	return n
}

// Entry returns the entry for a table number.
func (b *BatchResult) Entry(id int) (BatchEntry, bool) {
	for _, e := range b.Entries {
		if e.Definition.Info.ID == id {
			return e, true
		}
	}
	return BatchEntry{}, false
}

// MarshalJSON writes an object keyed by Key in table order. Successful
// tables map to their data tree, failed tables to the error string.
func (b *BatchResult) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range b.Entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key())
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		var val []byte
		if e.Err != nil {
			val, err = json.Marshal(e.Err.Error())
		} else {
			val, err = e.Result.Data.MarshalJSON()
		}
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ResolveAll resolves every registered table against store using up to
// workers goroutines (1 when workers < 1). A failing table is recorded as
// that table's error and never stops the others. Entry order and content
// do not depend on workers.
func (r *Registry) ResolveAll(ctx context.Context, store mapping.Store, workers int) *BatchResult {
	defs := r.All()
	entries := make([]BatchEntry, len(defs))

	if workers < 1 {
		workers = 1
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, def := range defs {
		g.Go(func() error {
			entries[i] = BatchEntry{Definition: def}
			if err := ctx.Err(); err != nil {
				entries[i].Err = err
				return nil
			}
			res, err := resolveDefinition(def, store)
			if err != nil {
				slog.Error("table resolution failed",
					"registry", r.name,
					"table", def.Info.ID,
					"error", err,
				)
				entries[i].Err = err
				return nil
			}
			entries[i].Result = res
			return nil
		})
	}
	_ = g.Wait()

	return &BatchResult{Entries: entries}
}

// FailAll records err against every registered table. It is used when the
// store for a document cannot be built, so the document still gets its
// full set of output keys.
func (r *Registry) FailAll(err error) *BatchResult {
	defs := r.All()
	entries := make([]BatchEntry, len(defs))
	for i, def := range defs {
		entries[i] = BatchEntry{Definition: def, Err: err}
	}
	return &BatchResult{Entries: entries}
}
