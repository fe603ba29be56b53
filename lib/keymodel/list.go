package keymodel

import (
	"bytes"
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/zxliu/RedisDesktopManager/rpc/client"
)

// removedValuePrefix marks a list element that is about to be removed
const removedValuePrefix = "---VALUE_REMOVED_BY_RDM---"

// ListModel is the model of a list key. Rows are addressed by list index.
type ListModel struct {
	*baseModel
}

// NewListModel creates the model of the list key without any round-trip
func NewListModel(conn client.ICommandRunner, key string, db int, ttl int64) *ListModel {
	return &ListModel{baseModel: newBaseModel(conn, key, db, ttl, TypeList, "LLEN", ColumnValue)}
}

func (m *ListModel) IsMultiRow() bool {
	return true
}

func (m *ListModel) IsPartialLoadingSupported() bool {
	return true
}

// LoadRows fetches the missing part of [0, start+count) with LRANGE
func (m *ListModel) LoadRows(ctx context.Context, start, count int, onDone func(err error)) {
	m.loadAsync(ctx, onDone, func(ctx context.Context) error {
		return m.loadPaged(ctx, start+count, func(ctx context.Context, from, to int) ([]Row, error) {
			values, err := m.execValues(ctx, "LRANGE", m.KeyName(), from, to)
			if err != nil {
				return nil, err
			}
			rows := make([]Row, len(values))
			for i, v := range values {
				rows[i] = Row{ColumnValue: v}
			}
			return rows, nil
		})
	})
}

// AddRow prepends the value with LPUSH
func (m *ListModel) AddRow(ctx context.Context, row Row) error {
	if err := validateRow(row, ColumnValue); err != nil {
		return err
	}
	if err := m.checkUsable(); err != nil {
		return err
	}
	_, err := m.exec(ctx, "LPUSH", m.KeyName(), row.Value())
	return err
}

// UpdateRow sets element i with LSET after checking it still holds the cached value
func (m *ListModel) UpdateRow(ctx context.Context, i int, row Row) error {
	if err := validateRow(row, ColumnValue); err != nil {
		return err
	}
	cached, ok := m.cachedRow(i)
	if !ok {
		return notLoaded(i)
	}
	if err := m.checkUsable(); err != nil {
		return err
	}

	if err := m.checkPosition(ctx, i, cached.Value()); err != nil {
		return err
	}
	if _, err := m.exec(ctx, "LSET", m.KeyName(), i, row.Value()); err != nil {
		return err
	}

	m.replaceRow(i, cached, row)
	return nil
}

// RemoveRow removes element i. Lists can only remove by value, so the
// element is first overwritten with a unique marker which is then removed
// with LREM.
func (m *ListModel) RemoveRow(ctx context.Context, i int) error {
	cached, ok := m.cachedRow(i)
	if !ok {
		return nil
	}
	if err := m.checkUsable(); err != nil {
		return err
	}

	if err := m.checkPosition(ctx, i, cached.Value()); err != nil {
		return err
	}

	marker := removedValuePrefix + ulid.Make().String()
	if _, err := m.exec(ctx, "LSET", m.KeyName(), i, marker); err != nil {
		return err
	}
	if _, err := m.exec(ctx, "LREM", m.KeyName(), 0, marker); err != nil {
		return err
	}

	m.dropRow(i)
	return nil
}

// checkPosition fetches element i and compares it with the cached value
func (m *ListModel) checkPosition(ctx context.Context, i int, cached []byte) error {
	current, err := m.execValues(ctx, "LRANGE", m.KeyName(), i, i)
	if err != nil {
		return err
	}
	if len(current) != 1 || !bytes.Equal(current[0], cached) {
		return conflict(m.KeyName(), i)
	}
	return nil
}
