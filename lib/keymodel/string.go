package keymodel

import (
	"bytes"
	"context"

	"github.com/zxliu/RedisDesktopManager/rpc/client"
	"github.com/zxliu/RedisDesktopManager/rpc/common"
)

// StringModel is the model of a string key, it always has a single row
type StringModel struct {
	*baseModel
}

// NewStringModel creates the model of the string key without any round-trip
func NewStringModel(conn client.ICommandRunner, key string, db int, ttl int64) *StringModel {
	m := &StringModel{baseModel: newBaseModel(conn, key, db, ttl, TypeString, "", ColumnValue)}
	m.rowCount = 1
	m.countKnown = true
	return m
}

func (m *StringModel) IsMultiRow() bool {
	return false
}

func (m *StringModel) IsPartialLoadingSupported() bool {
	return false
}

// LoadRows fetches the value with GET
func (m *StringModel) LoadRows(ctx context.Context, start, count int, onDone func(err error)) {
	m.loadAsync(ctx, onDone, func(ctx context.Context) error {
		return m.loadAll(ctx, func(ctx context.Context) ([]Row, error) {
			resp, err := m.exec(ctx, "GET", m.KeyName())
			if err != nil {
				return nil, err
			}
			if resp.Value.IsNull() {
				m.markRemoved()
				return []Row{}, nil
			}
			return []Row{{ColumnValue: resp.Value.Str}}, nil
		})
	})
}

// AddRow is not supported, a string has exactly one value
func (m *StringModel) AddRow(ctx context.Context, row Row) error {
	return common.NewError(common.RetCUnsupportedOperation, "rows cannot be added to a string key")
}

// UpdateRow overwrites the value with SET and restores the TTL that SET drops
func (m *StringModel) UpdateRow(ctx context.Context, i int, row Row) error {
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

	resp, err := m.exec(ctx, "GET", m.KeyName())
	if err != nil {
		return err
	}
	if resp.Value.IsNull() || !bytes.Equal(resp.Value.Str, cached.Value()) {
		return conflict(m.KeyName(), i)
	}

	if _, err := m.exec(ctx, "SET", m.KeyName(), row.Value()); err != nil {
		return err
	}
	if ttl := m.TTL(); ttl > 0 {
		if _, err := m.exec(ctx, "EXPIRE", m.KeyName(), ttl); err != nil {
			return err
		}
	}

	m.replaceRow(i, cached, row)
	return nil
}

// RemoveRow removes the key
func (m *StringModel) RemoveRow(ctx context.Context, i int) error {
	if i != 0 {
		return nil
	}
	return m.RemoveKey(ctx)
}
