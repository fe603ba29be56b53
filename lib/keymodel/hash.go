package keymodel

import (
	"bytes"
	"context"

	"github.com/zxliu/RedisDesktopManager/rpc/client"
	"github.com/zxliu/RedisDesktopManager/rpc/common"
)

// HashModel is the model of a hash key, one row per field. Hashes have no
// paging primitive, all fields are fetched on first access.
type HashModel struct {
	*baseModel
}

// NewHashModel creates the model of the hash key without any round-trip
func NewHashModel(conn client.ICommandRunner, key string, db int, ttl int64) *HashModel {
	return &HashModel{baseModel: newBaseModel(conn, key, db, ttl, TypeHash, "HLEN", ColumnKey, ColumnValue)}
}

func (m *HashModel) IsMultiRow() bool {
	return true
}

func (m *HashModel) IsPartialLoadingSupported() bool {
	return false
}

// LoadRows fetches all fields with HGETALL, start and count are ignored
func (m *HashModel) LoadRows(ctx context.Context, start, count int, onDone func(err error)) {
	m.loadAsync(ctx, onDone, func(ctx context.Context) error {
		return m.loadAll(ctx, func(ctx context.Context) ([]Row, error) {
			values, err := m.execValues(ctx, "HGETALL", m.KeyName())
			if err != nil {
				return nil, err
			}
			if len(values)%2 != 0 {
				return nil, common.NewError(common.RetCProtocolError, "HGETALL returned an odd number of items")
			}
			rows := make([]Row, 0, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				rows = append(rows, Row{ColumnKey: values[i], ColumnValue: values[i+1]})
			}
			return rows, nil
		})
	})
}

// AddRow adds the field with HSETNX, an existing field is an invalid row
func (m *HashModel) AddRow(ctx context.Context, row Row) error {
	if err := validateRow(row, ColumnKey, ColumnValue); err != nil {
		return err
	}
	if err := m.checkUsable(); err != nil {
		return err
	}

	created, err := m.execInt(ctx, "HSETNX", m.KeyName(), row[ColumnKey], row.Value())
	if err != nil {
		return err
	}
	if created == 0 {
		return common.NewError(common.RetCInvalidRow, "field already exists in the hash")
	}
	return nil
}

// UpdateRow sets the value of row i. A renamed field is moved with HSET and HDEL.
func (m *HashModel) UpdateRow(ctx context.Context, i int, row Row) error {
	if err := validateRow(row, ColumnKey, ColumnValue); err != nil {
		return err
	}
	cached, ok := m.cachedRow(i)
	if !ok {
		return notLoaded(i)
	}
	if err := m.checkUsable(); err != nil {
		return err
	}

	if err := m.checkField(ctx, i, cached); err != nil {
		return err
	}

	renamed := !bytes.Equal(cached[ColumnKey], row[ColumnKey])
	if renamed {
		exists, err := m.execInt(ctx, "HEXISTS", m.KeyName(), row[ColumnKey])
		if err != nil {
			return err
		}
		if exists == 1 {
			return common.NewError(common.RetCInvalidRow, "field already exists in the hash")
		}
	}

	if _, err := m.exec(ctx, "HSET", m.KeyName(), row[ColumnKey], row.Value()); err != nil {
		return err
	}
	if renamed {
		if _, err := m.exec(ctx, "HDEL", m.KeyName(), cached[ColumnKey]); err != nil {
			return err
		}
	}

	m.replaceRow(i, cached, row)
	return nil
}

// RemoveRow removes the field of row i with HDEL
func (m *HashModel) RemoveRow(ctx context.Context, i int) error {
	cached, ok := m.cachedRow(i)
	if !ok {
		return nil
	}
	if err := m.checkUsable(); err != nil {
		return err
	}

	if err := m.checkField(ctx, i, cached); err != nil {
		return err
	}
	if _, err := m.exec(ctx, "HDEL", m.KeyName(), cached[ColumnKey]); err != nil {
		return err
	}

	m.dropRow(i)
	return nil
}

// checkField verifies the field still holds the cached value
func (m *HashModel) checkField(ctx context.Context, i int, cached Row) error {
	resp, err := m.exec(ctx, "HGET", m.KeyName(), cached[ColumnKey])
	if err != nil {
		return err
	}
	if resp.Value.IsNull() || !bytes.Equal(resp.Value.Str, cached.Value()) {
		return conflict(m.KeyName(), i)
	}
	return nil
}
