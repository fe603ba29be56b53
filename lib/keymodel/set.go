package keymodel

import (
	"context"

	"github.com/zxliu/RedisDesktopManager/rpc/client"
	"github.com/zxliu/RedisDesktopManager/rpc/common"
)

// SetModel is the model of a set key. Sets have no paging primitive, all
// members are fetched on first access.
type SetModel struct {
	*baseModel
}

// NewSetModel creates the model of the set key without any round-trip
func NewSetModel(conn client.ICommandRunner, key string, db int, ttl int64) *SetModel {
	return &SetModel{baseModel: newBaseModel(conn, key, db, ttl, TypeSet, "SCARD", ColumnValue)}
}

func (m *SetModel) IsMultiRow() bool {
	return true
}

func (m *SetModel) IsPartialLoadingSupported() bool {
	return false
}

// LoadRows fetches all members with SMEMBERS, start and count are ignored
func (m *SetModel) LoadRows(ctx context.Context, start, count int, onDone func(err error)) {
	m.loadAsync(ctx, onDone, func(ctx context.Context) error {
		return m.loadAll(ctx, func(ctx context.Context) ([]Row, error) {
			values, err := m.execValues(ctx, "SMEMBERS", m.KeyName())
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

// AddRow adds the member with SADD
func (m *SetModel) AddRow(ctx context.Context, row Row) error {
	if err := validateRow(row, ColumnValue); err != nil {
		return err
	}
	if err := m.checkUsable(); err != nil {
		return err
	}
	_, err := m.exec(ctx, "SADD", m.KeyName(), row.Value())
	return err
}

// UpdateRow replaces the member of row i
func (m *SetModel) UpdateRow(ctx context.Context, i int, row Row) error {
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

	if err := m.checkMember(ctx, i, cached.Value()); err != nil {
		return err
	}
	if string(cached.Value()) == string(row.Value()) {
		return nil
	}

	exists, err := m.execInt(ctx, "SISMEMBER", m.KeyName(), row.Value())
	if err != nil {
		return err
	}
	if exists == 1 {
		return common.NewError(common.RetCInvalidRow, "value already exists in the set")
	}

	if _, err := m.exec(ctx, "SREM", m.KeyName(), cached.Value()); err != nil {
		return err
	}
	if _, err := m.exec(ctx, "SADD", m.KeyName(), row.Value()); err != nil {
		return err
	}

	m.replaceRow(i, cached, row)
	return nil
}

// RemoveRow removes the member of row i with SREM
func (m *SetModel) RemoveRow(ctx context.Context, i int) error {
	cached, ok := m.cachedRow(i)
	if !ok {
		return nil
	}
	if err := m.checkUsable(); err != nil {
		return err
	}

	if err := m.checkMember(ctx, i, cached.Value()); err != nil {
		return err
	}
	if _, err := m.exec(ctx, "SREM", m.KeyName(), cached.Value()); err != nil {
		return err
	}

	m.dropRow(i)
	return nil
}

// checkMember verifies the cached member is still in the set
func (m *SetModel) checkMember(ctx context.Context, i int, member []byte) error {
	exists, err := m.execInt(ctx, "SISMEMBER", m.KeyName(), member)
	if err != nil {
		return err
	}
	if exists != 1 {
		return conflict(m.KeyName(), i)
	}
	return nil
}
