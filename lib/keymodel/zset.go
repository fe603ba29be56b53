package keymodel

import (
	"context"
	"strconv"

	"github.com/zxliu/RedisDesktopManager/rpc/client"
	"github.com/zxliu/RedisDesktopManager/rpc/common"
)

// ZSetModel is the model of a sorted set key. Rows are ordered by score and
// carry the member and its score.
type ZSetModel struct {
	*baseModel
}

// NewZSetModel creates the model of the sorted set key without any round-trip
func NewZSetModel(conn client.ICommandRunner, key string, db int, ttl int64) *ZSetModel {
	return &ZSetModel{baseModel: newBaseModel(conn, key, db, ttl, TypeZSet, "ZCARD", ColumnValue, ColumnScore)}
}

func (m *ZSetModel) IsMultiRow() bool {
	return true
}

func (m *ZSetModel) IsPartialLoadingSupported() bool {
	return true
}

// LoadRows fetches the missing part of [0, start+count) with ZRANGE WITHSCORES
func (m *ZSetModel) LoadRows(ctx context.Context, start, count int, onDone func(err error)) {
	m.loadAsync(ctx, onDone, func(ctx context.Context) error {
		return m.loadPaged(ctx, start+count, func(ctx context.Context, from, to int) ([]Row, error) {
			return m.fetchRange(ctx, from, to)
		})
	})
}

func (m *ZSetModel) fetchRange(ctx context.Context, from, to int) ([]Row, error) {
	values, err := m.execValues(ctx, "ZRANGE", m.KeyName(), from, to, "WITHSCORES")
	if err != nil {
		return nil, err
	}
	if len(values)%2 != 0 {
		return nil, common.NewError(common.RetCProtocolError, "ZRANGE WITHSCORES returned an odd number of items")
	}
	rows := make([]Row, 0, len(values)/2)
	for i := 0; i < len(values); i += 2 {
		rows = append(rows, Row{ColumnValue: values[i], ColumnScore: values[i+1]})
	}
	return rows, nil
}

// AddRow adds the member with ZADD
func (m *ZSetModel) AddRow(ctx context.Context, row Row) error {
	score, err := validateScoredRow(row)
	if err != nil {
		return err
	}
	if err := m.checkUsable(); err != nil {
		return err
	}
	_, err = m.exec(ctx, "ZADD", m.KeyName(), score, row.Value())
	return err
}

// UpdateRow changes member and/or score of row i. A renamed member is
// removed and the new one added with the new score, renaming to an existing
// member fails with InvalidRow. The row cache is cleared afterwards.
func (m *ZSetModel) UpdateRow(ctx context.Context, i int, row Row) error {
	score, err := validateScoredRow(row)
	if err != nil {
		return err
	}
	cached, ok := m.cachedRow(i)
	if !ok {
		return notLoaded(i)
	}
	if err := m.checkUsable(); err != nil {
		return err
	}

	if err := m.checkPosition(ctx, i, cached); err != nil {
		return err
	}

	renamed := string(cached.Value()) != string(row.Value())
	if known, _ := cached.Score(); !renamed && known == score {
		return nil
	}

	if renamed {
		current, err := m.exec(ctx, "ZSCORE", m.KeyName(), row.Value())
		if err != nil {
			return err
		}
		if !current.Value.IsNull() {
			return common.NewError(common.RetCInvalidRow, "value already exists in the sorted set")
		}
		if _, err := m.exec(ctx, "ZREM", m.KeyName(), cached.Value()); err != nil {
			return err
		}
	}
	if _, err := m.exec(ctx, "ZADD", m.KeyName(), score, row.Value()); err != nil {
		return err
	}

	// the member may have moved to another rank
	m.ClearRowCache()
	return nil
}

// RemoveRow removes the member of row i with ZREM
func (m *ZSetModel) RemoveRow(ctx context.Context, i int) error {
	cached, ok := m.cachedRow(i)
	if !ok {
		return nil
	}
	if err := m.checkUsable(); err != nil {
		return err
	}

	if err := m.checkPosition(ctx, i, cached); err != nil {
		return err
	}
	if _, err := m.exec(ctx, "ZREM", m.KeyName(), cached.Value()); err != nil {
		return err
	}

	m.dropRow(i)
	return nil
}

// checkPosition fetches the member at rank i and compares member and score
func (m *ZSetModel) checkPosition(ctx context.Context, i int, cached Row) error {
	current, err := m.fetchRange(ctx, i, i)
	if err != nil {
		return err
	}
	if len(current) != 1 || string(current[0].Value()) != string(cached.Value()) {
		return conflict(m.KeyName(), i)
	}

	live, err1 := current[0].Score()
	known, err2 := cached.Score()
	if err1 != nil || err2 != nil || live != known {
		return conflict(m.KeyName(), i)
	}
	return nil
}

func validateScoredRow(row Row) (float64, error) {
	if err := validateRow(row, ColumnValue, ColumnScore); err != nil {
		return 0, err
	}
	score, err := strconv.ParseFloat(string(row[ColumnScore]), 64)
	if err != nil {
		return 0, common.WrapError(common.RetCInvalidRow, "score is not a number", err)
	}
	return score, nil
}
