package keymodel

import (
	"context"
	"fmt"

	"github.com/zxliu/RedisDesktopManager/rpc/client"
	"github.com/zxliu/RedisDesktopManager/rpc/common"
)

// New detects the type and TTL of key and returns the matching model with
// its row count loaded
func New(ctx context.Context, conn client.ICommandRunner, key string, db int) (KeyModel, error) {
	resp, err := client.Execute(ctx, conn, db, []string{"TYPE", key})
	if err != nil {
		return nil, err
	}
	tag := TypeTag(resp.Value.Text())

	if tag == TypeNone {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}

	ttl, err := client.ExecuteInt(ctx, conn, db, "TTL", key)
	if err != nil {
		return nil, err
	}
	if ttl < 0 {
		ttl = NoExpiry
	}

	model, err := NewOfType(conn, key, db, ttl, tag)
	if err != nil {
		return nil, err
	}

	if err := model.LoadRowCount(ctx); err != nil {
		model.Close()
		return nil, err
	}
	Logger.Debugf("%s > opened %s key with %d rows", key, tag, model.RowsCount())
	return model, nil
}

// NewOfType creates the model of a key with a known type without any
// round-trip. It can be used for keys that do not exist yet.
func NewOfType(conn client.ICommandRunner, key string, db int, ttl int64, tag TypeTag) (KeyModel, error) {
	switch tag {
	case TypeString:
		return NewStringModel(conn, key, db, ttl), nil
	case TypeList:
		return NewListModel(conn, key, db, ttl), nil
	case TypeSet:
		return NewSetModel(conn, key, db, ttl), nil
	case TypeZSet:
		return NewZSetModel(conn, key, db, ttl), nil
	case TypeHash:
		return NewHashModel(conn, key, db, ttl), nil
	default:
		return nil, common.NewError(common.RetCUnsupportedOperation, fmt.Sprintf("unsupported key type %q", tag))
	}
}

// compile time checks
var (
	_ KeyModel = (*ListModel)(nil)
	_ KeyModel = (*SetModel)(nil)
	_ KeyModel = (*ZSetModel)(nil)
	_ KeyModel = (*HashModel)(nil)
	_ KeyModel = (*StringModel)(nil)
)
