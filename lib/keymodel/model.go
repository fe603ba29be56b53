package keymodel

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lni/dragonboat/v4/logger"
	"github.com/zxliu/RedisDesktopManager/lib/events"
	"github.com/zxliu/RedisDesktopManager/rpc/client"
	"github.com/zxliu/RedisDesktopManager/rpc/common"
)

var (
	Logger = logger.GetLogger(common.LoggerKeyModel)
)

// baseModel holds the state shared by all key types. The mutex guards the
// key name, TTL, row count and row cache and is never held while a command
// is executed.
type baseModel struct {
	conn     client.ICommandRunner
	db       int
	keyType  TypeTag
	columns  []string
	countCmd string
	scope    common.Scope

	mu       sync.RWMutex
	key      string
	ttl      int64
	rowCount int
	cache    rowCache

	// rowCount came from the server or a complete load, not only from a loaded prefix
	countKnown bool

	// serializes loaders so pages are appended in order
	loadMu sync.Mutex

	removed atomic.Bool
	bus     *events.Bus[Event]
}

func newBaseModel(conn client.ICommandRunner, key string, db int, ttl int64, keyType TypeTag, countCmd string, columns ...string) *baseModel {
	return &baseModel{
		conn:     conn,
		db:       db,
		keyType:  keyType,
		columns:  columns,
		countCmd: countCmd,
		scope:    common.NewScope(),
		key:      key,
		ttl:      ttl,
		bus:      events.NewBus[Event](),
	}
}

// --------------------------------------------------------------------------
// Cache-only Reads
// --------------------------------------------------------------------------

func (m *baseModel) KeyName() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.key
}

func (m *baseModel) Type() TypeTag {
	return m.keyType
}

func (m *baseModel) TTL() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ttl
}

func (m *baseModel) DBIndex() int {
	return m.db
}

func (m *baseModel) ColumnNames() []string {
	return append([]string(nil), m.columns...)
}

func (m *baseModel) RowsCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rowCount
}

func (m *baseModel) IsRowLoaded(i int) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cache.loaded(i)
}

func (m *baseModel) Row(i int) (Row, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	row, ok := m.cache.get(i)
	if !ok {
		return nil, false
	}
	return row.clone(), true
}

func (m *baseModel) IsRemoved() bool {
	return m.removed.Load()
}

// --------------------------------------------------------------------------
// Row Count and Cache
// --------------------------------------------------------------------------

// LoadRowCount issues the count command of the key type. Keys without one
// always have a single row.
func (m *baseModel) LoadRowCount(ctx context.Context) error {
	count := int64(1)
	if m.countCmd != "" {
		n, err := m.execInt(ctx, m.countCmd, m.KeyName())
		if err != nil {
			return err
		}
		count = n
	}

	m.mu.Lock()
	m.rowCount = int(count)
	m.countKnown = true
	m.mu.Unlock()

	if count == 0 {
		// the key expired or was deleted by someone else
		m.markRemoved()
	}
	return nil
}

func (m *baseModel) ClearRowCache() {
	m.mu.Lock()
	m.cache.clear()
	m.mu.Unlock()
}

func (m *baseModel) Refresh(ctx context.Context) error {
	m.ClearRowCache()
	return m.LoadRowCount(ctx)
}

// cachedRow returns cached row i without copying it
func (m *baseModel) cachedRow(i int) (Row, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cache.get(i)
}

// replaceRow stores row at i if the cache still holds old there
func (m *baseModel) replaceRow(i int, old, row Row) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if current, ok := m.cache.get(i); ok && sameRow(current, old) {
		m.cache.replace(i, row.clone())
	}
}

// dropRow removes row i from the cache and decrements the row count. If the
// row count is known and no rows are left the key is gone and Removed is fired.
func (m *baseModel) dropRow(i int) {
	m.mu.Lock()
	m.cache.removeAt(i)
	if m.rowCount > 0 {
		m.rowCount--
	}
	empty := m.countKnown && m.rowCount == 0
	m.mu.Unlock()

	if empty {
		m.markRemoved()
	}
}

// markRemoved sets the removed flag and fires Removed, only the first call has an effect
func (m *baseModel) markRemoved() {
	if !m.removed.CompareAndSwap(false, true) {
		return
	}
	Logger.Debugf("%s > removed", m.KeyName())
	m.bus.Publish(Event{Type: EventRemoved, Key: m.KeyName(), Time: time.Now()})
}

// checkUsable fails mutations of a removed model
func (m *baseModel) checkUsable() error {
	if m.removed.Load() {
		return ErrKeyRemoved
	}
	return nil
}

// --------------------------------------------------------------------------
// Loading
// --------------------------------------------------------------------------

// loadAsync runs load on its own goroutine, fires DataLoaded on success and
// reports the outcome to onDone
func (m *baseModel) loadAsync(ctx context.Context, onDone func(error), load func(ctx context.Context) error) {
	go func() {
		m.loadMu.Lock()
		err := load(ctx)
		m.loadMu.Unlock()

		if err != nil {
			Logger.Warningf("%s > failed to load rows: %v", m.KeyName(), err)
		} else {
			m.bus.Publish(Event{Type: EventDataLoaded, Key: m.KeyName(), Time: time.Now()})
		}
		if onDone != nil {
			onDone(err)
		}
	}()
}

// loadPaged extends the cached prefix up to end in pages of the configured size.
// fetch returns the rows in [from, to].
func (m *baseModel) loadPaged(ctx context.Context, end int, fetch func(ctx context.Context, from, to int) ([]Row, error)) error {
	config := m.conn.Config()
	pageSize := config.RowsPerPage()

	for {
		m.mu.RLock()
		from, gen := m.cache.len(), m.cache.gen
		m.mu.RUnlock()

		if from >= end {
			return nil
		}
		to := min(from+pageSize, end)

		rows, err := fetch(ctx, from, to-1)
		if err != nil {
			return err
		}

		short := len(rows) < to-from

		m.mu.Lock()
		appended := m.cache.appendAt(gen, from, rows)
		if appended {
			if short {
				// end of the collection
				m.rowCount = m.cache.len()
				m.countKnown = true
			} else {
				m.rowCount = max(m.rowCount, m.cache.len())
			}
		}
		m.mu.Unlock()

		if !appended {
			Logger.Debugf("%s > row cache changed while loading, page dropped", m.KeyName())
			return nil
		}
		if short {
			return nil
		}
	}
}

// loadAll fetches the whole collection once
func (m *baseModel) loadAll(ctx context.Context, fetch func(ctx context.Context) ([]Row, error)) error {
	m.mu.RLock()
	complete, gen := m.cache.complete, m.cache.gen
	m.mu.RUnlock()

	if complete {
		return nil
	}

	rows, err := fetch(ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	if m.cache.fill(gen, rows) {
		m.rowCount = len(rows)
		m.countKnown = true
	}
	m.mu.Unlock()
	return nil
}

// --------------------------------------------------------------------------
// Key Operations
// --------------------------------------------------------------------------

func (m *baseModel) SetKeyName(ctx context.Context, name string) error {
	if err := m.checkUsable(); err != nil {
		return err
	}
	if _, err := m.exec(ctx, "RENAME", m.KeyName(), name); err != nil {
		return err
	}

	m.mu.Lock()
	m.key = name
	m.mu.Unlock()
	return nil
}

func (m *baseModel) SetTTL(ctx context.Context, ttl int64) error {
	if err := m.checkUsable(); err != nil {
		return err
	}

	var err error
	if ttl <= 0 {
		_, err = m.exec(ctx, "PERSIST", m.KeyName())
		ttl = NoExpiry
	} else {
		_, err = m.exec(ctx, "EXPIRE", m.KeyName(), ttl)
	}
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.ttl = ttl
	m.mu.Unlock()
	return nil
}

func (m *baseModel) RemoveKey(ctx context.Context) error {
	if err := m.checkUsable(); err != nil {
		return err
	}
	if _, err := m.exec(ctx, "DEL", m.KeyName()); err != nil {
		return err
	}

	m.mu.Lock()
	m.rowCount = 0
	m.cache.clear()
	m.mu.Unlock()

	m.markRemoved()
	return nil
}

func (m *baseModel) Subscribe(buffer int) (<-chan Event, func()) {
	return m.bus.Subscribe(buffer)
}

func (m *baseModel) Close() {
	if n := m.conn.Cancel(m.scope); n > 0 {
		Logger.Debugf("%s > cancelled %d outstanding commands", m.KeyName(), n)
	}
	m.bus.Close()
}

// --------------------------------------------------------------------------
// Command Helpers
// --------------------------------------------------------------------------

// exec runs a command in the model's database and scope.
// Arguments may be strings, byte slices or integers.
func (m *baseModel) exec(ctx context.Context, parts ...interface{}) (*common.Response, error) {
	return client.ExecuteRaw(ctx, m.conn, m.db, commandArgs(parts...), common.WithScope(m.scope))
}

func (m *baseModel) execInt(ctx context.Context, parts ...interface{}) (int64, error) {
	resp, err := m.exec(ctx, parts...)
	if err != nil {
		return 0, err
	}
	n, err := resp.Value.Integer64()
	if err != nil {
		return 0, common.WrapError(common.RetCProtocolError, fmt.Sprintf("unexpected reply to %v", parts[0]), err)
	}
	return n, nil
}

func (m *baseModel) execValues(ctx context.Context, parts ...interface{}) ([][]byte, error) {
	resp, err := m.exec(ctx, parts...)
	if err != nil {
		return nil, err
	}
	values, err := resp.Value.ByteSlices()
	if err != nil {
		return nil, common.WrapError(common.RetCProtocolError, fmt.Sprintf("unexpected reply to %v", parts[0]), err)
	}
	return values, nil
}

func commandArgs(parts ...interface{}) [][]byte {
	args := make([][]byte, len(parts))
	for i, part := range parts {
		switch v := part.(type) {
		case []byte:
			args[i] = v
		case string:
			args[i] = []byte(v)
		case int:
			args[i] = []byte(strconv.Itoa(v))
		case int64:
			args[i] = []byte(strconv.FormatInt(v, 10))
		case float64:
			args[i] = []byte(strconv.FormatFloat(v, 'g', -1, 64))
		default:
			args[i] = []byte(fmt.Sprint(v))
		}
	}
	return args
}

func sameRow(a, b Row) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		other, ok := b[k]
		if !ok || string(v) != string(other) {
			return false
		}
	}
	return true
}

func conflict(key string, i int) error {
	return common.NewError(common.RetCConcurrentModification,
		fmt.Sprintf("row %d of %s already has changed, reload values and try again", i, key))
}

func notLoaded(i int) error {
	return common.NewError(common.RetCInvalidRow, fmt.Sprintf("row %d is not loaded", i))
}
