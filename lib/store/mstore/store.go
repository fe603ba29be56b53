package mstore

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/zxliu/RedisDesktopManager/lib/resp"
	"github.com/zxliu/RedisDesktopManager/lib/store"
	"github.com/zxliu/RedisDesktopManager/rpc/common"
)

var Logger = logger.GetLogger(common.LoggerStore)

type storeImpl struct {
	numDBs int
	dbs    *xsync.MapOf[int, *database]

	commands atomic.Uint64
	expired  atomic.Uint64

	// garbage collection
	gcInterval time.Duration
	stopGC     chan struct{}
	closeOnce  sync.Once
	gcDone     chan struct{}
}

// NewMemoryStore creates a new in-memory store and starts its expiry sweep.
// Databases are created lazily on first access.
func NewMemoryStore(opts store.Options) store.IStore {
	defaults := store.DefaultOptions()
	if opts.Databases <= 0 {
		opts.Databases = defaults.Databases
	}
	if opts.GCIntervalMs <= 0 {
		opts.GCIntervalMs = defaults.GCIntervalMs
	}

	s := &storeImpl{
		numDBs:     opts.Databases,
		dbs:        xsync.NewMapOf[int, *database](),
		gcInterval: time.Duration(opts.GCIntervalMs) * time.Millisecond,
		stopGC:     make(chan struct{}),
		gcDone:     make(chan struct{}),
	}

	go s.garbageCollector()

	return s
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) Exec(dbIndex int, args [][]byte) resp.Value {
	if len(args) == 0 {
		return resp.Error("ERR empty command")
	}
	s.commands.Add(1)

	name := strings.ToLower(string(args[0]))
	cmd, ok := cmdTable[name]
	if !ok {
		return resp.Errorf("ERR unknown command '%s'", name)
	}
	if !validateArity(cmd.arity, args) {
		return resp.Errorf("ERR wrong number of arguments for '%s' command", name)
	}

	db, ok := s.database(dbIndex)
	if !ok {
		return resp.Error("ERR DB index is out of range")
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	return cmd.executor(db, args[1:])
}

func (s *storeImpl) Databases() int {
	return s.numDBs
}

func (s *storeImpl) GetInfo() store.Info {
	info := store.Info{
		Keys:     make(map[int]int),
		Commands: s.commands.Load(),
	}

	now := nowMs()
	s.dbs.Range(func(index int, db *database) bool {
		db.mu.Lock()
		s.expired.Add(uint64(db.sweep(now)))
		info.Keys[index] = len(db.data)
		db.mu.Unlock()
		return true
	})
	info.Expired = s.expired.Load()

	return info
}

func (s *storeImpl) Close() {
	s.closeOnce.Do(func() {
		close(s.stopGC)
		<-s.gcDone
	})
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// database returns the database with index, creating it on first access
func (s *storeImpl) database(index int) (*database, bool) {
	if index < 0 || index >= s.numDBs {
		return nil, false
	}
	db, _ := s.dbs.LoadOrCompute(index, func() *database {
		return newDatabase(index, func(n int) { s.expired.Add(uint64(n)) })
	})
	return db, true
}

// garbageCollector periodically removes keys whose TTL ran out
func (s *storeImpl) garbageCollector() {
	defer close(s.gcDone)

	ticker := time.NewTicker(s.gcInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopGC:
			return
		case <-ticker.C:
			now := nowMs()
			s.dbs.Range(func(index int, db *database) bool {
				db.mu.Lock()
				n := db.sweep(now)
				db.mu.Unlock()
				if n > 0 {
					s.expired.Add(uint64(n))
					Logger.Debugf("db %d: removed %d expired keys", index, n)
				}
				return true
			})
		}
	}
}
