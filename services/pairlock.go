package services

import "sync"

// PairLocker 按参与者对串行化 find-or-create。
// 锁粒度是规范化后的 pair key，获取到决策结果即释放，不跨消息持久化持有。
type PairLocker struct {
	mu    sync.Mutex
	locks map[string]*pairLock
}

type pairLock struct {
	mu   sync.Mutex
	refs int
}

func NewPairLocker() *PairLocker {
	return &PairLocker{locks: make(map[string]*pairLock)}
}

// Lock 获取 key 对应的锁，返回对应的解锁函数。
// 无人等待时锁条目会被回收，map 不会随历史会话无限增长。
func (l *PairLocker) Lock(key string) (unlock func()) {
	l.mu.Lock()
	entry, ok := l.locks[key]
	if !ok {
		entry = &pairLock{}
		l.locks[key] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}
