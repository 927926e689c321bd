package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	apperrors "github.com/xiebiao/autoparts/pkg/errors"
)

// Transactor 直接执行fn,不开启真实事务
// 记录提交/回滚次数,便于断言事务边界
type Transactor struct {
	mu        sync.Mutex
	Commits   int
	Rollbacks int
}

func (t *Transactor) Transaction(ctx context.Context, fn func(txCtx context.Context) error) error {
	err := fn(ctx)
	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		t.Rollbacks++
	} else {
		t.Commits++
	}
	return err
}

// PublishedEvent 已发布的事件
type PublishedEvent struct {
	RoutingKey string
	Payload    interface{}
}

// Publisher 记录所有发布的事件
type Publisher struct {
	mu     sync.Mutex
	Events []PublishedEvent
	Err    error
}

func (p *Publisher) Publish(_ context.Context, routingKey string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, PublishedEvent{RoutingKey: routingKey, Payload: payload})
	return p.Err
}

// Keys 已发布事件的路由键
func (p *Publisher) Keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	keys := make([]string, len(p.Events))
	for i, e := range p.Events {
		keys[i] = e.RoutingKey
	}
	return keys
}

// CacheInvalidator 记录被失效的商品
type CacheInvalidator struct {
	mu          sync.Mutex
	Invalidated []uint
}

func (c *CacheInvalidator) Invalidate(_ context.Context, productIDs ...uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Invalidated = append(c.Invalidated, productIDs...)
}

// ProductCache 内存版商品缓存
type ProductCache struct {
	CacheInvalidator
	mu    sync.Mutex
	Data  map[uint][]byte
	Loads int
}

func NewProductCache() *ProductCache {
	return &ProductCache{Data: make(map[uint][]byte)}
}

func (c *ProductCache) Load(_ context.Context, productID uint) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Loads++
	data, ok := c.Data[productID]
	return data, ok
}

func (c *ProductCache) Store(_ context.Context, productID uint, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Data[productID] = data
}

func (c *ProductCache) Invalidate(ctx context.Context, productIDs ...uint) {
	c.mu.Lock()
	for _, id := range productIDs {
		delete(c.Data, id)
	}
	c.mu.Unlock()
	c.CacheInvalidator.Invalidate(ctx, productIDs...)
}

// SessionStore 内存版会话存储
type SessionStore struct {
	mu        sync.Mutex
	Sessions  map[uint]map[string]interface{}
	Blacklist map[string]time.Duration
	SaveErr   error
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		Sessions:  make(map[uint]map[string]interface{}),
		Blacklist: make(map[string]time.Duration),
	}
}

func (s *SessionStore) SaveSession(_ context.Context, userID uint, data map[string]interface{}, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.Sessions[userID] = data
	return nil
}

func (s *SessionStore) GetSession(_ context.Context, userID uint) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.Sessions[userID]
	if !ok {
		return nil, apperrors.ErrUnauthorized
	}
	out := make(map[string]string, len(data))
	for k, v := range data {
		out[k] = fmt.Sprint(v)
	}
	return out, nil
}

func (s *SessionStore) DeleteSession(_ context.Context, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Sessions, userID)
	return nil
}

func (s *SessionStore) AddToBlacklist(_ context.Context, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Blacklist[token] = ttl
	return nil
}

func (s *SessionStore) IsInBlacklist(_ context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.Blacklist[token]
	return ok, nil
}
