package autoat

import (
	"errors"
	"sync"
)

var (
	ErrAlreadyAdmin   = errors.New("已经是管理员")
	ErrNotAdmin       = errors.New("不是管理员")
	ErrLastAdmin      = errors.New("不能移除最后一个管理员")
	ErrNoInitialAdmin = errors.New("管理员列表不能为空")
)

// AdminSet 管理员集合，只在内存中保存，重启后恢复为配置值。
// 集合始终至少有一个成员。
type AdminSet struct {
	mu  sync.RWMutex
	ids []string
}

// NewAdminSet 创建管理员集合，重复的账号只保留一个
func NewAdminSet(ids []string) (*AdminSet, error) {
	ids = dedupe(append([]string(nil), ids...))
	if len(ids) == 0 {
		return nil, ErrNoInitialAdmin
	}
	return &AdminSet{ids: ids}, nil
}

func (s *AdminSet) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOf(id) >= 0
}

func (s *AdminSet) Add(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(id) >= 0 {
		return ErrAlreadyAdmin
	}
	s.ids = append(s.ids, id)
	return nil
}

func (s *AdminSet) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return ErrNotAdmin
	}
	if len(s.ids) <= 1 {
		return ErrLastAdmin
	}
	s.ids = append(s.ids[:i:i], s.ids[i+1:]...)
	return nil
}

// List 返回按添加顺序排列的副本
func (s *AdminSet) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.ids...)
}

func (s *AdminSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}

func (s *AdminSet) indexOf(id string) int {
	for i, v := range s.ids {
		if v == id {
			return i
		}
	}
	return -1
}
