package tools

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vintcessun/AutoAt-Bot/autoat"
	"github.com/vintcessun/AutoAt-Bot/event"
	"github.com/vintcessun/AutoAt-Bot/utils"
	bolt "go.etcd.io/bbolt"
)

const (
	replyBucket          = "replies"
	maxMessageWriteRetry = 3
)

var ErrStoreClosed = errors.New("回复记录已关闭")

type replyInsertTask struct {
	Record   autoat.ReplyRecord
	Response chan error
}

// ReplyStore 自动回复记录，只追加
type ReplyStore struct {
	db         *bolt.DB
	insertChan chan replyInsertTask
	logger     utils.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// OpenReplyStore 在 cachePath 下打开 reply.db
func OpenReplyStore(cachePath string, logger utils.Logger) (*ReplyStore, error) {
	if err := os.MkdirAll(cachePath, 0755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(filepath.Join(cachePath, "reply.db"), 0600, nil)
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(replyBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &ReplyStore{
		db:         db,
		insertChan: make(chan replyInsertTask),
		logger:     logger.WithField("module", "reply_store"),
	}
	s.wg.Add(1)
	go s.startTaskInsertChan()
	return s, nil
}

func (s *ReplyStore) startTaskInsertChan() {
	defer s.wg.Done()
	for task := range s.insertChan {
		task.Response <- s.insert(task.Record)
	}
}

func (s *ReplyStore) insert(record autoat.ReplyRecord) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(replyBucket))
		if bucket == nil {
			return fmt.Errorf("不存在桶 %s", replyBucket)
		}

		seq, err := bucket.NextSequence()
		if err != nil {
			return err
		}

		data, err := json.Marshal(record)
		if err != nil {
			return err
		}

		return bucket.Put(uint64ToBytes(seq), data)
	})
}

// InsertReply 写入一条记录，失败时重试
func (s *ReplyStore) InsertReply(record autoat.ReplyRecord) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}

	var err error
	for range maxMessageWriteRetry {
		respCh := make(chan error)
		s.insertChan <- replyInsertTask{Record: record, Response: respCh}
		if err = <-respCh; err == nil {
			return nil
		}
		s.logger.Debugf("回复记录写入失败，重试 %+v: %v", record, err)
	}
	s.logger.Errorf("回复记录写入失败 %+v: %v", record, err)
	return err
}

var _ autoat.History = (*ReplyStore)(nil)

// Count 已记录的自动回复次数
func (s *ReplyStore) Count() (int, error) {
	var n int
	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(replyBucket))
		if bucket == nil {
			return fmt.Errorf("不存在桶 %s", replyBucket)
		}
		n = bucket.Stats().KeyN
		return nil
	})
	return n, err
}

// Recent 最近的 limit 条记录，新的在前
func (s *ReplyStore) Recent(limit int) ([]autoat.ReplyRecord, error) {
	var records []autoat.ReplyRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(replyBucket))
		if bucket == nil {
			return fmt.Errorf("不存在桶 %s", replyBucket)
		}
		c := bucket.Cursor()
		for k, v := c.Last(); k != nil && len(records) < limit; k, v = c.Prev() {
			var record autoat.ReplyRecord
			if err := json.Unmarshal(v, &record); err != nil {
				return err
			}
			records = append(records, record)
		}
		return nil
	})
	return records, err
}

// Subscribe 订阅自动回复事件并写入记录
func (s *ReplyStore) Subscribe(bus *event.EventBus) {
	bus.Subscribe(event.EventTypeAutoAtReplied, func(_ context.Context, ev event.Event) error {
		record, ok := ev.GetData().(autoat.ReplyRecord)
		if !ok {
			return fmt.Errorf("事件数据类型错误: %T", ev.GetData())
		}
		return s.InsertReply(record)
	})
}

// Close 停止写入任务并关闭数据库
func (s *ReplyStore) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.insertChan)
	s.mu.Unlock()

	s.wg.Wait()
	return s.db.Close()
}

func uint64ToBytes(id uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, id)
	return b
}
