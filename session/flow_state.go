package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// FlowStateStore 按聊天身份三元组存会话流程状态（邀请名单过滤、翻页模式等）
// 显式的 keyed store，进程重启不丢
type FlowStateStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewFlowStateStore(rdb *redis.Client, ttl time.Duration) *FlowStateStore {
	return &FlowStateStore{rdb: rdb, ttl: ttl}
}

// FlowState 一个用户当前所在的对话上下文
type FlowState struct {
	// true = 机器人刚问过出席问题，下一条纯文本 да/нет 按投票处理
	AwaitingAnswer bool `json:"awaiting,omitempty"`
}

func flowKey(senderID, groupID, workspaceID int64) string {
	return fmt.Sprintf("bot:flow:%d:%d:%d", workspaceID, groupID, senderID)
}

func (s *FlowStateStore) Get(ctx context.Context, senderID, groupID, workspaceID int64) (FlowState, error) {
	b, err := s.rdb.Get(ctx, flowKey(senderID, groupID, workspaceID)).Bytes()
	if err == redis.Nil {
		return FlowState{}, nil
	}
	if err != nil {
		return FlowState{}, err
	}
	var st FlowState
	if err := json.Unmarshal(b, &st); err != nil {
		return FlowState{}, err
	}
	return st, nil
}

func (s *FlowStateStore) Set(ctx context.Context, senderID, groupID, workspaceID int64, st FlowState) error {
	b, _ := json.Marshal(st)
	return s.rdb.Set(ctx, flowKey(senderID, groupID, workspaceID), b, s.ttl).Err()
}

func (s *FlowStateStore) Reset(ctx context.Context, senderID, groupID, workspaceID int64) error {
	return s.rdb.Del(ctx, flowKey(senderID, groupID, workspaceID)).Err()
}

// DispatchLock 每会议一把 SetNX 锁，挡住触发端点把并发 run 叠起来
// 锁是咨询性的：dispatcher 本身靠状态门控保持幂等，锁丢了也不会重发
type DispatchLock struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewDispatchLock(rdb *redis.Client, ttl time.Duration) *DispatchLock {
	return &DispatchLock{rdb: rdb, ttl: ttl}
}

func lockKey(meetingID uint) string { return fmt.Sprintf("bot:dispatch:lock:%d", meetingID) }

// TryAcquire true = 拿到锁；TTL 到期自动放掉，崩掉的 run 不会永久锁死
func (l *DispatchLock) TryAcquire(ctx context.Context, meetingID uint) (bool, error) {
	return l.rdb.SetNX(ctx, lockKey(meetingID), "1", l.ttl).Result()
}

func (l *DispatchLock) Release(ctx context.Context, meetingID uint) error {
	return l.rdb.Del(ctx, lockKey(meetingID)).Err()
}
