package qdrive

import (
	"context"
	"sync"
	"time"

	"QDrive-SDK/internal/helpers"
)

// ThrottleManager 全局限流管理器。收到429后整体暂停一段时间再恢复。
type ThrottleManager struct {
	sync.RWMutex
	isThrottled       bool
	throttleStartTime time.Time
	throttleDuration  time.Duration
	log               *helpers.QLogger
}

func NewThrottleManager(log *helpers.QLogger) *ThrottleManager {
	return &ThrottleManager{
		throttleDuration: 1 * time.Minute,
		log:              log,
	}
}

func (tm *ThrottleManager) IsThrottled() bool {
	tm.RLock()
	defer tm.RUnlock()

	if !tm.isThrottled {
		return false
	}

	// 暂停时间已过，视为恢复
	if time.Since(tm.throttleStartTime) >= tm.throttleDuration {
		return false
	}

	return true
}

// MarkThrottled 标记限流并启动恢复计时
func (tm *ThrottleManager) MarkThrottled() {
	tm.Lock()
	defer tm.Unlock()

	if tm.isThrottled && time.Since(tm.throttleStartTime) < tm.throttleDuration {
		return
	}

	tm.isThrottled = true
	tm.throttleStartTime = time.Now()

	tm.log.Warnf("rate limited by server, pausing requests for %v", tm.throttleDuration)

	go tm.startRecoveryTimer(tm.throttleStartTime)
}

func (tm *ThrottleManager) startRecoveryTimer(startedAt time.Time) {
	time.Sleep(tm.throttleDuration)

	tm.Lock()
	defer tm.Unlock()

	// 期间又被限流过则交给新的计时器
	if !tm.throttleStartTime.Equal(startedAt) {
		return
	}

	tm.isThrottled = false
	tm.log.Info("throttle window passed, resuming requests")
}

// WaitThrottleRecovery 等待限流恢复，当前未限流则立即返回
func (tm *ThrottleManager) WaitThrottleRecovery(ctx context.Context) {
	for {
		if !tm.IsThrottled() {
			return
		}

		ticker := time.NewTicker(500 * time.Millisecond)
		select {
		case <-ctx.Done():
			ticker.Stop()
			return
		case <-ticker.C:
			ticker.Stop()
		}
	}
}

// ClearThrottled 清除限流状态（仅用于测试）
func (tm *ThrottleManager) ClearThrottled() {
	tm.Lock()
	defer tm.Unlock()
	tm.isThrottled = false
}

type ThrottleStatus struct {
	IsThrottled   bool
	ElapsedTime   time.Duration
	RemainingTime time.Duration
}

func (tm *ThrottleManager) GetThrottleStatus() ThrottleStatus {
	tm.RLock()
	defer tm.RUnlock()

	status := ThrottleStatus{
		IsThrottled: tm.isThrottled,
	}

	if tm.isThrottled {
		elapsed := time.Since(tm.throttleStartTime)
		status.ElapsedTime = elapsed
		status.RemainingTime = tm.throttleDuration - elapsed
		if status.RemainingTime < 0 {
			status.RemainingTime = 0
		}
	}

	return status
}
