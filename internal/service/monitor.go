package service

import (
	"sync"
	"time"
)

// Monitor 监控服务，用于统计错误和下单吞吐
type Monitor struct {
	mu sync.RWMutex

	// 错误统计
	RedisErrors int64
	MQErrors    int64
	DBErrors    int64
	OrderErrors int64

	// 性能统计
	OrderRequests int64
	OrderSuccess  int64

	// 时间统计
	LastRedisError time.Time
	LastMQError    time.Time
	LastDBError    time.Time
	LastOrderTime  time.Time
}

var globalMonitor = &Monitor{}

// GetMonitor 获取全局监控实例
func GetMonitor() *Monitor {
	return globalMonitor
}

// RecordRedisError 记录Redis错误
func (m *Monitor) RecordRedisError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RedisErrors++
	m.LastRedisError = time.Now()
}

// RecordMQError 记录MQ错误
func (m *Monitor) RecordMQError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MQErrors++
	m.LastMQError = time.Now()
}

// RecordDBError 记录数据库错误
func (m *Monitor) RecordDBError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DBErrors++
	m.LastDBError = time.Now()
}

// RecordOrderRequest 记录下单请求
func (m *Monitor) RecordOrderRequest() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.OrderRequests++
	m.LastOrderTime = time.Now()
}

// RecordOrderSuccess 记录下单成功
func (m *Monitor) RecordOrderSuccess() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.OrderSuccess++
}

// RecordOrderError 记录下单失败
func (m *Monitor) RecordOrderError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.OrderErrors++
}

// GetStats 获取统计信息
func (m *Monitor) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	successRate := float64(0)
	if m.OrderRequests > 0 {
		successRate = float64(m.OrderSuccess) / float64(m.OrderRequests) * 100
	}

	return map[string]interface{}{
		"errors": map[string]interface{}{
			"redis": m.RedisErrors,
			"mq":    m.MQErrors,
			"db":    m.DBErrors,
			"order": m.OrderErrors,
		},
		"performance": map[string]interface{}{
			"order_requests":     m.OrderRequests,
			"order_success":      m.OrderSuccess,
			"order_success_rate": successRate,
		},
		"last_events": map[string]interface{}{
			"redis_error": m.LastRedisError,
			"mq_error":    m.LastMQError,
			"db_error":    m.LastDBError,
			"last_order":  m.LastOrderTime,
		},
	}
}

// Reset 重置统计（用于测试或定期清理）
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RedisErrors = 0
	m.MQErrors = 0
	m.DBErrors = 0
	m.OrderErrors = 0
	m.OrderRequests = 0
	m.OrderSuccess = 0
}
