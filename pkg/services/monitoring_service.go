package services

import (
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// メモリ上に保持するリクエストログの上限。超過分は古い順に破棄する。
const maxLogEntries = 5000

// LogEntry は単一のリクエストログを表します。
type LogEntry struct {
	Timestamp    time.Time     `json:"timestamp"`
	Path         string        `json:"path"`
	Method       string        `json:"method"`
	StatusCode   int           `json:"status_code"`
	ResponseTime time.Duration `json:"response_time"`
}

// MonitoringService はAPIのモニタリング機能を提供します。
type MonitoringService struct {
	logs []LogEntry
	mu   sync.RWMutex
}

// NewMonitoringService は新しいMonitoringServiceを生成します。
func NewMonitoringService() *MonitoringService {
	return &MonitoringService{
		logs: make([]LogEntry, 0),
	}
}

// LogRequest はリクエストを記録します。
func (s *MonitoringService) LogRequest(entry LogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, entry)
	if len(s.logs) > maxLogEntries {
		s.logs = s.logs[len(s.logs)-maxLogEntries:]
	}
}

// LoggingMiddleware はリクエスト情報を記録するGinミドルウェアです。
// モニタリング系エンドポイント自身のリクエストは記録しません。
func (s *MonitoringService) LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/api/v1/admin") || strings.HasPrefix(path, "/api/v1/monitoring") {
			return
		}

		s.LogRequest(LogEntry{
			Timestamp:    start,
			Path:         path,
			Method:       c.Request.Method,
			StatusCode:   c.Writer.Status(),
			ResponseTime: time.Since(start),
		})
	}
}

// RecentLogs は新しい順に最大limit件のログを返します。
func (s *MonitoringService) RecentLogs(limit int) []LogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.logs) {
		limit = len(s.logs)
	}
	recent := make([]LogEntry, 0, limit)
	for i := len(s.logs) - 1; i >= 0 && len(recent) < limit; i-- {
		recent = append(recent, s.logs[i])
	}
	return recent
}

// DashboardData はダッシュボードに表示するための集計済みデータです。
type DashboardData struct {
	TotalRequests    int                      `json:"total_requests"`
	Endpoints        map[string]int           `json:"endpoints"`
	StatusCodes      map[string]int           `json:"status_codes"`
	AvgResponseTimes []map[string]interface{} `json:"avg_response_times"`
	RecentErrors     []LogEntry               `json:"recent_errors"`
}

// GetDashboardData は指定された期間のログを集計してダッシュボード用データを返します。
func (s *MonitoringService) GetDashboardData(periodHours int) DashboardData {
	s.mu.RLock()
	defer s.mu.RUnlock()

	since := time.Now().Add(-time.Duration(periodHours) * time.Hour)

	filteredLogs := make([]LogEntry, 0)
	for _, log := range s.logs {
		if log.Timestamp.After(since) {
			filteredLogs = append(filteredLogs, log)
		}
	}

	// エンドポイント別のリクエスト数
	endpoints := make(map[string]int)
	for _, log := range filteredLogs {
		endpoints[log.Path]++
	}

	// ステータスコード帯の集計
	statusCodes := map[string]int{
		"2xx Success":      0,
		"4xx Client Error": 0,
		"5xx Server Error": 0,
	}
	for _, log := range filteredLogs {
		switch {
		case log.StatusCode >= 200 && log.StatusCode < 300:
			statusCodes["2xx Success"]++
		case log.StatusCode >= 400 && log.StatusCode < 500:
			statusCodes["4xx Client Error"]++
		case log.StatusCode >= 500:
			statusCodes["5xx Server Error"]++
		}
	}

	// エンドポイント別の平均応答時間（ミリ秒）
	responseTimeSum := make(map[string]time.Duration)
	responseCount := make(map[string]int)
	for _, log := range filteredLogs {
		responseTimeSum[log.Path] += log.ResponseTime
		responseCount[log.Path]++
	}
	avgResponseTimes := make([]map[string]interface{}, 0)
	for path, totalTime := range responseTimeSum {
		avg := totalTime.Milliseconds() / int64(responseCount[path])
		avgResponseTimes = append(avgResponseTimes, map[string]interface{}{"endpoint": path, "response_time_ms": avg})
	}

	// 直近のサーバーエラー（最大10件、新しい順）
	recentErrors := make([]LogEntry, 0)
	for i := len(filteredLogs) - 1; i >= 0; i-- {
		if filteredLogs[i].StatusCode >= 500 {
			recentErrors = append(recentErrors, filteredLogs[i])
			if len(recentErrors) >= 10 {
				break
			}
		}
	}

	return DashboardData{
		TotalRequests:    len(filteredLogs),
		Endpoints:        endpoints,
		StatusCodes:      statusCodes,
		AvgResponseTimes: avgResponseTimes,
		RecentErrors:     recentErrors,
	}
}
