package metrics

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/d-oit/do-multitenant-prompt-manager-sub000/internal/store"
)

// CountsSource 提供记录数量，*store.Store 满足该接口
type CountsSource interface {
	Counts() store.Counts
}

// StoreCollector 把 store 的记录数量同步到 mock_store_records
type StoreCollector struct {
	source CountsSource
}

// NewStoreCollector 创建收集器并立即同步一次
func NewStoreCollector(source CountsSource) *StoreCollector {
	c := &StoreCollector{source: source}
	c.Refresh()
	return c
}

// Refresh 读取最新数量并更新 gauge
func (c *StoreCollector) Refresh() {
	if c == nil || c.source == nil {
		return
	}
	counts := c.source.Counts()
	StoreRecords.WithLabelValues("tenants").Set(float64(counts.Tenants))
	StoreRecords.WithLabelValues("prompts").Set(float64(counts.Prompts))
	StoreRecords.WithLabelValues("versions").Set(float64(counts.Versions))
	StoreRecords.WithLabelValues("comments").Set(float64(counts.Comments))
	StoreRecords.WithLabelValues("shares").Set(float64(counts.Shares))
	StoreRecords.WithLabelValues("approvals").Set(float64(counts.Approvals))
	StoreRecords.WithLabelValues("activity").Set(float64(counts.Activity))
	StoreRecords.WithLabelValues("notifications").Set(float64(counts.Notifications))
}

// RefreshAfterMutation 写请求处理完后刷新记录数量
func (c *StoreCollector) RefreshAfterMutation() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Next()

		if ctx.Request.Method == http.MethodGet || ctx.Request.Method == http.MethodHead {
			return
		}
		if ctx.Writer.Status() < http.StatusBadRequest {
			c.Refresh()
		}
	}
}
