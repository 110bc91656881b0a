package rule

import (
	"strings"
	"sync"
)

// ============================================================================
// 对象池优化 - 减少错误消息拼接时的内存分配
// ============================================================================

// maxPooledBuilderCap 超过该容量的构建器不再归还，防止对象池持有大块内存
const maxPooledBuilderCap = 4096

// stringBuilderPool strings.Builder 对象池
// 线程安全：sync.Pool 是线程安全的
var stringBuilderPool = sync.Pool{
	New: func() interface{} {
		return &strings.Builder{}
	},
}

// acquireBuilder 从对象池获取已重置的 strings.Builder
// 使用后必须调用 releaseBuilder 归还
func acquireBuilder() *strings.Builder {
	builder := stringBuilderPool.Get().(*strings.Builder)
	builder.Reset()
	return builder
}

// releaseBuilder 将 strings.Builder 归还到对象池
func releaseBuilder(builder *strings.Builder) {
	if builder == nil || builder.Cap() > maxPooledBuilderCap {
		return
	}
	builder.Reset()
	stringBuilderPool.Put(builder)
}
