package ctxkeys

import "context"

// contextKey 用于在 context 中存储值的键类型
type contextKey string

const (
	requestIDKey    contextKey = "request_id"
	traceIDKey      contextKey = "trace_id"
	invocationIDKey contextKey = "invocation_id"
)

// WithRequestID 设置 RequestID（来自 X-Request-ID 或中间件生成）
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestID 获取 RequestID
func RequestID(ctx context.Context) (string, bool) {
	return lookup(ctx, requestIDKey)
}

// WithTraceID 设置 TraceID
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// TraceID 获取 TraceID
func TraceID(ctx context.Context) (string, bool) {
	return lookup(ctx, traceIDKey)
}

// WithInvocationID 设置单次插件调用的 ID
func WithInvocationID(ctx context.Context, invocationID string) context.Context {
	return context.WithValue(ctx, invocationIDKey, invocationID)
}

// InvocationID 获取单次插件调用的 ID
func InvocationID(ctx context.Context) (string, bool) {
	return lookup(ctx, invocationIDKey)
}

func lookup(ctx context.Context, key contextKey) (string, bool) {
	if ctx == nil {
		return "", false
	}
	v, ok := ctx.Value(key).(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
