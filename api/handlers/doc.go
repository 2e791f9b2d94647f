// Copyright (c) figurebot Authors.
// Licensed under the MIT License.

/*
Package handlers 提供 figurebot 本地宿主 HTTP API 的请求处理器实现。

# 核心类型

  - EventsHandler   : POST /v1/events，把聊天消息分发给插件并返回结果
  - HealthHandler   : 服务健康检查（/health, /healthz, /ready, /version）
  - Response        : 统一 JSON 响应结构（success + data + error + timestamp）
  - ErrorInfo       : 结构化错误信息，含 code、message、retryable 标记
  - ResponseWriter  : 包装 http.ResponseWriter 以捕获状态码
  - HealthCheck     : 可插拔健康检查接口（PluginHealthCheck、FuncHealthCheck）

# 主要能力

  - 统一响应格式：WriteSuccess / WriteError / WriteJSON 辅助函数
  - 请求验证：DecodeJSONBody（1 MB 限制 + 严格模式）、ValidateContentType
  - ErrorCode → HTTP 状态码自动映射（4xx/5xx）
  - 图片结果在 JSON 中以 base64 编码返回
*/
package handlers
