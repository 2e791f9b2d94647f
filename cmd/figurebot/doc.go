// 版权所有 2024 figurebot Authors. 保留所有权利。
// 此源代码的使用受 MIT 许可证约束。

/*
Package main 提供 figurebot 命令行程序入口。

# 概述

cmd/figurebot 既是手办化插件的本地宿主，也是一次性生成工具。
配置通过 YAML 文件和 FIGUREBOT_ 环境变量加载，日志使用 zap。

# 子命令

  - serve   : 启动 HTTP 宿主：POST /v1/events、/health、/ready、/version、/metrics
  - generate: 从命令行构造一条消息，交给插件处理并把图片写入文件
  - version : 打印版本信息，支持 --json
  - health  : 请求运行中服务的 /health

# 中间件

Recovery、RequestID、SecurityHeaders、RequestLogger 包在路由器外层；
OTelTracing 与 Metrics 挂在 mux 路由上，以路由模板作为标签；
RateLimit（基于 IP）只作用于 /v1 子路由。

Version、BuildTime、GitCommit 通过 ldflags 注入。
*/
package main
