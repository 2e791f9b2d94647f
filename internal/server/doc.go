// 版权所有 2024 figurebot Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 server 提供宿主 HTTP/HTTPS 服务器的生命周期管理，支持非阻塞启动、
阻塞运行与优雅关闭。

# 核心类型

  - Manager：HTTP 服务器管理器，持有 http.Server、net.Listener
    与异步错误通道。
  - Config：服务器配置，包含监听地址、读写超时、空闲超时、
    最大请求头大小、优雅关闭超时与可选的 TLS 证书。ConfigFrom
    由 config.ServerConfig 生成。

# 主要能力

  - 非阻塞启动：Start/StartTLS 在后台 goroutine 中运行服务。
  - 阻塞运行：Run(ctx) 在 ctx 结束或服务异常退出时优雅关闭，
    适合放入 errgroup。
  - 优雅关闭：Shutdown 在配置的超时内完成请求排空，可重复调用。
  - 错误传播：Errors() 返回异步错误通道。
  - 状态查询：IsRunning/Addr/ListenAddr。
*/
package server
