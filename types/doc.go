// Copyright (c) figurebot Authors.
// Licensed under the MIT License.

/*
Package types 提供 figurebot 的全局共享类型定义。

# 概述

types 是最底层的公共包，不依赖任何内部包，为 plugins、figurine、imagegen、
api 等上层模块提供统一的类型契约，避免循环依赖。

# 核心接口与类型

  - Event            : 宿主框架投递的入站消息（Images + Content）
  - Message          : Event 的默认结构体实现
  - Result           : 插件回给宿主的唯一结果（纯文本或图片字节）
  - Error / ErrorCode: 结构化错误体系，含 HTTP 状态码与 Retryable 标记

# 主要能力

  - 结果构造：PlainResult / ImageResult
  - 错误工具链：NewError / AsError / IsErrorCode / IsRetryable
*/
package types
