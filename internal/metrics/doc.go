// 版权所有 2024 figurebot Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 metrics 提供基于 Prometheus 的指标采集能力，覆盖宿主 HTTP 接口
与图像生成插件两个维度。

# 概述

本包通过 Collector 统一注册和记录 Prometheus 指标，使用
promauto.With 注册到调用方给定的 Registerer（测试时用独立的
Registry，避免重复注册）。所有指标按 namespace 隔离。

# 核心类型

  - Collector：指标收集器，持有 Counter、Histogram、Gauge 等
    Prometheus 向量指标，按业务域分组管理。

# 主要能力

  - HTTP 指标：请求总数、请求耗时、请求/响应体大小、限流次数，
    按 method/path/status 分组，状态码归类为 2xx/3xx/4xx/5xx。
  - 图像生成指标：按 mode/outcome 统计的调用次数、上游耗时、
    上游状态码分布、结果图片大小以及正在进行的上游调用数。
*/
package metrics
