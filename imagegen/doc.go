// Copyright (c) figurebot Authors.
// Licensed under the MIT License.

/*
包 imagegen 封装对第三方图像生成接口（MissQiu Gemini）的单次 GET 调用。

# 概述

上游接口只有一个端点，所有参数都走 query string：

	GET <endpoint>?text=&width=&height=&type=<tu|wen>&url=&tc=no&enhance=false&apikey=

type=tu 为图生图（需要 url），type=wen 为文生图。接口成功时直接返回
图片字节，失败时只能拿到 HTTP 状态码。

# 核心类型

  - Mode：生成模式，ModeImageToImage（tu）与 ModeTextToImage（wen）。
  - Request / Params：一次调用的输入，以及按固定顺序编码的 query 参数。
  - Client：持有一个带连接池上限的 *http.Client，Init 时创建、Close 时
    释放，Close 只生效一次。
  - StatusError：上游返回非 200 时的错误，携带状态码。

# 行为约束

  - 每次 Generate 恰好发出一个请求，不重试、不缓存。
  - 200 时响应体原样返回。
  - 每次调用包一层 OpenTelemetry span，apikey 不会出现在 span 属性里。
*/
package imagegen
