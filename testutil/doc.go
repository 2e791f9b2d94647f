// Copyright 2026 figurebot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license.

/*
Package testutil 提供 figurebot 测试的共享工具和辅助函数。

# 概述

testutil 包为整个项目的单元测试与基准测试提供统一的辅助能力，
避免各包重复实现相似的测试基础设施。

# 核心能力

  - 上下文辅助: TestContext / CancelledContext，自动注册 Cleanup 防止泄漏
  - 事件构造: NewEvent
  - 结果断言: AssertImageResult / AssertResultText
  - 异步断言: AssertEventuallyTrue，超时轮询等待条件满足

# 子包

  - testutil/mocks: MockGenerator（替换插件的上游调用，支持错误、
    状态码与 panic 注入）与 FakeUpstream（httptest 版的图像接口）
  - testutil/fixtures: PNG 字节与常用消息样例

# 使用示例

	ctx := testutil.TestContext(t)
	gen := mocks.NewMockGenerator().WithImage(fixtures.PNGHeader)
	res := plugin.Handle(ctx, fixtures.FigurineEvent())
	testutil.AssertImageResult(t, res, fixtures.PNGHeader)
*/
package testutil
