/*
Package figurine 实现“手办化”聊天插件：把用户发来的图片（或文字描述）
转发给 MissQiu Gemini 图像接口，并把生成的图片回给聊天。

# 触发方式

每个部署选择一种触发器：

  - pattern（默认）：消息文本匹配正则（默认 "手办化"），且必须带图；
    取第一张图，配合固定的手办化提示词走图生图（type=tu）。
  - command：消息以 "/draw" 或 "draw" 开头，后面的文字即提示词，
    走文生图（type=wen）。

# 生命周期

Init 解析 apikey/width/height（explicit → env → file → default），
校验后创建共享的连接池客户端；Shutdown 释放客户端，且只释放一次，
任何关闭错误只记日志不向外抛。

# 单次调用

	Idle → Validating → (Rejected | Requesting) → (Success | Failure) → Idle

Handle 每次恰好返回一个结果：缺少输入时返回提示文本且不发请求；
上游非 200 时返回带状态码的文本；其余异常返回通用失败文本。
Handle 内部的 panic 会被恢复为通用失败。
*/
package figurine
