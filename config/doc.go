// Package config 提供 figurebot 的配置管理功能。
//
// 包含两部分：
//
//   - Loader：宿主进程配置（服务器、日志、遥测、插件部署参数），
//     优先级 默认值 → YAML 文件 → 环境变量。
//   - Resolver：插件运行参数（apikey、width、height）的责任链解析，
//     按 explicit → env → file → default 顺序取第一个可用来源。
package config
