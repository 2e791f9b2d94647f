// Package tlsutil 提供集中式 HTTP 传输配置，
// 为上游图像接口的客户端提供连接池上限与安全加固的 TLS 设置（TLS 1.2+，仅 AEAD 密码套件）。
package tlsutil
