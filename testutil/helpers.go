// =============================================================================
// 🧪 测试辅助函数
// =============================================================================
// 提供通用的测试辅助函数和断言
//
// 使用方法:
//
//	testutil.AssertResultText(t, res, "手办化失败")
//	testutil.AssertEventuallyTrue(t, func() bool { return condition }, 5*time.Second)
// =============================================================================
package testutil

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/BaSui01/figurebot/types"
)

// =============================================================================
// 🎯 上下文辅助
// =============================================================================

// TestContext 返回带超时的测试上下文
func TestContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// CancelledContext 返回已取消的上下文
func CancelledContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}

// =============================================================================
// 📨 事件构造
// =============================================================================

// NewEvent 构造一条入站消息，images 为附带的图片地址
func NewEvent(content string, images ...string) *types.Message {
	return &types.Message{Text: content, ImageURLs: images}
}

// =============================================================================
// 🔍 断言辅助
// =============================================================================

// AssertImageResult 断言结果是图片且字节完全一致
func AssertImageResult(t *testing.T, res types.Result, want []byte) {
	t.Helper()
	if !res.IsImage() {
		t.Errorf("expected image result, got %s %q", res.Kind, res.Text)
		return
	}
	if !bytes.Equal(res.Image, want) {
		t.Errorf("image bytes mismatch: expected %d bytes, got %d bytes", len(want), len(res.Image))
	}
}

// AssertResultText 断言结果是文本且包含子串
func AssertResultText(t *testing.T, res types.Result, substr string) {
	t.Helper()
	if res.Kind != types.ResultPlain {
		t.Errorf("expected plain result, got %s", res.Kind)
		return
	}
	if !strings.Contains(res.Text, substr) {
		t.Errorf("expected %q to contain %q", res.Text, substr)
	}
}

// AssertEventuallyTrue 断言条件最终为真
func AssertEventuallyTrue(t *testing.T, condition func() bool, timeout time.Duration) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Errorf("condition did not become true within %v", timeout)
}
