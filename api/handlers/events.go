package handlers

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/BaSui01/figurebot/internal/ctxkeys"
	"github.com/BaSui01/figurebot/plugins"
	"github.com/BaSui01/figurebot/types"
)

// =============================================================================
// 💬 事件 Handler
// =============================================================================

// Dispatcher 将一条入站事件分发给匹配的插件
type Dispatcher interface {
	Dispatch(ctx context.Context, event types.Event) []plugins.Dispatched
}

// EventResponse POST /v1/events 的响应数据，图片字节以 base64 编码
type EventResponse struct {
	Results []plugins.Dispatched `json:"results"`
}

// EventsHandler 接收宿主转发的聊天消息并交给插件处理
type EventsHandler struct {
	dispatcher Dispatcher
	logger     *zap.Logger
}

// NewEventsHandler 创建事件处理器
func NewEventsHandler(dispatcher Dispatcher, logger *zap.Logger) *EventsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventsHandler{
		dispatcher: dispatcher,
		logger:     logger.With(zap.String("component", "events_handler")),
	}
}

// HandleEvent 处理 POST /v1/events
//
// 请求体: {"content": "...", "images": ["https://..."], "sender": "..."}
func (h *EventsHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	if !ValidateContentType(w, r, h.logger) {
		return
	}

	var msg types.Message
	if err := DecodeJSONBody(w, r, &msg, h.logger); err != nil {
		return
	}

	if strings.TrimSpace(msg.Text) == "" && len(msg.ImageURLs) == 0 {
		WriteError(w, types.NewError(types.ErrInvalidRequest, "content or images is required"), h.logger)
		return
	}

	log := h.logger
	if id, ok := ctxkeys.RequestID(r.Context()); ok {
		log = log.With(zap.String("request_id", id))
	}

	results := h.dispatcher.Dispatch(r.Context(), &msg)
	if len(results) == 0 {
		log.Debug("no plugin matched event", zap.Int("images", len(msg.ImageURLs)))
		WriteError(w, types.NewError(types.ErrNoPluginMatched, "no plugin matched the event"), h.logger)
		return
	}

	log.Info("event handled",
		zap.Int("results", len(results)),
		zap.Int("images", len(msg.ImageURLs)),
	)
	WriteSuccess(w, EventResponse{Results: results})
}
