package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/figurebot/config"
	"github.com/BaSui01/figurebot/figurine"
	"github.com/BaSui01/figurebot/plugins"
	"github.com/BaSui01/figurebot/testutil/fixtures"
	"github.com/BaSui01/figurebot/testutil/mocks"
	"github.com/BaSui01/figurebot/types"
)

// =============================================================================
// 🧪 测试辅助
// =============================================================================

type dispatchFunc func(ctx context.Context, event types.Event) []plugins.Dispatched

func (f dispatchFunc) Dispatch(ctx context.Context, event types.Event) []plugins.Dispatched {
	return f(ctx, event)
}

// rawResponse 用原始 JSON 解析 data，便于检查 base64 编码
type rawResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *ErrorInfo      `json:"error"`
}

func postEvent(t *testing.T, h *EventsHandler, body string) (*httptest.ResponseRecorder, rawResponse) {
	t.Helper()
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/v1/events", bytes.NewBufferString(body))
	r.Header.Set("Content-Type", "application/json")

	h.HandleEvent(w, r)

	var resp rawResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return w, resp
}

func newFigurineManager(t *testing.T, gen *mocks.MockGenerator) *plugins.PluginManager {
	t.Helper()
	p, err := figurine.New(config.DefaultFigurineConfig(), zap.NewNop(),
		figurine.WithSources(config.NewExplicitSource(map[string]any{"apikey": "sk-test"})),
		figurine.WithGenerator(gen),
	)
	require.NoError(t, err)

	m := plugins.NewPluginManager(plugins.NewInMemoryPluginRegistry(zap.NewNop()), zap.NewNop())
	require.NoError(t, m.Register(p))
	require.NoError(t, m.InitAll(context.Background()))
	t.Cleanup(func() { _ = m.ShutdownAll(context.Background()) })
	return m
}

// =============================================================================
// 🧪 EventsHandler 测试
// =============================================================================

func TestEventsHandler_ImageResult(t *testing.T) {
	gen := mocks.NewMockGenerator().WithImage(fixtures.PNGHeader)
	h := NewEventsHandler(newFigurineManager(t, gen), zap.NewNop())

	body := `{"content":"手办化","images":["` + fixtures.SampleImageURL + `"]}`
	w, resp := postEvent(t, h, body)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, 1, gen.Calls())

	var data struct {
		Results []struct {
			Plugin string `json:"plugin"`
			Result struct {
				Type  string `json:"type"`
				Image string `json:"image"`
			} `json:"result"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	require.Len(t, data.Results, 1)
	assert.Equal(t, figurine.PluginName, data.Results[0].Plugin)
	assert.Equal(t, "image", data.Results[0].Result.Type)

	decoded, err := base64.StdEncoding.DecodeString(data.Results[0].Result.Image)
	require.NoError(t, err)
	assert.Equal(t, fixtures.PNGHeader, decoded)
}

func TestEventsHandler_HintWithoutImage(t *testing.T) {
	gen := mocks.NewMockGenerator()
	h := NewEventsHandler(newFigurineManager(t, gen), zap.NewNop())

	w, resp := postEvent(t, h, `{"content":"手办化"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(resp.Data), "请发送一张图片")
	assert.Equal(t, 0, gen.Calls())
}

func TestEventsHandler_Errors(t *testing.T) {
	none := dispatchFunc(func(context.Context, types.Event) []plugins.Dispatched { return nil })

	tests := []struct {
		name        string
		contentType string
		body        string
		wantStatus  int
		wantCode    types.ErrorCode
	}{
		{"wrong content type", "text/plain", `{"content":"hi"}`, http.StatusBadRequest, types.ErrInvalidRequest},
		{"malformed json", "application/json", `{"content":`, http.StatusBadRequest, types.ErrInvalidRequest},
		{"unknown field", "application/json", `{"text":"hi"}`, http.StatusBadRequest, types.ErrInvalidRequest},
		{"empty event", "application/json", `{"content":"  "}`, http.StatusBadRequest, types.ErrInvalidRequest},
		{"no plugin matched", "application/json", `{"content":"hello"}`, http.StatusUnprocessableEntity, types.ErrNoPluginMatched},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewEventsHandler(none, nil)
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/v1/events", bytes.NewBufferString(tt.body))
			r.Header.Set("Content-Type", tt.contentType)

			h.HandleEvent(w, r)

			assert.Equal(t, tt.wantStatus, w.Code)
			var resp Response
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			require.NotNil(t, resp.Error)
			assert.Equal(t, string(tt.wantCode), resp.Error.Code)
		})
	}
}

func TestEventsHandler_PassesMessageThrough(t *testing.T) {
	var got types.Event
	d := dispatchFunc(func(_ context.Context, event types.Event) []plugins.Dispatched {
		got = event
		return []plugins.Dispatched{{Plugin: "echo", Result: types.PlainResult(event.Content())}}
	})
	h := NewEventsHandler(d, zap.NewNop())

	w, _ := postEvent(t, h, `{"content":"/draw a cat","images":["a.png","b.png"],"sender":"u1"}`)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, got)
	assert.Equal(t, "/draw a cat", got.Content())
	assert.Equal(t, []string{"a.png", "b.png"}, got.Images())
}
