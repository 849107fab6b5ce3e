package engine

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGateway(cfg GatewayConfig) (*Gateway, *dispatcherFixture) {
	f := newDispatcherFixture()
	return NewGateway(cfg, f.d), f
}

func TestVerifySubscription(t *testing.T) {
	g, _ := newTestGateway(GatewayConfig{VerifyToken: "secret"})

	got, err := g.VerifySubscription("subscribe", "secret", "abc123")
	require.NoError(t, err)
	assert.Equal(t, "abc123", got)

	_, err = g.VerifySubscription("subscribe", "wrong", "abc123")
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, StatusCode(err))

	_, err = g.VerifySubscription("unsubscribe", "secret", "abc123")
	assert.True(t, IsAuth(err))

	unset, _ := newTestGateway(GatewayConfig{})
	_, err = unset.VerifySubscription("subscribe", "", "abc123")
	assert.True(t, IsAuth(err))
}

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"object":"instagram","entry":[]}`)

	open, _ := newTestGateway(GatewayConfig{VerifyToken: "v"})
	assert.False(t, open.SignatureRequired())
	assert.NoError(t, open.VerifySignature("", body))

	g, _ := newTestGateway(GatewayConfig{VerifyToken: "v", AppSecret: "app"})
	assert.NoError(t, g.VerifySignature(sign("app", body), body))

	for name, header := range map[string]string{
		"missing":    "",
		"no prefix":  "abc",
		"bad hex":    "sha256=zz",
		"wrong key":  sign("other", body),
		"other body": sign("app", []byte("{}")),
	} {
		err := g.VerifySignature(header, body)
		assert.True(t, IsAuth(err), name)
	}
}

func TestHandlePayload_InvalidShape(t *testing.T) {
	g, _ := newTestGateway(GatewayConfig{VerifyToken: "v"})

	for name, body := range map[string]string{
		"empty object": `{}`,
		"no entry":     `{"object":"instagram"}`,
		"no object":    `{"entry":[]}`,
		"not json":     `nope`,
	} {
		status, err := g.HandlePayload(context.Background(), []byte(body))
		assert.Equal(t, http.StatusBadRequest, status, name)
		assert.True(t, IsValidation(err), name)
	}
}

func TestHandlePayload_OtherObjectIgnored(t *testing.T) {
	g, f := newTestGateway(GatewayConfig{VerifyToken: "v"})
	f.registry.rules["t1"] = liveRule(AnyPost(), AnyComment(), OpeningMessage("Hi!"))

	status, err := g.HandlePayload(context.Background(), []byte(`{"object":"page","entry":[{"id":"ig1","changes":[
		{"field":"comments","value":{"id":"c1","from":{"id":"u1"},"media":{"id":"m1"}}}]}]}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, f.platform.Calls())
}

func TestHandlePayload_DispatchesCommentsAndMessages(t *testing.T) {
	g, f := newTestGateway(GatewayConfig{VerifyToken: "v"})
	f.registry.rules["t1"] = liveRule(AnyPost(), AnyComment(), OpeningMessage("Hi!"))
	f.registry.chatbots["t1"] = ChatbotRule{Task: "support", Context: "ctx", IsLive: true, Scope: SpecificPost("none"), Trigger: AnyComment()}

	body := `{"object":"instagram","entry":[{"id":"ig1","time":1,
		"changes":[
			{"field":"comments","value":{"id":"c1","text":"hey","verb":"created","from":{"id":"u1"},"media":{"id":"m1","owner":{"id":"ig1"}}}},
			{"field":"mentions","value":{"id":"x"}},
			{"field":"comments","value":null}
		],
		"messaging":[
			{"sender":{"id":"u2"},"recipient":{"id":"ig1"},"message":{"mid":"mid.1","text":"hello"}}
		]}]}`

	status, err := g.HandlePayload(context.Background(), []byte(body))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, []platformCall{
		{Op: "dm", Token: "tok", Target: "u1", Text: "Hi!"},
		{Op: "dm", Token: "tok", Target: "u2", Text: "generated"},
	}, f.platform.Calls())
}

func TestHandlePayload_ItemFailuresStay200(t *testing.T) {
	g, f := newTestGateway(GatewayConfig{VerifyToken: "v"})
	f.registry.rules["t1"] = liveRule(AnyPost(), AnyComment(), OpeningMessage("boom"))
	f.platform.panicOn = "boom"

	body := `{"object":"instagram","entry":[{"id":"ig1","changes":[
		{"field":"comments","value":{"text":"missing id"}},
		{"field":"comments","value":{"id":"c9","from":{"id":"u1"},"media":{"id":"m1","owner":{"id":"unknown"}}}},
		{"field":"comments","value":{"id":"c1","from":{"id":"u1"},"media":{"id":"m1"}}}
	]}]}`

	status, err := g.HandlePayload(context.Background(), []byte(body))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, f.platform.Calls(), 2)
}

type panickingRegistry struct{}

func (panickingRegistry) FindActiveRule(context.Context, string) (AutomationRule, error) {
	panic("registry exploded")
}

func (panickingRegistry) FindActiveChatbot(context.Context, string) (ChatbotRule, error) {
	panic("registry exploded")
}

func TestHandlePayload_RecoversDispatchPanics(t *testing.T) {
	dir := memDirectory{"ig1": {TenantID: "t1", PlatformAccountID: "ig1"}}
	g := NewGateway(GatewayConfig{VerifyToken: "v"}, NewDispatcher(dir, panickingRegistry{}, NewExecutor(&fakePlatform{})))

	body := `{"object":"instagram","entry":[{"id":"ig1","changes":[{"field":"comments","value":{"id":"c1","from":{"id":"u1"}}}]}]}`
	assert.NotPanics(t, func() {
		status, err := g.HandlePayload(context.Background(), []byte(body))
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, status)
	})
}

type recordingRunner struct{ n int }

func (r *recordingRunner) Submit(task func(ctx context.Context)) {
	r.n++
	task(context.Background())
}

func TestHandlePayload_UsesRunner(t *testing.T) {
	f := newDispatcherFixture()
	runner := &recordingRunner{}
	g := NewGateway(GatewayConfig{VerifyToken: "v"}, f.d, WithRunner(runner))

	body := `{"object":"instagram","entry":[{"id":"ig1","changes":[{"field":"comments","value":{"id":"c1","from":{"id":"u1"}}}]}]}`
	_, err := g.HandlePayload(context.Background(), []byte(body))
	require.NoError(t, err)
	assert.Equal(t, 1, runner.n)
}
