package engine

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	glog "github.com/goliatone/go-logger/glog"
)

// SignatureHeader carries the HMAC-SHA256 of the raw body, "sha256=<hex>".
const SignatureHeader = "X-Hub-Signature-256"

// Runner executes a unit of webhook work. The default runs it inline.
type Runner interface {
	Submit(task func(ctx context.Context))
}

type inlineRunner struct{}

func (inlineRunner) Submit(task func(ctx context.Context)) { task(context.Background()) }

type GatewayConfig struct {
	VerifyToken string
	// AppSecret enables signature verification when set.
	AppSecret string
	// Object is the webhook object this gateway serves, "instagram" by default.
	Object string
}

type envelope struct {
	Object string  `json:"object"`
	Entry  []entry `json:"entry"`
}

type entry struct {
	ID      string `json:"id"`
	Changes []struct {
		Field string          `json:"field"`
		Value json.RawMessage `json:"value"`
	} `json:"changes"`
	Messaging []json.RawMessage `json:"messaging"`
}

type Gateway struct {
	cfg        GatewayConfig
	dispatcher *Dispatcher
	runner     Runner
	logger     glog.Logger
}

type GatewayOption func(*Gateway)

func WithRunner(r Runner) GatewayOption {
	return func(g *Gateway) { g.runner = r }
}

func WithGatewayLogger(l glog.Logger) GatewayOption {
	return func(g *Gateway) { g.logger = l }
}

func NewGateway(cfg GatewayConfig, dispatcher *Dispatcher, opts ...GatewayOption) *Gateway {
	if strings.TrimSpace(cfg.Object) == "" {
		cfg.Object = "instagram"
	}
	g := &Gateway{cfg: cfg, dispatcher: dispatcher, runner: inlineRunner{}}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = glog.Ensure(g.logger)
	return g
}

// VerifySubscription answers the platform's subscription handshake.
func (g *Gateway) VerifySubscription(mode, token, challenge string) (string, error) {
	if g.cfg.VerifyToken == "" {
		return "", AuthError("verify token not configured")
	}
	if mode != "subscribe" || subtle.ConstantTimeCompare([]byte(token), []byte(g.cfg.VerifyToken)) != 1 {
		g.logger.Warn("webhook verification rejected", "mode", mode)
		return "", AuthError("webhook verification failed")
	}
	return challenge, nil
}

func (g *Gateway) SignatureRequired() bool {
	return strings.TrimSpace(g.cfg.AppSecret) != ""
}

// VerifySignature checks header against the HMAC of body. It passes when no
// app secret is configured.
func (g *Gateway) VerifySignature(header string, body []byte) error {
	if !g.SignatureRequired() {
		return nil
	}
	sig := strings.TrimSpace(header)
	if sig == "" {
		return AuthError("missing " + SignatureHeader)
	}
	if !strings.HasPrefix(sig, "sha256=") {
		return AuthError("invalid " + SignatureHeader + " format")
	}
	provided, err := hex.DecodeString(strings.TrimPrefix(sig, "sha256="))
	if err != nil {
		return AuthError("invalid signature hex")
	}

	mac := hmac.New(sha256.New, []byte(g.cfg.AppSecret))
	_, _ = mac.Write(body)
	if !hmac.Equal(provided, mac.Sum(nil)) {
		return AuthError("signature mismatch")
	}
	return nil
}

// HandlePayload validates the envelope and hands every comment and message
// item to the dispatcher. Once the shape is valid the answer is 200: item
// failures, panics included, are logged and never reach the caller.
func (g *Gateway) HandlePayload(ctx context.Context, raw []byte) (int, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return http.StatusBadRequest, ValidationError("invalid webhook payload", map[string]any{"error": err.Error()})
	}
	if strings.TrimSpace(env.Object) == "" || env.Entry == nil {
		return http.StatusBadRequest, ValidationError("webhook payload needs object and entry", nil)
	}
	if env.Object != g.cfg.Object {
		g.logger.Debug("ignoring webhook object", "object", env.Object)
		return http.StatusOK, nil
	}

	for _, e := range env.Entry {
		accountID := e.ID
		for _, change := range e.Changes {
			if change.Field != FieldComments && change.Field != FieldMessages {
				continue
			}
			if isNull(change.Value) {
				continue
			}
			g.submit(change.Field, accountID, change.Value)
		}
		for _, item := range e.Messaging {
			if isNull(item) {
				continue
			}
			g.submit(FieldMessages, accountID, item)
		}
	}
	return http.StatusOK, nil
}

func (g *Gateway) submit(field, accountID string, value json.RawMessage) {
	g.runner.Submit(func(ctx context.Context) {
		defer func() {
			if r := recover(); r != nil {
				g.logger.Error("webhook item panicked", "field", field, "account_id", accountID, "panic", fmt.Sprint(r))
			}
		}()
		if err := g.dispatcher.Dispatch(ctx, field, accountID, value); err != nil {
			g.logger.Warn("webhook item dropped", "field", field, "account_id", accountID, "error", err)
		}
	})
}

func isNull(raw json.RawMessage) bool {
	v := strings.TrimSpace(string(raw))
	return v == "" || v == "null"
}
