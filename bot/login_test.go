package bot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/LagrangeDev/LagrangeGo/client"
)

type stubStrategy struct {
	name  string
	errs  []error
	calls int
}

func (s *stubStrategy) GetStrategyName() string { return s.name }

func (s *stubStrategy) Login(context.Context, *client.QQClient) error {
	s.calls++
	if len(s.errs) == 0 {
		return nil
	}
	err := s.errs[0]
	s.errs = s.errs[1:]
	return err
}

func quickContext() *LoginContext {
	return &LoginContext{MaxRetries: 3, RetryDelay: time.Millisecond, Timeout: time.Second}
}

func TestLogin_FallsThroughToNextStrategy(t *testing.T) {
	fast := &stubStrategy{name: "fast", errs: []error{ErrNoSig}}
	qr := &stubStrategy{name: "qr"}
	lm := NewLoginManager(nil, WithLoginContext(quickContext()), WithStrategies(fast, qr))

	if err := lm.Login(); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if fast.calls != 1 {
		t.Fatalf("missing sig must not be retried, calls = %d", fast.calls)
	}
	if qr.calls != 1 {
		t.Fatalf("qr calls = %d, want 1", qr.calls)
	}
}

func TestLogin_RetriesThenSucceeds(t *testing.T) {
	boom := errors.New("boom")
	s := &stubStrategy{name: "flaky", errs: []error{boom, boom}}
	lm := NewLoginManager(nil, WithLoginContext(quickContext()), WithStrategies(s))

	if err := lm.Login(); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if s.calls != 3 {
		t.Fatalf("calls = %d, want 3", s.calls)
	}
}

func TestLogin_AllStrategiesFail(t *testing.T) {
	boom := errors.New("boom")
	a := &stubStrategy{name: "a", errs: []error{boom, boom, boom}}
	b := &stubStrategy{name: "b", errs: []error{ErrNoSig}}
	lm := NewLoginManager(nil, WithLoginContext(quickContext()), WithStrategies(a, b))

	err := lm.Login()
	if !errors.Is(err, ErrAllStrategiesFailed) {
		t.Fatalf("err = %v, want ErrAllStrategiesFailed", err)
	}
	if !errors.Is(err, boom) || !errors.Is(err, ErrNoSig) {
		t.Fatalf("joined error lost a cause: %v", err)
	}
}

func TestLogin_StopsWhenContextDone(t *testing.T) {
	s := &stubStrategy{name: "never"}
	lm := NewLoginManager(nil, WithStrategies(s))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := lm.LoginContext(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if s.calls != 0 {
		t.Fatalf("strategy called after cancel")
	}
}
