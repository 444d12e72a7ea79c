package event

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/LagrangeDev/LagrangeGo/message"
	"github.com/vintcessun/AutoAt-Bot/autoat"
	message2 "github.com/vintcessun/AutoAt-Bot/message"
)

func groupContext(groupUin, senderUin uint32, elements ...message.IMessageElement) (*MessageContext, *[][]message.IMessageElement) {
	sent := &[][]message.IMessageElement{}
	ctx := NewMessageContext(nil, message2.NewMessage(&message.GroupMessage{
		GroupUin: groupUin,
		Sender:   &message.Sender{Uin: senderUin},
		Elements: elements,
	})).WithSendFunc(func(elements []message.IMessageElement) (interface{}, error) {
		*sent = append(*sent, elements)
		return nil, nil
	})
	return ctx, sent
}

func privateContext(senderUin uint32, elements ...message.IMessageElement) *MessageContext {
	return NewMessageContext(nil, message2.NewMessage(&message.PrivateMessage{
		Sender:   &message.Sender{Uin: senderUin},
		Elements: elements,
	}))
}

func TestCommandMatcher(t *testing.T) {
	cases := []struct {
		text     string
		want     bool
		wantArgs []string
	}{
		{"/autoat status", true, []string{"status"}},
		{"  /autoat   add_admin  42 ", true, []string{"add_admin", "42"}},
		{"/autoat", true, []string{}},
		{"/autoatx status", false, nil},
		{"autoat status", false, nil},
		{"", false, nil},
	}

	for _, c := range cases {
		ctx, _ := groupContext(100, 1, message.NewText(c.text))
		got := NewCommandMatcher("/", "autoat").Match(ctx)
		if got != c.want {
			t.Fatalf("%q: match = %v, want %v", c.text, got, c.want)
		}
		if c.want && !reflect.DeepEqual(ctx.GetArgs(), c.wantArgs) {
			t.Fatalf("%q: args = %#v, want %#v", c.text, ctx.GetArgs(), c.wantArgs)
		}
	}
}

func TestCommandMatcher_IgnoresLeadingMention(t *testing.T) {
	ctx, _ := groupContext(100, 1, message.NewAt(999), message.NewText(" /autoat test"))
	if !NewCommandMatcher("/", "autoat").Match(ctx) {
		t.Fatalf("expected match for text %q", ctx.GetText())
	}
}

func TestAtMatcher(t *testing.T) {
	ctx, _ := groupContext(100, 1, message.NewText("hi"), message.NewAt(999))
	if !NewAtMatcher("999").Match(ctx) {
		t.Fatal("expected at matcher to match")
	}
	if NewAtMatcher("998").Match(ctx) {
		t.Fatal("at matcher matched wrong account")
	}
	if NewAtMatcher("999").Match(privateContext(1, message.NewAt(999))) {
		t.Fatal("at matcher must only match group messages")
	}
}

func TestLogicMatchers(t *testing.T) {
	ctx, _ := groupContext(100, 1, message.NewText("x"))
	yes := NewCustomMatcher(func(*MessageContext) bool { return true })
	no := NewCustomMatcher(func(*MessageContext) bool { return false })

	if !NewAndMatcher(yes, yes).Match(ctx) || NewAndMatcher(yes, no).Match(ctx) {
		t.Fatal("and matcher wrong")
	}
	if !NewOrMatcher(no, yes).Match(ctx) || NewOrMatcher(no, no).Match(ctx) {
		t.Fatal("or matcher wrong")
	}
}

func TestRouter_RunsOnlyMatchingRoutesAndReportsErrors(t *testing.T) {
	var errs []error
	router := NewRouter().SetErrorHandler(func(err error, _ *MessageContext) { errs = append(errs, err) })

	var ran []string
	router.AddRoute(NewRoute("group", NewHandlerAdapter(func(*MessageContext) error {
		ran = append(ran, "group")
		return errors.New("send failed")
	})).Match(NewMessageTypeMatcher("group")))
	router.AddRoute(NewRoute("private", NewHandlerAdapter(func(*MessageContext) error {
		ran = append(ran, "private")
		return nil
	})).Match(NewMessageTypeMatcher("private")))

	ctx, _ := groupContext(100, 1, message.NewText("x"))
	if hits := router.Handle(ctx); hits != 1 {
		t.Fatalf("hits = %d, want 1", hits)
	}
	if !reflect.DeepEqual(ran, []string{"group"}) {
		t.Fatalf("ran = %v", ran)
	}
	if len(errs) != 1 || errs[0].Error() != "send failed" {
		t.Fatalf("errs = %v", errs)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := ChainMiddleware(RecoveryMiddleware(), LoggingMiddleware())(func(*MessageContext) error {
		panic("boom")
	})
	ctx, _ := groupContext(100, 1)
	if err := handler(ctx); err == nil {
		t.Fatal("expected panic to be converted into an error")
	}
}

func TestMessageContext_SendComponents(t *testing.T) {
	ctx, sent := groupContext(100, 1)
	if err := ctx.SendComponents([]autoat.Component{autoat.Mention("1"), autoat.Text(" hi")}); err != nil {
		t.Fatalf("SendComponents: %v", err)
	}
	if len(*sent) != 1 || len((*sent)[0]) != 2 {
		t.Fatalf("sent = %#v", *sent)
	}
	if ctx.GetSenderID() != "1" {
		t.Fatalf("sender = %q", ctx.GetSenderID())
	}
}

func TestEventBus(t *testing.T) {
	bus := NewEventBus()

	var mu sync.Mutex
	var got []autoat.ReplyRecord
	bus.Subscribe(EventTypeAutoAtReplied, func(_ context.Context, ev Event) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, ev.GetData().(autoat.ReplyRecord))
		return nil
	})

	bus.Publish(NewReplyEvent(autoat.ReplyRecord{GroupID: "100", SenderID: "1"}))
	bus.Wait()

	if len(got) != 1 || got[0].SenderID != "1" {
		t.Fatalf("got = %+v", got)
	}

	wantErr := errors.New("handler failed")
	bus.Subscribe("sync", func(context.Context, Event) error { return wantErr })
	if err := bus.PublishSync(NewEvent("sync", nil)); !errors.Is(err, wantErr) {
		t.Fatalf("PublishSync err = %v", err)
	}
	if n := bus.GetSubscriberCount(EventTypeAutoAtReplied); n != 1 {
		t.Fatalf("subscribers = %d", n)
	}
	if err := bus.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestHandleCommandGroup_PublishesCommandExecuted(t *testing.T) {
	bus := NewEventBus()
	executed := make(chan string, 1)
	bus.Subscribe(EventTypeCommandExecuted, func(_ context.Context, ev Event) error {
		executed <- ev.(*MessageEvent).MessageContext.GetString("command")
		return nil
	})

	lm := NewLogicManager(nil, bus)
	var args []string
	lm.HandleCommandGroup("/", "autoat", func(ctx *MessageContext) error {
		args = ctx.GetArgs()
		return nil
	})

	lm.ProcessMessage(privateContext(1, message.NewText("/autoat test")))
	bus.Wait()

	if !reflect.DeepEqual(args, []string{"test"}) {
		t.Fatalf("args = %v", args)
	}
	if cmd := <-executed; cmd != "autoat" {
		t.Fatalf("command = %q", cmd)
	}
}

func TestMessageContext_SendGroupComponents(t *testing.T) {
	ctx, sent := groupContext(100, 1)
	var otherUin uint32
	var other [][]message.IMessageElement
	ctx.WithGroupSendFunc(func(groupUin uint32, elements []message.IMessageElement) (interface{}, error) {
		otherUin = groupUin
		other = append(other, elements)
		return nil, nil
	})

	reply := []autoat.Component{autoat.Mention("1")}
	if err := ctx.SendGroupComponents("100", reply); err != nil {
		t.Fatalf("same group: %v", err)
	}
	if len(*sent) != 1 || len(other) != 0 {
		t.Fatalf("same group should reply in place: sent=%d other=%d", len(*sent), len(other))
	}

	if err := ctx.SendGroupComponents("200", reply); err != nil {
		t.Fatalf("other group: %v", err)
	}
	if len(*sent) != 1 || len(other) != 1 || otherUin != 200 {
		t.Fatalf("other group: sent=%d other=%d uin=%d", len(*sent), len(other), otherUin)
	}

	if err := ctx.SendGroupComponents("not-a-group", reply); err == nil {
		t.Fatal("expected error for invalid group id")
	}
}

func TestMessageContext_SendGroupComponentsWithoutClient(t *testing.T) {
	ctx := privateContext(1)
	if err := ctx.SendGroupComponents("100", []autoat.Component{autoat.Text("hi")}); !errors.Is(err, ErrNoClient) {
		t.Fatalf("err = %v, want ErrNoClient", err)
	}
}

func TestEventBus_PublishAfterCloseIsDropped(t *testing.T) {
	bus := NewEventBus()
	var mu sync.Mutex
	calls := 0
	bus.Subscribe(EventTypeAutoAtReplied, func(context.Context, Event) error {
		mu.Lock()
		defer mu.Unlock()
		calls++
		return nil
	})

	if err := bus.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	bus.Publish(NewReplyEvent(autoat.ReplyRecord{}))
	if err := bus.PublishSync(NewReplyEvent(autoat.ReplyRecord{})); err != nil {
		t.Fatalf("PublishSync after close: %v", err)
	}
	bus.Wait()
	if err := bus.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if calls != 0 {
		t.Fatalf("handler ran %d times after close", calls)
	}
}

func TestEventBus_ConcurrentPublishAndClose(t *testing.T) {
	bus := NewEventBus()
	bus.Subscribe(EventTypeAutoAtReplied, func(context.Context, Event) error { return nil })

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				bus.Publish(NewReplyEvent(autoat.ReplyRecord{}))
			}
		}()
	}
	if err := bus.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	wg.Wait()
}
