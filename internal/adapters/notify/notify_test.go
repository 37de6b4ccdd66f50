package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	perr "contestwatch/internal/platform/errors"
	"contestwatch/internal/platform/testkit"
	"contestwatch/internal/services/contest/domain"

	"github.com/redis/go-redis/v9"
)

func ev(kind domain.EventKind, title string) domain.Event {
	return domain.Event{Kind: kind, Title: title, SessionID: "s1", At: time.Unix(0, 0).UTC()}
}

type recorder struct {
	mu  sync.Mutex
	got []domain.Event
}

func (r *recorder) Notify(_ context.Context, e domain.Event) {
	r.mu.Lock()
	r.got = append(r.got, e)
	r.mu.Unlock()
}

func TestFanout_DeliversToEverySink(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	f := Fanout{a, nil, b, NewLog()}
	f.Notify(context.Background(), ev(domain.EventStarted, "Monitoring Started"))
	f.Notify(context.Background(), ev(domain.EventFetchFailed, "Error"))

	if len(a.got) != 2 || len(b.got) != 2 {
		t.Fatalf("a=%d b=%d", len(a.got), len(b.got))
	}
	if b.got[1].Kind != domain.EventFetchFailed {
		t.Fatalf("order lost: %+v", b.got)
	}
}

func TestFeed_RingNewestFirst(t *testing.T) {
	f := NewFeed(3)
	if len(f.Recent(0)) != 0 {
		t.Fatal("new feed must be empty")
	}
	for i := range 5 {
		f.Notify(context.Background(), ev(domain.EventStarted, fmt.Sprintf("e%d", i)))
	}
	got := f.Recent(0)
	if len(got) != 3 || got[0].Title != "e4" || got[1].Title != "e3" || got[2].Title != "e2" {
		t.Fatalf("recent = %+v", got)
	}
	if got := f.Recent(2); len(got) != 2 || got[1].Title != "e3" {
		t.Fatalf("limited = %+v", got)
	}
	if got := f.Recent(10); len(got) != 3 {
		t.Fatalf("over limit = %d", len(got))
	}
}

func TestFeed_PartialAndDefaultSize(t *testing.T) {
	f := NewFeed(0)
	if len(f.buf) != DefaultFeedSize {
		t.Fatalf("default size = %d", len(f.buf))
	}
	f.Notify(context.Background(), ev(domain.EventStarted, "a"))
	f.Notify(context.Background(), ev(domain.EventStopped, "b"))
	got := f.Recent(0)
	if len(got) != 2 || got[0].Title != "b" || got[1].Title != "a" {
		t.Fatalf("recent = %+v", got)
	}
}

type fakePub struct {
	mu      sync.Mutex
	channel string
	payload []byte
	err     error
	ctxErr  error
}

func (p *fakePub) Publish(ctx context.Context, channel string, message any) *redis.IntCmd {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.channel = channel
	p.payload, _ = message.([]byte)
	p.ctxErr = ctx.Err()
	cmd := redis.NewIntCmd(ctx)
	if p.err != nil {
		cmd.SetErr(p.err)
	} else {
		cmd.SetVal(1)
	}
	return cmd
}

func TestRedis_PublishesJSON(t *testing.T) {
	pub := &fakePub{}
	r := NewRedis(pub, "")

	// a cancelled caller context must not stop the publish
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r.Notify(ctx, ev(domain.EventWinnerFound, "Winner Found!"))

	if pub.channel != DefaultChannel {
		t.Fatalf("channel = %q", pub.channel)
	}
	if pub.ctxErr != nil {
		t.Fatalf("publish ran with a done context: %v", pub.ctxErr)
	}
	var got domain.Event
	if err := json.Unmarshal(pub.payload, &got); err != nil {
		t.Fatalf("payload not JSON: %v", err)
	}
	if got.Kind != domain.EventWinnerFound || got.SessionID != "s1" {
		t.Fatalf("payload = %+v", got)
	}
	if err := r.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestRedis_PublishErrorIsSwallowed(t *testing.T) {
	pub := &fakePub{err: errors.New("connection refused")}
	r := NewRedis(pub, "custom")
	r.Notify(context.Background(), ev(domain.EventStopped, "Monitoring Stopped"))
	if pub.channel != "custom" {
		t.Fatalf("channel = %q", pub.channel)
	}
}

func TestDialRedis_BadURL(t *testing.T) {
	_, err := DialRedis(context.Background(), "not-a-url", "")
	testkit.MustCode(t, err, perr.ErrorCodeInvalidArgument)
}
