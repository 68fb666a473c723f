package runner

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestGroupReportsFirstResult(t *testing.T) {
	var g Group
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	boom := errors.New("boom")
	g.Go(ctx, "failing", func(ctx context.Context) error { return boom })
	g.Go(ctx, "blocking", func(ctx context.Context) error { <-ctx.Done(); return nil })

	select {
	case r := <-g.Done():
		if r.Name != "failing" || !errors.Is(r.Err, boom) {
			t.Fatalf("unexpected result: %+v", r)
		}
	case <-time.After(time.Second):
		t.Fatalf("no result")
	}
	cancel()
	g.Wait()
}
