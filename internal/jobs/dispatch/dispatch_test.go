package dispatch

import (
	"context"
	"errors"
	"testing"

	outboxsvc "github.com/zus-pop/rizz-backend-sub002/internal/services/outbox"
)

type delivererStub struct {
	stats outboxsvc.Stats
	err   error
	calls int
}

func (s *delivererStub) DeliverPending(context.Context) (outboxsvc.Stats, error) {
	s.calls++
	return s.stats, s.err
}

func TestRunInvokesDeliverer(t *testing.T) {
	stub := &delivererStub{stats: outboxsvc.Stats{Delivered: 2}}
	job := New(stub, nil)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if stub.calls != 1 {
		t.Fatalf("expected one delivery pass, got %d", stub.calls)
	}
}

func TestRunWrapsDelivererError(t *testing.T) {
	cause := errors.New("pool exhausted")
	job := New(&delivererStub{err: cause}, nil)

	err := job.Run(context.Background())
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
}

func TestRunWithoutDelivererIsNoop(t *testing.T) {
	job := New(nil, nil)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
}
