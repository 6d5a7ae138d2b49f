package requestctx

import (
	"context"
	"testing"
)

func TestActorFromContextRoundTrip(t *testing.T) {
	ctx := WithActor(context.Background(), Actor{Username: "cusac", Role: "operator"})
	got, ok := ActorFromContext(ctx)
	if !ok {
		t.Fatal("expected actor in context")
	}
	if got.Username != "cusac" || got.Role != "operator" {
		t.Fatalf("actor = %+v, want cusac/operator", got)
	}
}

func TestActorFromContextEmpty(t *testing.T) {
	if _, ok := ActorFromContext(context.Background()); ok {
		t.Fatal("expected no actor")
	}
}

func TestActorFromContextNil(t *testing.T) {
	if _, ok := ActorFromContext(nil); ok {
		t.Fatal("expected no actor for nil context")
	}
}

func TestWithActorNilContext(t *testing.T) {
	ctx := WithActor(nil, Actor{Username: "ver", Role: "viewer"})
	if ctx == nil {
		t.Fatal("expected non-nil context")
	}
	if got := ActorOrSystem(ctx); got.Username != "ver" {
		t.Fatalf("ActorOrSystem = %+v, want ver", got)
	}
}

func TestActorOrSystemFallsBack(t *testing.T) {
	if got := ActorOrSystem(context.Background()); got != SystemActor {
		t.Fatalf("ActorOrSystem = %+v, want %+v", got, SystemActor)
	}
}
