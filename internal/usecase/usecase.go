package usecase

import (
	"context"
	"log"
	"time"
)

// UseCase represents application use cases having input I and output O.
type UseCase[I any, O any] interface {
	Execute(ctx context.Context, in *I) (*O, error)
}

type logged[I any, O any] struct {
	name string
	next UseCase[I, O]
}

// Logged wraps uc so every call logs its name, outcome and duration.
func Logged[I any, O any](name string, uc UseCase[I, O]) UseCase[I, O] {
	return &logged[I, O]{name: name, next: uc}
}

func (l *logged[I, O]) Execute(ctx context.Context, in *I) (*O, error) {
	start := time.Now()
	out, err := l.next.Execute(ctx, in)
	if err != nil {
		log.Printf("[usecase] %s failed after %v: %v", l.name, time.Since(start), err)
		return nil, err
	}
	log.Printf("[usecase] %s done in %v", l.name, time.Since(start))
	return out, nil
}
