// Package ethtest provides an in-memory wallet provider for tests.
package ethtest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"solarcredits-service/internal/chains/ethereum"
)

// Call is one recorded provider request.
type Call struct {
	Method string
	Params []interface{}
}

// HandlerFunc answers a provider method. The returned value is JSON round-tripped into the caller's result.
type HandlerFunc func(params []interface{}) (interface{}, error)

// Provider is a scriptable ethereum.Provider that records every request.
type Provider struct {
	mu       sync.Mutex
	handlers map[string]HandlerFunc
	calls    []Call
}

var _ ethereum.Provider = (*Provider)(nil)

func NewProvider() *Provider {
	return &Provider{handlers: make(map[string]HandlerFunc)}
}

// Handle sets the handler for a method.
func (p *Provider) Handle(method string, h HandlerFunc) *Provider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers[method] = h
	return p
}

// Return makes a method always answer with v.
func (p *Provider) Return(method string, v interface{}) *Provider {
	return p.Handle(method, func([]interface{}) (interface{}, error) { return v, nil })
}

// Fail makes a method always fail with err.
func (p *Provider) Fail(method string, err error) *Provider {
	return p.Handle(method, func([]interface{}) (interface{}, error) { return nil, err })
}

func (p *Provider) Request(ctx context.Context, result interface{}, method string, params ...interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	p.calls = append(p.calls, Call{Method: method, Params: params})
	h, ok := p.handlers[method]
	p.mu.Unlock()

	if !ok {
		return &ethereum.ProviderError{Code: ethereum.CodeMethodNotFound, Message: fmt.Sprintf("the method %s does not exist/is not available", method)}
	}

	v, err := h(params)
	if err != nil {
		return err
	}
	if result == nil || v == nil {
		return nil
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, result)
}

// Calls returns a copy of all recorded requests.
func (p *Provider) Calls() []Call {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Call(nil), p.calls...)
}

// Methods returns the recorded method names in order.
func (p *Provider) Methods() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.calls))
	for i, c := range p.calls {
		out[i] = c.Method
	}
	return out
}

// Count returns how many times method was requested.
func (p *Provider) Count(method string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, c := range p.calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// Reset forgets recorded calls, keeping handlers.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = nil
}
