package eventbus

import (
	"reflect"
	"sync"
)

// Handler is a function that handles an event
type Handler func(event interface{})

// EventBus provides in-process pub/sub, keyed by event type. The ledger
// publishes domain events on it; forwarders (NATS, persistence, metrics)
// subscribe.
type EventBus struct {
	handlers map[reflect.Type][]Handler
	mu       sync.RWMutex
}

// New creates a new EventBus
func New() *EventBus {
	return &EventBus{
		handlers: make(map[reflect.Type][]Handler),
	}
}

// Subscribe registers a handler for a specific event type
func (e *EventBus) Subscribe(eventType interface{}, handler Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()

	t := reflect.TypeOf(eventType)
	e.handlers[t] = append(e.handlers[t], handler)
}

// SubscribeFunc registers a typed handler function
// The handler function should have the signature: func(EventType)
func (e *EventBus) SubscribeFunc(handler interface{}) {
	handlerValue := reflect.ValueOf(handler)
	handlerType := handlerValue.Type()

	if handlerType.Kind() != reflect.Func {
		panic("handler must be a function")
	}

	if handlerType.NumIn() != 1 {
		panic("handler must have exactly one argument")
	}

	eventType := handlerType.In(0)

	e.mu.Lock()
	defer e.mu.Unlock()

	wrappedHandler := func(event interface{}) {
		eventValue := reflect.ValueOf(event)
		if eventValue.Type().AssignableTo(eventType) {
			handlerValue.Call([]reflect.Value{eventValue})
		} else if eventValue.Type().Kind() == reflect.Ptr && eventValue.Elem().Type().AssignableTo(eventType) {
			handlerValue.Call([]reflect.Value{eventValue.Elem()})
		}
	}

	e.handlers[eventType] = append(e.handlers[eventType], wrappedHandler)
}

// Publish publishes an event asynchronously to all subscribers
func (e *EventBus) Publish(event interface{}) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, handler := range e.match(event) {
		go handler(event)
	}
}

// PublishSync publishes an event synchronously to all subscribers, in
// subscription order. The ledger uses this after each committed operation so
// observers see events in the ledger's total order.
func (e *EventBus) PublishSync(event interface{}) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, handler := range e.match(event) {
		handler(event)
	}
}

// match collects handlers for the event's type, dereferencing pointers so a
// *T publish reaches T subscribers. Caller holds at least the read lock.
func (e *EventBus) match(event interface{}) []Handler {
	eventType := reflect.TypeOf(event)

	handlers := append([]Handler(nil), e.handlers[eventType]...)
	if eventType.Kind() == reflect.Ptr {
		handlers = append(handlers, e.handlers[eventType.Elem()]...)
	}
	return handlers
}

// HasSubscribers returns true if there are subscribers for the event type
func (e *EventBus) HasSubscribers(eventType interface{}) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	t := reflect.TypeOf(eventType)
	handlers, ok := e.handlers[t]
	return ok && len(handlers) > 0
}

// SubscriberCount returns the number of subscribers for an event type
func (e *EventBus) SubscriberCount(eventType interface{}) int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	t := reflect.TypeOf(eventType)
	return len(e.handlers[t])
}
