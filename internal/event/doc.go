/*
Package event provides a type-safe pub/sub event system for the broker.

The event system enables decoupled communication between internal components
(editor host, LSP clients, debug session broker, editing surface) without
direct dependencies between them.

# Architecture

The package is built on top of watermill's gochannel for infrastructure while
maintaining direct-call semantics to preserve type information. It provides
both synchronous and asynchronous event publishing patterns.

# Event Types

Buffer Events:
  - buffer.changed: An editing-surface operation changed a buffer's content
    or modified state.

Diagnostics Events:
  - diagnostics.published: A language server pushed a new diagnostics set
    for a file.

LSP Client Events:
  - lsp_client.ready: A language client's readiness probe resolved with a
    non-empty answer.
  - lsp_client.failed: A language client's readiness probe failed.

Debug Session Events:
  - debug_session.state_changed: A debug session transitioned status
    (running/paused/terminated/exited).
  - debug_session.evicted: The retention sweeper dropped a terminated
    session past its TTL.

# Basic Usage

Publishing events:

	// Asynchronous publishing (non-blocking)
	event.Publish(event.Event{
		Type: event.BufferChanged,
		Data: event.BufferChangedData{Path: path, Modified: true},
	})

	// Synchronous publishing (blocking until all subscribers complete)
	event.PublishSync(event.Event{
		Type: event.DebugSessionStateChanged,
		Data: event.DebugSessionStateChangedData{SessionID: id, Status: "paused"},
	})

Subscribing to specific events:

	unsubscribe := event.Subscribe(event.DiagnosticsPublished, func(e event.Event) {
		data := e.Data.(event.DiagnosticsPublishedData)
		log.Info("diagnostics published", "file", data.File, "count", len(data.Diagnostics))
	})
	defer unsubscribe()

Subscribing to all events:

	unsubscribe := event.SubscribeAll(func(e event.Event) {
		log.Debug("event received", "type", e.Type)
	})
	defer unsubscribe()

# Subscriber Safety Guidelines

When using PublishSync, subscribers are called synchronously in the
publisher's goroutine. To avoid blocking or deadlocks, subscribers MUST:

  - Complete quickly (avoid long-running operations)
  - Use non-blocking channel sends (select with default case)
  - Never call Publish/PublishSync from within a subscriber (no re-entrant publishing)
  - Never acquire locks that the publisher might hold

# Custom Event Bus

For testing or isolation, create custom bus instances:

	bus := event.NewBus()
	defer bus.Close()

	unsubscribe := bus.Subscribe(event.BufferChanged, handler)
	bus.PublishSync(event.Event{Type: event.BufferChanged, Data: data})

# Testing

	// Reset global bus state (use in test cleanup)
	event.Reset()

# Thread Safety

The event bus is thread-safe and can be used concurrently from multiple
goroutines. Both publishing and subscribing operations are protected by
internal synchronization.

# Integration with Watermill

The package uses watermill's gochannel internally, providing access to the
underlying pubsub infrastructure for advanced use cases:

	pubsub := event.PubSub()
	// Use watermill features like middleware, routing, etc.
*/
package event
