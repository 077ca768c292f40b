// Package clientengine provides the client execution layer of the
// key-value driver.
//
// Every command issued through a Client runs through a single pipeline:
// key prefixing, interceptor Before hooks, the dispatch itself (or a
// substitute supplied by an interceptor), interceptor After hooks, and an
// optional trace notification. When no interceptor, subscriber, or
// observability collector is configured, a call degenerates to the bare
// dispatch with no timing or allocation overhead.
//
// Key features:
//   - Multiple dispatcher backends (PGX, SQL, SQLX, or any kvdriver.Dispatcher)
//   - Per-call interceptors with Before/After stages and outcome substitution
//   - Synchronous post-call trace notifications (host, elapsed, command, result)
//   - Configurable key prefixing, read-only mode, and wire codec
//   - Optional logging, metrics, and tracing via the kvdriver contracts
//
// Usage examples:
//
//	// Basic usage
//	pool, _ := pgxpool.New(context.Background(), dsn)
//	client, _ := clientengine.NewClientFromPGXPool(pool)
//	defer client.Close()
//
//	err := client.Set(ctx, "user:1", 42)
//	n, err := clientengine.GetAs[int](ctx, client, "user:1")
//
//	// With a key prefix and operational logging
//	client, _ := clientengine.NewClientFromPGXPool(
//		pool,
//		clientengine.WithKeyPrefix("myapp:"),
//		clientengine.WithLogger(logger),
//	)
//
//	// Observing completed calls
//	id := client.SubscribeTraces(func(trace kvdriver.CommandTrace) {
//		fmt.Printf("%s %s (%v) -> %s\n", trace.Host, trace.Command, trace.Elapsed, trace.Result)
//	})
//	defer client.UnsubscribeTraces(id)
package clientengine
