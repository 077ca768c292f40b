// Demo wires the key-value client to a local Postgres instance and runs a
// few commands with command tracing enabled. It expects the demo database
// from example/config to be reachable and the key-value table to exist:
//
//	CREATE TABLE IF NOT EXISTS keyvalue (
//	    key        TEXT PRIMARY KEY,
//	    value      BYTEA NOT NULL,
//	    expires_at TIMESTAMPTZ
//	);
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/AntonStoeckl/keyvalue-driver-go/example/config"
	"github.com/AntonStoeckl/keyvalue-driver-go/kvdriver"
	"github.com/AntonStoeckl/keyvalue-driver-go/kvdriver/clientengine"
)

func main() {
	db := config.PostgresSQLDBDemoConfig()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	client, err := clientengine.NewClientFromSQLDB(
		db,
		clientengine.WithKeyPrefix("demo:"),
		clientengine.WithLogger(logger),
	)
	if err != nil {
		log.Fatal("Failed to create client, error: ", err)
	}
	defer client.Close()

	subscriptionID := client.SubscribeTraces(func(trace kvdriver.CommandTrace) {
		fmt.Printf("[trace] host=%s elapsed=%s command=%q result=%q\n",
			trace.Host, trace.Elapsed, trace.Command, trace.Result)
	})
	defer client.UnsubscribeTraces(subscriptionID)

	ctx := context.Background()

	if err := client.Ping(ctx); err != nil {
		log.Fatal("Ping failed, error: ", err)
	}

	if err := client.Set(ctx, "greeting", "hello world"); err != nil {
		log.Fatal("Set failed, error: ", err)
	}

	greeting, err := clientengine.GetAs[string](ctx, client, "greeting")
	if err != nil {
		log.Fatal("Get failed, error: ", err)
	}
	fmt.Println("greeting:", greeting)

	if err := client.SetWithTTL(ctx, "session", 42, time.Minute); err != nil {
		log.Fatal("SetWithTTL failed, error: ", err)
	}

	remaining, err := client.TTL(ctx, "session")
	if err != nil {
		log.Fatal("TTL failed, error: ", err)
	}
	fmt.Println("session expires in:", remaining)

	keys, err := client.Keys(ctx, "*")
	if err != nil {
		log.Fatal("Keys failed, error: ", err)
	}
	fmt.Println("keys:", keys)

	deleted, err := client.Del(ctx, "greeting", "session")
	if err != nil {
		log.Fatal("Del failed, error: ", err)
	}
	fmt.Println("deleted:", deleted)
}
