// Command demo replays the write scenarios against a running server and
// prints what each one leaves behind in storage.
package main

import (
	"context"
	"flag"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Nystya/atomic-kv/repository/messaging"
	"github.com/dapr/kit/logger"
)

var log = logger.NewLogger("atomickv.demo")

func main() {
	addr := flag.String("addr", "127.0.0.1:5000", "server address")
	timeout := flag.Duration("timeout", 5*time.Second, "per request timeout")
	flag.Parse()

	client := messaging.NewStoreClient(&messaging.StoreClientConfig{ServerAddr: *addr}, log)
	if err := client.Connect(context.Background()); err != nil {
		log.Fatalf("Could not connect: %v", err)
	}
	defer client.Close()

	run := func(name string, fn func(ctx context.Context) error) {
		ctx, cancel := context.WithTimeout(context.Background(), *timeout)
		defer cancel()

		if err := client.Reset(ctx); err != nil {
			log.Fatalf("Could not reset: %v", err)
		}

		if err := fn(ctx); err != nil {
			log.Infof("%s returned: %v", name, err)
		}

		values, err := client.Read(ctx, "a", "b", "c")
		if err != nil {
			log.Fatalf("Could not read: %v", err)
		}

		log.Infof("%s left storage as %s", name, format(values))
	}

	run("write/awaited", client.WriteAwaited)
	run("write/non-atomic", client.WriteNonAtomic)
	run("write/atomic", func(ctx context.Context) error {
		result, err := client.WriteAtomic(ctx)
		if err != nil {
			return err
		}
		log.Infof("write/atomic: tx %s %s (%s)", result.TxID, result.Status, result.Reason)
		return nil
	})
	run("transact with invalid value", func(ctx context.Context) error {
		result, err := client.Transact(ctx, []string{"a", "b", "c"}, []interface{}{"1", nil, "2"}, false)
		if err != nil {
			return err
		}
		log.Infof("transact: tx %s %s (%s)", result.TxID, result.Status, result.Reason)
		return nil
	})
	run("transact", func(ctx context.Context) error {
		result, err := client.Transact(ctx, []string{"a", "b", "c"}, []interface{}{"1", "2", "3"}, false)
		if err != nil {
			return err
		}
		log.Infof("transact: tx %s %s", result.TxID, result.Status)
		return nil
	})
}

func format(values map[string]*string) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if values[k] == nil {
			parts = append(parts, k+": absent")
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %q", k, *values[k]))
	}

	return "{" + strings.Join(parts, ", ") + "}"
}
