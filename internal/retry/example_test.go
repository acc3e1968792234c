package retry_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fastreact/console/internal/retry"
)

var errNotConnected = errors.New("not connected")

// Example demonstrates waiting for a condition with exponential backoff.
func Example() {
	cfg := retry.Config{
		MaxRetries:     3,
		InitialBackoff: 10 * time.Millisecond,
		MaxBackoff:     100 * time.Millisecond,
	}

	attempt := 0
	err := retry.Do(context.Background(), cfg, func() error {
		attempt++
		if attempt < 3 {
			return errNotConnected
		}
		return nil
	}, func(err error) bool {
		return errors.Is(err, errNotConnected)
	})

	if err != nil {
		fmt.Printf("Failed: %v\n", err)
	} else {
		fmt.Printf("Connected after %d attempts\n", attempt)
	}
	// Output: Connected after 3 attempts
}

// ExampleTable shows the reconnect delay sequence for consecutive drops.
func ExampleTable() {
	table := retry.Table{time.Second, 2 * time.Second, 5 * time.Second, 10 * time.Second}

	for attempt := 0; attempt < 6; attempt++ {
		fmt.Println(table.Delay(attempt))
	}
	// Output:
	// 1s
	// 2s
	// 5s
	// 10s
	// 10s
	// 10s
}
