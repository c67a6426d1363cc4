package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// loadgen seeds one item on a running server and hammers it with concurrent
// decrements to exercise the command path and to-do reconciliation.
func main() {
	serverURL := flag.String("server", "http://localhost:8080", "base URL of the pantry server")
	requests := flag.Int("n", 50, "number of decrement requests")
	flag.Parse()

	inventoryID := "loadgen"
	itemName := "loadgen-" + uuid.New().String()

	addBody, _ := json.Marshal(map[string]any{
		"inventory_id":              inventoryID,
		"name":                      itemName,
		"quantity":                  *requests,
		"auto_add_enabled":          true,
		"auto_add_to_list_quantity": 5,
		"todo_list":                 "loadgen-list",
	})
	resp, err := http.Post(*serverURL+"/api/items/add", "application/json", bytes.NewReader(addBody))
	if err != nil {
		log.Fatalf("failed to seed item: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Fatalf("failed to seed item: status %d", resp.StatusCode)
	}
	log.Printf("seeded item %s with quantity %d", itemName, *requests)

	decBody, _ := json.Marshal(map[string]any{
		"inventory_id": inventoryID,
		"name":         itemName,
		"amount":       1,
	})

	var successCount atomic.Int32
	var failCount atomic.Int32

	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < *requests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			resp, err := http.Post(*serverURL+"/api/items/decrement", "application/json", bytes.NewReader(decBody))
			if err == nil {
				resp.Body.Close()
			}
			if err == nil && resp.StatusCode == http.StatusOK {
				successCount.Add(1)
			} else {
				failCount.Add(1)
			}
		}()
	}

	wg.Wait()
	elapsed := time.Since(start)

	fmt.Printf("requests: %d\n", *requests)
	fmt.Printf("success:  %d\n", successCount.Load())
	fmt.Printf("failed:   %d\n", failCount.Load())
	fmt.Printf("elapsed:  %s\n", elapsed)
}
