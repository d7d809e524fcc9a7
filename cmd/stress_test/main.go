// Stress client: fires concurrent buy requests for the same listing at a
// running server and reports how the stock was split. With the listing
// seeded at initialStock, exactly that many requests should succeed and
// the final stock should be zero.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

const (
	serverURL     = "http://localhost:8080"
	characterID   = "stress-char"
	listingID     = "stress-listing"
	actorID       = "stress-player"
	totalRequests = 50
)

func main() {
	client := &http.Client{Timeout: 10 * time.Second}

	var successCount atomic.Int32
	var soldOutCount atomic.Int32
	var otherCount atomic.Int32
	var wg sync.WaitGroup

	start := time.Now()
	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			body, _ := json.Marshal(map[string]any{
				"request_id":   uuid.NewString(),
				"character_id": characterID,
				"listing_id":   listingID,
				"quantity":     1,
			})
			req, err := http.NewRequest(http.MethodPost, serverURL+"/api/trades/buy", bytes.NewReader(body))
			if err != nil {
				log.Printf("build request: %v", err)
				otherCount.Add(1)
				return
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("X-Actor-ID", actorID)
			req.Header.Set("X-Actor-Role", "player")

			resp, err := client.Do(req)
			if err != nil {
				log.Printf("request failed: %v", err)
				otherCount.Add(1)
				return
			}
			resp.Body.Close()

			switch resp.StatusCode {
			case http.StatusOK:
				successCount.Add(1)
			case http.StatusConflict:
				soldOutCount.Add(1)
			default:
				otherCount.Add(1)
			}
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)

	fmt.Printf("requests:  %d in %v\n", totalRequests, elapsed)
	fmt.Printf("succeeded: %d\n", successCount.Load())
	fmt.Printf("sold out:  %d\n", soldOutCount.Load())
	fmt.Printf("other:     %d\n", otherCount.Load())
}
