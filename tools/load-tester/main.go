// Command load-tester drives concurrent room-name checks against the API and
// reports how many were answered, rate limited or failed.
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jessevdk/go-flags"
	"golang.org/x/time/rate"
)

// Options are the load tester's flags.
type Options struct {
	URL         string        `short:"u" long:"url" default:"http://localhost:8080/api/rooms/check-name" description:"check-name endpoint"`
	Token       string        `short:"t" long:"token" env:"YAPLI_TOKEN" description:"session token" required:"true"`
	Concurrency int           `short:"c" long:"concurrency" default:"10" description:"number of concurrent workers"`
	Duration    time.Duration `short:"d" long:"duration" default:"30s" description:"duration of the load test"`
	RPS         int           `long:"rps" default:"100" description:"requests per second limit"`
	Taken       string        `long:"taken" default:"General" description:"title every tenth request checks, expected to be taken"`
}

func main() {
	options := &Options{}
	if _, err := flags.Parse(options); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return
		}
		os.Exit(1)
	}

	log.Printf("Starting load test on %s", options.URL)
	log.Printf("Concurrency: %d, Duration: %s, RPS: %d", options.Concurrency, options.Duration, options.RPS)

	var wg sync.WaitGroup
	var okCount, limitedCount, errorCount atomic.Int64
	ctx, cancel := context.WithTimeout(context.Background(), options.Duration)
	defer cancel()

	limiter := rate.NewLimiter(rate.Limit(options.RPS), options.Concurrency)

	for i := 0; i < options.Concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			client := &http.Client{
				Timeout: 5 * time.Second,
			}

			for n := 0; ; n++ {
				if err := limiter.Wait(ctx); err != nil {
					return // Deadline reached
				}

				title := fmt.Sprintf("load %d %s", workerID, uuid.NewString()[:8])
				if n%10 == 0 {
					title = options.Taken
				}
				payload := fmt.Sprintf(`{"title": %q}`, title)

				req, err := http.NewRequestWithContext(ctx, http.MethodPost, options.URL, bytes.NewBufferString(payload))
				if err != nil {
					continue // Should not happen
				}
				req.Header.Set("Content-Type", "application/json")
				req.Header.Set("Authorization", "Bearer "+options.Token)

				resp, err := client.Do(req)
				if err != nil {
					if ctx.Err() == nil {
						errorCount.Add(1)
					}
					continue
				}

				switch resp.StatusCode {
				case http.StatusOK:
					okCount.Add(1)
				case http.StatusTooManyRequests:
					limitedCount.Add(1)
				default:
					errorCount.Add(1)
				}
				resp.Body.Close()
			}
		}(i)
	}

	wg.Wait()

	totalRequests := okCount.Load() + limitedCount.Load() + errorCount.Load()
	actualRPS := float64(totalRequests) / options.Duration.Seconds()

	log.Println("Load test finished.")
	log.Printf("Total Requests: %d", totalRequests)
	log.Printf("Answered (200 OK): %d", okCount.Load())
	log.Printf("Rate limited (429): %d", limitedCount.Load())
	log.Printf("Errors: %d", errorCount.Load())
	log.Printf("Actual RPS: %.2f", actualRPS)
}
