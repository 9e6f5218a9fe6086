// Command roomcheck drives the debounced room-name validator from a terminal.
// Every stdin line replaces the current input, as if the user had typed it.
// The line "/create" submits the current input when the validator allows it.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"

	"github.com/V4T54L/yapli/internal/client"
	"github.com/V4T54L/yapli/internal/domain"
	"github.com/V4T54L/yapli/internal/pkg/logger"
)

const createCommand = "/create"

// Options are the roomcheck command's flags.
type Options struct {
	URL      string        `short:"u" long:"url" env:"YAPLI_URL" default:"http://localhost:8080" description:"chat api base url"`
	Token    string        `short:"t" long:"token" env:"YAPLI_TOKEN" description:"session token"`
	Email    string        `short:"e" long:"email" env:"YAPLI_EMAIL" description:"log in with this email when no token is given"`
	Password string        `short:"p" long:"password" env:"YAPLI_PASSWORD" description:"password for --email"`
	Debounce time.Duration `short:"d" long:"debounce" default:"500ms" description:"debounce window"`
	Create   bool          `short:"c" long:"create" description:"create the room for the final input when allowed"`
	Wait     time.Duration `long:"wait" default:"10s" description:"how long to wait for the final check at end of input"`
	LogLevel string        `long:"log-level" env:"LOG_LEVEL" default:"warn" description:"log level"`
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return
		}
		fmt.Fprintln(os.Stderr, "roomcheck:", err)
		os.Exit(1)
	}
}

func run(args []string, in io.Reader, out io.Writer) error {
	_ = godotenv.Load()

	options := &Options{}
	if _, err := flags.ParseArgs(options, args); err != nil {
		return err
	}
	log := logger.New(options.LogLevel)
	out = &syncWriter{w: out}

	ctx := context.Background()
	api := client.New(options.URL, options.Token, nil)
	if options.Token == "" {
		if options.Email == "" {
			return errors.New("either --token or --email is required")
		}
		token, err := api.Login(ctx, options.Email, options.Password)
		if err != nil {
			return fmt.Errorf("login: %s", client.ErrorMessage(err))
		}
		api = api.WithToken(token)
	}

	settled := make(chan client.Snapshot, 64)
	validator := client.NewValidator(api,
		client.WithDebounce(options.Debounce),
		client.WithLogger(log),
		client.WithOnChange(func(s client.Snapshot) {
			printSnapshot(out, s)
			if s.State != client.Checking {
				select {
				case settled <- s:
				default:
				}
			}
		}),
	)

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == createCommand {
			submit(ctx, out, api, validator)
			continue
		}
		validator.OnInputChange(line)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	final := domain.TrimTitle(validator.Snapshot().Input)
	if final == "" {
		return nil
	}
	if !waitForCheck(validator, settled, final, options.Wait) {
		return fmt.Errorf("no answer for %q within %s", final, options.Wait)
	}
	if options.Create {
		submit(ctx, out, api, validator)
	}
	return nil
}

// snapshotter exposes the validator's current state.
type snapshotter interface {
	Snapshot() client.Snapshot
}

// waitForCheck blocks until the validator has answered title with no check
// scheduled or in flight. Transitions queued on settled only wake the wait;
// the decision is always made on a fresh snapshot, so an answer to an earlier
// check of the same title cannot end it.
func waitForCheck(v snapshotter, settled <-chan client.Snapshot, title string, wait time.Duration) bool {
	deadline := time.After(wait)
	for {
		if s := v.Snapshot(); s.Title == title && !s.Pending && s.State != client.Checking && s.State != client.Idle {
			return true
		}
		select {
		case <-settled:
		case <-deadline:
			return false
		}
	}
}

func submit(ctx context.Context, out io.Writer, api *client.Client, validator *client.Validator) {
	if !validator.CanSubmit() {
		fmt.Fprintln(out, "create: not allowed in the current state")
		return
	}
	title := domain.TrimTitle(validator.Snapshot().Input)
	room, err := api.CreateRoom(ctx, title)
	if err != nil {
		fmt.Fprintf(out, "create: %s\n", client.ErrorMessage(err))
		return
	}
	fmt.Fprintf(out, "created %q at /%s\n", room.Title, room.RoomURL)
	validator.Reset()
}

func printSnapshot(out io.Writer, s client.Snapshot) {
	switch {
	case s.Message != "":
		fmt.Fprintf(out, "[%s] %q: %s\n", s.State, s.Title, s.Message)
	case s.State == client.Idle:
		fmt.Fprintf(out, "[%s]\n", s.State)
	default:
		fmt.Fprintf(out, "[%s] %q\n", s.State, s.Title)
	}
}

// syncWriter serializes writes from the validator's timer goroutine and the
// input loop.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
