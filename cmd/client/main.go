package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"strings"
	"sync"

	client_api "github.com/humanbelnik/penaltydraw/internal/client/api"
	client_reconciler "github.com/humanbelnik/penaltydraw/internal/client/reconciler"
	client_reveal "github.com/humanbelnik/penaltydraw/internal/client/reveal"
	client_state "github.com/humanbelnik/penaltydraw/internal/client/state"
	"github.com/humanbelnik/penaltydraw/internal/model"
)

type Console struct {
	baseURL string
	webURL  string
	scanner *bufio.Scanner
	logger  *slog.Logger

	mu         sync.Mutex
	store      *client_state.Store
	reconciler *client_reconciler.Reconciler
	director   *client_reveal.Director
	stopPoll   context.CancelFunc
}

func NewConsole(baseURL, webURL string, scanner *bufio.Scanner) *Console {
	return &Console{
		baseURL: baseURL,
		webURL:  webURL,
		scanner: scanner,
		logger:  slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})),
	}
}

func (c *Console) prompt(label string) string {
	fmt.Print(label)
	if !c.scanner.Scan() {
		return ""
	}
	return strings.TrimSpace(c.scanner.Text())
}

func (c *Console) CreateRoom(ctx context.Context) error {
	raw := c.prompt("Participants, comma separated, host first: ")
	var names []string
	for _, name := range strings.Split(raw, ",") {
		names = append(names, strings.TrimSpace(name))
	}

	api := client_api.New(c.baseURL, names[0])
	created, err := api.CreateRoom(ctx, names)
	if err != nil {
		return err
	}

	fmt.Printf("Room %s created\n", created.RoomID)
	fmt.Printf("Share this link: %s\n", created.Link)
	return c.join(ctx, api, created.RoomID)
}

func (c *Console) JoinRoom(ctx context.Context) error {
	roomID := model.RoomID(strings.ToUpper(c.prompt("Room code: ")))
	name := c.prompt("Your name (empty to watch): ")
	return c.join(ctx, client_api.New(c.baseURL, name), roomID)
}

func (c *Console) join(ctx context.Context, api *client_api.Client, roomID model.RoomID) error {
	c.leave()

	store := client_state.NewStore()
	opts := []client_reconciler.Option{client_reconciler.WithLogger(c.logger)}
	if api.Name() != "" {
		opts = append(opts, client_reconciler.WithHostName(api.Name()))
	}
	rec := client_reconciler.New(api, store, roomID, opts...)
	director := client_reveal.NewDirector(rec.MediaConsumed, client_reveal.WithShow(c.show))
	store.OnChange(director.OnChange)
	store.OnChange(c.onChange)
	if err := rec.Join(ctx); err != nil {
		return err
	}

	pollCtx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.store, c.reconciler, c.director, c.stopPoll = store, rec, director, cancel
	c.mu.Unlock()

	go func() {
		if err := rec.Run(pollCtx); errors.Is(err, model.ErrRoomNotFound) {
			fmt.Println("\nThe room is gone.")
		}
	}()

	c.printState(store.State())
	return nil
}

func (c *Console) leave() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopPoll != nil {
		c.stopPoll()
	}
	if c.director != nil {
		c.director.Stop()
	}
	c.store, c.reconciler, c.director, c.stopPoll = nil, nil, nil, nil
}

func (c *Console) current() (*client_reconciler.Reconciler, *client_state.Store, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.reconciler == nil {
		return nil, nil, errors.New("join a room first")
	}
	return c.reconciler, c.store, nil
}

func (c *Console) StartDraw(ctx context.Context) error {
	rec, _, err := c.current()
	if err != nil {
		return err
	}

	kind := model.DrawKind(c.prompt("Reveal as image or video? [image]: "))
	if kind == "" {
		kind = model.DrawImage
	}
	if kind == model.DrawVideo {
		fmt.Println("Generating video, this may take a few minutes...")
	}

	result, err := rec.StartDraw(ctx, kind)
	if err != nil {
		return err
	}
	fmt.Println(model.ShareText(result.Loser, c.roomLink()))
	return nil
}

func (c *Console) PlayAgain(ctx context.Context) error {
	rec, _, err := c.current()
	if err != nil {
		return err
	}
	return rec.Retry(ctx)
}

func (c *Console) ShowState() error {
	_, store, err := c.current()
	if err != nil {
		return err
	}
	c.printState(store.State())
	return nil
}

func (c *Console) roomLink() string {
	_, store, err := c.current()
	if err != nil {
		return ""
	}
	return model.RoomLink(c.webURL, store.State().RoomID)
}

// onChange prints phase changes.
func (c *Console) onChange(prev, next client_state.State) {
	switch {
	case next.NotFound && !prev.NotFound:
		fmt.Println("\nRoom not found.")
	case prev.Phase() == next.Phase():
		if !slices.Equal(prev.Participants, next.Participants) {
			fmt.Printf("\nParticipants: %s\n", strings.Join(next.Participants, ", "))
		}
	case next.Phase() == model.PhaseRevealing:
		fmt.Println("\nThe draw is in!")
	case next.Phase() == model.PhaseRevealed:
		fmt.Printf("\n%s was selected!\n", next.Loser)
	case next.Phase() == model.PhaseWaiting:
		fmt.Println("\nThe room was reset, waiting for the host to draw.")
	}
}

// show prints the media of a new reveal.
func (c *Console) show(_ context.Context, presenter client_reveal.Presenter) {
	switch p := presenter.(type) {
	case *client_reveal.Video:
		fmt.Printf("\nVideo: %s\n", p.URL())
		// nothing to play in a terminal
		p.Ended()
	case *client_reveal.Carousel:
		for i, url := range p.Slides() {
			fmt.Printf("  [%d/%d] %s\n", i+1, p.Len(), url)
		}
	}
}

func (c *Console) printState(s client_state.State) {
	fmt.Printf("\nRoom %s [%s]\n", s.RoomID, s.Phase())
	fmt.Printf("Participants: %s\n", strings.Join(s.Participants, ", "))
	if s.IsHost {
		fmt.Println("You are the host.")
	}
	if s.Phase() == model.PhaseRevealed {
		fmt.Printf("Selected: %s\n", s.Loser)
	}
}

func main() {
	server := flag.String("server", "http://localhost:8080/api/v1", "room API base url")
	web := flag.String("web", "http://localhost:3000", "public web app url used in share links")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	scanner := bufio.NewScanner(os.Stdin)
	console := NewConsole(*server, *web, scanner)
	defer console.leave()

	for {
		fmt.Println("\n=== Penalty Draw ===")
		fmt.Println("1. Create room")
		fmt.Println("2. Join room")
		fmt.Println("3. Start draw (host)")
		fmt.Println("4. Play again (host)")
		fmt.Println("5. Show room")
		fmt.Println("0. Exit")
		fmt.Print("Choose: ")

		if !scanner.Scan() {
			break
		}

		var err error
		switch strings.TrimSpace(scanner.Text()) {
		case "1":
			err = console.CreateRoom(ctx)
		case "2":
			err = console.JoinRoom(ctx)
		case "3":
			err = console.StartDraw(ctx)
		case "4":
			err = console.PlayAgain(ctx)
		case "5":
			err = console.ShowState()
		case "0":
			fmt.Println("Bye!")
			return
		default:
			fmt.Println("Unknown choice")
		}
		if err != nil {
			fmt.Printf("Error: %v\n", err)
		}
	}
}
