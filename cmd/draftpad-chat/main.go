// Command draftpad-chat is a terminal client for the draftpad AI
// assistant: log in, pick a document, and chat about it with streamed
// replies.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/openscribe/draftpad/pkg/chat"
)

var (
	serverURL = flag.String("server", "http://localhost:3001", "draftpad server URL")
	username  = flag.String("user", "", "username")
	password  = flag.String("password", "", "password")
	register  = flag.Bool("register", false, "create the account instead of logging in")
)

func main() {
	flag.Parse()

	if *username == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "usage: draftpad-chat -user NAME -password PASS [-server URL] [-register]")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := chat.NewClient(*serverURL)

	var err error
	if *register {
		_, err = client.Register(ctx, *username, *password)
	} else {
		_, err = client.Login(ctx, *username, *password)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "auth failed: %v\n", err)
		os.Exit(1)
	}

	doc, err := pickDocument(ctx, client)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Chatting about %q. Type a question, /cancel to abort a reply, /quit to exit.\n\n", doc.Title)

	controller := chat.NewController(client)
	echo := &replyPrinter{}
	controller.OnUpdate = func(s chat.State) {
		if s == chat.StateStreaming || s == chat.StateErrored {
			echo.print(controller)
		}
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/quit":
			controller.Cancel()
			return
		case line == "/cancel":
			controller.Cancel()
			fmt.Println("(cancelled)")
			continue
		}

		if err := controller.Send(ctx, doc.Content, line); err != nil {
			if errors.Is(err, chat.ErrSessionBusy) {
				fmt.Println("(still answering, /cancel first)")
				continue
			}
			fmt.Fprintf(os.Stderr, "send failed: %v\n", err)
			continue
		}
		controller.Wait()
		fmt.Println()
	}
}

// replyPrinter echoes the growing assistant reply incrementally,
// printing only the tail that has not been written yet.
type replyPrinter struct {
	turn    int
	written int
}

func (p *replyPrinter) print(c *chat.Controller) {
	turns := c.Transcript().Snapshot()
	if len(turns) == 0 {
		return
	}
	last := turns[len(turns)-1]
	if last.Role != chat.RoleAssistant {
		return
	}
	if len(turns) != p.turn {
		p.turn = len(turns)
		p.written = 0
	}
	if p.written < len(last.Text) {
		fmt.Print(last.Text[p.written:])
		p.written = len(last.Text)
	}
}

func pickDocument(ctx context.Context, client *chat.Client) (*chat.Document, error) {
	docs, err := client.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	if len(docs) == 0 {
		return nil, errors.New("no documents yet; create one first")
	}

	fmt.Println("Documents:")
	for i, d := range docs {
		fmt.Printf("  %d. %s\n", i+1, d.Title)
	}
	fmt.Print("Pick one: ")

	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return nil, errors.New("no selection")
	}
	n, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil || n < 1 || n > len(docs) {
		return nil, errors.New("invalid selection")
	}

	return client.GetDocument(ctx, docs[n-1].ID)
}
