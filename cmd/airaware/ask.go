package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/mattjoyce/airaware/internal/chat"
)

func runAsk(args []string) error {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	var flags clientFlags
	flags.register(fs)
	render := fs.Bool("render", false, "render the finished answer as markdown instead of streaming it")
	if err := fs.Parse(args); err != nil {
		return err
	}
	question := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if question == "" {
		return fmt.Errorf("usage: airaware ask [flags] <question>")
	}

	sess, err := flags.open()
	if err != nil {
		return err
	}
	defer sess.close()

	ctx, cancel := context.WithTimeout(context.Background(), sess.cfg.RequestTimeout)
	defer cancel()

	loc, err := sess.locator.Load(ctx, sess.cfg.City)
	if err != nil {
		return err
	}
	conv := chat.NewConversation(sess.client, sess.mode, loc, sess.logger)

	var out io.Writer = os.Stdout
	if *render {
		out = io.Discard
	}
	conv.SetObserver(replyPrinter(out))

	if err := conv.Send(ctx, question); err != nil {
		return err
	}
	reply := lastAssistant(conv.Turns())
	if !*render {
		fmt.Fprintln(os.Stdout)
		return nil
	}
	rendered, err := renderMarkdown(reply, 80)
	if err != nil {
		fmt.Fprintln(os.Stdout, reply)
		return nil
	}
	fmt.Fprint(os.Stdout, rendered)
	return nil
}

// replyPrinter writes the assistant reply to w as it grows. Error turns are
// left to the caller.
func replyPrinter(w io.Writer) chat.Observer {
	written := 0
	return func(s chat.Snapshot) {
		if len(s.Turns) < 2 {
			return
		}
		reply := s.Turns[1]
		if reply.Role != chat.RoleAssistant || strings.HasPrefix(reply.Content, chat.ErrorMarker) {
			return
		}
		if len(reply.Content) > written {
			_, _ = io.WriteString(w, reply.Content[written:])
			written = len(reply.Content)
		}
	}
}

func lastAssistant(turns []chat.Turn) string {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == chat.RoleAssistant {
			return turns[i].Content
		}
	}
	return ""
}

func renderMarkdown(content string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return r.Render(content)
}
