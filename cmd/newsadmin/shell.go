package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/and161185/newsadmin/internal/metrics"
	"github.com/and161185/newsadmin/internal/server"
	"github.com/and161185/newsadmin/internal/session"
)

func shellCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Run commands interactively with session expiry checks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.interactive {
				return errors.New("already in a shell")
			}
			a.interactive = true
			defer func() { a.interactive = false }()
			return a.shell(cmd.Context())
		},
	}
}

func (a *app) shell(ctx context.Context) error {
	w := session.NewWatcher(a.coord.Auth, a.cfg.Session.CheckInterval, a.log)
	w.OnExpire(func() { fmt.Fprintf(a.errw, "session ended, sign in with: login -e <email>\n") })
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()

	if addr := a.cfg.Metrics.Addr; addr != "" {
		srv := server.New(addr, metricsMux(a), a.log)
		srv.Start()
		defer srv.Stop()
	}

	for {
		fmt.Fprint(a.out, "newsadmin> ")
		line, err := a.in.ReadLine()
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(a.out)
			return nil
		}
		if err != nil {
			return err
		}
		args, err := splitArgs(line)
		if err != nil {
			fmt.Fprintln(a.errw, "error:", err)
			continue
		}
		if len(args) == 0 {
			continue
		}
		switch args[0] {
		case "exit", "quit":
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		r := buildRoot(a)
		r.SetArgs(args)
		if err := r.ExecuteContext(ctx); err != nil {
			var rep reportedError
			if !errors.As(err, &rep) {
				fmt.Fprintln(a.errw, "error:", err)
			}
		}
	}
}

func metricsMux(a *app) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(a.registry))
	return mux
}

// splitArgs splits a shell line on blanks. Single or double quotes group words.
func splitArgs(line string) ([]string, error) {
	var (
		args  []string
		cur   strings.Builder
		quote rune
		inArg bool
	)
	for _, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
				continue
			}
			cur.WriteRune(r)
		case r == '"' || r == '\'':
			quote, inArg = r, true
		case r == ' ' || r == '\t':
			if inArg {
				args = append(args, cur.String())
				cur.Reset()
				inArg = false
			}
		default:
			cur.WriteRune(r)
			inArg = true
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c quote", quote)
	}
	if inArg {
		args = append(args, cur.String())
	}
	return args, nil
}
