package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/and161185/newsadmin/internal/model"
	"github.com/and161185/newsadmin/internal/service"
)

// lineReader serializes line reads from the console input.
type lineReader struct {
	mu sync.Mutex
	r  *bufio.Reader
}

func newLineReader(r io.Reader) *lineReader { return &lineReader{r: bufio.NewReader(r)} }

// ReadLine returns the next line without its terminator. io.EOF is returned
// only when nothing was read.
func (l *lineReader) ReadLine() (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, err := l.r.ReadString('\n')
	if err == io.EOF && s != "" {
		err = nil
	}
	return strings.TrimRight(s, "\r\n"), err
}

// confirmer asks on the console; --yes accepts every prompt.
func (a *app) confirmer() service.Confirmer {
	return service.ConfirmerFunc(func(ctx context.Context, p service.Prompt) bool {
		if a.opts.yes {
			return true
		}
		if ctx.Err() != nil {
			return false
		}
		label := p.Confirm
		if label == "" {
			label = "Yes"
		}
		fmt.Fprintf(a.errw, "%s\n%s\n%s? [y/N] ", p.Title, p.Text, label)
		line, err := a.in.ReadLine()
		if err != nil {
			fmt.Fprintln(a.errw)
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		}
		return false
	})
}

// notifier prints notices to the error stream so stdout stays machine readable.
func (a *app) notifier() service.Notifier {
	return service.NotifierFunc(func(n service.Notice) {
		if n.Text == "" {
			fmt.Fprintf(a.errw, "[%s] %s\n", n.Level, n.Title)
			return
		}
		fmt.Fprintf(a.errw, "[%s] %s: %s\n", n.Level, n.Title, n.Text)
	})
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readAll reads p, or stdin for "-".
func readAll(in io.Reader, p string) ([]byte, error) {
	if p == "-" {
		return io.ReadAll(in)
	}
	return os.ReadFile(p)
}

// loadFile reads an attachment. The content type comes from the extension and
// falls back to sniffing the data.
func loadFile(p string) (*model.File, error) {
	if p == "" {
		return nil, nil
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(p)))
	if ct == "" {
		ct = http.DetectContentType(b)
	}
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return &model.File{Name: filepath.Base(p), ContentType: ct, Data: b}, nil
}
