package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/muesli/termenv"
	"github.com/spf13/pflag"
	"pkt.systems/mdterm"
	"pkt.systems/mdterm/internal/gemini"
	"pkt.systems/version"
)

const (
	defaultThemeName = "default"
	defaultWidth     = 80
	defaultTimeout   = 2 * time.Minute
	apiKeyEnv        = "GEMINI_API_KEY"
	exitInterrupted  = 130 // 128 + SIGINT
)

func init() {
	version.SetDefaultModule("pkt.systems/mdterm")
}

type options struct {
	themeName    string
	width        int
	listThemes   bool
	outPath      string
	boring       bool
	color        string
	wrap         string
	bullet       string
	counterWidth int
	chat         bool
	prompt       string
	model        string
	timeout      time.Duration
	debug        bool
	showVersion  bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	// The first interrupt cancels ctx; later ones get the default handler so
	// a blocked read can still be killed.
	context.AfterFunc(ctx, stop)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var opts options
	flags := pflag.NewFlagSet("mdterm", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVarP(&opts.themeName, "theme", "t", defaultThemeName, "Theme name")
	flags.IntVarP(&opts.width, "width", "w", 0, "Terminal width override (0 uses terminal width if available)")
	flags.BoolVar(&opts.listThemes, "list-themes", false, "List available themes")
	flags.StringVarP(&opts.outPath, "output", "o", "", "Output file instead of stdout")
	flags.BoolVarP(&opts.boring, "boring", "b", false, "Generate non-ANSI output")
	flags.StringVar(&opts.color, "color", "auto", "Color output: auto|on|off")
	flags.StringVar(&opts.wrap, "wrap", "three-quarters", "Wrap budget: three-quarters|half|full|<columns>")
	flags.StringVar(&opts.bullet, "bullet", "", "Unordered list marker")
	flags.IntVar(&opts.counterWidth, "counter-width", 0, "Field width of ordered list counters")
	flags.BoolVarP(&opts.chat, "chat", "c", false, "Interactive chat with Gemini")
	flags.StringVarP(&opts.prompt, "prompt", "p", "", "Send one prompt to Gemini and render the reply")
	flags.StringVar(&opts.model, "model", gemini.DefaultModel, "Gemini model")
	flags.DurationVar(&opts.timeout, "timeout", defaultTimeout, "Timeout per Gemini request")
	flags.BoolVar(&opts.debug, "debug", false, "Log debug traces to stderr")
	flags.BoolVar(&opts.showVersion, "version", false, "Print version and exit")

	flags.SetInterspersed(true)
	flags.Usage = func() {
		fmt.Fprintln(stderr, version.Module(), version.Current())
		fmt.Fprintf(stderr, "Usage: mdterm [flags] [inputs...]\n")
		fmt.Fprintln(stderr, "\nIf no input is provided, Markdown is read from stdin.")
		fmt.Fprintf(stderr, "Chat and prompt modes read the API key from $%s.\n", apiKeyEnv)
		fmt.Fprintln(stderr, "\nFlags:")
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return 0
		}
		return 2
	}

	if opts.showVersion {
		fmt.Fprintln(stdout, version.Module(), version.Current())
		return 0
	}
	if opts.listThemes {
		printThemes(stdout)
		return 0
	}

	logger := newLogger(stderr, opts.debug)

	writer, closeOut, err := resolveOutput(opts.outPath, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "open output: %v\n", err)
		return 1
	}
	if closeOut != nil {
		defer func() { _ = closeOut.Close() }()
	}

	theme, ok := mdterm.ThemeByName(opts.themeName)
	if !ok {
		fmt.Fprintf(stderr, "unknown theme %q\n\n", opts.themeName)
		printThemes(stderr)
		return 2
	}
	color, err := resolveColor(opts.color, writer)
	if err != nil {
		fmt.Fprintf(stderr, "invalid --color %q: %v\n", opts.color, err)
		return 2
	}
	plain := opts.boring || !color
	if plain {
		theme = mdterm.PlainTheme()
	}
	policy, err := resolveWrap(opts.wrap)
	if err != nil {
		fmt.Fprintf(stderr, "invalid --wrap %q: %v\n", opts.wrap, err)
		return 2
	}
	width := resolveWidth(opts.width)
	renderOpts := []mdterm.RenderOption{mdterm.WithLayout(mdterm.Layout{
		WrapPolicy:   policy,
		Bullet:       opts.bullet,
		CounterWidth: opts.counterWidth,
	})}
	if plain {
		renderOpts = append(renderOpts, mdterm.WithHighlighter(mdterm.ChromaHighlighter{NoColor: true}))
	}
	renderer := mdterm.NewRenderer(theme, renderOpts...)
	logger.Debug("configured", "theme", theme.Name(), "width", width, "wrap", opts.wrap)

	if opts.chat || opts.prompt != "" {
		key := os.Getenv(apiKeyEnv)
		if strings.TrimSpace(key) == "" {
			fmt.Fprintf(stderr, "%s is not set\n", apiKeyEnv)
			return 2
		}
		client, err := gemini.New(ctx, gemini.Config{APIKey: key, Model: opts.model})
		if err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			return 1
		}
		s := &session{
			client:   client,
			renderer: renderer,
			styles:   theme.Styles(),
			width:    width,
			timeout:  opts.timeout,
			out:      writer,
			errOut:   stderr,
			logger:   logger,
			plain:    plain,
		}
		if opts.prompt != "" {
			if err := s.ask(ctx, opts.prompt); err != nil {
				return 1
			}
			return 0
		}
		if err := s.run(ctx, stdin, client.Model()); err != nil {
			if errors.Is(err, context.Canceled) {
				return exitInterrupted
			}
			fmt.Fprintf(stderr, "chat: %v\n", err)
			return 1
		}
		return 0
	}

	reader, closer, err := openInputs(flags.Args(), stdin)
	if err != nil {
		fmt.Fprintf(stderr, "open input: %v\n", err)
		return 1
	}
	if closer != nil {
		defer func() { _ = closer.Close() }()
	}
	if err := renderInput(ctx, reader, writer, renderer, width); err != nil {
		if errors.Is(err, context.Canceled) {
			return exitInterrupted
		}
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	return 0
}

func renderInput(ctx context.Context, r io.Reader, w io.Writer, renderer *mdterm.Renderer, width int) error {
	src, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := mdterm.ValidateInput(src); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return renderer.Render(w, string(mdterm.StripFrontMatter(src)), width)
}

func newLogger(w io.Writer, debug bool) *slog.Logger {
	if !debug {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func printThemes(w io.Writer) {
	names := mdterm.AvailableThemes()
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintln(w, name)
	}
}

func resolveWidth(width int) int {
	if width > 0 {
		return width
	}
	return mdterm.TerminalWidth(os.Stdout, defaultWidth)
}

func resolveColor(mode string, w io.Writer) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "auto":
		return termenv.NewOutput(w).EnvColorProfile() != termenv.Ascii, nil
	case "on", "true", "1", "yes", "always":
		return true, nil
	case "off", "false", "0", "no", "never":
		return false, nil
	default:
		return false, fmt.Errorf("expected auto|on|off")
	}
}

func resolveWrap(mode string) (mdterm.WrapPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "three-quarters", "3/4":
		return mdterm.WrapThreeQuarters, nil
	case "half", "1/2":
		return mdterm.WrapHalf, nil
	case "full":
		return mdterm.WrapFull, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(mode))
	if err != nil || n <= 0 {
		return nil, fmt.Errorf("expected three-quarters|half|full or a positive column count")
	}
	return mdterm.WrapColumns(n), nil
}

type inputSource struct {
	open func() (io.Reader, io.Closer, error)
}

// multiInputReader concatenates inputs, opening each one lazily.
type multiInputReader struct {
	sources   []inputSource
	idx       int
	cur       io.Reader
	curCloser io.Closer
	closed    bool
}

func (m *multiInputReader) Read(p []byte) (int, error) {
	for {
		if m.closed {
			return 0, io.EOF
		}
		if m.cur == nil {
			if m.idx >= len(m.sources) {
				m.closed = true
				return 0, io.EOF
			}
			reader, closer, err := m.sources[m.idx].open()
			if err != nil {
				return 0, err
			}
			m.cur = reader
			m.curCloser = closer
			m.idx++
		}
		n, err := m.cur.Read(p)
		if n > 0 {
			return n, nil
		}
		if err == io.EOF {
			if m.curCloser != nil {
				_ = m.curCloser.Close()
			}
			m.cur = nil
			m.curCloser = nil
			continue
		}
		if err != nil {
			return 0, err
		}
	}
}

func (m *multiInputReader) Close() error {
	m.closed = true
	if m.curCloser != nil {
		return m.curCloser.Close()
	}
	return nil
}

func openInputs(args []string, stdin io.Reader) (io.Reader, io.Closer, error) {
	if len(args) == 0 {
		return stdin, nil, nil
	}
	sources := make([]inputSource, 0, len(args))
	for _, raw := range args {
		src, err := makeInputSource(raw)
		if err != nil {
			return nil, nil, err
		}
		sources = append(sources, src)
	}
	m := &multiInputReader{sources: sources}
	return m, m, nil
}

func makeInputSource(raw string) (inputSource, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return inputSource{}, fmt.Errorf("empty input argument")
	}
	if raw == "-" {
		return inputSource{open: func() (io.Reader, io.Closer, error) {
			return os.Stdin, nil, nil
		}}, nil
	}
	u, err := url.Parse(raw)
	if err == nil && u.Scheme != "" {
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return inputSource{open: func() (io.Reader, io.Closer, error) {
				return openURL(raw)
			}}, nil
		case "file":
			path := u.Path
			if path == "" {
				path = u.Host
			}
			if unescaped, err := url.PathUnescape(path); err == nil {
				path = unescaped
			}
			return inputSource{open: func() (io.Reader, io.Closer, error) {
				return openFile(path)
			}}, nil
		}
	}
	return inputSource{open: func() (io.Reader, io.Closer, error) {
		return openFile(raw)
	}}, nil
}

func openURL(raw string) (io.Reader, io.Closer, error) {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, raw, nil)
	if err != nil {
		return nil, nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_ = resp.Body.Close()
		return nil, nil, fmt.Errorf("http %s: %s", raw, resp.Status)
	}
	return resp.Body, resp.Body, nil
}

func openFile(path string) (io.Reader, io.Closer, error) {
	f, err := os.Open(normalizePath(path))
	if err != nil {
		return nil, nil, err
	}
	return f, f, nil
}

func resolveOutput(path string, stdout io.Writer) (io.Writer, io.Closer, error) {
	if strings.TrimSpace(path) == "" {
		return stdout, nil, nil
	}
	clean := normalizePath(path)
	dir := filepath.Dir(clean)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, err
		}
	}
	f, err := os.Create(clean)
	if err != nil {
		return nil, nil, err
	}
	return f, f, nil
}

func normalizePath(path string) string {
	if strings.HasPrefix(path, "~/") || path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			if path == "~" {
				path = home
			} else {
				path = filepath.Join(home, path[2:])
			}
		}
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		return abs
	}
	return path
}
