package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pkt.systems/mdterm"
)

func TestOpenInputFileAndURL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "input.md")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	reader, closer, err := openInputs([]string{path}, nil)
	if err != nil {
		t.Fatalf("openInputs file: %v", err)
	}
	if closer != nil {
		defer func() { _ = closer.Close() }()
	}
	buf, _ := io.ReadAll(reader)
	if string(buf) != "hello" {
		t.Fatalf("unexpected file content: %q", string(buf))
	}

	reader, closer, err = openInputs([]string{"file://" + path}, nil)
	if err != nil {
		t.Fatalf("openInputs file URL: %v", err)
	}
	if closer != nil {
		defer func() { _ = closer.Close() }()
	}
	buf, _ = io.ReadAll(reader)
	if string(buf) != "hello" {
		t.Fatalf("unexpected file URL content: %q", string(buf))
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("# remote"))
	}))
	defer srv.Close()
	reader, closer, err = openInputs([]string{srv.URL}, nil)
	if err != nil {
		t.Fatalf("openInputs http: %v", err)
	}
	if closer != nil {
		defer func() { _ = closer.Close() }()
	}
	buf, _ = io.ReadAll(reader)
	if string(buf) != "# remote" {
		t.Fatalf("unexpected http content: %q", string(buf))
	}
}

func TestOpenInputsConcatenates(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.md")
	second := filepath.Join(dir, "b.md")
	if err := os.WriteFile(first, []byte("one "), 0o644); err != nil {
		t.Fatalf("write first: %v", err)
	}
	if err := os.WriteFile(second, []byte("two"), 0o644); err != nil {
		t.Fatalf("write second: %v", err)
	}
	reader, closer, err := openInputs([]string{first, second}, nil)
	if err != nil {
		t.Fatalf("openInputs concat: %v", err)
	}
	defer func() { _ = closer.Close() }()
	buf, _ := io.ReadAll(reader)
	if string(buf) != "one two" {
		t.Fatalf("unexpected concatenated content: %q", string(buf))
	}
}

func TestOpenInputsDefaultsToStdin(t *testing.T) {
	stdin := strings.NewReader("piped")
	reader, closer, err := openInputs(nil, stdin)
	if err != nil {
		t.Fatalf("openInputs: %v", err)
	}
	if closer != nil {
		t.Fatalf("stdin must not be closed by the command")
	}
	buf, _ := io.ReadAll(reader)
	if string(buf) != "piped" {
		t.Fatalf("unexpected stdin content: %q", string(buf))
	}
}

func TestResolveColor(t *testing.T) {
	cases := map[string]bool{
		"on":  true,
		"off": false,
		"1":   true,
		"0":   false,
	}
	for input, want := range cases {
		got, err := resolveColor(input, io.Discard)
		if err != nil {
			t.Fatalf("resolveColor(%q): %v", input, err)
		}
		if got != want {
			t.Fatalf("resolveColor(%q)=%v want %v", input, got, want)
		}
	}
	if _, err := resolveColor("nope", io.Discard); err == nil {
		t.Fatalf("expected error for invalid color value")
	}
}

func TestResolveWrap(t *testing.T) {
	cases := map[string]int{
		"three-quarters": 60,
		"half":           40,
		"full":           80,
		"50":             50,
	}
	for input, want := range cases {
		policy, err := resolveWrap(input)
		if err != nil {
			t.Fatalf("resolveWrap(%q): %v", input, err)
		}
		if got := policy(80); got != want {
			t.Fatalf("resolveWrap(%q)(80)=%d want %d", input, got, want)
		}
	}
	for _, bad := range []string{"wide", "0", "-3"} {
		if _, err := resolveWrap(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestRunRendersFileBoring(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	if err := os.WriteFile(path, []byte("# Title\n\nSome *text*.\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"--boring", "--width", "80", path}, nil, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr.String())
	}
	if got, want := stdout.String(), "# Title\n\nSome text.\n"; got != want {
		t.Fatalf("unexpected output:\n%q\nwant\n%q", got, want)
	}
}

func TestRunRejectsBinaryInput(t *testing.T) {
	var stdout, stderr bytes.Buffer
	stdin := bytes.NewReader([]byte{'a', 0x00, 'b'})
	code := run(context.Background(), []string{"-b", "-w", "80"}, stdin, &stdout, &stderr)
	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(stderr.String(), mdterm.ErrBinaryInput.Error()) {
		t.Fatalf("expected binary input error, got %q", stderr.String())
	}
}

func TestRunUnknownTheme(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"--theme", "nope"}, strings.NewReader(""), &stdout, &stderr)
	if code != 2 {
		t.Fatalf("expected exit 2, got %d", code)
	}
	if !strings.Contains(stderr.String(), `unknown theme "nope"`) {
		t.Fatalf("unexpected stderr %q", stderr.String())
	}
}

func TestRunListThemes(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run(context.Background(), []string{"--list-themes"}, nil, &stdout, &stderr); code != 0 {
		t.Fatalf("exit %d", code)
	}
	for _, name := range []string{"default", "plain", "dracula"} {
		if !strings.Contains(stdout.String(), name+"\n") {
			t.Fatalf("missing theme %q in %q", name, stdout.String())
		}
	}
}

type fakeClient struct {
	replies map[string]string
	err     error
	prompts []string
}

func (f *fakeClient) Send(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.replies[prompt], nil
}

func newTestSession(client chatClient, out, errOut io.Writer) *session {
	theme := mdterm.PlainTheme()
	return &session{
		client:   client,
		renderer: mdterm.NewRenderer(theme),
		styles:   theme.Styles(),
		width:    80,
		out:      out,
		errOut:   errOut,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestChatRendersReply(t *testing.T) {
	client := &fakeClient{replies: map[string]string{"hi": "**Hello** there"}}
	var out, errOut bytes.Buffer
	s := newTestSession(client, &out, &errOut)
	in := strings.NewReader("hi\nquit\n")
	if err := s.run(context.Background(), in, "gemini-test"); err != nil {
		t.Fatalf("run: %v", err)
	}
	got := out.String()
	for _, want := range []string{"gemini-test", "Thinking...", "Gemini:\nHello there\n\n", "Goodbye!\n"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in output:\n%s", want, got)
		}
	}
	if len(client.prompts) != 1 || client.prompts[0] != "hi" {
		t.Fatalf("unexpected prompts %v", client.prompts)
	}
	if errOut.Len() != 0 {
		t.Fatalf("unexpected stderr %q", errOut.String())
	}
}

func TestChatCommands(t *testing.T) {
	client := &fakeClient{}
	var out, errOut bytes.Buffer
	s := newTestSession(client, &out, &errOut)
	in := strings.NewReader("\n  \nhelp\nclear\nEXIT\nnever sent\n")
	if err := s.run(context.Background(), in, "m"); err != nil {
		t.Fatalf("run: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "quit, exit") {
		t.Fatalf("expected help text in output:\n%s", got)
	}
	if !strings.Contains(got, clearScreen) {
		t.Fatalf("expected clear screen sequence")
	}
	if !strings.HasSuffix(got, "Goodbye!\n") {
		t.Fatalf("expected goodbye at end, got %q", got)
	}
	if len(client.prompts) != 0 {
		t.Fatalf("commands must not reach the client: %v", client.prompts)
	}
}

func TestChatReportsErrorsAndContinues(t *testing.T) {
	client := &fakeClient{err: errors.New("quota exceeded")}
	var out, errOut bytes.Buffer
	s := newTestSession(client, &out, &errOut)
	in := strings.NewReader("one\ntwo\n")
	if err := s.run(context.Background(), in, "m"); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := strings.Count(errOut.String(), "Error: quota exceeded"); got != 2 {
		t.Fatalf("expected two errors, got %d in %q", got, errOut.String())
	}
	if strings.Contains(out.String(), "Gemini:") {
		t.Fatalf("no reply header expected on failure")
	}
}

func TestChatStopsWhenCancelled(t *testing.T) {
	client := &fakeClient{replies: map[string]string{"hi": "hello"}}
	var out, errOut bytes.Buffer
	s := newTestSession(client, &out, &errOut)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.run(ctx, strings.NewReader("\n\nhi\n"), "m")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(client.prompts) != 0 {
		t.Fatalf("nothing should be sent after cancel: %v", client.prompts)
	}
}

func TestChatStopsAfterInterruptAtPrompt(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	client := &fakeClient{}
	var out, errOut bytes.Buffer
	s := newTestSession(client, &out, &errOut)
	in := &cancelOnRead{r: strings.NewReader("\nhi\n"), cancel: cancel}
	err := s.run(ctx, in, "m")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(client.prompts) != 0 {
		t.Fatalf("nothing should be sent after cancel: %v", client.prompts)
	}
}

// cancelOnRead cancels its context on the first read, like an interrupt
// arriving while the prompt waits for input.
type cancelOnRead struct {
	r      io.Reader
	cancel context.CancelFunc
}

func (c *cancelOnRead) Read(p []byte) (int, error) {
	c.cancel()
	return c.r.Read(p)
}

func TestRunInterruptedRenderExits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.md")
	if err := os.WriteFile(path, []byte("text\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var stdout, stderr bytes.Buffer
	if code := run(ctx, []string{"--boring", path}, nil, &stdout, &stderr); code != exitInterrupted {
		t.Fatalf("expected exit %d, got %d: %s", exitInterrupted, code, stderr.String())
	}
	if stdout.Len() != 0 {
		t.Fatalf("nothing should render after interrupt: %q", stdout.String())
	}
}

func TestChatPlainWritesNoEscapes(t *testing.T) {
	client := &fakeClient{replies: map[string]string{"hi": "**Hello** `x`"}}
	var out, errOut bytes.Buffer
	s := newTestSession(client, &out, &errOut)
	s.plain = true
	in := strings.NewReader("hi\nclear\nquit\n")
	if err := s.run(context.Background(), in, "m"); err != nil {
		t.Fatalf("run: %v", err)
	}
	got := out.String()
	if strings.Contains(got, "\x1b") {
		t.Fatalf("plain chat wrote escape sequences: %q", got)
	}
	for _, want := range []string{"Gemini chat (m)\n", "Thinking...\nGemini:\nHello `x`\n\n"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in output:\n%s", want, got)
		}
	}
}
