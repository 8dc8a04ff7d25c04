// Package mdterm renders Markdown, typically a chat model's reply, as styled
// text for a terminal.
//
// Rendering is a single pass over a stream of Markdown events. Inline text is
// reflowed to a column budget derived from the terminal width, block
// structure (headings, quotes, lists, rules) is drawn with ANSI styles from a
// Theme, and fenced code blocks are framed and syntax highlighted with
// chroma. Every line the renderer writes leaves the terminal style reset.
//
// Example:
//
//	reader := strings.NewReader("# Hello\n\nMarkdown in, ANSI out.\n")
//	err := mdterm.Render(mdterm.RenderRequest{
//		Reader: reader,
//		Writer: os.Stdout,
//		Width:  80,
//		Theme:  mdterm.DefaultTheme(),
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
// A Renderer can be reused across responses:
//
//	r := mdterm.NewRenderer(mdterm.DefaultTheme(), mdterm.WithBullet("-"))
//	_ = r.Render(os.Stdout, reply, mdterm.TerminalWidth(os.Stdout, 80))
package mdterm
