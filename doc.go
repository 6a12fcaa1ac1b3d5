// Package mdrtf converts Markdown to Rich Text Format.
//
// The converter is a single-pass, line-oriented transducer. Each source line is
// classified, escaped, and rewritten by an ordered pipeline of stages (headings,
// emphasis, images, comments, lists, tables, links) while a small per-call state
// carries code blocks, list numbering, and sticky table column widths across lines.
// The result is one RTF document with a font table and a fixed six-entry color
// table followed by the converted body.
//
// Core properties:
//   - Best-effort output: a line that fails to convert is recorded as a Diagnostic
//     and replaced according to the ErrorOutput policy; conversion never aborts.
//   - ASCII-safe output: RTF specials are hex-escaped and non-ASCII code points are
//     written as \uN? escapes, one per UTF-16 code unit.
//   - Re-entrant: a Converter holds only settings, so one value may convert many
//     documents concurrently.
//
// Example:
//
//	conv := mdrtf.New(mdrtf.WithTheme(mdrtf.DefaultTheme()))
//	res := conv.ConvertText(ctx, "# Hello\n\nMarkdown in, **RTF** out.\n")
//	if err := res.Err(); err != nil {
//		log.Printf("recovered lines: %v", err)
//	}
//	os.WriteFile("hello.rtf", []byte(res.RTF), 0o644)
//
// Render and HTTPRender wrap the converter for io.Reader and HTTP(S) sources.
package mdrtf
