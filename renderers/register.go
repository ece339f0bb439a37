// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
package renderers

import "github.com/framegrace/texelprettify/prettifier"

// RegisterAll registers every built-in renderer. Detectors gate on config;
// renderers are cheap and always available so trigger-invoked prettify works
// even for formats with detection disabled.
func RegisterAll(reg *prettifier.Registry) {
	reg.RegisterRenderer("markdown", &MarkdownRenderer{})
	reg.RegisterRenderer("json", &JSONRenderer{})
	reg.RegisterRenderer("yaml", &YAMLRenderer{})
	reg.RegisterRenderer("diff", &DiffRenderer{})
	reg.RegisterRenderer("log", &LogRenderer{})
	reg.RegisterRenderer("stack_trace", &StackTraceRenderer{})
}
