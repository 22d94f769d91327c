// Package extraction turns a source document into a semi-structured payload
// via the Gemini API. The payload's schema is deliberately untyped: the
// canonicalizer downstream recognizes several variants, so this package
// only guarantees valid JSON, never shape.
package extraction
