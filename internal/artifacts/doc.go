// Package artifacts persists the per-document staging files: the write-once
// raw extraction payload, the overwritable canonical statement, and a small
// provenance sidecar linking both back to the source document. Names are
// derived deterministically from the source file so repeat runs find their
// prior artifacts.
package artifacts
