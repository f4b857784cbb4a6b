// Package pipeline runs the raw-to-EPUB stages.
//
// An operation is a fixed list of stages executed in order against a shared
// State. Each stage consumes the complete output of the one before it.
// Chapter-level work inside a stage may fan out over a bounded worker pool;
// results are gathered by reading-order position so the outcome does not
// depend on scheduling.
//
// Per-chapter problems (empty text, malformed files) drop the chapter and
// are recorded as report issues. Template, packaging and filesystem errors
// abort the run.
package pipeline
