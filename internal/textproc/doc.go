// Package textproc repairs scraped chapter text.
//
// Scraped HTML tends to emit one line per <br> or text node, so a single
// sentence arrives split over several lines. Normalize joins those lines
// back into paragraphs using case and punctuation cues, and DedupTitle drops
// the chapter title when a source repeats it at the top of the body.
package textproc
