// Package novel holds the in-memory model of a novel and the filesystem
// contract used to exchange it with the scraper.
//
// A raw directory contains:
//
//	cover.jpg      optional cover image (format is read from its header)
//	foreword.txt   optional: title, author, source URL, types, foreword paragraphs
//	<id>.txt       one per chapter: title line, then body lines
//
// Chapter ids are bare positive integers and define reading order.
package novel
