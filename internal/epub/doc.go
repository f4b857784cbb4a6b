// Package epub assembles rendered pages into an EPUB 3 archive and reads
// archives back to check their container invariants.
//
// The archive always starts with an uncompressed "mimetype" entry holding
// "application/epub+zip". Content lives under OEBPS/ with chapters in
// ascending numeric id order in the OPF spine, the NCX navMap and the
// nav.xhtml list alike.
package epub
