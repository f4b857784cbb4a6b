// Package templates holds the document templates used to build an EPUB and
// renders them from typed slot structs.
//
// A template set is a directory tree mirroring the archive layout:
//
//	META-INF/container.xml
//	OEBPS/content.opf
//	OEBPS/toc.ncx
//	OEBPS/Styles/stylesheet.css
//	OEBPS/Text/chapter.xhtml
//	OEBPS/Text/foreword.xhtml
//	OEBPS/Text/cover.xhtml
//	OEBPS/Text/nav.xhtml
//
// The default set is embedded in the binary. A custom set is loaded from any
// fs.FS and is checked at load time: every file must exist, parse, reference
// the slots its document kind requires, and execute against sample data.
// Rendering never produces a silently blank slot.
package templates
