package pipeline

import (
	"git.home.luguber.info/inful/novelbuilder/internal/epub"
	"git.home.luguber.info/inful/novelbuilder/internal/imageinfo"
	"git.home.luguber.info/inful/novelbuilder/internal/metrics"
	"git.home.luguber.info/inful/novelbuilder/internal/novel"
	"git.home.luguber.info/inful/novelbuilder/internal/templates"
)

// State is what the stages of one run read and write.
type State struct {
	Request Request
	Lang    string

	// Raw is the novel as read from disk, minus restated titles when dedup
	// ran. Clean is its normalized copy.
	Raw   *novel.Novel
	Clean *novel.Novel

	Cover   *imageinfo.Image
	Docs    []templates.Document
	Archive *epub.Archive

	Report *Report

	pipeline *Pipeline
	renderer *templates.Renderer
	recorder metrics.Recorder
}
