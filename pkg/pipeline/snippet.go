package pipeline

// Snippet is a provenance-carrying unit of text flowing through the
// pipeline. File and Line point at the annotation (or standalone file)
// the content came from, so late-stage failures can name their source.
type Snippet struct {
	Content string
	File    string
	Line    int
}
