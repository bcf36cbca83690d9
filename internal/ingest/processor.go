package ingest

import "github.com/OlhaSokur/Test-task-2/internal/models"

// Process runs one tagging pass over a document's raw fragments in original
// order: normalize, drop garbage, and stamp the rest with the running
// citation context. Each call gets a fresh tracker, so concurrent passes
// over different documents never share state.
func Process(fragments []models.RawFragment, source string) []models.TaggedFragment {
	tracker := NewTracker(source)
	tagged := make([]models.TaggedFragment, 0, len(fragments))
	for _, frag := range fragments {
		text := Normalize(frag.Text)
		if IsGarbage(text) {
			continue
		}
		tagged = append(tagged, tracker.Tag(text, frag.Page))
	}
	return tagged
}
