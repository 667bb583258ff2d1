package markov

// ModelStats holds aggregated statistics for a trained Model.
type ModelStats struct {
	Predecessors int // The number of words with at least one successor.
	Vocabulary   int // The number of unique words seen in any bigram.
	Links        int // The number of unique predecessor->successor links.
	Transitions  int // The sum of all link counts; the number of trained bigrams.
}

// Stats returns a snapshot of the model's size.
func (m *Model) Stats() ModelStats {
	return ModelStats{
		Predecessors: len(m.transitions),
		Vocabulary:   m.vocabulary,
		Links:        m.links,
		Transitions:  m.trained,
	}
}
