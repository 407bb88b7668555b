package practice

import "sort"

// TopicPerformance is the per-topic slice of a session summary.
type TopicPerformance struct {
	Topic      string
	Total      int
	Correct    int
	Percentage int
}

// Summary is derived from session state on demand, never stored.
type Summary struct {
	TotalQuestions int
	CorrectCount   int
	Percentage     int

	// Topics covers every question in the session, answered or not,
	// sorted by topic name for stable display.
	Topics []TopicPerformance

	// WeakestTopics holds the topics scoring below 100%, ascending by
	// percentage, capped at three. A perfect topic never appears here,
	// even when it is the worst among equals.
	WeakestTopics []TopicPerformance
}

const weakestTopicsCap = 3

// Summary computes the score and per-topic breakdown of the current
// session. ok is false when the engine is Idle.
func (e *Engine) Summary() (*Summary, bool) {
	if !e.active {
		return nil, false
	}

	correct := 0
	for _, a := range e.answers {
		if a.IsCorrect {
			correct++
		}
	}

	buckets := make(map[string]*TopicPerformance)
	var order []string
	for _, q := range e.questions {
		tp, seen := buckets[q.Topic]
		if !seen {
			tp = &TopicPerformance{Topic: q.Topic}
			buckets[q.Topic] = tp
			order = append(order, q.Topic)
		}
		tp.Total++
		if a, answered := e.answers[q.ID]; answered && a.IsCorrect {
			tp.Correct++
		}
	}

	topics := make([]TopicPerformance, 0, len(order))
	for _, name := range order {
		tp := buckets[name]
		tp.Percentage = roundPercent(tp.Correct, tp.Total)
		topics = append(topics, *tp)
	}
	sort.Slice(topics, func(i, j int) bool {
		return topics[i].Topic < topics[j].Topic
	})

	var weakest []TopicPerformance
	for _, tp := range topics {
		if tp.Percentage < 100 {
			weakest = append(weakest, tp)
		}
	}
	sort.SliceStable(weakest, func(i, j int) bool {
		return weakest[i].Percentage < weakest[j].Percentage
	})
	if len(weakest) > weakestTopicsCap {
		weakest = weakest[:weakestTopicsCap]
	}

	return &Summary{
		TotalQuestions: len(e.questions),
		CorrectCount:   correct,
		Percentage:     roundPercent(correct, len(e.questions)),
		Topics:         topics,
		WeakestTopics:  weakest,
	}, true
}
