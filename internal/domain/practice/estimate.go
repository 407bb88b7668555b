package practice

import "context"

// PreviewCount reports how many questions would populate a session with
// the given configuration, without touching session state. The optional
// question-count cap is deliberately ignored: the preview tells the
// caller how large the pool is so they can pick a cap.
//
// Safe to call repeatedly; debouncing is a caller concern.
func (e *Engine) PreviewCount(ctx context.Context, cfg SessionConfig) (int, error) {
	pool, err := e.source.FetchQuestions(ctx, cfg.CourseID, cfg.filters())
	if err != nil {
		return 0, err
	}

	if cfg.OnlyMistakes {
		missedIDs, err := e.missed.ListIncorrectQuestionIDs(ctx, cfg.CourseID)
		if err != nil {
			return 0, err
		}
		pool = intersectMissed(pool, missedIDs)
	}

	return len(pool), nil
}
