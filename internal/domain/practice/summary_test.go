package practice_test

import (
	"testing"

	"github.com/studydeck/backend/internal/domain/practice"
	"github.com/studydeck/backend/internal/domain/question"
)

// answerAll walks the whole session, answering each question wrong as
// long as the topic has budget left in wrongByTopic, correct otherwise.
func answerAll(t *testing.T, engine *practice.Engine, wrongByTopic map[string]int) {
	t.Helper()
	for engine.HasSession() && !engine.IsComplete() {
		topic := engine.CurrentQuestion().Topic
		if wrongByTopic[topic] > 0 {
			wrongByTopic[topic]--
			answerCurrent(t, engine, false)
		} else {
			answerCurrent(t, engine, true)
		}
		engine.NextQuestion()
	}
}

func TestSummary_RequiresSession(t *testing.T) {
	engine, _ := newEngine(nil)

	if _, ok := engine.Summary(); ok {
		t.Fatal("expected no summary while idle")
	}
}

func TestSummary_FiveQuestionsThreeTopics(t *testing.T) {
	// 5 questions over topics A:2, B:2, C:1; one wrong answer in B.
	questions := []question.Question{
		makeQuestion("q1", "A"),
		makeQuestion("q2", "A"),
		makeQuestion("q3", "B"),
		makeQuestion("q4", "B"),
		makeQuestion("q5", "C"),
	}
	engine, _ := newEngine(questions)
	startSession(t, engine, practice.SessionConfig{CourseID: testCourseID})

	answerAll(t, engine, map[string]int{"B": 1})

	summary, ok := engine.Summary()
	if !ok {
		t.Fatal("expected a summary")
	}

	if summary.TotalQuestions != 5 || summary.CorrectCount != 4 {
		t.Fatalf("expected 4/5 correct, got %d/%d", summary.CorrectCount, summary.TotalQuestions)
	}
	if summary.Percentage != 80 {
		t.Errorf("expected 80%%, got %d%%", summary.Percentage)
	}

	byTopic := make(map[string]practice.TopicPerformance)
	total := 0
	for _, tp := range summary.Topics {
		byTopic[tp.Topic] = tp
		total += tp.Total
	}
	if total != summary.TotalQuestions {
		t.Errorf("expected topic totals to sum to %d, got %d", summary.TotalQuestions, total)
	}
	if tp := byTopic["B"]; tp.Percentage != 50 || tp.Correct != 1 || tp.Total != 2 {
		t.Errorf("expected topic B at 1/2 (50%%), got %+v", tp)
	}
	if byTopic["A"].Percentage != 100 || byTopic["C"].Percentage != 100 {
		t.Error("expected topics A and C at 100%")
	}

	if len(summary.WeakestTopics) != 1 || summary.WeakestTopics[0].Topic != "B" {
		t.Errorf("expected weakest topics [B], got %+v", summary.WeakestTopics)
	}
}

func TestSummary_TopicsSortedByName(t *testing.T) {
	questions := []question.Question{
		makeQuestion("q1", "slices"),
		makeQuestion("q2", "channels"),
		makeQuestion("q3", "maps"),
	}
	engine, _ := newEngine(questions)
	startSession(t, engine, practice.SessionConfig{CourseID: testCourseID})

	summary, _ := engine.Summary()

	want := []string{"channels", "maps", "slices"}
	for i, tp := range summary.Topics {
		if tp.Topic != want[i] {
			t.Fatalf("expected topics %v, got position %d = %q", want, i, tp.Topic)
		}
	}
}

func TestSummary_PerfectTopicNeverWeakest(t *testing.T) {
	questions := []question.Question{
		makeQuestion("q1", "A"),
		makeQuestion("q2", "B"),
	}
	engine, _ := newEngine(questions)
	startSession(t, engine, practice.SessionConfig{CourseID: testCourseID})

	answerAll(t, engine, nil) // everything correct

	summary, _ := engine.Summary()
	if len(summary.WeakestTopics) != 0 {
		t.Errorf("expected no weakest topics on a perfect run, got %+v", summary.WeakestTopics)
	}
}

func TestSummary_WeakestSortedAscendingAndCapped(t *testing.T) {
	var questions []question.Question
	add := func(topic string, n int) {
		for i := 0; i < n; i++ {
			questions = append(questions, makeQuestion(topic+string(rune('0'+i)), topic))
		}
	}
	add("A", 1) // 0%
	add("B", 2) // 50%
	add("C", 3) // 67%
	add("D", 4) // 75%
	add("E", 1) // 100%

	engine, _ := newEngine(questions)
	startSession(t, engine, practice.SessionConfig{CourseID: testCourseID})

	answerAll(t, engine, map[string]int{"A": 1, "B": 1, "C": 1, "D": 1})

	summary, _ := engine.Summary()

	if len(summary.WeakestTopics) != 3 {
		t.Fatalf("expected 3 weakest topics, got %d", len(summary.WeakestTopics))
	}
	want := []string{"A", "B", "C"}
	for i, tp := range summary.WeakestTopics {
		if tp.Topic != want[i] {
			t.Errorf("expected weakest[%d] = %q, got %q (%d%%)", i, want[i], tp.Topic, tp.Percentage)
		}
	}
}

func TestSummary_CountsUnansweredQuestions(t *testing.T) {
	engine, _ := newEngine(makeQuestions(4, "topic"))
	startSession(t, engine, practice.SessionConfig{CourseID: testCourseID})

	answerCurrent(t, engine, true)
	engine.CompleteSession() // abandon with 3 unanswered

	summary, ok := engine.Summary()
	if !ok {
		t.Fatal("expected a summary")
	}
	if summary.TotalQuestions != 4 || summary.CorrectCount != 1 {
		t.Fatalf("expected 1/4, got %d/%d", summary.CorrectCount, summary.TotalQuestions)
	}
	if summary.Percentage != 25 {
		t.Errorf("expected 25%%, got %d%%", summary.Percentage)
	}
	if summary.Topics[0].Total != 4 {
		t.Errorf("expected unanswered questions to count toward the topic total, got %d", summary.Topics[0].Total)
	}
}

func TestSummary_Consistency(t *testing.T) {
	engine, _ := newEngine(makeQuestions(7, "topic"))
	startSession(t, engine, practice.SessionConfig{CourseID: testCourseID})

	answerAll(t, engine, map[string]int{"topic": 3})

	summary, _ := engine.Summary()
	if summary.CorrectCount > summary.TotalQuestions {
		t.Error("correct count exceeds question count")
	}
	// 4/7 = 57.14 → 57
	if summary.Percentage != 57 {
		t.Errorf("expected rounded 57%%, got %d%%", summary.Percentage)
	}
}
