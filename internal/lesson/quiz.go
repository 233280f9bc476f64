package lesson

// Option is one answer choice.
type Option struct {
	ID   string
	Text string
}

// Question is a multiple-choice question with a single correct option.
type Question struct {
	Text        string
	Options     []Option
	Correct     string
	Explanation string
}

// Questions returns the lesson quiz.
func Questions() []Question {
	return []Question{
		{
			Text: "What is the primary goal of the Bulkhead Pattern?",
			Options: []Option{
				{"a", "To make services process requests faster."},
				{"b", "To isolate failures and prevent cascading errors."},
				{"c", "To load balance traffic evenly across servers."},
			},
			Correct:     "b",
			Explanation: "Correct! Just like a ship, the goal is to contain the damage (water) to one section so the whole system doesn't sink.",
		},
		{
			Text: "In a Bulkhead architecture, if one thread pool becomes exhausted...",
			Options: []Option{
				{"a", "The entire application will crash immediately."},
				{"b", "Requests to other services are also rejected."},
				{"c", "Other thread pools remain unaffected and operational."},
			},
			Correct:     "c",
			Explanation: "Correct! The exhausted pool only rejects requests for its specific service. Other pools have their own independent resources.",
		},
		{
			Text: "Does the Bulkhead pattern fix the underlying performance issue of a slow service?",
			Options: []Option{
				{"a", "No, it only mitigates the impact on the rest of the system."},
				{"b", "Yes, it automatically speeds up slow queries."},
				{"c", "Yes, by adding more threads dynamically."},
			},
			Correct:     "a",
			Explanation: "Correct! The pattern is about survival, not fixing the root cause. You still need to debug why the service is slow!",
		},
	}
}

// Result is the outcome of one question after submission.
type Result int

const (
	Pending Result = iota
	Right
	Wrong
)

// Quiz tracks answers until submission.
type Quiz struct {
	questions []Question
	answers   map[int]string
	submitted bool
}

// NewQuiz returns a quiz over the lesson questions.
func NewQuiz() *Quiz {
	return &Quiz{questions: Questions(), answers: make(map[int]string)}
}

func (q *Quiz) Questions() []Question { return q.questions }

// Select records opt as the answer to question i. It is ignored after
// submission or for unknown questions and options.
func (q *Quiz) Select(i int, opt string) {
	if q.submitted || i < 0 || i >= len(q.questions) {
		return
	}
	for _, o := range q.questions[i].Options {
		if o.ID == opt {
			q.answers[i] = opt
			return
		}
	}
}

// Answer returns the selected option for question i.
func (q *Quiz) Answer(i int) (string, bool) {
	a, ok := q.answers[i]
	return a, ok
}

// CanSubmit reports whether every question has an answer.
func (q *Quiz) CanSubmit() bool {
	return !q.submitted && len(q.answers) == len(q.questions)
}

// Submit locks the answers. It reports false if not every question is answered.
func (q *Quiz) Submit() bool {
	if !q.CanSubmit() {
		return false
	}
	q.submitted = true
	return true
}

func (q *Quiz) Submitted() bool { return q.submitted }

// Score counts correct answers.
func (q *Quiz) Score() int {
	n := 0
	for i, qu := range q.questions {
		if q.answers[i] == qu.Correct {
			n++
		}
	}
	return n
}

// Result grades question i. Before submission every question is Pending.
func (q *Quiz) Result(i int) Result {
	if !q.submitted || i < 0 || i >= len(q.questions) {
		return Pending
	}
	if q.answers[i] == q.questions[i].Correct {
		return Right
	}
	return Wrong
}

// Reset clears the answers for a retry.
func (q *Quiz) Reset() {
	q.answers = make(map[int]string)
	q.submitted = false
}
