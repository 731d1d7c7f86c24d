package models

// single testcase attached to a generated question
type QuestionTestCase struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expectedOutput"`
}

// GeneratedQuestion is one practice question produced by the question
// generator (LLM or fallback). The normalizer guarantees every field is
// populated before the question reaches a client.
type GeneratedQuestion struct {
	Title             string             `json:"title"`
	Difficulty        string             `json:"difficulty"`
	Category          string             `json:"category"`
	Description       string             `json:"description"`
	InterviewQuestion string             `json:"interviewQuestion"`
	Hints             []string           `json:"hints"`
	ExpectedApproach  string             `json:"expectedApproach"`
	TimeEstimate      string             `json:"timeEstimate"`
	FollowUpQuestions []string           `json:"followUpQuestions"`
	TestCases         []QuestionTestCase `json:"testCases"`
}

// payload for the question-generation endpoint
type QuestionsPayload struct {
	Questions []GeneratedQuestion `json:"questions"`
}

// one worked example inside a lecture
type LectureExample struct {
	Title       string `json:"title"`
	Code        string `json:"code"`
	Explanation string `json:"explanation"`
}

// LectureContent is the structured lecture returned by the lecture endpoint.
type LectureContent struct {
	Title        string           `json:"title"`
	Introduction string           `json:"introduction"`
	Concepts     []string         `json:"concepts"`
	Examples     []LectureExample `json:"examples"`
	KeyPoints    []string         `json:"keyPoints"`
}
