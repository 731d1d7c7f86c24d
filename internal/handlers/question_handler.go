package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"codetutor/ai/internal/evaluation"
	"codetutor/ai/internal/llm"
	"codetutor/ai/internal/middleware"
	"codetutor/ai/internal/models"
	"codetutor/ai/internal/prompts"
	"codetutor/ai/internal/utils"
)

// QuestionHandler serves practice-question generation. Like grading, it
// always answers 200: when the LLM path fails, deterministic fallback
// questions are substituted so the practice page never renders empty.
type QuestionHandler struct {
	provider      llm.Provider // nil when no credential is configured
	promptManager prompts.PromptProvider
	retryPolicy   llm.RetryPolicy
	logger        *zap.Logger
}

func NewQuestionHandler(provider llm.Provider, promptManager prompts.PromptProvider, logger *zap.Logger) *QuestionHandler {
	return &QuestionHandler{
		provider:      provider,
		promptManager: promptManager,
		retryPolicy:   llm.DefaultRetryPolicy,
		logger:        logger,
	}
}

// SetRetryPolicy overrides the upstream retry policy.
func (h *QuestionHandler) SetRetryPolicy(policy llm.RetryPolicy) {
	h.retryPolicy = policy
}

func (h *QuestionHandler) GenerateHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.QuestionGenRequest](r)
	req.RequestID = ensureRequestID(req.RequestID)

	questions, provider, err := h.generate(r, req)
	if err != nil {
		h.logger.Warn("Question generation unavailable, using fallback questions",
			zap.String("request_id", req.RequestID),
			zap.String("topic", req.Topic),
			zap.Error(err))
		questions = fallbackQuestions(req)
		provider = "heuristic"
	}

	utils.JSON(w, http.StatusOK, models.APIResponse{
		Success:  true,
		Data:     models.QuestionsPayload{Questions: questions},
		Metadata: responseMetadata(req.RequestID, provider, ""),
	})
}

func (h *QuestionHandler) generate(r *http.Request, req *models.QuestionGenRequest) ([]models.GeneratedQuestion, string, error) {
	if h.provider == nil {
		return nil, "", &llm.ProviderError{Code: llm.ErrCodeAPIKey, Message: "no LLM credential configured"}
	}

	data := map[string]string{
		"Topic":      utils.NormalizeTopic(req.Topic),
		"Context":    orDefault(req.Context, "(none)"),
		"Difficulty": req.Difficulty,
		"Category":   req.Category,
		"Count":      strconv.Itoa(req.Count),
	}

	system, err := h.promptManager.BuildSystem("questions", data)
	if err != nil {
		return nil, "", err
	}
	prompt, err := h.promptManager.BuildPrompt("questions", "default", data)
	if err != nil {
		return nil, "", err
	}

	var response *llm.Response
	err = llm.Retry(r.Context(), h.retryPolicy, func() error {
		var callErr error
		response, callErr = h.provider.Complete(r.Context(), &llm.Request{
			System:    system,
			Prompt:    prompt,
			MaxTokens: 2000,
			RequestID: req.RequestID,
		})
		return callErr
	})
	if err != nil {
		return nil, "", err
	}

	raw, err := evaluation.ExtractJSON(response.Text)
	if err != nil {
		return nil, "", err
	}

	questions := normalizeQuestions(raw, req)
	if len(questions) == 0 {
		return nil, "", &llm.ProviderError{Code: llm.ErrCodeInvalidInput, Message: "no usable questions in response"}
	}
	return questions, response.Metadata.Provider, nil
}

// normalizeQuestions fills every field of every question so clients never
// see a hole, and truncates to the requested count.
func normalizeQuestions(raw map[string]interface{}, req *models.QuestionGenRequest) []models.GeneratedQuestion {
	items, ok := raw["questions"].([]interface{})
	if !ok {
		return nil
	}

	out := make([]models.GeneratedQuestion, 0, req.Count)
	for _, item := range items {
		if len(out) == req.Count {
			break
		}
		entry, ok := item.(map[string]interface{})
		if !ok {
			continue
		}

		difficulty := utils.NormalizeDifficulty(strField(entry, "difficulty", req.Difficulty))
		if !models.ValidDifficulties[difficulty] {
			difficulty = req.Difficulty
		}

		q := models.GeneratedQuestion{
			Title:             strField(entry, "title", fmt.Sprintf("%s Challenge %d", req.Topic, len(out)+1)),
			Difficulty:        difficulty,
			Category:          strField(entry, "category", req.Category),
			Description:       strField(entry, "description", fmt.Sprintf("Solve a practical problem involving %s.", req.Topic)),
			InterviewQuestion: strField(entry, "interviewQuestion", fmt.Sprintf("Can you write a short program using %s?", req.Topic)),
			Hints:             strSlice(entry, "hints"),
			ExpectedApproach:  strField(entry, "expectedApproach", "Break the problem into small steps and solve each one."),
			TimeEstimate:      strField(entry, "timeEstimate", "5-10 minutes"),
			FollowUpQuestions: strSlice(entry, "followUpQuestions"),
		}
		if len(q.Hints) == 0 {
			q.Hints = []string{"Start with the simplest version that could work."}
		}

		if cases, ok := entry["testCases"].([]interface{}); ok {
			for _, c := range cases {
				tc, ok := c.(map[string]interface{})
				if !ok {
					continue
				}
				q.TestCases = append(q.TestCases, models.QuestionTestCase{
					Input:          strField(tc, "input", ""),
					ExpectedOutput: strField(tc, "expectedOutput", ""),
				})
			}
		}

		out = append(out, q)
	}
	return out
}

// fallbackQuestions builds the requested number of questions from a small
// rotation of beginner exercises parameterized on the topic.
func fallbackQuestions(req *models.QuestionGenRequest) []models.GeneratedQuestion {
	topic := utils.NormalizeTopic(req.Topic)

	seeds := []models.GeneratedQuestion{
		{
			Title:             fmt.Sprintf("First Steps with %s", topic),
			Description:       fmt.Sprintf("Write a tiny program that demonstrates %s.", topic),
			InterviewQuestion: fmt.Sprintf("Can you show me the simplest possible use of %s?", topic),
			Hints: []string{
				"Two or three lines are enough.",
				"Print something so you can see it worked.",
			},
			ExpectedApproach: fmt.Sprintf("Use %s once, in the most direct way, and print the result.", topic),
			TimeEstimate:     "3-5 minutes",
			FollowUpQuestions: []string{
				"What happens if you change one of the values?",
			},
			TestCases: []models.QuestionTestCase{
				{Input: "(none)", ExpectedOutput: "a printed result"},
			},
		},
		{
			Title:             fmt.Sprintf("Explain %s in Your Own Words", topic),
			Description:       fmt.Sprintf("Describe what %s does and show one example.", topic),
			InterviewQuestion: fmt.Sprintf("How would you explain %s to a friend who has never coded?", topic),
			Hints: []string{
				"Use an everyday analogy first.",
				"Then back it up with a two-line example.",
			},
			ExpectedApproach: "One plain-language sentence, then a minimal code example.",
			TimeEstimate:     "3-8 minutes",
			FollowUpQuestions: []string{
				"Where might this go wrong for a beginner?",
			},
			TestCases: []models.QuestionTestCase{
				{Input: "(none)", ExpectedOutput: "a short explanation and example"},
			},
		},
		{
			Title:             fmt.Sprintf("Spot the Bug: %s", topic),
			Description:       fmt.Sprintf("Find and fix a one-line mistake in a tiny %s snippet.", topic),
			InterviewQuestion: "This short program doesn't do what its author expected. What would you check first?",
			Hints: []string{
				"Read the error message, or compare the output to what was expected.",
				"The mistake is on a single line.",
			},
			ExpectedApproach: "Run it, read the output, change the one wrong line.",
			TimeEstimate:     "3-8 minutes",
			FollowUpQuestions: []string{
				"How would you prevent this mistake next time?",
			},
			TestCases: []models.QuestionTestCase{
				{Input: "buggy snippet", ExpectedOutput: "corrected snippet"},
			},
		},
		{
			Title:             fmt.Sprintf("%s with a Twist", topic),
			Description:       fmt.Sprintf("Apply %s to a slightly different input than the examples used.", topic),
			InterviewQuestion: fmt.Sprintf("You have used %s on one example. Can you adapt it to a new one?", topic),
			Hints: []string{
				"Start from your previous solution.",
				"Change only what the new input requires.",
			},
			ExpectedApproach: "Copy the working version and adjust the input handling.",
			TimeEstimate:     "5-10 minutes",
			FollowUpQuestions: []string{
				"What part of your solution did not need to change?",
			},
			TestCases: []models.QuestionTestCase{
				{Input: "a new small input", ExpectedOutput: "the adapted result"},
			},
		},
		{
			Title:             fmt.Sprintf("Combine %s with Printing", topic),
			Description:       fmt.Sprintf("Use %s to build a value, then print a friendly message around it.", topic),
			InterviewQuestion: fmt.Sprintf("Can you combine %s with a formatted print statement?", topic),
			Hints: []string{
				"Compute first, print second.",
				"Keep the message to one line.",
			},
			ExpectedApproach: "Store the result in a variable, then print it inside a sentence.",
			TimeEstimate:     "5-10 minutes",
			FollowUpQuestions: []string{
				"Could you print the same message without the variable?",
			},
			TestCases: []models.QuestionTestCase{
				{Input: "(none)", ExpectedOutput: "one friendly sentence containing the result"},
			},
		},
	}

	out := make([]models.GeneratedQuestion, 0, req.Count)
	for i := 0; i < req.Count; i++ {
		q := seeds[i%len(seeds)]
		q.Difficulty = req.Difficulty
		q.Category = req.Category
		out = append(out, q)
	}
	return out
}
