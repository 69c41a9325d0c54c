package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/kasumi/pkg/domain/apperr"
	"github.com/m-mizutani/kasumi/pkg/domain/interfaces"
	"github.com/m-mizutani/kasumi/pkg/domain/model/conversation"
	"github.com/m-mizutani/kasumi/pkg/domain/types"
	dbmemory "github.com/m-mizutani/kasumi/pkg/repository/database/memory"
	conversationsvc "github.com/m-mizutani/kasumi/pkg/service/conversation"
	promptsvc "github.com/m-mizutani/kasumi/pkg/service/prompt"
)

type stubVectorSearch struct {
	knowledge     []interfaces.SearchResult
	conversations []interfaces.SearchResult
	indexed       int
}

func (s *stubVectorSearch) SearchKnowledge(ctx context.Context, query string, topK int) ([]interfaces.SearchResult, error) {
	return s.knowledge, nil
}

func (s *stubVectorSearch) SearchConversations(ctx context.Context, query string, topK int) ([]interfaces.SearchResult, error) {
	return s.conversations, nil
}

func (s *stubVectorSearch) IndexConversation(ctx context.Context, userText, agentText string, meta map[string]string) error {
	s.indexed++
	return nil
}

type scriptedSession struct {
	responses []*gollem.Response
	errs      []error
	calls     int
}

func (s *scriptedSession) GenerateContent(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	return s.responses[i], nil
}

type echoTool struct{}

func (t *echoTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "echo",
		Description: "Echo the given text back",
		Parameters: map[string]*gollem.Parameter{
			"text": {
				Type:        gollem.TypeString,
				Description: "The text to echo",
			},
		},
		Required: []string{"text"},
	}
}

func (t *echoTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	text, _ := args["text"].(string)
	return map[string]any{"result": "echo: " + text}, nil
}

func newChatFixture(t *testing.T, session *scriptedSession, tools ...gollem.Tool) (*Assistant, types.SessionID, *conversationsvc.Log) {
	t.Helper()
	ctx := context.Background()
	repo := dbmemory.New()

	prompts := promptsvc.New(repo)
	gt.NoError(t, prompts.Initialize(ctx)).Required()
	convLog := conversationsvc.New(repo)
	gt.NoError(t, convLog.Initialize(ctx)).Required()

	uc := New(
		WithPromptStore(prompts),
		WithConversationLog(convLog),
		WithTools(tools),
	)
	uc.newSession = func(ctx context.Context) (chatSession, error) {
		return session, nil
	}

	current, err := convLog.CurrentSession(ctx)
	gt.NoError(t, err).Required()

	return uc, current.ID, convLog
}

func TestChat_RecordsBothTurns(t *testing.T) {
	ctx := context.Background()
	uc, sessionID, convLog := newChatFixture(t, &scriptedSession{
		responses: []*gollem.Response{
			{Texts: []string{"hi there"}},
		},
	})

	result, err := uc.Chat(ctx, sessionID, "hello")
	gt.NoError(t, err).Required()
	gt.Equal(t, result.Response, "hi there")
	gt.Equal(t, result.SessionID, sessionID)
	gt.A(t, result.Turns).Length(2)

	turns, err := convLog.Messages(ctx, sessionID)
	gt.NoError(t, err).Required()
	gt.A(t, turns).Length(2)
	gt.Equal(t, turns[0].Role, conversation.RoleUser)
	gt.Equal(t, turns[1].Role, conversation.RoleAssistant)
	gt.Equal(t, turns[1].Content, "hi there")
}

func TestChat_ModelFailureKeepsUserTurn(t *testing.T) {
	ctx := context.Background()
	uc, sessionID, convLog := newChatFixture(t, &scriptedSession{
		errs: []error{goerr.New("model timeout")},
	})

	_, err := uc.Chat(ctx, sessionID, "what is the weather?")
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, apperr.TagExternalService))

	// The question is still on the transcript
	turns, err := convLog.Messages(ctx, sessionID)
	gt.NoError(t, err).Required()
	gt.A(t, turns).Length(1)
	gt.Equal(t, turns[0].Role, conversation.RoleUser)
	gt.Equal(t, turns[0].Content, "what is the weather?")
}

func TestChat_ToolCallRoundTrip(t *testing.T) {
	ctx := context.Background()
	session := &scriptedSession{
		responses: []*gollem.Response{
			{
				FunctionCalls: []*gollem.FunctionCall{
					{ID: "call-1", Name: "echo", Arguments: map[string]any{"text": "ping"}},
				},
			},
			{Texts: []string{"the tool said: echo: ping"}},
		},
	}
	uc, sessionID, convLog := newChatFixture(t, session, &echoTool{})

	result, err := uc.Chat(ctx, sessionID, "run the echo tool")
	gt.NoError(t, err).Required()
	gt.Equal(t, session.calls, 2)
	gt.Equal(t, result.Response, "the tool said: echo: ping")
	gt.A(t, result.ToolsUsed).Length(1)
	gt.Equal(t, result.ToolsUsed[0].Name, "echo")
	gt.True(t, strings.Contains(result.ToolsOutput, "echo: ping"))

	turns, err := convLog.Messages(ctx, sessionID)
	gt.NoError(t, err).Required()
	gt.A(t, turns).Length(2)
	gt.A(t, turns[1].ToolsUsed).Length(1)
}

func TestChat_RejectsEmptyMessage(t *testing.T) {
	ctx := context.Background()
	uc, sessionID, _ := newChatFixture(t, &scriptedSession{})

	_, err := uc.Chat(ctx, sessionID, "   ")
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, apperr.TagInvalidArgument))
}

func TestContextFromIndex_AppliesThresholds(t *testing.T) {
	ctx := context.Background()
	uc := New(WithVectorSearch(&stubVectorSearch{
		knowledge: []interfaces.SearchResult{
			{Content: "weather tool description", Similarity: 0.8},
			{Content: "too weak to include", Similarity: 0.4},
		},
		conversations: []interfaces.SearchResult{
			{Content: "User: hi\nAssistant: hello", Similarity: 0.55},
		},
	}))

	got := uc.contextFromIndex(ctx, "weather in Recife")
	gt.True(t, strings.Contains(got, "weather tool description"))
	gt.False(t, strings.Contains(got, "too weak to include"))
	// Conversation hit is below its 0.6 threshold
	gt.False(t, strings.Contains(got, "hello"))
}

func TestContextFromIndex_TruncatesLongSnippets(t *testing.T) {
	ctx := context.Background()
	long := strings.Repeat("x", 300)
	uc := New(WithVectorSearch(&stubVectorSearch{
		conversations: []interfaces.SearchResult{
			{Content: long, Similarity: 0.9},
		},
	}))

	got := uc.contextFromIndex(ctx, "anything")
	gt.True(t, strings.Contains(got, "..."))
	gt.False(t, strings.Contains(got, long))
}

func TestComposeMessage_IncludesRecentHistoryWindow(t *testing.T) {
	ctx := context.Background()
	repo := dbmemory.New()

	prompts := promptsvc.New(repo)
	gt.NoError(t, prompts.Initialize(ctx)).Required()
	convLog := conversationsvc.New(repo)
	gt.NoError(t, convLog.Initialize(ctx)).Required()

	uc := New(
		WithPromptStore(prompts),
		WithConversationLog(convLog),
	)

	// Eight turns, only the last five may appear
	contents := []string{"one", "two", "three", "four", "five", "six", "seven", "eight"}
	for i, c := range contents {
		role := conversation.RoleUser
		if i%2 == 1 {
			role = conversation.RoleAssistant
		}
		gt.NoError(t, convLog.AppendTurn(ctx, conversation.Turn{Role: role, Content: c}))
	}

	current, err := convLog.CurrentSession(ctx)
	gt.NoError(t, err).Required()

	msg, err := uc.composeMessage(ctx, current.ID, "current question", "")
	gt.NoError(t, err).Required()

	gt.True(t, strings.Contains(msg, "RECENT HISTORY:"))
	gt.False(t, strings.Contains(msg, "User: three"))
	gt.True(t, strings.Contains(msg, "Assistant: four"))
	gt.True(t, strings.Contains(msg, "Assistant: eight"))
	gt.True(t, strings.Contains(msg, "USER MESSAGE:\ncurrent question"))
	// System prompt leads the composed message
	gt.True(t, strings.HasPrefix(msg, "You are an intelligent"))
}

func TestComposeMessage_WithVectorContext(t *testing.T) {
	ctx := context.Background()
	repo := dbmemory.New()

	prompts := promptsvc.New(repo)
	gt.NoError(t, prompts.Initialize(ctx)).Required()
	convLog := conversationsvc.New(repo)
	gt.NoError(t, convLog.Initialize(ctx)).Required()

	uc := New(
		WithPromptStore(prompts),
		WithConversationLog(convLog),
	)

	current, err := convLog.CurrentSession(ctx)
	gt.NoError(t, err).Required()

	msg, err := uc.composeMessage(ctx, current.ID, "q", "Relevant knowledge:\n- weather tool")
	gt.NoError(t, err).Required()
	gt.True(t, strings.Contains(msg, "KNOWLEDGE BASE CONTEXT:"))
	gt.True(t, strings.Contains(msg, "- weather tool"))
}
