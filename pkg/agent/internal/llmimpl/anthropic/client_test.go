package anthropic

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codebuilder/pkg/agent/llm"
	"codebuilder/pkg/agent/llmerrors"
)

func TestPrepareMessagesExtractsSystemPrompt(t *testing.T) {
	system, msgs, err := prepareMessages([]llm.CompletionMessage{
		llm.NewSystemMessage("you are a planner"),
		llm.NewUserMessage("build a calculator"),
	})
	require.NoError(t, err)
	assert.Equal(t, "you are a planner", system)
	require.Len(t, msgs, 1)
	assert.Equal(t, llm.RoleUser, msgs[0].Role)
}

func TestPrepareMessagesMergesConsecutiveUserMessages(t *testing.T) {
	_, msgs, err := prepareMessages([]llm.CompletionMessage{
		llm.NewUserMessage("part one"),
		llm.NewUserMessage("part two"),
	})
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "part one\n\npart two", msgs[0].Content)
}

func TestPrepareMessagesRejectsEmptyAndSystemOnly(t *testing.T) {
	_, _, err := prepareMessages(nil)
	assert.Error(t, err)

	_, _, err = prepareMessages([]llm.CompletionMessage{llm.NewSystemMessage("only system")})
	assert.Error(t, err)
}

func TestPrepareMessagesRejectsTrailingAssistant(t *testing.T) {
	_, _, err := prepareMessages([]llm.CompletionMessage{
		llm.NewUserMessage("question"),
		{Role: llm.RoleAssistant, Content: "answer"},
	})
	assert.Error(t, err)
}

func TestExtractStatusCode(t *testing.T) {
	assert.Equal(t, 429, extractStatusCode(`POST "https://api.anthropic.com/v1/messages": 429 Too Many Requests`))
	assert.Equal(t, 500, extractStatusCode("server returned 500"))
	assert.Equal(t, 0, extractStatusCode("no code here"))
}

func TestClassifyErrorRateLimit(t *testing.T) {
	classified := classifyError(errors.New("429 Too Many Requests"))
	assert.Equal(t, llmerrors.ErrorTypeRateLimit, classified.Type)

	classified = classifyError(errors.New("request rejected: quota exhausted"))
	assert.Equal(t, llmerrors.ErrorTypeRateLimit, classified.Type)
}

func TestClassifyErrorAuthAndTransient(t *testing.T) {
	assert.Equal(t, llmerrors.ErrorTypeAuth, classifyError(errors.New("401 Unauthorized")).Type)
	assert.Equal(t, llmerrors.ErrorTypeTransient, classifyError(errors.New("503 Service Unavailable")).Type)
	assert.Equal(t, llmerrors.ErrorTypeTransient, classifyError(errors.New("connection reset by peer")).Type)
	assert.Equal(t, llmerrors.ErrorTypeUnknown, classifyError(errors.New("something odd")).Type)
}
