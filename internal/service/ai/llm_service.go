package ai

import (
	"context"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/zhouzirui/z-chat/internal/model/persona"
)

// Service answers single chat messages for the companion /chat endpoint.
type Service struct {
	chatModel model.ChatModel
	persona   persona.Persona
	prompts   *PersonaPromptManager
	chain     compose.Runnable[map[string]any, *schema.Message]
	logger    *zap.Logger
}

// NewService compiles a system-prompt + query chain around chatModel.
func NewService(ctx context.Context, chatModel model.ChatModel, p persona.Persona, logger *zap.Logger) (*Service, error) {
	if chatModel == nil {
		return nil, errors.New("chat model is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "compile chat chain")
	}

	return &Service{
		chatModel: chatModel,
		persona:   p,
		prompts:   NewPersonaPromptManager(),
		chain:     runnable,
		logger:    logger.Named("ai"),
	}, nil
}

// Reply generates the answer to one user message.
func (s *Service) Reply(ctx context.Context, userMessage string) (string, error) {
	input := map[string]any{
		"system": s.prompts.BuildSystemPrompt(&s.persona),
		"query":  userMessage,
	}

	response, err := s.chain.Invoke(ctx, input)
	if err != nil {
		return "", errors.Wrap(err, "run chat chain")
	}

	s.logger.Info("generated response",
		zap.String("personaId", s.persona.ID),
		zap.Int("length", len(response.Content)),
	)
	return response.Content, nil
}
