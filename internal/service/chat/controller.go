package chat

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/cs-buddy/internal/model/chat"
	"github.com/zhouzirui/cs-buddy/internal/model/persona"
	"github.com/zhouzirui/cs-buddy/internal/service/ai"
	"github.com/zhouzirui/cs-buddy/internal/ui"
)

// ErrPrimingFailed wraps backend failures while opening a conversation.
var ErrPrimingFailed = errors.New("failed to prime conversation")

// Controller keeps a session's backend conversation and its visible
// transcript consistent across interactions. Callers hold the session lock
// (see Store.Acquire) for the duration of every call.
type Controller struct {
	backend ai.Backend
	persona persona.Persona
	priming string
}

// NewController binds a backend to the persona it plays.
func NewController(backend ai.Backend, p persona.Persona, prompts *ai.PersonaPromptManager) *Controller {
	if prompts == nil {
		prompts = ai.NewPersonaPromptManager()
	}
	if p.Greeting == "" {
		p.Greeting = persona.Greeting
	}
	if p.Apology == "" {
		p.Apology = persona.Apology
	}
	return &Controller{
		backend: backend,
		persona: p,
		priming: prompts.BuildPrimingPrompt(&p),
	}
}

// Persona returns the persona the controller plays.
func (c *Controller) Persona() persona.Persona {
	return c.persona
}

// Interact runs one full render cycle: make sure the session is primed,
// replay the transcript, then handle input when there is any. Priming
// failures are shown as an error banner and returned.
func (c *Controller) Interact(ctx context.Context, host ui.Host, session *Session, input string) error {
	if _, err := c.EnsureSession(ctx, session); err != nil {
		host.ErrorBanner(fmt.Sprintf("An error occurred while starting the conversation: %v", err))
		return err
	}

	c.RenderTranscript(host, session)
	c.HandleUserInput(ctx, host, session, input)
	return nil
}

// EnsureSession opens and primes a backend conversation when the session has
// none, or when the existing one reports an empty history. In both cases the
// transcript is reset to the greeting. It reports whether a reset happened.
func (c *Controller) EnsureSession(ctx context.Context, session *Session) (bool, error) {
	if session.conversation != nil && len(session.conversation.History()) > 0 {
		return false, nil
	}

	recovering := session.conversation != nil
	conversation, err := c.backend.Start(ctx, nil)
	if err != nil {
		return false, errors.Wrapf(ErrPrimingFailed, "start %s: %v", c.backend.Name(), err)
	}
	if _, err := conversation.Send(ctx, c.priming); err != nil {
		return false, errors.Wrapf(ErrPrimingFailed, "send persona prompt: %v", err)
	}

	session.conversation = conversation
	session.transcript.Reset(chat.NewTurn(chat.RoleAssistant, c.persona.Greeting))

	log.Info().
		Str("component", "controller").
		Str("session_id", session.ID).
		Str("backend", c.backend.Name()).
		Bool("recovered", recovering).
		Msg("conversation primed")
	return true, nil
}

// RenderTranscript shows every turn in order. It has no backend side effects.
func (c *Controller) RenderTranscript(host ui.Host, session *Session) {
	for _, turn := range session.transcript.Turns() {
		host.DisplayMessage(turn.Role, turn.Text)
	}
}

// HandleUserInput appends the user's turn, streams the reply into an
// assistant placeholder and appends the reply. Backend failures are absorbed:
// the apology becomes the assistant turn. Empty input is a no-op and returns
// a zero Turn.
func (c *Controller) HandleUserInput(ctx context.Context, host ui.Host, session *Session, text string) chat.Turn {
	if strings.TrimSpace(text) == "" {
		return chat.Turn{}
	}

	host.DisplayMessage(chat.RoleUser, text)
	session.transcript.Append(chat.NewTurn(chat.RoleUser, text))

	placeholder := host.Placeholder(chat.RoleAssistant)
	reply, err := c.streamReply(ctx, session, text, placeholder)
	if err != nil {
		log.Warn().
			Err(err).
			Str("component", "controller").
			Str("session_id", session.ID).
			Msg("reply failed")
		host.ErrorBanner(fmt.Sprintf("An error occurred while getting a response: %v", err))
		reply = c.persona.Apology
		placeholder.Update(reply)
	}

	turn := chat.NewTurn(chat.RoleAssistant, reply)
	session.transcript.Append(turn)
	return turn
}

func (c *Controller) streamReply(ctx context.Context, session *Session, text string, placeholder ui.Placeholder) (string, error) {
	if session.conversation == nil {
		return "", errors.New("session has no conversation")
	}

	stream, err := session.conversation.Stream(ctx, text)
	if err != nil {
		return "", err
	}
	defer stream.Close()

	var buffer strings.Builder
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		if chunk == nil || chunk.Content == "" {
			continue
		}

		buffer.WriteString(chunk.Content)
		placeholder.Update(buffer.String() + ui.Cursor)
	}

	placeholder.Update(buffer.String())
	return buffer.String(), nil
}
