package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgallion1/docask/internal/docstore"
	"github.com/dgallion1/docask/internal/document"
	"github.com/dgallion1/docask/internal/provider"
)

// State is a phase of the question-answering state machine.
type State string

const (
	StateIdle           State = "idle"
	StateDeciding       State = "deciding"
	StateRetrieving     State = "retrieving"
	StateGrounding      State = "grounding"
	StateGuardrailCheck State = "guardrail_check"
	StateStreaming      State = "streaming"
	StateFollowUp       State = "follow_up"
	StateRejected       State = "rejected"
)

// User-visible rejection messages. Rejection is a normal outcome, not an
// error code.
const (
	offTopicMessage     = "I can only answer questions about the uploaded document. This topic is not covered."
	cannotAnswerMessage = "I was unable to produce an answer supported by the document for this question."
)

// Completer generates chat completions.
type Completer interface {
	Generate(ctx context.Context, messages []provider.Message) (provider.Completion, error)
}

// QueryEmbedder produces query-mode embeddings.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Request is one /ask call.
type Request struct {
	Question string
	History  []provider.Message
}

// Turn is the per-question working state, created per call and discarded after
// response completion. Nothing persists across turns beyond the caller's
// chat history.
type Turn struct {
	Question    string
	State       State
	Retrieved   []document.Chunk
	Draft       string
	Verdict     Verdict
	FinalAnswer string
	Citations   []document.Citation
	FollowUps   []string
}

// Orchestrator drives the bounded tool-calling loop: at most one retrieval and
// one guardrail-driven regeneration per question, so termination is
// structural, not dependent on model behavior.
type Orchestrator struct {
	completer Completer
	embedder  QueryEmbedder
	emitter   Emitter
	log       *slog.Logger

	topK          int
	followUpCount int
}

func NewOrchestrator(completer Completer, embedder QueryEmbedder, log *slog.Logger, topK, followUpCount int) *Orchestrator {
	if topK <= 0 {
		topK = 6
	}
	if followUpCount <= 0 {
		followUpCount = 3
	}
	return &Orchestrator{
		completer:     completer,
		embedder:      embedder,
		log:           log,
		topK:          topK,
		followUpCount: followUpCount,
	}
}

// needsRetrieval decides whether a question requires document content. In this
// single-tool design it always does; the decision stays a pure function so a
// future multi-tool extension remains bounded by the same state machine.
func needsRetrieval(question string) bool {
	return question != ""
}

// Ask answers one question against the given document snapshot, streaming
// events to the sink. The returned Turn reports how the machine ran; the error
// is non-nil only for provider exhaustion, which has already been surfaced to
// the sink as a terminal error event.
func (o *Orchestrator) Ask(ctx context.Context, snap *docstore.Snapshot, req Request, sink Sink) (*Turn, error) {
	log := o.log.With("question_len", len(req.Question), "generation", snap.Generation)

	turn := &Turn{Question: req.Question, State: StateIdle}
	var draftTokens []string
	var corrective string
	var rejectMessage string
	regenerated := false

	for {
		switch turn.State {
		case StateIdle:
			turn.State = StateDeciding

		case StateDeciding:
			if !needsRetrieval(req.Question) {
				rejectMessage = offTopicMessage
				turn.State = StateRejected
				continue
			}
			turn.State = StateRetrieving

		case StateRetrieving:
			_ = sink.Send(Event{Type: EventStatus, Content: "Searching the document..."})

			embedding, err := o.embedder.EmbedQuery(ctx, req.Question)
			if err != nil {
				return o.fail(ctx, turn, sink, log, fmt.Errorf("embed question: %w", err))
			}
			hits, ok, err := snap.Tool.Retrieve(ctx, embedding, req.Question, o.topK)
			if err != nil {
				return o.fail(ctx, turn, sink, log, fmt.Errorf("retrieve: %w", err))
			}
			if !ok {
				// The relevance gate's "no relevant content" signal: a normal
				// outcome. No chunks are attached to the turn.
				log.Info("relevance gate rejected question")
				rejectMessage = offTopicMessage
				turn.State = StateRejected
				continue
			}
			turn.Retrieved = make([]document.Chunk, 0, len(hits))
			for _, h := range hits {
				turn.Retrieved = append(turn.Retrieved, h.Chunk)
			}
			turn.State = StateGrounding

		case StateGrounding:
			completion, err := o.completer.Generate(ctx,
				askMessages(snap.Doc.Name, turn.Retrieved, req.History, req.Question, corrective))
			if err != nil {
				return o.fail(ctx, turn, sink, log, fmt.Errorf("generate draft: %w", err))
			}
			turn.Draft = completion.Text
			draftTokens = completion.Tokens
			if len(draftTokens) == 0 {
				draftTokens = splitTokens(completion.Text)
			}
			turn.State = StateGuardrailCheck

		case StateGuardrailCheck:
			turn.Verdict = Validate(turn.Draft, snap.Doc.Name, turn.Retrieved)
			if turn.Verdict.Accepted {
				turn.Citations = turn.Verdict.Citations
				turn.State = StateStreaming
				continue
			}
			if !regenerated {
				// One corrective regeneration, then give up. This bound is an
				// invariant, not configuration.
				log.Info("guardrail rejected draft, regenerating", "reason", turn.Verdict.Reason)
				regenerated = true
				corrective = fmt.Sprintf(correctivePrompt, turn.Verdict.Reason, snap.Doc.Name)
				turn.State = StateGrounding
				continue
			}
			log.Warn("guardrail rejected regenerated draft", "reason", turn.Verdict.Reason)
			rejectMessage = cannotAnswerMessage
			turn.State = StateRejected

		case StateStreaming:
			turn.FinalAnswer = turn.Draft
			if !o.emitter.Stream(ctx, draftTokens, sink) {
				// Client gone. The validated turn stays internally consistent
				// even though the caller never saw the end of it.
				turn.State = StateIdle
				return turn, nil
			}
			turn.State = StateFollowUp

		case StateFollowUp:
			turn.FollowUps = SuggestFollowUps(ctx, o.completer, turn.Retrieved, turn.Draft, o.followUpCount)
			o.emitter.Finish(ctx, Event{
				Type:      EventDone,
				Status:    StatusComplete,
				Citations: turn.Citations,
				FollowUps: turn.FollowUps,
			}, sink)
			turn.State = StateIdle
			return turn, nil

		case StateRejected:
			turn.FinalAnswer = rejectMessage
			if o.emitter.Stream(ctx, splitTokens(rejectMessage), sink) {
				o.emitter.Finish(ctx, Event{Type: EventDone, Status: StatusRejected}, sink)
			}
			return turn, nil
		}
	}
}

// fail surfaces provider exhaustion as a terminal error event.
func (o *Orchestrator) fail(ctx context.Context, turn *Turn, sink Sink, log *slog.Logger, err error) (*Turn, error) {
	log.Error("turn failed", "state", turn.State, "error", err)
	o.emitter.Finish(ctx, Event{Type: EventError, Content: "The service is temporarily unavailable. Please try again."}, sink)
	return turn, err
}
