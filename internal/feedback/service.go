// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package feedback

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/ideaforge/internal/config"
	"github.com/tomtom215/ideaforge/internal/database"
	"github.com/tomtom215/ideaforge/internal/events"
	"github.com/tomtom215/ideaforge/internal/federated"
	"github.com/tomtom215/ideaforge/internal/idea"
	"github.com/tomtom215/ideaforge/internal/logging"
	"github.com/tomtom215/ideaforge/internal/metrics"
)

const (
	// CommandTopic carries feedback commands to the single writer.
	CommandTopic = "feedback.commands"

	handlerName        = "feedback_writer"
	metadataRequestID  = "request_id"
	routerCloseTimeout = 10 * time.Second
)

var (
	// ErrTimeout is returned when a submission is not applied in time.
	ErrTimeout = errors.New("feedback submission timed out")

	// ErrMissingIdeaID is returned for a command without an idea.
	ErrMissingIdeaID = errors.New("idea_id is required")

	// ErrMissingDependency is returned by NewService without a store.
	ErrMissingDependency = errors.New("feedback: store is required")
)

// Store is the persistence the writer reads and updates.
// *database.DB implements it.
type Store interface {
	GetIdea(ctx context.Context, id string) (*idea.Idea, error)
	UpdateMutable(ctx context.Context, id string, m idea.MutableFields) error
	// UpdateMutablePair must apply both updates or neither, so a retried
	// comparison never moves one side twice.
	UpdateMutablePair(ctx context.Context, idA string, a idea.MutableFields, idB string, b idea.MutableFields) error
	AppendFeedback(ctx context.Context, r *database.FeedbackRecord) error
	SaveVersion(ctx context.Context, v database.IdeaVersion) error
}

// Ranker is the ranking engine whose base weights feedback tunes.
// *recommend.Engine implements it.
type Ranker interface {
	Weights() idea.Weights
	SetBaseWeights(w idea.Weights)
	InvalidateCache()
}

// Command is one feedback submission as carried on the router.
type Command struct {
	Kind        string     `json:"kind"`
	IdeaID      string     `json:"idea_id"`
	OtherIdeaID string     `json:"other_idea_id,omitempty"`
	Rating      int        `json:"rating,omitempty"`
	Preference  Preference `json:"preference,omitempty"`
	Review      *Review    `json:"review,omitempty"`
}

// Validate checks the command shape before it is queued.
func (c Command) Validate() error {
	if c.IdeaID == "" {
		return ErrMissingIdeaID
	}
	switch c.Kind {
	case KindRating:
		return ValidateStars(c.Rating)
	case KindCompare:
		if c.OtherIdeaID == "" || c.OtherIdeaID == c.IdeaID {
			return ErrSameIdea
		}
		_, err := ParsePreference(string(c.Preference))
		return err
	case KindReview:
		if c.Review == nil {
			return ErrInvalidReview
		}
		return c.Review.Validate()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, c.Kind)
	}
}

// Change is the before and after rating state of one idea.
type Change struct {
	IdeaID    string             `json:"idea_id"`
	Title     string             `json:"title"`
	Before    idea.MutableFields `json:"before"`
	After     idea.MutableFields `json:"after"`
	EloChange float64            `json:"elo_change"`
}

// Result reports an applied submission.
type Result struct {
	FeedbackID string   `json:"feedback_id"`
	Kind       string   `json:"kind"`
	Changes    []Change `json:"changes"`
}

type outcome struct {
	res *Result
	err error
}

// Service serializes every rating read-modify-write through one router
// handler. Submit publishes a command and waits for the handler's reply.
type Service struct {
	cfg       config.FeedbackConfig
	rules     Rules
	store     Store
	ranker    Ranker
	federated *federated.Manager
	sink      events.Sink
	logger    zerolog.Logger

	pubSub *gochannel.GoChannel
	router *message.Router

	mu      sync.Mutex
	pending map[string]chan outcome

	reviewMu       sync.Mutex
	relevanceSum   float64
	relevanceCount int

	now func() time.Time
}

// Deps are the collaborators of the feedback service. Ranker, Federated
// and Events are optional.
type Deps struct {
	Store     Store
	Ranker    Ranker
	Federated *federated.Manager
	Events    events.Sink
}

// NewService wires the gochannel pub/sub and the writer router.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewService(cfg config.FeedbackConfig, deps Deps, logger zerolog.Logger) (*Service, error) {
	if deps.Store == nil {
		return nil, ErrMissingDependency
	}
	if deps.Events == nil {
		deps.Events = events.Nop{}
	}

	wmLogger := logging.NewWatermillAdapter()
	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, wmLogger)

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: routerCloseTimeout}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	s := &Service{
		cfg:       cfg,
		rules:     NewRules(cfg),
		store:     deps.Store,
		ranker:    deps.Ranker,
		federated: deps.Federated,
		sink:      deps.Events,
		logger:    logger.With().Str("component", "feedback").Logger(),
		pubSub:    pubSub,
		router:    router,
		pending:   make(map[string]chan outcome),
		now:       idea.Now,
	}

	// Outer to inner: settle failures to the waiting caller, retry
	// transient store errors, turn panics into errors.
	retry := middleware.Retry{
		MaxRetries:      2,
		InitialInterval: 20 * time.Millisecond,
		MaxInterval:     200 * time.Millisecond,
		Multiplier:      2,
		Logger:          wmLogger,
	}
	router.AddMiddleware(s.settle, retry.Middleware, middleware.Recoverer)
	router.AddConsumerHandler(handlerName, CommandTopic, pubSub, s.handle)

	return s, nil
}

// Run processes commands until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	s.logger.Info().Msg("Feedback writer starting")
	if err := s.router.Run(ctx); err != nil {
		return fmt.Errorf("feedback router: %w", err)
	}
	return nil
}

// Serve implements suture.Service.
func (s *Service) Serve(ctx context.Context) error {
	return s.Run(ctx)
}

// Running is closed once the writer accepts commands.
func (s *Service) Running() <-chan struct{} {
	return s.router.Running()
}

// Close stops the router and the pub/sub.
func (s *Service) Close() error {
	rerr := s.router.Close()
	perr := s.pubSub.Close()
	return errors.Join(rerr, perr)
}

// Rate submits a 1-5 star rating.
func (s *Service) Rate(ctx context.Context, ideaID string, stars int) (*Result, error) {
	return s.Submit(ctx, Command{Kind: KindRating, IdeaID: ideaID, Rating: stars})
}

// Compare submits a pairwise preference between ideaA and ideaB.
func (s *Service) Compare(ctx context.Context, ideaA, ideaB string, p Preference) (*Result, error) {
	return s.Submit(ctx, Command{Kind: KindCompare, IdeaID: ideaA, OtherIdeaID: ideaB, Preference: p})
}

// SubmitReview submits a four-dimension review.
func (s *Service) SubmitReview(ctx context.Context, ideaID string, r Review) (*Result, error) {
	return s.Submit(ctx, Command{Kind: KindReview, IdeaID: ideaID, Review: &r})
}

// Submit queues cmd for the writer and waits for it to be applied, up to
// the configured submit timeout.
func (s *Service) Submit(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.Kind == KindCompare {
		p, err := ParsePreference(string(cmd.Preference))
		if err != nil {
			return nil, err
		}
		cmd.Preference = p
	}
	if err := cmd.Validate(); err != nil {
		metrics.RecordFeedback(cmd.Kind, err)
		return nil, err
	}

	if s.cfg.SubmitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.SubmitTimeout)
		defer cancel()
	}

	select {
	case <-s.router.Running():
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: writer not running", ErrTimeout)
	}

	payload, err := json.Marshal(cmd)
	if err != nil {
		return nil, fmt.Errorf("encode feedback command: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	if rid := logging.RequestIDFromContext(ctx); rid != "" {
		msg.Metadata.Set(metadataRequestID, rid)
	}

	reply := make(chan outcome, 1)
	s.mu.Lock()
	s.pending[msg.UUID] = reply
	s.mu.Unlock()
	defer s.forget(msg.UUID)

	if err := s.pubSub.Publish(CommandTopic, msg); err != nil {
		return nil, fmt.Errorf("publish feedback command: %w", err)
	}

	select {
	case o := <-reply:
		return o.res, o.err
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrTimeout, ctx.Err())
	}
}

func (s *Service) forget(id string) {
	s.mu.Lock()
	delete(s.pending, id)
	s.mu.Unlock()
}

func (s *Service) deliver(id string, o outcome) {
	s.mu.Lock()
	ch, ok := s.pending[id]
	delete(s.pending, id)
	s.mu.Unlock()
	if ok {
		ch <- o
	}
}

// settle acks every message. Errors that survive retry are handed to the
// waiting caller instead of being redelivered.
func (s *Service) settle(h message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		out, err := h(msg)
		if err != nil {
			s.logger.Error().Err(err).Str("message_uuid", msg.UUID).Msg("Feedback command failed")
			s.deliver(msg.UUID, outcome{err: err})
			return nil, nil
		}
		return out, nil
	}
}

// handle is the single writer. Domain errors are replied immediately;
// store errors are returned for retry.
func (s *Service) handle(msg *message.Message) error {
	var cmd Command
	if err := json.Unmarshal(msg.Payload, &cmd); err != nil {
		s.deliver(msg.UUID, outcome{err: fmt.Errorf("decode feedback command: %w", err)})
		return nil
	}

	ctx := msg.Context()
	if rid := msg.Metadata.Get(metadataRequestID); rid != "" {
		ctx = logging.ContextWithRequestID(ctx, rid)
	}

	res, err := s.apply(ctx, cmd)
	metrics.RecordFeedback(cmd.Kind, err)
	if err != nil {
		if permanent(err) {
			s.deliver(msg.UUID, outcome{err: err})
			return nil
		}
		return err
	}

	s.afterApply(ctx, cmd, res)
	s.deliver(msg.UUID, outcome{res: res})
	return nil
}

func permanent(err error) bool {
	for _, target := range []error{
		idea.ErrNotFound, ErrInvalidRating, ErrInvalidPreference,
		ErrInvalidReview, ErrSameIdea, ErrUnknownKind,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (s *Service) apply(ctx context.Context, cmd Command) (*Result, error) {
	first, err := s.store.GetIdea(ctx, cmd.IdeaID)
	if err != nil {
		return nil, err
	}
	rec := &database.FeedbackRecord{
		ID:        uuid.NewString(),
		IdeaID:    first.ID,
		Kind:      cmd.Kind,
		CreatedAt: s.now(),
	}
	res := &Result{FeedbackID: rec.ID, Kind: cmd.Kind}
	before := first.Mutable()
	loaded := map[string]*idea.Idea{first.ID: first}

	switch cmd.Kind {
	case KindRating:
		after, change := s.rules.Rating(before, cmd.Rating)
		if err := s.store.UpdateMutable(ctx, first.ID, after); err != nil {
			return nil, err
		}
		stars := cmd.Rating
		rec.Rating = &stars
		res.Changes = []Change{{IdeaID: first.ID, Title: first.Title, Before: before, After: after, EloChange: change}}

	case KindCompare:
		second, err := s.store.GetIdea(ctx, cmd.OtherIdeaID)
		if err != nil {
			return nil, err
		}
		loaded[second.ID] = second
		otherBefore := second.Mutable()
		a, b := s.rules.Compare(before, otherBefore, cmd.Preference)
		if err := s.store.UpdateMutablePair(ctx, first.ID, a, second.ID, b); err != nil {
			return nil, err
		}
		other, pref := second.ID, string(cmd.Preference)
		rec.OtherIdeaID, rec.Preference = &other, &pref
		res.Changes = []Change{
			{IdeaID: first.ID, Title: first.Title, Before: before, After: a, EloChange: a.EloRating - before.EloRating},
			{IdeaID: second.ID, Title: second.Title, Before: otherBefore, After: b, EloChange: b.EloRating - otherBefore.EloRating},
		}

	case KindReview:
		r := *cmd.Review
		after := s.rules.Review(before, r)
		if err := s.store.UpdateMutable(ctx, first.ID, after); err != nil {
			return nil, err
		}
		rec.Relevance, rec.Novelty = &r.Relevance, &r.Novelty
		rec.Feasibility, rec.Usefulness = &r.Feasibility, &r.Usefulness
		res.Changes = []Change{{IdeaID: first.ID, Title: first.Title, Before: before, After: after, EloChange: after.EloRating - before.EloRating}}

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, cmd.Kind)
	}

	rec.EloBefore = res.Changes[0].Before.EloRating
	rec.EloAfter = res.Changes[0].After.EloRating
	log := logging.Ctx(ctx)
	if err := s.store.AppendFeedback(ctx, rec); err != nil {
		log.Warn().Err(err).Str("idea_id", rec.IdeaID).Msg("Failed to append feedback log")
	}
	for _, c := range res.Changes {
		snap := loaded[c.IdeaID].Clone()
		snap.Apply(c.After)
		if err := s.store.SaveVersion(ctx, database.SnapshotOf(snap, "feedback:"+cmd.Kind, rec.CreatedAt)); err != nil {
			log.Warn().Err(err).Str("idea_id", c.IdeaID).Msg("Failed to save idea version")
		}
	}
	return res, nil
}

func (s *Service) afterApply(ctx context.Context, cmd Command, res *Result) {
	if cmd.Kind == KindReview {
		s.reviewMu.Lock()
		s.relevanceSum += cmd.Review.Relevance
		s.relevanceCount++
		s.reviewMu.Unlock()
	}
	if s.ranker != nil {
		s.ranker.InvalidateCache()
	}

	for _, c := range res.Changes {
		s.sink.Publish(ctx, events.Event{
			Type:      events.FeedbackApplied,
			IdeaID:    c.IdeaID,
			Outcome:   cmd.Kind,
			RequestID: logging.RequestIDFromContext(ctx),
			Data: map[string]any{
				"elo_before":  c.Before.EloRating,
				"elo_after":   c.After.EloRating,
				"elo_change":  c.EloChange,
				"feedback_id": res.FeedbackID,
			},
		})
	}
	logging.Ctx(ctx).Info().
		Str("kind", cmd.Kind).
		Str("idea_id", cmd.IdeaID).
		Float64("elo_after", res.Changes[0].After.EloRating).
		Msg("Feedback applied")
}

// AverageRelevance returns the mean review relevance seen by this process.
func (s *Service) AverageRelevance() (float64, int) {
	s.reviewMu.Lock()
	defer s.reviewMu.Unlock()
	if s.relevanceCount == 0 {
		return 0, 0
	}
	return s.relevanceSum / float64(s.relevanceCount), s.relevanceCount
}

// FineTune adjusts the ranker's base weights from accumulated review
// relevance. It reports false when there is nothing to tune from.
func (s *Service) FineTune() (idea.Weights, bool) {
	if s.ranker == nil {
		return idea.Weights{}, false
	}
	avg, n := s.AverageRelevance()
	if n == 0 {
		return s.ranker.Weights(), false
	}
	w := FineTune(s.ranker.Weights(), avg)
	s.ranker.SetBaseWeights(w)
	s.logger.Info().Float64("avg_relevance", avg).Int("reviews", n).Msg("Weights fine-tuned from reviews")
	return w, true
}

// FederatedUpdate is a user's local update. Weights take precedence;
// otherwise per-idea feedback values are turned into weights.
type FederatedUpdate struct {
	UserID    string             `json:"user_id"`
	Weights   map[string]float64 `json:"weights,omitempty"`
	Feedbacks map[string]float64 `json:"feedbacks,omitempty"`
	Encrypt   bool               `json:"encrypt"`
}

// ErrFederatedDisabled is returned when no federated manager is wired.
var ErrFederatedDisabled = errors.New("federated feedback is not enabled")

// SubmitFederated queues a privacy-noised local update and returns its ID.
func (s *Service) SubmitFederated(u FederatedUpdate) (string, error) {
	if s.federated == nil {
		return "", ErrFederatedDisabled
	}
	if u.UserID == "" {
		return "", errors.New("user_id is required")
	}
	w := u.Weights
	if len(w) == 0 {
		w = federated.FeedbackToWeights(u.Feedbacks)
	}
	return s.federated.Collect(u.UserID, w, u.Encrypt), nil
}

// FederatedResult reports an aggregation round.
type FederatedResult struct {
	Global  map[string]float64 `json:"global_weights"`
	Applied idea.Weights       `json:"applied_weights"`
	Rounds  int                `json:"rounds"`
}

// AggregateFederated runs a round and moves the ranker's base weights toward
// the global model by the learning rate.
func (s *Service) AggregateFederated(ctx context.Context, method string) (*FederatedResult, error) {
	if s.federated == nil {
		return nil, ErrFederatedDisabled
	}
	pending := s.federated.Pending()
	global := s.federated.Aggregate(method)
	res := &FederatedResult{Global: global, Rounds: len(s.federated.History())}

	if s.ranker != nil && len(global) > 0 {
		cur := s.ranker.Weights()
		blended := federated.ApplyGlobal(cur.Map(), global, s.cfg.LearningRate)
		w := idea.WeightsFromMap(blended, 0).Normalize()
		s.ranker.SetBaseWeights(w)
		res.Applied = w
	}

	s.sink.Publish(ctx, events.Event{
		Type: events.FederatedRound,
		Data: map[string]any{"updates": pending, "rounds": res.Rounds, "method": method},
	})
	return res, nil
}

// FederatedHistory returns the aggregation rounds so far.
func (s *Service) FederatedHistory() []federated.Round {
	if s.federated == nil {
		return nil
	}
	return s.federated.History()
}
