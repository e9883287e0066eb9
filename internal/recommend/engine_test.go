// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package recommend

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/ideaforge/internal/config"
	"github.com/tomtom215/ideaforge/internal/database"
	"github.com/tomtom215/ideaforge/internal/embedding"
	"github.com/tomtom215/ideaforge/internal/events"
	"github.com/tomtom215/ideaforge/internal/features"
	"github.com/tomtom215/ideaforge/internal/generation"
	"github.com/tomtom215/ideaforge/internal/idea"
	"github.com/tomtom215/ideaforge/internal/integrity"
)

// memStore implements Store in memory with exact-title duplicate detection.
type memStore struct {
	mu         sync.Mutex
	ideas      []*idea.Idea
	outcomes   map[string]float64
	versions   []database.IdeaVersion
	embeddings int
	listErr    error
}

func newMemStore() *memStore {
	return &memStore{outcomes: map[string]float64{}}
}

func (m *memStore) InsertIdea(_ context.Context, i *idea.Idea) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.ideas {
		if existing.ID == i.ID || strings.EqualFold(existing.Title, i.Title) {
			return idea.ErrDuplicate
		}
	}
	m.ideas = append(m.ideas, i.Clone())
	return nil
}

func (m *memStore) GetIdea(_ context.Context, id string) (*idea.Idea, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, i := range m.ideas {
		if i.ID == id {
			return i.Clone(), nil
		}
	}
	return nil, idea.ErrNotFound
}

func (m *memStore) ListIdeas(_ context.Context) ([]*idea.Idea, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]*idea.Idea, len(m.ideas))
	for n, i := range m.ideas {
		out[n] = i.Clone()
	}
	return out, nil
}

func (m *memStore) SearchSimilar(_ context.Context, q []float32, k int) ([]database.SearchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]database.SearchResult, 0, len(m.ideas))
	for _, i := range m.ideas {
		out = append(out, database.SearchResult{Idea: i.Clone(), Similarity: features.Cosine(q, i.Embedding)})
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Similarity > out[b].Similarity })
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}

func (m *memStore) ReviewOutcomes(_ context.Context) (map[string]float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]float64, len(m.outcomes))
	for k, v := range m.outcomes {
		out[k] = v
	}
	return out, nil
}

func (m *memStore) SaveVersion(_ context.Context, v database.IdeaVersion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.versions = append(m.versions, v)
	return nil
}

func (m *memStore) StoreEmbedding(context.Context, string, []float32, map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.embeddings++
	return nil
}

// failingGenerator always fails.
type failingGenerator struct{}

func (failingGenerator) Generate(context.Context, string, int) generation.Result {
	return generation.Result{Provider: "failing", Err: errors.New("provider unavailable")}
}

func (failingGenerator) Name() string { return "failing" }

type testEngine struct {
	*Engine
	store    *memStore
	recorder *events.Recorder
	ledger   *integrity.ChainStore
}

func newTestEngine(t *testing.T, mutate func(*config.RecommendConfig)) *testEngine {
	t.Helper()

	cfg := DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}

	ledger, err := integrity.Open(config.LedgerConfig{InMemory: true})
	if err != nil {
		t.Fatalf("integrity.Open: %v", err)
	}
	t.Cleanup(func() { _ = ledger.Close() })

	store := newMemStore()
	rec := &events.Recorder{}
	eng, err := NewEngine(cfg, Deps{
		Store:     store,
		Embedder:  embedding.NewHashEmbedder(64),
		Generator: generation.NewRuleGenerator(),
		Ledger:    ledger,
		Events:    rec,
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return &testEngine{Engine: eng, store: store, recorder: rec, ledger: ledger}
}

var seedIdeas = []NewIdea{
	{Title: "Solar Microgrid Cooperative", Description: "Community owned solar panels with battery storage that share renewable energy between neighbours", Tags: []string{"energy", "sustainability"}},
	{Title: "AI Crop Advisor", Description: "Machine learning platform that recommends irrigation schedules and fertilizer for small farms", Tags: []string{"agriculture", "ai"}},
	{Title: "Repair Cafe Network", Description: "Volunteer repair events that keep electronics out of landfill and teach practical skills", Tags: []string{"circular", "community"}},
	{Title: "Telehealth Kiosk", Description: "Accessible clinic booths in rural towns connecting patients with remote doctors securely", Tags: []string{"health"}},
	{Title: "Battery Recycling Service", Description: "Collection routes for used lithium batteries with certified recovery of cobalt and nickel", Tags: []string{"energy", "circular"}},
}

func seed(t *testing.T, e *testEngine) []string {
	t.Helper()
	ids := make([]string, 0, len(seedIdeas))
	for _, in := range seedIdeas {
		res, err := e.AddIdea(context.Background(), in)
		if err != nil {
			t.Fatalf("AddIdea(%q): %v", in.Title, err)
		}
		if res.Outcome != idea.Inserted {
			t.Fatalf("AddIdea(%q) outcome = %v, want inserted", in.Title, res.Outcome)
		}
		ids = append(ids, res.ID)
	}
	return ids
}

func countEvents(rec *events.Recorder, typ events.Type) int {
	var n int
	for _, ev := range rec.Events() {
		if ev.Type == typ {
			n++
		}
	}
	return n
}

func TestNewEngine_MissingDependencies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		deps Deps
	}{
		{"no store", Deps{Embedder: embedding.NewHashEmbedder(8)}},
		{"no embedder", Deps{Store: newMemStore()}},
		{"empty", Deps{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewEngine(DefaultConfig(), tt.deps, zerolog.Nop())
			if !errors.Is(err, ErrMissingDependency) {
				t.Errorf("NewEngine() error = %v, want ErrMissingDependency", err)
			}
		})
	}
}

func TestEngine_AddIdea(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, nil)
	ctx := context.Background()

	market := 0.9
	res, err := e.AddIdea(ctx, NewIdea{
		Title:       "  Solar Microgrid Cooperative ",
		Description: "Community owned solar panels with battery storage that share renewable energy between neighbours",
		Tags:        []string{"energy", " ", "Energy", "sustainability"},
		MarketSize:  &market,
	})
	if err != nil {
		t.Fatalf("AddIdea: %v", err)
	}
	if res.Outcome != idea.Inserted {
		t.Fatalf("Outcome = %v, want inserted", res.Outcome)
	}
	if res.Idea.Title != "Solar Microgrid Cooperative" {
		t.Errorf("Title = %q, want trimmed", res.Idea.Title)
	}
	if res.Idea.Author != idea.DefaultAuthor {
		t.Errorf("Author = %q, want %q", res.Idea.Author, idea.DefaultAuthor)
	}
	if got := res.Idea.Tags; len(got) != 2 || got[0] != "energy" || got[1] != "sustainability" {
		t.Errorf("Tags = %v, want [energy sustainability]", got)
	}
	if !res.Idea.VerifySignature() {
		t.Error("stored idea signature does not verify")
	}
	if res.Idea.EloRating != idea.DefaultElo || res.Idea.ProvenanceScore != idea.DefaultProvenance {
		t.Errorf("defaults not applied: elo=%v provenance=%v", res.Idea.EloRating, res.Idea.ProvenanceScore)
	}
	if res.ChainHash == "" {
		t.Error("ChainHash is empty")
	}
	if !e.ledger.VerifyIdeaHash(res.ID, res.Idea.HashSignature) {
		t.Error("ledger does not verify the stored hash")
	}
	if res.Feasibility == nil || res.Ethics == nil {
		t.Fatal("feasibility and ethics must be reported")
	}
	if len(e.store.versions) != 1 || e.store.versions[0].Reason != "created" {
		t.Errorf("versions = %+v, want one created snapshot", e.store.versions)
	}
	if e.store.embeddings != 1 {
		t.Errorf("temporal embeddings = %d, want 1", e.store.embeddings)
	}
	if got := countEvents(e.recorder, events.IdeaAdded); got != 1 {
		t.Errorf("idea.added events = %d, want 1", got)
	}
	if e.EthicsLog().Len() != 1 {
		t.Errorf("ethics log length = %d, want 1", e.EthicsLog().Len())
	}
}

func TestEngine_AddIdea_Outcomes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      NewIdea
		outcome idea.InsertOutcome
		reason  string
	}{
		{
			name:    "prohibited content",
			in:      NewIdea{Title: "Quick Returns", Description: "A pyramid investment club promising guaranteed monthly payouts to members"},
			outcome: idea.Rejected,
			reason:  ReasonEthics,
		},
		{
			name:    "repetitive description",
			in:      NewIdea{Title: "Spam", Description: "buy buy buy buy buy buy buy buy buy buy buy buy now"},
			outcome: idea.Rejected,
			reason:  ReasonAdversarial,
		},
		{
			name:    "short description",
			in:      NewIdea{Title: "Tiny", Description: "too short"},
			outcome: idea.Rejected,
			reason:  ReasonAdversarial,
		},
		{
			name:    "medium severity is stored",
			in:      NewIdea{Title: "Craft Brewery Tours", Description: "Guided tours of local breweries with alcohol tastings and food pairings"},
			outcome: idea.Inserted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := newTestEngine(t, nil)

			res, err := e.AddIdea(context.Background(), tt.in)
			if err != nil {
				t.Fatalf("AddIdea: %v", err)
			}
			if res.Outcome != tt.outcome {
				t.Errorf("Outcome = %v, want %v", res.Outcome, tt.outcome)
			}
			if res.Reason != tt.reason {
				t.Errorf("Reason = %q, want %q", res.Reason, tt.reason)
			}
			if tt.outcome == idea.Rejected {
				if len(e.store.ideas) != 0 {
					t.Error("rejected idea was stored")
				}
				if countEvents(e.recorder, events.IdeaRejected) != 1 {
					t.Error("expected one idea.rejected event")
				}
			}
		})
	}
}

func TestEngine_AddIdea_Duplicate(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, nil)
	ctx := context.Background()

	in := seedIdeas[0]
	if _, err := e.AddIdea(ctx, in); err != nil {
		t.Fatalf("first AddIdea: %v", err)
	}
	res, err := e.AddIdea(ctx, in)
	if err != nil {
		t.Fatalf("second AddIdea: %v", err)
	}
	if res.Outcome != idea.Duplicate {
		t.Errorf("Outcome = %v, want duplicate", res.Outcome)
	}
	if e.ledger.Len() != 2 { // genesis + one block
		t.Errorf("ledger length = %d, want 2", e.ledger.Len())
	}
}

func TestEngine_AddIdea_Invalid(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, nil)

	for _, in := range []NewIdea{
		{Title: "", Description: "A perfectly reasonable description of an idea"},
		{Title: "Title only", Description: "   "},
	} {
		if _, err := e.AddIdea(context.Background(), in); !errors.Is(err, ErrInvalidIdea) {
			t.Errorf("AddIdea(%+v) error = %v, want ErrInvalidIdea", in, err)
		}
	}
}

func TestEngine_Recommend(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, nil)
	seed(t, e)

	resp, err := e.Recommend(context.Background(), Request{Query: "renewable solar energy storage", K: 3})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(resp.Results) != 3 {
		t.Fatalf("len(Results) = %d, want 3", len(resp.Results))
	}

	seen := map[string]bool{}
	for n, r := range resp.Results {
		if r.Rank != n+1 {
			t.Errorf("result %d rank = %d", n, r.Rank)
		}
		if seen[r.ID] {
			t.Errorf("duplicate result %s", r.ID)
		}
		seen[r.ID] = true
		if r.Origin != OriginRetrieved {
			t.Errorf("origin = %q, want retrieved", r.Origin)
		}
		if r.Explanation == nil || len(r.Explanation.TopFeatures) != TopFeatureCount || len(r.Explanation.Counterfactuals) != 3 {
			t.Errorf("result %s has incomplete explanation", r.ID)
		}
		if !r.ChainVerified {
			t.Errorf("result %s is not chain verified", r.ID)
		}
		if n > 0 && r.ViewScore > resp.Results[n-1].ViewScore {
			t.Errorf("results not ordered by view score at %d", n)
		}
	}

	md := resp.Metadata
	if md.View != ViewConsensus || md.K != 3 || md.Candidates != len(seedIdeas) {
		t.Errorf("metadata = %+v", md)
	}
	if md.RequestID == "" {
		t.Error("RequestID is empty")
	}
	if md.Diversified || md.Lambda != 0 {
		t.Errorf("Diversified = %v, Lambda = %v", md.Diversified, md.Lambda)
	}
	if countEvents(e.recorder, events.RecommendationMade) != 1 {
		t.Error("expected one recommendation event")
	}
}

func TestEngine_Recommend_Deterministic(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, nil)
	seed(t, e)
	fixed := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return fixed }

	ids := func() []string {
		resp, err := e.Recommend(context.Background(), Request{Query: "community energy", K: 5, View: ViewMarket})
		if err != nil {
			t.Fatalf("Recommend: %v", err)
		}
		return resultIDs(resp.Results)
	}

	first := ids()
	for run := 0; run < 3; run++ {
		got := ids()
		if strings.Join(got, ",") != strings.Join(first, ",") {
			t.Fatalf("run %d ranking = %v, want %v", run, got, first)
		}
	}
}

func TestEngine_Recommend_Views(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, nil)
	seed(t, e)

	for _, v := range Views {
		t.Run(string(v), func(t *testing.T) {
			resp, err := e.Recommend(context.Background(), Request{Query: "energy", K: 5, View: v})
			if err != nil {
				t.Fatalf("Recommend: %v", err)
			}
			if resp.Metadata.View != v {
				t.Errorf("View = %q, want %q", resp.Metadata.View, v)
			}
			for n := 1; n < len(resp.Results); n++ {
				if resp.Results[n].ViewScore > resp.Results[n-1].ViewScore {
					t.Errorf("view %s not ordered at %d", v, n)
				}
				if resp.Results[n].RankScore > resp.Results[n-1].RankScore {
					t.Errorf("view %s RankScore not descending at %d", v, n)
				}
			}
		})
	}
}

// abIdea builds one side of the two-idea scenario. Both sides share text,
// tags, provenance and embedding so only Elo, sentiment and age differ.
func abIdea(t *testing.T, title string, elo, sentiment float64, age time.Duration) *idea.Idea {
	t.Helper()
	emb, err := embedding.NewHashEmbedder(64).Embed(context.Background(), "renewable energy storage")
	if err != nil {
		t.Fatal(err)
	}
	ts := idea.Now().Add(-age)
	i := &idea.Idea{
		ID:              idea.NewID(title, ts),
		Title:           title,
		Description:     "Shared battery storage for neighbourhood renewable energy",
		Tags:            []string{"energy"},
		EloRating:       elo,
		BayesianMean:    idea.DefaultBayesianMean,
		Uncertainty:     idea.DefaultUncertainty,
		Sentiment:       sentiment,
		TrendScore:      0.5,
		ProvenanceScore: idea.DefaultProvenance,
		Timestamp:       ts,
		Embedding:       emb,
	}
	i.Sign()
	return i
}

func TestEngine_Recommend_TwoIdeaScenario(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, nil)

	a := abIdea(t, "Idea A", 1600, 0.5, 0)
	b := abIdea(t, "Idea B", 1400, -0.2, 100*24*time.Hour)
	// B is stored first, so it leads the pool when scores tie.
	e.store.mu.Lock()
	e.store.ideas = append(e.store.ideas, b, a)
	e.store.mu.Unlock()

	tests := []struct {
		view View
		want []string
	}{
		// Elo, sentiment and freshness all favour A.
		{ViewConsensus, []string{a.ID, b.ID}},
		{ViewUser, []string{a.ID, b.ID}},
		// Market and swot weigh none of the differing features, so the
		// tie keeps pool order.
		{ViewMarket, []string{b.ID, a.ID}},
		{ViewSwot, []string{b.ID, a.ID}},
	}

	for _, tt := range tests {
		t.Run(string(tt.view), func(t *testing.T) {
			resp, err := e.Recommend(context.Background(), Request{Query: "renewable energy storage", K: 2, View: tt.view})
			if err != nil {
				t.Fatalf("Recommend: %v", err)
			}
			if len(resp.Results) != 2 {
				t.Fatalf("results = %d, want 2", len(resp.Results))
			}
			for n, id := range tt.want {
				if resp.Results[n].ID != id {
					t.Errorf("rank %d = %s, want %s", n+1, resp.Results[n].Title, map[string]string{a.ID: "Idea A", b.ID: "Idea B"}[id])
				}
			}
			if resp.Results[0].RankScore < resp.Results[1].RankScore {
				t.Errorf("RankScore = %v, %v, want descending", resp.Results[0].RankScore, resp.Results[1].RankScore)
			}
		})
	}
}

func TestEngine_Recommend_EmptyStore(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, nil)

	resp, err := e.Recommend(context.Background(), Request{Query: "anything", K: 5})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(resp.Results) != 0 {
		t.Errorf("len(Results) = %d, want 0", len(resp.Results))
	}
	if resp.Results == nil {
		t.Error("Results must be an empty slice, not nil")
	}
}

func TestEngine_Recommend_StoreError(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, nil)
	e.store.listErr = errors.New("disk gone")

	if _, err := e.Recommend(context.Background(), Request{Query: "x"}); err == nil {
		t.Fatal("expected error")
	}
	if e.Stats().Errors != 1 {
		t.Errorf("Errors = %d, want 1", e.Stats().Errors)
	}
}

func TestEngine_Recommend_Generate(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, nil)
	seed(t, e)

	resp, err := e.Recommend(context.Background(), Request{Query: "urban farming", K: 20, Generate: true})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if resp.Metadata.Generated != GenerateCount {
		t.Errorf("Generated = %d, want %d", resp.Metadata.Generated, GenerateCount)
	}
	if resp.Metadata.Persisted != GenerateCount {
		t.Errorf("Persisted = %d, want %d", resp.Metadata.Persisted, GenerateCount)
	}
	if got := len(e.store.ideas); got != len(seedIdeas)+GenerateCount {
		t.Errorf("stored ideas = %d, want %d", got, len(seedIdeas)+GenerateCount)
	}

	var generated int
	for _, r := range resp.Results {
		if r.Origin == OriginGenerated {
			generated++
			if !containsTag(r.Tags, OriginGenerated) {
				t.Errorf("generated result %q lacks the generated tag", r.Title)
			}
		}
	}
	if generated != GenerateCount {
		t.Errorf("generated results = %d, want %d", generated, GenerateCount)
	}

	// A second run finds the drafts already stored and keeps them transient.
	resp, err = e.Recommend(context.Background(), Request{Query: "urban farming", K: 20, Generate: true})
	if err != nil {
		t.Fatalf("second Recommend: %v", err)
	}
	if resp.Metadata.Persisted != 0 {
		t.Errorf("second run Persisted = %d, want 0", resp.Metadata.Persisted)
	}
	if got := len(e.store.ideas); got != len(seedIdeas)+GenerateCount {
		t.Errorf("stored ideas after second run = %d, want unchanged", got)
	}
}

func TestEngine_Recommend_GenerationFailure(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, nil)
	seed(t, e)
	e.generator = failingGenerator{}

	resp, err := e.Recommend(context.Background(), Request{Query: "energy", K: 5, Generate: true})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if resp.Metadata.Generated != 0 || len(resp.Results) != 5 {
		t.Errorf("Generated = %d, results = %d", resp.Metadata.Generated, len(resp.Results))
	}
}

func TestEngine_Recommend_Diversify(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, nil)
	seed(t, e)

	resp, err := e.Recommend(context.Background(), Request{Query: "energy", K: 4, Diversify: true, Preset: "diversity"})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(resp.Results) != 4 {
		t.Fatalf("len(Results) = %d, want 4", len(resp.Results))
	}
	if !resp.Metadata.Diversified || resp.Metadata.Lambda != 0.2 {
		t.Errorf("Diversified = %v, Lambda = %v, want true, 0.2", resp.Metadata.Diversified, resp.Metadata.Lambda)
	}
}

func TestEngine_Recommend_Cache(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, func(c *config.RecommendConfig) { c.CacheTTL = time.Minute })
	seed(t, e)
	ctx := context.Background()
	req := Request{Query: "repair electronics", K: 2}

	first, err := e.Recommend(ctx, req)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	second, err := e.Recommend(ctx, req)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if first.Metadata.CacheHit || !second.Metadata.CacheHit {
		t.Errorf("CacheHit = %v, %v, want false, true", first.Metadata.CacheHit, second.Metadata.CacheHit)
	}
	if strings.Join(resultIDs(first.Results), ",") != strings.Join(resultIDs(second.Results), ",") {
		t.Error("cached response differs")
	}

	e.SetBaseWeights(idea.DefaultWeights())
	third, err := e.Recommend(ctx, req)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if third.Metadata.CacheHit {
		t.Error("cache should be cleared by SetBaseWeights")
	}

	stats := e.Stats()
	if stats.Requests != 3 || stats.CacheHits != 1 || stats.CacheMisses != 2 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestEngine_Recommend_TamperedIdea(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, nil)
	seed(t, e)

	e.store.mu.Lock()
	e.store.ideas[0].Description = "Rewritten after signing, the hash no longer matches"
	e.store.mu.Unlock()

	resp, err := e.Recommend(context.Background(), Request{Query: "solar", K: 5})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if countEvents(e.recorder, events.IntegrityAlert) != 1 {
		t.Error("expected one integrity alert")
	}
	for _, r := range resp.Results {
		if r.ID == e.store.ideas[0].ID && r.Integrity >= 1 {
			t.Errorf("tampered idea integrity = %v, want < 1", r.Integrity)
		}
	}
}

func TestEngine_SetBaseWeights(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, nil)

	var w idea.Weights
	w[idea.Elo] = 2
	w[idea.Trend] = 2
	e.SetBaseWeights(w)

	got := e.Weights()
	if got[idea.Elo] != 0.5 || got[idea.Trend] != 0.5 {
		t.Errorf("Weights = %v, want normalized halves", got.Map())
	}
	if countEvents(e.recorder, events.WeightsUpdated) != 1 {
		t.Error("expected one weights.updated event")
	}
}

func TestEngine_RankIdeas(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, nil)
	seed(t, e)
	ideas, _ := e.store.ListIdeas(context.Background())

	ids, err := e.RankIdeas(context.Background(), idea.DefaultWeights(), ideas)
	if err != nil {
		t.Fatalf("RankIdeas: %v", err)
	}
	if len(ids) != len(ideas) {
		t.Fatalf("len(ids) = %d, want %d", len(ids), len(ideas))
	}

	// Weighting Elo alone, a boosted idea must lead.
	ideas[3].EloRating = 2400
	var eloOnly idea.Weights
	eloOnly[idea.Elo] = 1
	ids, err = e.RankIdeas(context.Background(), eloOnly, ideas)
	if err != nil {
		t.Fatalf("RankIdeas: %v", err)
	}
	if ids[0] != ideas[3].ID {
		t.Errorf("top = %s, want boosted %s", ids[0], ideas[3].ID)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := e.RankIdeas(ctx, eloOnly, ideas); !errors.Is(err, context.Canceled) {
		t.Errorf("RankIdeas(canceled) error = %v", err)
	}
}

func TestEngine_Scenarios(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, nil)
	seed(t, e)

	report, err := e.Scenarios(context.Background(), ScenarioRequest{Query: "energy", Feature: "trend"})
	if err != nil {
		t.Fatalf("Scenarios: %v", err)
	}
	if len(report.Scenarios) != len(DefaultScenarios) {
		t.Errorf("scenarios = %d, want %d", len(report.Scenarios), len(DefaultScenarios))
	}
	if len(report.Comparison.Correlations) != 6 {
		t.Errorf("correlations = %d, want 6", len(report.Comparison.Correlations))
	}
	if report.Feature != "trend" || len(report.Sensitivity) != len(SensitivityDeltas) {
		t.Errorf("sensitivity feature = %q points = %d", report.Feature, len(report.Sensitivity))
	}
}

func TestEngine_RefitCausal(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, nil)
	ids := seed(t, e)
	ctx := context.Background()

	if _, err := e.RefitCausal(ctx); err == nil {
		t.Error("RefitCausal without outcomes should fail")
	}

	for n, id := range ids {
		e.store.outcomes[id] = float64(n) / float64(len(ids))
	}
	samples, err := e.RefitCausal(ctx)
	if err != nil {
		t.Fatalf("RefitCausal: %v", err)
	}
	if samples != len(ids) {
		t.Errorf("samples = %d, want %d", samples, len(ids))
	}
	if st := e.Stats(); !st.CausalFitted || st.CausalSamples != len(ids) {
		t.Errorf("stats = %+v", st)
	}

	exp, err := e.ExplainCausal(ctx, ids[0])
	if err != nil {
		t.Fatalf("ExplainCausal: %v", err)
	}
	if exp.IdeaID != ids[0] {
		t.Errorf("IdeaID = %q, want %q", exp.IdeaID, ids[0])
	}
	if _, err := e.ExplainCausal(ctx, "missing"); !errors.Is(err, idea.ErrNotFound) {
		t.Errorf("ExplainCausal(missing) error = %v", err)
	}
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
