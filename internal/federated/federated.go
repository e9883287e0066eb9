// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

// Package federated aggregates per-user weight updates with differential
// privacy noise into a shared global weight map.
package federated

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
	"math/rand/v2"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/ideaforge/internal/config"
	"github.com/tomtom215/ideaforge/internal/idea"
	"github.com/tomtom215/ideaforge/internal/logging"
)

// Aggregation methods.
const (
	MethodFedAvg      = "fedavg"
	MethodMedian      = "median"
	MethodTrimmedMean = "trimmed_mean"
)

const (
	maxKeyLen     = 50
	missingWeight = 0.5
	trimRatio     = 0.1
	maskScale     = 1_000_000
)

// Update is one collected local update. Masked updates keep only the
// masked integers; plain updates keep only Weights.
type Update struct {
	ID        string             `json:"update_id"`
	UserHash  string             `json:"user_hash"`
	Weights   map[string]float64 `json:"weights,omitempty"`
	Masked    map[string]int64   `json:"masked,omitempty"`
	Encrypted bool               `json:"encrypted"`
	Timestamp time.Time          `json:"timestamp"`
}

// Round records one aggregation.
type Round struct {
	Timestamp  time.Time `json:"timestamp"`
	NumUpdates int       `json:"num_updates"`
	Method     string    `json:"aggregation_method"`
}

// Manager collects noisy local updates and aggregates them in rounds.
type Manager struct {
	mu         sync.Mutex
	noiseScale float64
	epsilon    float64
	method     string
	rng        *rand.Rand
	pending    []Update
	global     map[string]float64
	history    []Round
	now        func() time.Time
}

// NewManager clamps noise scale to [0,1] and epsilon to [0.1,10].
func NewManager(cfg config.FederatedConfig) *Manager {
	return NewManagerWithSource(cfg, rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15))
}

// NewManagerWithSource is NewManager with an explicit random source, for
// reproducible noise.
func NewManagerWithSource(cfg config.FederatedConfig, src rand.Source) *Manager {
	method := cfg.Method
	if !validMethod(method) {
		method = MethodFedAvg
	}
	return &Manager{
		noiseScale: clamp(cfg.NoiseScale, 0, 1),
		epsilon:    clamp(cfg.Epsilon, 0.1, 10),
		method:     method,
		rng:        rand.New(src),
		global:     map[string]float64{},
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Collect validates, noises and optionally masks a user's local weights and
// queues the update. It returns the update ID.
func (m *Manager) Collect(userID string, weights map[string]float64, encrypt bool) string {
	userHash := hashUser(userID)
	clean := ValidateWeights(weights)

	m.mu.Lock()
	defer m.mu.Unlock()

	noisy := m.addNoise(clean)
	u := Update{
		ID:        uuid.NewString(),
		UserHash:  userHash,
		Encrypted: encrypt,
		Timestamp: m.now(),
	}
	if encrypt {
		u.Masked = mask(noisy, userHash)
	} else {
		u.Weights = noisy
	}
	m.pending = append(m.pending, u)
	return u.ID
}

// Pending returns the number of updates awaiting aggregation.
func (m *Manager) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// Aggregate combines pending updates with method (empty uses the configured
// default), replaces the global weights and clears the queue. With nothing
// pending the current global weights are returned unchanged.
func (m *Manager) Aggregate(method string) map[string]float64 {
	if method == "" {
		method = m.method
	}
	if !validMethod(method) {
		method = MethodFedAvg
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.pending) == 0 {
		return copyMap(m.global)
	}

	all := make([]map[string]float64, 0, len(m.pending))
	for _, u := range m.pending {
		if u.Encrypted {
			all = append(all, unmask(u.Masked, u.UserHash))
		} else {
			all = append(all, u.Weights)
		}
	}

	var agg map[string]float64
	switch method {
	case MethodMedian:
		agg = aggregate(all, median)
	case MethodTrimmedMean:
		agg = aggregate(all, trimmedMean)
	default:
		agg = aggregate(all, mean)
	}

	m.global = agg
	m.history = append(m.history, Round{Timestamp: m.now(), NumUpdates: len(m.pending), Method: method})
	m.pending = nil

	logging.Info().
		Str("method", method).
		Int("updates", len(all)).
		Int("round", len(m.history)).
		Msg("Federated round aggregated")
	return copyMap(agg)
}

// Global returns a copy of the current global weights.
func (m *Manager) Global() map[string]float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyMap(m.global)
}

// History returns a copy of the aggregation rounds.
func (m *Manager) History() []Round {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Round, len(m.history))
	copy(out, m.history)
	return out
}

// ApplyGlobal moves current toward the global weights by lr, clamped to
// [0,1]. Keys absent from the global map keep their current value.
func (m *Manager) ApplyGlobal(current map[string]float64, lr float64) map[string]float64 {
	return ApplyGlobal(current, m.Global(), lr)
}

// ApplyGlobal blends current toward global: (1-lr)*cur + lr*global.
func ApplyGlobal(current, global map[string]float64, lr float64) map[string]float64 {
	lr = clamp(lr, 0, 1)
	cur := ValidateWeights(current)
	if len(global) == 0 {
		return cur
	}
	out := make(map[string]float64, len(cur))
	for k, v := range cur {
		g, ok := global[k]
		if !ok {
			g = v
		}
		out[k] = (1-lr)*v + lr*g
	}
	return out
}

// FeedbackToWeights turns a user's per-idea feedback values into a local
// weight update: the base weights nudged by (avg-0.5)*0.1 spread evenly,
// then normalized. No feedback counts as an average of 0.5.
func FeedbackToWeights(feedbacks map[string]float64) map[string]float64 {
	avg := 0.5
	if len(feedbacks) > 0 {
		var sum float64
		var n int
		for _, v := range feedbacks {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			sum += v
			n++
		}
		if n > 0 {
			avg = sum / float64(n)
		}
	}
	adj := (avg - 0.5) * 0.1 / float64(idea.NumFeatures)

	base := idea.DefaultWeights()
	for i := range base {
		base[i] += adj
	}
	return base.Normalize().Map()
}

// ValidateWeights truncates keys to 50 characters and clamps values to
// [0,1]; non-finite values become 0.5.
func ValidateWeights(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		if len(k) > maxKeyLen {
			k = k[:maxKeyLen]
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			out[k] = missingWeight
			continue
		}
		out[k] = clamp(v, 0, 1)
	}
	return out
}

// addNoise adds Laplace noise with scale noiseScale/epsilon and clips
// back to [0,1]. Callers hold mu.
func (m *Manager) addNoise(w map[string]float64) map[string]float64 {
	b := m.noiseScale / m.epsilon
	out := make(map[string]float64, len(w))
	for _, k := range sortedKeys(w) {
		out[k] = clamp(w[k]+m.laplace(b), 0, 1)
	}
	return out
}

func (m *Manager) laplace(b float64) float64 {
	if b == 0 {
		return 0
	}
	u := m.rng.Float64() - 0.5
	if u == -0.5 {
		return 0
	}
	return -b * math.Copysign(1, u) * math.Log(1-2*math.Abs(u))
}

func hashUser(userID string) string {
	sum := sha256.Sum256([]byte(userID))
	return hex.EncodeToString(sum[:])[:16]
}

// maskKey derives a 32-bit mask from the user hash and the key's position
// in sorted order.
func maskKey(userHash string, idx int) int64 {
	sum := sha256.Sum256([]byte(userHash + "_" + strconv.Itoa(idx)))
	return int64(binary.BigEndian.Uint32(sum[:4]))
}

func mask(w map[string]float64, userHash string) map[string]int64 {
	out := make(map[string]int64, len(w))
	for idx, k := range sortedKeys(w) {
		out[k] = int64(math.Round(w[k]*maskScale)) ^ maskKey(userHash, idx)
	}
	return out
}

func unmask(masked map[string]int64, userHash string) map[string]float64 {
	keys := make([]string, 0, len(masked))
	for k := range masked {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]float64, len(masked))
	for idx, k := range keys {
		out[k] = float64(masked[k]^maskKey(userHash, idx)) / maskScale
	}
	return out
}

func aggregate(all []map[string]float64, reduce func([]float64) float64) map[string]float64 {
	keys := make(map[string]struct{})
	for _, w := range all {
		for k := range w {
			keys[k] = struct{}{}
		}
	}
	out := make(map[string]float64, len(keys))
	vals := make([]float64, len(all))
	for k := range keys {
		for i, w := range all {
			v, ok := w[k]
			if !ok {
				v = missingWeight
			}
			vals[i] = v
		}
		out[k] = reduce(vals)
	}
	return out
}

func mean(v []float64) float64 {
	var s float64
	for _, x := range v {
		s += x
	}
	return s / float64(len(v))
}

func median(v []float64) float64 {
	s := append([]float64(nil), v...)
	sort.Float64s(s)
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}

// trimmedMean drops the lowest and highest 10% before averaging.
func trimmedMean(v []float64) float64 {
	n := len(v)
	trim := int(float64(n) * trimRatio)
	if trim == 0 || trim >= n/2 {
		return mean(v)
	}
	s := append([]float64(nil), v...)
	sort.Float64s(s)
	return mean(s[trim : n-trim])
}

func validMethod(m string) bool {
	return m == MethodFedAvg || m == MethodMedian || m == MethodTrimmedMean
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func copyMap(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
