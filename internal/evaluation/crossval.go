// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package evaluation

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/tomtom215/ideaforge/internal/idea"
	"github.com/tomtom215/ideaforge/internal/logging"
)

// Fold and split bounds.
const (
	MinFolds     = 2
	MaxFolds     = 10
	DefaultFolds = 5

	MinTestRatio = 0.1
	MaxTestRatio = 0.5
)

var crossValKValues = []int{5, 10}

// FoldRanker ranks the test fold given the training ideas and returns ids
// in ranked order.
type FoldRanker func(ctx context.Context, train, test []*idea.Idea) ([]string, error)

// Stat is a mean and population standard deviation across folds.
type Stat struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

// StatAtK maps a cutoff to its fold statistics.
type StatAtK map[int]Stat

// CrossValidation aggregates per-fold metrics.
type CrossValidation struct {
	NDCG          StatAtK `json:"ndcg"`
	Precision     StatAtK `json:"precision"`
	Recall        StatAtK `json:"recall"`
	F1            StatAtK `json:"f1"`
	DiversityMean float64 `json:"diversity_mean"`
	FairnessMean  float64 `json:"fairness_mean"`
	NFolds        int     `json:"n_folds"`
}

// CrossValidate runs k-fold cross-validation. Folds are clamped to [2,10];
// ideas are shuffled with seed, split into equal folds with the remainder in
// the last one, and each fold is scored against its own ids. Folds whose
// ranking fails are skipped.
func CrossValidate(ctx context.Context, ideas []*idea.Idea, rank FoldRanker, nFolds int, seed uint64) (CrossValidation, error) {
	nFolds = max(MinFolds, min(MaxFolds, nFolds))
	if len(ideas) < nFolds {
		return CrossValidation{}, fmt.Errorf("%w: %d ideas, %d folds", ErrInvalidFolds, len(ideas), nFolds)
	}

	shuffled := shuffle(ideas, seed)
	size := len(shuffled) / nFolds
	folds := make([][]*idea.Idea, nFolds)
	for i := range folds {
		start := i * size
		end := start + size
		if i == nFolds-1 {
			end = len(shuffled)
		}
		folds[i] = shuffled[start:end]
	}

	log := logging.WithComponent("crossval")
	var results []Metrics
	for i, test := range folds {
		if err := ctx.Err(); err != nil {
			return CrossValidation{}, err
		}
		train := make([]*idea.Idea, 0, len(shuffled)-len(test))
		for j, f := range folds {
			if j != i {
				train = append(train, f...)
			}
		}

		ranked, err := rank(ctx, train, test)
		if err != nil {
			log.Debug().Err(err).Int("fold", i).Msg("Fold ranking failed")
			continue
		}
		m, err := Evaluate(ranked, ids(test), crossValKValues)
		if err != nil {
			log.Debug().Err(err).Int("fold", i).Msg("Fold evaluation failed")
			continue
		}
		results = append(results, m)
	}

	if len(results) == 0 {
		return CrossValidation{}, ErrCrossValidationFailed
	}
	return aggregateFolds(results), nil
}

// TrainTestSplit shuffles ideas with seed and splits off a test set of the
// given ratio, clamped to [0.1, 0.5].
func TrainTestSplit(ideas []*idea.Idea, ratio float64, seed uint64) (train, test []*idea.Idea) {
	if math.IsNaN(ratio) {
		ratio = 0.2
	}
	ratio = math.Max(MinTestRatio, math.Min(MaxTestRatio, ratio))
	shuffled := shuffle(ideas, seed)
	cut := int(float64(len(shuffled)) * (1 - ratio))
	return shuffled[:cut], shuffled[cut:]
}

func aggregateFolds(results []Metrics) CrossValidation {
	cv := CrossValidation{NFolds: len(results)}
	// Small folds clamp K differently, so each cutoff is averaged over the
	// folds that produced it.
	pick := func(get func(Metrics) AtK) StatAtK {
		byK := map[int][]float64{}
		for _, r := range results {
			for k, v := range get(r) {
				byK[k] = append(byK[k], v)
			}
		}
		out := StatAtK{}
		for k, vals := range byK {
			out[k] = meanStd(vals)
		}
		return out
	}
	cv.NDCG = pick(func(m Metrics) AtK { return m.NDCG })
	cv.Precision = pick(func(m Metrics) AtK { return m.Precision })
	cv.Recall = pick(func(m Metrics) AtK { return m.Recall })
	cv.F1 = pick(func(m Metrics) AtK { return m.F1 })

	var div, fair float64
	for _, r := range results {
		div += r.Diversity
		fair += r.FairnessIndex
	}
	cv.DiversityMean = div / float64(len(results))
	cv.FairnessMean = fair / float64(len(results))
	return cv
}

func meanStd(v []float64) Stat {
	var sum float64
	for _, x := range v {
		sum += x
	}
	mean := sum / float64(len(v))
	var sq float64
	for _, x := range v {
		sq += (x - mean) * (x - mean)
	}
	return Stat{Mean: mean, Std: math.Sqrt(sq / float64(len(v)))}
}

func shuffle(ideas []*idea.Idea, seed uint64) []*idea.Idea {
	out := make([]*idea.Idea, len(ideas))
	copy(out, ideas)
	r := rand.New(rand.NewPCG(seed, seed^0x5851f42d4c957f2d))
	r.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

func ids(ideas []*idea.Idea) []string {
	out := make([]string, len(ideas))
	for i, x := range ideas {
		out[i] = x.ID
	}
	return out
}
