// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

/*
Package feedback applies user ratings, pairwise comparisons and reviews to
idea rating state.

Rules holds the pure update arithmetic:

  - Rating: Elo moves by (stars-3)*StarStep.
  - Compare: a standard Elo match with K = EloK.
  - Review: the four-dimension average is scored as a match against a
    1500-rated opponent, the Bayesian mean moves toward the average by
    LearningRate and uncertainty decays.

Every Elo result is clamped to [EloMin, EloMax].

Service is the single writer. Submissions are published to a Watermill
gochannel topic and applied one at a time by a router handler, so a
read-modify-write of an idea's rating never races another. The caller
blocks until its command is applied or SubmitTimeout passes.

After each applied command the service appends a feedback record, saves an
idea version snapshot, invalidates the ranker's response cache and
publishes a FeedbackApplied event.

Federated updates are delegated to a federated.Manager. Aggregation moves
the ranker's base weights toward the global model by LearningRate.
*/
package feedback
