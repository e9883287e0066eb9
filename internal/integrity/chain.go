// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package integrity

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/ideaforge/internal/config"
	"github.com/tomtom215/ideaforge/internal/logging"
	"github.com/tomtom215/ideaforge/internal/metrics"
)

// Chain limits.
const (
	blockKeyPrefix    = "block:"
	maxIdeaIDLen      = 100
	maxHashLen        = 64
	maxMetadataKeys   = 20
	maxMetadataKeyLen = 50
	maxMetadataStrLen = 500

	genesisPreviousHash = "0"
	actionAddIdea       = "add_idea"
)

var (
	// ErrInvalidHash is returned by AddBlock when the idea hash is not hex.
	ErrInvalidHash = errors.New("idea hash is not a hex string")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("chain store is closed")
)

// Block is a single link in the provenance chain.
type Block struct {
	Index        int            `json:"index"`
	Timestamp    string         `json:"timestamp"`
	Data         map[string]any `json:"data"`
	PreviousHash string         `json:"previous_hash"`
	Hash         string         `json:"hash"`
}

// IdeaID returns the idea the block records, or "" for the genesis block.
func (b *Block) IdeaID() string {
	id, _ := b.Data["idea_id"].(string)
	return id
}

// IdeaHash returns the recorded content hash.
func (b *Block) IdeaHash() string {
	h, _ := b.Data["idea_hash"].(string)
	return h
}

// computeHash hashes the sorted-key JSON of every field except Hash.
func (b *Block) computeHash() (string, error) {
	payload := map[string]any{
		"index":         b.Index,
		"timestamp":     b.Timestamp,
		"data":          b.Data,
		"previous_hash": b.PreviousHash,
	}
	return HashJSON(payload)
}

// BlockError describes one verification failure.
type BlockError struct {
	BlockIndex int    `json:"block_index"`
	Error      string `json:"error"`
	Stored     string `json:"stored"`
	Computed   string `json:"computed"`
}

// VerifyResult is the outcome of a full chain verification.
type VerifyResult struct {
	Valid       bool         `json:"valid"`
	ChainLength int          `json:"chain_length"`
	Errors      []BlockError `json:"errors"`
	VerifiedAt  time.Time    `json:"verified_at"`
}

// Summary describes the chain at a glance.
type Summary struct {
	TotalBlocks      int    `json:"total_blocks"`
	UniqueIdeas      int    `json:"unique_ideas"`
	GenesisTimestamp string `json:"genesis_timestamp"`
	LatestTimestamp  string `json:"latest_timestamp"`
	ChainValid       bool   `json:"chain_valid"`
}

// ChainStore is an append-only hash chain of idea content hashes persisted
// in BadgerDB. The full chain is kept in memory and restored on open.
type ChainStore struct {
	db     *badger.DB
	mu     sync.RWMutex
	chain  []Block
	closed bool
	now    func() time.Time
}

// Open opens (or creates) the chain store described by cfg. A fresh store
// gets a genesis block.
func Open(cfg config.LedgerConfig) (*ChainStore, error) {
	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.SyncWrites = cfg.SyncWrites
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	s := &ChainStore{db: db, now: func() time.Time { return time.Now().UTC() }}
	if err := s.restore(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if len(s.chain) == 0 {
		genesis := Block{
			Index:        0,
			Timestamp:    s.now().Format(time.RFC3339Nano),
			Data:         map[string]any{"type": "genesis", "message": "Integrity chain initialized"},
			PreviousHash: genesisPreviousHash,
		}
		if err := s.append(&genesis); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("create genesis block: %w", err)
		}
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Int("blocks", len(s.chain)).
		Msg("Provenance chain opened")
	return s, nil
}

func blockKey(index int) []byte {
	return []byte(fmt.Sprintf("%s%020d", blockKeyPrefix, index))
}

func (s *ChainStore) restore() error {
	prefix := []byte(blockKeyPrefix)
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var b Block
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &b)
			})
			if err != nil {
				return fmt.Errorf("decode block %s: %w", it.Item().Key(), err)
			}
			s.chain = append(s.chain, b)
		}
		return nil
	})
}

// append hashes b, persists it and adds it to the in-memory chain.
// Callers hold mu (or are in Open).
func (s *ChainStore) append(b *Block) error {
	h, err := b.computeHash()
	if err != nil {
		return err
	}
	b.Hash = h

	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("marshal block: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(blockKey(b.Index), data))
	})
	if err != nil {
		return fmt.Errorf("persist block %d: %w", b.Index, err)
	}
	s.chain = append(s.chain, *b)
	metrics.LedgerBlocks.Inc()
	return nil
}

// AddBlock appends an add_idea block and returns its hash. The idea ID is
// truncated to 100 characters and the hash to 64; a non-hex hash is
// rejected with ErrInvalidHash.
func (s *ChainStore) AddBlock(ideaID, ideaHash string, metadata map[string]any) (string, error) {
	ideaID = truncate(ideaID, maxIdeaIDLen)
	ideaHash = truncate(ideaHash, maxHashLen)
	if !isHex(ideaHash) {
		return "", ErrInvalidHash
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", ErrClosed
	}

	prev := s.chain[len(s.chain)-1]
	b := Block{
		Index:     len(s.chain),
		Timestamp: s.now().Format(time.RFC3339Nano),
		Data: map[string]any{
			"idea_id":   ideaID,
			"idea_hash": ideaHash,
			"metadata":  SanitizeMetadata(metadata),
			"action":    actionAddIdea,
		},
		PreviousHash: prev.Hash,
	}
	if err := s.append(&b); err != nil {
		return "", err
	}
	return b.Hash, nil
}

// Verify recomputes every block hash and checks every link.
func (s *ChainStore) Verify() VerifyResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.verifyLocked()
}

func (s *ChainStore) verifyLocked() VerifyResult {
	res := VerifyResult{ChainLength: len(s.chain), VerifiedAt: s.now()}
	if len(s.chain) == 0 {
		res.Errors = append(res.Errors, BlockError{Error: "empty chain"})
		return res
	}

	for i := range s.chain {
		b := &s.chain[i]
		computed, err := b.computeHash()
		if err != nil || computed != b.Hash {
			res.Errors = append(res.Errors, BlockError{
				BlockIndex: i,
				Error:      "hash mismatch",
				Stored:     b.Hash,
				Computed:   computed,
			})
		}
		if i > 0 && b.PreviousHash != s.chain[i-1].Hash {
			res.Errors = append(res.Errors, BlockError{
				BlockIndex: i,
				Error:      "previous hash mismatch",
				Stored:     b.PreviousHash,
				Computed:   s.chain[i-1].Hash,
			})
		}
	}
	res.Valid = len(res.Errors) == 0
	return res
}

// Provenance returns every block recorded for ideaID, oldest first.
func (s *ChainStore) Provenance(ideaID string) []Block {
	ideaID = truncate(ideaID, maxIdeaIDLen)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Block
	for i := range s.chain {
		if s.chain[i].IdeaID() == ideaID && ideaID != "" {
			out = append(out, cloneBlock(&s.chain[i]))
		}
	}
	return out
}

// VerifyIdeaHash reports whether the most recent block for ideaID records
// currentHash. Ideas with no block never verify.
func (s *ChainStore) VerifyIdeaHash(ideaID, currentHash string) bool {
	ideaID = truncate(ideaID, maxIdeaIDLen)
	currentHash = truncate(currentHash, maxHashLen)

	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.chain) - 1; i > 0; i-- {
		if s.chain[i].IdeaID() == ideaID {
			return s.chain[i].IdeaHash() == currentHash
		}
	}
	return false
}

// Summary returns block and idea counts plus the verification status.
func (s *ChainStore) Summary() Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ideas := make(map[string]struct{})
	for i := 1; i < len(s.chain); i++ {
		if id := s.chain[i].IdeaID(); id != "" {
			ideas[id] = struct{}{}
		}
	}
	sum := Summary{
		TotalBlocks: len(s.chain),
		UniqueIdeas: len(ideas),
		ChainValid:  s.verifyLocked().Valid,
	}
	if len(s.chain) > 0 {
		sum.GenesisTimestamp = s.chain[0].Timestamp
		sum.LatestTimestamp = s.chain[len(s.chain)-1].Timestamp
	}
	return sum
}

// Export returns a copy of the full chain.
func (s *ChainStore) Export() []Block {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Block, len(s.chain))
	for i := range s.chain {
		out[i] = cloneBlock(&s.chain[i])
	}
	return out
}

// Len returns the number of blocks including genesis.
func (s *ChainStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chain)
}

// Close closes the underlying BadgerDB.
func (s *ChainStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// SanitizeMetadata keeps at most 20 scalar entries with keys truncated to 50
// characters and strings to 500. Nested values are dropped. Keys are taken
// in sorted order so the result does not depend on map iteration.
func SanitizeMetadata(in map[string]any) map[string]any {
	out := make(map[string]any)
	if len(in) == 0 {
		return out
	}
	for _, k := range sortedKeys(in) {
		if len(out) >= maxMetadataKeys {
			break
		}
		key := truncate(k, maxMetadataKeyLen)
		switch v := in[k].(type) {
		case string:
			out[key] = truncate(v, maxMetadataStrLen)
		case bool, float64, float32, int, int32, int64, uint, uint32, uint64:
			out[key] = v
		case nil:
			out[key] = nil
		}
	}
	return out
}

// HashJSON returns the hex sha256 of v's JSON encoding. Map keys are
// emitted in sorted order, so equal maps hash equally.
func HashJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal for hashing: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func cloneBlock(b *Block) Block {
	c := *b
	c.Data = make(map[string]any, len(b.Data))
	for k, v := range b.Data {
		c.Data[k] = v
	}
	return c
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	_, err := hex.DecodeString(padEven(s))
	return err == nil
}

func padEven(s string) string {
	if len(s)%2 == 1 {
		return "0" + s
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
