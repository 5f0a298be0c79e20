// Package rules loads the externally authored classification rule tables.
package rules

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"brain_server/core/domain"
	"brain_server/pkg/cache"
	"brain_server/pkg/logger"
)

// Rule files live in one directory and are hot-reloadable via the management
// API. A malformed category is skipped with a warning, never fatal: the
// classifier must keep running on whatever rules parse.
const (
	moodRulesFile   = "mood.json"
	intentRulesFile = "intents.json"
	stateRulesFile  = "states.json"

	redisRulesKey = "brain:rules:tables"
)

// FileSource implements domain.RuleSource over JSON files, with a Redis copy
// so that a reload on one instance propagates to the others.
type FileSource struct {
	dir      string
	redis    *cache.RedisCache
	redisTTL time.Duration

	mu     sync.RWMutex
	tables domain.RuleTables
}

// NewFileSource loads the tables once. Load order: Redis copy first (another
// instance may carry fresher edits), then the files, then built-in defaults.
func NewFileSource(dir string, redisCache *cache.RedisCache, redisTTL time.Duration) *FileSource {
	s := &FileSource{
		dir:      dir,
		redis:    redisCache,
		redisTTL: redisTTL,
	}

	if s.loadFromRedis() {
		return s
	}
	if err := s.Reload(); err != nil {
		logger.WithError(err).Warn("rule files unavailable, using built-in defaults")
		s.mu.Lock()
		s.tables = defaultTables()
		s.mu.Unlock()
	}
	return s
}

// Tables returns the current snapshot. The returned maps must be treated as
// read-only; Reload swaps the whole value rather than mutating in place.
func (s *FileSource) Tables() domain.RuleTables {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tables
}

// Reload re-reads the rule files, merges them over the built-in defaults and
// publishes the result to Redis.
func (s *FileSource) Reload() error {
	tables := defaultTables()

	moodLoaded, err := loadTable(filepath.Join(s.dir, moodRulesFile))
	if err != nil {
		return fmt.Errorf("load mood rules: %w", err)
	}
	if moodLoaded != nil {
		tables.Mood = moodLoaded
	}

	intentLoaded, err := loadTable(filepath.Join(s.dir, intentRulesFile))
	if err != nil {
		return fmt.Errorf("load intent rules: %w", err)
	}
	if intentLoaded != nil {
		tables.Intent = intentLoaded
	}

	stateLoaded, err := loadStateRules(filepath.Join(s.dir, stateRulesFile))
	if err != nil {
		return fmt.Errorf("load state rules: %w", err)
	}
	if stateLoaded != nil {
		tables.State = stateLoaded
	}

	s.mu.Lock()
	s.tables = tables
	s.mu.Unlock()

	s.storeToRedis(tables)

	logger.WithFields(map[string]any{
		"mood_categories":   len(tables.Mood),
		"intent_categories": len(tables.Intent),
		"state_intents":     len(tables.State),
	}).Info("rule tables loaded")
	return nil
}

// loadTable reads one category table. A missing file is not an error (nil is
// returned so the defaults stand); a malformed category inside an otherwise
// valid file is dropped with a warning.
func loadTable(path string) (domain.RuleTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}

	table := make(domain.RuleTable, len(raw))
	for name, body := range raw {
		var category domain.RuleCategory
		if err := json.Unmarshal(body, &category); err != nil {
			logger.WithField("category", name).WithError(err).Warn("skipping malformed rule category")
			continue
		}
		if len(category.Phrases) == 0 {
			logger.WithField("category", name).Warn("skipping rule category without phrases")
			continue
		}
		table[name] = category
	}
	return table, nil
}

func loadStateRules(path string) (domain.StateRules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var raw map[string][]domain.StateRule
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}

	rules := make(domain.StateRules, len(raw))
	for intent, list := range raw {
		kept := make([]domain.StateRule, 0, len(list))
		for _, r := range list {
			if r.State == "" || len(r.Keywords) == 0 {
				logger.WithField("intent", intent).Warn("skipping malformed state rule")
				continue
			}
			kept = append(kept, r)
		}
		if len(kept) > 0 {
			rules[intent] = kept
		}
	}
	return rules, nil
}

func (s *FileSource) loadFromRedis() bool {
	if s.redis == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	var tables domain.RuleTables
	found, err := s.redis.GetJSON(ctx, redisRulesKey, &tables)
	if err != nil || !found || len(tables.Mood) == 0 {
		return false
	}

	s.mu.Lock()
	s.tables = tables
	s.mu.Unlock()
	logger.Info("rule tables restored from redis")
	return true
}

func (s *FileSource) storeToRedis(tables domain.RuleTables) {
	if s.redis == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := s.redis.SetJSON(ctx, redisRulesKey, tables, s.redisTTL); err != nil {
		logger.WithError(err).Warn("failed to publish rule tables to redis")
	}
}
