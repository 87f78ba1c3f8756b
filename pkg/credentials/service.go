package credentials

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/voicelane/voicelane/pkg/cache"
	"github.com/voicelane/voicelane/pkg/domain"
	"github.com/voicelane/voicelane/pkg/logger"
	"github.com/voicelane/voicelane/pkg/store"
)

// OpenAI secret keys start with this prefix. Keys that don't are rejected
// before any request is made.
const openAIKeyPrefix = "sk-"

// cacheTTL keeps resolved keys hot without letting revoked keys linger.
const cacheTTL = 5 * time.Minute

// Label used on the cache hit/miss counters.
const cacheType = "openai_key"

// CacheMetrics records credential-cache hits and misses.
type CacheMetrics interface {
	RecordCacheHit(cacheType string)
	RecordCacheMiss(cacheType string)
}

// Service resolves and validates per-user API credentials. The settings
// table is the source of truth; Redis fronts it with a short TTL.
type Service struct {
	settings *store.SettingsStore
	cache    *cache.Client // optional
	metrics  CacheMetrics  // optional
	logger   logger.Logger
}

// NewService creates a new credentials service. cacheClient and m may be nil.
func NewService(settings *store.SettingsStore, cacheClient *cache.Client, m CacheMetrics, log logger.Logger) *Service {
	if log == nil {
		log = logger.Default()
	}
	return &Service{
		settings: settings,
		cache:    cacheClient,
		metrics:  m,
		logger:   log,
	}
}

// OpenAIKey returns the user's stored OpenAI API key. A missing or malformed
// key yields a credential error.
func (s *Service) OpenAIKey(ctx context.Context, userID string) (string, error) {
	cacheKey := fmt.Sprintf("cred:openai:%s", userID)

	if s.cache != nil {
		value, err := s.cache.Get(ctx, cacheKey)
		if err == nil && value != "" {
			if s.metrics != nil {
				s.metrics.RecordCacheHit(cacheType)
			}
			return value, nil
		}
		if err != nil && !cache.IsMiss(err) {
			// A broken cache degrades to a database read, it never fails
			// the lookup.
			s.logger.Warn("credential cache read failed", "user_id", userID, "error", err)
		}
		if s.metrics != nil {
			s.metrics.RecordCacheMiss(cacheType)
		}
	}

	value, err := s.settings.Get(ctx, userID, store.SettingOpenAIAPIKey)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", domain.NewCredentialError("no OpenAI API key configured for user")
		}
		return "", domain.NewDatabaseError(err)
	}

	if err := ValidateOpenAIKey(value); err != nil {
		return "", err
	}

	if s.cache != nil {
		// Best effort; a cache write failure never blocks analysis.
		_ = s.cache.Set(ctx, cacheKey, value, cacheTTL)
	}

	return value, nil
}

// SaveOpenAIKey validates and stores a user's OpenAI API key, invalidating
// any cached copy.
func (s *Service) SaveOpenAIKey(ctx context.Context, userID, key string) error {
	if err := ValidateOpenAIKey(key); err != nil {
		return err
	}
	if err := s.settings.Set(ctx, userID, store.SettingOpenAIAPIKey, key); err != nil {
		return domain.NewDatabaseError(err)
	}
	if s.cache != nil {
		_ = s.cache.Delete(ctx, fmt.Sprintf("cred:openai:%s", userID))
	}
	return nil
}

// ValidateOpenAIKey checks the shape of an OpenAI API key
func ValidateOpenAIKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return domain.NewCredentialError("OpenAI API key is empty")
	}
	if !strings.HasPrefix(key, openAIKeyPrefix) {
		return domain.NewCredentialError(`OpenAI API key must start with "sk-"`)
	}
	return nil
}
