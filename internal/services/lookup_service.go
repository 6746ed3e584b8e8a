package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/AnhAnhii/veterans-verify-system/internal/cache"
	"github.com/AnhAnhii/veterans-verify-system/internal/logger"
	"github.com/AnhAnhii/veterans-verify-system/internal/lookup"
	"github.com/AnhAnhii/veterans-verify-system/internal/models"
)

// ILookupService searches the public VA registries with a shared result cache.
type ILookupService interface {
	Search(ctx context.Context, source models.VASource, q models.LookupQuery, useCache bool) (*models.VALookupResponse, error)
	SearchAll(ctx context.Context, q models.LookupQuery, useCache bool) (*models.VAAggregateResponse, error)
	FlushCache(ctx context.Context) (int, error)
}

type lookupService struct {
	registries       map[models.VASource]lookup.Registry
	cache            cache.ILookupCache
	aggregateTimeout time.Duration
	log              *zap.Logger
}

// NewLookupService indexes registries by source. lookupCache may be nil.
func NewLookupService(registries []lookup.Registry, lookupCache cache.ILookupCache, aggregateTimeout time.Duration, log *zap.Logger) ILookupService {
	bySource := make(map[models.VASource]lookup.Registry, len(registries))
	for _, r := range registries {
		bySource[r.Source()] = r
	}
	return &lookupService{
		registries:       bySource,
		cache:            lookupCache,
		aggregateTimeout: aggregateTimeout,
		log:              logger.Named(log, "lookup"),
	}
}

// scopeQuery drops filters the source does not take: state only narrows the
// grave locator and branch only the memorial search.
func scopeQuery(source models.VASource, q models.LookupQuery) models.LookupQuery {
	if source != models.SourceGraveLocator {
		q.State = ""
	}
	if source != models.SourceVLM {
		q.Branch = ""
	}
	return q
}

// cacheKey is the query text plus any filters that change the upstream answer.
func cacheKey(q models.LookupQuery) string {
	key := q.Text()
	if q.State != "" {
		key += ":" + q.State
	}
	if q.Branch != "" {
		key += ":" + string(q.Branch)
	}
	return key
}

func (s *lookupService) Search(ctx context.Context, source models.VASource, q models.LookupQuery, useCache bool) (*models.VALookupResponse, error) {
	registry, ok := s.registries[source]
	if !ok {
		return nil, fmt.Errorf("%w: lookup source %q", models.ErrInvalidEnum, source)
	}

	q = scopeQuery(source, q)
	q.FirstName = strings.TrimSpace(q.FirstName)
	q.LastName = strings.TrimSpace(q.LastName)
	resp := &models.VALookupResponse{Query: q.Text(), Source: source}
	key := cacheKey(q)

	if useCache && s.cache != nil {
		results, hit, err := s.cache.Get(ctx, source, key)
		if err != nil {
			s.log.Warn("lookup cache read failed", zap.String("source", string(source)), zap.Error(err))
		} else if hit {
			resp.Results = results
			resp.TotalResults = len(results)
			resp.Cached = true
			return resp, nil
		}
	}

	results, err := registry.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []models.VALookupResult{}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, source, key, results); err != nil {
			s.log.Warn("lookup cache write failed", zap.String("source", string(source)), zap.Error(err))
		}
	}

	resp.Results = results
	resp.TotalResults = len(results)
	return resp, nil
}

// SearchAll queries every registry concurrently. A failing registry contributes no results.
// State is ignored; branch reaches the memorial search only.
func (s *lookupService) SearchAll(ctx context.Context, q models.LookupQuery, useCache bool) (*models.VAAggregateResponse, error) {
	q.State = ""
	if s.aggregateTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.aggregateTimeout)
		defer cancel()
	}

	agg := &models.VAAggregateResponse{
		Sources: make(map[models.VASource]models.VALookupResponse, len(models.AllSources())),
	}
	var mu sync.Mutex
	var g errgroup.Group

	for _, source := range models.AllSources() {
		g.Go(func() error {
			resp, err := s.Search(ctx, source, q, useCache)
			if err != nil {
				s.log.Warn("registry search failed", zap.String("source", string(source)), zap.Error(err))
				resp = &models.VALookupResponse{Source: source, Results: []models.VALookupResult{}}
			}
			mu.Lock()
			agg.Sources[source] = *resp
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	q.FirstName = strings.TrimSpace(q.FirstName)
	q.LastName = strings.TrimSpace(q.LastName)
	agg.Query = q.Text()
	for source, resp := range agg.Sources {
		resp.Query = agg.Query
		agg.Sources[source] = resp
		agg.TotalResults += resp.TotalResults
	}
	return agg, nil
}

func (s *lookupService) FlushCache(ctx context.Context) (int, error) {
	if s.cache == nil {
		return 0, nil
	}
	return s.cache.Flush(ctx)
}
