package services

import (
	"context"
	"math"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/citypulse/eventdiscovery/internal/domain/entities"
	"github.com/citypulse/eventdiscovery/internal/domain/repositories"
	"github.com/citypulse/eventdiscovery/internal/infrastructure/observability"
)

// Combined score weights; must sum to 1.0
const (
	weightRelevance         = 0.4
	weightDateProximity     = 0.2
	weightLocationProximity = 0.15
	weightUserPreference    = 0.15
	weightPopularity        = 0.1
)

// Location proximity ladder
const (
	locationCityMatch  = 1.0
	locationStateMatch = 0.7
	locationNoMatch    = 0.3
	locationNeutral    = 0.5
)

// defaultPopularity is a placeholder until engagement telemetry exists
const defaultPopularity = 0.5

// SearchRankingService scores, deduplicates, and orders candidates from
// both sources. Scoring of individual candidates is independent and fanned
// out across a worker pool bounded by available cores.
type SearchRankingService struct {
	users repositories.UserRepository

	// PopularityProvider is the extension seam for engagement telemetry.
	// The default returns a flat score for every candidate.
	PopularityProvider func(candidate entities.CandidateEvent) float64

	now func() time.Time
}

func NewSearchRankingService(users repositories.UserRepository) *SearchRankingService {
	return &SearchRankingService{
		users:              users,
		PopularityProvider: func(entities.CandidateEvent) float64 { return defaultPopularity },
		now:                time.Now,
	}
}

// Rank merges knowledge-base and local candidates into a single ordered
// result set. A missing or unfetchable user degrades to neutral preference
// scoring rather than failing the call.
func (s *SearchRankingService) Rank(ctx context.Context, kbCandidates, localCandidates []entities.CandidateEvent, query *entities.SearchQuery) *entities.SearchResultSet {
	candidates := make([]entities.CandidateEvent, 0, len(kbCandidates)+len(localCandidates))
	candidates = append(candidates, kbCandidates...)
	candidates = append(candidates, localCandidates...)

	user := s.lookupUser(ctx, query.UserID)
	tokens := distinctTokens(query.Text)
	now := s.now()

	scored := make([]entities.RankedResult, len(candidates))
	fromKB := func(i int) bool { return i < len(kbCandidates) }

	// Each worker writes only its own indices; no coordination needed
	// beyond the join.
	workers := runtime.GOMAXPROCS(0)
	if workers > len(candidates) {
		workers = len(candidates)
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(offset int) {
			defer wg.Done()
			for i := offset; i < len(candidates); i += workers {
				scored[i] = s.score(candidates[i], tokens, query.Filters, user, now)
			}
		}(w)
	}
	wg.Wait()

	results := dedupe(scored, fromKB)

	sort.Slice(results, func(i, j int) bool {
		if results[i].CombinedScore != results[j].CombinedScore {
			return results[i].CombinedScore > results[j].CombinedScore
		}
		return results[i].EventID < results[j].EventID
	})

	if user != nil {
		for i := range results {
			results[i].IsSaved = user.HasSaved(results[i].EventID)
		}
	}

	return &entities.SearchResultSet{
		Results:      results,
		TotalResults: len(results),
		Query:        query.Text,
	}
}

func (s *SearchRankingService) score(candidate entities.CandidateEvent, tokens []string, filters *entities.SearchFilters, user *entities.User, now time.Time) entities.RankedResult {
	factors := entities.RankingFactors{
		Relevance:           relevanceScore(candidate, tokens),
		DateProximity:       dateProximity(now, candidate.StartDateTime),
		LocationProximity:   locationProximity(candidate, filters),
		UserPreferenceMatch: userPreferenceMatch(candidate, user),
		Popularity:          clamp01(s.PopularityProvider(candidate)),
	}

	combined := weightRelevance*factors.Relevance +
		weightDateProximity*factors.DateProximity +
		weightLocationProximity*factors.LocationProximity +
		weightUserPreference*factors.UserPreferenceMatch +
		weightPopularity*factors.Popularity

	return entities.RankedResult{
		CandidateEvent: candidate,
		Factors:        factors,
		CombinedScore:  combined,
	}
}

func (s *SearchRankingService) lookupUser(ctx context.Context, userID string) *entities.User {
	if userID == "" || s.users == nil {
		return nil
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("user_id", userID).
			Msg("ranking without user profile")
		return nil
	}
	return user
}

// relevanceScore is the fraction of distinct query tokens present as
// substrings of the candidate's title or description. Knowledge-base
// candidates keep the opaque score their retriever assigned.
func relevanceScore(candidate entities.CandidateEvent, tokens []string) float64 {
	if candidate.HasBaseRelevance {
		return clamp01(candidate.BaseRelevance)
	}
	if len(tokens) == 0 {
		return 0
	}

	haystack := strings.ToLower(candidate.Title + " " + candidate.Description)
	matched := 0
	for _, token := range tokens {
		if strings.Contains(haystack, token) {
			matched++
		}
	}
	return float64(matched) / float64(len(tokens))
}

// dateProximity scores 1.0 for an event starting now and decays linearly
// to 0 at a year's distance. Intentionally symmetric between past and
// future.
func dateProximity(now, start time.Time) float64 {
	days := math.Abs(now.Sub(start).Hours() / 24)
	return math.Max(0, 1-days/365)
}

func locationProximity(candidate entities.CandidateEvent, filters *entities.SearchFilters) float64 {
	if filters == nil || filters.Location == nil || (filters.Location.City == "" && filters.Location.State == "") {
		return locationNeutral
	}

	loc := filters.Location
	if loc.City != "" && strings.EqualFold(loc.City, candidate.Location.City) {
		return locationCityMatch
	}
	if loc.State != "" && strings.EqualFold(loc.State, candidate.Location.State) {
		return locationStateMatch
	}
	return locationNoMatch
}

func userPreferenceMatch(candidate entities.CandidateEvent, user *entities.User) float64 {
	if user == nil {
		return 0.5
	}

	score := 0.5
	for _, category := range user.Preferences.Categories {
		if strings.EqualFold(category, candidate.Category) {
			score += 0.3
			break
		}
	}
	for _, loc := range user.Preferences.PreferredLocations {
		if (loc.City != "" && strings.EqualFold(loc.City, candidate.Location.City)) ||
			(loc.State != "" && strings.EqualFold(loc.State, candidate.Location.State)) {
			score += 0.2
			break
		}
	}
	return math.Min(score, 1.0)
}

// dedupe keeps one entry per event id: the higher combined score wins, and
// an exact tie goes to the knowledge-base entry.
func dedupe(scored []entities.RankedResult, fromKB func(int) bool) []entities.RankedResult {
	type kept struct {
		idx  int
		isKB bool
	}
	byID := make(map[string]kept, len(scored))

	for i := range scored {
		id := scored[i].EventID
		current, seen := byID[id]
		if !seen {
			byID[id] = kept{idx: i, isKB: fromKB(i)}
			continue
		}

		replace := scored[i].CombinedScore > scored[current.idx].CombinedScore ||
			(scored[i].CombinedScore == scored[current.idx].CombinedScore && fromKB(i) && !current.isKB)
		if replace {
			byID[id] = kept{idx: i, isKB: fromKB(i)}
		}
	}

	results := make([]entities.RankedResult, 0, len(byID))
	for i := range scored {
		if k, ok := byID[scored[i].EventID]; ok && k.idx == i {
			results = append(results, scored[i])
		}
	}
	return results
}

func distinctTokens(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	seen := make(map[string]struct{}, len(fields))
	tokens := fields[:0]
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		tokens = append(tokens, f)
	}
	return tokens
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
