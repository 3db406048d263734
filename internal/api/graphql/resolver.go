package graphqlapi

import (
	"context"

	"github.com/i474232898/activity-ranking/internal/activity"
	"github.com/i474232898/activity-ranking/internal/ranker"
)

// Ranker ranks activities for coordinates or addresses.
type Ranker interface {
	RankCoordinates(ctx context.Context, lat, lon float64) (ranker.Result, error)
	RankAddress(ctx context.Context, address string) (ranker.Result, error)
}

// Resolver is the root query resolver.
type Resolver struct {
	ranker Ranker
}

// NewResolver creates the root resolver.
func NewResolver(r Ranker) *Resolver {
	return &Resolver{ranker: r}
}

type rankArgs struct {
	Latitude  float64
	Longitude float64
}

// Rank resolves Query.rank.
func (r *Resolver) Rank(ctx context.Context, args rankArgs) ([]*scoreResolver, error) {
	res, err := r.ranker.RankCoordinates(ctx, args.Latitude, args.Longitude)
	if err != nil {
		return nil, err
	}
	return scores(res.Ranking), nil
}

type rankAddressArgs struct {
	Address string
}

// RankAddress resolves Query.rankAddress.
func (r *Resolver) RankAddress(ctx context.Context, args rankAddressArgs) ([]*scoreResolver, error) {
	res, err := r.ranker.RankAddress(ctx, args.Address)
	if err != nil {
		return nil, err
	}
	return scores(res.Ranking), nil
}

func scores(ranking activity.Ranking) []*scoreResolver {
	out := make([]*scoreResolver, 0, len(ranking))
	for _, s := range ranking {
		out = append(out, &scoreResolver{s: s})
	}
	return out
}

type scoreResolver struct {
	s activity.Score
}

func (r *scoreResolver) Activity() string {
	return r.s.Activity.String()
}

func (r *scoreResolver) Score() float64 {
	return float64(r.s.Score)
}
