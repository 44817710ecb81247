package steam

import (
	"context"
	"math"

	"github.com/okian/gametaste/internal/domain/model"
	"github.com/okian/gametaste/pkg/logger"
)

// Snapshot is a fetched library ready for normalization.
type Snapshot struct {
	SteamID string
	// Titles holds the most played titles with store metadata attached.
	Titles []model.RawTitle
	// Owned holds every owned app ID, unplayed ones included.
	Owned map[int64]struct{}
	Stats model.LibraryStats
}

// Library fetches a user's library through a Client.
type Library struct {
	client *Client
	log    logger.Logger
}

// NewLibrary creates a Library over client.
func NewLibrary(client *Client) *Library {
	return &Library{client: client, log: client.log.Named("library")}
}

// Fetch resolves ref, lists its owned games and enriches the topK most played
// ones with store genres (as genres) and categories (as tags). A title whose
// lookup failed keeps nil genres and tags. dc may be nil.
func (l *Library) Fetch(ctx context.Context, ref ProfileRef, topK int, dc *DetailsCache) (*Snapshot, error) {
	steamID, err := l.client.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	games, err := l.client.OwnedGames(ctx, steamID)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		SteamID: steamID,
		Owned:   make(map[int64]struct{}, len(games)),
		Stats:   Stats(games),
	}
	played := make([]OwnedGame, 0, topK)
	for _, g := range games {
		snap.Owned[g.AppID] = struct{}{}
		if g.PlaytimeForever > 0 && len(played) < topK {
			played = append(played, g)
		}
	}

	ids := make([]int64, len(played))
	for i, g := range played {
		ids[i] = g.AppID
	}
	details, err := l.client.Details(ctx, ids, dc)
	if err != nil {
		return nil, err
	}

	snap.Titles = make([]model.RawTitle, len(played))
	missing := 0
	for i, g := range played {
		t := model.RawTitle{
			ID:              g.AppID,
			Name:            g.Name,
			PlaytimeMinutes: g.PlaytimeForever,
			RecentMinutes:   g.Playtime2Weeks,
		}
		if d := details[i]; d != nil {
			t.Genres = d.Genres
			t.Tags = d.Categories
			if t.Name == "" {
				t.Name = d.Name
			}
		} else {
			missing++
		}
		snap.Titles[i] = t
	}

	l.log.Info(ctx, "library fetched",
		logger.String("steamid", steamID),
		logger.Int("owned", len(games)),
		logger.Int("enriched", len(played)-missing),
		logger.Int("missing_details", missing),
	)
	return snap, nil
}

// Stats computes library-wide totals from the owned games list.
func Stats(games []OwnedGame) model.LibraryStats {
	var minutes int64
	st := model.LibraryStats{OwnedCount: len(games), Recent: []model.RecentTitle{}}
	for _, g := range games {
		minutes += g.PlaytimeForever
		if g.PlaytimeForever > 0 {
			st.PlayedCount++
		}
		if g.Playtime2Weeks > 0 {
			st.Recent = append(st.Recent, model.RecentTitle{ID: g.AppID, Name: g.Name, RecentMinutes: g.Playtime2Weeks})
		}
	}
	st.UnplayedCount = st.OwnedCount - st.PlayedCount
	st.TotalPlaytimeHours = math.Round(float64(minutes)/60*10) / 10
	return st
}
