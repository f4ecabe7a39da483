package services

import (
	"fmt"
	"time"

	"karmafeed/internal/db"
	"karmafeed/internal/models"
)

const (
	// LeaderboardWindow is the trailing window karma is summed over.
	LeaderboardWindow = 24 * time.Hour
	// LeaderboardSize caps the number of returned entries.
	LeaderboardSize = 5
)

// UserRef is the compact user shape embedded in API payloads.
type UserRef struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

type LeaderboardEntry struct {
	User  UserRef `json:"user"`
	Karma int     `json:"karma"`
}

// Leaderboard sums ledger deltas per beneficiary over the trailing window and
// returns the top entries, highest karma first. Ties break on ascending user
// id so the order is deterministic. Users absent from the window are never
// materialized as zero rows, and beneficiaries that no longer resolve to a
// user are dropped silently rather than failing the whole board.
func Leaderboard(now time.Time) ([]LeaderboardEntry, error) {
	since := now.Add(-LeaderboardWindow)

	type karmaRow struct {
		UserID uint
		Karma  int
	}
	var rows []karmaRow
	if err := db.DB.Model(&models.KarmaEvent{}).
		Select("user_id, SUM(delta) AS karma").
		Where("created_at >= ?", since).
		Group("user_id").
		Order("karma DESC, user_id ASC").
		Limit(LeaderboardSize).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("aggregate karma: %w", err)
	}

	entries := make([]LeaderboardEntry, 0, len(rows))
	if len(rows) == 0 {
		return entries, nil
	}

	userIDs := make([]uint, len(rows))
	for i, r := range rows {
		userIDs[i] = r.UserID
	}
	var users []models.User
	if err := db.DB.Where("id IN ?", userIDs).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("load leaderboard users: %w", err)
	}
	byID := make(map[uint]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	for _, r := range rows {
		u, ok := byID[r.UserID]
		if !ok {
			continue
		}
		entries = append(entries, LeaderboardEntry{
			User:  UserRef{ID: u.ID, Username: u.Username},
			Karma: r.Karma,
		})
	}
	return entries, nil
}
