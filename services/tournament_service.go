package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"swiss-tournament/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TournamentService owns player registration, match reporting, purges and
// the standings view. Every method runs against the injected handle and uses
// at most one transaction.
type TournamentService struct {
	DB *gorm.DB
}

func NewTournamentService(db *gorm.DB) *TournamentService {
	return &TournamentService{DB: db}
}

// RegisterPlayer adds a player with no wins and no matches. The database
// assigns the id.
func (s *TournamentService) RegisterPlayer(ctx context.Context, name string) (*models.Player, error) {
	name = models.NormalizeName(name)
	if name == "" {
		return nil, ErrInvalidName
	}

	player := models.Player{
		Name: name,
		Slug: models.NameSlug(name),
	}
	if err := s.DB.WithContext(ctx).Create(&player).Error; err != nil {
		log.Printf("❌ [PLAYERS] Failed to register %q: %v", name, err)
		return nil, storageErr(err)
	}

	log.Printf("✅ [PLAYERS] Registered player %d (%s)", player.ID, player.Name)
	return &player, nil
}

func (s *TournamentService) CountPlayers(ctx context.Context) (int64, error) {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.Player{}).Count(&count).Error; err != nil {
		return 0, storageErr(err)
	}
	return count, nil
}

// SearchPlayers matches the query against stored name slugs, so accents and
// punctuation in either side are ignored. An empty query lists players in
// registration order.
func (s *TournamentService) SearchPlayers(ctx context.Context, query string, limit int) ([]models.Player, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}

	db := s.DB.WithContext(ctx).Model(&models.Player{}).Order("player_id ASC").Limit(limit)
	if key := models.NameSlug(query); key != "" {
		db = db.Where("slug LIKE ?", "%"+key+"%")
	}

	players := []models.Player{}
	if err := db.Find(&players).Error; err != nil {
		return nil, storageErr(err)
	}
	return players, nil
}

// Standings returns every player once, most wins first. Players tied on wins
// keep registration order.
func (s *TournamentService) Standings(ctx context.Context) ([]models.Standing, error) {
	var players []models.Player
	if err := s.DB.WithContext(ctx).
		Order("wins DESC").
		Order("player_id ASC").
		Find(&players).Error; err != nil {
		log.Printf("❌ [STANDINGS] Query failed: %v", err)
		return nil, storageErr(err)
	}

	standings := make([]models.Standing, len(players))
	for i, p := range players {
		standings[i] = models.Standing{
			ID:      p.ID,
			Name:    p.Name,
			Wins:    p.Wins,
			Matches: p.Matches,
		}
	}
	return standings, nil
}

// ReportMatch records one result. The match row and both counter updates
// commit together or not at all.
func (s *TournamentService) ReportMatch(ctx context.Context, winnerID, loserID uint) (*models.Match, error) {
	if winnerID == loserID {
		return nil, fmt.Errorf("%w: player %d", ErrInvalidMatch, winnerID)
	}

	match := models.Match{WinnerID: winnerID, LoserID: loserID}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Row locks serialize concurrent reports touching the same players.
		var players []models.Player
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("player_id IN ?", []uint{winnerID, loserID}).
			Order("player_id ASC").
			Find(&players).Error; err != nil {
			return err
		}
		if len(players) != 2 {
			return fmt.Errorf("%w: winner %d or loser %d is not registered", ErrUnknownPlayer, winnerID, loserID)
		}

		if err := tx.Create(&match).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Player{}).
			Where("player_id = ?", winnerID).
			Updates(map[string]interface{}{
				"wins":    gorm.Expr("wins + ?", 1),
				"matches": gorm.Expr("matches + ?", 1),
			}).Error; err != nil {
			return err
		}

		return tx.Model(&models.Player{}).
			Where("player_id = ?", loserID).
			Update("matches", gorm.Expr("matches + ?", 1)).Error
	})
	if err != nil {
		if errors.Is(err, ErrUnknownPlayer) {
			return nil, err
		}
		log.Printf("❌ [MATCHES] Failed to report %d beat %d: %v", winnerID, loserID, err)
		return nil, storageErr(err)
	}

	log.Printf("✅ [MATCHES] Recorded match %d: %d beat %d", match.ID, winnerID, loserID)
	return &match, nil
}

// ListMatches returns every recorded match in insertion order.
func (s *TournamentService) ListMatches(ctx context.Context) ([]models.Match, error) {
	matches := []models.Match{}
	if err := s.DB.WithContext(ctx).Order("match_id ASC").Find(&matches).Error; err != nil {
		return nil, storageErr(err)
	}
	return matches, nil
}

// DeleteMatches resets every player's counters and removes all matches in a
// single transaction.
func (s *TournamentService) DeleteMatches(ctx context.Context) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		global := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		if err := global.Model(&models.Player{}).
			Updates(map[string]interface{}{"wins": 0, "matches": 0}).Error; err != nil {
			return err
		}
		return global.Delete(&models.Match{}).Error
	})
	if err != nil {
		log.Printf("❌ [MATCHES] Purge failed: %v", err)
		return storageErr(err)
	}

	log.Println("✅ [MATCHES] All matches deleted and counters reset")
	return nil
}

// DeletePlayers removes all matches and then all players in a single
// transaction.
func (s *TournamentService) DeletePlayers(ctx context.Context) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		global := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		if err := global.Delete(&models.Match{}).Error; err != nil {
			return err
		}
		return global.Delete(&models.Player{}).Error
	})
	if err != nil {
		log.Printf("❌ [PLAYERS] Purge failed: %v", err)
		return storageErr(err)
	}

	log.Println("✅ [PLAYERS] All players and matches deleted")
	return nil
}

// Revision summarizes the current table state for change detection.
func (s *TournamentService) Revision(ctx context.Context) (models.Revision, error) {
	var rev models.Revision
	db := s.DB.WithContext(ctx)

	if err := db.Model(&models.Player{}).
		Select("COUNT(*) AS players, COALESCE(MAX(player_id), 0) AS last_player_id").
		Scan(&rev).Error; err != nil {
		return models.Revision{}, storageErr(err)
	}

	var matches struct {
		Matches     int64
		LastMatchID uint
	}
	if err := db.Model(&models.Match{}).
		Select("COUNT(*) AS matches, COALESCE(MAX(match_id), 0) AS last_match_id").
		Scan(&matches).Error; err != nil {
		return models.Revision{}, storageErr(err)
	}
	rev.Matches = matches.Matches
	rev.LastMatchID = matches.LastMatchID
	return rev, nil
}
