package repositories

import (
	"time"

	"github.com/bugpredictor/database"
	"github.com/bugpredictor/models"
	"gorm.io/gorm"
)

// TokenRepository stores single-use verification and reset tokens
type TokenRepository struct{}

func NewTokenRepository() *TokenRepository {
	return &TokenRepository{}
}

// Create inserts a token using tx, or the global DB when tx is nil
func (r *TokenRepository) Create(tx *gorm.DB, token *models.UserToken) error {
	if tx == nil {
		tx = database.DB
	}
	return tx.Create(token).Error
}

// FindByHash retrieves a token of kind by its hash
func (r *TokenRepository) FindByHash(kind models.TokenKind, hash string) (models.UserToken, error) {
	var token models.UserToken
	err := database.DB.Where("kind = ? AND token_hash = ?", kind, hash).First(&token).Error
	return token, err
}

// Consume marks an unused token as used. It reports false when another
// caller consumed the token first.
func (r *TokenRepository) Consume(tx *gorm.DB, id string, at time.Time) (bool, error) {
	if tx == nil {
		tx = database.DB
	}
	result := tx.Model(&models.UserToken{}).Where("id = ? AND used_at IS NULL", id).Update("used_at", at)
	return result.RowsAffected == 1, result.Error
}

// InvalidateForUser marks every open token of kind for userID as used
func (r *TokenRepository) InvalidateForUser(userID string, kind models.TokenKind, at time.Time) error {
	return database.DB.Model(&models.UserToken{}).
		Where("user_id = ? AND kind = ? AND used_at IS NULL", userID, kind).
		Update("used_at", at).Error
}

// PurgeExpired deletes tokens that are used or past expiry and returns how many
func (r *TokenRepository) PurgeExpired(now time.Time) (int64, error) {
	result := database.DB.Where("used_at IS NOT NULL OR expires_at < ?", now).Delete(&models.UserToken{})
	return result.RowsAffected, result.Error
}
