package repositories

import (
	"github.com/bugpredictor/database"
	"github.com/bugpredictor/dto"
	"github.com/bugpredictor/models"
	"gorm.io/gorm"
)

// UserRepository handles database operations for users
type UserRepository struct{}

func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

// FindByID retrieves a user by ID regardless of visibility
func (r *UserRepository) FindByID(id string) (models.User, error) {
	var user models.User
	err := database.DB.First(&user, "id = ?", id).Error
	return user, err
}

// FindVisibleByID retrieves a user only if viewer may see them
func (r *UserRepository) FindVisibleByID(viewer *models.User, id string) (models.User, error) {
	var user models.User
	err := database.DB.Scopes(UsersVisibleTo(viewer)).First(&user, "users.id = ?", id).Error
	return user, err
}

// FindByLogin retrieves a user by username or email
func (r *UserRepository) FindByLogin(login string) (models.User, error) {
	var user models.User
	err := database.DB.Where("username = ? OR email = ?", login, login).First(&user).Error
	return user, err
}

func (r *UserRepository) FindByEmail(email string) (models.User, error) {
	var user models.User
	err := database.DB.Where("email = ?", email).First(&user).Error
	return user, err
}

// EmailTaken reports whether another user already uses email
func (r *UserRepository) EmailTaken(email, exceptID string) (bool, error) {
	var count int64
	db := database.DB.Model(&models.User{}).Where("email = ?", email)
	if exceptID != "" {
		db = db.Where("id <> ?", exceptID)
	}
	err := db.Count(&count).Error
	return count > 0, err
}

// UsernameTaken reports whether username is in use
func (r *UserRepository) UsernameTaken(username string) (bool, error) {
	var count int64
	err := database.DB.Model(&models.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

// Create inserts a user using tx, or the global DB when tx is nil
func (r *UserRepository) Create(tx *gorm.DB, user *models.User) error {
	if tx == nil {
		tx = database.DB
	}
	return tx.Create(user).Error
}

// UpdateFields writes only the named columns of user
func (r *UserRepository) UpdateFields(user *models.User, columns ...string) error {
	return database.DB.Model(user).Select(columns).Updates(user).Error
}

// SetPassword stores a new password hash using tx, or the global DB when tx is nil
func (r *UserRepository) SetPassword(tx *gorm.DB, id, hash string) error {
	if tx == nil {
		tx = database.DB
	}
	return tx.Model(&models.User{}).Where("id = ?", id).Update("password", hash).Error
}

// CountReferences counts bugs, comments and uploaded media that point at the user
func (r *UserRepository) CountReferences(id string) (int64, error) {
	var bugs, comments, media int64
	if err := database.DB.Model(&models.Bug{}).
		Where("assigned_to_id = ? OR submitted_by_id = ?", id, id).
		Count(&bugs).Error; err != nil {
		return 0, err
	}
	if err := database.DB.Model(&models.Comment{}).Where("author_id = ?", id).Count(&comments).Error; err != nil {
		return 0, err
	}
	if err := database.DB.Model(&models.BugMedia{}).Where("uploaded_by_id = ?", id).Count(&media).Error; err != nil {
		return 0, err
	}
	return bugs + comments + media, nil
}

// Delete removes a user together with their pending tokens
func (r *UserRepository) Delete(id string) error {
	return database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.UserToken{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, "id = ?", id).Error
	})
}

// FindTeamMembers lists the team members of projectID, used for assignee choices
func (r *UserRepository) FindTeamMembers(projectID string) ([]models.User, error) {
	var users []models.User
	err := database.DB.
		Where("project_id = ? AND role = ?", projectID, models.RoleTeamMember).
		Order("full_name asc").
		Find(&users).Error
	return users, err
}

// FindByIDs loads the users with the given ids
func (r *UserRepository) FindByIDs(ids []string) ([]models.User, error) {
	var users []models.User
	if len(ids) == 0 {
		return users, nil
	}
	err := database.DB.Where("id IN ?", ids).Find(&users).Error
	return users, err
}

// CountVisible counts the users of role viewer can see. An empty role counts all.
func (r *UserRepository) CountVisible(viewer *models.User, role models.Role) (int64, error) {
	var count int64
	db := database.DB.Model(&models.User{}).Scopes(UsersVisibleTo(viewer))
	if role != "" {
		db = db.Where("users.role = ?", role)
	}
	err := db.Count(&count).Error
	return count, err
}

// FindWithPagination lists visible users of role, searching by full name
func (r *UserRepository) FindWithPagination(viewer *models.User, role models.Role, q dto.PageQuery) ([]models.User, int64, error) {
	var users []models.User
	var totalCount int64

	db := database.DB.Model(&models.User{}).Scopes(UsersVisibleTo(viewer))
	if role != "" {
		db = db.Where("users.role = ?", role)
	}
	if q.Search != "" {
		db = db.Where("LOWER(users.full_name) LIKE LOWER(?)", "%"+q.Search+"%")
	}

	if err := db.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	err := db.Order("users." + q.SortBy + " " + q.SortOrder).
		Limit(q.PageSize).
		Offset(q.Offset()).
		Find(&users).Error
	return users, totalCount, err
}
