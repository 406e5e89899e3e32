package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/julianstephens/habitquest/internal/models"
	"github.com/julianstephens/habitquest/internal/storage"
)

const currentUserKey = "current_user_id"

// Users

func (s *Store) GetUsers() ([]models.User, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	var rows []userRow
	if err := db.Select(&rows, "SELECT id, email, name, is_admin, created_at FROM users ORDER BY created_at"); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	users := make([]models.User, 0, len(rows))
	for _, r := range rows {
		users = append(users, r.model())
	}
	return users, nil
}

func (s *Store) GetUserByEmail(email string) (models.User, error) {
	db, err := s.conn()
	if err != nil {
		return models.User{}, err
	}
	var row userRow
	err = db.Get(&row, db.Rebind("SELECT id, email, name, is_admin, created_at FROM users WHERE lower(email) = lower(?)"), email)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, fmt.Errorf("user %s: %w", email, storage.ErrNotFound)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return row.model(), nil
}

func (s *Store) SaveUser(user models.User) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	row := userRow{ID: user.ID, Email: user.Email, Name: user.Name, IsAdmin: user.IsAdmin, CreatedAt: formatTime(user.CreatedAt)}
	_, err = db.NamedExec(`INSERT INTO users (id, email, name, is_admin, created_at)
		VALUES (:id, :email, :name, :is_admin, :created_at)
		ON CONFLICT (id) DO UPDATE SET email = excluded.email, name = excluded.name, is_admin = excluded.is_admin`, row)
	if err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

func (s *Store) GetCurrentUserID() (string, error) {
	db, err := s.conn()
	if err != nil {
		return "", err
	}
	var id string
	err = db.Get(&id, db.Rebind("SELECT value FROM app_state WHERE key = ?"), currentUserKey)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get current user: %w", err)
	}
	return id, nil
}

func (s *Store) SetCurrentUserID(id string) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	_, err = db.Exec(db.Rebind(`INSERT INTO app_state (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value`), currentUserKey, id)
	if err != nil {
		return fmt.Errorf("failed to set current user: %w", err)
	}
	return nil
}

// Progress

const progressColumns = "id, owner_id, level, total_xp, current_world, updated_at"

func (s *Store) GetProgress(ownerID string) (models.Progress, error) {
	db, err := s.conn()
	if err != nil {
		return models.Progress{}, err
	}
	var row progressRow
	err = db.Get(&row, db.Rebind("SELECT "+progressColumns+" FROM progress WHERE owner_id = ?"), ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Progress{}, fmt.Errorf("progress for %s: %w", ownerID, storage.ErrNotFound)
	}
	if err != nil {
		return models.Progress{}, fmt.Errorf("failed to get progress: %w", err)
	}
	return row.model(), nil
}

func (s *Store) SaveProgress(p models.Progress) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	row := progressRow{ID: p.ID, OwnerID: p.OwnerID, Level: p.Level, TotalXP: p.TotalXP, CurrentWorld: p.CurrentWorld, UpdatedAt: formatTime(p.UpdatedAt)}
	_, err = db.NamedExec(`INSERT INTO progress (`+progressColumns+`)
		VALUES (:id, :owner_id, :level, :total_xp, :current_world, :updated_at)
		ON CONFLICT (owner_id) DO UPDATE SET level = excluded.level, total_xp = excluded.total_xp,
			current_world = excluded.current_world, updated_at = excluded.updated_at`, row)
	if err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	return nil
}

func (s *Store) GetAllProgress() ([]models.Progress, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	var rows []progressRow
	if err := db.Select(&rows, "SELECT "+progressColumns+" FROM progress ORDER BY owner_id"); err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}
	out := make([]models.Progress, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.model())
	}
	return out, nil
}

// Achievements

func (s *Store) GetAchievementDefinitions() ([]models.AchievementDefinition, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	var rows []achievementRow
	err = db.Select(&rows, `SELECT id, position, name, description, icon, xp_reward, requirement, type, category
		FROM achievements ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}
	out := make([]models.AchievementDefinition, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.model())
	}
	return out, nil
}

func (s *Store) SaveAchievementDefinitions(defs []models.AchievementDefinition) error {
	return s.inTx(func(tx *sqlx.Tx) error {
		if _, err := tx.Exec("DELETE FROM achievements"); err != nil {
			return fmt.Errorf("failed to clear achievements: %w", err)
		}
		for i, d := range defs {
			row := achievementRow{
				ID: d.ID, Position: i, Name: d.Name, Description: d.Description, Icon: d.Icon,
				XPReward: d.XPReward, Requirement: d.Requirement, Type: string(d.Type), Category: d.Category,
			}
			_, err := tx.NamedExec(`INSERT INTO achievements (id, position, name, description, icon, xp_reward, requirement, type, category)
				VALUES (:id, :position, :name, :description, :icon, :xp_reward, :requirement, :type, :category)`, row)
			if err != nil {
				return fmt.Errorf("failed to save achievement %s: %w", d.ID, err)
			}
		}
		return nil
	})
}

const unlockColumns = "id, achievement_id, owner_id, unlocked_at"

func (s *Store) GetUnlockedAchievements(ownerID string) ([]models.UnlockedAchievement, error) {
	return s.selectUnlocks("SELECT "+unlockColumns+" FROM user_achievements WHERE owner_id = ? ORDER BY unlocked_at", ownerID)
}

func (s *Store) GetAllUnlockedAchievements() ([]models.UnlockedAchievement, error) {
	return s.selectUnlocks("SELECT " + unlockColumns + " FROM user_achievements ORDER BY unlocked_at")
}

func (s *Store) selectUnlocks(query string, args ...interface{}) ([]models.UnlockedAchievement, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	var rows []unlockRow
	if err := db.Select(&rows, db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list unlocked achievements: %w", err)
	}
	out := make([]models.UnlockedAchievement, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.model())
	}
	return out, nil
}

func (s *Store) AddUnlockedAchievement(u models.UnlockedAchievement) (bool, error) {
	db, err := s.conn()
	if err != nil {
		return false, err
	}
	row := unlockRow{ID: u.ID, AchievementID: u.AchievementID, OwnerID: u.OwnerID, UnlockedAt: formatTime(u.UnlockedAt)}
	res, err := db.NamedExec(`INSERT INTO user_achievements (`+unlockColumns+`)
		VALUES (:id, :achievement_id, :owner_id, :unlocked_at)
		ON CONFLICT (owner_id, achievement_id) DO NOTHING`, row)
	if err != nil {
		return false, fmt.Errorf("failed to unlock achievement: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) DeleteUnlockedAchievement(id string) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	res, err := db.Exec(db.Rebind("DELETE FROM user_achievements WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("failed to delete unlocked achievement: %w", err)
	}
	return expectRow(res, "unlocked achievement "+id)
}

// Habit templates

func (s *Store) GetHabitTemplates() ([]models.HabitTemplate, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	var rows []templateRow
	err = db.Select(&rows, `SELECT id, position, name, description, xp_reward, icon, category, is_default
		FROM habit_templates ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to list habit templates: %w", err)
	}
	out := make([]models.HabitTemplate, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.model())
	}
	return out, nil
}

func (s *Store) SaveHabitTemplates(templates []models.HabitTemplate) error {
	return s.inTx(func(tx *sqlx.Tx) error {
		if _, err := tx.Exec("DELETE FROM habit_templates"); err != nil {
			return fmt.Errorf("failed to clear habit templates: %w", err)
		}
		for i, t := range templates {
			row := templateRow{
				ID: t.ID, Position: i, Name: t.Name, Description: t.Description, XPReward: t.XPReward,
				Icon: t.Icon, Category: t.Category, IsDefault: t.IsDefault,
			}
			_, err := tx.NamedExec(`INSERT INTO habit_templates (id, position, name, description, xp_reward, icon, category, is_default)
				VALUES (:id, :position, :name, :description, :xp_reward, :icon, :category, :is_default)`, row)
			if err != nil {
				return fmt.Errorf("failed to save habit template %s: %w", t.ID, err)
			}
		}
		return nil
	})
}
