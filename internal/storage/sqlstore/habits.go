package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/julianstephens/habitquest/internal/models"
	"github.com/julianstephens/habitquest/internal/storage"
)

const habitColumns = "id, owner_id, name, description, xp_reward, created_at, updated_at"

func (s *Store) AddHabit(habit models.Habit) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	_, err = db.NamedExec(`INSERT INTO habits (`+habitColumns+`)
		VALUES (:id, :owner_id, :name, :description, :xp_reward, :created_at, :updated_at)`, newHabitRow(habit))
	if err != nil {
		return fmt.Errorf("failed to add habit: %w", err)
	}
	return nil
}

func (s *Store) GetHabit(id string) (models.Habit, error) {
	db, err := s.conn()
	if err != nil {
		return models.Habit{}, err
	}
	var row habitRow
	err = db.Get(&row, db.Rebind("SELECT "+habitColumns+" FROM habits WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Habit{}, fmt.Errorf("habit %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to get habit: %w", err)
	}
	return row.model(), nil
}

func (s *Store) GetHabits(ownerID string) ([]models.Habit, error) {
	return s.selectHabits("SELECT "+habitColumns+" FROM habits WHERE owner_id = ? ORDER BY created_at, id", ownerID)
}

func (s *Store) GetAllHabits() ([]models.Habit, error) {
	return s.selectHabits("SELECT " + habitColumns + " FROM habits ORDER BY created_at, id")
}

func (s *Store) selectHabits(query string, args ...interface{}) ([]models.Habit, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	var rows []habitRow
	if err := db.Select(&rows, db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}
	habits := make([]models.Habit, 0, len(rows))
	for _, r := range rows {
		habits = append(habits, r.model())
	}
	return habits, nil
}

func (s *Store) UpdateHabit(habit models.Habit) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	res, err := db.NamedExec(`UPDATE habits SET name = :name, description = :description,
		xp_reward = :xp_reward, updated_at = :updated_at WHERE id = :id`, newHabitRow(habit))
	if err != nil {
		return fmt.Errorf("failed to update habit: %w", err)
	}
	return expectRow(res, "habit "+habit.ID)
}

func (s *Store) DeleteHabit(id string) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	res, err := db.Exec(db.Rebind("DELETE FROM habits WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}
	return expectRow(res, "habit "+id)
}

const checkInColumns = "id, habit_id, owner_id, day, completed, created_at"

func (s *Store) UpsertCheckIn(checkIn models.CheckIn) (models.CheckIn, error) {
	var stored checkInRow
	err := s.inTx(func(tx *sqlx.Tx) error {
		_, err := tx.NamedExec(`INSERT INTO check_ins (`+checkInColumns+`)
			VALUES (:id, :habit_id, :owner_id, :day, :completed, :created_at)
			ON CONFLICT (habit_id, day) DO UPDATE SET completed = excluded.completed, owner_id = excluded.owner_id`,
			newCheckInRow(checkIn))
		if err != nil {
			return fmt.Errorf("failed to upsert check-in: %w", err)
		}
		return tx.Get(&stored, tx.Rebind("SELECT "+checkInColumns+" FROM check_ins WHERE habit_id = ? AND day = ?"),
			checkIn.HabitID, checkIn.Date)
	})
	if err != nil {
		return models.CheckIn{}, err
	}
	return stored.model(), nil
}

func (s *Store) GetCheckIn(habitID, date string) (models.CheckIn, error) {
	db, err := s.conn()
	if err != nil {
		return models.CheckIn{}, err
	}
	var row checkInRow
	err = db.Get(&row, db.Rebind("SELECT "+checkInColumns+" FROM check_ins WHERE habit_id = ? AND day = ?"), habitID, date)
	if errors.Is(err, sql.ErrNoRows) {
		return models.CheckIn{}, fmt.Errorf("check-in %s on %s: %w", habitID, date, storage.ErrNotFound)
	}
	if err != nil {
		return models.CheckIn{}, fmt.Errorf("failed to get check-in: %w", err)
	}
	return row.model(), nil
}

func (s *Store) GetCheckIns(ownerID string) ([]models.CheckIn, error) {
	return s.selectCheckIns("SELECT "+checkInColumns+" FROM check_ins WHERE owner_id = ? ORDER BY day, habit_id", ownerID)
}

func (s *Store) GetAllCheckIns() ([]models.CheckIn, error) {
	return s.selectCheckIns("SELECT " + checkInColumns + " FROM check_ins ORDER BY day, habit_id")
}

func (s *Store) selectCheckIns(query string, args ...interface{}) ([]models.CheckIn, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	var rows []checkInRow
	if err := db.Select(&rows, db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list check-ins: %w", err)
	}
	out := make([]models.CheckIn, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.model())
	}
	return out, nil
}

func (s *Store) DeleteCheckIn(id string) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	res, err := db.Exec(db.Rebind("DELETE FROM check_ins WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("failed to delete check-in: %w", err)
	}
	return expectRow(res, "check-in "+id)
}

func expectRow(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, storage.ErrNotFound)
	}
	return nil
}
