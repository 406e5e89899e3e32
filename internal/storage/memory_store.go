package storage

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/julianstephens/habitquest/internal/models"
)

// Document is the complete data set held by the in-memory and JSON stores.
type Document struct {
	Version              int                            `json:"version"`
	CurrentUserID        string                         `json:"current_user_id,omitempty"`
	Users                []models.User                  `json:"users"`
	Habits               []models.Habit                 `json:"habits"`
	CheckIns             []models.CheckIn               `json:"check_ins"`
	Progress             []models.Progress              `json:"progress"`
	Achievements         []models.AchievementDefinition `json:"achievements"`
	UnlockedAchievements []models.UnlockedAchievement   `json:"user_achievements"`
	HabitTemplates       []models.HabitTemplate         `json:"habit_templates"`
}

const documentVersion = 1

// MemoryStore keeps all records in memory. It is safe for concurrent use.
// When persist is set it is called after every mutation while the lock is held.
// When refresh is set it is called before every access and may return a newer
// document to replace the one held.
type MemoryStore struct {
	mu      sync.Mutex
	doc     *Document
	persist func(*Document) error
	refresh func() (*Document, error)
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := &Document{Version: documentVersion}
	if err := s.commit(doc); err != nil {
		return err
	}
	s.doc = doc
	return nil
}

func (s *MemoryStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		s.doc = &Document{Version: documentVersion}
	}
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

func (s *MemoryStore) GetConfigPath() string {
	return ":memory:"
}

func (s *MemoryStore) commit(doc *Document) error {
	if s.persist == nil {
		return nil
	}
	return s.persist(doc)
}

func (d *Document) clone() *Document {
	c := *d
	c.Users = slices.Clone(d.Users)
	c.Habits = slices.Clone(d.Habits)
	c.CheckIns = slices.Clone(d.CheckIns)
	c.Progress = slices.Clone(d.Progress)
	c.Achievements = slices.Clone(d.Achievements)
	c.UnlockedAchievements = slices.Clone(d.UnlockedAchievements)
	c.HabitTemplates = slices.Clone(d.HabitTemplates)
	return &c
}

func (s *MemoryStore) read(fn func(d *Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return ErrNotLoaded
	}
	if err := s.refreshLocked(); err != nil {
		return err
	}
	return fn(s.doc)
}

func (s *MemoryStore) refreshLocked() error {
	if s.refresh == nil {
		return nil
	}
	doc, err := s.refresh()
	if err != nil {
		return err
	}
	if doc != nil {
		s.doc = doc
	}
	return nil
}

func (s *MemoryStore) write(fn func(d *Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return ErrNotLoaded
	}
	if err := s.refreshLocked(); err != nil {
		return err
	}
	// mutate a copy; the live document only changes once it is saved
	next := s.doc.clone()
	if err := fn(next); err != nil {
		return err
	}
	if err := s.commit(next); err != nil {
		return err
	}
	s.doc = next
	return nil
}

// Users

func (s *MemoryStore) GetUsers() ([]models.User, error) {
	var out []models.User
	err := s.read(func(d *Document) error {
		out = slices.Clone(d.Users)
		return nil
	})
	return out, err
}

func (s *MemoryStore) GetUserByEmail(email string) (models.User, error) {
	var out models.User
	err := s.read(func(d *Document) error {
		for _, u := range d.Users {
			if strings.EqualFold(u.Email, email) {
				out = u
				return nil
			}
		}
		return fmt.Errorf("user %s: %w", email, ErrNotFound)
	})
	return out, err
}

func (s *MemoryStore) SaveUser(user models.User) error {
	return s.write(func(d *Document) error {
		for i, u := range d.Users {
			if u.ID == user.ID {
				d.Users[i] = user
				return nil
			}
		}
		d.Users = append(d.Users, user)
		return nil
	})
}

func (s *MemoryStore) GetCurrentUserID() (string, error) {
	var id string
	err := s.read(func(d *Document) error {
		id = d.CurrentUserID
		return nil
	})
	return id, err
}

func (s *MemoryStore) SetCurrentUserID(id string) error {
	return s.write(func(d *Document) error {
		d.CurrentUserID = id
		return nil
	})
}

// Habits

func (s *MemoryStore) AddHabit(habit models.Habit) error {
	return s.write(func(d *Document) error {
		for _, h := range d.Habits {
			if h.ID == habit.ID {
				return fmt.Errorf("habit already exists: %s", habit.ID)
			}
		}
		d.Habits = append(d.Habits, habit)
		return nil
	})
}

func (s *MemoryStore) GetHabit(id string) (models.Habit, error) {
	var out models.Habit
	err := s.read(func(d *Document) error {
		for _, h := range d.Habits {
			if h.ID == id {
				out = h
				return nil
			}
		}
		return fmt.Errorf("habit %s: %w", id, ErrNotFound)
	})
	return out, err
}

func (s *MemoryStore) GetHabits(ownerID string) ([]models.Habit, error) {
	var out []models.Habit
	err := s.read(func(d *Document) error {
		for _, h := range d.Habits {
			if h.OwnerID == ownerID {
				out = append(out, h)
			}
		}
		return nil
	})
	sortHabits(out)
	return out, err
}

func (s *MemoryStore) GetAllHabits() ([]models.Habit, error) {
	var out []models.Habit
	err := s.read(func(d *Document) error {
		out = slices.Clone(d.Habits)
		return nil
	})
	sortHabits(out)
	return out, err
}

func (s *MemoryStore) UpdateHabit(habit models.Habit) error {
	return s.write(func(d *Document) error {
		for i, h := range d.Habits {
			if h.ID == habit.ID {
				d.Habits[i] = habit
				return nil
			}
		}
		return fmt.Errorf("habit %s: %w", habit.ID, ErrNotFound)
	})
}

func (s *MemoryStore) DeleteHabit(id string) error {
	return s.write(func(d *Document) error {
		for i, h := range d.Habits {
			if h.ID == id {
				d.Habits = slices.Delete(d.Habits, i, i+1)
				return nil
			}
		}
		return fmt.Errorf("habit %s: %w", id, ErrNotFound)
	})
}

// Check-ins

func (s *MemoryStore) UpsertCheckIn(checkIn models.CheckIn) (models.CheckIn, error) {
	err := s.write(func(d *Document) error {
		for i, c := range d.CheckIns {
			if c.HabitID == checkIn.HabitID && c.Date == checkIn.Date {
				checkIn.ID = c.ID
				checkIn.CreatedAt = c.CreatedAt
				d.CheckIns[i] = checkIn
				return nil
			}
		}
		d.CheckIns = append(d.CheckIns, checkIn)
		return nil
	})
	return checkIn, err
}

func (s *MemoryStore) GetCheckIn(habitID, date string) (models.CheckIn, error) {
	var out models.CheckIn
	err := s.read(func(d *Document) error {
		for _, c := range d.CheckIns {
			if c.HabitID == habitID && c.Date == date {
				out = c
				return nil
			}
		}
		return fmt.Errorf("check-in %s on %s: %w", habitID, date, ErrNotFound)
	})
	return out, err
}

func (s *MemoryStore) GetCheckIns(ownerID string) ([]models.CheckIn, error) {
	var out []models.CheckIn
	err := s.read(func(d *Document) error {
		for _, c := range d.CheckIns {
			if c.OwnerID == ownerID {
				out = append(out, c)
			}
		}
		return nil
	})
	sortCheckIns(out)
	return out, err
}

func (s *MemoryStore) GetAllCheckIns() ([]models.CheckIn, error) {
	var out []models.CheckIn
	err := s.read(func(d *Document) error {
		out = slices.Clone(d.CheckIns)
		return nil
	})
	sortCheckIns(out)
	return out, err
}

func (s *MemoryStore) DeleteCheckIn(id string) error {
	return s.write(func(d *Document) error {
		for i, c := range d.CheckIns {
			if c.ID == id {
				d.CheckIns = slices.Delete(d.CheckIns, i, i+1)
				return nil
			}
		}
		return fmt.Errorf("check-in %s: %w", id, ErrNotFound)
	})
}

// Progress

func (s *MemoryStore) GetProgress(ownerID string) (models.Progress, error) {
	var out models.Progress
	err := s.read(func(d *Document) error {
		for _, p := range d.Progress {
			if p.OwnerID == ownerID {
				out = p
				return nil
			}
		}
		return fmt.Errorf("progress for %s: %w", ownerID, ErrNotFound)
	})
	return out, err
}

func (s *MemoryStore) SaveProgress(progress models.Progress) error {
	return s.write(func(d *Document) error {
		for i, p := range d.Progress {
			if p.OwnerID == progress.OwnerID {
				d.Progress[i] = progress
				return nil
			}
		}
		d.Progress = append(d.Progress, progress)
		return nil
	})
}

func (s *MemoryStore) GetAllProgress() ([]models.Progress, error) {
	var out []models.Progress
	err := s.read(func(d *Document) error {
		out = slices.Clone(d.Progress)
		return nil
	})
	return out, err
}

// Achievements

func (s *MemoryStore) GetAchievementDefinitions() ([]models.AchievementDefinition, error) {
	var out []models.AchievementDefinition
	err := s.read(func(d *Document) error {
		out = slices.Clone(d.Achievements)
		return nil
	})
	return out, err
}

func (s *MemoryStore) SaveAchievementDefinitions(defs []models.AchievementDefinition) error {
	return s.write(func(d *Document) error {
		d.Achievements = slices.Clone(defs)
		return nil
	})
}

func (s *MemoryStore) GetUnlockedAchievements(ownerID string) ([]models.UnlockedAchievement, error) {
	var out []models.UnlockedAchievement
	err := s.read(func(d *Document) error {
		for _, u := range d.UnlockedAchievements {
			if u.OwnerID == ownerID {
				out = append(out, u)
			}
		}
		return nil
	})
	return out, err
}

func (s *MemoryStore) GetAllUnlockedAchievements() ([]models.UnlockedAchievement, error) {
	var out []models.UnlockedAchievement
	err := s.read(func(d *Document) error {
		out = slices.Clone(d.UnlockedAchievements)
		return nil
	})
	return out, err
}

func (s *MemoryStore) AddUnlockedAchievement(unlock models.UnlockedAchievement) (bool, error) {
	added := false
	err := s.write(func(d *Document) error {
		for _, u := range d.UnlockedAchievements {
			if u.OwnerID == unlock.OwnerID && u.AchievementID == unlock.AchievementID {
				return nil
			}
		}
		d.UnlockedAchievements = append(d.UnlockedAchievements, unlock)
		added = true
		return nil
	})
	return added, err
}

func (s *MemoryStore) DeleteUnlockedAchievement(id string) error {
	return s.write(func(d *Document) error {
		for i, u := range d.UnlockedAchievements {
			if u.ID == id {
				d.UnlockedAchievements = slices.Delete(d.UnlockedAchievements, i, i+1)
				return nil
			}
		}
		return fmt.Errorf("unlocked achievement %s: %w", id, ErrNotFound)
	})
}

// Habit templates

func (s *MemoryStore) GetHabitTemplates() ([]models.HabitTemplate, error) {
	var out []models.HabitTemplate
	err := s.read(func(d *Document) error {
		out = slices.Clone(d.HabitTemplates)
		return nil
	})
	return out, err
}

func (s *MemoryStore) SaveHabitTemplates(templates []models.HabitTemplate) error {
	return s.write(func(d *Document) error {
		d.HabitTemplates = slices.Clone(templates)
		return nil
	})
}

func sortHabits(habits []models.Habit) {
	sort.SliceStable(habits, func(i, j int) bool {
		return habits[i].CreatedAt.Before(habits[j].CreatedAt)
	})
}

func sortCheckIns(checkIns []models.CheckIn) {
	sort.SliceStable(checkIns, func(i, j int) bool {
		if checkIns[i].Date != checkIns[j].Date {
			return checkIns[i].Date < checkIns[j].Date
		}
		return checkIns[i].HabitID < checkIns[j].HabitID
	})
}
