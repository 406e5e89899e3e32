// Package tracker is the application service behind the CLI and TUI. It resolves
// the signed-in user and ties habits, check-ins, progress and achievements together.
package tracker

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/julianstephens/habitquest/internal/achievements"
	"github.com/julianstephens/habitquest/internal/leveling"
	"github.com/julianstephens/habitquest/internal/logger"
	"github.com/julianstephens/habitquest/internal/models"
	"github.com/julianstephens/habitquest/internal/progress"
	"github.com/julianstephens/habitquest/internal/storage"
	"github.com/julianstephens/habitquest/internal/utils"
)

var (
	ErrNoCurrentUser = errors.New("no user signed in, run 'habitquest signin' first")
	ErrInvalidEmail  = errors.New("a valid email address is required")
	ErrNotAdmin      = errors.New("this action requires an admin user")
)

type Tracker struct {
	store     storage.Provider
	progress  *progress.Updater
	evaluator *achievements.Evaluator
	clock     utils.Clock
}

func New(store storage.Provider, clock utils.Clock) *Tracker {
	if clock == nil {
		clock = utils.RealClock{}
	}
	updater := progress.NewUpdater(store, clock)
	return &Tracker{
		store:     store,
		progress:  updater,
		evaluator: achievements.NewEvaluator(store, updater, clock),
		clock:     clock,
	}
}

// Store returns the underlying record store.
func (t *Tracker) Store() storage.Provider {
	return t.store
}

// Today returns the current calendar date in the tracker's clock.
func (t *Tracker) Today() string {
	return utils.Today(t.clock)
}

// SignIn selects the user with email, creating it on first use, and makes it current.
func (t *Tracker) SignIn(email, name string, admin bool) (models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return models.User{}, ErrInvalidEmail
	}

	user, err := t.store.GetUserByEmail(email)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		user = models.User{
			ID:        uuid.New().String(),
			Email:     email,
			Name:      strings.TrimSpace(name),
			IsAdmin:   admin,
			CreatedAt: t.clock.Now(),
		}
		if err := t.store.SaveUser(user); err != nil {
			return models.User{}, fmt.Errorf("failed to create user: %w", err)
		}
		logger.Info("Created user", "id", user.ID)
	case err != nil:
		return models.User{}, fmt.Errorf("failed to look up user: %w", err)
	case name != "" && name != user.Name:
		user.Name = strings.TrimSpace(name)
		if err := t.store.SaveUser(user); err != nil {
			return models.User{}, fmt.Errorf("failed to update user: %w", err)
		}
	}

	if err := t.store.SetCurrentUserID(user.ID); err != nil {
		return models.User{}, fmt.Errorf("failed to set current user: %w", err)
	}
	if _, err := t.progress.Get(user.ID); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// SignOut clears the current user.
func (t *Tracker) SignOut() error {
	return t.store.SetCurrentUserID("")
}

// CurrentUser returns the signed-in user or ErrNoCurrentUser.
func (t *Tracker) CurrentUser() (models.User, error) {
	id, err := t.store.GetCurrentUserID()
	if err != nil {
		return models.User{}, fmt.Errorf("failed to read current user: %w", err)
	}
	if id == "" {
		return models.User{}, ErrNoCurrentUser
	}
	users, err := t.store.GetUsers()
	if err != nil {
		return models.User{}, fmt.Errorf("failed to load users: %w", err)
	}
	for _, u := range users {
		if u.ID == id {
			return u, nil
		}
	}
	return models.User{}, ErrNoCurrentUser
}

func (t *Tracker) ownerID() (string, error) {
	u, err := t.CurrentUser()
	if err != nil {
		return "", err
	}
	return u.ID, nil
}

// Progress returns the current user's stored progress and its derived summary.
func (t *Tracker) Progress() (models.Progress, leveling.Summary, error) {
	owner, err := t.ownerID()
	if err != nil {
		return models.Progress{}, leveling.Summary{}, err
	}
	p, err := t.progress.Get(owner)
	if err != nil {
		return models.Progress{}, leveling.Summary{}, err
	}
	return p, leveling.Summarize(p.TotalXP), nil
}
