package services

import (
	"context"
	"strings"
	"sync"

	"pgrkam-assistant/work-flows/client"
	"pgrkam-assistant/work-flows/models"

	"golang.org/x/text/cases"
)

// ProfileForm is the editable view of a profile. Skills is comma separated.
type ProfileForm struct {
	Name          string
	District      string
	Education     string
	Skills        string
	CareerSummary string
}

// ProfileManager caches the user's profile and applies edits to it.
type ProfileManager struct {
	mu        sync.RWMutex
	apiClient client.Client
	auth      *AuthState
	profile   *models.UserProfile
}

func NewProfileManager(apiClient client.Client, auth *AuthState) *ProfileManager {
	pm := &ProfileManager{
		apiClient: apiClient,
		auth:      auth,
	}
	auth.OnLogout(pm.Forget)
	return pm
}

func (pm *ProfileManager) Fetch(ctx context.Context) (*models.UserProfile, error) {
	profile, err := pm.apiClient.GetProfile(ctx)
	if err != nil {
		return nil, err
	}
	profile.Profile.Skills = normalizeSkills(profile.Profile.Skills)

	pm.mu.Lock()
	pm.profile = profile
	pm.mu.Unlock()

	cp := *profile
	return &cp, nil
}

// Profile returns the cached profile, if one was fetched.
func (pm *ProfileManager) Profile() (models.UserProfile, bool) {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	if pm.profile == nil {
		return models.UserProfile{}, false
	}
	return *pm.profile, true
}

// Details is the profile context attached to chat requests.
func (pm *ProfileManager) Details() models.ProfileDetails {
	profile, _ := pm.Profile()
	details := profile.Profile
	if details.Skills == nil {
		details.Skills = []string{}
	}
	return details
}

// Form returns the cached profile in editable form.
func (pm *ProfileManager) Form() ProfileForm {
	profile, _ := pm.Profile()
	return ProfileForm{
		Name:          profile.Name,
		District:      profile.Profile.District,
		Education:     profile.Profile.Education,
		Skills:        strings.Join(profile.Profile.Skills, ", "),
		CareerSummary: profile.Profile.CareerSummary,
	}
}

// Save sends the edited profile and refreshes the cache from the backend.
func (pm *ProfileManager) Save(ctx context.Context, form ProfileForm) (*models.UserProfile, error) {
	update := models.ProfileUpdate{
		Name: strings.TrimSpace(form.Name),
		Profile: &models.ProfileDetails{
			District:      strings.TrimSpace(form.District),
			Education:     strings.TrimSpace(form.Education),
			Skills:        ParseSkills(form.Skills),
			CareerSummary: strings.TrimSpace(form.CareerSummary),
		},
	}

	if err := pm.apiClient.UpdateProfile(ctx, update); err != nil {
		return nil, err
	}
	return pm.Fetch(ctx)
}

func (pm *ProfileManager) ChangePassword(ctx context.Context, current, password, confirm string) error {
	if current == "" {
		return ErrMissingFields
	}
	if err := ValidateNewPassword(password, confirm); err != nil {
		return err
	}
	return pm.apiClient.ChangePassword(ctx, models.ChangePasswordRequest{
		CurrentPassword: current,
		NewPassword:     password,
	})
}

// DeleteAccount removes the account and logs out.
func (pm *ProfileManager) DeleteAccount(ctx context.Context) error {
	if err := pm.apiClient.DeleteAccount(ctx); err != nil {
		return err
	}
	return pm.auth.Clear()
}

func (pm *ProfileManager) Forget() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.profile = nil
}

// ParseSkills splits a comma separated list, trimming blanks and duplicates.
func ParseSkills(raw string) []string {
	return normalizeSkills(strings.Split(raw, ","))
}

// normalizeSkills drops blanks and case-folded duplicates, keeping the first spelling.
func normalizeSkills(skills []string) []string {
	fold := cases.Fold()
	seen := make(map[string]bool, len(skills))
	result := []string{}
	for _, s := range skills {
		s = strings.TrimSpace(s)
		key := fold.String(s)
		if s == "" || seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, s)
	}
	return result
}
