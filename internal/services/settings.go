package services

import (
	"context"
	"strings"

	"github.com/skip2/go-qrcode"

	"github.com/fibertrack/deployform/internal/logger"
	"github.com/fibertrack/deployform/internal/repository"
)

// Setting keys
const (
	SettingPrimaryURL   = "primary_url"
	SettingSecondaryURL = "secondary_url"
	SettingLanguage     = "language"
	SettingBaseURL      = "base_url"
)

// Supported interface languages
const (
	LanguageEnglish = "en"
	LanguageArabic  = "ar"
)

// IsWebAppURL reports whether url looks like a deployed spreadsheet web app
func IsWebAppURL(url string) bool {
	return strings.TrimSpace(url) != "" && strings.Contains(url, "macros")
}

// IsLibraryURL reports whether url points at a script library rather than a web app
func IsLibraryURL(url string) bool {
	return strings.Contains(url, "/library/")
}

// Direction returns the text direction for a language
func Direction(lang string) string {
	if lang == LanguageArabic {
		return "rtl"
	}
	return "ltr"
}

// Settings is a partial settings update. Nil fields are left unchanged.
type Settings struct {
	PrimaryURL   *string `json:"primary_url"`
	SecondaryURL *string `json:"secondary_url"`
	Language     *string `json:"language"`
}

// SettingsView is the settings as shown to the form
type SettingsView struct {
	PrimaryURL       string `json:"primary_url"`
	SecondaryURL     string `json:"secondary_url"`
	Language         string `json:"language"`
	Direction        string `json:"direction"`
	BaseURL          string `json:"base_url"`
	PrimaryIsLibrary bool   `json:"primary_is_library"`
}

// SettingsService handles settings-related business logic
type SettingsService struct {
	log    logger.Logger
	repo   repository.SettingsRepository
	syncer Syncer
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(log logger.Logger, repo repository.SettingsRepository) *SettingsService {
	return &SettingsService{log: log, repo: repo}
}

// SetSyncer sets what to refresh after the primary URL changes
func (s *SettingsService) SetSyncer(syncer Syncer) {
	s.syncer = syncer
}

// getOptional returns a setting, treating a missing key as def
func (s *SettingsService) getOptional(ctx context.Context, key, def string) (string, error) {
	value, err := s.repo.GetSetting(ctx, key)
	if err != nil {
		if err == repository.ErrNotFound {
			return def, nil
		}
		return "", err // Propagate database errors
	}
	return value, nil
}

// GetPrimaryURL returns the web app used for sync and primary delivery
func (s *SettingsService) GetPrimaryURL(ctx context.Context) (string, error) {
	return s.getOptional(ctx, SettingPrimaryURL, "")
}

// GetSecondaryURL returns the optional second delivery web app
func (s *SettingsService) GetSecondaryURL(ctx context.Context) (string, error) {
	return s.getOptional(ctx, SettingSecondaryURL, "")
}

// GetLanguage returns the interface language
func (s *SettingsService) GetLanguage(ctx context.Context) (string, error) {
	return s.getOptional(ctx, SettingLanguage, LanguageEnglish)
}

// GetBaseURL returns the application base URL
func (s *SettingsService) GetBaseURL(ctx context.Context) (string, error) {
	return s.getOptional(ctx, SettingBaseURL, "")
}

// SetBaseURL saves the application base URL
func (s *SettingsService) SetBaseURL(ctx context.Context, url string) error {
	return s.repo.SetSetting(ctx, SettingBaseURL, url)
}

// AllSettings returns every user-facing setting
func (s *SettingsService) AllSettings(ctx context.Context) (*SettingsView, error) {
	primary, err := s.GetPrimaryURL(ctx)
	if err != nil {
		return nil, err
	}
	secondary, err := s.GetSecondaryURL(ctx)
	if err != nil {
		return nil, err
	}
	lang, err := s.GetLanguage(ctx)
	if err != nil {
		return nil, err
	}
	base, err := s.GetBaseURL(ctx)
	if err != nil {
		return nil, err
	}

	return &SettingsView{
		PrimaryURL:       primary,
		SecondaryURL:     secondary,
		Language:         lang,
		Direction:        Direction(lang),
		BaseURL:          base,
		PrimaryIsLibrary: IsLibraryURL(primary),
	}, nil
}

// UpdateSettings validates and applies a partial update. Nothing is written
// unless every given field is valid. A new primary URL triggers a sync.
func (s *SettingsService) UpdateSettings(ctx context.Context, settings Settings) error {
	if settings.PrimaryURL != nil && !IsWebAppURL(*settings.PrimaryURL) {
		return ErrInvalidURL
	}
	if settings.SecondaryURL != nil && !IsWebAppURL(*settings.SecondaryURL) {
		return ErrInvalidURL
	}
	if settings.Language != nil && *settings.Language != LanguageEnglish && *settings.Language != LanguageArabic {
		return ErrUnsupportedLanguage
	}

	if settings.PrimaryURL != nil {
		url := strings.TrimSpace(*settings.PrimaryURL)
		if err := s.repo.SetSetting(ctx, SettingPrimaryURL, url); err != nil {
			return err
		}
		s.log.Info("Primary URL updated", "library", IsLibraryURL(url))
	}
	if settings.SecondaryURL != nil {
		if err := s.repo.SetSetting(ctx, SettingSecondaryURL, strings.TrimSpace(*settings.SecondaryURL)); err != nil {
			return err
		}
		s.log.Info("Secondary URL updated")
	}
	if settings.Language != nil {
		if err := s.repo.SetSetting(ctx, SettingLanguage, *settings.Language); err != nil {
			return err
		}
	}

	if settings.PrimaryURL != nil && s.syncer != nil {
		s.syncer.SyncInBackground()
	}
	return nil
}

// ShareQR returns a PNG QR code pointing at the form
func (s *SettingsService) ShareQR(ctx context.Context) ([]byte, error) {
	baseURL, err := s.GetBaseURL(ctx)
	if err != nil {
		return nil, err
	}
	if baseURL == "" {
		return nil, ErrBaseURLNotConfigured
	}
	return qrcode.Encode(strings.TrimSuffix(baseURL, "/")+"/", qrcode.Medium, 256)
}
