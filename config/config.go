// Package config holds the selectors, class names, request settings and
// endpoints shared by the navigation engine and its collaborators.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix for environment overrides, e.g.
// ADMINNAV_SERVER__ADDR -> server.addr.
const EnvPrefix = "ADMINNAV_"

// Config is the full configuration tree.
type Config struct {
	Content  ContentConfig  `koanf:"content" yaml:"content"`
	Nav      NavConfig      `koanf:"nav" yaml:"nav"`
	Dropdown DropdownConfig `koanf:"dropdown" yaml:"dropdown"`
	Request  RequestConfig  `koanf:"request" yaml:"request"`
	Messages MessagesConfig `koanf:"messages" yaml:"messages"`
	Profile  ProfileConfig  `koanf:"profile" yaml:"profile"`
	Avatar   AvatarConfig   `koanf:"avatar" yaml:"avatar"`
	Server   ServerConfig   `koanf:"server" yaml:"server"`
	Debug    bool           `koanf:"debug" yaml:"debug"`
}

// ContentConfig identifies the swappable content region.
type ContentConfig struct {
	Region       string `koanf:"region" yaml:"region"`
	AjaxLink     string `koanf:"ajax_link" yaml:"ajax_link"`
	LoadingClass string `koanf:"loading_class" yaml:"loading_class"`
	NoticeClass  string `koanf:"notice_class" yaml:"notice_class"`
	// LoadedEvent is the DOM event dispatched on document after each swap.
	LoadedEvent string `koanf:"loaded_event" yaml:"loaded_event"`
}

// NavConfig identifies navigation containers and their links.
type NavConfig struct {
	Scope       string `koanf:"scope" yaml:"scope"`
	Link        string `koanf:"link" yaml:"link"`
	ActiveClass string `koanf:"active_class" yaml:"active_class"`
}

// DropdownConfig identifies dropdown containers, toggles and submenus.
type DropdownConfig struct {
	Container   string `koanf:"container" yaml:"container"`
	Toggle      string `koanf:"toggle" yaml:"toggle"`
	Submenu     string `koanf:"submenu" yaml:"submenu"`
	SubmenuLink string `koanf:"submenu_link" yaml:"submenu_link"`
	OpenClass   string `koanf:"open_class" yaml:"open_class"`
}

// RequestConfig controls fragment requests.
type RequestConfig struct {
	Header      string `koanf:"header" yaml:"header"`
	HeaderValue string `koanf:"header_value" yaml:"header_value"`
	// Timeout bounds a single fragment request; zero means no timeout.
	Timeout time.Duration `koanf:"timeout" yaml:"timeout"`
}

// MessagesConfig holds user-facing text.
type MessagesConfig struct {
	Loading      string `koanf:"loading" yaml:"loading"`
	LoadError    string `koanf:"load_error" yaml:"load_error"`
	Uploading    string `koanf:"uploading" yaml:"uploading"`
	Uploaded     string `koanf:"uploaded" yaml:"uploaded"`
	UploadError  string `koanf:"upload_error" yaml:"upload_error"`
	UploadFailed string `koanf:"upload_failed" yaml:"upload_failed"`
	NotAnImage   string `koanf:"not_an_image" yaml:"not_an_image"`
	TooLarge     string `koanf:"too_large" yaml:"too_large"`
}

// ProfileConfig identifies the profile accordion and the nav collapse toggle.
type ProfileConfig struct {
	Accordion      string `koanf:"accordion" yaml:"accordion"`
	Header         string `koanf:"header" yaml:"header"`
	DropdownButton string `koanf:"dropdown_button" yaml:"dropdown_button"`
	Avatar         string `koanf:"avatar" yaml:"avatar"`
	EditButton     string `koanf:"edit_button" yaml:"edit_button"`
	EditURL        string `koanf:"edit_url" yaml:"edit_url"`
	NavToggle      string `koanf:"nav_toggle" yaml:"nav_toggle"`
	NavLinks       string `koanf:"nav_links" yaml:"nav_links"`
	ExpandedKey    string `koanf:"expanded_key" yaml:"expanded_key"`
	CollapsedKey   string `koanf:"collapsed_key" yaml:"collapsed_key"`
}

// AvatarConfig controls the avatar upload collaborator.
type AvatarConfig struct {
	Trigger     string        `koanf:"trigger" yaml:"trigger"`
	Input       string        `koanf:"input" yaml:"input"`
	Image       string        `koanf:"image" yaml:"image"`
	Overlay     string        `koanf:"overlay" yaml:"overlay"`
	Endpoint    string        `koanf:"endpoint" yaml:"endpoint"`
	Field       string        `koanf:"field" yaml:"field"`
	MaxBytes    int64         `koanf:"max_bytes" yaml:"max_bytes"`
	CSRFHeader  string        `koanf:"csrf_header" yaml:"csrf_header"`
	CSRFGlobal  string        `koanf:"csrf_global" yaml:"csrf_global"`
	CSRFCookie  string        `koanf:"csrf_cookie" yaml:"csrf_cookie"`
	CSRFMeta    string        `koanf:"csrf_meta" yaml:"csrf_meta"`
	RestoreWait time.Duration `koanf:"restore_wait" yaml:"restore_wait"`
}

// ServerConfig is used only by the development fragment server.
type ServerConfig struct {
	Addr      string `koanf:"addr" yaml:"addr"`
	StaticDir string `koanf:"static_dir" yaml:"static_dir"`
}

// DefaultConfig returns the configuration matching the stock admin shell markup.
func DefaultConfig() *Config {
	return &Config{
		Content: ContentConfig{
			Region:       "#main-content-area",
			AjaxLink:     "a.ajax-link",
			LoadingClass: "ajax-loading",
			NoticeClass:  "ajax-error",
			LoadedEvent:  "contentLoaded",
		},
		Nav: NavConfig{
			Scope:       "#main-navigation, .admin-nav",
			Link:        ".nav-link-ajax",
			ActiveClass: "active",
		},
		Dropdown: DropdownConfig{
			Container:   ".nav-item-dropdown",
			Toggle:      ".nav-link-dropdown",
			Submenu:     ".nav-submenu",
			SubmenuLink: ".nav-submenu-link",
			OpenClass:   "open",
		},
		Request: RequestConfig{
			Header:      "X-Requested-With",
			HeaderValue: "XMLHttpRequest",
		},
		Messages: MessagesConfig{
			Loading:      "Loading content...",
			LoadError:    "Error loading content. Please try again.",
			Uploading:    "Uploading...",
			Uploaded:     "Updated!",
			UploadError:  "Unknown error uploading the image",
			UploadFailed: "Error uploading the image. Please try again.",
			NotAnImage:   "Please select a valid image.",
			TooLarge:     "The image must be smaller than 5MB.",
		},
		Profile: ProfileConfig{
			Accordion:      "#user-info-accordion",
			Header:         "#user-info-header",
			DropdownButton: "#profile-dropdown-btn",
			Avatar:         "#profile-avatar, .profile-avatar-overlay",
			EditButton:     "#edit-profile-btn",
			EditURL:        "/profile/edit/",
			NavToggle:      "#nav-toggle",
			NavLinks:       "#nav-links-container",
			ExpandedKey:    "user-info-expanded",
			CollapsedKey:   "nav-collapsed",
		},
		Avatar: AvatarConfig{
			Trigger:     "#profile-avatar",
			Input:       "#avatar-upload",
			Image:       "#avatar-img",
			Overlay:     ".profile-avatar-overlay",
			Endpoint:    "/admin/upload-avatar/",
			Field:       "avatar",
			MaxBytes:    5 * 1024 * 1024,
			CSRFHeader:  "X-CSRFToken",
			CSRFGlobal:  "csrftoken",
			CSRFCookie:  "csrftoken",
			CSRFMeta:    "csrf-token",
			RestoreWait: 2 * time.Second,
		},
		Server: ServerConfig{
			Addr:      ":8080",
			StaticDir: "static",
		},
	}
}

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (ADMINNAV_*). A missing file is not an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Parse reads configuration from raw YAML, such as the contents of an
// inline <script type="application/yaml"> block in the admin shell.
func Parse(raw []byte) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	if len(raw) > 0 {
		if err := k.Load(rawbytes.Provider(raw), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Marshal renders cfg as YAML that Parse and Load accept.
func Marshal(cfg *Config) ([]byte, error) {
	out, err := yamlv3.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshalling config: %w", err)
	}
	return out, nil
}

// Validate checks that every selector the engine depends on is set.
func (c *Config) Validate() error {
	required := map[string]string{
		"content.region":      c.Content.Region,
		"content.ajax_link":   c.Content.AjaxLink,
		"nav.scope":           c.Nav.Scope,
		"nav.link":            c.Nav.Link,
		"nav.active_class":    c.Nav.ActiveClass,
		"dropdown.container":  c.Dropdown.Container,
		"dropdown.toggle":     c.Dropdown.Toggle,
		"dropdown.open_class": c.Dropdown.OpenClass,
		"request.header":      c.Request.Header,
	}
	for key, v := range required {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%s is required", key)
		}
	}
	if c.Request.Timeout < 0 {
		return fmt.Errorf("request.timeout must be non-negative")
	}
	if c.Avatar.MaxBytes <= 0 {
		return fmt.Errorf("avatar.max_bytes must be positive")
	}
	return nil
}
