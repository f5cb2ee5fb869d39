package vault

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Well-known settings paths inside the vault.
const (
	menuConfigPath  = ".life-os/menu.yaml"
	boardConfigPath = "projects/_board.yaml"
	appSettingsPath = ".life-os/settings.yaml"
)

// MenuItem is one sidebar menu entry.
type MenuItem struct {
	ID    string `yaml:"id" json:"id"`
	Label string `yaml:"label" json:"label"`
	Icon  string `yaml:"icon" json:"icon"`
	Path  string `yaml:"path" json:"path"`
}

// MenuConfig is the sidebar layout.
type MenuConfig struct {
	Items []MenuItem `yaml:"items" json:"items"`
}

// BoardColumn is one kanban column.
type BoardColumn struct {
	ID    string `yaml:"id" json:"id"`
	Name  string `yaml:"name" json:"name"`
	Color string `yaml:"color" json:"color"`
}

// BoardConfig is the project kanban layout.
type BoardConfig struct {
	Columns []BoardColumn `yaml:"columns" json:"columns"`
}

// AppSettings are vault-scoped application preferences.
type AppSettings struct {
	Theme     string `yaml:"theme" json:"theme"`
	Language  string `yaml:"language" json:"language"`
	StartPage string `yaml:"start_page" json:"start_page"`
}

// DefaultMenuConfig returns the menu used when the vault has none.
func DefaultMenuConfig() MenuConfig {
	return MenuConfig{Items: []MenuItem{
		{ID: "today", Label: "今日", Icon: "📅", Path: "daily/tasks"},
		{ID: "projects", Label: "项目", Icon: "📁", Path: "projects"},
		{ID: "diary", Label: "日记", Icon: "📔", Path: "diary"},
		{ID: "decisions", Label: "决策", Icon: "⚖️", Path: "decisions"},
		{ID: "mailbox", Label: "邮箱", Icon: "📮", Path: "Mailbox"},
	}}
}

// DefaultBoardConfig mirrors the board the vault scaffolding seeds.
func DefaultBoardConfig() BoardConfig {
	return BoardConfig{Columns: []BoardColumn{
		{ID: "backlog", Name: "💤 待规划", Color: "#5a6a82"},
		{ID: "todo", Name: "📋 计划中", Color: "#00c8ff"},
		{ID: "active", Name: "⚡ 进行中", Color: "#7b61ff"},
		{ID: "done", Name: "✅ 已完成", Color: "#00ffa3"},
	}}
}

// DefaultAppSettings returns the out-of-the-box preferences.
func DefaultAppSettings() AppSettings {
	return AppSettings{Theme: "dark", Language: "zh-CN", StartPage: "today"}
}

// LoadMenuConfig reads the menu from the vault, falling back to the
// default when the file is absent.
func LoadMenuConfig(ctx context.Context, b Backend) (MenuConfig, error) {
	var cfg MenuConfig
	ok, err := loadYAML(ctx, b, menuConfigPath, &cfg)
	if err != nil {
		return MenuConfig{}, err
	}
	if !ok {
		return DefaultMenuConfig(), nil
	}
	return cfg, nil
}

// SaveMenuConfig writes the menu to the vault.
func SaveMenuConfig(ctx context.Context, b Backend, cfg MenuConfig) error {
	return saveYAML(ctx, b, menuConfigPath, cfg)
}

// LoadBoardConfig reads the kanban layout, falling back to the default.
func LoadBoardConfig(ctx context.Context, b Backend) (BoardConfig, error) {
	var cfg BoardConfig
	ok, err := loadYAML(ctx, b, boardConfigPath, &cfg)
	if err != nil {
		return BoardConfig{}, err
	}
	if !ok {
		return DefaultBoardConfig(), nil
	}
	return cfg, nil
}

// SaveBoardConfig writes the kanban layout.
func SaveBoardConfig(ctx context.Context, b Backend, cfg BoardConfig) error {
	return saveYAML(ctx, b, boardConfigPath, cfg)
}

// LoadAppSettings reads the app preferences, falling back to the
// default.
func LoadAppSettings(ctx context.Context, b Backend) (AppSettings, error) {
	var s AppSettings
	ok, err := loadYAML(ctx, b, appSettingsPath, &s)
	if err != nil {
		return AppSettings{}, err
	}
	if !ok {
		return DefaultAppSettings(), nil
	}
	return s, nil
}

// SaveAppSettings writes the app preferences.
func SaveAppSettings(ctx context.Context, b Backend, s AppSettings) error {
	return saveYAML(ctx, b, appSettingsPath, s)
}

// loadYAML reads and decodes a vault YAML file. The bool is false when
// the file does not exist. Existence is probed first because remote
// read errors arrive as opaque strings.
func loadYAML(ctx context.Context, b Backend, path string, out any) (bool, error) {
	exists, err := b.FileExists(ctx, path)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, nil
	}
	raw, err := b.ReadFile(ctx, path)
	if err != nil {
		return false, err
	}
	if err := yaml.Unmarshal([]byte(raw), out); err != nil {
		return false, fmt.Errorf("vault: parse %s: %w", path, err)
	}
	return true, nil
}

func saveYAML(ctx context.Context, b Backend, path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("vault: encode %s: %w", path, err)
	}
	return b.WriteFile(ctx, path, string(data))
}
